package canvas

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/roffe/plotcanvas/pkg/ebus"
)

type CanvasOpt func(*Canvas)

// WithName labels log lines of this canvas.
func WithName(name string) CanvasOpt {
	return func(c *Canvas) {
		c.name = name
	}
}

func WithLogger(l log.FieldLogger) CanvasOpt {
	return func(c *Canvas) {
		c.log = l
	}
}

// WithBus publishes render loop telemetry on b instead of a private bus.
// The canvas does not close a bus it was given.
func WithBus(b *ebus.Bus) CanvasOpt {
	return func(c *Canvas) {
		c.bus = b
	}
}

// WithFPSWindow sets how often frame.fps is recomputed.
func WithFPSWindow(d time.Duration) CanvasOpt {
	return func(c *Canvas) {
		c.fpsWindow = d
	}
}
