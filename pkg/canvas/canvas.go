// Package canvas ties a figure store to a render loop and hands out
// handles to the figures in it.
//
// A Canvas owns one render goroutine. Each frame the goroutine tries to
// lock the store without waiting; if a producer holds it, the frame is
// skipped and the previous picture stays up. Producers, on the other hand,
// always wait for the lock, so a call that returns without error has landed
// in the store.
//
// Handles do not hold figure data. A FigureHandle is a figure name plus the
// identity of the figure instance it was issued for, and a PlotHandle adds a
// row and column. Every call resolves that path again under the lock, so a
// handle whose figure was removed or replaced reports ErrNotFound rather than
// touching the wrong data.
package canvas

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/roffe/plotcanvas/pkg/ebus"
	"github.com/roffe/plotcanvas/pkg/figure"
	"github.com/roffe/plotcanvas/pkg/store"
)

type Canvas struct {
	name      string
	store     *store.Store
	drv       Driver
	log       log.FieldLogger
	bus       *ebus.Bus
	ownBus    bool
	fpsWindow time.Duration

	done chan struct{}
	err  error

	// only touched by the render goroutine
	rendered, skipped uint64
	poisonLogged      bool
}

// New creates an empty canvas and starts its render loop on drv. The loop
// runs until drv reports ErrWindowClosed; dropping the Canvas does not stop
// it.
func New(drv Driver, opts ...CanvasOpt) *Canvas {
	c := &Canvas{
		name:      "canvas",
		store:     store.New(),
		drv:       drv,
		fpsWindow: time.Second,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = log.WithField("canvas", c.name)
	}
	if c.bus == nil {
		c.bus = ebus.New()
		c.ownBus = true
	}
	c.bus.RegisterAggregator(ebus.RateAggregator(TopicRendered, TopicFPS, c.fpsWindow))
	go c.run()
	return c
}

func (c *Canvas) Name() string {
	return c.name
}

// IsRunning reports whether the render loop is still alive. It never blocks.
func (c *Canvas) IsRunning() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// Wait blocks until the render loop has exited. The error is nil when the
// window was closed normally.
func (c *Canvas) Wait() error {
	<-c.done
	return c.err
}

// Events is the bus the render loop publishes frame telemetry on.
func (c *Canvas) Events() *ebus.Bus {
	return c.bus
}

// AddFigure stores a new rows x cols figure under name and returns a handle
// to it. An existing figure of the same name is replaced, and handles to
// the old one stop working. Counts below 1 become 1.
func (c *Canvas) AddFigure(name string, rows, cols int) (*FigureHandle, error) {
	fig := figure.New(rows, cols)
	if err := c.store.Insert(name, fig); err != nil {
		return nil, fmt.Errorf("add figure %q: %w", name, err)
	}
	c.log.WithField("figure", name).Debugf("added %dx%d figure", max(rows, 1), max(cols, 1))
	return &FigureHandle{store: c.store, name: name, id: fig.ID}, nil
}

// Figure returns a handle to the figure currently stored under name.
func (c *Canvas) Figure(name string) (*FigureHandle, error) {
	var id uuid.UUID
	err := c.store.Do(func(figs store.Figures) error {
		fig, err := figs.Lookup(name, uuid.Nil)
		if err != nil {
			return err
		}
		id = fig.ID
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("figure %q: %w", name, err)
	}
	return &FigureHandle{store: c.store, name: name, id: id}, nil
}

func (c *Canvas) RemoveFigure(name string) error {
	if err := c.store.Remove(name); err != nil {
		return fmt.Errorf("remove figure %q: %w", name, err)
	}
	return nil
}

// Figures lists the names of all stored figures in sorted order.
func (c *Canvas) Figures() ([]string, error) {
	return c.store.Names()
}
