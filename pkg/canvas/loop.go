package canvas

import (
	"errors"
	"fmt"

	"github.com/roffe/plotcanvas/pkg/store"
)

// Topics published on the canvas bus.
const (
	TopicRendered = "frame.rendered"
	TopicSkipped  = "frame.skipped"
	TopicFPS      = "frame.fps"
	TopicFigures  = "figure.count"
)

// HeightTopic carries the content height the named figure got last frame.
func HeightTopic(name string) string {
	return name + ".height"
}

func (c *Canvas) run() {
	defer close(c.done)
	defer func() {
		if r := recover(); r != nil {
			c.err = fmt.Errorf("render loop panicked: %v", r)
			c.log.Errorf("render loop panicked: %v", r)
		}
		if c.ownBus {
			c.bus.Close()
		}
	}()
	c.log.Debug("render loop started")
	for {
		f, err := c.drv.NextFrame()
		if err != nil {
			if errors.Is(err, ErrWindowClosed) {
				c.log.Info("window closed")
				return
			}
			c.err = fmt.Errorf("next frame: %w", err)
			c.log.Errorf("render loop stopped: %v", err)
			return
		}
		c.frame(f)
	}
}

// frame is one pass of the render loop. It holds the store lock for the
// whole redraw, or not at all.
func (c *Canvas) frame(f Frame) {
	ok, err := c.store.TryDo(func(figs store.Figures) error {
		for _, name := range figs.Names() {
			fig := figs[name]
			h := f.Figure(name, fig)
			fig.SplitHeight(h)
			c.bus.Publish(HeightTopic(name), h)
		}
		c.bus.Publish(TopicFigures, float64(len(figs)))
		return nil
	})
	if err != nil && !c.poisonLogged {
		c.poisonLogged = true
		c.log.Warnf("not drawing: %v", err)
	}
	f.End(ok)
	if ok {
		c.rendered++
		c.bus.Publish(TopicRendered, float64(c.rendered))
		return
	}
	c.skipped++
	c.bus.Publish(TopicSkipped, float64(c.skipped))
}
