package canvas

import (
	"sync"

	"github.com/roffe/plotcanvas/pkg/figure"
	"github.com/roffe/plotcanvas/pkg/store"
)

func (c *Canvas) Store() *store.Store {
	return c.store
}

// StepDriver hands out frames only when the test asks for one.
type StepDriver struct {
	frames    chan *StepFrame
	closed    chan struct{}
	closeOnce sync.Once
}

func NewStepDriver() *StepDriver {
	return &StepDriver{
		frames: make(chan *StepFrame),
		closed: make(chan struct{}),
	}
}

func (d *StepDriver) NextFrame() (Frame, error) {
	select {
	case f := <-d.frames:
		return f, nil
	case <-d.closed:
		return nil, ErrWindowClosed
	}
}

// Step runs one frame whose figure windows are height tall. Call
// Rendered on the result to wait for it to finish.
func (d *StepDriver) Step(height float64) *StepFrame {
	return d.send(&StepFrame{height: height})
}

// StepPanic runs a frame that panics while drawing the named figure.
func (d *StepDriver) StepPanic(name string) {
	d.send(&StepFrame{panicOn: name})
}

func (d *StepDriver) send(f *StepFrame) *StepFrame {
	f.ended = make(chan bool, 1)
	d.frames <- f
	return f
}

func (d *StepDriver) Close() {
	d.closeOnce.Do(func() { close(d.closed) })
}

type StepFrame struct {
	height  float64
	panicOn string
	Drawn   []string
	ended   chan bool
}

func (f *StepFrame) Figure(name string, fig *figure.Figure) float64 {
	if f.panicOn != "" && name == f.panicOn {
		panic("draw " + name)
	}
	f.Drawn = append(f.Drawn, name)
	return f.height
}

func (f *StepFrame) End(rendered bool) {
	f.ended <- rendered
}

// Rendered waits for End.
func (f *StepFrame) Rendered() bool {
	return <-f.ended
}
