package canvas

import (
	"errors"

	"github.com/roffe/plotcanvas/pkg/figure"
)

// ErrWindowClosed is returned by a Driver once its window is gone. It ends
// the render loop and is not a handle error.
var ErrWindowClosed = errors.New("window closed")

// Driver is the window system seen from the render loop. NextFrame blocks
// until the next frame is due, on whatever schedule the window system
// keeps.
type Driver interface {
	NextFrame() (Frame, error)
}

// Frame is one redraw. Figure is called once per stored figure, in name
// order, and returns the content height the figure window actually got.
// End is always called last; rendered is false when the store was busy and
// nothing was drawn, in which case the previous frame stays on screen.
type Frame interface {
	Figure(name string, fig *figure.Figure) float64
	End(rendered bool)
}
