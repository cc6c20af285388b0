// Package window is the desktop canvas driver. It opens one fyne window per
// canvas and shows every figure in its own inner window.
//
// fyne wants its event loop on the main goroutine, so the caller creates the
// canvas with this driver and then hands the main goroutine to ShowAndRun.
// Closing the window ends the render loop.
package window

import (
	"context"
	"image"
	"slices"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/roffe/plotcanvas/pkg/canvas"
	"github.com/roffe/plotcanvas/pkg/layout"
	"github.com/roffe/plotcanvas/pkg/plotter"
)

var _ canvas.Driver = (*Driver)(nil)

type Driver struct {
	app     fyne.App
	win     fyne.Window
	windows *container.MultipleWindows
	tiler   *layout.Grid

	plotter    *plotter.Plotter
	limiter    *rate.Limiter
	figureSize fyne.Size
	title      string

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	figures    map[string]*figureWindow
	order      []string
	openOffset fyne.Position
}

type DriverOpt func(*Driver)

func WithTitle(title string) DriverOpt {
	return func(d *Driver) {
		d.title = title
	}
}

// WithFrameRate caps redraws per second.
func WithFrameRate(fps float64) DriverOpt {
	return func(d *Driver) {
		if fps <= 0 {
			fps = 60
		}
		d.limiter = rate.NewLimiter(rate.Limit(fps), 1)
	}
}

// WithFigureSize is the size new figure windows open with.
func WithFigureSize(width, height float32) DriverOpt {
	return func(d *Driver) {
		d.figureSize = fyne.NewSize(width, height)
	}
}

func WithPlotter(p *plotter.Plotter) DriverOpt {
	return func(d *Driver) {
		d.plotter = p
	}
}

// New builds the canvas window on a. Nothing is shown until ShowAndRun.
func New(a fyne.App, opts ...DriverOpt) *Driver {
	d := &Driver{
		app:        a,
		windows:    container.NewMultipleWindows(),
		tiler:      layout.NewGrid(0, 4),
		figureSize: fyne.NewSize(480, 360),
		title:      "plotcanvas",
		figures:    make(map[string]*figureWindow),
	}
	d.ctx, d.cancel = context.WithCancel(context.Background())
	for _, opt := range opts {
		opt(d)
	}
	if d.limiter == nil {
		WithFrameRate(60)(d)
	}
	if d.plotter == nil {
		d.plotter = plotter.New(plotter.WithTitles(false))
	}

	a.Settings().SetTheme(&plotTheme{})
	d.win = a.NewWindow(d.title)
	d.win.SetMaster()
	d.win.SetOnClosed(d.cancel)
	d.win.SetContent(container.NewBorder(d.toolbar(), nil, nil, nil, d.windows))
	d.win.Resize(fyne.NewSize(1024, 768))
	return d
}

// ShowAndRun blocks running the fyne event loop until the window closes.
// Call it from the main goroutine.
func (d *Driver) ShowAndRun() {
	d.win.ShowAndRun()
}

// Close closes the window as if the user had.
func (d *Driver) Close() {
	d.win.Close()
	d.cancel()
}

func (d *Driver) NextFrame() (canvas.Frame, error) {
	if err := d.limiter.Wait(d.ctx); err != nil {
		return nil, canvas.ErrWindowClosed
	}
	return &frame{d: d, seen: make(map[string]bool)}, nil
}

func (d *Driver) toolbar() *widget.Toolbar {
	return widget.NewToolbar(
		widget.NewToolbarAction(theme.ViewRestoreIcon(), d.Tile),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), d.saveAll),
	)
}

// Tile shows every figure window again, including ones the user closed, and
// arranges them in a grid.
func (d *Driver) Tile() {
	d.mu.Lock()
	var objs []fyne.CanvasObject
	var reopen []*figureWindow
	for _, name := range d.order {
		fw := d.figures[name]
		if fw == nil || !fw.added {
			continue
		}
		if fw.hidden {
			fw.hidden = false
			reopen = append(reopen, fw)
		}
		objs = append(objs, fw.inner)
	}
	d.mu.Unlock()
	for _, fw := range reopen {
		fw.inner.Show()
	}
	d.tiler.Layout(objs, d.windows.Size())
}

// Hidden reports whether the user closed the named figure's window.
func (d *Driver) Hidden(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	fw, ok := d.figures[name]
	return ok && fw.hidden
}

// window returns the figure window for name, creating it if needed.
// d.mu must be held.
func (d *Driver) window(name string) *figureWindow {
	if fw, ok := d.figures[name]; ok {
		return fw
	}
	fw := newFigureWindow(d, name)
	d.figures[name] = fw
	d.order = append(d.order, name)
	log.WithField("figure", name).Debug("opening figure window")
	return fw
}

func (d *Driver) drop(name string) {
	delete(d.figures, name)
	for i, n := range d.order {
		if n == name {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// addInner places a new figure window, cascading from the top left.
func (d *Driver) addInner(w *container.InnerWindow) {
	d.mu.Lock()
	pos := d.openOffset
	d.openOffset = d.openOffset.AddXY(15, 15)
	if d.openOffset.X > 150 {
		d.openOffset = fyne.NewPos(0, 0)
	}
	d.mu.Unlock()
	w.Move(pos)
	d.windows.Add(w)
}

func (d *Driver) removeInner(w *container.InnerWindow) {
	d.windows.Windows = slices.DeleteFunc(d.windows.Windows, func(iw *container.InnerWindow) bool {
		return iw == w
	})
	d.windows.Refresh()
}

// Names lists the figures that have a window, in the order they opened.
func (d *Driver) Names() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.order)
}

// Snapshot returns the last image shown for the named figure.
func (d *Driver) Snapshot(name string) (image.Image, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fw, ok := d.figures[name]
	if !ok || fw.shown == nil {
		return nil, false
	}
	return fw.shown, true
}
