// Package headless is a canvas driver without a window. Every frame
// rasterises each figure into its own image; the images of the last
// rendered frame can be read back or written out as PNG.
package headless

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/roffe/plotcanvas/pkg/canvas"
	"github.com/roffe/plotcanvas/pkg/figure"
	"github.com/roffe/plotcanvas/pkg/plotter"
)

var _ canvas.Driver = (*Driver)(nil)

type Driver struct {
	plotter       *plotter.Plotter
	limiter       *rate.Limiter
	width, height int

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	images map[string]*image.RGBA
	frames int
}

type DriverOpt func(*Driver)

// WithFrameRate caps the frame rate. Zero or less means unlimited.
func WithFrameRate(fps float64) DriverOpt {
	return func(d *Driver) {
		if fps <= 0 {
			d.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		d.limiter = rate.NewLimiter(rate.Limit(fps), 1)
	}
}

// WithSize sets the size of every figure window in pixels.
func WithSize(width, height int) DriverOpt {
	return func(d *Driver) {
		d.width, d.height = width, height
	}
}

func WithPlotter(p *plotter.Plotter) DriverOpt {
	return func(d *Driver) {
		d.plotter = p
	}
}

func New(opts ...DriverOpt) *Driver {
	d := &Driver{
		width:  640,
		height: 480,
		images: make(map[string]*image.RGBA),
	}
	d.ctx, d.cancel = context.WithCancel(context.Background())
	for _, opt := range opts {
		opt(d)
	}
	if d.limiter == nil {
		WithFrameRate(60)(d)
	}
	if d.plotter == nil {
		d.plotter = plotter.New()
	}
	return d
}

// Close plays the part of the user closing the window: the render loop
// exits at its next frame.
func (d *Driver) Close() {
	d.cancel()
}

func (d *Driver) NextFrame() (canvas.Frame, error) {
	if err := d.limiter.Wait(d.ctx); err != nil {
		return nil, canvas.ErrWindowClosed
	}
	return &frame{d: d, images: make(map[string]*image.RGBA)}, nil
}

// Frames is the number of frames rendered so far. Skipped frames do not
// count.
func (d *Driver) Frames() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames
}

// Snapshot returns the named figure as drawn by the last rendered frame.
// The image is never written to again.
func (d *Driver) Snapshot(name string) (image.Image, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	img, ok := d.images[name]
	return img, ok
}

func (d *Driver) Names() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	names := make([]string, 0, len(d.images))
	for k := range d.images {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

func (d *Driver) WritePNG(name string, w io.Writer) error {
	img, ok := d.Snapshot(name)
	if !ok {
		return fmt.Errorf("no frame for figure %q", name)
	}
	return png.Encode(w, img)
}

// SavePNGs writes every figure of the last frame into dir, one file per
// figure, and returns the paths written.
func (d *Driver) SavePNGs(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var paths []string
	for _, name := range d.Names() {
		path := filepath.Join(dir, FileName(name))
		if err := d.savePNG(name, path); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (d *Driver) savePNG(name, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := d.WritePNG(name, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

var fileNameReplacer = strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_")

// FileName turns a figure name into a safe PNG file name.
func FileName(name string) string {
	if name == "" {
		name = "figure"
	}
	return fileNameReplacer.Replace(name) + ".png"
}

type frame struct {
	d      *Driver
	images map[string]*image.RGBA
}

func (f *frame) Figure(name string, fig *figure.Figure) float64 {
	img := image.NewRGBA(image.Rect(0, 0, f.d.width, f.d.height))
	h := f.d.plotter.Figure(img, name, fig)
	f.images[name] = img
	return h
}

func (f *frame) End(rendered bool) {
	if !rendered {
		return
	}
	f.d.mu.Lock()
	f.d.images = f.images
	f.d.frames++
	f.d.mu.Unlock()
}
