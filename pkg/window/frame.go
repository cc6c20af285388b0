package window

import (
	"image"
	"math"

	"fyne.io/fyne/v2"
	fcanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	log "github.com/sirupsen/logrus"

	"github.com/roffe/plotcanvas/pkg/figure"
)

// figureWindow is the inner window showing one figure.
type figureWindow struct {
	name  string
	inner *container.InnerWindow
	img   *fcanvas.Image
	shown *image.RGBA
	// content height of the last raster
	height float64

	added  bool
	hidden bool
}

func newFigureWindow(d *Driver, name string) *figureWindow {
	fw := &figureWindow{name: name}
	fw.img = fcanvas.NewImageFromImage(nil)
	fw.img.FillMode = fcanvas.ImageFillStretch
	fw.img.ScaleMode = fcanvas.ImageScaleFastest

	bar := widget.NewToolbar(
		widget.NewToolbarAction(theme.ContentCopyIcon(), func() { d.copyFigure(name) }),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() { d.saveFigure(name) }),
	)
	fw.inner = container.NewInnerWindow(name, container.NewBorder(bar, nil, nil, nil, fw.img))
	fw.inner.CloseIntercept = func() {
		d.mu.Lock()
		fw.hidden = true
		d.mu.Unlock()
		fw.inner.Hide()
	}
	fw.inner.Resize(d.figureSize)
	return fw
}

// pixelSize is the size of the image area in device pixels.
func (fw *figureWindow) pixelSize(fallback fyne.Size, scale float32) (int, int) {
	size := fw.img.Size()
	if size.Width < 1 || size.Height < 1 {
		size = fallback
	}
	if scale <= 0 {
		scale = 1
	}
	w := int(math.Ceil(float64(size.Width * scale)))
	h := int(math.Ceil(float64(size.Height * scale)))
	return max(w, 1), max(h, 1)
}

type frame struct {
	d      *Driver
	seen   map[string]bool
	staged []stagedImage
}

type stagedImage struct {
	fw     *figureWindow
	img    *image.RGBA
	height float64
}

func (f *frame) Figure(name string, fig *figure.Figure) float64 {
	f.d.mu.Lock()
	fw := f.d.window(name)
	hidden, last := fw.hidden, fw.height
	f.d.mu.Unlock()
	f.seen[name] = true
	if hidden && last > 0 {
		return last
	}

	w, h := fw.pixelSize(f.d.figureSize, f.d.win.Canvas().Scale())
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	height := f.d.plotter.Figure(img, name, fig)
	f.staged = append(f.staged, stagedImage{fw: fw, img: img, height: height})
	return height
}

func (f *frame) End(rendered bool) {
	if !rendered {
		return
	}
	f.d.mu.Lock()
	var gone []*figureWindow
	for name, fw := range f.d.figures {
		if !f.seen[name] {
			gone = append(gone, fw)
			f.d.drop(name)
		}
	}
	var fresh []*figureWindow
	for _, s := range f.staged {
		s.fw.shown = s.img
		s.fw.height = s.height
		if !s.fw.added {
			s.fw.added = true
			fresh = append(fresh, s.fw)
		}
	}
	f.d.mu.Unlock()

	for _, fw := range gone {
		log.WithField("figure", fw.name).Debug("closing figure window")
		fw.inner.Hide()
		f.d.removeInner(fw.inner)
	}
	for _, fw := range fresh {
		f.d.addInner(fw.inner)
	}
	for _, s := range f.staged {
		s.fw.img.Image = s.img
		s.fw.img.Refresh()
	}
}
