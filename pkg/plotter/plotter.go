// Package plotter rasterises figures into images. It has no window system
// dependency and is shared by the headless and fyne drivers.
package plotter

import (
	"image"
	"image/color"
	"image/draw"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/roffe/plotcanvas/pkg/figure"
)

// TitleHeight is the strip reserved above the grid for the figure title.
const TitleHeight = 18

type Plotter struct {
	background color.RGBA
	frame      color.RGBA
	text       color.RGBA
	padding    int
	thickness  int
	labels     bool
	titles     bool
	limit      int
}

type PlotterOpt func(*Plotter)

func WithBackground(c color.RGBA) PlotterOpt {
	return func(p *Plotter) {
		p.background = c
	}
}

func WithThickness(px int) PlotterOpt {
	return func(p *Plotter) {
		p.thickness = px
	}
}

// WithPadding sets the gap in pixels kept around every cell.
func WithPadding(px int) PlotterOpt {
	return func(p *Plotter) {
		p.padding = px
	}
}

// WithLabels toggles the min/max tick labels drawn in each cell.
func WithLabels(enabled bool) PlotterOpt {
	return func(p *Plotter) {
		p.labels = enabled
	}
}

// WithTitles toggles the title strip. Drivers whose windows already show
// the figure name turn it off.
func WithTitles(enabled bool) PlotterOpt {
	return func(p *Plotter) {
		p.titles = enabled
	}
}

// WithConcurrency limits how many cells are rasterised at once.
func WithConcurrency(n int) PlotterOpt {
	return func(p *Plotter) {
		p.limit = n
	}
}

func New(opts ...PlotterOpt) *Plotter {
	p := &Plotter{
		background: color.RGBA{23, 23, 24, 255},
		frame:      color.RGBA{80, 80, 80, 255},
		text:       color.RGBA{200, 200, 200, 255},
		padding:    4,
		thickness:  1,
		labels:     true,
		titles:     true,
		limit:      runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// TitleHeight returns the space Figure reserves above the grid.
func (p *Plotter) TitleHeight() int {
	if !p.titles {
		return 0
	}
	return TitleHeight
}

// Figure clears img, draws title along the top and the grid of fig below it.
// Rows are laid out with the heights currently stored in fig; a row that
// does not fit is cut at the bottom edge. The returned value is the height
// that was available for the grid, which the caller feeds back into
// fig.SplitHeight.
func (p *Plotter) Figure(img *image.RGBA, title string, fig *figure.Figure) float64 {
	b := img.Bounds()
	draw.Draw(img, b, image.NewUniform(p.background), image.Point{}, draw.Src)
	th := p.TitleHeight()
	if th > 0 {
		drawText(img, b.Min.X+p.padding, b.Min.Y+face.Ascent+2, title, p.text)
	}

	if b.Dy() <= th || b.Dx() <= 0 {
		return 0
	}
	content := image.Rect(b.Min.X, b.Min.Y+th, b.Max.X, b.Max.Y)
	rows, cols := fig.Shape()
	if rows == 0 || cols == 0 {
		return float64(content.Dy())
	}
	cellWidth := content.Dx() / cols

	var g errgroup.Group
	g.SetLimit(max(p.limit, 1))
	y := content.Min.Y
	for r := range fig.Rows {
		top := y
		bottom := min(y+max(int(fig.Rows[r].Height), 0), content.Max.Y)
		y = bottom
		for c := range fig.Rows[r].Plots {
			x := content.Min.X + c*cellWidth
			cell := image.Rect(x, top, x+cellWidth, bottom).Inset(p.padding)
			if cell.Empty() {
				continue
			}
			plot := &fig.Rows[r].Plots[c]
			// cells never overlap, so writes to the shared pixel buffer are disjoint
			sub := img.SubImage(cell).(*image.RGBA)
			g.Go(func() error {
				p.Plot(sub, plot)
				return nil
			})
		}
	}
	g.Wait()
	return float64(content.Dy())
}

// Plot draws a single cell: a frame, every line scaled to the plot bounds,
// and optional tick labels. Segments touching a non-finite point are left
// out, so NaN and Inf show up as gaps.
func (p *Plotter) Plot(img *image.RGBA, plot *figure.Plot) {
	b := img.Bounds()
	drawFrame(img, b, p.frame)

	bounds, ok := plot.Bounds()
	if !ok {
		return
	}
	if bounds.Dx() == 0 {
		bounds.Min.X -= 0.5
		bounds.Max.X += 0.5
	}
	if bounds.Dy() == 0 {
		bounds.Min.Y -= 0.5
		bounds.Max.Y += 0.5
	}

	inner := b.Inset(1)
	w, h := float64(inner.Dx()-1), float64(inner.Dy()-1)
	toPixel := func(pt figure.Point) (int, int) {
		x := inner.Min.X + int((pt.X-bounds.Min.X)/bounds.Dx()*w)
		y := inner.Max.Y - 1 - int((pt.Y-bounds.Min.Y)/bounds.Dy()*h)
		return x, y
	}

	for i, line := range plot.Lines {
		col := LineColor(i)
		if len(line) == 1 && figure.Finite(line[0], line[0]) {
			x, y := toPixel(line[0])
			fillCircle(img, x, y, max(p.thickness/2, 1), col)
			continue
		}
		for j := 1; j < len(line); j++ {
			if !figure.Finite(line[j-1], line[j]) {
				continue
			}
			x0, y0 := toPixel(line[j-1])
			x1, y1 := toPixel(line[j])
			BresenhamThick(img, x0, y0, x1, y1, p.thickness, col)
		}
	}

	if p.labels && inner.Dy() > 2*face.Height {
		maxY := formatTick(bounds.Max.Y)
		minY := formatTick(bounds.Min.Y)
		drawText(img, inner.Min.X+2, inner.Min.Y+face.Ascent, maxY, p.text)
		drawText(img, inner.Min.X+2, inner.Max.Y-2, minY, p.text)
		maxX := formatTick(bounds.Max.X)
		drawText(img, inner.Max.X-textWidth(maxX)-2, inner.Max.Y-2, maxX, p.text)
	}
}

func drawFrame(img *image.RGBA, r image.Rectangle, col color.RGBA) {
	if r.Empty() {
		return
	}
	Bresenham(img, r.Min.X, r.Min.Y, r.Max.X-1, r.Min.Y, col)
	Bresenham(img, r.Min.X, r.Max.Y-1, r.Max.X-1, r.Max.Y-1, col)
	Bresenham(img, r.Min.X, r.Min.Y, r.Min.X, r.Max.Y-1, col)
	Bresenham(img, r.Max.X-1, r.Min.Y, r.Max.X-1, r.Max.Y-1, col)
}
