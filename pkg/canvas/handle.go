package canvas

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/roffe/plotcanvas/pkg/figure"
	"github.com/roffe/plotcanvas/pkg/store"
)

// FigureHandle refers to one figure instance by name. It is cheap to copy
// and safe to use from any goroutine.
type FigureHandle struct {
	store *store.Store
	name  string
	id    uuid.UUID
}

func (h *FigureHandle) Name() string {
	return h.name
}

// withMut resolves the figure under the store lock and runs fn on it.
func (h *FigureHandle) withMut(fn func(*figure.Figure) error) error {
	err := h.store.Do(func(figs store.Figures) error {
		fig, err := figs.Lookup(h.name, h.id)
		if err != nil {
			return err
		}
		return fn(fig)
	})
	if err != nil {
		return fmt.Errorf("figure %q: %w", h.name, err)
	}
	return nil
}

func (h *FigureHandle) Shape() (rows, cols int, err error) {
	err = h.withMut(func(fig *figure.Figure) error {
		rows, cols = fig.Shape()
		return nil
	})
	return rows, cols, err
}

// RowHeights returns the row heights computed by the last rendered frame.
func (h *FigureHandle) RowHeights() ([]float64, error) {
	var heights []float64
	err := h.withMut(func(fig *figure.Figure) error {
		for _, r := range fig.Rows {
			heights = append(heights, r.Height)
		}
		return nil
	})
	return heights, err
}

// Plot checks row and col against the figure's shape and returns a handle
// to that cell.
func (h *FigureHandle) Plot(row, col int) (*PlotHandle, error) {
	err := h.withMut(func(fig *figure.Figure) error {
		_, err := fig.Plot(row, col)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &PlotHandle{figure: *h, row: row, col: col}, nil
}

// PlotHandle refers to one cell of a figure.
type PlotHandle struct {
	figure   FigureHandle
	row, col int
}

func (p *PlotHandle) Figure() *FigureHandle {
	fh := p.figure
	return &fh
}

func (p *PlotHandle) Row() int { return p.row }
func (p *PlotHandle) Col() int { return p.col }

func (p *PlotHandle) withMut(fn func(*figure.Plot) error) error {
	return p.figure.withMut(func(fig *figure.Figure) error {
		plot, err := fig.Plot(p.row, p.col)
		if err != nil {
			return err
		}
		return fn(plot)
	})
}

// AddLine zips x and y into a new line and appends it. Extra values in the
// longer slice are ignored.
func (p *PlotHandle) AddLine(x, y []float64) error {
	return AddLineOf(p, x, y)
}

// AddLineOf is AddLine for any numeric element type.
func AddLineOf[T figure.Number](p *PlotHandle, x, y []T) error {
	return p.AddSeries(figure.Zip(x, y))
}

func (p *PlotHandle) AddSeries(line figure.Line) error {
	return p.withMut(func(plot *figure.Plot) error {
		plot.AddLine(line)
		return nil
	})
}

// SetLine replaces line i, or appends when i is the current line count.
func (p *PlotHandle) SetLine(i int, x, y []float64) error {
	line := figure.Zip(x, y)
	return p.withMut(func(plot *figure.Plot) error {
		return plot.SetLine(i, line)
	})
}

// Len returns the number of lines in the plot.
func (p *PlotHandle) Len() (n int, err error) {
	err = p.withMut(func(plot *figure.Plot) error {
		n = plot.Len()
		return nil
	})
	return n, err
}
