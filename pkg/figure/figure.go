// Package figure holds the plot data model: a Figure is a fixed grid of
// PlotRows, each holding a fixed number of Plots. None of the types here are
// safe for concurrent use; pkg/store serialises access to them.
package figure

import "github.com/google/uuid"

// DefaultRowHeight is the height every row starts with, before the first
// frame has measured the real content area.
const DefaultRowHeight = 200.0

type PlotRow struct {
	Plots  []Plot
	Height float64
}

type Figure struct {
	ID   uuid.UUID
	Rows []PlotRow
}

// New allocates a rows x cols grid of empty plots. Counts below 1 are
// treated as 1.
func New(rows, cols int) *Figure {
	rows, cols = max(rows, 1), max(cols, 1)
	f := &Figure{
		ID:   uuid.New(),
		Rows: make([]PlotRow, rows),
	}
	for i := range f.Rows {
		f.Rows[i] = PlotRow{
			Plots:  make([]Plot, cols),
			Height: DefaultRowHeight,
		}
	}
	return f
}

func (f *Figure) Shape() (rows, cols int) {
	if len(f.Rows) == 0 {
		return 0, 0
	}
	return len(f.Rows), len(f.Rows[0].Plots)
}

// Plot returns the cell at row, col. The row bound is checked first.
func (f *Figure) Plot(row, col int) (*Plot, error) {
	rows, cols := f.Shape()
	if row < 0 || row >= rows {
		return nil, outOfRange("row", row, rows)
	}
	if col < 0 || col >= cols {
		return nil, outOfRange("col", col, cols)
	}
	return &f.Rows[row].Plots[col], nil
}

// SplitHeight divides total evenly across all rows.
func (f *Figure) SplitHeight(total float64) {
	if len(f.Rows) == 0 {
		return
	}
	h := total / float64(len(f.Rows))
	for i := range f.Rows {
		f.Rows[i].Height = h
	}
}
