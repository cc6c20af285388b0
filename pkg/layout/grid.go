// Package layout holds fyne layouts used by the window driver.
package layout

import (
	"math"

	"fyne.io/fyne/v2"
)

var _ fyne.Layout = (*Grid)(nil)

// Grid tiles objects into equally sized cells, filling rows top to bottom.
// With Cols set to 0 the column count follows the number of objects so the
// grid stays roughly square.
type Grid struct {
	Cols    int
	Padding float32
}

func NewGrid(cols int, padding float32) *Grid {
	return &Grid{
		Cols:    max(cols, 0),
		Padding: padding,
	}
}

// Dims returns the columns and rows used for n objects.
func (g *Grid) Dims(n int) (cols, rows int) {
	if n <= 0 {
		return 0, 0
	}
	cols = g.Cols
	if cols <= 0 {
		cols = int(math.Ceil(math.Sqrt(float64(n))))
	}
	cols = min(cols, n)
	rows = (n + cols - 1) / cols
	return cols, rows
}

func (g *Grid) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	cols, rows := g.Dims(len(objects))
	if cols == 0 {
		return
	}
	padding2 := g.Padding * 2
	cellWidth := (size.Width - float32(cols)*padding2) / float32(cols)
	cellHeight := (size.Height - float32(rows)*padding2) / float32(rows)

	for i, obj := range objects {
		row := i / cols
		col := i % cols
		obj.Move(fyne.NewPos(
			float32(col)*(cellWidth+padding2)+g.Padding,
			float32(row)*(cellHeight+padding2)+g.Padding,
		))
		obj.Resize(fyne.NewSize(max(cellWidth, 0), max(cellHeight, 0)))
	}
}

func (g *Grid) MinSize(objects []fyne.CanvasObject) fyne.Size {
	cols, rows := g.Dims(len(objects))
	if cols == 0 {
		return fyne.NewSize(0, 0)
	}
	var w, h float32
	for _, o := range objects {
		ms := o.MinSize()
		w = max(w, ms.Width)
		h = max(h, ms.Height)
	}
	padding2 := g.Padding * 2
	return fyne.NewSize((w+padding2)*float32(cols), (h+padding2)*float32(rows))
}
