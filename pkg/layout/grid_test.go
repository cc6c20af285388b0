package layout_test

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"

	"github.com/roffe/plotcanvas/pkg/layout"
)

func TestDims(t *testing.T) {
	tests := []struct {
		name               string
		cols, n            int
		wantCols, wantRows int
	}{
		{name: "empty", cols: 0, n: 0},
		{name: "one", cols: 0, n: 1, wantCols: 1, wantRows: 1},
		{name: "auto five", cols: 0, n: 5, wantCols: 3, wantRows: 2},
		{name: "auto four", cols: 0, n: 4, wantCols: 2, wantRows: 2},
		{name: "fixed", cols: 2, n: 5, wantCols: 2, wantRows: 3},
		{name: "fixed wider than n", cols: 4, n: 2, wantCols: 2, wantRows: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, rows := layout.NewGrid(tt.cols, 0).Dims(tt.n)
			assert.Equal(t, tt.wantCols, cols)
			assert.Equal(t, tt.wantRows, rows)
		})
	}
}

func TestGridLayout(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	objs := []fyne.CanvasObject{
		canvas.NewRectangle(nil),
		canvas.NewRectangle(nil),
		canvas.NewRectangle(nil),
	}
	g := layout.NewGrid(0, 5)
	g.Layout(objs, fyne.NewSize(220, 220))

	// 2x2 grid, 110 per cell including 5 padding each side
	assert.Equal(t, fyne.NewPos(5, 5), objs[0].Position())
	assert.Equal(t, fyne.NewPos(115, 5), objs[1].Position())
	assert.Equal(t, fyne.NewPos(5, 115), objs[2].Position())
	for _, o := range objs {
		assert.Equal(t, fyne.NewSize(100, 100), o.Size())
	}
}

func TestGridMinSize(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	a := canvas.NewRectangle(nil)
	a.SetMinSize(fyne.NewSize(40, 10))
	b := canvas.NewRectangle(nil)
	b.SetMinSize(fyne.NewSize(10, 30))
	g := layout.NewGrid(2, 1)
	assert.Equal(t, fyne.NewSize(84, 32), g.MinSize([]fyne.CanvasObject{a, b}))
	assert.Equal(t, fyne.NewSize(0, 0), g.MinSize(nil))
}
