package canvas_test

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roffe/plotcanvas/pkg/canvas"
	"github.com/roffe/plotcanvas/pkg/figure"
	"github.com/roffe/plotcanvas/pkg/store"
)

func newCanvas(t *testing.T) (*canvas.Canvas, *canvas.StepDriver) {
	t.Helper()
	drv := canvas.NewStepDriver()
	c := canvas.New(drv, canvas.WithName(t.Name()))
	t.Cleanup(func() {
		drv.Close()
		c.Wait()
	})
	return c, drv
}

func TestAddLineZipsShorter(t *testing.T) {
	c, _ := newCanvas(t)
	fh, err := c.AddFigure("a", 1, 1)
	require.NoError(t, err)
	ph, err := fh.Plot(0, 0)
	require.NoError(t, err)
	require.NoError(t, ph.AddLine([]float64{1, 2, 3}, []float64{10, 20}))

	err = c.Store().Do(func(figs store.Figures) error {
		want := []figure.Line{{{X: 1, Y: 10}, {X: 2, Y: 20}}}
		if diff := cmp.Diff(want, figs["a"].Rows[0].Plots[0].Lines); diff != "" {
			t.Errorf("lines mismatch (-want +got):\n%s", diff)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestPlotHandleOps(t *testing.T) {
	c, _ := newCanvas(t)
	fh, err := c.AddFigure("ops", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, "ops", fh.Name())
	rows, cols, err := fh.Shape()
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)

	ph, err := fh.Plot(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, ph.Row())
	assert.Equal(t, 2, ph.Col())
	assert.Equal(t, "ops", ph.Figure().Name())

	require.NoError(t, canvas.AddLineOf(ph, []int{1, 2}, []int{3, 4}))
	require.NoError(t, ph.SetLine(1, []float64{0}, []float64{0}))
	require.NoError(t, ph.SetLine(0, []float64{5}, []float64{6}))
	n, err := ph.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	err = ph.SetLine(5, nil, nil)
	var oor *figure.IndexOutOfRangeError
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, 5, oor.Index)
	assert.Equal(t, 2, oor.Bound)
}

func TestPlotBounds(t *testing.T) {
	c, _ := newCanvas(t)
	fh, err := c.AddFigure("grid", 2, 3)
	require.NoError(t, err)
	tests := []struct {
		name      string
		row, col  int
		wantWhat  string
		wantIndex int
		wantBound int
	}{
		{name: "origin", row: 0, col: 0},
		{name: "last", row: 1, col: 2},
		{name: "row", row: 2, col: 0, wantWhat: "row", wantIndex: 2, wantBound: 2},
		{name: "col", row: 1, col: 3, wantWhat: "col", wantIndex: 3, wantBound: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ph, err := fh.Plot(tt.row, tt.col)
			if tt.wantWhat == "" {
				require.NoError(t, err)
				require.NotNil(t, ph)
				return
			}
			assert.Nil(t, ph)
			require.ErrorIs(t, err, canvas.ErrIndexOutOfRange)
			var oor *figure.IndexOutOfRangeError
			require.ErrorAs(t, err, &oor)
			assert.Equal(t, tt.wantWhat, oor.What)
			assert.Equal(t, tt.wantIndex, oor.Index)
			assert.Equal(t, tt.wantBound, oor.Bound)
		})
	}
}

func TestReplacedFigureInvalidatesOldHandles(t *testing.T) {
	c, _ := newCanvas(t)
	old, err := c.AddFigure("a", 2, 2)
	require.NoError(t, err)
	oldPlot, err := old.Plot(1, 1)
	require.NoError(t, err)

	fresh, err := c.AddFigure("a", 1, 1)
	require.NoError(t, err)

	_, err = old.Plot(0, 0)
	assert.ErrorIs(t, err, canvas.ErrNotFound)
	assert.ErrorIs(t, oldPlot.AddLine([]float64{1}, []float64{1}), canvas.ErrNotFound)

	ph, err := fresh.Plot(0, 0)
	require.NoError(t, err)
	require.NoError(t, ph.AddLine([]float64{1}, []float64{1}))
	_, err = fresh.Plot(1, 1)
	assert.ErrorIs(t, err, canvas.ErrIndexOutOfRange)

	looked, err := c.Figure("a")
	require.NoError(t, err)
	rows, cols, err := looked.Shape()
	require.NoError(t, err)
	assert.Equal(t, [2]int{1, 1}, [2]int{rows, cols})
}

func TestRemoveFigure(t *testing.T) {
	c, _ := newCanvas(t)
	fh, err := c.AddFigure("gone", 1, 1)
	require.NoError(t, err)
	_, err = c.AddFigure("kept", 0, 0)
	require.NoError(t, err)

	require.NoError(t, c.RemoveFigure("gone"))
	assert.ErrorIs(t, c.RemoveFigure("gone"), canvas.ErrNotFound)
	_, err = fh.Plot(0, 0)
	assert.ErrorIs(t, err, canvas.ErrNotFound)
	_, err = c.Figure("gone")
	assert.ErrorIs(t, err, canvas.ErrNotFound)

	names, err := c.Figures()
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, names)
}

func TestFrameSplitsHeights(t *testing.T) {
	c, drv := newCanvas(t)
	_, err := c.AddFigure("b", 3, 2)
	require.NoError(t, err)
	_, err = c.AddFigure("a", 1, 1)
	require.NoError(t, err)
	heights := c.Events().Subscribe(canvas.HeightTopic("b"))

	f := drv.Step(120)
	require.True(t, f.Rendered())
	assert.Equal(t, []string{"a", "b"}, f.Drawn)

	err = c.Store().Do(func(figs store.Figures) error {
		for _, r := range figs["b"].Rows {
			assert.Equal(t, 40.0, r.Height)
		}
		assert.Equal(t, 120.0, figs["a"].Rows[0].Height)
		return nil
	})
	require.NoError(t, err)

	select {
	case h := <-heights:
		assert.Equal(t, 120.0, h)
	case <-time.After(time.Second):
		t.Fatal("height not published")
	}
}

func TestRenderLoopSkipsWhileStoreHeld(t *testing.T) {
	c, drv := newCanvas(t)
	_, err := c.AddFigure("a", 1, 1)
	require.NoError(t, err)
	skipped := c.Events().Subscribe(canvas.TopicSkipped)

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error)
	go func() {
		done <- c.Store().Do(func(store.Figures) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	f := drv.Step(100)
	assert.False(t, f.Rendered())
	assert.Empty(t, f.Drawn)
	select {
	case n := <-skipped:
		assert.Equal(t, 1.0, n)
	case <-time.After(time.Second):
		t.Fatal("skip not published")
	}

	close(release)
	require.NoError(t, <-done)

	f = drv.Step(100)
	assert.True(t, f.Rendered())
	assert.Equal(t, []string{"a"}, f.Drawn)
}

func TestPanicInFrameInvalidatesHandles(t *testing.T) {
	c, drv := newCanvas(t)
	fh, err := c.AddFigure("boom", 1, 1)
	require.NoError(t, err)
	ph, err := fh.Plot(0, 0)
	require.NoError(t, err)

	drv.StepPanic("boom")
	err = c.Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
	assert.False(t, c.IsRunning())

	assert.ErrorIs(t, ph.AddLine([]float64{1}, []float64{2}), canvas.ErrHandleInvalid)
	_, err = fh.Plot(0, 0)
	assert.ErrorIs(t, err, canvas.ErrHandleInvalid)
	_, err = c.AddFigure("other", 1, 1)
	assert.ErrorIs(t, err, canvas.ErrHandleInvalid)
	_, err = c.Figures()
	assert.ErrorIs(t, err, canvas.ErrHandleInvalid)
}

func TestWindowCloseStopsLoop(t *testing.T) {
	drv := canvas.NewStepDriver()
	c := canvas.New(drv)
	assert.True(t, c.IsRunning())
	drv.Close()
	assert.NoError(t, c.Wait())
	assert.False(t, c.IsRunning())

	// the store outlives the loop
	fh, err := c.AddFigure("late", 1, 1)
	require.NoError(t, err)
	_, err = fh.Plot(0, 0)
	assert.NoError(t, err)
}

func TestConcurrentProducers(t *testing.T) {
	c, drv := newCanvas(t)
	fh, err := c.AddFigure("shared", 2, 2)
	require.NoError(t, err)

	stop := make(chan struct{})
	frames := make(chan struct{})
	go func() {
		defer close(frames)
		for {
			select {
			case <-stop:
				return
			default:
				drv.Step(200).Rendered()
			}
		}
	}()

	const producers, lines = 8, 50
	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			ph, err := fh.Plot(i%2, (i/2)%2)
			if !assert.NoError(t, err) {
				return
			}
			for j := 0; j < lines; j++ {
				assert.NoError(t, ph.AddLine([]float64{0, 1}, []float64{float64(i), float64(j)}))
			}
		}()
	}
	wg.Wait()
	close(stop)
	<-frames

	total := 0
	for r := 0; r < 2; r++ {
		for col := 0; col < 2; col++ {
			ph, err := fh.Plot(r, col)
			require.NoError(t, err)
			n, err := ph.Len()
			require.NoError(t, err)
			total += n
		}
	}
	assert.Equal(t, producers*lines, total)
}
