package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roffe/plotcanvas/pkg/canvas"
	"github.com/roffe/plotcanvas/pkg/headless"
)

func TestPopulate(t *testing.T) {
	drv := headless.New(headless.WithSize(100, 100), headless.WithFrameRate(100))
	c := canvas.New(drv)
	defer func() {
		drv.Close()
		assert.NoError(t, c.Wait())
	}()

	require.NoError(t, populate(localTarget{c}, "x "))
	names, err := c.Figures()
	require.NoError(t, err)
	assert.Equal(t, []string{"x plot set 1", "x plot set 2"}, names)

	fh, err := c.Figure("x plot set 2")
	require.NoError(t, err)
	ph, err := fh.Plot(1, 1)
	require.NoError(t, err)
	n, err := ph.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAnimateStopsWithContext(t *testing.T) {
	drv := headless.New(headless.WithSize(100, 100), headless.WithFrameRate(100))
	c := canvas.New(drv)
	defer func() {
		drv.Close()
		c.Wait()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, animate(ctx, localTarget{c}, "live", 2, 2, 5*time.Millisecond))

	fh, err := c.Figure("live")
	require.NoError(t, err)
	ph, err := fh.Plot(0, 1)
	require.NoError(t, err)
	n, err := ph.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
