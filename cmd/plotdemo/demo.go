package main

import (
	"context"
	"fmt"
	"math"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/roffe/plotcanvas/pkg/canvas"
	"github.com/roffe/plotcanvas/pkg/feed"
)

// lineSink is the part of a plot handle the demo writes through. Local and
// remote handles both satisfy it.
type lineSink interface {
	AddLine(x, y []float64) error
	SetLine(i int, x, y []float64) error
}

type target interface {
	addFigure(name string, rows, cols int) (func(row, col int) (lineSink, error), error)
}

type localTarget struct{ c *canvas.Canvas }

func (t localTarget) addFigure(name string, rows, cols int) (func(row, col int) (lineSink, error), error) {
	fh, err := t.c.AddFigure(name, rows, cols)
	if err != nil {
		return nil, err
	}
	return func(row, col int) (lineSink, error) { return fh.Plot(row, col) }, nil
}

type remoteTarget struct{ c *feed.Client }

func (t remoteTarget) addFigure(name string, rows, cols int) (func(row, col int) (lineSink, error), error) {
	fh, err := t.c.AddFigure(name, rows, cols)
	if err != nil {
		return nil, err
	}
	return func(row, col int) (lineSink, error) { return fh.Plot(row, col) }, nil
}

const samples = 100

func linspace(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = 6.28 * float64(i) / float64(n)
	}
	return x
}

func mapf(x []float64, f func(float64) float64) []float64 {
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = f(v)
	}
	return y
}

// populate draws the two demo figures: a 1x2 set of phase shifted sines and
// a 2x2 set of Lissajous curves.
func populate(t target, prefix string) error {
	x := linspace(samples)

	plot1, err := t.addFigure(prefix+"plot set 1", 1, 2)
	if err != nil {
		return err
	}
	for j := 0; j < 2; j++ {
		p, err := plot1(0, j)
		if err != nil {
			return err
		}
		for k := 0; k < 2; k++ {
			phase := float64(2*k + j)
			if err := p.AddLine(x, mapf(x, func(v float64) float64 { return math.Sin(v + phase) })); err != nil {
				return err
			}
		}
	}

	plot2, err := t.addFigure(prefix+"plot set 2", 2, 2)
	if err != nil {
		return err
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			p, err := plot2(i, j)
			if err != nil {
				return err
			}
			for k := 0; k < 2; k++ {
				l := float64(4*(i+1)*(j+1) + 2*(j+1) + k + 1)
				px := mapf(x, func(v float64) float64 { return math.Sin(v + l) })
				py := mapf(x, func(v float64) float64 { return math.Sin(0.5*v + 2*l) })
				if err := p.AddLine(px, py); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// animate runs one producer per cell of a rows x cols figure, each
// rewriting line 0 with a moving sine every interval until ctx is done.
func animate(ctx context.Context, t target, name string, rows, cols int, interval time.Duration) error {
	plotAt, err := t.addFigure(name, rows, cols)
	if err != nil {
		return err
	}
	x := linspace(samples)
	g, ctx := errgroup.WithContext(ctx)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			p, err := plotAt(r, c)
			if err != nil {
				return err
			}
			freq := float64(r*cols + c + 1)
			r, c := r, c
			g.Go(func() error {
				tick := time.NewTicker(interval)
				defer tick.Stop()
				start := time.Now()
				for {
					select {
					case <-ctx.Done():
						return nil
					case now := <-tick.C:
						phase := now.Sub(start).Seconds()
						y := mapf(x, func(v float64) float64 { return math.Sin(freq*v + phase) })
						if err := p.SetLine(0, x, y); err != nil {
							return fmt.Errorf("%s (%d,%d): %w", name, r, c, err)
						}
					}
				}
			})
		}
	}
	log.WithField("figure", name).Debugf("animating %d producers", rows*cols)
	return g.Wait()
}
