package figure

import "math"

type Point struct {
	X, Y float64
}

func (p Point) finite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Line is one connected series, drawn in insertion order.
type Line []Point

type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Zip pairs x and y pointwise. Values past the shorter slice are dropped.
func Zip[T Number](x, y []T) Line {
	n := min(len(x), len(y))
	line := make(Line, n)
	for i := 0; i < n; i++ {
		line[i] = Point{X: float64(x[i]), Y: float64(y[i])}
	}
	return line
}

// Plot is a single grid cell. Line indices are always contiguous.
type Plot struct {
	Lines []Line
}

func (p *Plot) Len() int {
	return len(p.Lines)
}

func (p *Plot) AddLine(line Line) {
	p.Lines = append(p.Lines, line)
}

// SetLine overwrites the line at i, or appends when i equals the current length.
func (p *Plot) SetLine(i int, line Line) error {
	switch {
	case i < 0 || i > len(p.Lines):
		return outOfRange("line", i, len(p.Lines))
	case i == len(p.Lines):
		p.Lines = append(p.Lines, line)
	default:
		p.Lines[i] = line
	}
	return nil
}

// Bounds returns the extent of every finite point in the plot. ok is false
// when there is nothing finite to draw.
func (p *Plot) Bounds() (r Rect, ok bool) {
	r = Rect{
		Min: Point{math.Inf(1), math.Inf(1)},
		Max: Point{math.Inf(-1), math.Inf(-1)},
	}
	for _, line := range p.Lines {
		for _, pt := range line {
			if !pt.finite() {
				continue
			}
			ok = true
			r.Min.X = math.Min(r.Min.X, pt.X)
			r.Min.Y = math.Min(r.Min.Y, pt.Y)
			r.Max.X = math.Max(r.Max.X, pt.X)
			r.Max.Y = math.Max(r.Max.Y, pt.Y)
		}
	}
	if !ok {
		return Rect{}, false
	}
	return r, true
}

type Rect struct {
	Min, Max Point
}

func (r Rect) Dx() float64 { return r.Max.X - r.Min.X }
func (r Rect) Dy() float64 { return r.Max.Y - r.Min.Y }

// Finite reports whether both endpoints of a segment can be drawn.
func Finite(a, b Point) bool {
	return a.finite() && b.finite()
}
