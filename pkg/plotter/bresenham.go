package plotter

import (
	"image/color"
	"math"
)

// IPlotter is anything pixels can be set on. *image.RGBA ignores points
// outside its bounds, which is what keeps lines inside their cell.
type IPlotter interface {
	SetRGBA(x int, y int, c color.RGBA)
}

// BresenhamThick draws a line with specified thickness
func BresenhamThick(p IPlotter, x1, y1, x2, y2 int, thickness int, col color.RGBA) {
	if thickness <= 1 {
		Bresenham(p, x1, y1, x2, y2, col)
		return
	}
	halfThick := thickness / 2

	dx := float64(x2 - x1)
	dy := float64(y2 - y1)
	length := math.Sqrt(dx*dx + dy*dy)
	if length == 0 {
		fillCircle(p, x1, y1, halfThick, col)
		return
	}

	// unit normal to the line
	perpX := -dy / length
	perpY := dx / length
	for i := -halfThick; i <= halfThick; i++ {
		offsetX := int(math.Round(float64(i) * perpX))
		offsetY := int(math.Round(float64(i) * perpY))
		Bresenham(p, x1+offsetX, y1+offsetY, x2+offsetX, y2+offsetY, col)
	}
}

func Bresenham(p IPlotter, x1, y1, x2, y2 int, col color.RGBA) {
	dx, dy := x2-x1, y2-y1
	absDx, absDy := abs(dx), abs(dy)

	if absDx == 0 && absDy == 0 {
		p.SetRGBA(x1, y1, col)
		return
	}

	xInc, yInc := sign(dx), sign(dy)

	var d, dInc1, dInc2 int
	isXDominant := absDx > absDy
	if isXDominant {
		d, dInc1, dInc2 = 2*absDy-absDx, 2*absDy, 2*(absDy-absDx)
	} else {
		d, dInc1, dInc2 = 2*absDx-absDy, 2*absDx, 2*(absDx-absDy)
	}

	for {
		p.SetRGBA(x1, y1, col)
		if x1 == x2 && y1 == y2 {
			return
		}
		if d < 0 {
			d += dInc1
		} else {
			d += dInc2
			if isXDominant {
				y1 += yInc
			} else {
				x1 += xInc
			}
		}
		if isXDominant {
			x1 += xInc
		} else {
			y1 += yInc
		}
	}
}

func fillCircle(p IPlotter, centerX, centerY, radius int, col color.RGBA) {
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y <= radius*radius {
				p.SetRGBA(centerX+x, centerY+y, col)
			}
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	if n < 0 {
		return -1
	} else if n > 0 {
		return 1
	}
	return 0
}
