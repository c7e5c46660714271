package viamconnect4

import (
	"image"
	"math"

	"github.com/golang/geo/r2"
)

// Line represents a line in the form: rho = x*cos(theta) + y*sin(theta)
type Line struct {
	Rho   float64
	Theta float64
	Votes int
}

// Intersection returns false when the lines are parallel.
func (l Line) Intersection(o Line) (r2.Point, bool) {
	c1, s1 := math.Cos(l.Theta), math.Sin(l.Theta)
	c2, s2 := math.Cos(o.Theta), math.Sin(o.Theta)

	det := c1*s2 - c2*s1
	if math.Abs(det) < 1e-10 {
		return r2.Point{}, false
	}

	x := (s2*l.Rho - s1*o.Rho) / det
	y := (c1*o.Rho - c2*l.Rho) / det
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return r2.Point{}, false
	}
	return r2.Point{X: x, Y: y}, true
}

// Similar reports whether two lines are within tolerance radians of parallel.
// Angles are compared modulo pi.
func (l Line) Similar(o Line, tolerance float64) bool {
	d := math.Mod(math.Abs(l.Theta-o.Theta), math.Pi)
	return math.Min(d, math.Pi-d) < tolerance
}

// distance is the perpendicular distance from p to the line.
func (l Line) distance(p r2.Point) float64 {
	return math.Abs(p.X*math.Cos(l.Theta) + p.Y*math.Sin(l.Theta) - l.Rho)
}

// Segment returns the part of the line inside bounds, for drawing.
func (l Line) Segment(bounds image.Rectangle) (r2.Point, r2.Point, bool) {
	minX, minY := float64(bounds.Min.X), float64(bounds.Min.Y)
	maxX, maxY := float64(bounds.Max.X-1), float64(bounds.Max.Y-1)
	c, s := math.Cos(l.Theta), math.Sin(l.Theta)

	var hits []r2.Point
	add := func(p r2.Point) {
		if p.X < minX-1e-9 || p.X > maxX+1e-9 || p.Y < minY-1e-9 || p.Y > maxY+1e-9 {
			return
		}
		for _, h := range hits {
			if h.Sub(p).Norm() < 1e-6 {
				return
			}
		}
		hits = append(hits, p)
	}

	if math.Abs(s) > 1e-12 {
		add(r2.Point{X: minX, Y: (l.Rho - minX*c) / s})
		add(r2.Point{X: maxX, Y: (l.Rho - maxX*c) / s})
	}
	if math.Abs(c) > 1e-12 {
		add(r2.Point{X: (l.Rho - minY*s) / c, Y: minY})
		add(r2.Point{X: (l.Rho - maxY*s) / c, Y: maxY})
	}

	if len(hits) < 2 {
		return r2.Point{}, r2.Point{}, false
	}
	return hits[0], hits[1], true
}

// Circle is a detected token.
type Circle struct {
	Center r2.Point
	Radius float64
}

func (c Circle) Contains(p r2.Point) bool {
	return c.Center.Sub(p).Norm() <= c.Radius
}

func averagePoints(points []r2.Point) r2.Point {
	var sum r2.Point
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Mul(1 / float64(len(points)))
}

func cross(o, a, b r2.Point) float64 {
	return a.Sub(o).Cross(b.Sub(o))
}
