package viamconnect4

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// Corners of the board, always in the order
// top-left, top-right, bottom-right, bottom-left.
type Corners [4]r2.Point

func (c Corners) TopLeft() r2.Point     { return c[0] }
func (c Corners) TopRight() r2.Point    { return c[1] }
func (c Corners) BottomRight() r2.Point { return c[2] }
func (c Corners) BottomLeft() r2.Point  { return c[3] }

func (c Corners) String() string {
	return fmt.Sprintf("TL(%.1f, %.1f) TR(%.1f, %.1f) BR(%.1f, %.1f) BL(%.1f, %.1f)",
		c[0].X, c[0].Y, c[1].X, c[1].Y, c[2].X, c[2].Y, c[3].X, c[3].Y)
}

// RectCorners returns the corners of a width x height rectangle at the origin.
func RectCorners(width, height float64) Corners {
	return Corners{
		{X: 0, Y: 0},
		{X: width, Y: 0},
		{X: width, Y: height},
		{X: 0, Y: height},
	}
}

// lineIntersections collects the crossing point of every pair of lines that
// are not near-parallel. angleTolerance is in radians.
func lineIntersections(lines []Line, angleTolerance float64) []r2.Point {
	var points []r2.Point
	for i := 0; i < len(lines); i++ {
		for j := i + 1; j < len(lines); j++ {
			if lines[i].Similar(lines[j], angleTolerance) {
				continue
			}
			if p, ok := lines[i].Intersection(lines[j]); ok {
				points = append(points, p)
			}
		}
	}
	return points
}

// EstimateCorners turns candidate border lines into the four board corners.
// Intersections are split into quadrants around their centroid (smaller y is
// top, smaller x is left) and each corner is the mean of its quadrant.
func EstimateCorners(lines []Line, angleTolerance float64) (Corners, error) {
	points := lineIntersections(lines, angleTolerance)
	if len(points) == 0 {
		return Corners{}, errors.Wrapf(ErrInsufficientCorners, "no intersections among %d lines", len(lines))
	}

	center := averagePoints(points)

	var topLeft, topRight, bottomRight, bottomLeft []r2.Point
	for _, p := range points {
		if p.X < center.X {
			if p.Y < center.Y {
				topLeft = append(topLeft, p)
			} else {
				bottomLeft = append(bottomLeft, p)
			}
		} else {
			if p.Y < center.Y {
				topRight = append(topRight, p)
			} else {
				bottomRight = append(bottomRight, p)
			}
		}
	}

	if len(topLeft) == 0 || len(topRight) == 0 || len(bottomRight) == 0 || len(bottomLeft) == 0 {
		return Corners{}, errors.Wrapf(ErrInsufficientCorners,
			"quadrant sizes tl=%d tr=%d br=%d bl=%d",
			len(topLeft), len(topRight), len(bottomRight), len(bottomLeft))
	}

	return Corners{
		averagePoints(topLeft),
		averagePoints(topRight),
		averagePoints(bottomRight),
		averagePoints(bottomLeft),
	}, nil
}
