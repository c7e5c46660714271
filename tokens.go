package viamconnect4

import (
	"image"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// FindTokens detects the tokens of one color as circles. Regions smaller than
// minArea are ignored and each radius is padded to tolerate edge blur.
func FindTokens(v Vision, img image.Image, color ColorRange, minArea int, radiusPadding float64) []Circle {
	mask := v.Threshold(img, color)
	bounds := img.Bounds()

	var circles []Circle
	for _, c := range v.Contours(mask) {
		if c.Area <= minArea {
			continue
		}
		circle := v.MinEnclosingCircle(c.Boundary)
		circle.Center = circle.Center.Add(r2.Point{X: float64(bounds.Min.X), Y: float64(bounds.Min.Y)})
		circle.Radius += radiusPadding
		circles = append(circles, circle)
	}
	return circles
}

// CellCenter is the canonical center of a grid cell inside bounds. Row 0 is
// nearest the bottom edge.
func CellCenter(bounds image.Rectangle, columns, rows, column, row int) r2.Point {
	cellWidth := float64(bounds.Dx()) / float64(columns)
	cellHeight := float64(bounds.Dy()) / float64(rows)
	return r2.Point{
		X: float64(bounds.Min.X) + float64(column)*cellWidth + cellWidth/2,
		Y: float64(bounds.Min.Y) + float64(rows-row-1)*cellHeight + cellHeight/2,
	}
}

// MapTokens builds a board from the red and yellow circles found on a
// rectified image. Cells are scanned bottom row first; a cell covered by
// both colors takes red, which is checked first. Tokens are dropped into
// their column, so a token detected above a gap settles onto the stack.
func MapTokens(bounds image.Rectangle, columns, rows int, red, yellow []Circle) (*Board, error) {
	b := NewBoard(columns, rows)
	for row := 0; row < rows; row++ {
		for col := 0; col < columns; col++ {
			center := CellCenter(bounds, columns, rows, col, row)

			mark := Empty
			switch {
			case anyContains(red, center):
				mark = Red
			case anyContains(yellow, center):
				mark = Yellow
			}
			if mark == Empty {
				continue
			}
			if err := b.Set(col, mark); err != nil {
				return nil, errors.Wrapf(err, "mapping cell (%d, %d)", col, row)
			}
		}
	}
	return b, nil
}

func anyContains(circles []Circle, p r2.Point) bool {
	for _, c := range circles {
		if c.Contains(p) {
			return true
		}
	}
	return false
}
