package viamconnect4

import (
	"image"
	"image/color"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

var testBounds = image.Rect(0, 0, 700, 600)

func cellCircle(col, row int, radius float64) Circle {
	return Circle{Center: CellCenter(testBounds, 7, 6, col, row), Radius: radius}
}

func TestCellCenter(t *testing.T) {
	test.That(t, CellCenter(testBounds, 7, 6, 0, 0), test.ShouldResemble, r2.Point{X: 50, Y: 550})
	test.That(t, CellCenter(testBounds, 7, 6, 6, 5), test.ShouldResemble, r2.Point{X: 650, Y: 50})

	offset := image.Rect(100, 10, 800, 610)
	test.That(t, CellCenter(offset, 7, 6, 0, 0), test.ShouldResemble, r2.Point{X: 150, Y: 560})
}

func TestMapTokensSingle(t *testing.T) {
	b, err := MapTokens(testBounds, 7, 6, []Circle{cellCircle(2, 0, 30)}, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, b.At(2, 0), test.ShouldEqual, Red)
	test.That(t, b.Count(Red), test.ShouldEqual, 1)
	test.That(t, b.Count(Yellow), test.ShouldEqual, 0)
}

func TestMapTokensGame(t *testing.T) {
	red := []Circle{cellCircle(3, 0, 30), cellCircle(2, 0, 30), cellCircle(3, 2, 30)}
	yellow := []Circle{cellCircle(3, 1, 30), cellCircle(4, 0, 30)}

	b, err := MapTokens(testBounds, 7, 6, red, yellow)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, b.Equal(mustParse(t, "......./......./......./...X.../...O.../..XXO..")), test.ShouldBeTrue)

	turn, err := b.Turn()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, turn, test.ShouldEqual, Yellow)
}

func TestMapTokensBothColors(t *testing.T) {
	b, err := MapTokens(testBounds, 7, 6, []Circle{cellCircle(3, 0, 30)}, []Circle{cellCircle(3, 0, 30)})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, b.At(3, 0), test.ShouldEqual, Red)
	test.That(t, b.Count(Yellow), test.ShouldEqual, 0)
}

func TestMapTokensSettles(t *testing.T) {
	b, err := MapTokens(testBounds, 7, 6, []Circle{cellCircle(4, 3, 30)}, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, b.At(4, 0), test.ShouldEqual, Red)
	test.That(t, b.At(4, 3), test.ShouldEqual, Empty)
}

func TestMapTokensMissesSmallCircles(t *testing.T) {
	off := Circle{Center: r2.Point{X: 100, Y: 500}, Radius: 10}
	b, err := MapTokens(testBounds, 7, 6, []Circle{off}, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, b.Count(Red), test.ShouldEqual, 0)
}

func TestFindTokens(t *testing.T) {
	img := fillImage(200, 200, colorWhite)
	fillCircle(img, Circle{Center: r2.Point{X: 50, Y: 60}, Radius: 20}, colorRed)
	fillRect(img, image.Rect(150, 150, 153, 153), colorRed)
	fillCircle(img, Circle{Center: r2.Point{X: 140, Y: 60}, Radius: 15}, color.RGBA{250, 220, 10, 255})

	tunables := DefaultTunables()
	v := NewVision(tunables)

	red := FindTokens(v, img, tunables.RedColor, tunables.MinTokenArea, tunables.RadiusPadding)
	test.That(t, len(red), test.ShouldEqual, 1)
	test.That(t, red[0].Center.X, test.ShouldAlmostEqual, 50, 1)
	test.That(t, red[0].Center.Y, test.ShouldAlmostEqual, 60, 1)
	test.That(t, red[0].Radius, test.ShouldAlmostEqual, 25, 1.5)

	yellow := FindTokens(v, img, tunables.YellowColor, tunables.MinTokenArea, 0)
	test.That(t, len(yellow), test.ShouldEqual, 1)
	test.That(t, yellow[0].Center.X, test.ShouldAlmostEqual, 140, 1)
	test.That(t, yellow[0].Radius, test.ShouldAlmostEqual, 15, 1.5)
}
