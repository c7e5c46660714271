package viamconnect4

import (
	"image"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/rdk/logging"
	"go.viam.com/test"
)

func TestFileSink(t *testing.T) {
	dir := t.TempDir()
	sink := &FileSink{Dir: dir, Logger: logging.NewTestLogger(t)}

	sink.Show(MaskImage(NewMask(10, 10)), "board threshold")
	sink.Show(fillImage(10, 10, colorRed), "grid")

	for _, name := range []string{"01-board-threshold.jpg", "02-grid.jpg"} {
		_, err := os.Stat(filepath.Join(dir, name))
		test.That(t, err, test.ShouldBeNil)
	}

	// write errors are not fatal
	(&FileSink{Dir: filepath.Join(dir, "missing")}).Show(fillImage(4, 4, colorRed), "x")
}

func TestDebugImages(t *testing.T) {
	src := fillImage(100, 80, colorWhite)

	m := NewMask(100, 80)
	m[5][7] = true
	mi := MaskImage(m)
	test.That(t, mi.GrayAt(7, 5).Y, test.ShouldEqual, uint8(255))
	test.That(t, mi.GrayAt(8, 5).Y, test.ShouldEqual, uint8(0))

	corners := RectCorners(50, 40)
	li := LinesImage(src, []Line{{Rho: 20, Theta: 0}, {Rho: 30, Theta: math.Pi / 2}}, &corners)
	test.That(t, li.RGBAAt(20, 10), test.ShouldResemble, colorGreen)
	test.That(t, li.RGBAAt(60, 30), test.ShouldResemble, colorGreen)
	test.That(t, li.RGBAAt(50, 40), test.ShouldResemble, colorRed)
	test.That(t, src.RGBAAt(20, 10), test.ShouldResemble, colorWhite)

	ti := TokenImage(image.Rect(0, 0, 100, 80), []Circle{{Center: r2.Point{X: 10, Y: 10}, Radius: 5}}, nil)
	test.That(t, ti.RGBAAt(10, 10), test.ShouldResemble, colorRed)
	test.That(t, ti.RGBAAt(50, 50), test.ShouldResemble, colorNavy)

	b := mustParse(t, "......./......./......./......./......./...X...")
	gi := GridImage(fillImage(70, 60, colorWhite), b)
	test.That(t, gi.Bounds(), test.ShouldResemble, image.Rect(0, 0, 70, 60))
	test.That(t, gi.RGBAAt(10, 0), test.ShouldResemble, colorBlack)
	test.That(t, gi.RGBAAt(0, 25), test.ShouldResemble, colorBlack)
}

func TestCloneRGBA(t *testing.T) {
	src := fillImage(40, 30, colorWhite)
	fillRect(src, image.Rect(10, 10, 20, 20), colorRed)
	sub := src.SubImage(image.Rect(5, 5, 25, 25))

	c := cloneRGBA(sub)
	test.That(t, c.Bounds(), test.ShouldResemble, image.Rect(5, 5, 25, 25))
	test.That(t, c.RGBAAt(5, 5), test.ShouldResemble, colorWhite)
	test.That(t, c.RGBAAt(15, 15), test.ShouldResemble, colorRed)

	c.SetRGBA(15, 15, colorBlack)
	test.That(t, src.RGBAAt(15, 15), test.ShouldResemble, colorRed)
}
