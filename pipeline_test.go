package viamconnect4

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/rdk/logging"
	"go.viam.com/test"
)

var colorBlue = color.RGBA{0, 0, 255, 255}

// syntheticBoard draws a 7x6 board with 40x35 cells at (20, 15) on a white
// 320x240 image. position uses the ParseBoard format.
func syntheticBoard(t *testing.T, position string) *image.RGBA {
	t.Helper()
	b := mustParse(t, position)

	img := fillImage(320, 240, colorWhite)
	fillRect(img, image.Rect(20, 15, 300, 225), colorBlue)
	for col := 0; col < b.Columns(); col++ {
		for row := 0; row < b.Rows(); row++ {
			var c color.Color
			switch b.At(col, row) {
			case Red:
				c = colorRed
			case Yellow:
				c = colorYellow
			default:
				continue
			}
			center := r2.Point{X: 20 + (float64(col)+.5)*40, Y: 15 + (float64(b.Rows()-1-row)+.5)*35}
			fillCircle(img, Circle{Center: center, Radius: 14}, c)
		}
	}
	return img
}

func nativeTunables() Tunables {
	t := DefaultTunables()
	t.WorkingWidth = 0
	t.WorkingHeight = 0
	return t
}

type recordingSink struct {
	labels []string
}

func (s *recordingSink) Show(img image.Image, label string) {
	s.labels = append(s.labels, label)
}

func TestSolverCalibrate(t *testing.T) {
	s, err := NewSolver(nativeTunables(), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	img := syntheticBoard(t, "......./......./......./......./......./.......")
	corners, rectified, err := s.Calibrate(img)
	test.That(t, err, test.ShouldBeNil)
	closeTo(t, corners.TopLeft(), r2.Point{X: 20, Y: 15}, 1.5)
	closeTo(t, corners.TopRight(), r2.Point{X: 299, Y: 15}, 1.5)
	closeTo(t, corners.BottomRight(), r2.Point{X: 299, Y: 224}, 1.5)
	closeTo(t, corners.BottomLeft(), r2.Point{X: 20, Y: 224}, 1.5)

	test.That(t, rectified.Bounds(), test.ShouldResemble, img.Bounds())
	test.That(t, rectified.RGBAAt(160, 120), test.ShouldResemble, colorBlue)
	test.That(t, rectified.RGBAAt(2, 2), test.ShouldResemble, colorBlue)
}

func TestSolverCalibrateResized(t *testing.T) {
	s, err := NewSolver(DefaultTunables(), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	_, rectified, err := s.Calibrate(syntheticBoard(t, "......./......./......./......./......./......."))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, rectified.Bounds().Dx(), test.ShouldEqual, 622)
	test.That(t, rectified.Bounds().Dy(), test.ShouldEqual, 457)
}

func TestSolverSolve(t *testing.T) {
	position := "......./......./......./...X.../...O.../..XXO.."
	sink := &recordingSink{}
	s, err := NewSolver(nativeTunables(), logging.NewTestLogger(t), WithDebugSink(sink))
	test.That(t, err, test.ShouldBeNil)

	a, err := s.Solve(context.Background(), syntheticBoard(t, position), 4)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(a.Red), test.ShouldEqual, 3)
	test.That(t, len(a.Yellow), test.ShouldEqual, 2)
	test.That(t, a.Board.String(), test.ShouldEqual, mustParse(t, position).String())
	test.That(t, a.Turn, test.ShouldEqual, Yellow)

	want, err := NewSearcher(DefaultTunables().Weights, 1, nil).BestMove(context.Background(), mustParse(t, position), Yellow, 4)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, a.Move.Column, test.ShouldEqual, want.Column)
	test.That(t, a.Move.Depth, test.ShouldEqual, 4)

	test.That(t, sink.labels, test.ShouldResemble, []string{"board threshold", "lines", "projection", "tokens", "grid"})
}

func TestSolverDefaultDepth(t *testing.T) {
	tunables := nativeTunables()
	tunables.SearchDepth = 2
	s, err := NewSolver(tunables, logging.NewTestLogger(t), WithWorkers(3))
	test.That(t, err, test.ShouldBeNil)

	a, err := s.Solve(context.Background(), syntheticBoard(t, "......./......./......./......./......./...X..."), 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, a.Turn, test.ShouldEqual, Yellow)
	test.That(t, a.Move.Depth, test.ShouldEqual, 2)
}

func TestSolverCalibrationFailures(t *testing.T) {
	s, err := NewSolver(nativeTunables(), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	_, err = s.ReadBoard(fillImage(320, 240, colorWhite))
	test.That(t, errors.Is(err, ErrCalibration), test.ShouldBeTrue)
	test.That(t, errors.Is(err, ErrBoardTooSmall), test.ShouldBeTrue)

	small := fillImage(320, 240, colorWhite)
	fillRect(small, image.Rect(100, 100, 140, 130), colorBlue)
	_, err = s.ReadBoard(small)
	test.That(t, errors.Is(err, ErrBoardTooSmall), test.ShouldBeTrue)

	_, err = s.ReadBoard(syntheticBoard(t, "......./......./......./......./......./XXX...."))
	test.That(t, errors.Is(err, ErrCalibration), test.ShouldBeTrue)
	test.That(t, errors.Is(err, ErrTokenCount), test.ShouldBeTrue)

	var cf *CalibrationFailure
	test.That(t, errors.As(err, &cf), test.ShouldBeTrue)
	test.That(t, cf.Stage, test.ShouldEqual, "tokens")
}

func TestNewSolverRejectsBadTunables(t *testing.T) {
	bad := DefaultTunables()
	bad.Columns = 2
	_, err := NewSolver(bad, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
}

// fixedLinesVision reports the same border lines whatever the image.
type fixedLinesVision struct {
	Vision
	lines []Line
	calls int
}

func (v *fixedLinesVision) HoughLines(edges Mask, threshold int) []Line {
	v.calls++
	return v.lines
}

func TestSolverWithVision(t *testing.T) {
	tunables := nativeTunables()
	v := &fixedLinesVision{Vision: NewVision(tunables), lines: rectLines(40, 30, 280, 210)}
	s, err := NewSolver(tunables, logging.NewTestLogger(t), WithVision(v))
	test.That(t, err, test.ShouldBeNil)

	corners, _, err := s.Calibrate(syntheticBoard(t, "......./......./......./......./......./......."))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v.calls, test.ShouldEqual, 1)
	closeTo(t, corners.TopLeft(), r2.Point{X: 40, Y: 30}, 1e-6)
	closeTo(t, corners.BottomRight(), r2.Point{X: 280, Y: 210}, 1e-6)

	v.lines = nil
	_, _, err = s.Calibrate(syntheticBoard(t, "......./......./......./......./......./......."))
	test.That(t, errors.Is(err, ErrInsufficientCorners), test.ShouldBeTrue)
	test.That(t, v.calls, test.ShouldEqual, 2)
}

func TestNewSolverNilLogger(t *testing.T) {
	s, err := NewSolver(nativeTunables(), nil)
	test.That(t, err, test.ShouldBeNil)

	corners, _, err := s.Calibrate(syntheticBoard(t, "......./......./......./......./......./......."))
	test.That(t, err, test.ShouldBeNil)
	closeTo(t, corners.TopLeft(), r2.Point{X: 20, Y: 15}, 1.5)

	_, err = s.ReadBoard(fillImage(320, 240, colorWhite))
	test.That(t, errors.Is(err, ErrBoardTooSmall), test.ShouldBeTrue)
}
