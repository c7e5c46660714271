package viamconnect4

import (
	"context"
	"testing"

	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/logging"
	"go.viam.com/test"
)

func TestBoardCameraConfigValidate(t *testing.T) {
	deps, _, err := (&BoardCameraConfig{Input: "cam"}).Validate("")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, deps, test.ShouldResemble, []string{"cam"})

	_, _, err = (&BoardCameraConfig{}).Validate("")
	test.That(t, err, test.ShouldNotBeNil)

	_, _, err = (&BoardCameraConfig{Input: "cam", Tunables: map[string]interface{}{"angle-tolerance": 0}}).Validate("")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestBoardCameraImages(t *testing.T) {
	ctx := context.Background()
	position := "......./......./......./...X.../...O.../..XXO.."
	conf := &BoardCameraConfig{Input: "cam", Tunables: nativeAttributes()}

	bc, err := NewBoardCamera(ctx, cameraDeps(syntheticBoard(t, position)), camera.Named("board"), conf, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	ni, _, err := bc.Images(ctx, nil, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(ni), test.ShouldEqual, 1)

	img, err := ni[0].Image(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds().Dx(), test.ShouldEqual, 320)
	test.That(t, img.Bounds().Dy(), test.ShouldEqual, 240)
}

func TestBoardDebugImageFallsBack(t *testing.T) {
	s, err := NewSolver(nativeTunables(), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	// no board at all shows the hue view
	out, err := s.BoardDebugImage(fillImage(70, 30, colorWhite))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.Bounds().Dx(), test.ShouldEqual, 70)
	test.That(t, out.At(0, 0), test.ShouldResemble, colorBlack)

	// a board with bad token counts shows the rectified view
	out, err = s.BoardDebugImage(syntheticBoard(t, "......./......./......./......./......./XXX...."))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.Bounds().Dx(), test.ShouldEqual, 320)
}

func TestHueImage(t *testing.T) {
	src := fillImage(14, 10, colorYellow)
	out := HueImage(src, 7)
	test.That(t, out.RGBAAt(1, 5), test.ShouldResemble, colorYellow)
	test.That(t, out.RGBAAt(2, 5), test.ShouldResemble, colorBlack)
}
