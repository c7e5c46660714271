package viamconnect4

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/data"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/pointcloud"
	"go.viam.com/rdk/resource"
	"go.viam.com/rdk/spatialmath"
)

var BoardCameraModel = family.WithModel("board-camera")

func init() {
	resource.RegisterComponent(camera.API, BoardCameraModel,
		resource.Registration[camera.Camera, *BoardCameraConfig]{
			Constructor: newBoardCamera,
		},
	)
}

type BoardCameraConfig struct {
	Input    string                 // camera pointed at the front of the board
	Tunables map[string]interface{} `json:"tunables"`
}

func (cfg *BoardCameraConfig) Validate(path string) ([]string, []string, error) {
	if cfg.Input == "" {
		return nil, nil, fmt.Errorf("need an input")
	}
	t, err := TunablesFromAttributes(cfg.Tunables)
	if err != nil {
		return nil, nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, nil, err
	}
	return []string{cfg.Input}, nil, nil
}

func newBoardCamera(ctx context.Context, deps resource.Dependencies, rawConf resource.Config, logger logging.Logger) (camera.Camera, error) {
	conf, err := resource.NativeConfig[*BoardCameraConfig](rawConf)
	if err != nil {
		return nil, err
	}

	return NewBoardCamera(ctx, deps, rawConf.ResourceName(), conf, logger)
}

func NewBoardCamera(ctx context.Context, deps resource.Dependencies, name resource.Name, conf *BoardCameraConfig, logger logging.Logger) (camera.Camera, error) {
	var err error

	bc := &BoardCamera{
		name:   name,
		conf:   conf,
		logger: logger,
	}

	bc.input, err = camera.FromProvider(deps, conf.Input)
	if err != nil {
		return nil, err
	}

	t, err := TunablesFromAttributes(conf.Tunables)
	if err != nil {
		return nil, err
	}
	bc.solver, err = NewSolver(t, logger)
	if err != nil {
		return nil, err
	}

	return bc, nil
}

// BoardCamera shows the input camera's view of the board, rectified and
// overlaid with what was read from it.
type BoardCamera struct {
	resource.AlwaysRebuild
	resource.TriviallyCloseable

	name   resource.Name
	conf   *BoardCameraConfig
	logger logging.Logger

	input  camera.Camera
	solver *Solver
}

func (bc *BoardCamera) Image(ctx context.Context, mimeType string, extra map[string]interface{}) ([]byte, camera.ImageMetadata, error) {
	return camera.GetImageFromGetImages(ctx, nil, bc, extra, nil)
}

func (bc *BoardCamera) Images(ctx context.Context, filterSourceNames []string, extra map[string]interface{}) ([]camera.NamedImage, resource.ResponseMetadata, error) {
	ni, rm, err := bc.input.Images(ctx, nil, extra)
	if err != nil {
		return nil, rm, err
	}

	if len(ni) == 0 {
		return nil, rm, fmt.Errorf("no images returned from input camera")
	}

	srcImg, err := ni[0].Image(ctx)
	if err != nil {
		return nil, rm, err
	}

	dst, err := bc.solver.BoardDebugImage(srcImg)
	if err != nil {
		return nil, rm, err
	}

	result, err := camera.NamedImageFromImage(dst, ni[0].SourceName, "", data.Annotations{})
	if err != nil {
		return nil, rm, err
	}
	return []camera.NamedImage{result}, rm, nil
}

// BoardDebugImage renders what the solver sees in srcImg. When the board is
// read, that is the rectified view with the grid and cell contents. When
// only calibration succeeds the rectified view is returned bare, and when
// calibration fails the hue of every pixel is shown instead so the color
// ranges can be tuned.
func (s *Solver) BoardDebugImage(srcImg image.Image) (image.Image, error) {
	a, err := s.ReadBoard(srcImg)
	if err == nil {
		return GridImage(a.Rectified, a.Board), nil
	}
	if !errors.Is(err, ErrCalibration) {
		return nil, err
	}
	s.logger.Debugf("can't read board: %v", err)

	var cf *CalibrationFailure
	if errors.As(err, &cf) && cf.Stage == "tokens" {
		_, rectified, err := s.Calibrate(srcImg)
		if err == nil {
			return rectified, nil
		}
	}
	return HueImage(srcImg, s.tunables.Columns), nil
}

// HueImage replaces every pixel with its pure hue and splits the image into
// columns.
func HueImage(srcImg image.Image, columns int) *image.RGBA {
	bounds := srcImg.Bounds()
	dst := image.NewRGBA(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			cf, ok := colorful.MakeColor(srcImg.At(x, y))
			if !ok {
				continue
			}
			h, _, _ := cf.Hsv()
			dst.Set(x, y, colorful.Hsv(h, 1, 1))
		}
	}

	width := bounds.Dx()
	gridColor := color.RGBA{0, 0, 0, 255}
	for i := 0; i <= columns; i++ {
		x := bounds.Min.X + min(width*i/columns, width-1)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			dst.Set(x, y, gridColor)
		}
	}

	return dst
}

func (bc *BoardCamera) DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error) {
	return nil, fmt.Errorf("DoCommand not supported")
}

func (bc *BoardCamera) NextPointCloud(ctx context.Context, extra map[string]interface{}) (pointcloud.PointCloud, error) {
	return nil, fmt.Errorf("NextPointCloud not supported")
}

func (bc *BoardCamera) Properties(ctx context.Context) (camera.Properties, error) {
	return camera.Properties{}, nil
}

func (bc *BoardCamera) Geometries(ctx context.Context, extra map[string]interface{}) ([]spatialmath.Geometry, error) {
	return nil, nil
}

func (bc *BoardCamera) Name() resource.Name {
	return bc.name
}
