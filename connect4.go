package viamconnect4

import (
	"context"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/resource"
	generic "go.viam.com/rdk/services/generic"
)

var Connect4Model = family.WithModel("connect4")

func init() {
	resource.RegisterService(generic.API, Connect4Model,
		resource.Registration[resource.Resource, *Connect4Config]{
			Constructor: newViamConnect4,
		},
	)
}

type Connect4Config struct {
	Camera     string
	Depth      int                    `json:"depth"`
	Workers    int                    `json:"workers"`
	MoveTimeMs int                    `json:"move-time-ms"`
	DebugDir   string                 `json:"debug-dir"`
	Tunables   map[string]interface{} `json:"tunables"`
}

func (cfg *Connect4Config) Validate(path string) ([]string, []string, error) {
	var err error
	if cfg.Camera == "" {
		err = multierr.Append(err, fmt.Errorf("need a camera"))
	}
	if cfg.Depth < 0 {
		err = multierr.Append(err, fmt.Errorf("depth cannot be negative"))
	}
	if cfg.Workers < 0 {
		err = multierr.Append(err, fmt.Errorf("workers cannot be negative"))
	}
	if cfg.MoveTimeMs < 0 {
		err = multierr.Append(err, fmt.Errorf("move-time-ms cannot be negative"))
	}
	t, tErr := TunablesFromAttributes(cfg.Tunables)
	if tErr != nil {
		err = multierr.Append(err, tErr)
	} else {
		err = multierr.Append(err, t.Validate())
	}
	if err != nil {
		return nil, nil, err
	}

	return []string{cfg.Camera}, nil, nil
}

type viamConnect4 struct {
	resource.AlwaysRebuild
	resource.TriviallyCloseable

	name resource.Name

	logger logging.Logger
	conf   *Connect4Config

	camera camera.Camera
	solver *Solver
}

func newViamConnect4(ctx context.Context, deps resource.Dependencies, rawConf resource.Config, logger logging.Logger) (resource.Resource, error) {
	conf, err := resource.NativeConfig[*Connect4Config](rawConf)
	if err != nil {
		return nil, err
	}

	return NewConnect4(ctx, deps, rawConf.ResourceName(), conf, logger)
}

func NewConnect4(ctx context.Context, deps resource.Dependencies, name resource.Name, conf *Connect4Config, logger logging.Logger) (resource.Resource, error) {
	var err error

	s := &viamConnect4{
		name:   name,
		logger: logger,
		conf:   conf,
	}

	s.camera, err = camera.FromProvider(deps, conf.Camera)
	if err != nil {
		return nil, err
	}

	s.solver, err = newSolverFromConfig(conf, logger)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func newSolverFromConfig(conf *Connect4Config, logger logging.Logger) (*Solver, error) {
	t, err := TunablesFromAttributes(conf.Tunables)
	if err != nil {
		return nil, err
	}
	if conf.Depth > 0 {
		t.SearchDepth = conf.Depth
	}

	opts := []SolverOption{}
	if conf.Workers > 1 {
		opts = append(opts, WithWorkers(conf.Workers))
	}
	if conf.DebugDir != "" {
		if err := os.MkdirAll(conf.DebugDir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "creating debug dir %q", conf.DebugDir)
		}
		opts = append(opts, WithDebugSink(&FileSink{Dir: conf.DebugDir, Logger: logger}))
	}
	return NewSolver(t, logger, opts...)
}

func (s *viamConnect4) Name() resource.Name {
	return s.name
}

// ----

type BestMoveCmd struct {
	Depth int
}

type PositionCmd struct {
	Board string
	Depth int
}

type cmdStruct struct {
	BestMove *BestMoveCmd `mapstructure:"best-move"`
	Position *PositionCmd
}

func (s *viamConnect4) DoCommand(ctx context.Context, cmdMap map[string]interface{}) (map[string]interface{}, error) {
	var cmd cmdStruct
	err := mapstructure.Decode(cmdMap, &cmd)
	if err != nil {
		return nil, err
	}

	if s.conf.MoveTimeMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.conf.MoveTimeMs)*time.Millisecond)
		defer cancel()
	}

	if cmd.BestMove != nil {
		img, err := s.captureImage(ctx)
		if err != nil {
			return nil, err
		}

		a, err := s.solver.Solve(ctx, img, cmd.BestMove.Depth)
		if err != nil {
			return nil, err
		}
		return moveResponse(a.Board, a.Turn, a.Move), nil
	}

	if cmd.Position != nil {
		b, err := ParseBoard(cmd.Position.Board)
		if err != nil {
			return nil, err
		}
		turn, err := b.Turn()
		if err != nil {
			return nil, err
		}
		depth := cmd.Position.Depth
		if depth == 0 {
			depth = s.solver.tunables.SearchDepth
		}
		res, err := s.solver.searcher.BestMove(ctx, b, turn, depth)
		if err != nil {
			return nil, err
		}
		return moveResponse(b, turn, res), nil
	}

	return nil, fmt.Errorf("bad cmd %v", cmdMap)
}

func (s *viamConnect4) captureImage(ctx context.Context) (image.Image, error) {
	ni, _, err := s.camera.Images(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	if len(ni) == 0 {
		return nil, fmt.Errorf("no images returned from camera %s", s.conf.Camera)
	}
	return ni[0].Image(ctx)
}

func moveResponse(b *Board, turn Mark, res Result) map[string]interface{} {
	return map[string]interface{}{
		"column": res.Column,
		"depth":  res.Depth,
		"score":  res.Score,
		"nodes":  res.Nodes,
		"turn":   turn.String(),
		"board":  b.String(),
	}
}
