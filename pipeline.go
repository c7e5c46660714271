package viamconnect4

import (
	"context"
	"image"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/rdk/logging"
	"go.viam.com/utils/trace"
)

// Analysis is everything learned from one photograph.
type Analysis struct {
	Corners   Corners
	Rectified *image.RGBA
	Red       []Circle
	Yellow    []Circle
	Board     *Board
	Turn      Mark
	Move      Result
}

// Solver runs the whole pipeline: locate the board, rectify it, read the
// tokens and search for a move.
type Solver struct {
	tunables Tunables
	vision   Vision
	searcher *Searcher
	debug    DebugSink
	logger   logging.Logger
}

type SolverOption func(*Solver)

// WithVision replaces the default image primitives.
func WithVision(v Vision) SolverOption {
	return func(s *Solver) { s.vision = v }
}

func WithDebugSink(d DebugSink) SolverOption {
	return func(s *Solver) { s.debug = d }
}

// WithWorkers searches the root moves on n goroutines.
func WithWorkers(n int) SolverOption {
	return func(s *Solver) { s.searcher.workers = n }
}

func NewSolver(t Tunables, logger logging.Logger, opts ...SolverOption) (*Solver, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewLogger("connect4")
	}
	s := &Solver{
		tunables: t,
		vision:   NewVision(t),
		searcher: NewSearcher(t.Weights, 1, logger),
		debug:    NoopSink{},
		logger:   logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Calibrate finds the board in img and returns its corners and the rectified
// view, the same size as the (resized) input.
func (s *Solver) Calibrate(img image.Image) (Corners, *image.RGBA, error) {
	img = resize(img, s.tunables.WorkingWidth, s.tunables.WorkingHeight)
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	boardMask := s.vision.Threshold(img, s.tunables.BoardColor)
	s.debug.Show(MaskImage(boardMask), "board threshold")

	contours := s.vision.Contours(boardMask)
	if len(contours) == 0 {
		return Corners{}, nil, calibrationFailure("board contour", ErrBoardTooSmall)
	}
	board := lo.MaxBy(contours, func(a, b Contour) bool {
		return a.FilledArea > b.FilledArea
	})

	fraction := float64(board.FilledArea) / float64(width*height)
	s.logger.Infof("the board occupies %.0f%% of the image", fraction*100)
	if fraction < s.tunables.MinBoardFraction {
		return Corners{}, nil, calibrationFailure("board contour",
			errors.Wrapf(ErrBoardTooSmall, "%.0f%% < %.0f%%", fraction*100, s.tunables.MinBoardFraction*100))
	}

	edges := BoundaryMask(board, width, height)
	lines := s.vision.HoughLines(edges, s.tunables.HoughThreshold)
	s.logger.Debugf("there are %d lines that were detected", len(lines))

	corners, err := EstimateCorners(lines, s.tunables.angleToleranceRadians())
	if err != nil {
		s.debug.Show(LinesImage(img, lines, nil), "lines")
		return Corners{}, nil, calibrationFailure("corners", err)
	}
	for i := range corners {
		corners[i].X += float64(bounds.Min.X)
		corners[i].Y += float64(bounds.Min.Y)
	}
	s.logger.Debugf("corners: %v", corners)
	s.debug.Show(LinesImage(img, lines, &corners), "lines")

	rectified, err := Rectify(img, corners, width, height)
	if err != nil {
		return Corners{}, nil, calibrationFailure("rectify", err)
	}
	s.debug.Show(rectified, "projection")
	return corners, rectified, nil
}

// ReadBoard calibrates img and maps the tokens onto a board.
func (s *Solver) ReadBoard(img image.Image) (*Analysis, error) {
	corners, rectified, err := s.Calibrate(img)
	if err != nil {
		return nil, err
	}

	t := s.tunables
	red := FindTokens(s.vision, rectified, t.RedColor, t.MinTokenArea, t.RadiusPadding)
	yellow := FindTokens(s.vision, rectified, t.YellowColor, t.MinTokenArea, t.RadiusPadding)
	s.logger.Infof("found %d red tokens and %d yellow tokens", len(red), len(yellow))
	s.debug.Show(TokenImage(rectified.Bounds(), red, yellow), "tokens")

	if d := len(red) - len(yellow); d > 1 || d < -1 {
		return nil, calibrationFailure("tokens",
			errors.Wrapf(ErrTokenCount, "red %d yellow %d", len(red), len(yellow)))
	}

	board, err := MapTokens(rectified.Bounds(), t.Columns, t.Rows, red, yellow)
	if err != nil {
		return nil, calibrationFailure("tokens", err)
	}
	s.debug.Show(GridImage(rectified, board), "grid")

	turn, err := board.Turn()
	if err != nil {
		return nil, calibrationFailure("tokens", err)
	}

	return &Analysis{
		Corners:   corners,
		Rectified: rectified,
		Red:       red,
		Yellow:    yellow,
		Board:     board,
		Turn:      turn,
	}, nil
}

// Solve reads the board in img and searches maxDepth plies for the player to
// move. A maxDepth of 0 uses the configured search depth.
func (s *Solver) Solve(ctx context.Context, img image.Image, maxDepth int) (*Analysis, error) {
	ctx, span := trace.StartSpan(ctx, "connect4::Solve")
	defer span.End()

	a, err := s.ReadBoard(img)
	if err != nil {
		return nil, err
	}
	if maxDepth == 0 {
		maxDepth = s.tunables.SearchDepth
	}
	s.logger.Infof("it is %v's turn\n%s", a.Turn, a.Board)

	a.Move, err = s.searcher.BestMove(ctx, a.Board, a.Turn, maxDepth)
	if err != nil {
		return a, err
	}
	s.logger.Infof("best move is column %d (depth %d, score %d, %d nodes)",
		a.Move.Column+1, a.Move.Depth, a.Move.Score, a.Move.Nodes)
	return a, nil
}
