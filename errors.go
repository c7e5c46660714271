package viamconnect4

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientCorners  = errors.New("could not identify the corners of the game board")
	ErrDegenerateTransform  = errors.New("degenerate perspective transform")
	ErrColumnFull           = errors.New("column is full")
	ErrInvalidColumn        = errors.New("column out of range")
	ErrNoLegalMove          = errors.New("no legal move")
	ErrInvalidDepth         = errors.New("search depth must be at least 1")
	ErrGameOver             = errors.New("game is already won")
	ErrInconsistentPosition = errors.New("invalid numbers of game pieces")

	ErrCalibration   = errors.New("board not detected")
	ErrBoardTooSmall = errors.New("a sufficiently large board could not be detected")
	ErrTokenCount    = errors.New("token counts differ by more than one")
)

// CalibrationFailure reports that an image could not be turned into a board.
// It matches ErrCalibration as well as the underlying cause.
type CalibrationFailure struct {
	Stage string
	Err   error
}

func (e *CalibrationFailure) Error() string {
	return fmt.Sprintf("calibration failed at %s: %v", e.Stage, e.Err)
}

func (e *CalibrationFailure) Unwrap() []error {
	return []error{ErrCalibration, e.Err}
}

func calibrationFailure(stage string, err error) error {
	return &CalibrationFailure{Stage: stage, Err: err}
}
