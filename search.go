package viamconnect4

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"go.viam.com/rdk/logging"
	"go.viam.com/utils/trace"
)

// WinScore is the value of a win found with no depth remaining. Wins found
// earlier in the search score higher.
const WinScore = 1_000_000

const (
	infinity        = math.MaxInt32
	cancelCheckMask = 1023
)

var errAborted = errors.New("search aborted")

// Result is the outcome of a search.
type Result struct {
	Column int
	Depth  int
	Score  int
	Nodes  uint64
}

// Searcher runs minimax with alpha-beta pruning.
type Searcher struct {
	weights Weights
	workers int
	logger  logging.Logger
}

// NewSearcher returns a searcher; workers > 1 searches the root moves in
// parallel. logger may be nil.
func NewSearcher(weights Weights, workers int, logger logging.Logger) *Searcher {
	return &Searcher{weights: weights, workers: workers, logger: logger}
}

// BestMove returns the best column for player. The board is not modified.
//
// If ctx has a deadline the search deepens iteratively and returns the
// deepest completed result once the deadline passes.
func (s *Searcher) BestMove(ctx context.Context, b *Board, player Mark, maxDepth int) (Result, error) {
	if maxDepth < 1 {
		return Result{}, errors.Wrapf(ErrInvalidDepth, "got %d", maxDepth)
	}
	if player != PlayerA && player != PlayerB {
		return Result{}, errors.Errorf("cannot search for %v", player)
	}
	if w := b.Winner(); w != Empty {
		return Result{}, errors.Wrapf(ErrGameOver, "%v has four in a row", w)
	}
	if b.IsFull() {
		return Result{}, ErrNoLegalMove
	}

	ctx, span := trace.StartSpan(ctx, "connect4::BestMove")
	defer span.End()

	if _, ok := ctx.Deadline(); !ok {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		res, err := s.searchRoot(ctx, b, player, maxDepth, true)
		if errors.Is(err, errAborted) {
			return Result{}, ctx.Err()
		}
		return res, err
	}

	var best Result
	for depth := 1; depth <= maxDepth; depth++ {
		start := time.Now()
		res, err := s.searchRoot(ctx, b, player, depth, depth > 1)
		if errors.Is(err, errAborted) {
			s.debugf("depth %d aborted, using depth %d column %d", depth, best.Depth, best.Column)
			break
		}
		if err != nil {
			return Result{}, err
		}
		res.Nodes += best.Nodes
		best = res
		s.debugf("depth %d: column %d score %d nodes %d in %v", depth, res.Column, res.Score, res.Nodes, time.Since(start))
		if res.Score > WinScore {
			break
		}
	}
	return best, nil
}

func (s *Searcher) debugf(template string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debugf(template, args...)
	}
}

func (s *Searcher) searchRoot(ctx context.Context, b *Board, player Mark, depth int, cancellable bool) (Result, error) {
	moves := b.LegalMoves()
	scores := make([]int, len(moves))
	var nodes atomic.Uint64

	if s.workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.workers)
		for i, col := range moves {
			g.Go(func() error {
				n := &node{ctx: gctx, root: player, weights: s.weights, cancellable: cancellable}
				scores[i] = n.child(b.Copy(), col, depth, -infinity, infinity)
				nodes.Add(n.count)
				if n.aborted {
					return errAborted
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return Result{}, err
		}
	} else {
		n := &node{ctx: ctx, root: player, weights: s.weights, cancellable: cancellable}
		board := b.Copy()
		alpha := -infinity
		for i, col := range moves {
			scores[i] = n.child(board, col, depth, alpha, infinity)
			if n.aborted {
				return Result{}, errAborted
			}
			alpha = max(alpha, scores[i])
		}
		nodes.Add(n.count)
	}

	best := 0
	for i := range moves {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return Result{Column: moves[best], Depth: depth, Score: scores[best], Nodes: nodes.Load()}, nil
}

// node holds the per-goroutine state of one search.
type node struct {
	ctx         context.Context
	root        Mark
	weights     Weights
	cancellable bool

	count   uint64
	aborted bool
}

// child scores the root player dropping a token in col.
func (n *node) child(b *Board, col, depth, alpha, beta int) int {
	row := b.heights[col]
	b.place(col, n.root)
	defer b.unplace(col)
	if b.connectsAt(col, row) {
		return WinScore + depth
	}
	return n.minimax(b, depth-1, alpha, beta, false)
}

func (n *node) minimax(b *Board, depth, alpha, beta int, maximizing bool) int {
	n.count++
	if n.cancellable && n.count&cancelCheckMask == 0 && n.ctx.Err() != nil {
		n.aborted = true
	}
	if n.aborted {
		return 0
	}

	if b.IsFull() {
		return 0
	}
	if depth == 0 {
		return Evaluate(b, n.root, n.weights)
	}

	mover := n.root
	best := -infinity
	if !maximizing {
		mover = n.root.Opponent()
		best = infinity
	}

	for _, col := range b.order {
		row := b.heights[col]
		if row >= b.rows {
			continue
		}

		b.place(col, mover)
		var v int
		if b.connectsAt(col, row) {
			v = WinScore + depth
			if !maximizing {
				v = -v
			}
		} else {
			v = n.minimax(b, depth-1, alpha, beta, !maximizing)
		}
		b.unplace(col)

		if maximizing {
			best = max(best, v)
			alpha = max(alpha, best)
		} else {
			best = min(best, v)
			beta = min(beta, best)
		}
		if alpha >= beta {
			break
		}
	}
	return best
}
