package bot

import (
	"ctchen222/line-em-up/internal/eval"
	"ctchen222/line-em-up/internal/game"
	"math/rand/v2"
	"time"
)

// searchContext holds everything a single search needs. It is created per call so that no deadline or
// counter state survives between moves.
type searchContext struct {
	board     *game.Board
	algorithm Algorithm
	heuristic eval.Heuristic
	own       game.PlayerMark
	limit     int
	deadline  time.Time
	done      <-chan struct{}
	now       func() time.Time
	rng       *rand.Rand

	timedOut bool
	stats    Stats
}

type node struct {
	score float64
	move  game.Coord
	found bool
	ard   float64
}

func (s *searchContext) expired() bool {
	select {
	case <-s.done:
		return true
	default:
	}
	return !s.deadline.IsZero() && s.now().After(s.deadline)
}

func (s *searchContext) candidates() []game.Coord {
	cells := s.board.EmptyCells()
	if s.rng != nil {
		s.rng.Shuffle(len(cells), func(i, j int) { cells[i], cells[j] = cells[j], cells[i] })
	}
	return cells
}

func (s *searchContext) evaluate(depth int) float64 {
	start := time.Now()
	score := eval.Evaluate(s.board, s.heuristic, depth, s.own)
	s.stats.EvalTime += time.Since(start)
	s.stats.Leaves++
	s.stats.LeafDepthSum += depth
	return score
}

// search expands the node one ply below depth. Minimax and alpha-beta share it; alpha and beta are
// ignored for minimax.
func (s *searchContext) search(depth int, maximizing bool, alpha, beta float64) node {
	depth++
	if depth > s.stats.MaxDepthReached {
		s.stats.MaxDepthReached = depth
	}

	mark := game.MarkFor(game.Minimizer)
	if maximizing {
		mark = game.MarkFor(game.Maximizer)
	}

	var best node
	var ardSum float64
	children := 0
	for _, c := range s.candidates() {
		if !s.timedOut && s.expired() {
			s.timedOut = true
			s.stats.TimedOut = true
			s.stats.EffectiveDepth = depth
		}

		s.board.Place(c.Row, c.Col, mark)
		var score, ard float64
		if depth == s.limit || s.timedOut || s.board.TerminalState().Over() {
			score = s.evaluate(depth)
			ard = float64(depth)
		} else {
			child := s.search(depth, !maximizing, alpha, beta)
			score, ard = child.score, child.ard
		}
		s.board.Clear(c.Row, c.Col)

		ardSum += ard
		children++
		if !best.found || (maximizing && score > best.score) || (!maximizing && score < best.score) {
			best = node{score: score, move: c, found: true}
		}
		s.stats.StatesVisited++
		s.stats.VisitedPerDepth[depth]++

		if s.timedOut {
			break
		}
		if s.algorithm == AlphaBeta {
			if maximizing {
				if best.score >= beta {
					break
				}
				alpha = max(alpha, best.score)
			} else {
				if best.score <= alpha {
					break
				}
				beta = min(beta, best.score)
			}
		}
	}

	if children > 0 {
		best.ard = ardSum / float64(children)
	}
	return best
}
