package bot

import (
	"context"
	"ctchen222/line-em-up/internal/eval"
	"ctchen222/line-em-up/internal/game"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("bot")

// Algorithm selects the search variant.
type Algorithm int

const (
	Minimax Algorithm = iota
	AlphaBeta
)

func (a Algorithm) String() string {
	switch a {
	case Minimax:
		return "minimax"
	case AlphaBeta:
		return "alphabeta"
	default:
		return fmt.Sprintf("algorithm(%d)", int(a))
	}
}

func (a Algorithm) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Algorithm) UnmarshalText(text []byte) error {
	parsed, err := ParseAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAlgorithm accepts "minimax" and "alphabeta" (also "alpha-beta", "alpha_beta").
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "minimax":
		return Minimax, nil
	case "alphabeta", "alpha-beta", "alpha_beta":
		return AlphaBeta, nil
	}
	return 0, fmt.Errorf("unknown algorithm %q", s)
}

// Request describes a single move search.
type Request struct {
	Algorithm  Algorithm
	Heuristic  eval.Heuristic
	DepthLimit int
	// Deadline is the wall-clock instant after which the search stops expanding. Zero means none.
	Deadline time.Time
	// Mark is the side to move. Its role decides whether the root maximizes.
	Mark game.PlayerMark
}

// Outcome is the result of a search. Move is only meaningful when HasMove is true.
type Outcome struct {
	Score   float64
	Move    game.Coord
	HasMove bool
	Stats   Stats
}

// Stats are the counters gathered by one search.
type Stats struct {
	StatesVisited   int         `json:"states_visited"`
	VisitedPerDepth map[int]int `json:"visited_per_depth"`
	MaxDepthReached int         `json:"max_depth_reached"`
	Leaves          int         `json:"leaves"`
	LeafDepthSum    int         `json:"leaf_depth_sum"`
	// ARD is the average recursion depth: a leaf counts its depth, an inner node the mean of its children.
	ARD            float64       `json:"ard"`
	TimedOut       bool          `json:"timed_out"`
	EffectiveDepth int           `json:"effective_depth,omitempty"`
	EvalTime       time.Duration `json:"eval_time"`
	Elapsed        time.Duration `json:"elapsed"`
}

// AverageLeafDepth is the mean depth of the evaluated leaves, or 0 when nothing was evaluated.
func (s Stats) AverageLeafDepth() float64 {
	if s.Leaves == 0 {
		return 0
	}
	return float64(s.LeafDepthSum) / float64(s.Leaves)
}

// MetricsRecorder receives a summary of every finished search.
type MetricsRecorder interface {
	RecordSearch(ctx context.Context, algorithm string, states int, elapsed time.Duration, timedOut bool)
}

// Engine runs minimax or alpha-beta searches. It keeps no state between searches and is safe to share
// between goroutines as long as each search gets its own board.
type Engine struct {
	now     func() time.Time
	rng     *rand.Rand
	metrics MetricsRecorder
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now for deadline checks.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithShuffle explores the candidate moves of every node in a random order drawn from rng.
// rng is not safe for concurrent use, so an engine built with it must not run searches in parallel.
func WithShuffle(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithMetrics reports each search to m.
func WithMetrics(m MetricsRecorder) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine creates a search engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search picks the best move for req.Mark on b. The board is mutated during the search and restored
// before Search returns. A terminal or full board yields an Outcome without a move.
//
// Cancelling ctx has the same effect as reaching the deadline: the best move found so far is returned.
func (e *Engine) Search(ctx context.Context, b *game.Board, req Request) Outcome {
	ctx, span := tracer.Start(ctx, "bot.Search", trace.WithAttributes(
		attribute.String("algorithm", req.Algorithm.String()),
		attribute.String("heuristic", req.Heuristic.String()),
		attribute.Int("depth_limit", req.DepthLimit),
		attribute.String("mark", string(req.Mark)),
	))
	defer span.End()

	start := time.Now()
	s := &searchContext{
		board:     b,
		algorithm: req.Algorithm,
		heuristic: req.Heuristic,
		own:       req.Mark,
		limit:     max(req.DepthLimit, 1),
		deadline:  req.Deadline,
		done:      ctx.Done(),
		now:       e.now,
		rng:       e.rng,
		stats:     Stats{VisitedPerDepth: make(map[int]int)},
	}

	var out Outcome
	if !b.TerminalState().Over() {
		maximizing := game.RoleOf(req.Mark) == game.Maximizer
		root := s.search(0, maximizing, math.Inf(-1), math.Inf(1))
		s.stats.ARD = root.ard
		out = Outcome{Score: root.score, Move: root.move, HasMove: root.found}
	}
	s.stats.Elapsed = time.Since(start)
	out.Stats = s.stats

	span.SetAttributes(
		attribute.Int("states_visited", out.Stats.StatesVisited),
		attribute.Bool("timed_out", out.Stats.TimedOut),
		attribute.Bool("has_move", out.HasMove),
	)
	if e.metrics != nil {
		e.metrics.RecordSearch(ctx, req.Algorithm.String(), out.Stats.StatesVisited, out.Stats.Elapsed, out.Stats.TimedOut)
	}
	slog.DebugContext(ctx, "Search finished",
		"mark", req.Mark,
		"algorithm", req.Algorithm.String(),
		"move", out.Move.String(),
		"score", out.Score,
		"states", out.Stats.StatesVisited,
		"timedOut", out.Stats.TimedOut,
		"elapsed", out.Stats.Elapsed,
	)
	return out
}
