package match

import (
	"context"
	"ctchen222/line-em-up/internal/bot"
	"ctchen222/line-em-up/internal/game"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("match")

// Snapshot is a read-only picture of a match, refreshed after every committed move.
type Snapshot struct {
	ID        string              `json:"id"`
	Board     [][]game.PlayerMark `json:"board"`
	Next      game.PlayerMark     `json:"next,omitempty"`
	Status    game.Status         `json:"status"`
	Winner    game.PlayerMark     `json:"winner,omitempty"`
	MoveCount int                 `json:"move_count"`
	LastMove  *MoveStats          `json:"last_move,omitempty"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Controller runs one game at a time between two configured sides. Step and Play must be called from a
// single goroutine; Snapshot may be called from any goroutine.
type Controller struct {
	id        string
	cfg       Config
	board     *game.Board
	calc      MoveCalculator
	source    MoveSource
	reporter  Reporter
	publisher Publisher
	now       func() time.Time

	turn      game.PlayerMark
	started   bool
	concluded bool
	result    game.Result
	stats     GameStatistics

	mu       sync.RWMutex
	snapshot Snapshot
}

// Option configures a Controller.
type Option func(*Controller)

// WithID sets the match id. A random id is used otherwise.
func WithID(id string) Option {
	return func(c *Controller) { c.id = id }
}

// WithMoveSource sets where human moves come from.
func WithMoveSource(s MoveSource) Option {
	return func(c *Controller) { c.source = s }
}

// WithReporter sets who is told about game progress.
func WithReporter(r Reporter) Option {
	return func(c *Controller) { c.reporter = r }
}

// WithPublisher sets where snapshots are published after each move.
func WithPublisher(p Publisher) Option {
	return func(c *Controller) { c.publisher = p }
}

// WithClock replaces time.Now for move deadlines.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController validates cfg, builds the board and prepares the first game.
func NewController(cfg Config, calc MoveCalculator, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	board, err := game.NewBoard(cfg.Board)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	c := &Controller{
		cfg:      cfg,
		board:    board,
		calc:     calc,
		reporter: MultiReporter{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.id == "" {
		c.id = uuid.NewString()
	}
	if c.source == nil && (cfg.X.Kind == Human || cfg.O.Kind == Human) {
		return nil, ErrNoMoveSource
	}

	c.Reset()
	return c, nil
}

func (c *Controller) ID() string     { return c.id }
func (c *Controller) Config() Config { return c.cfg }

// Result is the state of the current game.
func (c *Controller) Result() game.Result { return c.result }

// Statistics returns the statistics gathered so far in the current game.
func (c *Controller) Statistics() GameStatistics { return c.stats }

// Reset starts a new game with the same configuration.
func (c *Controller) Reset() {
	c.board.Reset()
	c.turn = game.PlayerX
	c.started = false
	c.concluded = false
	c.result = c.board.TerminalState()
	c.stats = NewGameStatistics(c.cfg)
	c.refreshSnapshot(nil)
}

// Snapshot returns the picture taken after the last committed move.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Play runs steps until the game ends and returns its statistics.
func (c *Controller) Play(ctx context.Context) (GameStatistics, error) {
	for {
		if _, err := c.Step(ctx); err != nil {
			if errors.Is(err, ErrGameOver) {
				return c.stats, nil
			}
			return c.stats, err
		}
	}
}

// Step plays a single turn: it searches for the side on move, commits the AI move or asks the move source
// for a human one, records the statistics and switches sides. It returns ErrGameOver once the game has
// ended.
func (c *Controller) Step(ctx context.Context) (MoveStats, error) {
	if err := ctx.Err(); err != nil {
		return MoveStats{}, err
	}

	ctx, span := tracer.Start(ctx, "match.Step", trace.WithAttributes(
		attribute.String("match_id", c.id),
		attribute.String("mark", string(c.turn)),
	))
	defer span.End()

	c.start(ctx)
	if c.result = c.board.TerminalState(); c.result.Over() {
		c.conclude(ctx)
		return MoveStats{}, ErrGameOver
	}

	side := c.cfg.Side(c.turn)
	turnStart := c.now()
	req := bot.Request{
		Algorithm:  side.Algorithm,
		Heuristic:  side.Heuristic,
		DepthLimit: side.DepthLimit,
		Mark:       c.turn,
	}
	if side.MoveTime > 0 {
		req.Deadline = turnStart.Add(side.MoveTime)
	}
	outcome := c.calc.Search(ctx, c.board, req)

	move := outcome.Move
	switch side.Kind {
	case AI:
		if !outcome.HasMove {
			err := fmt.Errorf("%w: %s to move", ErrNoMove, c.turn)
			span.RecordError(err)
			span.SetStatus(codes.Error, "no move")
			return MoveStats{}, err
		}
		if err := c.board.Play(move.Row, move.Col, c.turn); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "search returned an illegal move")
			return MoveStats{}, fmt.Errorf("failed to commit AI move: %w", err)
		}
	case Human:
		var err error
		if move, err = c.humanMove(ctx, outcome); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "no human move")
			return MoveStats{}, err
		}
	}

	ms := MoveStats{
		Number:   c.stats.MoveCount + 1,
		Mark:     c.turn,
		Kind:     side.Kind,
		Move:     move,
		Score:    outcome.Score,
		Search:   outcome.Stats,
		Duration: c.now().Sub(turnStart),
	}
	if outcome.HasMove {
		recommended := outcome.Move
		ms.Recommended = &recommended
	}
	c.stats.Add(ms)
	c.reporter.MovePlayed(ctx, ms, c.board)
	slog.InfoContext(ctx, "Move played",
		"matchID", c.id,
		"mark", ms.Mark,
		"kind", ms.Kind,
		"move", ms.Move.String(),
		"states", ms.Search.StatesVisited,
		"timedOut", ms.Search.TimedOut,
	)

	c.turn = game.Opponent(c.turn)
	if c.result = c.board.TerminalState(); c.result.Over() {
		c.conclude(ctx)
	}
	c.refreshSnapshot(&ms)
	c.publish(ctx)
	return ms, nil
}

func (c *Controller) humanMove(ctx context.Context, outcome bot.Outcome) (game.Coord, error) {
	turn := HumanTurn{MatchID: c.id, Mark: c.turn, Board: c.board.Clone()}
	if c.cfg.Recommend && outcome.HasMove {
		recommended := outcome.Move
		turn.Recommendation = &recommended
	}

	for {
		move, err := c.source.NextMove(ctx, turn)
		if err != nil {
			return game.Coord{}, fmt.Errorf("failed to read move for %s: %w", c.turn, err)
		}
		if err := c.board.Play(move.Row, move.Col, c.turn); err != nil {
			slog.WarnContext(ctx, "Rejected human move", "matchID", c.id, "mark", c.turn, "move", move.String(), "error", err)
			turn.Rejected = err
			continue
		}
		return move, nil
	}
}

func (c *Controller) start(ctx context.Context) {
	if c.started {
		return
	}
	c.started = true
	c.reporter.GameStarted(ctx, c.cfg, c.board)
	c.publish(ctx)
}

func (c *Controller) conclude(ctx context.Context) {
	if c.concluded {
		return
	}
	c.concluded = true
	c.stats.Conclude(c.result)
	c.reporter.GameConcluded(ctx, c.stats, c.board)
	slog.InfoContext(ctx, "Game concluded",
		"matchID", c.id,
		"status", c.result.Status,
		"winner", c.result.Winner,
		"moves", c.stats.MoveCount,
	)
}

func (c *Controller) refreshSnapshot(last *MoveStats) {
	snap := Snapshot{
		ID:        c.id,
		Board:     c.board.Rows(),
		Status:    c.result.Status,
		Winner:    c.result.Winner,
		MoveCount: c.stats.MoveCount,
		LastMove:  last,
		UpdatedAt: c.now(),
	}
	if !c.result.Over() {
		snap.Next = c.turn
	}

	c.mu.Lock()
	c.snapshot = snap
	c.mu.Unlock()
}

func (c *Controller) publish(ctx context.Context) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(ctx, c.Snapshot()); err != nil {
		slog.ErrorContext(ctx, "Failed to publish match snapshot", "matchID", c.id, "error", err)
	}
}

// MultiReporter forwards every notification to each of its reporters in order.
type MultiReporter []Reporter

func (m MultiReporter) GameStarted(ctx context.Context, cfg Config, b *game.Board) {
	for _, r := range m {
		r.GameStarted(ctx, cfg, b)
	}
}

func (m MultiReporter) MovePlayed(ctx context.Context, move MoveStats, b *game.Board) {
	for _, r := range m {
		r.MovePlayed(ctx, move, b)
	}
}

func (m MultiReporter) GameConcluded(ctx context.Context, stats GameStatistics, b *game.Board) {
	for _, r := range m {
		r.GameConcluded(ctx, stats, b)
	}
}
