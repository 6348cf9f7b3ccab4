package scoreboard

import (
	"context"
	"ctchen222/line-em-up/internal/api/models"
	"ctchen222/line-em-up/internal/match"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("scoreboard")

var (
	ErrHumanSide     = errors.New("scoreboard runs need two AI sides")
	ErrInvalidRounds = errors.New("scoreboard rounds must be positive")
)

// ResultStore persists finished games and batch summaries.
type ResultStore interface {
	SaveGame(ctx context.Context, r *models.GameResult) error
	SaveBatch(ctx context.Context, r *models.BatchResult) error
}

// Report is the outcome of one run.
type Report struct {
	BatchID string
	Config  match.Config
	Stats   *match.BatchStatistics
	Games   []match.GameStatistics
}

// Runner plays batches of AI-versus-AI games.
type Runner struct {
	calc     match.MoveCalculator
	store    ResultStore
	reporter match.Reporter
	now      func() time.Time
}

type Option func(*Runner)

// WithStore saves every game and the batch summary.
func WithStore(s ResultStore) Option {
	return func(r *Runner) { r.store = s }
}

// WithReporter passes the reporter to every game's controller.
func WithReporter(rep match.Reporter) Option {
	return func(r *Runner) { r.reporter = rep }
}

func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

func NewRunner(calc match.MoveCalculator, opts ...Option) *Runner {
	r := &Runner{calc: calc, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run plays rounds games with cfg, then rounds games with the two heuristics swapped, and folds all of
// them into one batch.
func (r *Runner) Run(ctx context.Context, cfg match.Config, rounds int) (*Report, error) {
	if cfg.X.Kind != match.AI || cfg.O.Kind != match.AI {
		return nil, ErrHumanSide
	}
	if rounds < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRounds, rounds)
	}

	rep := &Report{
		BatchID: uuid.NewString(),
		Config:  cfg,
		Stats:   match.NewBatchStatistics(),
	}
	ctx, span := tracer.Start(ctx, "scoreboard.Run", trace.WithAttributes(
		attribute.String("batch.id", rep.BatchID),
		attribute.Int("batch.rounds", rounds),
	))
	defer span.End()

	for _, c := range []match.Config{cfg, cfg.WithSwappedHeuristics()} {
		if err := r.playRounds(ctx, rep, c, rounds); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Scoreboard run failed")
			return rep, err
		}
	}

	if r.store != nil {
		if err := r.store.SaveBatch(ctx, models.NewBatchResult(rep.BatchID, cfg, rep.Stats, r.now())); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to save batch")
			return rep, err
		}
	}
	slog.InfoContext(ctx, "Scoreboard run finished",
		"batchID", rep.BatchID,
		"games", rep.Stats.Games,
		"ties", rep.Stats.Ties,
	)
	return rep, nil
}

func (r *Runner) playRounds(ctx context.Context, rep *Report, cfg match.Config, rounds int) error {
	opts := []match.Option{match.WithID(fmt.Sprintf("%s-x-%s", rep.BatchID, cfg.X.Heuristic))}
	if r.reporter != nil {
		opts = append(opts, match.WithReporter(r.reporter))
	}
	ctrl, err := match.NewController(cfg, r.calc, opts...)
	if err != nil {
		return err
	}

	for i := 0; i < rounds; i++ {
		if i > 0 {
			ctrl.Reset()
		}
		stats, err := ctrl.Play(ctx)
		if err != nil {
			return fmt.Errorf("game %d of %s: %w", rep.Stats.Games+1, ctrl.ID(), err)
		}
		rep.Stats.Fold(stats)
		rep.Games = append(rep.Games, stats)

		if r.store != nil {
			if err := r.store.SaveGame(ctx, models.NewGameResult(ctrl.ID(), rep.BatchID, cfg, stats, r.now())); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteReport writes the configuration block followed by the batch statistics.
func WriteReport(w io.Writer, rep *Report) error {
	if err := match.WriteConfig(w, rep.Config); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\n%d games\n\n", rep.Stats.Games); err != nil {
		return err
	}
	return match.WriteBatch(w, rep.Stats)
}
