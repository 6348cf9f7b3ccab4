package repository

import (
	"context"
	"ctchen222/line-em-up/internal/api/models"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("repository.result")

// DefaultListLimit is used when a list call passes a non-positive limit.
const DefaultListLimit = 50

// ResultRepository defines the interface for finished game and batch persistence.
type ResultRepository interface {
	SaveGame(ctx context.Context, r *models.GameResult) error
	SaveBatch(ctx context.Context, r *models.BatchResult) error
	ListGames(ctx context.Context, batchID string, limit int) ([]models.GameResult, error)
	ListBatches(ctx context.Context, limit int) ([]models.BatchResult, error)
	DepthCounts(ctx context.Context, gameID string) (map[int]int, error)
}

type sqliteResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a new SQLite-based ResultRepository.
func NewResultRepository(db *sqlx.DB) ResultRepository {
	return &sqliteResultRepository{db: db}
}

const gameColumns = `id, match_id, batch_id, size, win_length, block_count, x_heuristic, o_heuristic, status,
	winner, winning_heuristic, move_count, states_visited, average_leaf_depth, average_ard, average_eval_time_ns,
	created_at`

// SaveGame inserts a game and its per-depth state counts in one transaction.
func (r *sqliteResultRepository) SaveGame(ctx context.Context, g *models.GameResult) error {
	ctx, span := tracer.Start(ctx, "ResultRepository.SaveGame", trace.WithAttributes(
		attribute.String("game.id", g.ID),
		attribute.String("batch.id", g.BatchID),
	))
	defer span.End()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO games (` + gameColumns + `) VALUES (:id, :match_id, :batch_id, :size, :win_length,
		:block_count, :x_heuristic, :o_heuristic, :status, :winner, :winning_heuristic, :move_count,
		:states_visited, :average_leaf_depth, :average_ard, :average_eval_time_ns, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, g); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to insert game")
		return fmt.Errorf("failed to save game: %w", err)
	}

	for depth, states := range g.VisitedPerDepth {
		_, err := tx.ExecContext(ctx, `INSERT INTO game_depth_counts (game_id, depth, states) VALUES (?, ?, ?)`,
			g.ID, depth, states)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to insert depth counts")
			return fmt.Errorf("failed to save depth counts: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit game: %w", err)
	}
	return nil
}

// SaveBatch inserts a batch summary.
func (r *sqliteResultRepository) SaveBatch(ctx context.Context, b *models.BatchResult) error {
	ctx, span := tracer.Start(ctx, "ResultRepository.SaveBatch", trace.WithAttributes(
		attribute.String("batch.id", b.ID),
		attribute.Int("batch.games", b.Games),
	))
	defer span.End()

	query := `INSERT INTO batches (id, size, win_length, block_count, games, average_states_visited,
		average_move_count, average_leaf_depth, average_ard, average_eval_time_ns, x_wins, o_wins, ties,
		material_win_ratio, line_potential_win_ratio, created_at)
		VALUES (:id, :size, :win_length, :block_count, :games, :average_states_visited, :average_move_count,
		:average_leaf_depth, :average_ard, :average_eval_time_ns, :x_wins, :o_wins, :ties, :material_win_ratio,
		:line_potential_win_ratio, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, b); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to insert batch")
		return fmt.Errorf("failed to save batch: %w", err)
	}
	return nil
}

// ListGames returns the most recent games first. An empty batchID lists games of every batch and single
// matches alike.
func (r *sqliteResultRepository) ListGames(ctx context.Context, batchID string, limit int) ([]models.GameResult, error) {
	ctx, span := tracer.Start(ctx, "ResultRepository.ListGames")
	defer span.End()

	if limit <= 0 {
		limit = DefaultListLimit
	}

	games := []models.GameResult{}
	query := `SELECT ` + gameColumns + ` FROM games WHERE (? = '' OR batch_id = ?) ORDER BY rowid DESC LIMIT ?`
	if err := r.db.SelectContext(ctx, &games, query, batchID, batchID, limit); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list games")
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}

// ListBatches returns the most recent batches first.
func (r *sqliteResultRepository) ListBatches(ctx context.Context, limit int) ([]models.BatchResult, error) {
	ctx, span := tracer.Start(ctx, "ResultRepository.ListBatches")
	defer span.End()

	if limit <= 0 {
		limit = DefaultListLimit
	}

	batches := []models.BatchResult{}
	query := `SELECT id, size, win_length, block_count, games, average_states_visited, average_move_count,
		average_leaf_depth, average_ard, average_eval_time_ns, x_wins, o_wins, ties, material_win_ratio,
		line_potential_win_ratio, created_at FROM batches ORDER BY rowid DESC LIMIT ?`
	if err := r.db.SelectContext(ctx, &batches, query, limit); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list batches")
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	return batches, nil
}

// DepthCounts returns the states visited per depth over a whole game.
func (r *sqliteResultRepository) DepthCounts(ctx context.Context, gameID string) (map[int]int, error) {
	ctx, span := tracer.Start(ctx, "ResultRepository.DepthCounts", trace.WithAttributes(
		attribute.String("game.id", gameID),
	))
	defer span.End()

	var rows []struct {
		Depth  int `db:"depth"`
		States int `db:"states"`
	}
	query := `SELECT depth, states FROM game_depth_counts WHERE game_id = ?`
	if err := r.db.SelectContext(ctx, &rows, query, gameID); err != nil {
		return nil, fmt.Errorf("failed to get depth counts: %w", err)
	}

	counts := make(map[int]int, len(rows))
	for _, row := range rows {
		counts[row.Depth] = row.States
	}
	return counts, nil
}
