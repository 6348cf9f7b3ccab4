package db

import (
	"context"
	"fmt"
	"log/slog"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Connect opens the SQLite database at dbPath and enables foreign keys.
func Connect(ctx context.Context, dbPath string) (*sqlx.DB, error) {
	pool, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if dbPath == MemoryPath {
		// every connection to :memory: is a separate database
		pool.SetMaxOpenConns(1)
	}
	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database %s: %w", dbPath, err)
	}
	if _, err := pool.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	slog.InfoContext(ctx, "Connected to database", "path", dbPath)
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS batches (
	id TEXT PRIMARY KEY,
	size INTEGER NOT NULL,
	win_length INTEGER NOT NULL,
	block_count INTEGER NOT NULL,
	games INTEGER NOT NULL,
	average_states_visited REAL NOT NULL,
	average_move_count REAL NOT NULL,
	average_leaf_depth REAL NOT NULL,
	average_ard REAL NOT NULL,
	average_eval_time_ns INTEGER NOT NULL,
	x_wins INTEGER NOT NULL,
	o_wins INTEGER NOT NULL,
	ties INTEGER NOT NULL,
	material_win_ratio REAL NOT NULL,
	line_potential_win_ratio REAL NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS games (
	id TEXT PRIMARY KEY,
	match_id TEXT NOT NULL,
	batch_id TEXT NOT NULL DEFAULT '',
	size INTEGER NOT NULL,
	win_length INTEGER NOT NULL,
	block_count INTEGER NOT NULL,
	x_heuristic TEXT NOT NULL,
	o_heuristic TEXT NOT NULL,
	status TEXT NOT NULL,
	winner TEXT NOT NULL DEFAULT '',
	winning_heuristic TEXT NOT NULL DEFAULT '',
	move_count INTEGER NOT NULL,
	states_visited INTEGER NOT NULL,
	average_leaf_depth REAL NOT NULL,
	average_ard REAL NOT NULL,
	average_eval_time_ns INTEGER NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_games_batch_id ON games (batch_id);

CREATE TABLE IF NOT EXISTS game_depth_counts (
	game_id TEXT NOT NULL REFERENCES games (id) ON DELETE CASCADE,
	depth INTEGER NOT NULL,
	states INTEGER NOT NULL,
	PRIMARY KEY (game_id, depth)
);`

// InitializeDB creates the result tables if they do not exist.
func InitializeDB(ctx context.Context, pool *sqlx.DB) error {
	if _, err := pool.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create result tables: %w", err)
	}
	slog.InfoContext(ctx, "Database schema verified")
	return nil
}
