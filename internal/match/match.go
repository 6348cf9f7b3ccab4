package match

//go:generate mockgen -source=match.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"ctchen222/line-em-up/internal/bot"
	"ctchen222/line-em-up/internal/eval"
	"ctchen222/line-em-up/internal/game"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNoMove        = errors.New("search returned no move on a board still in progress")
	ErrGameOver      = errors.New("game is already over")
	ErrNoMoveSource  = errors.New("a human side needs a move source")
	ErrInvalidConfig = errors.New("invalid match configuration")
)

// PlayerKind tells whether a side is played by the search engine or by a person.
type PlayerKind string

const (
	Human PlayerKind = "human"
	AI    PlayerKind = "ai"
)

// ParsePlayerKind accepts "human" and "ai" in any case.
func ParsePlayerKind(s string) (PlayerKind, error) {
	switch k := PlayerKind(strings.ToLower(strings.TrimSpace(s))); k {
	case Human, AI:
		return k, nil
	}
	return "", fmt.Errorf("unknown player kind %q", s)
}

// SideConfig is the per-player part of a match configuration.
type SideConfig struct {
	Kind       PlayerKind     `json:"kind"`
	Algorithm  bot.Algorithm  `json:"algorithm"`
	Heuristic  eval.Heuristic `json:"heuristic"`
	DepthLimit int            `json:"depth_limit"`
	// MoveTime is the search budget per move. Zero means unlimited.
	MoveTime time.Duration `json:"move_time"`
}

// Config describes a whole match. It is never modified by the controller.
type Config struct {
	Board game.Settings `json:"board"`
	X     SideConfig    `json:"x"`
	O     SideConfig    `json:"o"`
	// Recommend shows the search's move to human players before they choose.
	Recommend bool `json:"recommend"`
}

// Side returns the configuration of the player using mark.
func (c Config) Side(mark game.PlayerMark) SideConfig {
	if mark == game.PlayerO {
		return c.O
	}
	return c.X
}

// WithSwappedHeuristics returns a copy of c where X and O exchange heuristics.
func (c Config) WithSwappedHeuristics() Config {
	c.X.Heuristic, c.O.Heuristic = c.O.Heuristic, c.X.Heuristic
	return c
}

// Validate checks the parts of the configuration the board constructor does not.
func (c Config) Validate() error {
	for _, mark := range []game.PlayerMark{game.PlayerX, game.PlayerO} {
		side := c.Side(mark)
		if side.Kind != Human && side.Kind != AI {
			return fmt.Errorf("%w: player %s has kind %q", ErrInvalidConfig, mark, side.Kind)
		}
		if side.DepthLimit <= 0 {
			return fmt.Errorf("%w: player %s depth limit must be positive, got %d", ErrInvalidConfig, mark, side.DepthLimit)
		}
		if side.MoveTime < 0 {
			return fmt.Errorf("%w: player %s move time is negative", ErrInvalidConfig, mark)
		}
	}
	return nil
}

// HumanTurn is what a MoveSource receives when a person has to move.
type HumanTurn struct {
	MatchID string
	Mark    game.PlayerMark
	// Board is a copy of the current position.
	Board *game.Board
	// Recommendation is the search's move, set only when recommendations are enabled.
	Recommendation *game.Coord
	// Rejected is the reason the previous input for this turn was refused.
	Rejected error
}

// MoveSource supplies the moves of human players.
type MoveSource interface {
	NextMove(ctx context.Context, turn HumanTurn) (game.Coord, error)
}

// Reporter is notified as a game progresses.
type Reporter interface {
	GameStarted(ctx context.Context, cfg Config, b *game.Board)
	MovePlayed(ctx context.Context, move MoveStats, b *game.Board)
	GameConcluded(ctx context.Context, stats GameStatistics, b *game.Board)
}

// Publisher stores the latest snapshot of a match where other processes can read it.
type Publisher interface {
	Publish(ctx context.Context, snapshot Snapshot) error
}

// MoveCalculator runs a move search. *bot.Engine is the production implementation.
type MoveCalculator interface {
	Search(ctx context.Context, b *game.Board, req bot.Request) bot.Outcome
}
