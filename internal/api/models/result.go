package models

import (
	"ctchen222/line-em-up/internal/eval"
	"ctchen222/line-em-up/internal/game"
	"ctchen222/line-em-up/internal/match"
	"time"

	"github.com/google/uuid"
)

// GameResult is one finished game as stored in the games table.
type GameResult struct {
	ID                string    `db:"id" json:"id"`
	MatchID           string    `db:"match_id" json:"match_id"`
	BatchID           string    `db:"batch_id" json:"batch_id,omitempty"`
	Size              int       `db:"size" json:"size"`
	WinLength         int       `db:"win_length" json:"win_length"`
	BlockCount        int       `db:"block_count" json:"block_count"`
	XHeuristic        string    `db:"x_heuristic" json:"x_heuristic"`
	OHeuristic        string    `db:"o_heuristic" json:"o_heuristic"`
	Status            string    `db:"status" json:"status"`
	Winner            string    `db:"winner" json:"winner,omitempty"`
	WinningHeuristic  string    `db:"winning_heuristic" json:"winning_heuristic,omitempty"`
	MoveCount         int       `db:"move_count" json:"move_count"`
	StatesVisited     int       `db:"states_visited" json:"states_visited"`
	AverageLeafDepth  float64   `db:"average_leaf_depth" json:"average_leaf_depth"`
	AverageARD        float64   `db:"average_ard" json:"average_ard"`
	AverageEvalTimeNs int64     `db:"average_eval_time_ns" json:"average_eval_time_ns"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`

	// VisitedPerDepth lives in game_depth_counts.
	VisitedPerDepth map[int]int `db:"-" json:"visited_per_depth,omitempty"`
}

// NewGameResult flattens the statistics of a concluded game. batchID is empty for a single match.
func NewGameResult(matchID, batchID string, cfg match.Config, g match.GameStatistics, at time.Time) *GameResult {
	r := &GameResult{
		ID:                uuid.NewString(),
		MatchID:           matchID,
		BatchID:           batchID,
		Size:              cfg.Board.Size,
		WinLength:         cfg.Board.WinLength,
		BlockCount:        cfg.Board.BlockCount,
		XHeuristic:        cfg.X.Heuristic.String(),
		OHeuristic:        cfg.O.Heuristic.String(),
		Status:            string(g.Result.Status),
		Winner:            string(g.Result.Winner),
		MoveCount:         g.MoveCount,
		StatesVisited:     g.StatesVisited,
		AverageLeafDepth:  g.AverageLeafDepth,
		AverageARD:        g.AverageARD,
		AverageEvalTimeNs: g.AverageEvalTime.Nanoseconds(),
		CreatedAt:         at,
		VisitedPerDepth:   g.VisitedPerDepth,
	}
	if h, ok := g.WinningHeuristic(); ok {
		r.WinningHeuristic = h.String()
	}
	return r
}

// BatchResult is the summary of a scoreboard run as stored in the batches table.
type BatchResult struct {
	ID                    string    `db:"id" json:"id"`
	Size                  int       `db:"size" json:"size"`
	WinLength             int       `db:"win_length" json:"win_length"`
	BlockCount            int       `db:"block_count" json:"block_count"`
	Games                 int       `db:"games" json:"games"`
	AverageStatesVisited  float64   `db:"average_states_visited" json:"average_states_visited"`
	AverageMoveCount      float64   `db:"average_move_count" json:"average_move_count"`
	AverageLeafDepth      float64   `db:"average_leaf_depth" json:"average_leaf_depth"`
	AverageARD            float64   `db:"average_ard" json:"average_ard"`
	AverageEvalTimeNs     int64     `db:"average_eval_time_ns" json:"average_eval_time_ns"`
	XWins                 int       `db:"x_wins" json:"x_wins"`
	OWins                 int       `db:"o_wins" json:"o_wins"`
	Ties                  int       `db:"ties" json:"ties"`
	MaterialWinRatio      float64   `db:"material_win_ratio" json:"material_win_ratio"`
	LinePotentialWinRatio float64   `db:"line_potential_win_ratio" json:"line_potential_win_ratio"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
}

// NewBatchResult flattens batch statistics.
func NewBatchResult(id string, cfg match.Config, b *match.BatchStatistics, at time.Time) *BatchResult {
	return &BatchResult{
		ID:                    id,
		Size:                  cfg.Board.Size,
		WinLength:             cfg.Board.WinLength,
		BlockCount:            cfg.Board.BlockCount,
		Games:                 b.Games,
		AverageStatesVisited:  b.AverageStatesVisited,
		AverageMoveCount:      b.AverageMoveCount,
		AverageLeafDepth:      b.AverageLeafDepth,
		AverageARD:            b.AverageARD,
		AverageEvalTimeNs:     b.AverageEvalTime.Nanoseconds(),
		XWins:                 b.Wins[game.PlayerX],
		OWins:                 b.Wins[game.PlayerO],
		Ties:                  b.Ties,
		MaterialWinRatio:      b.HeuristicWinRatio(eval.Material),
		LinePotentialWinRatio: b.HeuristicWinRatio(eval.LinePotential),
		CreatedAt:             at,
	}
}
