package match

import (
	"ctchen222/line-em-up/internal/bot"
	"ctchen222/line-em-up/internal/eval"
	"ctchen222/line-em-up/internal/game"
	"time"
)

// MoveStats records one committed move and the search that preceded it.
type MoveStats struct {
	Number int             `json:"number"`
	Mark   game.PlayerMark `json:"mark"`
	Kind   PlayerKind      `json:"kind"`
	Move   game.Coord      `json:"move"`
	// Recommended is the search's choice; it differs from Move only for humans.
	Recommended *game.Coord   `json:"recommended,omitempty"`
	Score       float64       `json:"score"`
	Search      bot.Stats     `json:"search"`
	Duration    time.Duration `json:"duration"`
}

// GameStatistics accumulates the move statistics of one game.
type GameStatistics struct {
	MoveCount       int         `json:"move_count"`
	StatesVisited   int         `json:"states_visited"`
	VisitedPerDepth map[int]int `json:"visited_per_depth"`
	// AverageLeafDepth is the mean over moves of each move's average leaf depth.
	AverageLeafDepth float64 `json:"average_leaf_depth"`
	AverageARD       float64 `json:"average_ard"`
	// AverageEvalTime is the mean duration of a single heuristic evaluation.
	AverageEvalTime time.Duration                      `json:"average_eval_time"`
	Result          game.Result                        `json:"result"`
	Heuristics      map[game.PlayerMark]eval.Heuristic `json:"heuristics"`
	Moves           []MoveStats                        `json:"moves"`

	leafDepthSum float64
	ardSum       float64
	evalTimeSum  time.Duration
	evaluations  int
}

// NewGameStatistics returns empty statistics for a game played with cfg.
func NewGameStatistics(cfg Config) GameStatistics {
	return GameStatistics{
		VisitedPerDepth: make(map[int]int),
		Result:          game.Result{Status: game.InProgress},
		Heuristics: map[game.PlayerMark]eval.Heuristic{
			game.PlayerX: cfg.X.Heuristic,
			game.PlayerO: cfg.O.Heuristic,
		},
	}
}

// Add folds a move into the totals and refreshes the averages.
func (g *GameStatistics) Add(m MoveStats) {
	g.Moves = append(g.Moves, m)
	g.MoveCount++
	g.StatesVisited += m.Search.StatesVisited
	if g.VisitedPerDepth == nil {
		g.VisitedPerDepth = make(map[int]int)
	}
	for depth, n := range m.Search.VisitedPerDepth {
		g.VisitedPerDepth[depth] += n
	}

	g.leafDepthSum += m.Search.AverageLeafDepth()
	g.ardSum += m.Search.ARD
	g.evalTimeSum += m.Search.EvalTime
	g.evaluations += m.Search.Leaves

	g.AverageLeafDepth = g.leafDepthSum / float64(g.MoveCount)
	g.AverageARD = g.ardSum / float64(g.MoveCount)
	if g.evaluations > 0 {
		g.AverageEvalTime = g.evalTimeSum / time.Duration(g.evaluations)
	}
}

// Conclude records the final result.
func (g *GameStatistics) Conclude(r game.Result) {
	g.Result = r
}

// WinningHeuristic returns the heuristic of the winner, or false for a tie or an unfinished game.
func (g GameStatistics) WinningHeuristic() (eval.Heuristic, bool) {
	if g.Result.Status != game.Win {
		return 0, false
	}
	h, ok := g.Heuristics[g.Result.Winner]
	return h, ok
}

// BatchStatistics averages the per-game statistics of several games.
type BatchStatistics struct {
	Games                  int                     `json:"games"`
	AverageStatesVisited   float64                 `json:"average_states_visited"`
	AverageVisitedPerDepth map[int]float64         `json:"average_visited_per_depth"`
	AverageMoveCount       float64                 `json:"average_move_count"`
	AverageLeafDepth       float64                 `json:"average_leaf_depth"`
	AverageARD             float64                 `json:"average_ard"`
	AverageEvalTime        time.Duration           `json:"average_eval_time"`
	Wins                   map[game.PlayerMark]int `json:"wins"`
	Ties                   int                     `json:"ties"`
	HeuristicWins          map[eval.Heuristic]int  `json:"heuristic_wins"`

	statesSum    int
	perDepthSum  map[int]int
	moveCountSum int
	leafDepthSum float64
	ardSum       float64
	evalTimeSum  time.Duration
}

// NewBatchStatistics returns an empty batch.
func NewBatchStatistics() *BatchStatistics {
	return &BatchStatistics{
		AverageVisitedPerDepth: make(map[int]float64),
		Wins:                   make(map[game.PlayerMark]int),
		HeuristicWins:          make(map[eval.Heuristic]int),
		perDepthSum:            make(map[int]int),
	}
}

// Fold adds a finished game to the batch.
func (b *BatchStatistics) Fold(g GameStatistics) {
	b.Games++
	b.statesSum += g.StatesVisited
	b.moveCountSum += g.MoveCount
	b.leafDepthSum += g.AverageLeafDepth
	b.ardSum += g.AverageARD
	b.evalTimeSum += g.AverageEvalTime
	for depth, n := range g.VisitedPerDepth {
		b.perDepthSum[depth] += n
	}

	switch g.Result.Status {
	case game.Win:
		b.Wins[g.Result.Winner]++
		if h, ok := g.WinningHeuristic(); ok {
			b.HeuristicWins[h]++
		}
	case game.Tie:
		b.Ties++
	}

	n := float64(b.Games)
	b.AverageStatesVisited = float64(b.statesSum) / n
	b.AverageMoveCount = float64(b.moveCountSum) / n
	b.AverageLeafDepth = b.leafDepthSum / n
	b.AverageARD = b.ardSum / n
	b.AverageEvalTime = b.evalTimeSum / time.Duration(b.Games)
	for depth, total := range b.perDepthSum {
		b.AverageVisitedPerDepth[depth] = float64(total) / n
	}
}

// HeuristicWinRatio is the share of all games in the batch won by the side using h.
func (b *BatchStatistics) HeuristicWinRatio(h eval.Heuristic) float64 {
	if b.Games == 0 {
		return 0
	}
	return float64(b.HeuristicWins[h]) / float64(b.Games)
}
