package match

import (
	"ctchen222/line-em-up/internal/eval"
	"ctchen222/line-em-up/internal/game"
	"fmt"
	"io"
	"slices"
	"strings"
)

// WriteConfig prints the configuration block that opens every trace and scoreboard.
func WriteConfig(w io.Writer, cfg Config) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "n: %d\n", cfg.Board.Size)
	fmt.Fprintf(&sb, "b: %d\n", cfg.Board.BlockCount)
	if len(cfg.Board.Blocks) > 0 {
		coords := make([]string, len(cfg.Board.Blocks))
		for i, c := range cfg.Board.Blocks {
			coords[i] = c.String()
		}
		fmt.Fprintf(&sb, "blocks: %s\n", strings.Join(coords, " "))
	}
	fmt.Fprintf(&sb, "s: %d\n", cfg.Board.WinLength)
	fmt.Fprintf(&sb, "t: %s\n", moveTimeLabel(cfg))
	fmt.Fprintf(&sb, "d1: %d\n", cfg.X.DepthLimit)
	fmt.Fprintf(&sb, "d2: %d\n", cfg.O.DepthLimit)
	for _, mark := range []game.PlayerMark{game.PlayerX, game.PlayerO} {
		side := cfg.Side(mark)
		fmt.Fprintf(&sb, "Player %s: %s\n", mark, strings.ToUpper(string(side.Kind)))
	}
	for _, mark := range []game.PlayerMark{game.PlayerX, game.PlayerO} {
		fmt.Fprintf(&sb, "Algo for %s: %s\n", mark, strings.ToUpper(cfg.Side(mark).Algorithm.String()))
	}
	for _, mark := range []game.PlayerMark{game.PlayerX, game.PlayerO} {
		fmt.Fprintf(&sb, "Player %s heuristic: %s\n", mark, cfg.Side(mark).Heuristic)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func moveTimeLabel(cfg Config) string {
	x, o := cfg.X.MoveTime, cfg.O.MoveTime
	if x == o {
		return fmt.Sprintf("%gs", x.Seconds())
	}
	return fmt.Sprintf("%gs/%gs", x.Seconds(), o.Seconds())
}

// TraceFileName is the per-configuration trace file name: gameTrace-<n><b><s><t>.txt.
func TraceFileName(cfg Config) string {
	return fmt.Sprintf("gameTrace-%d%d%d%d.txt", cfg.Board.Size, cfg.Board.BlockCount, cfg.Board.WinLength, int(cfg.X.MoveTime.Seconds()))
}

// WriteMove prints the statistics of one move.
func WriteMove(w io.Writer, m MoveStats) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Heuristic returned: %g\n", m.Score)
	fmt.Fprintf(&sb, "i. Evaluation time: %.7fs\n", m.Duration.Seconds())
	fmt.Fprintf(&sb, "i. Heuristic evaluation time: %.7fs\n", m.Search.EvalTime.Seconds())
	fmt.Fprintf(&sb, "ii. Number of states evaluated: %d\n", m.Search.StatesVisited)
	sb.WriteString("iii. Number of states evaluated per depth:\n")
	writeDepthCounts(&sb, m.Search.VisitedPerDepth)
	fmt.Fprintf(&sb, "iv. Average depths of heuristic evaluation: %g\n", m.Search.AverageLeafDepth())
	fmt.Fprintf(&sb, "v. ARD: %g\n", m.Search.ARD)
	if m.Search.TimedOut {
		fmt.Fprintf(&sb, "Search stopped by the clock at depth %d\n", m.Search.EffectiveDepth)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteGame prints the end-of-game summary.
func WriteGame(w io.Writer, g GameStatistics) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "i. Average evaluation time of heuristic: %.7fs\n", g.AverageEvalTime.Seconds())
	fmt.Fprintf(&sb, "ii. Total states evaluated: %d\n", g.StatesVisited)
	fmt.Fprintf(&sb, "iii. Average of average depths: %g\n", g.AverageLeafDepth)
	sb.WriteString("iv. Total number of states evaluated at each depth:\n")
	writeDepthCounts(&sb, g.VisitedPerDepth)
	fmt.Fprintf(&sb, "v. Average ARD: %g\n", g.AverageARD)
	fmt.Fprintf(&sb, "vi. Total Move Count: %d\n", g.MoveCount)
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteBatch prints the averaged statistics of a batch of games.
func WriteBatch(w io.Writer, b *BatchStatistics) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Games played: %d\n", b.Games)
	fmt.Fprintf(&sb, "i. Average of average evaluation time of heuristic: %.7fs\n", b.AverageEvalTime.Seconds())
	fmt.Fprintf(&sb, "ii. Average of total states evaluated: %g\n", b.AverageStatesVisited)
	fmt.Fprintf(&sb, "iii. Average of average of average depths: %g\n", b.AverageLeafDepth)
	sb.WriteString("iv. Average total number of states evaluated at each depth:\n")
	depths := make([]int, 0, len(b.AverageVisitedPerDepth))
	for d := range b.AverageVisitedPerDepth {
		depths = append(depths, d)
	}
	slices.Sort(depths)
	slices.Reverse(depths)
	for _, d := range depths {
		fmt.Fprintf(&sb, "\t%d: %g\n", d, b.AverageVisitedPerDepth[d])
	}
	fmt.Fprintf(&sb, "v. Average of average ARD: %g\n", b.AverageARD)
	fmt.Fprintf(&sb, "vi. Average total move count: %g\n", b.AverageMoveCount)
	fmt.Fprintf(&sb, "vii. Wins: X=%d O=%d ties=%d\n", b.Wins[game.PlayerX], b.Wins[game.PlayerO], b.Ties)

	var ratios []string
	for _, h := range []eval.Heuristic{eval.Material, eval.LinePotential} {
		ratios = append(ratios, fmt.Sprintf("%s=%.3f", h, b.HeuristicWinRatio(h)))
	}
	fmt.Fprintf(&sb, "viii. Heuristic win ratio: %s\n", strings.Join(ratios, " "))
	_, err := io.WriteString(w, sb.String())
	return err
}

// writeDepthCounts lists per-depth counts from the deepest level up.
func writeDepthCounts(sb *strings.Builder, counts map[int]int) {
	depths := make([]int, 0, len(counts))
	for d := range counts {
		depths = append(depths, d)
	}
	slices.Sort(depths)
	slices.Reverse(depths)
	for _, d := range depths {
		fmt.Fprintf(sb, "\t%d: %d\n", d, counts[d])
	}
}
