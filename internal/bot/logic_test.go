package bot

import (
	"context"
	"ctchen222/line-em-up/internal/eval"
	"ctchen222/line-em-up/internal/game"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBoard(t *testing.T, winLength int, rows ...string) *game.Board {
	t.Helper()
	b, err := game.FromRows(winLength, rows...)
	require.NoError(t, err)
	return b
}

// steppingClock advances by step on every call.
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestMinimaxAndAlphaBetaAgree(t *testing.T) {
	positions := []struct {
		name      string
		winLength int
		rows      []string
		mark      game.PlayerMark
	}{
		{"Empty 3x3", 3, []string{"...", "...", "..."}, game.PlayerX},
		{"Opening reply", 3, []string{"...", ".X.", "..."}, game.PlayerO},
		{"Midgame", 3, []string{"X.O", ".X.", "..."}, game.PlayerO},
		{"Blocked 4x4", 3, []string{"X..#", ".O..", "..#.", "...."}, game.PlayerX},
		{"Win length two", 2, []string{"....", ".X..", "..O.", "...."}, game.PlayerX},
	}

	engine := NewEngine()
	for _, pos := range positions {
		for _, h := range []eval.Heuristic{eval.Material, eval.LinePotential} {
			for depth := 1; depth <= 4; depth++ {
				b := mustBoard(t, pos.winLength, pos.rows...)
				req := Request{Heuristic: h, DepthLimit: depth, Mark: pos.mark}

				req.Algorithm = Minimax
				mm := engine.Search(context.Background(), b, req)
				req.Algorithm = AlphaBeta
				ab := engine.Search(context.Background(), b, req)

				require.Truef(t, mm.HasMove, "%s/%s/d=%d", pos.name, h, depth)
				assert.Equalf(t, mm.Score, ab.Score, "%s/%s/d=%d score", pos.name, h, depth)
				assert.Equalf(t, mm.Move, ab.Move, "%s/%s/d=%d move", pos.name, h, depth)
				assert.LessOrEqualf(t, ab.Stats.StatesVisited, mm.Stats.StatesVisited, "%s/%s/d=%d states", pos.name, h, depth)
			}
		}
	}
}

func TestSelfPlayOnThreeByThreeTies(t *testing.T) {
	if testing.Short() {
		t.Skip("full-depth self play")
	}
	b := mustBoard(t, 3, "...", "...", "...")
	engine := NewEngine()

	mark := game.PlayerX
	for !b.TerminalState().Over() {
		out := engine.Search(context.Background(), b, Request{
			Algorithm:  AlphaBeta,
			Heuristic:  eval.LinePotential,
			DepthLimit: 9,
			Mark:       mark,
		})
		require.True(t, out.HasMove)
		require.NoError(t, b.Play(out.Move.Row, out.Move.Col, mark))
		mark = game.Opponent(mark)
	}
	assert.Equal(t, game.Result{Status: game.Tie}, b.TerminalState(), "final board:\n%s", b)
}

func TestSearchBlocksImmediateThreat(t *testing.T) {
	for _, algo := range []Algorithm{Minimax, AlphaBeta} {
		for _, depth := range []int{2, 3, 4} {
			b := mustBoard(t, 3, "XX.", ".O.", "...")
			out := NewEngine().Search(context.Background(), b, Request{
				Algorithm:  algo,
				Heuristic:  eval.LinePotential,
				DepthLimit: depth,
				Mark:       game.PlayerO,
			})
			require.True(t, out.HasMove)
			assert.Equalf(t, game.Coord{Row: 0, Col: 2}, out.Move, "%s depth %d", algo, depth)
		}
	}
}

func TestSearchTakesImmediateWin(t *testing.T) {
	for _, depth := range []int{1, 3} {
		b := mustBoard(t, 3, "OO.", "XX.", "X..")
		out := NewEngine().Search(context.Background(), b, Request{
			Algorithm:  AlphaBeta,
			Heuristic:  eval.LinePotential,
			DepthLimit: depth,
			Mark:       game.PlayerO,
		})
		require.True(t, out.HasMove)
		assert.Equal(t, game.Coord{Row: 0, Col: 2}, out.Move)
		assert.Equal(t, eval.WinScore(b)/2, out.Score)
	}
}

func TestSearchPrefersCentreAtDepthOne(t *testing.T) {
	b := mustBoard(t, 3, "...", "...", "...")
	engine := NewEngine()

	x := engine.Search(context.Background(), b, Request{Heuristic: eval.LinePotential, DepthLimit: 1, Mark: game.PlayerX})
	assert.Equal(t, game.Coord{Row: 1, Col: 1}, x.Move)
	assert.Equal(t, -4.0, x.Score)

	o := engine.Search(context.Background(), b, Request{Heuristic: eval.LinePotential, DepthLimit: 1, Mark: game.PlayerO})
	assert.Equal(t, game.Coord{Row: 1, Col: 1}, o.Move)
	assert.Equal(t, 4.0, o.Score)
}

func TestElapsedDeadlineStillReturnsMove(t *testing.T) {
	for _, algo := range []Algorithm{Minimax, AlphaBeta} {
		b := mustBoard(t, 3, "...", "...", "...")
		out := NewEngine().Search(context.Background(), b, Request{
			Algorithm:  algo,
			Heuristic:  eval.LinePotential,
			DepthLimit: 9,
			Deadline:   time.Now().Add(-time.Second),
			Mark:       game.PlayerX,
		})
		require.True(t, out.HasMove)
		assert.True(t, b.IsLegalMove(out.Move.Row, out.Move.Col))
		assert.True(t, out.Stats.TimedOut)
		assert.Equal(t, 1, out.Stats.EffectiveDepth)
		assert.Equal(t, 1, out.Stats.StatesVisited)
		assert.Equal(t, game.Coord{Row: 0, Col: 0}, out.Move)
	}
}

func TestCancelledContextActsAsDeadline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := mustBoard(t, 3, "...", "...", "...")
	out := NewEngine().Search(ctx, b, Request{Algorithm: Minimax, Heuristic: eval.Material, DepthLimit: 9, Mark: game.PlayerO})
	require.True(t, out.HasMove)
	assert.True(t, out.Stats.TimedOut)
	assert.Equal(t, 1, out.Stats.StatesVisited)
}

func TestDeadlineReachedMidSearch(t *testing.T) {
	start := time.Now()
	engine := NewEngine(WithClock(steppingClock(start, time.Millisecond)))

	b := mustBoard(t, 3, "...", "...", "...")
	before := b.String()
	out := engine.Search(context.Background(), b, Request{
		Algorithm:  Minimax,
		Heuristic:  eval.LinePotential,
		DepthLimit: 9,
		Deadline:   start.Add(40 * time.Millisecond),
		Mark:       game.PlayerX,
	})

	require.True(t, out.HasMove)
	assert.True(t, out.Stats.TimedOut)
	assert.Greater(t, out.Stats.EffectiveDepth, 1)
	assert.Equal(t, before, b.String(), "board must be restored after a timed out search")
	assert.True(t, b.IsLegalMove(out.Move.Row, out.Move.Col))
}

func TestSearchRestoresBoard(t *testing.T) {
	rows := []string{"X..#", ".O..", "....", "#..."}
	for _, algo := range []Algorithm{Minimax, AlphaBeta} {
		for _, h := range []eval.Heuristic{eval.Material, eval.LinePotential} {
			b := mustBoard(t, 3, rows...)
			before := b.String()
			out := NewEngine().Search(context.Background(), b, Request{Algorithm: algo, Heuristic: h, DepthLimit: 3, Mark: game.PlayerX})
			require.True(t, out.HasMove)
			assert.Equal(t, before, b.String())
		}
	}
}

func TestSearchWithoutLegalMove(t *testing.T) {
	boards := map[string][]string{
		"Full board":  {"XOX", "XOO", "OXX"},
		"Already won": {"XXX", "OO.", "..."},
		"Only blocks": {"##", "##"},
	}
	for name, rows := range boards {
		t.Run(name, func(t *testing.T) {
			winLength := 3
			if len(rows) == 2 {
				winLength = 2
			}
			b := mustBoard(t, winLength, rows...)
			out := NewEngine().Search(context.Background(), b, Request{Algorithm: AlphaBeta, Heuristic: eval.LinePotential, DepthLimit: 3, Mark: game.PlayerO})
			assert.False(t, out.HasMove)
			assert.Zero(t, out.Stats.StatesVisited)
		})
	}
}

func TestCountersAreConsistent(t *testing.T) {
	b := mustBoard(t, 3, "...", "...", "...")
	out := NewEngine().Search(context.Background(), b, Request{Algorithm: Minimax, Heuristic: eval.Material, DepthLimit: 2, Mark: game.PlayerX})

	assert.Equal(t, 81, out.Stats.StatesVisited)
	assert.Equal(t, map[int]int{1: 9, 2: 72}, out.Stats.VisitedPerDepth)
	assert.Equal(t, 2, out.Stats.MaxDepthReached)
	assert.Equal(t, 72, out.Stats.Leaves)
	assert.Equal(t, 2.0, out.Stats.AverageLeafDepth())
	assert.Equal(t, 2.0, out.Stats.ARD)
	assert.False(t, out.Stats.TimedOut)

	for _, algo := range []Algorithm{Minimax, AlphaBeta} {
		b := mustBoard(t, 3, "X.O", ".X.", "...")
		out := NewEngine().Search(context.Background(), b, Request{Algorithm: algo, Heuristic: eval.LinePotential, DepthLimit: 5, Mark: game.PlayerO})
		total, deepest := 0, 0
		for depth, n := range out.Stats.VisitedPerDepth {
			total += n
			deepest = max(deepest, depth)
		}
		assert.Equal(t, out.Stats.StatesVisited, total)
		assert.Equal(t, out.Stats.MaxDepthReached, deepest)
		assert.LessOrEqual(t, out.Stats.Leaves, out.Stats.StatesVisited)
		assert.Greater(t, out.Stats.ARD, 0.0)
		assert.LessOrEqual(t, out.Stats.ARD, float64(out.Stats.MaxDepthReached))
	}
}

func TestShuffledSearchKeepsValue(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	shuffled := NewEngine(WithShuffle(rng))
	plain := NewEngine()

	for i := 0; i < 5; i++ {
		b := mustBoard(t, 3, "X..", ".O.", "...")
		req := Request{Algorithm: AlphaBeta, Heuristic: eval.LinePotential, DepthLimit: 4, Mark: game.PlayerX}
		got := shuffled.Search(context.Background(), b, req)
		want := plain.Search(context.Background(), b, req)
		require.True(t, got.HasMove)
		assert.Equal(t, want.Score, got.Score)
		assert.True(t, b.IsLegalMove(got.Move.Row, got.Move.Col))
	}
}

func TestParseAlgorithm(t *testing.T) {
	got, err := ParseAlgorithm("Alpha-Beta")
	require.NoError(t, err)
	assert.Equal(t, AlphaBeta, got)

	got, err = ParseAlgorithm("minimax")
	require.NoError(t, err)
	assert.Equal(t, Minimax, got)

	_, err = ParseAlgorithm("mcts")
	assert.Error(t, err)
}
