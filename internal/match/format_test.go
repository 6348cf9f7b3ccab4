package match

import (
	"bytes"
	"ctchen222/line-em-up/internal/bot"
	"ctchen222/line-em-up/internal/eval"
	"ctchen222/line-em-up/internal/game"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteConfig(t *testing.T) {
	cfg := Config{
		Board: game.Settings{Size: 4, WinLength: 3, BlockCount: 1, Blocks: []game.Coord{{Row: 0, Col: 3}}},
		X:     SideConfig{Kind: AI, Algorithm: bot.AlphaBeta, Heuristic: eval.Material, DepthLimit: 7, MoveTime: 5 * time.Second},
		O:     SideConfig{Kind: Human, Algorithm: bot.Minimax, Heuristic: eval.LinePotential, DepthLimit: 8, MoveTime: 5 * time.Second},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteConfig(&buf, cfg))
	want := "n: 4\nb: 1\nblocks: (0, 3)\ns: 3\nt: 5s\nd1: 7\nd2: 8\n" +
		"Player X: AI\nPlayer O: HUMAN\n" +
		"Algo for X: ALPHABETA\nAlgo for O: MINIMAX\n" +
		"Player X heuristic: material\nPlayer O heuristic: line_potential\n"
	assert.Equal(t, want, buf.String())
	assert.Equal(t, "gameTrace-4135.txt", TraceFileName(cfg))

	cfg.O.MoveTime = 500 * time.Millisecond
	buf.Reset()
	require.NoError(t, WriteConfig(&buf, cfg))
	assert.Contains(t, buf.String(), "t: 5s/0.5s\n")
}

func TestWriteMoveListsDeepestFirst(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMove(&buf, MoveStats{
		Score: -4,
		Search: bot.Stats{
			StatesVisited:   81,
			VisitedPerDepth: map[int]int{1: 9, 2: 72},
			Leaves:          72,
			LeafDepthSum:    144,
			ARD:             2,
			TimedOut:        true,
			EffectiveDepth:  2,
		},
	}))
	out := buf.String()
	assert.Contains(t, out, "Heuristic returned: -4\n")
	assert.Contains(t, out, "ii. Number of states evaluated: 81\n")
	assert.Contains(t, out, "\t2: 72\n\t1: 9\n")
	assert.Contains(t, out, "iv. Average depths of heuristic evaluation: 2\n")
	assert.Contains(t, out, "stopped by the clock at depth 2")
}

func TestWriteGameAndBatch(t *testing.T) {
	g := NewGameStatistics(Config{X: SideConfig{Heuristic: eval.Material}, O: SideConfig{Heuristic: eval.LinePotential}})
	g.Add(MoveStats{Search: bot.Stats{StatesVisited: 10, VisitedPerDepth: map[int]int{1: 4, 2: 6}, Leaves: 6, LeafDepthSum: 12, ARD: 2}})
	g.Conclude(game.Result{Status: game.Win, Winner: game.PlayerO})

	var buf bytes.Buffer
	require.NoError(t, WriteGame(&buf, g))
	assert.Contains(t, buf.String(), "ii. Total states evaluated: 10\n")
	assert.Contains(t, buf.String(), "vi. Total Move Count: 1\n")

	b := NewBatchStatistics()
	b.Fold(g)
	buf.Reset()
	require.NoError(t, WriteBatch(&buf, b))
	assert.Contains(t, buf.String(), "Games played: 1\n")
	assert.Contains(t, buf.String(), "\t2: 6\n\t1: 4\n")
	assert.Contains(t, buf.String(), "vii. Wins: X=0 O=1 ties=0\n")
	assert.Contains(t, buf.String(), "viii. Heuristic win ratio: material=0.000 line_potential=1.000\n")
}
