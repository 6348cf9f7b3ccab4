package config

import (
	"ctchen222/line-em-up/internal/bot"
	"ctchen222/line-em-up/internal/eval"
	"ctchen222/line-em-up/internal/game"
	"ctchen222/line-em-up/internal/match"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	mc, err := cfg.Match.ToMatchConfig()
	require.NoError(t, err)
	assert.Equal(t, eval.Material, mc.X.Heuristic)
	assert.Equal(t, eval.LinePotential, mc.O.Heuristic)
	assert.Equal(t, bot.AlphaBeta, mc.X.Algorithm)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeFile(t, `
match:
  board:
    size: 5
    win_length: 4
    block_count: 2
    blocks:
      - {row: 0, col: 0}
      - {row: 4, col: 4}
  x:
    kind: human
    algorithm: minimax
    heuristic: line_potential
    depth_limit: 3
    move_time: 1500ms
  recommend: true
scoreboard:
  rounds: 2
`)
	t.Setenv(EnvRedisAddr, "redis:6380")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "redis:6380", cfg.Server.RedisAddr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 2, cfg.Scoreboard.Rounds)
	assert.Equal(t, "scoreboard.txt", cfg.Scoreboard.Output, "unset keys keep defaults")

	mc, err := cfg.Match.ToMatchConfig()
	require.NoError(t, err)
	assert.Equal(t, game.Settings{Size: 5, WinLength: 4, BlockCount: 2, Blocks: []game.Coord{{Row: 0, Col: 0}, {Row: 4, Col: 4}}}, mc.Board)
	assert.Equal(t, match.SideConfig{Kind: match.Human, Algorithm: bot.Minimax, Heuristic: eval.LinePotential, DepthLimit: 3, MoveTime: 1500 * time.Millisecond}, mc.X)
	assert.Equal(t, match.AI, mc.O.Kind)
	assert.True(t, mc.Recommend)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"board too big", "match:\n  board:\n    size: 11\n    win_length: 3\n"},
		{"board too small", "match:\n  board:\n    size: 2\n    win_length: 2\n"},
		{"win length above size", "match:\n  board:\n    size: 3\n    win_length: 4\n"},
		{"unknown heuristic", "match:\n  x:\n    heuristic: mobility\n"},
		{"zero depth", "match:\n  o:\n    depth_limit: 0\n"},
		{"too many blocks", "match:\n  board:\n    size: 3\n    win_length: 3\n    block_count: 10\n"},
		{"not yaml", "match: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.yaml))
			var invalid *InvalidConfig
			assert.ErrorAs(t, err, &invalid)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Match.Board.Size = 6
	path, err := cfg.Save(filepath.Join(t.TempDir(), "nested", "config.yaml"))
	require.NoError(t, err)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, loaded.Match.Board.Size)
	assert.Equal(t, 5*time.Second, loaded.Match.X.MoveTime)
}
