package config

import (
	"ctchen222/line-em-up/internal/bot"
	"ctchen222/line-em-up/internal/eval"
	"ctchen222/line-em-up/internal/game"
	"ctchen222/line-em-up/internal/match"
	"ctchen222/line-em-up/internal/validator"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

var cfgFile = "line-em-up/config.yaml"

// Environment variables that override file settings.
const (
	EnvRedisAddr     = "REDIS_CONNSTRING"
	EnvDBPath        = "LINEEMUP_DB_PATH"
	EnvCollectorAddr = "OTEL_COLLECTOR_ADDR"
	EnvJWTSecret     = "LINEEMUP_JWT_SECRET"
	EnvLogLevel      = "LINEEMUP_LOG_LEVEL"
)

type InvalidConfig struct {
	err string
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("config error: %s", e.err)
}

type BoardConfig struct {
	Size       int          `yaml:"size" validate:"min=3,max=10"`
	WinLength  int          `yaml:"win_length" validate:"min=1,ltefield=Size"`
	BlockCount int          `yaml:"block_count" validate:"min=0"`
	Blocks     []game.Coord `yaml:"blocks,omitempty"`
}

type SideConfig struct {
	Kind       string        `yaml:"kind" validate:"oneof=human ai"`
	Algorithm  string        `yaml:"algorithm" validate:"oneof=minimax alphabeta"`
	Heuristic  string        `yaml:"heuristic" validate:"oneof=material line_potential"`
	DepthLimit int           `yaml:"depth_limit" validate:"min=1,max=12"`
	MoveTime   time.Duration `yaml:"move_time" validate:"gte=0"`
}

type MatchConfig struct {
	Board     BoardConfig `yaml:"board"`
	X         SideConfig  `yaml:"x"`
	O         SideConfig  `yaml:"o"`
	Recommend bool        `yaml:"recommend"`
}

type ScoreboardConfig struct {
	// Rounds is played once per heuristic assignment, so a run plays twice as many games.
	Rounds int    `yaml:"rounds" validate:"min=1"`
	Output string `yaml:"output" validate:"required"`
}

type ServerConfig struct {
	Addr      string        `yaml:"addr" validate:"required"`
	RedisAddr string        `yaml:"redis_addr" validate:"required"`
	DBPath    string        `yaml:"db_path" validate:"required"`
	JWTSecret string        `yaml:"jwt_secret" validate:"required,min=16"`
	SeatTTL   time.Duration `yaml:"seat_ttl" validate:"gt=0"`
}

type TelemetryConfig struct {
	ServiceName   string `yaml:"service_name" validate:"required"`
	CollectorAddr string `yaml:"collector_addr"`
	StdoutTraces  bool   `yaml:"stdout_traces"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

type Config struct {
	Match      MatchConfig      `yaml:"match"`
	Scoreboard ScoreboardConfig `yaml:"scoreboard"`
	Server     ServerConfig     `yaml:"server"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Log        LogConfig        `yaml:"log"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	side := SideConfig{
		Kind:       string(match.AI),
		Algorithm:  bot.AlphaBeta.String(),
		DepthLimit: 4,
		MoveTime:   5 * time.Second,
	}
	x, o := side, side
	x.Heuristic = eval.Material.String()
	o.Heuristic = eval.LinePotential.String()

	return Config{
		Match: MatchConfig{
			Board: BoardConfig{Size: 4, WinLength: 3},
			X:     x,
			O:     o,
		},
		Scoreboard: ScoreboardConfig{Rounds: 5, Output: "scoreboard.txt"},
		Server: ServerConfig{
			Addr:      ":8080",
			RedisAddr: "localhost:6379",
			DBPath:    "./results.db",
			JWTSecret: "change-me-please-0123456789",
			SeatTTL:   24 * time.Hour,
		},
		Telemetry: TelemetryConfig{ServiceName: "line-em-up"},
		Log:       LogConfig{Level: "info"},
	}
}

// Load reads the YAML file at path, or the one found in the XDG config directories when path is empty,
// applies environment overrides and validates the result. A missing XDG file means defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		if found, err := xdg.SearchConfigFile(cfgFile); err == nil {
			path = found
		}
	}
	if path != "" {
		if err := readCfgFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Server.RedisAddr = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Server.DBPath = v
	}
	if v := os.Getenv(EnvCollectorAddr); v != "" {
		c.Telemetry.CollectorAddr = v
	}
	if v := os.Getenv(EnvJWTSecret); v != "" {
		c.Server.JWTSecret = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// Validate checks field ranges and that the match section converts to a playable match.
func (c *Config) Validate() error {
	if err := validator.GetValidator().Struct(c); err != nil {
		return &InvalidConfig{validator.Describe(err)}
	}
	mc, err := c.Match.ToMatchConfig()
	if err != nil {
		return &InvalidConfig{err.Error()}
	}
	settings, err := mc.Board.WithRandomBlocks(rand.New(rand.NewPCG(1, 1)))
	if err == nil {
		_, err = game.NewBoard(settings)
	}
	if err != nil {
		return &InvalidConfig{err.Error()}
	}
	return nil
}

// ToMatchConfig converts the string settings into a match.Config. A block count without coordinates is
// left for the caller to fill with game.Settings.WithRandomBlocks.
func (m MatchConfig) ToMatchConfig() (match.Config, error) {
	x, err := m.X.toSide()
	if err != nil {
		return match.Config{}, fmt.Errorf("x: %w", err)
	}
	o, err := m.O.toSide()
	if err != nil {
		return match.Config{}, fmt.Errorf("o: %w", err)
	}
	return match.Config{
		Board: game.Settings{
			Size:       m.Board.Size,
			WinLength:  m.Board.WinLength,
			BlockCount: m.Board.BlockCount,
			Blocks:     m.Board.Blocks,
		},
		X:         x,
		O:         o,
		Recommend: m.Recommend,
	}, nil
}

func (s SideConfig) toSide() (match.SideConfig, error) {
	kind, err := match.ParsePlayerKind(s.Kind)
	if err != nil {
		return match.SideConfig{}, err
	}
	algo, err := bot.ParseAlgorithm(s.Algorithm)
	if err != nil {
		return match.SideConfig{}, err
	}
	h, err := eval.ParseHeuristic(s.Heuristic)
	if err != nil {
		return match.SideConfig{}, err
	}
	return match.SideConfig{
		Kind:       kind,
		Algorithm:  algo,
		Heuristic:  h,
		DepthLimit: s.DepthLimit,
		MoveTime:   s.MoveTime,
	}, nil
}

// Save writes the configuration as YAML to path, or to the XDG config file when path is empty.
func (c *Config) Save(path string) (string, error) {
	if path == "" {
		var err error
		if path, err = xdg.ConfigFile(cfgFile); err != nil {
			return "", fmt.Errorf("failed to resolve config path: %w", err)
		}
	}
	if err := saveCfgFile(path, c, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func saveCfgFile(filePath string, v any, perm fs.FileMode) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(filePath, data, perm)
}

func readCfgFile(filePath string, v any) error {
	data, err := os.ReadFile(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config file %s does not exist", filePath)
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return &InvalidConfig{fmt.Sprintf("%s: %v", filePath, err)}
	}
	return nil
}
