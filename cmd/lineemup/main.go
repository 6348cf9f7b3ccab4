package main

import (
	"context"
	"ctchen222/line-em-up/internal/api/repository"
	"ctchen222/line-em-up/internal/bot"
	"ctchen222/line-em-up/internal/config"
	"ctchen222/line-em-up/internal/db"
	"ctchen222/line-em-up/internal/logger"
	"ctchen222/line-em-up/internal/match"
	"ctchen222/line-em-up/internal/scoreboard"
	"ctchen222/line-em-up/internal/telemetry"
	"ctchen222/line-em-up/internal/ui/cli"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
)

var (
	flagConfig      = flag.String("config", "", "YAML configuration file. Defaults to line-em-up/config.yaml in the XDG config directories.")
	flagMode        = flag.String("mode", "play", "\"play\" a single game on the console or run the \"scoreboard\".")
	flagTraceDir    = flag.String("trace_dir", ".", "Directory for the game trace file. Empty disables the trace.")
	flagRounds      = flag.Int("rounds", 0, "Scoreboard rounds per heuristic assignment. Zero uses the configured value.")
	flagNoDB        = flag.Bool("no_db", false, "Do not store scoreboard results in SQLite.")
	flagShuffle     = flag.Bool("shuffle", false, "Explore candidate moves in random order.")
	flagSeed        = flag.Uint64("seed", 0, "Seed for random blocks and shuffling. Zero uses the clock.")
	flagWriteConfig = flag.String("write_config", "", "Write the effective configuration to this path (\"-\" for the XDG location) and exit.")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		slog.Error("line-em-up failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*flagConfig)
	if err != nil {
		return err
	}
	logger.Init(cfg.Log.Level)

	if *flagWriteConfig != "" {
		path := *flagWriteConfig
		if path == "-" {
			path = ""
		}
		written, err := cfg.Save(path)
		if err != nil {
			return err
		}
		fmt.Printf("Configuration written to %s\n", written)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.InitOtel(ctx, telemetry.Options{
		ServiceName:   cfg.Telemetry.ServiceName,
		CollectorAddr: cfg.Telemetry.CollectorAddr,
		StdoutTraces:  cfg.Telemetry.StdoutTraces,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			slog.Error("Error shutting down telemetry", "error", err)
		}
	}()

	seed := *flagSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1))

	metrics, err := telemetry.NewSearchMetrics(otel.Meter("line-em-up"))
	if err != nil {
		return err
	}
	engineOpts := []bot.Option{bot.WithMetrics(metrics)}
	if *flagShuffle {
		engineOpts = append(engineOpts, bot.WithShuffle(rand.New(rand.NewPCG(seed, seed))))
	}
	engine := bot.NewEngine(engineOpts...)

	mc, err := cfg.Match.ToMatchConfig()
	if err != nil {
		return err
	}
	if mc.Board, err = mc.Board.WithRandomBlocks(rng); err != nil {
		return err
	}

	switch *flagMode {
	case "play":
		return play(ctx, mc, engine)
	case "scoreboard":
		rounds := cfg.Scoreboard.Rounds
		if *flagRounds > 0 {
			rounds = *flagRounds
		}
		return runScoreboard(ctx, cfg, mc, engine, rounds)
	default:
		return fmt.Errorf("unknown mode %q", *flagMode)
	}
}

func play(ctx context.Context, mc match.Config, engine *bot.Engine) error {
	printer := cli.NewPrinter(os.Stdout)
	if *flagTraceDir != "" {
		var f *os.File
		var err error
		printer, f, err = cli.OpenTrace(os.Stdout, *flagTraceDir, mc)
		if err != nil {
			return err
		}
		defer f.Close()
	}

	ctrl, err := match.NewController(mc, engine,
		match.WithMoveSource(cli.NewStdinSource(os.Stdin, os.Stdout)),
		match.WithReporter(printer),
	)
	if err != nil {
		return err
	}
	_, err = ctrl.Play(ctx)
	if errors.Is(err, context.Canceled) {
		slog.Info("Game interrupted")
		return nil
	}
	return err
}

func runScoreboard(ctx context.Context, cfg *config.Config, mc match.Config, engine *bot.Engine, rounds int) error {
	var opts []scoreboard.Option
	if !*flagNoDB {
		pool, err := db.Connect(ctx, cfg.Server.DBPath)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := db.InitializeDB(ctx, pool); err != nil {
			return err
		}
		opts = append(opts, scoreboard.WithStore(repository.NewResultRepository(pool)))
	}

	rep, err := scoreboard.NewRunner(engine, opts...).Run(ctx, mc, rounds)
	if err != nil {
		return err
	}

	out, err := os.Create(cfg.Scoreboard.Output)
	if err != nil {
		return fmt.Errorf("failed to create scoreboard file: %w", err)
	}
	defer out.Close()
	if err := scoreboard.WriteReport(io.MultiWriter(os.Stdout, out), rep); err != nil {
		return err
	}
	slog.Info("Scoreboard finished", "batch.id", rep.BatchID, "games", rep.Stats.Games, "output", cfg.Scoreboard.Output)
	return nil
}
