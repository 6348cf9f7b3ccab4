package main

import (
	"context"
	"ctchen222/line-em-up/internal/api/controller"
	apirepository "ctchen222/line-em-up/internal/api/repository"
	"ctchen222/line-em-up/internal/api/service"
	"ctchen222/line-em-up/internal/bot"
	"ctchen222/line-em-up/internal/config"
	"ctchen222/line-em-up/internal/db"
	"ctchen222/line-em-up/internal/hub"
	"ctchen222/line-em-up/internal/logger"
	"ctchen222/line-em-up/internal/repository"
	"ctchen222/line-em-up/internal/server"
	"ctchen222/line-em-up/internal/telemetry"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

var flagConfig = flag.String("config", "", "YAML configuration file. Defaults to line-em-up/config.yaml in the XDG config directories.")

func main() {
	flag.Parse()
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*flagConfig)
	if err != nil {
		return err
	}
	logger.Init(cfg.Log.Level)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, telemetry.Options{
		ServiceName:   cfg.Telemetry.ServiceName,
		CollectorAddr: cfg.Telemetry.CollectorAddr,
		StdoutTraces:  cfg.Telemetry.StdoutTraces,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			slog.Error("Error shutting down telemetry", "error", err)
		}
	}()

	// Initialize Redis
	rdb, err := db.NewRedisClient(ctx, cfg.Server.RedisAddr)
	if err != nil {
		return err
	}
	defer rdb.Close()

	// Initialize SQLite DB
	pool, err := db.Connect(ctx, cfg.Server.DBPath)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := db.InitializeDB(ctx, pool); err != nil {
		return err
	}

	// Create repositories
	gameRepo := repository.NewGameRepository(rdb)
	seatRepo := repository.NewSeatRepository(rdb)
	resultRepo := apirepository.NewResultRepository(pool)

	metrics, err := telemetry.NewSearchMetrics(otel.Meter("line-em-up"))
	if err != nil {
		return err
	}

	// Create hub
	h := hub.NewHub(
		bot.NewEngine(bot.WithMetrics(metrics)),
		hub.NewSeatIssuer(cfg.Server.JWTSecret, cfg.Server.SeatTTL),
		hub.WithGameRepository(gameRepo),
		hub.WithSeatRepository(seatRepo),
		hub.WithResultStore(resultRepo),
	)

	// Create services and controllers
	matchController := controller.NewMatchController(service.NewMatchService(h, resultRepo))
	srv := server.NewServer(h, matchController)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return h.Run(gctx)
	})
	g.Go(func() error {
		slog.Info("http server started", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("Server exiting")
	return nil
}
