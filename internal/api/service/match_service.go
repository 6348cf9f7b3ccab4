package service

//go:generate mockgen -source=match_service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"ctchen222/line-em-up/internal/api/models"
	"ctchen222/line-em-up/internal/bot"
	"ctchen222/line-em-up/internal/eval"
	"ctchen222/line-em-up/internal/game"
	"ctchen222/line-em-up/internal/hub"
	"ctchen222/line-em-up/internal/match"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

var (
	ErrInvalidRequest = errors.New("invalid match request")
	ErrNotFound       = errors.New("not found")
)

const defaultDepthLimit = 4

// MatchHost runs matches. *hub.Hub is the production implementation.
type MatchHost interface {
	CreateMatch(ctx context.Context, cfg match.Config) (string, map[game.PlayerMark]string, error)
	Snapshot(ctx context.Context, id string) (match.Snapshot, error)
	Statistics(id string) (match.GameStatistics, error)
}

// ResultReader reads finished games and scoreboard batches.
type ResultReader interface {
	ListGames(ctx context.Context, batchID string, limit int) ([]models.GameResult, error)
	ListBatches(ctx context.Context, limit int) ([]models.BatchResult, error)
	DepthCounts(ctx context.Context, gameID string) (map[int]int, error)
}

// MatchService defines the interface for match-related business logic.
type MatchService interface {
	CreateMatch(ctx context.Context, req *models.CreateMatchRequest) (*models.CreateMatchResponse, error)
	GetMatch(ctx context.Context, id string) (match.Snapshot, error)
	GetStatistics(ctx context.Context, id string) (match.GameStatistics, error)
	ListGames(ctx context.Context, batchID string, limit int) ([]models.GameResult, error)
	ListBatches(ctx context.Context, limit int) ([]models.BatchResult, error)
}

type matchService struct {
	host    MatchHost
	results ResultReader

	mu  sync.Mutex
	rng *rand.Rand
}

// NewMatchService creates a new MatchService. results may be nil when no database is configured.
func NewMatchService(host MatchHost, results ResultReader) MatchService {
	return &matchService{
		host:    host,
		results: results,
		rng:     rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}
}

func (s *matchService) CreateMatch(ctx context.Context, req *models.CreateMatchRequest) (*models.CreateMatchResponse, error) {
	cfg, err := s.toConfig(req)
	if err != nil {
		return nil, err
	}
	id, tokens, err := s.host.CreateMatch(ctx, cfg)
	if errors.Is(err, match.ErrInvalidConfig) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err != nil {
		return nil, err
	}

	resp := &models.CreateMatchResponse{MatchID: id, Seats: make(map[string]string, len(tokens))}
	for mark, token := range tokens {
		resp.Seats[string(mark)] = token
	}
	return resp, nil
}

func (s *matchService) GetMatch(ctx context.Context, id string) (match.Snapshot, error) {
	snap, err := s.host.Snapshot(ctx, id)
	if errors.Is(err, hub.ErrMatchNotFound) {
		return match.Snapshot{}, fmt.Errorf("%w: match %s", ErrNotFound, id)
	}
	return snap, err
}

func (s *matchService) GetStatistics(ctx context.Context, id string) (match.GameStatistics, error) {
	stats, err := s.host.Statistics(id)
	if errors.Is(err, hub.ErrMatchNotFound) {
		return match.GameStatistics{}, fmt.Errorf("%w: match %s", ErrNotFound, id)
	}
	return stats, err
}

// ListGames returns stored games, newest first, with their per-depth state counts.
func (s *matchService) ListGames(ctx context.Context, batchID string, limit int) ([]models.GameResult, error) {
	if s.results == nil {
		return nil, nil
	}
	games, err := s.results.ListGames(ctx, batchID, limit)
	if err != nil {
		return nil, err
	}
	for i := range games {
		if games[i].VisitedPerDepth, err = s.results.DepthCounts(ctx, games[i].ID); err != nil {
			return nil, err
		}
	}
	return games, nil
}

func (s *matchService) ListBatches(ctx context.Context, limit int) ([]models.BatchResult, error) {
	if s.results == nil {
		return nil, nil
	}
	return s.results.ListBatches(ctx, limit)
}

func (s *matchService) toConfig(req *models.CreateMatchRequest) (match.Config, error) {
	x, err := toSide(req.X, eval.Material)
	if err != nil {
		return match.Config{}, fmt.Errorf("%w: x: %w", ErrInvalidRequest, err)
	}
	o, err := toSide(req.O, eval.LinePotential)
	if err != nil {
		return match.Config{}, fmt.Errorf("%w: o: %w", ErrInvalidRequest, err)
	}

	settings := game.Settings{Size: req.Size, WinLength: req.WinLength, BlockCount: req.BlockCount, Blocks: req.Blocks}
	if settings.BlockCount == 0 {
		settings.BlockCount = len(settings.Blocks)
	}
	s.mu.Lock()
	settings, err = settings.WithRandomBlocks(s.rng)
	s.mu.Unlock()
	if err == nil {
		_, err = game.NewBoard(settings)
	}
	if err != nil {
		return match.Config{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	return match.Config{Board: settings, X: x, O: o, Recommend: req.Recommend}, nil
}

func toSide(req models.SideRequest, heuristic eval.Heuristic) (match.SideConfig, error) {
	kind, err := match.ParsePlayerKind(req.Kind)
	if err != nil {
		return match.SideConfig{}, err
	}
	side := match.SideConfig{
		Kind:       kind,
		Algorithm:  bot.AlphaBeta,
		Heuristic:  heuristic,
		DepthLimit: defaultDepthLimit,
		MoveTime:   time.Duration(req.MoveTimeMs) * time.Millisecond,
	}
	if req.Algorithm != "" {
		if side.Algorithm, err = bot.ParseAlgorithm(req.Algorithm); err != nil {
			return match.SideConfig{}, err
		}
	}
	if req.Heuristic != "" {
		if side.Heuristic, err = eval.ParseHeuristic(req.Heuristic); err != nil {
			return match.SideConfig{}, err
		}
	}
	if req.DepthLimit > 0 {
		side.DepthLimit = req.DepthLimit
	}
	return side, nil
}
