package hub

import (
	"context"
	"ctchen222/line-em-up/internal/api/models"
	"ctchen222/line-em-up/internal/game"
	"ctchen222/line-em-up/internal/hub/types"
	"ctchen222/line-em-up/internal/match"
	"ctchen222/line-em-up/internal/player"
	"ctchen222/line-em-up/internal/repository"
	"ctchen222/line-em-up/internal/room"
	"ctchen222/line-em-up/pkg/proto"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("hub")

var (
	ErrMatchNotFound = errors.New("match not found")
	ErrShuttingDown  = errors.New("hub is shutting down")
)

const (
	defaultMoveTimeout = 5 * time.Minute
	defaultRetention   = 10 * time.Minute
)

// ResultStore keeps the statistics of finished games.
type ResultStore interface {
	SaveGame(ctx context.Context, r *models.GameResult) error
}

// Hub hosts the matches of this server and attaches websocket clients to them. Matches hosted elsewhere
// can still be watched when a game repository is configured.
type Hub struct {
	calc        match.MoveCalculator
	issuer      *SeatIssuer
	store       repository.GameRepository
	seats       repository.SeatRepository
	results     ResultStore
	moveTimeout time.Duration
	retention   time.Duration

	register chan *types.RegistrationRequest
	leave    chan *player.Player

	mu       sync.RWMutex
	sessions map[string]*session
	remote   map[string]*room.Room

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Option func(*Hub)

// WithGameRepository publishes snapshots to Redis and lets spectators follow matches hosted elsewhere.
func WithGameRepository(r repository.GameRepository) Option {
	return func(h *Hub) { h.store = r }
}

// WithSeatRepository records seat ownership and connection status.
func WithSeatRepository(r repository.SeatRepository) Option {
	return func(h *Hub) { h.seats = r }
}

// WithResultStore saves every finished game.
func WithResultStore(s ResultStore) Option {
	return func(h *Hub) { h.results = s }
}

// WithMoveTimeout bounds how long a human side may think before the match is abandoned.
func WithMoveTimeout(d time.Duration) Option {
	return func(h *Hub) { h.moveTimeout = d }
}

// WithRetention is how long a finished match stays queryable in memory.
func WithRetention(d time.Duration) Option {
	return func(h *Hub) { h.retention = d }
}

// NewHub creates a new hub.
func NewHub(calc match.MoveCalculator, issuer *SeatIssuer, opts ...Option) *Hub {
	h := &Hub{
		calc:        calc,
		issuer:      issuer,
		moveTimeout: defaultMoveTimeout,
		retention:   defaultRetention,
		register:    make(chan *types.RegistrationRequest),
		leave:       make(chan *player.Player),
		sessions:    make(map[string]*session),
		remote:      make(map[string]*room.Room),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.ctx, h.cancel = context.WithCancel(context.Background())
	return h
}

// Run processes registrations until ctx is done, then stops every match and waits for them.
func (h *Hub) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Hub started")
	for {
		select {
		case <-ctx.Done():
			h.shutdown(context.WithoutCancel(ctx))
			return nil
		case req := <-h.register:
			h.handleRegistration(req)
		case p := <-h.leave:
			h.handleLeave(ctx, p)
		}
	}
}

// Join hands a connected client to the hub.
func (h *Hub) Join(ctx context.Context, req *types.RegistrationRequest) error {
	select {
	case h.register <- req:
		return nil
	case <-h.ctx.Done():
		return ErrShuttingDown
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Issuer returns the seat token issuer.
func (h *Hub) Issuer() *SeatIssuer {
	return h.issuer
}

// CreateMatch starts a match in the background and returns its id with one seat token per human side.
func (h *Hub) CreateMatch(ctx context.Context, cfg match.Config) (string, map[game.PlayerMark]string, error) {
	ctx, span := tracer.Start(ctx, "hub.CreateMatch", trace.WithAttributes(
		attribute.String("match.x", string(cfg.X.Kind)),
		attribute.String("match.o", string(cfg.O.Kind)),
	))
	defer span.End()

	if h.ctx.Err() != nil {
		return "", nil, ErrShuttingDown
	}

	id := uuid.NewString()
	span.SetAttributes(attribute.String("match.id", id))

	s := &session{hub: h, id: id, cfg: cfg, stats: match.NewGameStatistics(cfg), done: make(chan struct{})}
	s.room = room.NewRoom(id, room.WithMoveTimeout(h.moveTimeout), room.WithLeaveHandler(h.onLeave))
	ctrl, err := match.NewController(cfg, h.calc,
		match.WithID(id),
		match.WithMoveSource(s.room),
		match.WithReporter(s),
		match.WithPublisher(s),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid match configuration")
		return "", nil, err
	}
	s.ctrl = ctrl

	seats := make(map[game.PlayerMark]string)
	for _, mark := range []game.PlayerMark{game.PlayerX, game.PlayerO} {
		if cfg.Side(mark).Kind != match.Human {
			continue
		}
		token, playerID, err := h.issuer.Issue(id, mark)
		if err != nil {
			return "", nil, err
		}
		if h.seats != nil {
			if err := h.seats.Claim(ctx, id, mark, playerID); err != nil {
				return "", nil, fmt.Errorf("failed to claim seat %s: %w", mark, err)
			}
		}
		seats[mark] = token
	}

	h.mu.Lock()
	h.sessions[id] = s
	h.mu.Unlock()

	h.wg.Add(1)
	go h.runSession(s)

	slog.InfoContext(ctx, "Match created", "match.id", id, "x", cfg.X.Kind, "o", cfg.O.Kind)
	return id, seats, nil
}

// Snapshot returns the latest picture of a match, local or hosted elsewhere.
func (h *Hub) Snapshot(ctx context.Context, id string) (match.Snapshot, error) {
	if s, ok := h.session(id); ok {
		return s.ctrl.Snapshot(), nil
	}
	if h.store == nil {
		return match.Snapshot{}, fmt.Errorf("%w: %s", ErrMatchNotFound, id)
	}
	snap, err := h.store.FindByID(ctx, id)
	if errors.Is(err, repository.ErrMatchNotFound) {
		return match.Snapshot{}, fmt.Errorf("%w: %s", ErrMatchNotFound, id)
	}
	if err != nil {
		return match.Snapshot{}, err
	}
	return *snap, nil
}

// Statistics returns the move statistics gathered so far for a match hosted here.
func (h *Hub) Statistics(id string) (match.GameStatistics, error) {
	s, ok := h.session(id)
	if !ok {
		return match.GameStatistics{}, fmt.Errorf("%w: %s", ErrMatchNotFound, id)
	}
	return s.statistics(), nil
}

func (h *Hub) session(id string) (*session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[id]
	return s, ok
}

func (h *Hub) onLeave(p *player.Player) {
	select {
	case h.leave <- p:
	case <-h.ctx.Done():
	}
}

func (h *Hub) handleLeave(ctx context.Context, p *player.Player) {
	h.mu.Lock()
	rm, remote := h.remote[p.MatchID]
	if remote && rm.Len() == 0 {
		delete(h.remote, p.MatchID)
	}
	h.mu.Unlock()
	if remote {
		if rm.Len() == 0 {
			rm.Close(ctx, nil)
		}
		return
	}

	s, ok := h.session(p.MatchID)
	if !ok || p.IsSpectator() || h.seats == nil || s.finished() {
		return
	}
	if err := h.seats.UpdateConnectionStatus(ctx, p.MatchID, p.Mark, player.StatusDisconnected); err != nil {
		slog.ErrorContext(ctx, "Failed to set seat status to disconnected", "match.id", p.MatchID, "mark", p.Mark, "error", err)
	}
}

func (h *Hub) shutdown(ctx context.Context) {
	slog.InfoContext(ctx, "Hub shutting down")
	h.cancel()

	h.mu.RLock()
	rooms := make([]*room.Room, 0, len(h.sessions)+len(h.remote))
	for _, s := range h.sessions {
		rooms = append(rooms, s.room)
	}
	for _, rm := range h.remote {
		rooms = append(rooms, rm)
	}
	h.mu.RUnlock()

	for _, rm := range rooms {
		rm.Close(ctx, proto.Error("server shutting down"))
	}
	h.wg.Wait()
}
