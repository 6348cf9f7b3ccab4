package hub

import (
	"context"
	"ctchen222/line-em-up/internal/api/models"
	"ctchen222/line-em-up/internal/game"
	"ctchen222/line-em-up/internal/match"
	"ctchen222/line-em-up/internal/room"
	"ctchen222/line-em-up/pkg/proto"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// session is one match hosted by this hub. It reports to and publishes for its controller.
type session struct {
	hub  *Hub
	id   string
	cfg  match.Config
	room *room.Room
	ctrl *match.Controller

	mu    sync.Mutex
	stats match.GameStatistics
	done  chan struct{}
}

func (s *session) GameStarted(_ context.Context, cfg match.Config, _ *game.Board) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = match.NewGameStatistics(cfg)
}

func (s *session) MovePlayed(_ context.Context, ms match.MoveStats, _ *game.Board) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Add(ms)
}

func (s *session) GameConcluded(ctx context.Context, stats match.GameStatistics, _ *game.Board) {
	s.mu.Lock()
	s.stats.Conclude(stats.Result)
	s.mu.Unlock()

	if s.hub.results == nil {
		return
	}
	result := models.NewGameResult(s.id, "", s.cfg, stats, time.Now())
	if err := s.hub.results.SaveGame(context.WithoutCancel(ctx), result); err != nil {
		slog.ErrorContext(ctx, "Failed to save game result", "match.id", s.id, "error", err)
	}
}

// Publish broadcasts the snapshot to the room and stores it when Redis is configured.
func (s *session) Publish(ctx context.Context, snap match.Snapshot) error {
	s.room.Broadcast(ctx, proto.UpdateFromSnapshot(snap))
	if s.hub.store == nil {
		return nil
	}
	return s.hub.store.Publish(ctx, snap)
}

func (s *session) statistics() match.GameStatistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats
	st.VisitedPerDepth = maps.Clone(s.stats.VisitedPerDepth)
	st.Heuristics = maps.Clone(s.stats.Heuristics)
	st.Moves = slices.Clone(s.stats.Moves)
	return st
}

func (s *session) finished() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (h *Hub) runSession(s *session) {
	defer h.wg.Done()

	ctx, span := tracer.Start(h.ctx, "hub.runSession", trace.WithAttributes(
		attribute.String("match.id", s.id),
	))
	defer span.End()

	stats, err := s.ctrl.Play(ctx)
	var last *proto.ServerToClientMessage
	switch {
	case err == nil:
		slog.InfoContext(ctx, "Match finished", "match.id", s.id, "status", stats.Result.Status, "winner", stats.Result.Winner)
	case errors.Is(err, context.Canceled):
		last = proto.Error("server shutting down")
	default:
		slog.ErrorContext(ctx, "Match aborted", "match.id", s.id, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Match aborted")
		last = proto.Error("match aborted: " + err.Error())
		if h.store != nil {
			if err := h.store.Delete(context.WithoutCancel(ctx), s.id); err != nil {
				slog.ErrorContext(ctx, "Failed to delete aborted match", "match.id", s.id, "error", err)
			}
		}
	}

	close(s.done)
	cleanupCtx := context.WithoutCancel(ctx)
	s.room.Close(cleanupCtx, last)
	if h.seats != nil {
		if err := h.seats.Release(cleanupCtx, s.id); err != nil {
			slog.ErrorContext(ctx, "Failed to release seats", "match.id", s.id, "error", err)
		}
	}

	time.AfterFunc(h.retention, func() {
		h.mu.Lock()
		delete(h.sessions, s.id)
		h.mu.Unlock()
	})
}
