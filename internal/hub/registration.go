package hub

import (
	"context"
	"ctchen222/line-em-up/internal/game"
	"ctchen222/line-em-up/internal/hub/types"
	"ctchen222/line-em-up/internal/match"
	"ctchen222/line-em-up/internal/player"
	"ctchen222/line-em-up/internal/repository"
	"ctchen222/line-em-up/internal/room"
	"ctchen222/line-em-up/pkg/proto"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func (h *Hub) handleRegistration(req *types.RegistrationRequest) {
	p := req.Player
	ctx, span := tracer.Start(req.Ctx, "hub.handleRegistration", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("match.id", p.MatchID),
		attribute.String("player.mark", string(p.Mark)),
	))
	defer span.End()

	if s, ok := h.session(p.MatchID); ok {
		h.joinLocal(ctx, s, p)
		return
	}
	if err := h.joinRemote(ctx, p); err != nil {
		slog.WarnContext(ctx, "Rejected registration", "player.id", p.ID, "match.id", p.MatchID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Rejected registration")
		reject(p, err.Error())
	}
}

func (h *Hub) joinLocal(ctx context.Context, s *session, p *player.Player) {
	if !p.IsSpectator() && h.seats != nil {
		seat, ok, err := h.seats.Find(ctx, p.MatchID, p.Mark)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to look up seat", "match.id", p.MatchID, "mark", p.Mark, "error", err)
		} else if ok && seat.PlayerID != p.ID {
			reject(p, "seat belongs to another player")
			return
		}
	}

	h.sendAssignment(ctx, p)
	if s.finished() {
		h.sendSnapshot(ctx, p, s.ctrl.Snapshot())
		p.Conn.Close()
		return
	}

	s.room.AddPlayer(ctx, p)
	if !p.IsSpectator() && h.seats != nil {
		if err := h.seats.UpdateConnectionStatus(ctx, p.MatchID, p.Mark, player.StatusConnected); err != nil {
			slog.ErrorContext(ctx, "Failed to set seat status to connected", "match.id", p.MatchID, "mark", p.Mark, "error", err)
		}
	}
	h.sendSnapshot(ctx, p, s.ctrl.Snapshot())
	go s.room.ReadPump(h.ctx, p)
	slog.InfoContext(ctx, "Player joined match", "player.id", p.ID, "match.id", p.MatchID, "mark", p.Mark)
}

// joinRemote attaches a spectator to a match hosted by another server.
func (h *Hub) joinRemote(ctx context.Context, p *player.Player) error {
	if h.store == nil {
		return ErrMatchNotFound
	}
	snap, err := h.store.FindByID(ctx, p.MatchID)
	if errors.Is(err, repository.ErrMatchNotFound) {
		return ErrMatchNotFound
	}
	if err != nil {
		return err
	}
	if !p.IsSpectator() {
		return errors.New("seat is hosted by another server")
	}

	h.sendAssignment(ctx, p)
	if snap.Status != game.InProgress {
		h.sendSnapshot(ctx, p, *snap)
		p.Conn.Close()
		return nil
	}

	h.mu.Lock()
	rm, ok := h.remote[p.MatchID]
	if !ok {
		rm = room.NewRoom(p.MatchID, room.WithLeaveHandler(h.onLeave))
		h.remote[p.MatchID] = rm
		h.wg.Add(1)
		go h.runMatchSubscriber(rm)
	}
	h.mu.Unlock()

	rm.AddPlayer(ctx, p)
	h.sendSnapshot(ctx, p, *snap)
	go rm.ReadPump(h.ctx, p)
	return nil
}

func (h *Hub) sendAssignment(ctx context.Context, p *player.Player) {
	msg := &proto.PlayerAssignmentMessage{Type: proto.TypeAssignment, MatchID: p.MatchID, PlayerID: p.ID, Mark: p.Mark}
	if err := p.Send(msg); err != nil {
		slog.ErrorContext(ctx, "Error sending assignment to player", "player.id", p.ID, "error", err)
	}
}

func (h *Hub) sendSnapshot(ctx context.Context, p *player.Player, snap match.Snapshot) {
	if err := p.Send(proto.UpdateFromSnapshot(snap)); err != nil {
		slog.ErrorContext(ctx, "Error sending match state to player", "player.id", p.ID, "error", err)
	}
}

func reject(p *player.Player, reason string) {
	p.Send(proto.Error(reason))
	p.Conn.Close()
}
