package room

import (
	"context"
	"ctchen222/line-em-up/internal/player"
	"ctchen222/line-em-up/pkg/proto"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Broadcast sends a message to every player and spectator in the room.
func (r *Room) Broadcast(ctx context.Context, message *proto.ServerToClientMessage) {
	ctx, span := tracer.Start(ctx, "room.Broadcast", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.String("message.type", message.Type),
	))
	defer span.End()

	for _, p := range r.players() {
		if err := p.Send(message); err != nil {
			slog.ErrorContext(ctx, "error writing message to player", "player.id", p.ID, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Error writing message to player")
		}
	}
}

func (r *Room) broadcastExcept(ctx context.Context, skip *player.Player, message *proto.ServerToClientMessage) {
	for _, p := range r.players() {
		if p != skip {
			r.sendTo(ctx, p, message)
		}
	}
}

func (r *Room) sendTo(ctx context.Context, p *player.Player, message any) {
	if err := p.Send(message); err != nil {
		slog.WarnContext(ctx, "error writing message to player", "player.id", p.ID, "room.id", r.ID, "error", err)
	}
}

// ReadPump reads messages from the player's connection until it fails, then removes the player.
func (r *Room) ReadPump(ctx context.Context, p *player.Player) {
	ctx, span := tracer.Start(ctx, "room.ReadPump", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("room.id", r.ID),
		attribute.String("player.mark", string(p.Mark)),
	))
	defer span.End()

	defer func() {
		p.Conn.Close()
		if !r.RemovePlayer(p) {
			return
		}
		if !p.IsSpectator() {
			r.broadcastExcept(ctx, p, &proto.ServerToClientMessage{Type: proto.TypeOpponentDisconnect, Mark: p.Mark})
		}
		if r.onLeave != nil {
			r.onLeave(p)
		}
		slog.InfoContext(ctx, "Player left room", "player.id", p.ID, "room.id", r.ID)
	}()

	for {
		_, msg, err := p.Conn.ReadMessage()
		if err != nil {
			select {
			case <-r.done:
			default:
				slog.WarnContext(ctx, "Player connection error", "player.id", p.ID, "room.id", r.ID, "error", err)
				span.RecordError(err)
				span.SetStatus(codes.Error, "Player connection error")
			}
			return
		}
		r.HandleMessage(ctx, p, msg)
	}
}
