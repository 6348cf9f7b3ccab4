package hub

import (
	"context"
	"ctchen222/line-em-up/internal/events"
	"ctchen222/line-em-up/internal/game"
	"ctchen222/line-em-up/internal/room"
	"ctchen222/line-em-up/pkg/proto"
	"encoding/json"
	"log/slog"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// runMatchSubscriber relays the Redis events of a match hosted elsewhere to the spectators in rm.
func (h *Hub) runMatchSubscriber(rm *room.Room) {
	defer h.wg.Done()

	ctx, span := tracer.Start(h.ctx, "hub.runMatchSubscriber", trace.WithAttributes(
		attribute.String("match.id", rm.ID),
	))
	defer span.End()

	pubsub := h.store.Subscribe(ctx, rm.ID)
	defer pubsub.Close()
	defer h.dropRemote(rm)

	slog.InfoContext(ctx, "Starting match subscriber", "match.id", rm.ID, "channel", events.MatchChannel(rm.ID))
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case <-rm.Done():
			slog.InfoContext(ctx, "Stopping match subscriber", "match.id", rm.ID)
			return
		case msg, ok := <-ch:
			if !ok {
				rm.Close(ctx, proto.Error("match feed closed"))
				return
			}
			if h.relayEvent(ctx, rm, msg) {
				return
			}
		}
	}
}

// relayEvent reports whether the match has concluded.
func (h *Hub) relayEvent(ctx context.Context, rm *room.Room, msg *redis.Message) bool {
	ctx, span := tracer.Start(ctx, "hub.relayEvent", trace.WithAttributes(
		attribute.String("match.id", rm.ID),
		attribute.String("redis.channel", msg.Channel),
	))
	defer span.End()

	e, err := events.Decode([]byte(msg.Payload))
	if err != nil {
		slog.WarnContext(ctx, "Dropping malformed match event", "match.id", rm.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Malformed match event")
		return false
	}
	span.SetAttributes(attribute.String("event.type", e.Type))

	switch e.Type {
	case events.TypeMatchUpdated, events.TypeMatchConcluded:
		snap, err := h.store.FindByID(ctx, rm.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Match subscriber could not load snapshot", "match.id", rm.ID, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Could not load snapshot")
			return false
		}
		update := proto.UpdateFromSnapshot(*snap)
		if e.Type == events.TypeMatchConcluded {
			rm.Close(ctx, update)
			return true
		}
		rm.Broadcast(ctx, update)
	case events.TypeSeatConnected, events.TypeSeatDisconnected:
		var p events.SeatPayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			slog.WarnContext(ctx, "Dropping malformed seat event", "match.id", rm.ID, "error", err)
			return false
		}
		t := proto.TypeOpponentReconnect
		if e.Type == events.TypeSeatDisconnected {
			t = proto.TypeOpponentDisconnect
		}
		rm.Broadcast(ctx, &proto.ServerToClientMessage{Type: t, Mark: game.PlayerMark(p.Mark)})
	default:
		slog.DebugContext(ctx, "Ignoring match event", "match.id", rm.ID, "event", e.Type)
	}
	return false
}

func (h *Hub) dropRemote(rm *room.Room) {
	h.mu.Lock()
	if h.remote[rm.ID] == rm {
		delete(h.remote, rm.ID)
	}
	h.mu.Unlock()
	rm.Close(context.Background(), nil)
}
