package room

import (
	"context"
	"ctchen222/line-em-up/internal/game"
	"ctchen222/line-em-up/internal/match"
	"ctchen222/line-em-up/internal/player"
	"ctchen222/line-em-up/internal/validator"
	"ctchen222/line-em-up/pkg/proto"
	"encoding/json"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// HandleMessage parses a message from a player and queues it for the pending turn.
func (r *Room) HandleMessage(ctx context.Context, p *player.Player, rawMessage []byte) {
	ctx, span := tracer.Start(ctx, "room.HandleMessage", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	var message proto.ClientToServerMessage
	if err := json.Unmarshal(rawMessage, &message); err != nil {
		slog.WarnContext(ctx, "error unmarshalling message", "player.id", p.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error unmarshalling message")
		r.sendTo(ctx, p, proto.Error("malformed message"))
		return
	}
	if err := validator.GetValidator().Struct(message); err != nil {
		slog.WarnContext(ctx, "invalid message from player", "player.id", p.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid message format")
		r.sendTo(ctx, p, proto.Error(validator.Describe(err)))
		return
	}

	if p.IsSpectator() {
		r.sendTo(ctx, p, proto.Error("spectators cannot move"))
		return
	}

	move := &PlayerMove{Player: p, Coord: message.Coord()}
	span.SetAttributes(attribute.Int("move.row", move.Coord.Row), attribute.Int("move.col", move.Coord.Col))

	if reason := r.queueMove(move); reason != "" {
		r.sendTo(ctx, p, proto.Error(reason))
	}
}

// queueMove accepts one move per pending turn and returns the reason a move was refused.
func (r *Room) queueMove(move *PlayerMove) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending == nil || r.pending.Mark != move.Player.Mark {
		return "not your turn"
	}
	if r.moveTaken {
		return "move already queued"
	}
	select {
	case r.incomingMoves <- move:
		r.moveTaken = true
		return ""
	default:
		return "move already queued"
	}
}

// NextMove prompts the seat of turn.Mark and waits for its move. The prompt is repeated when the player
// reconnects.
func (r *Room) NextMove(ctx context.Context, turn match.HumanTurn) (game.Coord, error) {
	r.mu.Lock()
	r.drainMoves()
	r.pending = &turn
	r.moveTaken = false
	seat := r.seats[turn.Mark]
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.pending = nil
		r.mu.Unlock()
	}()

	if seat != nil {
		r.sendTo(ctx, seat, proto.YourTurn(turn))
	}

	var timeout <-chan time.Time
	if r.moveTimeout > 0 {
		timer := time.NewTimer(r.moveTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return game.Coord{}, ctx.Err()
		case <-r.done:
			return game.Coord{}, ErrClosed
		case <-timeout:
			return game.Coord{}, ErrMoveTimeout
		case mv := <-r.incomingMoves:
			if mv.Player.Mark != turn.Mark {
				r.sendTo(ctx, mv.Player, proto.Error("not your turn"))
				continue
			}
			return mv.Coord, nil
		}
	}
}

// drainMoves drops a move accepted for an earlier turn that was never consumed. r.mu must be held.
func (r *Room) drainMoves() {
	for {
		select {
		case <-r.incomingMoves:
		default:
			return
		}
	}
}
