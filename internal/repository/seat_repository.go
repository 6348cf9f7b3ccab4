package repository

import (
	"context"
	"ctchen222/line-em-up/internal/events"
	"ctchen222/line-em-up/internal/game"
	"ctchen222/line-em-up/internal/player"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Seat is who holds one mark of a match and whether they are connected.
type Seat struct {
	PlayerID string
	Status   player.Status
}

// SeatRepository tracks which player holds each human seat of a match.
type SeatRepository interface {
	Find(ctx context.Context, matchID string, mark game.PlayerMark) (Seat, bool, error)
	Claim(ctx context.Context, matchID string, mark game.PlayerMark, playerID string) error
	UpdateConnectionStatus(ctx context.Context, matchID string, mark game.PlayerMark, status player.Status) error
	Release(ctx context.Context, matchID string) error
}

type redisSeatRepository struct {
	rdb *redis.Client
}

// NewSeatRepository creates a new Redis-based SeatRepository.
func NewSeatRepository(rdb *redis.Client) SeatRepository {
	return &redisSeatRepository{rdb: rdb}
}

func seatKey(matchID string) string {
	return fmt.Sprintf("seat:%s", matchID)
}

func seatFields(mark game.PlayerMark) (playerField, statusField string) {
	return string(mark) + ":player_id", string(mark) + ":connection_status"
}

// Find returns the seat of mark, if anyone has claimed it.
func (r *redisSeatRepository) Find(ctx context.Context, matchID string, mark game.PlayerMark) (Seat, bool, error) {
	ctx, span := tracer.Start(ctx, "SeatRepository.Find", trace.WithAttributes(
		attribute.String("match.id", matchID),
		attribute.String("mark", string(mark)),
	))
	defer span.End()

	playerField, statusField := seatFields(mark)
	vals, err := r.rdb.HMGet(ctx, seatKey(matchID), playerField, statusField).Result()
	if err != nil {
		return Seat{}, false, err
	}
	id, _ := vals[0].(string)
	if id == "" {
		return Seat{}, false, nil
	}
	status, _ := vals[1].(string)
	return Seat{PlayerID: id, Status: player.Status(status)}, true, nil
}

// Claim assigns mark to playerID. The seat stays disconnected until the player connects.
func (r *redisSeatRepository) Claim(ctx context.Context, matchID string, mark game.PlayerMark, playerID string) error {
	ctx, span := tracer.Start(ctx, "SeatRepository.Claim", trace.WithAttributes(
		attribute.String("match.id", matchID),
		attribute.String("mark", string(mark)),
	))
	defer span.End()

	playerField, statusField := seatFields(mark)
	key := seatKey(matchID)
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key, playerField, playerID, statusField, string(player.StatusDisconnected))
	pipe.Expire(ctx, key, snapshotTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// UpdateConnectionStatus updates the connection status of a seat and announces it on the match channel.
func (r *redisSeatRepository) UpdateConnectionStatus(ctx context.Context, matchID string, mark game.PlayerMark, status player.Status) error {
	ctx, span := tracer.Start(ctx, "SeatRepository.UpdateConnectionStatus", trace.WithAttributes(
		attribute.String("match.id", matchID),
		attribute.String("status", string(status)),
	))
	defer span.End()

	seat, ok, err := r.Find(ctx, matchID, mark)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("seat %s of match %s is not claimed", mark, matchID)
	}

	eventType := events.TypeSeatConnected
	if status == player.StatusDisconnected {
		eventType = events.TypeSeatDisconnected
	}
	event, err := events.Encode(eventType, events.SeatPayload{MatchID: matchID, Mark: string(mark), PlayerID: seat.PlayerID})
	if err != nil {
		return err
	}

	_, statusField := seatFields(mark)
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, seatKey(matchID), statusField, string(status))
	pipe.Publish(ctx, events.MatchChannel(matchID), event)
	_, err = pipe.Exec(ctx)
	return err
}

// Release frees every seat of a match.
func (r *redisSeatRepository) Release(ctx context.Context, matchID string) error {
	ctx, span := tracer.Start(ctx, "SeatRepository.Release")
	defer span.End()

	return r.rdb.Del(ctx, seatKey(matchID)).Err()
}
