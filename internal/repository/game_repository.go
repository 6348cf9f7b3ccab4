package repository

import (
	"context"
	"ctchen222/line-em-up/internal/events"
	"ctchen222/line-em-up/internal/game"
	"ctchen222/line-em-up/internal/match"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("repository")

var ErrMatchNotFound = errors.New("match not found")

// snapshotTTL bounds how long a finished or abandoned match stays readable.
const snapshotTTL = 24 * time.Hour

const (
	fieldSnapshot  = "snapshot"
	fieldStatus    = "status"
	fieldNext      = "next"
	fieldMoveCount = "move_count"
)

func matchKey(id string) string {
	return fmt.Sprintf("match:%s", id)
}

// GameRepository stores live match snapshots in Redis and announces every change on the match channel.
type GameRepository interface {
	Publish(ctx context.Context, snapshot match.Snapshot) error
	FindByID(ctx context.Context, id string) (*match.Snapshot, error)
	Subscribe(ctx context.Context, ids ...string) *redis.PubSub
	Delete(ctx context.Context, id string) error
}

type redisGameRepository struct {
	rdb *redis.Client
}

// NewGameRepository creates a new Redis-based GameRepository.
func NewGameRepository(rdb *redis.Client) GameRepository {
	return &redisGameRepository{rdb: rdb}
}

// Publish saves the snapshot and publishes a match_updated or match_concluded event.
func (r *redisGameRepository) Publish(ctx context.Context, snapshot match.Snapshot) error {
	ctx, span := tracer.Start(ctx, "GameRepository.Publish", trace.WithAttributes(
		attribute.String("match.id", snapshot.ID),
		attribute.Int("match.move_count", snapshot.MoveCount),
	))
	defer span.End()

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	var event []byte
	if snapshot.Status == game.InProgress {
		event, err = events.Encode(events.TypeMatchUpdated, events.MatchUpdatedPayload{
			MatchID:   snapshot.ID,
			MoveCount: snapshot.MoveCount,
			Status:    string(snapshot.Status),
			Next:      string(snapshot.Next),
		})
	} else {
		event, err = events.Encode(events.TypeMatchConcluded, events.MatchConcludedPayload{
			MatchID:   snapshot.ID,
			MoveCount: snapshot.MoveCount,
			Status:    string(snapshot.Status),
			Winner:    string(snapshot.Winner),
		})
	}
	if err != nil {
		return err
	}

	key := matchKey(snapshot.ID)
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key,
		fieldSnapshot, data,
		fieldStatus, string(snapshot.Status),
		fieldNext, string(snapshot.Next),
		fieldMoveCount, snapshot.MoveCount,
	)
	pipe.Expire(ctx, key, snapshotTTL)
	pipe.Publish(ctx, events.MatchChannel(snapshot.ID), event)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to publish snapshot")
		return fmt.Errorf("failed to publish snapshot to redis: %w", err)
	}
	return nil
}

// FindByID returns the latest snapshot of a match.
func (r *redisGameRepository) FindByID(ctx context.Context, id string) (*match.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "GameRepository.FindByID", trace.WithAttributes(
		attribute.String("match.id", id),
	))
	defer span.End()

	data, err := r.rdb.HGet(ctx, matchKey(id), fieldSnapshot).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot from redis: %w", err)
	}

	var snapshot match.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snapshot, nil
}

// Subscribe listens to the event channels of the given matches, or to every match when no id is given.
func (r *redisGameRepository) Subscribe(ctx context.Context, ids ...string) *redis.PubSub {
	if len(ids) == 0 {
		return r.rdb.PSubscribe(ctx, events.MatchChannelPattern)
	}
	channels := make([]string, len(ids))
	for i, id := range ids {
		channels[i] = events.MatchChannel(id)
	}
	return r.rdb.Subscribe(ctx, channels...)
}

// Delete removes a match snapshot.
func (r *redisGameRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "GameRepository.Delete", trace.WithAttributes(
		attribute.String("match.id", id),
	))
	defer span.End()

	return r.rdb.Del(ctx, matchKey(id)).Err()
}
