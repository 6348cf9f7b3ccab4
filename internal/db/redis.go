package db

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// DefaultRedisAddr is used when no address is configured.
const DefaultRedisAddr = "localhost:6379"

// NewRedisClient connects to the Redis server at addr and pings it.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	if addr == "" {
		addr = DefaultRedisAddr
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}

	return client, nil
}
