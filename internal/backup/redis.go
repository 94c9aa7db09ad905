package backup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oakfield-av/lumen-core/internal/infrastructure/logging"
)

// redisDialTimeout bounds the initial connection check.
const redisDialTimeout = 5 * time.Second

// redisStore holds recovery snapshots in a Redis server.
type redisStore struct {
	client *redis.Client
}

// openRedisStore connects to Redis and verifies the connection with a ping.
func openRedisStore(url string, logger *logging.Logger) (Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	// Ask the server to snapshot to disk at least once a minute, so a
	// controller crash followed by a server restart still leaves an entry
	// to recover from. Not all deployments allow CONFIG SET; that is fine.
	if err := client.ConfigSet(ctx, "save", "60 1").Err(); err != nil {
		logger.Warn("unable to set redis snapshot policy", "error", err)
	}

	return &redisStore{client: client}, nil
}

func (s *redisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %q: %w", key, err)
	}
	return val, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
