package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores the credential under a single key, optionally with a TTL.
type Redis struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

func NewRedis(client redis.Cmdable, key string, ttl time.Duration) *Redis {
	if key == "" {
		key = "academic-dashboard:token"
	}
	return &Redis{client: client, key: key, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context) (string, bool, error) {
	v, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("tokenstore: redis get: %w", err)
	}
	if v == "" {
		return "", false, nil
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, token string) error {
	if err := r.client.Set(ctx, r.key, token, r.ttl).Err(); err != nil {
		return fmt.Errorf("tokenstore: redis set: %w", err)
	}
	return nil
}

func (r *Redis) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("tokenstore: redis del: %w", err)
	}
	return nil
}
