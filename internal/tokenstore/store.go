// Package tokenstore persists the single bearer credential used by the
// dashboard. A missing credential is reported as ok=false, never as an error.
package tokenstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"academic-dashboard/internal/config"
)

type Store interface {
	Get(ctx context.Context) (token string, ok bool, err error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Open builds the store selected by cfg.TokenStore.
func Open(cfg config.Config) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.TokenStore {
	case "", "file":
		return NewFile(cfg.TokenFile), noop, nil
	case "memory":
		return NewMemory(), noop, nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, noop, fmt.Errorf("tokenstore: missing env REDIS_ADDR")
		}
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, noop, fmt.Errorf("tokenstore: redis ping failed: %w", err)
		}
		return NewRedis(rdb, cfg.RedisKey, cfg.RedisTokenTTL), rdb.Close, nil
	default:
		return nil, noop, fmt.Errorf("tokenstore: unknown backend %q", cfg.TokenStore)
	}
}
