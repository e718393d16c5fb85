package repository

import (
	"context"
	"fmt"
)

// Config selects and configures a store backend.
type Config struct {
	Backend        string
	PostgresURL    string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string
}

// New opens the store named by cfg.Backend.
func New(ctx context.Context, cfg Config, opts ...Option) (Store, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendPostgres:
		return NewPostgresStore(ctx, cfg.PostgresURL, opts...)
	case BackendRedis:
		return NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			append(opts, WithKeyPrefix(cfg.RedisKeyPrefix))...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
