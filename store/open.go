package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/math-2025/protected-geo/config"
)

// Open creates the store of the configured backend
func Open(ctx context.Context, cfg config.Store) (Store, error) {
	switch cfg.Backend {
	case config.BackendMemory, "":
		return NewMemoryStore(), nil
	case config.BackendMongo:
		return ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	case config.BackendRedis:
		return ConnectRedis(ctx, &redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.RedisPrefix)
	default:
		return nil, fmt.Errorf("%w: '%s'", config.ErrUnknownBackend, cfg.Backend)
	}
}
