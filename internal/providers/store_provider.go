package providers

import (
	"context"
	"fmt"
	"time"
	"zoblogs/internal/storage"
	"zoblogs/internal/storage/file"
	"zoblogs/internal/storage/memory"
	"zoblogs/internal/storage/postgres"
	"zoblogs/internal/storage/redis"
	"zoblogs/internal/structures"
)

const (
	storeConnectTimeout = 10 * time.Second
	redisKeyPrefix      = "zoblogs:"
)

// NewKVStore opens the registry backend named by registry.driver.
func NewKVStore(conf *structures.Config, logger Logger) (storage.Store, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), storeConnectTimeout)
	defer cancel()

	var store storage.Store
	switch conf.Registry.Driver {
	case "memory":
		logger.Warnf(TypeApp, "Registry uses the memory driver, coins are lost on restart")
		store = memory.NewStore()
	case "file":
		compressor, err := file.NewZstdCompressor()
		if err != nil {
			return nil, nil, err
		}
		fs, err := file.NewStore(conf.Registry.Dir, compressor)
		if err != nil {
			compressor.Close()
			return nil, nil, err
		}
		store = fs
	case "redis":
		client, err := redis.NewClient(ctx, conf.Registry.RedisUrl)
		if err != nil {
			return nil, nil, err
		}
		store = redis.NewStore(client, redisKeyPrefix)
	case "postgres":
		pool, err := postgres.NewPool(ctx, conf.Registry.PostgresDsn)
		if err != nil {
			return nil, nil, err
		}
		if err := pool.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		store = postgres.NewStore(pool)
	default:
		return nil, nil, fmt.Errorf("unknown registry driver %q", conf.Registry.Driver)
	}

	logger.Infof(TypeApp, "Registry storage: %s", conf.Registry.Driver)
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Errorf(TypeApp, "Error closing registry storage: %s", err)
		}
	}
	return store, cleanup, nil
}
