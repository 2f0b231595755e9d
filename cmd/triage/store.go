package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mixelka/emailtriage/internal/config"
	"github.com/mixelka/emailtriage/internal/database"
	"github.com/mixelka/emailtriage/internal/store"
	"github.com/mixelka/emailtriage/internal/triage"
)

// openStore connects the backend selected by STORE_BACKEND
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return store.NewMemoryStore(), nil

	case config.BackendSQLite:
		db, err := database.Open(ctx, cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		return db, nil

	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return store.NewRedisStore(rdb, store.RedisOptions{
			Prefix:  cfg.RedisPrefix,
			LockTTL: cfg.RedisLockTTL,
		}), nil

	case config.BackendRemote:
		return store.NewRemoteStore(store.RemoteConfig{
			BaseURL: cfg.RemoteStoreURL,
			APIKey:  cfg.StoreAPIKey,
			Timeout: cfg.RemoteStoreTimeout,
		}), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// openService opens the store and wraps it in a triage service. The caller
// closes the returned store.
func openService(ctx context.Context) (*triage.Service, store.Store, error) {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.StoreBackend, err)
	}
	logger.Debug("store opened", "backend", cfg.StoreBackend)

	return triage.NewService(st, cfg.Session(), logger), st, nil
}
