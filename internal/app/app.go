// Package app builds the services shared by the viewer and the worker from config.
package app

import (
	"context"
	"fmt"
	"time"

	"dartview/internal/cache"
	"dartview/internal/config"
	"dartview/internal/db"
	"dartview/internal/pkg/backend"
	"dartview/internal/source"

	"go.uber.org/zap"
)

const memoryCacheEntries = 256

// OpenSource returns the configured report source and a func releasing it.
func OpenSource(cfg *config.Config, logger *zap.Logger) (source.Source, func(), error) {
	switch cfg.ReportSource {
	case config.SourceDB:
		conn, err := db.InitDB(cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		closer := func() {
			if sqlDB, err := conn.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		logger.Info("reading reports from the database")
		return source.NewDBSource(conn), closer, nil
	default:
		logger.Info("reading reports from the API", zap.String("base_url", cfg.APIBaseURL))
		return backend.New(cfg.APIBaseURL, cfg.APITimeout, logger), func() {}, nil
	}
}

// OpenCache returns a redis cache when REDIS_URL is set and reachable,
// otherwise an in-memory one.
func OpenCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (cache.Cache, func()) {
	if cfg.RedisURL == "" {
		logger.Info("using in-memory render cache")
		return cache.NewMemoryCache(memoryCacheEntries), func() {}
	}

	rc, err := cache.NewRedisCache(cfg.RedisURL)
	if err != nil {
		logger.Warn("invalid REDIS_URL, using in-memory render cache", zap.Error(err))
		return cache.NewMemoryCache(memoryCacheEntries), func() {}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		logger.Warn("redis not reachable, using in-memory render cache", zap.Error(err))
		_ = rc.Close()
		return cache.NewMemoryCache(memoryCacheEntries), func() {}
	}

	logger.Info("using redis render cache")
	return rc, func() { _ = rc.Close() }
}
