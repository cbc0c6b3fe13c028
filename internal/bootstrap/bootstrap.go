// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package bootstrap opens the storage backend and cache selected by
configuration. The API server and folioctl share it so both see the same
data through the same stores.
*/
package bootstrap

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/taibuivan/folio/internal/core/reader"
	"github.com/taibuivan/folio/internal/core/tag"
	"github.com/taibuivan/folio/internal/core/work"
	"github.com/taibuivan/folio/internal/platform/config"
	"github.com/taibuivan/folio/internal/platform/migration"
	pgstore "github.com/taibuivan/folio/internal/platform/postgres"
	redisstore "github.com/taibuivan/folio/internal/platform/redis"
	"github.com/taibuivan/folio/internal/platform/sqlite"
)

// Check is one named dependency probe.
type Check struct {
	Name string
	Ping func(context.Context) error
}

// Backend holds the opened stores and their health probes.
type Backend struct {
	Works work.Store
	Tags  tag.Store

	// Cache is nil when no Redis URL is configured.
	Cache reader.Cache

	Checks []Check

	closers []func()
}

// Options tunes [Open].
type Options struct {
	// ApplyMigrations runs pending PostgreSQL migrations before connecting.
	ApplyMigrations bool

	// SkipCache leaves [Backend.Cache] nil even when Redis is configured.
	SkipCache bool
}

/*
Open connects the storage backend named by cfg.StorageDriver and, when
configured, the Redis window cache.

Returns:
  - *Backend: Ready stores; call Close when done
  - error: Any connection or schema failure
*/
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, options Options) (*Backend, error) {
	backend := &Backend{}

	switch cfg.StorageDriver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		backend.useSQLite(db)

	default:
		if options.ApplyMigrations {
			if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, logger); err != nil {
				return nil, err
			}
		}

		pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		backend.Works = work.NewPostgresStore(pool)
		backend.Tags = tag.NewPostgresStore(pool)
		backend.Checks = append(backend.Checks, Check{
			Name: config.DriverPostgres,
			Ping: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
		})
		backend.closers = append(backend.closers, func() {
			logger.Info("postgres_pool_closing")
			pool.Close()
		})
	}

	if cfg.RedisURL == "" || options.SkipCache {
		return backend, nil
	}

	client, err := redisstore.NewClient(ctx, cfg.RedisURL, logger)
	if err != nil {
		backend.Close()
		return nil, err
	}
	backend.Cache = reader.NewRedisCache(client, cfg.WindowCacheTTL)
	backend.Checks = append(backend.Checks, Check{
		Name: "redis",
		Ping: func(ctx context.Context) error { return redisstore.Ping(ctx, client) },
	})
	backend.closers = append(backend.closers, func() {
		logger.Info("redis_client_closing")
		if err := client.Close(); err != nil {
			logger.Error("redis_close_failed", slog.Any("error", err))
		}
	})

	return backend, nil
}

func (backend *Backend) useSQLite(db *sql.DB) {
	backend.Works = work.NewSQLiteStore(db)
	backend.Tags = tag.NewSQLiteStore(db)
	backend.Checks = append(backend.Checks, Check{
		Name: config.DriverSQLite,
		Ping: db.PingContext,
	})
	backend.closers = append(backend.closers, func() { _ = db.Close() })
}

// Close releases connections in reverse order of opening.
func (backend *Backend) Close() {
	for i := len(backend.closers) - 1; i >= 0; i-- {
		backend.closers[i]()
	}
	backend.closers = nil
}
