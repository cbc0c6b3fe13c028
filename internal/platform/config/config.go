// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. The API server and the
folioctl operator CLI read the same variables.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
*/
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Supported storage backends.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// MaxWindowCeiling bounds READER_MAX_WINDOW regardless of operator input.
const MaxWindowCeiling = 50

// # Configuration Schema

// Config holds all runtime configuration for Folio.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Storage backend selection
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"postgres"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// SQLitePath is the database file used when StorageDriver is "sqlite".
	SQLitePath string `env:"SQLITE_PATH" envDefault:"./data/folio.db"`

	// Key-Value Cache (Redis). Empty disables the page window cache.
	RedisURL       string        `env:"REDIS_URL"`
	WindowCacheTTL time.Duration `env:"WINDOW_CACHE_TTL" envDefault:"5m"`

	// Identity verification (tokens are issued by the external account service)
	JWTPubKeyPath string `env:"JWT_PUBLIC_KEY_PATH"`
	JWTIssuer     string `env:"JWT_ISSUER" envDefault:"folio.app"`

	// Batch reader window bound
	ReaderMaxWindow int `env:"READER_MAX_WINDOW" envDefault:"20"`

	// Asset URL rewriting applied by the delivery layer
	AssetURLFrom string `env:"ASSET_URL_FROM"`
	AssetURLTo   string `env:"ASSET_URL_TO"`

	// Cross-Origin Resource Sharing
	ExtraOrigins []string `env:"EXTRA_ORIGINS" envSeparator:","`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field rules that struct tags cannot express.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required when STORAGE_DRIVER=postgres")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("config: SQLITE_PATH is required when STORAGE_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("config: unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.ReaderMaxWindow < 1 {
		return fmt.Errorf("config: READER_MAX_WINDOW must be positive, got %d", c.ReaderMaxWindow)
	}
	if c.ReaderMaxWindow > MaxWindowCeiling {
		c.ReaderMaxWindow = MaxWindowCeiling
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the extra CORS origins configured for this deployment.
func (c *Config) AllowedOrigins() []string {
	return c.ExtraOrigins
}
