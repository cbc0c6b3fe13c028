// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taibuivan/folio/internal/platform/config"
	"github.com/taibuivan/folio/internal/platform/migration"
)

func newSchemaCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect and apply PostgreSQL schema migrations",
		Long: `schema wraps the SQL migrations under MIGRATION_PATH. SQLite databases
create their schema when opened and need neither command.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := postgresConfig()
			if err != nil {
				return err
			}
			status, err := migration.CurrentStatus(cfg.DatabaseURL, cfg.MigrationPath, opts.logger(cmd))
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), status)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := postgresConfig()
			if err != nil {
				return err
			}
			logger := opts.logger(cmd)
			if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, logger); err != nil {
				return err
			}
			status, err := migration.CurrentStatus(cfg.DatabaseURL, cfg.MigrationPath, logger)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), status)
		},
	})

	return cmd
}

func postgresConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.StorageDriver != config.DriverPostgres {
		return nil, fmt.Errorf("schema commands need STORAGE_DRIVER=%s, got %s", config.DriverPostgres, cfg.StorageDriver)
	}
	return cfg, nil
}
