// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/taibuivan/folio/internal/bootstrap"
	"github.com/taibuivan/folio/internal/core/reader"
	"github.com/taibuivan/folio/internal/core/work"
	"github.com/taibuivan/folio/internal/platform/config"
	"github.com/taibuivan/folio/internal/platform/constants"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	output  string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "folioctl",
		Short: "Operator tooling for the Folio document store",
		Long: `folioctl runs maintenance jobs against the storage backend configured
through the same environment variables as the API server.

Jobs are dry runs unless --apply is given. Every job is idempotent and can
be re-run after an interruption.`,
		Version:       constants.AppVersion,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", string(outputYAML), "output format: yaml or json")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug events to stderr")

	cmd.AddCommand(
		newMigrateLayoutCmd(opts),
		newReconcileCmd(opts),
		newImportLegacyCmd(opts),
		newSchemaCmd(opts),
		newTokenCmd(),
		newVersionCmd(),
	)
	return cmd
}

// logger writes text logs to the command's stderr.
func (opts *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// session is an opened backend plus the services jobs need.
type session struct {
	cfg         *config.Config
	backend     *bootstrap.Backend
	invalidator work.Invalidator
	logger      *slog.Logger
}

// open loads configuration and connects the storage backend. Pending
// migrations are not applied; use "schema up" for that.
func (opts *rootOptions) open(cmd *cobra.Command) (*session, error) {
	logger := opts.logger(cmd)

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	backend, err := bootstrap.Open(cmd.Context(), cfg, logger, bootstrap.Options{})
	if err != nil {
		return nil, err
	}

	current := &session{cfg: cfg, backend: backend, logger: logger}

	// Jobs bump cached page windows of the works they touch.
	if backend.Cache != nil {
		current.invalidator = reader.NewService(backend.Works, backend.Works, backend.Cache, cfg.ReaderMaxWindow, logger)
	}
	return current, nil
}

func (current *session) Close() {
	current.backend.Close()
}
