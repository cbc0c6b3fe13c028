// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taibuivan/folio/internal/core/layout"
	"github.com/taibuivan/folio/pkg/uuid"
)

// errWorksFailed makes a job exit non-zero after printing its report.
var errWorksFailed = errors.New("some works failed")

type jobFlags struct {
	workID      string
	apply       bool
	concurrency int
	batchSize   int
}

func (flags *jobFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flags.workID, "work-id", "", "restrict the job to one work")
	cmd.Flags().BoolVar(&flags.apply, "apply", false, "write changes (default is a dry run)")
	cmd.Flags().IntVar(&flags.concurrency, "concurrency", layout.DefaultConcurrency, "works processed in parallel")
	cmd.Flags().IntVar(&flags.batchSize, "batch-size", layout.DefaultBatchSize, "work ids fetched per scan batch")
}

func (flags *jobFlags) validate() error {
	if flags.workID != "" && !uuid.Valid(flags.workID) {
		return fmt.Errorf("--work-id %q is not a UUID", flags.workID)
	}
	if flags.concurrency < 1 {
		return fmt.Errorf("--concurrency must be at least 1, got %d", flags.concurrency)
	}
	if flags.batchSize < 1 {
		return fmt.Errorf("--batch-size must be at least 1, got %d", flags.batchSize)
	}
	return nil
}

func newMigrateLayoutCmd(opts *rootOptions) *cobra.Command {
	var (
		flags      jobFlags
		repair     bool
		dropInline bool
	)

	cmd := &cobra.Command{
		Use:   "migrate-layout",
		Short: "Move inline works to per-page records",
		Long: `migrate-layout copies every inline work's pages into page records and
flips the work to the externalized layout. Works that are already
externalized are left alone.

Examples:
  folioctl migrate-layout                       # report what would change
  folioctl migrate-layout --apply               # migrate everything
  folioctl migrate-layout --apply --repair      # also fill gaps left by interrupted runs
  folioctl migrate-layout --apply --work-id <id> --drop-inline`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.validate(); err != nil {
				return err
			}

			current, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer current.Close()

			migrator := layout.NewMigrator(current.backend.Works, current.backend.Works, current.invalidator, current.logger)
			report, runErr := migrator.Run(cmd.Context(), layout.MigrateOptions{
				WorkID:      flags.workID,
				Repair:      repair,
				DropInline:  dropInline,
				Apply:       flags.apply,
				Concurrency: flags.concurrency,
				BatchSize:   flags.batchSize,
			})
			return finish(cmd, opts, report, runErr)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&repair, "repair", false, "also repair externalized works with missing pages")
	cmd.Flags().BoolVar(&dropInline, "drop-inline", false, "replace the inline copy with an empty placeholder")
	return cmd
}

func newReconcileCmd(opts *rootOptions) *cobra.Command {
	var flags jobFlags

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute aggregates and compact page indices",
		Long: `reconcile recounts every externalized work's pages and words from its
stored pages and renumbers pages whose indices have gaps.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.validate(); err != nil {
				return err
			}

			current, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer current.Close()

			reconciler := layout.NewReconciler(current.backend.Works, current.backend.Works, current.invalidator, current.logger)
			report, runErr := reconciler.Run(cmd.Context(), layout.ReconcileOptions{
				WorkID:      flags.workID,
				Apply:       flags.apply,
				Concurrency: flags.concurrency,
				BatchSize:   flags.batchSize,
			})
			return finish(cmd, opts, report, runErr)
		},
	}

	flags.register(cmd)
	return cmd
}

// finish prints whatever report a job produced, then its outcome.
func finish(cmd *cobra.Command, opts *rootOptions, report *layout.Report, runErr error) error {
	if report != nil {
		if err := opts.print(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}
	if report != nil && report.Failed > 0 {
		return fmt.Errorf("%w: %d", errWorksFailed, report.Failed)
	}
	return nil
}
