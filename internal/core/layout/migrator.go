// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package layout

import (
	"context"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/taibuivan/folio/internal/core/delta"
	"github.com/taibuivan/folio/internal/core/work"
	"github.com/taibuivan/folio/internal/platform/apperr"
)

const (
	writeAttempts = 4
	writeDelay    = 200 * time.Millisecond
)

// MigrateOptions mirrors the migrate-layout command flags.
type MigrateOptions struct {
	// WorkID restricts the job to one work.
	WorkID string
	// Repair also scans externalized works whose pages are not exactly [0, page_count).
	Repair bool
	// DropInline replaces the inline copy with one empty placeholder.
	DropInline bool
	// Apply writes changes. Without it the job only reports.
	Apply       bool
	Concurrency int
	BatchSize   int
}

// Migrator converts inline works to externalized pages.
type Migrator struct {
	works       work.WorkRepository
	pages       work.PageStore
	reconciler  *Reconciler
	invalidator work.Invalidator
	now         func() time.Time
	logger      *slog.Logger
	delay       time.Duration
}

// NewMigrator constructs a [Migrator]. invalidator may be nil.
func NewMigrator(works work.WorkRepository, pages work.PageStore, invalidator work.Invalidator, logger *slog.Logger) *Migrator {
	return &Migrator{
		works:       works,
		pages:       pages,
		reconciler:  NewReconciler(works, pages, invalidator, logger),
		invalidator: invalidator,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      logger,
		delay:       writeDelay,
	}
}

/*
Run migrates every inline work and, with options.Repair, repairs
half-migrated externalized works.

Description: Works already externalized are never migrated again. A work
named by options.WorkID that is already externalized is reported as skipped
unless repair is requested.

Returns:
  - *Report: Per-work outcomes
  - error: NotFound for an unknown options.WorkID, listing failures or cancellation
*/
func (migrator *Migrator) Run(runContext context.Context, options MigrateOptions) (*Report, error) {
	report := &Report{DryRun: !options.Apply}

	migrator.logger.Info("layout_migration_started",
		slog.Bool("dry_run", report.DryRun),
		slog.Bool("repair", options.Repair),
		slog.Bool("drop_inline", options.DropInline),
		slog.String("work_id", options.WorkID),
	)

	inline := work.CandidateFilter{Mode: work.CandidatesInline, WorkID: options.WorkID, Limit: options.BatchSize}
	err := scan(runContext, migrator.works, inline, options.Concurrency, func(ctx context.Context, id string) {
		report.record(migrator.MigrateWork(ctx, id, options))
	})
	if err != nil {
		return report, err
	}

	if options.Repair {
		repair := work.CandidateFilter{Mode: work.CandidatesRepair, WorkID: options.WorkID, Limit: options.BatchSize}
		err := scan(runContext, migrator.works, repair, options.Concurrency, func(ctx context.Context, id string) {
			report.record(migrator.RepairWork(ctx, id, options))
		})
		if err != nil {
			return report, err
		}
	}

	if options.WorkID != "" && report.Scanned == 0 {
		if _, err := migrator.works.FindByID(runContext, options.WorkID); err != nil {
			return report, err
		}
		reason := "already externalized"
		if options.Repair {
			reason = "already externalized with pages [0, page_count)"
		}
		report.record(WorkResult{WorkID: options.WorkID, Action: ActionSkipped, Reason: reason})
	}

	migrator.logger.Info("layout_migration_finished",
		slog.Bool("dry_run", report.DryRun),
		slog.Int("scanned", report.Scanned),
		slog.Int("migrated", report.Migrated),
		slog.Int("repaired", report.Repaired),
		slog.Int("failed", report.Failed),
		slog.Int("pages_written", report.PagesWritten),
	)

	return report, nil
}

/*
MigrateWork externalizes one inline work.

Description: Each page of the inline source is written with an
insert-or-replace keyed by (work, index), so a re-run after an interruption
rewrites nothing that already matches. The work row flips to externalized
only after every page is stored.
*/
func (migrator *Migrator) MigrateWork(context context.Context, id string, options MigrateOptions) WorkResult {
	result := WorkResult{WorkID: id, Action: ActionMigrated}

	source, err := migrator.works.InlineSource(context, id)
	if err != nil {
		return failed(result, err)
	}

	result.Pages = len(source)
	currentTime := migrator.now()

	for index, inlinePage := range source {
		page := externalize(id, index, inlinePage, currentTime)
		result.WordCount += page.WordCount

		if !options.Apply {
			continue
		}

		var changed bool
		err := migrator.retry(context, func() (err error) {
			changed, err = migrator.pages.UpsertPage(context, page)
			return err
		})
		if err != nil {
			return failed(result, err)
		}
		if changed {
			result.Written++
		}
	}

	if !options.Apply {
		return result
	}

	err = migrator.retry(context, func() error {
		return migrator.works.MarkExternalized(context, id, result.Pages, result.WordCount, currentTime, options.DropInline)
	})
	if err != nil {
		return failed(result, err)
	}

	migrator.invalidate(context, id)
	migrator.logger.Info("layout_work_migrated",
		slog.String("work_id", id),
		slog.Int("page_count", result.Pages),
		slog.Int("total_word_count", result.WordCount),
		slog.Int("pages_written", result.Written),
	)

	return result
}

/*
RepairWork restores the missing pages of a half-migrated work.

Description: Only indices in [0, page_count) with no stored page are written,
from the inline source or as empty pages past its end. Existing pages are
never overwritten, since they may have been edited after the partial
migration. The reconciler then compacts indices and rewrites aggregates.
*/
func (migrator *Migrator) RepairWork(context context.Context, id string, options MigrateOptions) WorkResult {
	result := WorkResult{WorkID: id, Action: ActionRepaired}

	target, err := migrator.works.FindByID(context, id)
	if err != nil {
		return failed(result, err)
	}

	stats, err := migrator.pages.PageStats(context, id)
	if err != nil {
		return failed(result, err)
	}
	present := make(map[int]bool, len(stats))
	for _, stat := range stats {
		present[stat.Index] = true
	}

	source, err := migrator.works.InlineSource(context, id)
	if err != nil {
		return failed(result, err)
	}

	currentTime := migrator.now()
	for index := 0; index < max(target.PageCount, 1); index++ {
		if present[index] {
			continue
		}

		inlinePage := work.InlinePage{Content: delta.Empty}
		if index < len(source) {
			inlinePage = source[index]
		}
		page := externalize(id, index, inlinePage, currentTime)
		result.Pages++

		if !options.Apply {
			result.Written++
			continue
		}

		err := migrator.retry(context, func() error {
			return migrator.pages.InsertPage(context, page)
		})
		if apperr.HasCode(err, apperr.CodeConflict) {
			// Written concurrently since PageStats; keep that page
			continue
		}
		if err != nil {
			return failed(result, err)
		}
		result.Written++
	}

	reconciled := migrator.reconciler.ReconcileWork(context, id, options.Apply)
	if reconciled.Action == ActionFailed {
		result.Action = ActionFailed
		result.Error = reconciled.Error
		return result
	}
	result.Renumbered = reconciled.Renumbered
	result.WordCount = reconciled.WordCount

	if options.Apply {
		migrator.invalidate(context, id)
		migrator.logger.Info("layout_work_repaired",
			slog.String("work_id", id),
			slog.Int("pages_written", result.Written),
			slog.Int("renumbered", result.Renumbered),
		)
	}

	return result
}

// # Internal Helpers

// retry runs a storage write with bounded backoff. Client errors such as
// conflicts are returned at once.
func (migrator *Migrator) retry(context context.Context, write func() error) error {
	return retry.Do(write,
		retry.Context(context),
		retry.Attempts(writeAttempts),
		retry.Delay(migrator.delay),
		retry.RetryIf(func(err error) bool { return !apperr.IsClientError(err) }),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			migrator.logger.Warn("layout_write_retry", slog.Uint64("attempt", uint64(attempt+1)), slog.Any("error", err))
		}),
	)
}

func (migrator *Migrator) invalidate(context context.Context, id string) {
	if migrator.invalidator != nil {
		migrator.invalidator.Invalidate(context, id)
	}
}

// externalize converts an inline page to a page record. Missing timestamps
// fall back to the migration time.
func externalize(workID string, index int, inlinePage work.InlinePage, at time.Time) *work.Page {
	createdAt := at
	if inlinePage.CreatedAt != nil {
		createdAt = *inlinePage.CreatedAt
	}
	updatedAt := createdAt
	if inlinePage.UpdatedAt != nil {
		updatedAt = *inlinePage.UpdatedAt
	}

	return &work.Page{
		WorkID:    workID,
		Index:     index,
		Content:   inlinePage.Content,
		WordCount: inlinePage.WordCount(),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}
