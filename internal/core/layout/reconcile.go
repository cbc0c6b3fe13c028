// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package layout

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/folio/internal/core/delta"
	"github.com/taibuivan/folio/internal/core/work"
	"github.com/taibuivan/folio/internal/platform/apperr"
)

// ReconcileOptions selects the works a reconcile job visits.
type ReconcileOptions struct {
	WorkID      string
	Apply       bool
	Concurrency int
	BatchSize   int
}

// Reconciler recomputes externalized works' aggregates and index contiguity
// from their stored pages. It closes the windows left by the two-write edit
// path and by interrupted deletes.
type Reconciler struct {
	works       work.WorkRepository
	pages       work.PageStore
	invalidator work.Invalidator
	now         func() time.Time
	logger      *slog.Logger
}

// NewReconciler constructs a [Reconciler]. invalidator may be nil.
func NewReconciler(works work.WorkRepository, pages work.PageStore, invalidator work.Invalidator, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		works:       works,
		pages:       pages,
		invalidator: invalidator,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      logger,
	}
}

/*
Run reconciles every externalized work, or the one named by options.WorkID.

Returns:
  - *Report: Per-work outcomes
  - error: Listing failures or cancellation; per-work failures are in the report
*/
func (reconciler *Reconciler) Run(runContext context.Context, options ReconcileOptions) (*Report, error) {
	report := &Report{DryRun: !options.Apply}

	filter := work.CandidateFilter{Mode: work.CandidatesExternalized, WorkID: options.WorkID, Limit: options.BatchSize}
	err := scan(runContext, reconciler.works, filter, options.Concurrency, func(ctx context.Context, id string) {
		report.record(reconciler.ReconcileWork(ctx, id, options.Apply))
	})

	reconciler.logger.Info("layout_reconcile_finished",
		slog.Bool("dry_run", report.DryRun),
		slog.Int("scanned", report.Scanned),
		slog.Int("reconciled", report.Reconciled),
		slog.Int("failed", report.Failed),
	)

	return report, err
}

/*
ReconcileWork repairs one externalized work.

Description: Page indices that are not exactly [0, n) are compacted in their
current order. page_count and total_word_count are then rewritten from the
stored pages if they differ. A work left with no pages gets one empty page.
With apply false nothing is written and the result describes what would change.
*/
func (reconciler *Reconciler) ReconcileWork(context context.Context, id string, apply bool) WorkResult {
	result := WorkResult{WorkID: id, Action: ActionUnchanged}

	target, err := reconciler.works.FindByID(context, id)
	if err != nil {
		return failed(result, err)
	}
	if !target.Externalized() {
		result.Action = ActionSkipped
		result.Reason = "work is not externalized"
		return result
	}

	stats, err := reconciler.pages.PageStats(context, id)
	if err != nil {
		return failed(result, err)
	}

	currentTime := reconciler.now()

	if len(stats) == 0 {
		stats = []work.PageStat{{Index: 0}}
		result.Written = 1
		if apply {
			err := reconciler.pages.InsertPage(context, &work.Page{
				WorkID: id, Index: 0, Content: delta.Empty, CreatedAt: currentTime, UpdatedAt: currentTime,
			})
			if err != nil {
				return failed(result, err)
			}
		}
	}

	result.Renumbered = misplacedCount(stats)
	if result.Renumbered > 0 && apply {
		if _, err := reconciler.pages.Renumber(context, id); err != nil {
			return failed(result, err)
		}
	}

	result.Pages = len(stats)
	for _, stat := range stats {
		result.WordCount += stat.WordCount
	}

	stale := result.Pages != target.PageCount || result.WordCount != target.TotalWordCount
	if stale && apply {
		if err := reconciler.works.SetAggregates(context, id, result.Pages, result.WordCount, currentTime); err != nil {
			return failed(result, err)
		}
	}

	switch {
	case result.Renumbered > 0 || result.Written > 0:
		result.Action = ActionRenumbered
	case stale:
		result.Action = ActionAggregatesFixed
	default:
		return result
	}

	if apply {
		if reconciler.invalidator != nil {
			reconciler.invalidator.Invalidate(context, id)
		}
		reconciler.logger.Info("layout_work_reconciled",
			slog.String("work_id", id),
			slog.String("action", string(result.Action)),
			slog.Int("renumbered", result.Renumbered),
			slog.Int("page_count", result.Pages),
			slog.Int("total_word_count", result.WordCount),
		)
	}

	return result
}

func misplacedCount(stats []work.PageStat) int {
	changed := 0
	for position, stat := range stats {
		if stat.Index != position {
			changed++
		}
	}
	return changed
}

// failed marks result as failed. Operators see the underlying cause, which
// the client-safe message of an [apperr.AppError] hides.
func failed(result WorkResult, err error) WorkResult {
	result.Action = ActionFailed
	result.Error = err.Error()
	if appErr := apperr.As(err); appErr != nil && appErr.Cause != nil {
		result.Error += ": " + appErr.Cause.Error()
	}
	return result
}
