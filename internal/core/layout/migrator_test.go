// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package layout

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/folio/internal/core/delta"
	"github.com/taibuivan/folio/internal/core/work"
	"github.com/taibuivan/folio/internal/platform/apperr"
	"github.com/taibuivan/folio/pkg/uuid"
)

func TestMigrator_DropInline(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seeded := seedInline(t, store, 5)

	report, err := newMigrator(store, store).Run(ctx, MigrateOptions{Apply: true, DropInline: true})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Migrated)
	assert.Equal(t, 5, report.PagesWritten)

	migrated, err := store.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, work.LayoutExternalized, migrated.LayoutMode)
	assert.Equal(t, 5, migrated.PageCount)
	assert.Equal(t, seeded.TotalWordCount, migrated.TotalWordCount)
	assert.NotNil(t, migrated.MigratedAt)

	count, err := store.CountPages(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	placeholder, err := store.InlineSource(ctx, seeded.ID)
	require.NoError(t, err)
	require.Len(t, placeholder, 1)
	assert.JSONEq(t, string(delta.Empty), string(placeholder[0].Content))
}

func TestMigrator_RoundTripPreservesPages(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seeded := seedInline(t, store, 4)

	before, err := store.InlineSource(ctx, seeded.ID)
	require.NoError(t, err)

	_, err = newMigrator(store, store).Run(ctx, MigrateOptions{Apply: true})
	require.NoError(t, err)

	after, err := store.ListRange(ctx, seeded.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, after, len(before))

	for i, page := range after {
		assert.Equal(t, i, page.Index)
		assert.JSONEq(t, string(before[i].Content), string(page.Content))
		assert.Equal(t, before[i].WordCount(), page.WordCount)
		assert.True(t, before[i].CreatedAt.Equal(page.CreatedAt), "inline timestamps carry over")
	}

	kept, err := store.InlineSource(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Len(t, kept, 4, "inline copy is kept by default")
}

func TestMigrator_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seeded := seedInline(t, store, 3)
	migrator := newMigrator(store, store)

	_, err := migrator.Run(ctx, MigrateOptions{Apply: true})
	require.NoError(t, err)

	first, err := store.ListRange(ctx, seeded.ID, 0, 10)
	require.NoError(t, err)
	firstWork, err := store.FindByID(ctx, seeded.ID)
	require.NoError(t, err)

	// Migrating the same work again, directly, writes nothing new.
	result := migrator.MigrateWork(ctx, seeded.ID, MigrateOptions{Apply: true})
	assert.Equal(t, ActionMigrated, result.Action)
	assert.Zero(t, result.Written)

	second, err := store.ListRange(ctx, seeded.ID, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(first, second))

	secondWork, err := store.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, firstWork.MigratedAt, secondWork.MigratedAt)

	// A full re-run finds no candidates.
	report, err := migrator.Run(ctx, MigrateOptions{Apply: true})
	require.NoError(t, err)
	assert.Zero(t, report.Scanned)
}

func TestMigrator_DryRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seeded := seedInline(t, store, 2)

	report, err := newMigrator(store, store).Run(ctx, MigrateOptions{})
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	require.Len(t, report.Works, 1)
	assert.Equal(t, 2, report.Works[0].Pages)
	assert.Equal(t, seeded.TotalWordCount, report.Works[0].WordCount)
	assert.Zero(t, report.PagesWritten)

	unchanged, err := store.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, work.LayoutInline, unchanged.LayoutMode)

	count, err := store.CountPages(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMigrator_ManyWorksInBatches(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	for i := 0; i < 7; i++ {
		seedInline(t, store, 1+i%3)
	}

	report, err := newMigrator(store, store).Run(ctx, MigrateOptions{Apply: true, BatchSize: 2, Concurrency: 3})
	require.NoError(t, err)
	assert.Equal(t, 7, report.Scanned)
	assert.Equal(t, 7, report.Migrated)
	assert.Zero(t, report.Failed)

	remaining, err := store.ListCandidates(ctx, work.CandidateFilter{Mode: work.CandidatesInline, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestMigrator_RetriesTransientWrites(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seeded := seedInline(t, store, 2)

	flaky := &flakyPages{PageStore: store}
	flaky.failures.Store(2)

	report, err := newMigrator(store, flaky).Run(ctx, MigrateOptions{Apply: true})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Migrated)

	count, err := store.CountPages(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMigrator_FailureIsReportedAndRunContinues(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedInline(t, store, 1)
	seedInline(t, store, 1)

	flaky := &flakyPages{PageStore: store}
	flaky.failures.Store(writeAttempts)

	report, err := newMigrator(store, flaky).Run(ctx, MigrateOptions{Apply: true, Concurrency: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Migrated)

	remaining, err := store.ListCandidates(ctx, work.CandidateFilter{Mode: work.CandidatesInline, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, remaining, 1, "the failed work stays inline for the next run")
}

func TestMigrator_SingleWork(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	target := seedInline(t, store, 2)
	other := seedInline(t, store, 2)
	migrator := newMigrator(store, store)

	report, err := migrator.Run(ctx, MigrateOptions{Apply: true, WorkID: target.ID})
	require.NoError(t, err)
	require.Len(t, report.Works, 1)
	assert.Equal(t, target.ID, report.Works[0].WorkID)

	untouched, err := store.FindByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, work.LayoutInline, untouched.LayoutMode)

	t.Run("already_externalized_is_skipped", func(t *testing.T) {
		report, err := migrator.Run(ctx, MigrateOptions{Apply: true, WorkID: target.ID})
		require.NoError(t, err)
		require.Len(t, report.Works, 1)
		assert.Equal(t, ActionSkipped, report.Works[0].Action)
	})

	t.Run("unknown_work", func(t *testing.T) {
		_, err := migrator.Run(ctx, MigrateOptions{WorkID: uuid.New()})
		assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
	})
}

func TestMigrator_RepairWritesOnlyMissingPages(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seeded := seedInline(t, store, 4)
	migrator := newMigrator(store, store)

	_, err := migrator.Run(ctx, MigrateOptions{Apply: true})
	require.NoError(t, err)

	// An author edits page 0 after migration, then pages 2 and 3 go missing.
	edited := textDelta("edited after migration")
	previous, err := store.ReplaceContent(ctx, seeded.ID, 0, edited, 3, time.Now())
	require.NoError(t, err)
	require.NoError(t, store.AdjustAggregates(ctx, seeded.ID, 0, 3-previous, time.Now()))
	_, err = store.DeletePage(ctx, seeded.ID, 3)
	require.NoError(t, err)
	_, err = store.DeletePage(ctx, seeded.ID, 2)
	require.NoError(t, err)

	report, err := migrator.Run(ctx, MigrateOptions{Apply: true, Repair: true})
	require.NoError(t, err)
	require.Equal(t, 1, report.Repaired)
	assert.Equal(t, 2, report.Works[0].Written)

	page0, err := store.FindPage(ctx, seeded.ID, 0)
	require.NoError(t, err)
	assert.JSONEq(t, string(edited), string(page0.Content), "existing pages are never overwritten")

	source, err := store.InlineSource(ctx, seeded.ID)
	require.NoError(t, err)
	page3, err := store.FindPage(ctx, seeded.ID, 3)
	require.NoError(t, err)
	assert.JSONEq(t, string(source[3].Content), string(page3.Content))

	repaired, err := store.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	stats, err := store.PageStats(ctx, seeded.ID)
	require.NoError(t, err)
	total := 0
	for _, stat := range stats {
		total += stat.WordCount
	}
	assert.Equal(t, 4, repaired.PageCount)
	assert.Equal(t, total, repaired.TotalWordCount)

	again, err := migrator.Run(ctx, MigrateOptions{Apply: true, Repair: true})
	require.NoError(t, err)
	assert.Zero(t, again.Scanned, "a repaired work is no longer a candidate")
}

func TestMigrator_RepairPastInlineSourceWritesEmptyPages(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seeded := seedInline(t, store, 1)
	migrator := newMigrator(store, store)

	_, err := migrator.Run(ctx, MigrateOptions{Apply: true})
	require.NoError(t, err)
	require.NoError(t, store.SetAggregates(ctx, seeded.ID, 3, 4, time.Now()))

	report, err := migrator.Run(ctx, MigrateOptions{Apply: true, Repair: true, WorkID: seeded.ID})
	require.NoError(t, err)
	require.Equal(t, 1, report.Repaired)

	page2, err := store.FindPage(ctx, seeded.ID, 2)
	require.NoError(t, err)
	assert.Zero(t, page2.WordCount)
}
