// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package layout

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/folio/internal/core/work"
)

func externalizedWork(t *testing.T, store work.Store, indices ...int) string {
	t.Helper()
	ctx := context.Background()
	service := work.NewService(store, store, nil, discard)

	created, err := service.CreateWork(ctx, owner, "Ext", []json.RawMessage{textDelta("seed")})
	require.NoError(t, err)

	for _, index := range indices {
		if index == 0 {
			continue
		}
		require.NoError(t, store.InsertPage(ctx, &work.Page{
			WorkID: created.ID, Index: index, Content: textDelta("two words"), WordCount: 2,
			CreatedAt: time.Now(), UpdatedAt: time.Now(),
		}))
		require.NoError(t, store.AdjustAggregates(ctx, created.ID, 1, 2, time.Now()))
	}
	return created.ID
}

func TestReconciler_ReconcileWork(t *testing.T) {
	ctx := context.Background()

	t.Run("consistent_work_is_untouched", func(t *testing.T) {
		store := newStore(t)
		id := externalizedWork(t, store, 0)

		result := NewReconciler(store, store, nil, discard).ReconcileWork(ctx, id, true)
		assert.Equal(t, ActionUnchanged, result.Action)
	})

	t.Run("gap_is_compacted", func(t *testing.T) {
		store := newStore(t)
		id := externalizedWork(t, store, 0, 2, 3)

		result := NewReconciler(store, store, nil, discard).ReconcileWork(ctx, id, true)
		assert.Equal(t, ActionRenumbered, result.Action)
		assert.Equal(t, 2, result.Renumbered)

		reconciled, err := store.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 3, reconciled.PageCount)
		assert.Equal(t, 5, reconciled.TotalWordCount)

		stats, err := store.PageStats(ctx, id)
		require.NoError(t, err)
		for position, stat := range stats {
			assert.Equal(t, position, stat.Index)
		}
	})

	t.Run("stale_total_is_rewritten", func(t *testing.T) {
		store := newStore(t)
		id := externalizedWork(t, store, 0, 1)
		require.NoError(t, store.AdjustAggregates(ctx, id, 0, 40, time.Now()))

		result := NewReconciler(store, store, nil, discard).ReconcileWork(ctx, id, true)
		assert.Equal(t, ActionAggregatesFixed, result.Action)

		reconciled, err := store.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 3, reconciled.TotalWordCount)
	})

	t.Run("dry_run_reports_without_writing", func(t *testing.T) {
		store := newStore(t)
		id := externalizedWork(t, store, 0, 4)

		result := NewReconciler(store, store, nil, discard).ReconcileWork(ctx, id, false)
		assert.Equal(t, ActionRenumbered, result.Action)

		stats, err := store.PageStats(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 4, stats[1].Index)
	})
}

func TestReconciler_Run(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	healthy := externalizedWork(t, store, 0, 1)
	broken := externalizedWork(t, store, 0, 5)
	seedInline(t, store, 2)

	report, err := NewReconciler(store, store, nil, discard).Run(ctx, ReconcileOptions{Apply: true, BatchSize: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, report.Reconciled)

	byID := map[string]Action{}
	for _, result := range report.Works {
		byID[result.WorkID] = result.Action
	}
	assert.Equal(t, ActionUnchanged, byID[healthy])
	assert.Equal(t, ActionRenumbered, byID[broken])
}
