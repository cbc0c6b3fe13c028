// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

//go:build integration

package work_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/folio/internal/core/delta"
	"github.com/taibuivan/folio/internal/core/work"
	"github.com/taibuivan/folio/internal/platform/apperr"
	"github.com/taibuivan/folio/internal/platform/migration"
	"github.com/taibuivan/folio/internal/platform/postgres"
	"github.com/taibuivan/folio/pkg/uuid"
)

// Run with: FOLIO_TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/core/work/
const databaseURLEnv = "FOLIO_TEST_DATABASE_URL"

func newPostgresStore(t *testing.T) work.Store {
	t.Helper()

	dsn := os.Getenv(databaseURLEnv)
	if dsn == "" {
		t.Skipf("%s is not set", databaseURLEnv)
	}

	logger := slog.New(slog.DiscardHandler)
	migrations, err := filepath.Abs(filepath.Join("..", "..", "..", "data", "migrations"))
	require.NoError(t, err)
	require.NoError(t, migration.RunUp(dsn, migrations, logger))

	pool, err := postgres.NewPool(context.Background(), dsn, logger)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return work.NewPostgresStore(pool)
}

func newPostgresService(t *testing.T) (*work.Service, work.Store) {
	t.Helper()
	store := newPostgresStore(t)
	return work.NewService(store, store, nil, slog.New(slog.DiscardHandler)), store
}

func TestPostgresStore_PageMutations(t *testing.T) {
	ctx := context.Background()
	service, store := newPostgresService(t)

	created, err := service.CreateWork(ctx, owner, "Alpha",
		[]json.RawMessage{textDelta(t, "one"), textDelta(t, "two words"), textDelta(t, "three")})
	require.NoError(t, err)

	change, err := service.EditPage(ctx, owner, created.ID, 1, textDelta(t, "now four words here"))
	require.NoError(t, err)
	assert.Equal(t, 2, change.WordDelta)

	change, err = service.AppendPage(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, change.Index)

	_, err = service.DeletePage(ctx, owner, created.ID, 0)
	require.NoError(t, err)

	stored := requireConsistent(t, store, created.ID)
	assert.Equal(t, 3, stored.PageCount)
	assert.Equal(t, 5, stored.TotalWordCount)

	_, err = store.ReplaceContent(ctx, created.ID, 9, textDelta(t, "x"), 1, time.Now())
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

func TestPostgresStore_ConcurrentDeletesKeepOnePage(t *testing.T) {
	ctx := context.Background()
	setup, store := newPostgresService(t)

	created, err := setup.CreateWork(ctx, owner, "Pair", []json.RawMessage{textDelta(t, "one"), textDelta(t, "two")})
	require.NoError(t, err)

	barrier := newLoadBarrier(store, 2)
	service := work.NewService(barrier, barrier, nil, slog.New(slog.DiscardHandler))

	errs := runTogether(
		func() error { _, err := service.DeletePage(ctx, owner, created.ID, 1); return err },
		func() error { _, err := service.DeletePage(ctx, owner, created.ID, 0); return err },
	)

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
			assert.True(t, apperr.HasCode(err, apperr.CodeLastPageProtected), "unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, failed)
	requireConsistent(t, store, created.ID)
}

func TestPostgresStore_AppendRacingDelete(t *testing.T) {
	ctx := context.Background()
	setup, store := newPostgresService(t)

	created, err := setup.CreateWork(ctx, owner, "Trio",
		[]json.RawMessage{textDelta(t, "one"), textDelta(t, "two"), textDelta(t, "three")})
	require.NoError(t, err)

	barrier := newLoadBarrier(store, 2)
	service := work.NewService(barrier, barrier, nil, slog.New(slog.DiscardHandler))

	errs := runTogether(
		func() error { _, err := service.DeletePage(ctx, owner, created.ID, 0); return err },
		func() error { _, err := service.AppendPage(ctx, owner, created.ID); return err },
	)
	for _, err := range errs {
		require.NoError(t, err)
	}

	stored := requireConsistent(t, store, created.ID)
	assert.Equal(t, 3, stored.PageCount)
}

func TestPostgresStore_InlineWindow(t *testing.T) {
	ctx := context.Background()
	store := newPostgresStore(t)
	seeded := seedInline(t, store, "a", "b", "c", "d", "e")

	window, err := store.InlineWindow(ctx, seeded.ID, 1, 2)
	require.NoError(t, err)
	require.Len(t, window, 2)
	assert.Equal(t, "b\n", delta.PlainText(delta.Parse(window[0].Content)))
	assert.Equal(t, "c\n", delta.PlainText(delta.Parse(window[1].Content)))

	window, err = store.InlineWindow(ctx, seeded.ID, 5, 2)
	require.NoError(t, err)
	assert.Empty(t, window)

	bare := &work.Work{ID: uuid.New(), OwnerID: owner, Title: "Bare", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, store.CreateInline(ctx, bare, []work.InlinePage{}, nil))
	window, err = store.InlineWindow(ctx, bare.ID, 0, 10)
	require.NoError(t, err)
	assert.Len(t, window, 1)
}

func TestPostgresStore_RepairAndRenumber(t *testing.T) {
	ctx := context.Background()
	service, store := newPostgresService(t)

	broken, err := service.CreateWork(ctx, owner, "", []json.RawMessage{textDelta(t, "a"), textDelta(t, "b")})
	require.NoError(t, err)
	require.NoError(t, store.SetAggregates(ctx, broken.ID, 3, 2, time.Now()))

	ids, err := store.ListCandidates(ctx, work.CandidateFilter{Mode: work.CandidatesRepair, WorkID: broken.ID, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{broken.ID}, ids)

	seeded := seedInline(t, store)
	now := time.Now()
	for _, index := range []int{0, 2, 5} {
		require.NoError(t, store.InsertPage(ctx, &work.Page{
			WorkID: seeded.ID, Index: index, Content: textDelta(t, "p"), WordCount: 1, CreatedAt: now, UpdatedAt: now,
		}))
	}

	changed, err := store.Renumber(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	stats, err := store.PageStats(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, []work.PageStat{{Index: 0, WordCount: 1}, {Index: 1, WordCount: 1}, {Index: 2, WordCount: 1}}, stats)
}
