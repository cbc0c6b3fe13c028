// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

//go:build integration

package tag_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/folio/internal/core/tag"
	"github.com/taibuivan/folio/internal/core/work"
	"github.com/taibuivan/folio/internal/platform/migration"
	"github.com/taibuivan/folio/internal/platform/postgres"
)

// Run with: FOLIO_TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/core/tag/
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("FOLIO_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("FOLIO_TEST_DATABASE_URL is not set")
	}

	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	migrations, err := filepath.Abs(filepath.Join("..", "..", "..", "data", "migrations"))
	require.NoError(t, err)
	require.NoError(t, migration.RunUp(dsn, migrations, logger))

	pool, err := postgres.NewPool(ctx, dsn, logger)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	works := work.NewPostgresStore(pool)
	store := tag.NewPostgresStore(pool)
	tags := tag.NewService(store, works, logger)
	created, err := work.NewService(works, works, nil, logger).CreateWork(ctx, owner, "Tagged", nil)
	require.NoError(t, err)

	stored, err := tags.SetTags(ctx, owner, created.ID, []string{"Noir", "Slow Burn"})
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	stored, err = tags.SetTags(ctx, owner, created.ID, []string{"Noir"})
	require.NoError(t, err)
	assert.Equal(t, []tag.Tag{{Key: "noir", Label: "Noir"}}, stored)

	ids, total, err := store.ListWorkIDs(ctx, []string{"noir", "unused"}, 10, 0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, 1)
	assert.Contains(t, ids, created.ID)
}
