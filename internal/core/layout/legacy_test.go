// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package layout

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/folio/internal/core/work"
	"github.com/taibuivan/folio/pkg/uuid"
)

const legacyExport = `{"_id":{"$oid":"65f1c2a9b3e4d5f6a7b8c9d0"},"author":{"$oid":"64aa00000000000000000001"},"title":"第一部","content":[{"content":{"ops":[{"insert":"Hello 世界\n"}]},"createdAt":{"$date":"2024-01-02T03:04:05Z"}},{"ops":[{"insert":"bare delta page\n"}]}],"createdAt":{"$date":1704164645000}}
{"_id":"65f1c2a9b3e4d5f6a7b8c9d1","author":"64aa00000000000000000002","title":"Old pages","content":[],"pages":[{"content":{"ops":[{"insert":"from pages\n"}]}}]}

{"_id":"65f1c2a9b3e4d5f6a7b8c9d2","author":"64aa00000000000000000002","title":"Empty"}
not json
{"_id":"65f1c2a9b3e4d5f6a7b8c9d3","title":"No author"}
`

func TestImporter_OversizedLineFailsAlone(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	importer := NewImporter(store, discard)
	importer.maxLine = 256

	long := `{"_id":"65f1c2a9b3e4d5f6a7b8c9e0","author":"a","title":"` + strings.Repeat("x", 600) + `"}`
	input := long + "\n" + `{"_id":"65f1c2a9b3e4d5f6a7b8c9e1","author":"a","title":"Fits"}`

	report, err := importer.Import(ctx, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Read)
	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 1, report.Errors[0].Line)

	_, err = store.FindByID(ctx, uuid.FromLegacy("65f1c2a9b3e4d5f6a7b8c9e1"))
	assert.NoError(t, err)
}

func TestImporter_Import(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	importer := NewImporter(store, discard)

	report, err := importer.Import(ctx, strings.NewReader(legacyExport))
	require.NoError(t, err)
	assert.Equal(t, 5, report.Read)
	assert.Equal(t, 3, report.Imported)
	assert.Equal(t, 2, report.Failed)
	require.Len(t, report.Errors, 2)
	assert.Equal(t, 5, report.Errors[0].Line)
	assert.Equal(t, 6, report.Errors[1].Line)

	t.Run("extended_json_document", func(t *testing.T) {
		imported, err := store.FindByID(ctx, uuid.FromLegacy("65f1c2a9b3e4d5f6a7b8c9d0"))
		require.NoError(t, err)
		assert.Equal(t, work.LayoutInline, imported.LayoutMode)
		assert.Equal(t, "64aa00000000000000000001", imported.OwnerID)
		assert.Equal(t, 2, imported.PageCount)
		assert.Equal(t, 6, imported.TotalWordCount)
		assert.True(t, imported.CreatedAt.Equal(time.UnixMilli(1704164645000)))

		source, err := store.InlineSource(ctx, imported.ID)
		require.NoError(t, err)
		require.Len(t, source, 2)
		require.NotNil(t, source[0].CreatedAt)
		assert.Equal(t, 2024, source[0].CreatedAt.Year())
	})

	t.Run("legacy_pages_fallback", func(t *testing.T) {
		imported, err := store.FindByID(ctx, uuid.FromLegacy("65f1c2a9b3e4d5f6a7b8c9d1"))
		require.NoError(t, err)
		assert.Equal(t, 1, imported.PageCount)
		assert.Equal(t, 2, imported.TotalWordCount)
	})

	t.Run("no_pages_is_one_empty_page", func(t *testing.T) {
		imported, err := store.FindByID(ctx, uuid.FromLegacy("65f1c2a9b3e4d5f6a7b8c9d2"))
		require.NoError(t, err)
		assert.Equal(t, 1, imported.PageCount)
		assert.Zero(t, imported.TotalWordCount)
	})

	t.Run("reimport_skips_existing", func(t *testing.T) {
		again, err := importer.Import(ctx, strings.NewReader(legacyExport))
		require.NoError(t, err)
		assert.Zero(t, again.Imported)
		assert.Equal(t, 3, again.Skipped)
	})

	t.Run("imported_works_migrate", func(t *testing.T) {
		report, err := newMigrator(store, store).Run(ctx, MigrateOptions{Apply: true})
		require.NoError(t, err)
		assert.Equal(t, 3, report.Migrated)

		migrated, err := store.FindByID(ctx, uuid.FromLegacy("65f1c2a9b3e4d5f6a7b8c9d1"))
		require.NoError(t, err)
		page, err := store.FindPage(ctx, migrated.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, page.WordCount)
	})
}
