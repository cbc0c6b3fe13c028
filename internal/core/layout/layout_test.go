// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package layout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/taibuivan/folio/internal/core/work"
	"github.com/taibuivan/folio/internal/platform/sqlite"
	"github.com/taibuivan/folio/pkg/uuid"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const owner = "owner-1"

var discard = slog.New(slog.DiscardHandler)

func newStore(t *testing.T) work.Store {
	t.Helper()
	db, err := sqlite.Open(context.Background(), sqlite.MemoryPath, discard)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return work.NewSQLiteStore(db)
}

func newMigrator(works work.WorkRepository, pages work.PageStore) *Migrator {
	migrator := NewMigrator(works, pages, nil, discard)
	migrator.delay = time.Millisecond
	return migrator
}

func textDelta(text string) json.RawMessage {
	raw, _ := json.Marshal(map[string]any{"ops": []map[string]any{{"insert": text + "\n"}}})
	return raw
}

// seedInline stores an inline work whose page i reads "page i has words".
func seedInline(t *testing.T, store work.Store, pages int) *work.Work {
	t.Helper()
	created := time.Date(2023, 3, 1, 12, 0, 0, 0, time.UTC)

	inline := make([]work.InlinePage, pages)
	total := 0
	for i := range inline {
		inline[i] = work.InlinePage{Content: textDelta(fmt.Sprintf("page %d has words", i)), CreatedAt: &created, UpdatedAt: &created}
		total += inline[i].WordCount()
	}

	seeded := &work.Work{
		ID: uuid.New(), OwnerID: owner, Title: "Inline", LayoutMode: work.LayoutInline,
		PageCount: pages, TotalWordCount: total, CreatedAt: created, UpdatedAt: created,
	}
	require.NoError(t, store.CreateInline(context.Background(), seeded, inline, nil))
	return seeded
}

// flakyPages fails the first n writes with a transient error.
type flakyPages struct {
	work.PageStore
	failures atomic.Int32
}

var errTransient = errors.New("connection reset by peer")

func (f *flakyPages) UpsertPage(ctx context.Context, page *work.Page) (bool, error) {
	if f.failures.Add(-1) >= 0 {
		return false, errTransient
	}
	return f.PageStore.UpsertPage(ctx, page)
}
