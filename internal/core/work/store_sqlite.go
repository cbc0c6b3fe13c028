// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package work

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/taibuivan/folio/internal/platform/apperr"
	"github.com/taibuivan/folio/internal/platform/dberr"
)

// sqliteStore implements [Store] over an embedded SQLite database.
//
// Timestamps are unix nanoseconds and JSON is TEXT. Inline windows are sliced
// with json_each, and multi-row page operations run inside one transaction.
type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore constructs a SQLite backed work and page store. The database
// must have been opened through the sqlite platform package.
func NewSQLiteStore(db *sql.DB) Store {
	return &sqliteStore{db: db}
}

// # Work Repository

func (store *sqliteStore) Create(context context.Context, work *Work, pages []*Page) error {
	tx, err := store.db.BeginTx(context, nil)
	if err != nil {
		return dberr.Wrap(err, resourceWork)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		workTable.Name,
		workTable.ID, workTable.OwnerID, workTable.Title, workTable.LayoutMode,
		workTable.PageCount, workTable.TotalWordCount, workTable.CreatedAt, workTable.UpdatedAt,
	)

	_, err = tx.ExecContext(context, query,
		work.ID, work.OwnerID, work.Title, string(work.LayoutMode),
		work.PageCount, work.TotalWordCount, nanos(work.CreatedAt), nanos(work.UpdatedAt),
	)
	if err != nil {
		return dberr.Wrap(err, resourceWork)
	}

	for _, page := range pages {
		if _, err := tx.ExecContext(context, sqliteInsertPage, sqlitePageArgs(page)...); err != nil {
			return dberr.Wrap(err, resourcePage)
		}
	}

	return dberr.Wrap(tx.Commit(), resourceWork)
}

func (store *sqliteStore) CreateInline(context context.Context, work *Work, inline, legacy []InlinePage) error {
	inlineJSON, err := marshalInline(inline)
	if err != nil {
		return apperr.Internal(err)
	}
	legacyJSON, err := marshalInline(legacy)
	if err != nil {
		return apperr.Internal(err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		workTable.Name,
		workTable.ID, workTable.OwnerID, workTable.Title, workTable.LayoutMode,
		workTable.PageCount, workTable.TotalWordCount, workTable.InlinePages, workTable.LegacyPages,
		workTable.CreatedAt, workTable.UpdatedAt,
	)

	_, err = store.db.ExecContext(context, query,
		work.ID, work.OwnerID, work.Title, string(LayoutInline),
		work.PageCount, work.TotalWordCount, nullableText(inlineJSON), nullableText(legacyJSON),
		nanos(work.CreatedAt), nanos(work.UpdatedAt),
	)
	return dberr.Wrap(err, resourceWork)
}

func (store *sqliteStore) FindByID(context context.Context, id string) (*Work, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ?`,
		strings.Join(workTable.MetadataColumns(), ", "), workTable.Name, workTable.ID,
	)

	work, err := scanSQLiteWork(store.db.QueryRowContext(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, resourceWork)
	}
	return work, nil
}

func (store *sqliteStore) ListByOwner(context context.Context, ownerID string, limit, offset int) ([]*Work, int, error) {
	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = ?`, workTable.Name, workTable.OwnerID)
	if err := store.db.QueryRowContext(context, countQuery, ownerID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, resourceWork)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ? ORDER BY %s DESC, %s DESC LIMIT ? OFFSET ?`,
		strings.Join(workTable.MetadataColumns(), ", "), workTable.Name,
		workTable.OwnerID, workTable.CreatedAt, workTable.ID,
	)

	rows, err := store.db.QueryContext(context, query, ownerID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, resourceWork)
	}
	defer rows.Close()

	works := []*Work{}
	for rows.Next() {
		work, err := scanSQLiteWork(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, resourceWork)
		}
		works = append(works, work)
	}

	return works, total, dberr.Wrap(rows.Err(), resourceWork)
}

func (store *sqliteStore) AdjustAggregates(context context.Context, id string, pageDelta, wordDelta int, at time.Time) error {
	query := fmt.Sprintf(`UPDATE %[1]s SET %[2]s = MAX(%[2]s + ?, 0), %[3]s = MAX(%[3]s + ?, 0), %[4]s = ? WHERE %[5]s = ?`,
		workTable.Name, workTable.PageCount, workTable.TotalWordCount, workTable.UpdatedAt, workTable.ID,
	)

	result, err := store.db.ExecContext(context, query, pageDelta, wordDelta, nanos(at), id)
	return sqliteAffectedOne(result, err, resourceWork)
}

func (store *sqliteStore) SetAggregates(context context.Context, id string, pageCount, totalWordCount int, at time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = ?, %s = ?, %s = ? WHERE %s = ?`,
		workTable.Name, workTable.PageCount, workTable.TotalWordCount, workTable.UpdatedAt, workTable.ID,
	)

	result, err := store.db.ExecContext(context, query, pageCount, totalWordCount, nanos(at), id)
	return sqliteAffectedOne(result, err, resourceWork)
}

func (store *sqliteStore) MarkExternalized(context context.Context, id string, pageCount, totalWordCount int, at time.Time, dropInline bool) error {
	var queryBuilder strings.Builder
	args := []any{string(LayoutExternalized), pageCount, totalWordCount, nanos(at), nanos(at)}

	queryBuilder.WriteString(fmt.Sprintf(`UPDATE %s SET %s = ?, %s = ?, %s = ?, %s = COALESCE(%s, ?), %s = ?`,
		workTable.Name,
		workTable.LayoutMode, workTable.PageCount, workTable.TotalWordCount,
		workTable.MigratedAt, workTable.MigratedAt, workTable.UpdatedAt,
	))

	if dropInline {
		placeholder, err := marshalInline([]InlinePage{EmptyInlinePage(at)})
		if err != nil {
			return apperr.Internal(err)
		}
		queryBuilder.WriteString(fmt.Sprintf(", %s = ?, %s = NULL", workTable.InlinePages, workTable.LegacyPages))
		args = append(args, string(placeholder))
	}

	queryBuilder.WriteString(fmt.Sprintf(" WHERE %s = ?", workTable.ID))
	args = append(args, id)

	result, err := store.db.ExecContext(context, queryBuilder.String(), args...)
	return sqliteAffectedOne(result, err, resourceWork)
}

func (store *sqliteStore) InlineSource(context context.Context, id string) ([]InlinePage, error) {
	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = ?`,
		workTable.InlinePages, workTable.LegacyPages, workTable.Name, workTable.ID,
	)

	var inlineJSON, legacyJSON sql.NullString
	if err := store.db.QueryRowContext(context, query, id).Scan(&inlineJSON, &legacyJSON); err != nil {
		return nil, dberr.Wrap(err, resourceWork)
	}

	return InlineSource(DecodeInline([]byte(inlineJSON.String)), DecodeInline([]byte(legacyJSON.String))), nil
}

func (store *sqliteStore) InlineWindow(context context.Context, id string, offset, limit int) ([]InlinePage, error) {
	query := fmt.Sprintf(`
		SELECT element.value
		FROM %[1]s w, json_each(
			CASE
				WHEN json_type(w.%[2]s) = 'array' AND json_array_length(w.%[2]s) > 0 THEN w.%[2]s
				WHEN json_type(w.%[3]s) = 'array' AND json_array_length(w.%[3]s) > 0 THEN w.%[3]s
				ELSE '[]'
			END
		) AS element
		WHERE w.%[4]s = ?
		ORDER BY element.key
		LIMIT ? OFFSET ?`,
		workTable.Name, workTable.InlinePages, workTable.LegacyPages, workTable.ID,
	)

	rows, err := store.db.QueryContext(context, query, id, limit, offset)
	if err != nil {
		return nil, dberr.Wrap(err, resourceWork)
	}
	defer rows.Close()

	var pages []InlinePage
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, dberr.Wrap(err, resourceWork)
		}
		var page InlinePage
		_ = page.UnmarshalJSON(raw)
		pages = append(pages, page)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, resourceWork)
	}

	return padEmptySource(pages, offset, limit), nil
}

func (store *sqliteStore) ListCandidates(context context.Context, filter CandidateFilter) ([]string, error) {
	var queryBuilder strings.Builder
	args := []any{}

	queryBuilder.WriteString(fmt.Sprintf(`SELECT w.%s FROM %s w WHERE w.%s = ?`,
		workTable.ID, workTable.Name, workTable.LayoutMode,
	))

	switch filter.Mode {
	case CandidatesInline:
		args = append(args, string(LayoutInline))
	case CandidatesExternalized:
		args = append(args, string(LayoutExternalized))
	case CandidatesRepair:
		args = append(args, string(LayoutExternalized))
		stored := func(aggregate string) string {
			return fmt.Sprintf(`(SELECT %s FROM %s p WHERE p.%s = w.%s)`,
				aggregate, pageTable.Name, pageTable.WorkID, workTable.ID)
		}
		queryBuilder.WriteString(fmt.Sprintf(` AND NOT (%s = w.%[4]s AND w.%[4]s > 0 AND %[2]s = 0 AND %[3]s = w.%[4]s - 1)`,
			stored("COUNT(*)"),
			stored("MIN("+pageTable.PageIndex+")"),
			stored("MAX("+pageTable.PageIndex+")"),
			workTable.PageCount,
		))
	default:
		return nil, fmt.Errorf("sqlite: unknown candidate mode %d", filter.Mode)
	}

	if filter.WorkID != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND w.%s = ?", workTable.ID))
		args = append(args, filter.WorkID)
	}
	if filter.AfterID != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND w.%s > ?", workTable.ID))
		args = append(args, filter.AfterID)
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY w.%s LIMIT ?", workTable.ID))
	args = append(args, filter.Limit)

	rows, err := store.db.QueryContext(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, dberr.Wrap(err, resourceWork)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, dberr.Wrap(err, resourceWork)
		}
		ids = append(ids, id)
	}
	return ids, dberr.Wrap(rows.Err(), resourceWork)
}

// # Page Store

func (store *sqliteStore) FindPage(context context.Context, workID string, index int) (*Page, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ? AND %s = ?`,
		strings.Join(pageTable.Columns(), ", "), pageTable.Name, pageTable.WorkID, pageTable.PageIndex,
	)

	page, err := scanSQLitePage(store.db.QueryRowContext(context, query, workID, index))
	if err != nil {
		return nil, dberr.Wrap(err, resourcePage)
	}
	return page, nil
}

func (store *sqliteStore) ListRange(context context.Context, workID string, offset, limit int) ([]*Page, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ? AND %s >= ? AND %s < ? ORDER BY %s`,
		strings.Join(pageTable.Columns(), ", "), pageTable.Name,
		pageTable.WorkID, pageTable.PageIndex, pageTable.PageIndex, pageTable.PageIndex,
	)

	rows, err := store.db.QueryContext(context, query, workID, offset, offset+limit)
	if err != nil {
		return nil, dberr.Wrap(err, resourcePage)
	}
	defer rows.Close()

	pages := []*Page{}
	for rows.Next() {
		page, err := scanSQLitePage(rows)
		if err != nil {
			return nil, dberr.Wrap(err, resourcePage)
		}
		pages = append(pages, page)
	}
	return pages, dberr.Wrap(rows.Err(), resourcePage)
}

func (store *sqliteStore) CountPages(context context.Context, workID string) (int, error) {
	var count int
	err := store.db.QueryRowContext(context, countPagesQuery(pageTable.Name, "?"), workID).Scan(&count)
	return count, dberr.Wrap(err, resourcePage)
}

func (store *sqliteStore) InsertPage(context context.Context, page *Page) error {
	_, err := store.db.ExecContext(context, sqliteInsertPage, sqlitePageArgs(page)...)
	return dberr.Wrap(err, resourcePage)
}

func (store *sqliteStore) AppendPage(context context.Context, page *Page) error {
	tx, err := store.db.BeginTx(context, nil)
	if err != nil {
		return dberr.Wrap(err, resourcePage)
	}
	defer func() { _ = tx.Rollback() }()

	if err := sqliteRequireWork(context, tx, page.WorkID); err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s)
		SELECT ?, COALESCE(MAX(%[3]s) + 1, 0), ?, ?, ?, ?
		FROM %[1]s WHERE %[4]s = ?
		RETURNING %[3]s`,
		pageTable.Name, strings.Join(pageTable.Columns(), ", "), pageTable.PageIndex, pageTable.WorkID,
	)

	err = tx.QueryRowContext(context, query,
		page.WorkID, string(page.Content), page.WordCount, nanos(page.CreatedAt), nanos(page.UpdatedAt), page.WorkID,
	).Scan(&page.Index)
	if err != nil {
		return dberr.Wrap(err, resourcePage)
	}

	return dberr.Wrap(tx.Commit(), resourcePage)
}

func (store *sqliteStore) UpsertPage(context context.Context, page *Page) (bool, error) {
	query := sqliteInsertPage + fmt.Sprintf(`
		ON CONFLICT (%[2]s, %[3]s) DO UPDATE
		SET %[4]s = excluded.%[4]s, %[5]s = excluded.%[5]s, %[6]s = excluded.%[6]s
		WHERE %[1]s.%[4]s IS NOT excluded.%[4]s OR %[1]s.%[5]s <> excluded.%[5]s`,
		pageTable.Name, pageTable.WorkID, pageTable.PageIndex,
		pageTable.Content, pageTable.WordCount, pageTable.UpdatedAt,
	)

	result, err := store.db.ExecContext(context, query, sqlitePageArgs(page)...)
	if err != nil {
		return false, dberr.Wrap(err, resourcePage)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, dberr.Wrap(err, resourcePage)
	}
	return affected > 0, nil
}

func (store *sqliteStore) ReplaceContent(context context.Context, workID string, index int, content json.RawMessage, wordCount int, at time.Time) (int, error) {
	tx, err := store.db.BeginTx(context, nil)
	if err != nil {
		return 0, dberr.Wrap(err, resourcePage)
	}
	defer func() { _ = tx.Rollback() }()

	selectQuery := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ? AND %s = ?`,
		pageTable.WordCount, pageTable.Name, pageTable.WorkID, pageTable.PageIndex,
	)

	var previous int
	if err := tx.QueryRowContext(context, selectQuery, workID, index).Scan(&previous); err != nil {
		return 0, dberr.Wrap(err, resourcePage)
	}

	updateQuery := fmt.Sprintf(`UPDATE %s SET %s = ?, %s = ?, %s = ? WHERE %s = ? AND %s = ?`,
		pageTable.Name, pageTable.Content, pageTable.WordCount, pageTable.UpdatedAt,
		pageTable.WorkID, pageTable.PageIndex,
	)
	if _, err := tx.ExecContext(context, updateQuery, string(content), wordCount, nanos(at), workID, index); err != nil {
		return 0, dberr.Wrap(err, resourcePage)
	}

	if err := tx.Commit(); err != nil {
		return 0, dberr.Wrap(err, resourcePage)
	}
	return previous, nil
}

func (store *sqliteStore) DeletePage(context context.Context, workID string, index int) (int, error) {
	tx, err := store.db.BeginTx(context, nil)
	if err != nil {
		return 0, dberr.Wrap(err, resourcePage)
	}
	defer func() { _ = tx.Rollback() }()

	var stored int
	if err := tx.QueryRowContext(context, countPagesQuery(pageTable.Name, "?"), workID).Scan(&stored); err != nil {
		return 0, dberr.Wrap(err, resourcePage)
	}
	if stored <= 1 {
		if err := sqliteRequireWork(context, tx, workID); err != nil {
			return 0, err
		}
		return 0, ErrLastPage
	}

	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = ? AND %s = ? RETURNING %s`,
		pageTable.Name, pageTable.WorkID, pageTable.PageIndex, pageTable.WordCount,
	)

	var removed int
	if err := tx.QueryRowContext(context, deleteQuery, workID, index).Scan(&removed); err != nil {
		return 0, dberr.Wrap(err, resourcePage)
	}

	toNegative, backDown := sqliteShiftDown()
	if _, err := tx.ExecContext(context, toNegative, workID, index); err != nil {
		return 0, dberr.Wrap(err, resourcePage)
	}
	if _, err := tx.ExecContext(context, backDown, workID); err != nil {
		return 0, dberr.Wrap(err, resourcePage)
	}

	if err := tx.Commit(); err != nil {
		return 0, dberr.Wrap(err, resourcePage)
	}
	return removed, nil
}

func (store *sqliteStore) PageStats(context context.Context, workID string) ([]PageStat, error) {
	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = ? ORDER BY %s`,
		pageTable.PageIndex, pageTable.WordCount, pageTable.Name, pageTable.WorkID, pageTable.PageIndex,
	)

	rows, err := store.db.QueryContext(context, query, workID)
	if err != nil {
		return nil, dberr.Wrap(err, resourcePage)
	}
	defer rows.Close()

	stats := []PageStat{}
	for rows.Next() {
		var stat PageStat
		if err := rows.Scan(&stat.Index, &stat.WordCount); err != nil {
			return nil, dberr.Wrap(err, resourcePage)
		}
		stats = append(stats, stat)
	}
	return stats, dberr.Wrap(rows.Err(), resourcePage)
}

func (store *sqliteStore) Renumber(context context.Context, workID string) (int, error) {
	tx, err := store.db.BeginTx(context, nil)
	if err != nil {
		return 0, dberr.Wrap(err, resourcePage)
	}
	defer func() { _ = tx.Rollback() }()

	indexQuery := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ? ORDER BY %s`,
		pageTable.PageIndex, pageTable.Name, pageTable.WorkID, pageTable.PageIndex,
	)
	rows, err := tx.QueryContext(context, indexQuery, workID)
	if err != nil {
		return 0, dberr.Wrap(err, resourcePage)
	}
	var indices []int
	for rows.Next() {
		var index int
		if err := rows.Scan(&index); err != nil {
			rows.Close()
			return 0, dberr.Wrap(err, resourcePage)
		}
		indices = append(indices, index)
	}
	rows.Close()

	changed := misplaced(indices)
	if changed == 0 {
		return 0, nil
	}

	reverse := fmt.Sprintf(`UPDATE %[1]s SET %[2]s = -1 - %[2]s WHERE %[3]s = ?`,
		pageTable.Name, pageTable.PageIndex, pageTable.WorkID)
	assign := fmt.Sprintf(`
		UPDATE %[1]s SET %[2]s = ranked.position
		FROM (
			SELECT %[2]s AS current, ROW_NUMBER() OVER (ORDER BY %[2]s DESC) - 1 AS position
			FROM %[1]s WHERE %[3]s = ?
		) AS ranked
		WHERE %[1]s.%[3]s = ? AND %[1]s.%[2]s = ranked.current`,
		pageTable.Name, pageTable.PageIndex, pageTable.WorkID)

	if _, err := tx.ExecContext(context, reverse, workID); err != nil {
		return 0, dberr.Wrap(err, resourcePage)
	}
	if _, err := tx.ExecContext(context, assign, workID, workID); err != nil {
		return 0, dberr.Wrap(err, resourcePage)
	}

	if err := tx.Commit(); err != nil {
		return 0, dberr.Wrap(err, resourcePage)
	}
	return changed, nil
}

// # Shared SQL

var sqliteInsertPage = fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?)`,
	pageTable.Name, strings.Join(pageTable.Columns(), ", "),
)

func sqliteShiftDown() (string, string) {
	toNegative := fmt.Sprintf(`UPDATE %[1]s SET %[2]s = -%[2]s WHERE %[3]s = ? AND %[2]s > ?`,
		pageTable.Name, pageTable.PageIndex, pageTable.WorkID)
	backDown := fmt.Sprintf(`UPDATE %[1]s SET %[2]s = -%[2]s - 1 WHERE %[3]s = ? AND %[2]s < 0`,
		pageTable.Name, pageTable.PageIndex, pageTable.WorkID)
	return toNegative, backDown
}

// sqliteRequireWork reports NotFound for an unknown work inside tx. The pool
// holds a single connection, so a transaction already excludes other writers.
func sqliteRequireWork(context context.Context, tx *sql.Tx, workID string) error {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ?`, workTable.ID, workTable.Name, workTable.ID)

	var found string
	return dberr.Wrap(tx.QueryRowContext(context, query, workID).Scan(&found), resourceWork)
}

func sqlitePageArgs(page *Page) []any {
	return []any{page.WorkID, page.Index, string(page.Content), page.WordCount, nanos(page.CreatedAt), nanos(page.UpdatedAt)}
}

func sqliteAffectedOne(result sql.Result, err error, resource string) error {
	if err != nil {
		return dberr.Wrap(err, resource)
	}
	rows, err := result.RowsAffected()
	return affectedOne(rows, err, resource)
}

func nanos(t time.Time) int64 {
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func nullableText(raw []byte) any {
	if raw == nil {
		return nil
	}
	return string(raw)
}

// # Row Mapping

func scanSQLiteWork(row rowScanner) (*Work, error) {
	var work Work
	var layout string
	var migratedAt sql.NullInt64
	var createdAt, updatedAt int64

	err := row.Scan(
		&work.ID,
		&work.OwnerID,
		&work.Title,
		&layout,
		&work.PageCount,
		&work.TotalWordCount,
		&migratedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	work.LayoutMode = LayoutMode(layout)
	work.CreatedAt = fromNanos(createdAt)
	work.UpdatedAt = fromNanos(updatedAt)
	if migratedAt.Valid {
		at := fromNanos(migratedAt.Int64)
		work.MigratedAt = &at
	}
	return &work, nil
}

func scanSQLitePage(row rowScanner) (*Page, error) {
	var page Page
	var content string
	var createdAt, updatedAt int64

	if err := row.Scan(&page.WorkID, &page.Index, &content, &page.WordCount, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	page.Content = json.RawMessage(content)
	page.CreatedAt = fromNanos(createdAt)
	page.UpdatedAt = fromNanos(updatedAt)
	return &page, nil
}
