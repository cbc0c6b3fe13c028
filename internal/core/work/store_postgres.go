// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
PostgreSQL implementation of [Store].

Page content and inline page arrays are JSONB. Inline windows are sliced with
jsonb_array_elements so an un-migrated work is never shipped whole, and every
aggregate change is a single UPDATE with arithmetic in SQL.
*/
package work

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/folio/internal/core/delta"
	"github.com/taibuivan/folio/internal/platform/apperr"
	"github.com/taibuivan/folio/internal/platform/database/schema"
	"github.com/taibuivan/folio/internal/platform/dberr"
)

const (
	resourceWork = "Work"
	resourcePage = "Page"
)

var (
	workTable = schema.CoreWork
	pageTable = schema.CoreWorkPage
)

// postgresStore implements [Store] using pgx.
type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a PostgreSQL backed work and page store.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool}
}

// # Work Repository

func (store *postgresStore) Create(context context.Context, work *Work, pages []*Page) error {
	tx, err := store.pool.Begin(context)
	if err != nil {
		return dberr.Wrap(err, resourceWork)
	}
	defer func() { _ = tx.Rollback(context) }()

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		workTable.Table,
		workTable.ID, workTable.OwnerID, workTable.Title, workTable.LayoutMode,
		workTable.PageCount, workTable.TotalWordCount, workTable.CreatedAt, workTable.UpdatedAt,
	)

	_, err = tx.Exec(context, query,
		work.ID, work.OwnerID, work.Title, work.LayoutMode,
		work.PageCount, work.TotalWordCount, work.CreatedAt, work.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, resourceWork)
	}

	// All initial pages travel in one round-trip
	batch := &pgx.Batch{}
	for _, page := range pages {
		batch.Queue(insertPageQuery(), pageArgs(page)...)
	}

	if err := tx.SendBatch(context, batch).Close(); err != nil {
		return dberr.Wrap(err, resourcePage)
	}

	return dberr.Wrap(tx.Commit(context), resourceWork)
}

func (store *postgresStore) CreateInline(context context.Context, work *Work, inline, legacy []InlinePage) error {
	inlineJSON, err := marshalInline(inline)
	if err != nil {
		return apperr.Internal(err)
	}
	legacyJSON, err := marshalInline(legacy)
	if err != nil {
		return apperr.Internal(err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		workTable.Table,
		workTable.ID, workTable.OwnerID, workTable.Title, workTable.LayoutMode,
		workTable.PageCount, workTable.TotalWordCount, workTable.InlinePages, workTable.LegacyPages,
		workTable.CreatedAt, workTable.UpdatedAt,
	)

	_, err = store.pool.Exec(context, query,
		work.ID, work.OwnerID, work.Title, LayoutInline,
		work.PageCount, work.TotalWordCount, inlineJSON, legacyJSON,
		work.CreatedAt, work.UpdatedAt,
	)
	return dberr.Wrap(err, resourceWork)
}

func (store *postgresStore) FindByID(context context.Context, id string) (*Work, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(workTable.MetadataColumns(), ", "), workTable.Table, workTable.ID,
	)

	work, err := scanWork(store.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, resourceWork)
	}
	return work, nil
}

func (store *postgresStore) ListByOwner(context context.Context, ownerID string, limit, offset int) ([]*Work, int, error) {
	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`, workTable.Table, workTable.OwnerID)
	if err := store.pool.QueryRow(context, countQuery, ownerID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, resourceWork)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1
		ORDER BY %s DESC, %s DESC
		LIMIT $2 OFFSET $3`,
		strings.Join(workTable.MetadataColumns(), ", "), workTable.Table,
		workTable.OwnerID,
		workTable.CreatedAt, workTable.ID,
	)

	rows, err := store.pool.Query(context, query, ownerID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, resourceWork)
	}
	defer rows.Close()

	works := []*Work{}
	for rows.Next() {
		work, err := scanWork(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, resourceWork)
		}
		works = append(works, work)
	}

	return works, total, dberr.Wrap(rows.Err(), resourceWork)
}

func (store *postgresStore) AdjustAggregates(context context.Context, id string, pageDelta, wordDelta int, at time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = GREATEST(%s + $2, 0), %s = GREATEST(%s + $3, 0), %s = $4
		WHERE %s = $1`,
		workTable.Table,
		workTable.PageCount, workTable.PageCount,
		workTable.TotalWordCount, workTable.TotalWordCount,
		workTable.UpdatedAt,
		workTable.ID,
	)

	tag, err := store.pool.Exec(context, query, id, pageDelta, wordDelta, at)
	return affectedOne(tag.RowsAffected(), err, resourceWork)
}

func (store *postgresStore) SetAggregates(context context.Context, id string, pageCount, totalWordCount int, at time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4 WHERE %s = $1`,
		workTable.Table, workTable.PageCount, workTable.TotalWordCount, workTable.UpdatedAt, workTable.ID,
	)

	tag, err := store.pool.Exec(context, query, id, pageCount, totalWordCount, at)
	return affectedOne(tag.RowsAffected(), err, resourceWork)
}

func (store *postgresStore) MarkExternalized(context context.Context, id string, pageCount, totalWordCount int, at time.Time, dropInline bool) error {
	var queryBuilder strings.Builder
	args := []any{id, LayoutExternalized, pageCount, totalWordCount, at}

	queryBuilder.WriteString(fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = COALESCE(%s, $5), %s = $5`,
		workTable.Table,
		workTable.LayoutMode, workTable.PageCount, workTable.TotalWordCount,
		workTable.MigratedAt, workTable.MigratedAt, workTable.UpdatedAt,
	))

	if dropInline {
		placeholder, err := marshalInline([]InlinePage{EmptyInlinePage(at)})
		if err != nil {
			return apperr.Internal(err)
		}
		queryBuilder.WriteString(fmt.Sprintf(", %s = $6, %s = NULL", workTable.InlinePages, workTable.LegacyPages))
		args = append(args, placeholder)
	}

	queryBuilder.WriteString(fmt.Sprintf(" WHERE %s = $1", workTable.ID))

	tag, err := store.pool.Exec(context, queryBuilder.String(), args...)
	return affectedOne(tag.RowsAffected(), err, resourceWork)
}

func (store *postgresStore) InlineSource(context context.Context, id string) ([]InlinePage, error) {
	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1`,
		workTable.InlinePages, workTable.LegacyPages, workTable.Table, workTable.ID,
	)

	var inlineJSON, legacyJSON []byte
	if err := store.pool.QueryRow(context, query, id).Scan(&inlineJSON, &legacyJSON); err != nil {
		return nil, dberr.Wrap(err, resourceWork)
	}

	return InlineSource(DecodeInline(inlineJSON), DecodeInline(legacyJSON)), nil
}

func (store *postgresStore) InlineWindow(context context.Context, id string, offset, limit int) ([]InlinePage, error) {
	// The source array is chosen with the same precedence as [InlineSource]
	query := fmt.Sprintf(`
		SELECT element.value
		FROM %[1]s w
		CROSS JOIN LATERAL jsonb_array_elements(
			CASE
				WHEN jsonb_typeof(w.%[2]s) = 'array' AND w.%[2]s <> '[]'::jsonb THEN w.%[2]s
				WHEN jsonb_typeof(w.%[3]s) = 'array' AND w.%[3]s <> '[]'::jsonb THEN w.%[3]s
				ELSE '[]'::jsonb
			END
		) WITH ORDINALITY AS element(value, ordinal)
		WHERE w.%[4]s = $1
		ORDER BY element.ordinal
		OFFSET $2 LIMIT $3`,
		workTable.Table, workTable.InlinePages, workTable.LegacyPages, workTable.ID,
	)

	rows, err := store.pool.Query(context, query, id, offset, limit)
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

func (store *postgresStore) ListCandidates(context context.Context, filter CandidateFilter) ([]string, error) {
	var queryBuilder strings.Builder
	args := []any{}

	queryBuilder.WriteString(fmt.Sprintf(`SELECT w.%s FROM %s w`, workTable.ID, workTable.Table))

	switch filter.Mode {
	case CandidatesInline:
		args = append(args, LayoutInline)
		queryBuilder.WriteString(fmt.Sprintf(" WHERE w.%s = $1", workTable.LayoutMode))
	case CandidatesExternalized:
		args = append(args, LayoutExternalized)
		queryBuilder.WriteString(fmt.Sprintf(" WHERE w.%s = $1", workTable.LayoutMode))
	case CandidatesRepair:
		args = append(args, LayoutExternalized)
		queryBuilder.WriteString(fmt.Sprintf(`
			CROSS JOIN LATERAL (
				SELECT COUNT(*) AS n, MIN(%[1]s) AS lo, MAX(%[1]s) AS hi
				FROM %[2]s p WHERE p.%[3]s = w.%[4]s
			) stored
			WHERE w.%[5]s = $1
			  AND NOT (stored.n = w.%[6]s AND w.%[6]s > 0 AND stored.lo = 0 AND stored.hi = w.%[6]s - 1)`,
			pageTable.PageIndex, pageTable.Table, pageTable.WorkID, workTable.ID,
			workTable.LayoutMode, workTable.PageCount,
		))
	default:
		return nil, fmt.Errorf("postgres: unknown candidate mode %d", filter.Mode)
	}

	if filter.WorkID != "" {
		args = append(args, filter.WorkID)
		queryBuilder.WriteString(fmt.Sprintf(" AND w.%s = $%d", workTable.ID, len(args)))
	}
	if filter.AfterID != "" {
		args = append(args, filter.AfterID)
		queryBuilder.WriteString(fmt.Sprintf(" AND w.%s > $%d", workTable.ID, len(args)))
	}

	args = append(args, filter.Limit)
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY w.%s LIMIT $%d", workTable.ID, len(args)))

	rows, err := store.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, dberr.Wrap(err, resourceWork)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, dberr.Wrap(err, resourceWork)
	}
	return ids, nil
}

// # Page Store

func (store *postgresStore) FindPage(context context.Context, workID string, index int) (*Page, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		strings.Join(pageTable.Columns(), ", "), pageTable.Table, pageTable.WorkID, pageTable.PageIndex,
	)

	page, err := scanPage(store.pool.QueryRow(context, query, workID, index))
	if err != nil {
		return nil, dberr.Wrap(err, resourcePage)
	}
	return page, nil
}

func (store *postgresStore) ListRange(context context.Context, workID string, offset, limit int) ([]*Page, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1 AND %s >= $2 AND %s < $3
		ORDER BY %s`,
		strings.Join(pageTable.Columns(), ", "), pageTable.Table,
		pageTable.WorkID, pageTable.PageIndex, pageTable.PageIndex,
		pageTable.PageIndex,
	)

	rows, err := store.pool.Query(context, query, workID, offset, offset+limit)
	if err != nil {
		return nil, dberr.Wrap(err, resourcePage)
	}
	defer rows.Close()

	pages := []*Page{}
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, dberr.Wrap(err, resourcePage)
		}
		pages = append(pages, page)
	}

	return pages, dberr.Wrap(rows.Err(), resourcePage)
}

func (store *postgresStore) CountPages(context context.Context, workID string) (int, error) {
	var count int
	err := store.pool.QueryRow(context, countPagesQuery(pageTable.Table, "$1"), workID).Scan(&count)
	return count, dberr.Wrap(err, resourcePage)
}

func (store *postgresStore) InsertPage(context context.Context, page *Page) error {
	_, err := store.pool.Exec(context, insertPageQuery(), pageArgs(page)...)
	return dberr.Wrap(err, resourcePage)
}

func (store *postgresStore) AppendPage(context context.Context, page *Page) error {
	tx, err := store.pool.Begin(context)
	if err != nil {
		return dberr.Wrap(err, resourcePage)
	}
	defer func() { _ = tx.Rollback(context) }()

	if err := lockWork(context, tx, page.WorkID); err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s)
		SELECT $1, COALESCE(MAX(%[3]s) + 1, 0), $2::jsonb, $3::integer, $4::timestamptz, $5::timestamptz
		FROM %[1]s WHERE %[4]s = $1
		RETURNING %[3]s`,
		pageTable.Table, strings.Join(pageTable.Columns(), ", "), pageTable.PageIndex, pageTable.WorkID,
	)

	err = tx.QueryRow(context, query,
		page.WorkID, []byte(page.Content), page.WordCount, page.CreatedAt, page.UpdatedAt,
	).Scan(&page.Index)
	if err != nil {
		return dberr.Wrap(err, resourcePage)
	}

	return dberr.Wrap(tx.Commit(context), resourcePage)
}

func (store *postgresStore) UpsertPage(context context.Context, page *Page) (bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s AS existing (%[2]s) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (%[3]s, %[4]s) DO UPDATE
		SET %[5]s = EXCLUDED.%[5]s, %[6]s = EXCLUDED.%[6]s, %[7]s = EXCLUDED.%[7]s
		WHERE existing.%[5]s IS DISTINCT FROM EXCLUDED.%[5]s
		   OR existing.%[6]s <> EXCLUDED.%[6]s`,
		pageTable.Table, strings.Join(pageTable.Columns(), ", "),
		pageTable.WorkID, pageTable.PageIndex,
		pageTable.Content, pageTable.WordCount, pageTable.UpdatedAt,
	)

	tag, err := store.pool.Exec(context, query, pageArgs(page)...)
	if err != nil {
		return false, dberr.Wrap(err, resourcePage)
	}
	return tag.RowsAffected() > 0, nil
}

func (store *postgresStore) ReplaceContent(context context.Context, workID string, index int, content json.RawMessage, wordCount int, at time.Time) (int, error) {
	// The locking subquery returns the value this statement overwrote, even
	// when another writer committed in between.
	query := fmt.Sprintf(`
		UPDATE %[1]s p
		SET %[4]s = $3, %[5]s = $4, %[6]s = $5
		FROM (
			SELECT %[5]s FROM %[1]s WHERE %[2]s = $1 AND %[3]s = $2 FOR UPDATE
		) previous
		WHERE p.%[2]s = $1 AND p.%[3]s = $2
		RETURNING previous.%[5]s`,
		pageTable.Table, pageTable.WorkID, pageTable.PageIndex,
		pageTable.Content, pageTable.WordCount, pageTable.UpdatedAt,
	)

	var previous int
	err := store.pool.QueryRow(context, query, workID, index, []byte(content), wordCount, at).Scan(&previous)
	if err != nil {
		return 0, dberr.Wrap(err, resourcePage)
	}
	return previous, nil
}

func (store *postgresStore) DeletePage(context context.Context, workID string, index int) (int, error) {
	tx, err := store.pool.Begin(context)
	if err != nil {
		return 0, dberr.Wrap(err, resourcePage)
	}
	defer func() { _ = tx.Rollback(context) }()

	if err := lockWork(context, tx, workID); err != nil {
		return 0, err
	}

	var stored int
	if err := tx.QueryRow(context, countPagesQuery(pageTable.Table, "$1"), workID).Scan(&stored); err != nil {
		return 0, dberr.Wrap(err, resourcePage)
	}
	if stored <= 1 {
		return 0, ErrLastPage
	}

	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2 RETURNING %s`,
		pageTable.Table, pageTable.WorkID, pageTable.PageIndex, pageTable.WordCount,
	)

	var removed int
	if err := tx.QueryRow(context, deleteQuery, workID, index).Scan(&removed); err != nil {
		return 0, dberr.Wrap(err, resourcePage)
	}

	// Shift through negative space so no intermediate row collides on the key
	toNegative, backDown := shiftDownStatements(pageTable.Table)
	if _, err := tx.Exec(context, toNegative, workID, index); err != nil {
		return 0, dberr.Wrap(err, resourcePage)
	}
	if _, err := tx.Exec(context, backDown, workID); err != nil {
		return 0, dberr.Wrap(err, resourcePage)
	}

	if err := tx.Commit(context); err != nil {
		return 0, dberr.Wrap(err, resourcePage)
	}
	return removed, nil
}

func (store *postgresStore) PageStats(context context.Context, workID string) ([]PageStat, error) {
	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1 ORDER BY %s`,
		pageTable.PageIndex, pageTable.WordCount, pageTable.Table, pageTable.WorkID, pageTable.PageIndex,
	)

	rows, err := store.pool.Query(context, query, workID)
	if err != nil {
		return nil, dberr.Wrap(err, resourcePage)
	}

	stats, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (PageStat, error) {
		var stat PageStat
		err := row.Scan(&stat.Index, &stat.WordCount)
		return stat, err
	})
	return stats, dberr.Wrap(err, resourcePage)
}

func (store *postgresStore) Renumber(context context.Context, workID string) (int, error) {
	tx, err := store.pool.Begin(context)
	if err != nil {
		return 0, dberr.Wrap(err, resourcePage)
	}
	defer func() { _ = tx.Rollback(context) }()

	lockQuery := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s FOR UPDATE`,
		pageTable.PageIndex, pageTable.Table, pageTable.WorkID, pageTable.PageIndex,
	)
	rows, err := tx.Query(context, lockQuery, workID)
	if err != nil {
		return 0, dberr.Wrap(err, resourcePage)
	}
	indices, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return 0, dberr.Wrap(err, resourcePage)
	}

	changed := misplaced(indices)
	if changed == 0 {
		return 0, nil
	}

	for _, statement := range renumberStatements(pageTable.Table) {
		if _, err := tx.Exec(context, statement, workID); err != nil {
			return 0, dberr.Wrap(err, resourcePage)
		}
	}

	if err := tx.Commit(context); err != nil {
		return 0, dberr.Wrap(err, resourcePage)
	}
	return changed, nil
}

// # Shared SQL

func insertPageQuery() string {
	return fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6)`,
		pageTable.Table, strings.Join(pageTable.Columns(), ", "),
	)
}

func countPagesQuery(table, placeholder string) string {
	return fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = %s`, table, pageTable.WorkID, placeholder)
}

// lockWork takes the work row lock that serializes appends and deletes on
// one work. Statements after it see every page change committed before it.
func lockWork(context context.Context, tx pgx.Tx, workID string) error {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 FOR UPDATE`,
		workTable.ID, workTable.Table, workTable.ID,
	)

	var locked string
	return dberr.Wrap(tx.QueryRow(context, query, workID).Scan(&locked), resourceWork)
}

func pageArgs(page *Page) []any {
	return []any{page.WorkID, page.Index, []byte(page.Content), page.WordCount, page.CreatedAt, page.UpdatedAt}
}

// shiftDownStatements close the gap left at index $2: rows above it move to
// negative space ($1 work, $2 index), then come back one lower ($1 work).
func shiftDownStatements(table string) (string, string) {
	toNegative := fmt.Sprintf(`UPDATE %[1]s SET %[2]s = -%[2]s WHERE %[3]s = $1 AND %[2]s > $2`,
		table, pageTable.PageIndex, pageTable.WorkID)
	backDown := fmt.Sprintf(`UPDATE %[1]s SET %[2]s = -%[2]s - 1 WHERE %[3]s = $1 AND %[2]s < 0`,
		table, pageTable.PageIndex, pageTable.WorkID)
	return toNegative, backDown
}

// renumberStatements move every row to -1-index (reversing the order), then
// assign 0..n-1 by descending negative index, which is the original order.
func renumberStatements(table string) []string {
	return []string{
		fmt.Sprintf(`UPDATE %[1]s SET %[2]s = -1 - %[2]s WHERE %[3]s = $1`,
			table, pageTable.PageIndex, pageTable.WorkID),
		fmt.Sprintf(`
			UPDATE %[1]s SET %[2]s = ranked.position
			FROM (
				SELECT %[2]s AS current, ROW_NUMBER() OVER (ORDER BY %[2]s DESC) - 1 AS position
				FROM %[1]s WHERE %[3]s = $1
			) ranked
			WHERE %[1]s.%[3]s = $1 AND %[1]s.%[2]s = ranked.current`,
			table, pageTable.PageIndex, pageTable.WorkID),
	}
}

// misplaced counts indices that differ from their position in ascending order.
func misplaced(indices []int) int {
	changed := 0
	for position, index := range indices {
		if index != position {
			changed++
		}
	}
	return changed
}

// padEmptySource returns the single implicit empty page of a work whose
// inline arrays are both empty, when the window starts at zero.
func padEmptySource(pages []InlinePage, offset, limit int) []InlinePage {
	if len(pages) == 0 && offset == 0 && limit > 0 {
		return []InlinePage{{Content: delta.Empty}}
	}
	return pages
}

func marshalInline(pages []InlinePage) ([]byte, error) {
	if pages == nil {
		return nil, nil
	}
	return json.Marshal(pages)
}

func affectedOne(rows int64, err error, resource string) error {
	if err != nil {
		return dberr.Wrap(err, resource)
	}
	if rows == 0 {
		return apperr.NotFound(resource)
	}
	return nil
}

// # Row Mapping

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWork(row rowScanner) (*Work, error) {
	var work Work
	err := row.Scan(
		&work.ID,
		&work.OwnerID,
		&work.Title,
		&work.LayoutMode,
		&work.PageCount,
		&work.TotalWordCount,
		&work.MigratedAt,
		&work.CreatedAt,
		&work.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &work, nil
}

func scanPage(row rowScanner) (*Page, error) {
	var page Page
	var content []byte
	err := row.Scan(&page.WorkID, &page.Index, &content, &page.WordCount, &page.CreatedAt, &page.UpdatedAt)
	if err != nil {
		return nil, err
	}
	page.Content = json.RawMessage(content)
	return &page, nil
}
