// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/folio/internal/platform/database/schema"
	"github.com/taibuivan/folio/internal/platform/dberr"
)

const resourceTag = "Tag"

var (
	tagTable  = schema.CoreWorkTag
	workTable = schema.CoreWork
)

// postgresStore implements [Store] using pgx.
type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a PostgreSQL backed tag store.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool}
}

func (store *postgresStore) Replace(context context.Context, workID string, tags []Tag) error {
	tx, err := store.pool.Begin(context)
	if err != nil {
		return dberr.Wrap(err, resourceTag)
	}
	defer func() { _ = tx.Rollback(context) }()

	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, tagTable.Table, tagTable.WorkID)
	if _, err := tx.Exec(context, deleteQuery, workID); err != nil {
		return dberr.Wrap(err, resourceTag)
	}

	insertQuery := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3)`,
		tagTable.Table, tagTable.WorkID, tagTable.TagKey, tagTable.Label,
	)

	batch := &pgx.Batch{}
	for _, tag := range tags {
		batch.Queue(insertQuery, workID, tag.Key, tag.Label)
	}
	if err := tx.SendBatch(context, batch).Close(); err != nil {
		return dberr.Wrap(err, resourceTag)
	}

	return dberr.Wrap(tx.Commit(context), resourceTag)
}

func (store *postgresStore) ListForWork(context context.Context, workID string) ([]Tag, error) {
	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1 ORDER BY %s`,
		tagTable.TagKey, tagTable.Label, tagTable.Table, tagTable.WorkID, tagTable.TagKey,
	)

	rows, err := store.pool.Query(context, query, workID)
	if err != nil {
		return nil, dberr.Wrap(err, resourceTag)
	}
	defer rows.Close()

	tags := make([]Tag, 0)
	for rows.Next() {
		var tag Tag
		if err := rows.Scan(&tag.Key, &tag.Label); err != nil {
			return nil, dberr.Wrap(err, resourceTag)
		}
		tags = append(tags, tag)
	}
	return tags, dberr.Wrap(rows.Err(), resourceTag)
}

func (store *postgresStore) ListWorkIDs(context context.Context, keys []string, limit, offset int) ([]string, int, error) {
	tagged := fmt.Sprintf(`EXISTS (SELECT 1 FROM %s t WHERE t.%s = w.%s AND t.%s = ANY($1))`,
		tagTable.Table, tagTable.WorkID, workTable.ID, tagTable.TagKey,
	)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s w WHERE %s`, workTable.Table, tagged)
	if err := store.pool.QueryRow(context, countQuery, keys).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, resourceTag)
	}

	query := fmt.Sprintf(`
		SELECT w.%s FROM %s w
		WHERE %s
		ORDER BY w.%s DESC, w.%s DESC
		LIMIT $2 OFFSET $3`,
		workTable.ID, workTable.Table, tagged, workTable.CreatedAt, workTable.ID,
	)

	rows, err := store.pool.Query(context, query, keys, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, resourceTag)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, 0, dberr.Wrap(err, resourceTag)
	}
	return ids, total, nil
}
