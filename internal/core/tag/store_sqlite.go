// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/taibuivan/folio/internal/platform/dberr"
	"github.com/taibuivan/folio/pkg/slice"
)

// sqliteStore implements [Store] over the embedded SQLite backend.
type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore constructs a SQLite backed tag store.
func NewSQLiteStore(db *sql.DB) Store {
	return &sqliteStore{db: db}
}

func (store *sqliteStore) Replace(context context.Context, workID string, tags []Tag) error {
	tx, err := store.db.BeginTx(context, nil)
	if err != nil {
		return dberr.Wrap(err, resourceTag)
	}
	defer func() { _ = tx.Rollback() }()

	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, tagTable.Name, tagTable.WorkID)
	if _, err := tx.ExecContext(context, deleteQuery, workID); err != nil {
		return dberr.Wrap(err, resourceTag)
	}

	insertQuery := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES (?, ?, ?)`,
		tagTable.Name, tagTable.WorkID, tagTable.TagKey, tagTable.Label,
	)
	for _, tag := range tags {
		if _, err := tx.ExecContext(context, insertQuery, workID, tag.Key, tag.Label); err != nil {
			return dberr.Wrap(err, resourceTag)
		}
	}

	return dberr.Wrap(tx.Commit(), resourceTag)
}

func (store *sqliteStore) ListForWork(context context.Context, workID string) ([]Tag, error) {
	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = ? ORDER BY %s`,
		tagTable.TagKey, tagTable.Label, tagTable.Name, tagTable.WorkID, tagTable.TagKey,
	)

	rows, err := store.db.QueryContext(context, query, workID)
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

func (store *sqliteStore) ListWorkIDs(context context.Context, keys []string, limit, offset int) ([]string, int, error) {
	if len(keys) == 0 {
		return []string{}, 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(keys)), ", ")
	tagged := fmt.Sprintf(`EXISTS (SELECT 1 FROM %s t WHERE t.%s = w.%s AND t.%s IN (%s))`,
		tagTable.Name, tagTable.WorkID, workTable.ID, tagTable.TagKey, placeholders,
	)
	args := slice.Map(keys, func(key string) any { return key })

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s w WHERE %s`, workTable.Name, tagged)
	if err := store.db.QueryRowContext(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, resourceTag)
	}

	query := fmt.Sprintf(`
		SELECT w.%s FROM %s w
		WHERE %s
		ORDER BY w.%s DESC, w.%s DESC
		LIMIT ? OFFSET ?`,
		workTable.ID, workTable.Name, tagged, workTable.CreatedAt, workTable.ID,
	)

	rows, err := store.db.QueryContext(context, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, resourceTag)
	}
	defer rows.Close()

	ids := make([]string, 0, limit)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, 0, dberr.Wrap(err, resourceTag)
		}
		ids = append(ids, id)
	}
	return ids, total, dberr.Wrap(rows.Err(), resourceTag)
}
