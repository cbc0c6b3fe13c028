// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package sqlite opens the embedded SQLite backend used for single-node
deployments, operator tooling and tests.

The schema mirrors data/migrations with three differences:
tables are unqualified, timestamps are INTEGER unix nanoseconds, and JSON
documents are stored as TEXT. Bootstrapping is idempotent, so [Open] can be
called on an existing file.
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	// Registers the pure-Go "sqlite" driver.
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

var pragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA busy_timeout = 5000",
}

var ddl = []string{
	`CREATE TABLE IF NOT EXISTS work (
		id             TEXT PRIMARY KEY,
		ownerid        TEXT    NOT NULL,
		title          TEXT    NOT NULL,
		layoutmode     TEXT    NOT NULL DEFAULT 'externalized'
		               CHECK (layoutmode IN ('inline', 'externalized')),
		pagecount      INTEGER NOT NULL DEFAULT 0 CHECK (pagecount >= 0),
		totalwordcount INTEGER NOT NULL DEFAULT 0 CHECK (totalwordcount >= 0),
		migratedat     INTEGER,
		inlinepages    TEXT,
		legacypages    TEXT,
		createdat      INTEGER NOT NULL,
		updatedat      INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_work_owner ON work (ownerid, createdat DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_work_layout ON work (layoutmode, id)`,
	`CREATE TABLE IF NOT EXISTS workpage (
		workid    TEXT    NOT NULL REFERENCES work (id) ON DELETE CASCADE,
		pageindex INTEGER NOT NULL,
		content   TEXT    NOT NULL,
		wordcount INTEGER NOT NULL DEFAULT 0 CHECK (wordcount >= 0),
		createdat INTEGER NOT NULL,
		updatedat INTEGER NOT NULL,
		PRIMARY KEY (workid, pageindex)
	)`,
	`CREATE TABLE IF NOT EXISTS worktag (
		workid TEXT NOT NULL REFERENCES work (id) ON DELETE CASCADE,
		tagkey TEXT NOT NULL,
		label  TEXT NOT NULL,
		PRIMARY KEY (workid, tagkey)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_worktag_key ON worktag (tagkey, workid)`,
}

// Open opens (or creates) the database at path and applies the schema.
//
// The pool is pinned to one connection: SQLite serialises writers anyway, and
// an in-memory database exists only for the connection that created it.
func Open(ctx context.Context, path string, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	statements := append([]string{}, pragmas...)
	if path != MemoryPath {
		statements = append(statements, "PRAGMA journal_mode = WAL")
	}
	statements = append(statements, ddl...)

	for _, statement := range statements {
		if _, err := db.ExecContext(ctx, statement); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: failed to bootstrap schema: %w", err)
		}
	}

	logger.Info("sqlite_database_ready", slog.String("path", path))
	return db, nil
}
