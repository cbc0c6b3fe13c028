// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package reader serves bounded windows of a work's pages.

A window is an offset/limit slice of pages in index order. Callers see the
same shape whether the work is still inline or already externalized: inline
windows are sliced inside the database and their word counts are computed on
the fly.

Windows may be cached. Each work has a version counter that every page
mutation bumps, and cache keys embed that version, so a write makes all of
the work's cached windows unreachable at once.
*/
package reader

import (
	"context"
	"encoding/json"
)

// Page is one page of a window.
type Page struct {
	Index     int             `json:"index"`
	Content   json.RawMessage `json:"content"`
	WordCount int             `json:"word_count"`
}

// Window is a contiguous run of pages plus the work's total page count.
type Window struct {
	Pages     []Page `json:"pages"`
	PageCount int    `json:"page_count"`
	HasMore   bool   `json:"has_more"`
}

// Cache stores rendered windows keyed by work version.
type Cache interface {

	/*
		Version returns the work's current window version. Unknown works are at 0.
	*/
	Version(context context.Context, workID string) (int64, error)

	/*
		Load returns a cached window.

		Returns:
		  - *Window: nil on a miss
	*/
	Load(context context.Context, key string) (*Window, error)

	/*
		Store caches a window under key.
	*/
	Store(context context.Context, key string, window *Window) error

	/*
		Bump advances the work's version, orphaning every cached window.
	*/
	Bump(context context.Context, workID string) error
}
