// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package work

import (
	"context"
	"encoding/json"
	"time"
)

// # Work Data Access

// WorkRepository defines the data access contract for work rows.
type WorkRepository interface {

	/*
		Create persists a new externalized work together with its initial pages
		in one transaction.

		Returns:
		  - error: Conflict if the id exists, storage failures otherwise
	*/
	Create(context context.Context, work *Work, pages []*Page) error

	/*
		CreateInline persists a work in the inline layout, as imported from the
		legacy document database.

		Parameters:
		  - inline: []InlinePage (current embedded array)
		  - legacy: []InlinePage (historical alternate array, may be nil)
	*/
	CreateInline(context context.Context, work *Work, inline, legacy []InlinePage) error

	/*
		FindByID returns the work's metadata. Inline page arrays are never loaded.

		Returns:
		  - error: NotFound if missing
	*/
	FindByID(context context.Context, id string) (*Work, error)

	/*
		ListByOwner returns an owner's works, newest first.

		Returns:
		  - []*Work: The requested page
		  - int: Total works owned
	*/
	ListByOwner(context context.Context, ownerID string, limit, offset int) ([]*Work, int, error)

	/*
		AdjustAggregates applies signed deltas to page_count and total_word_count
		in a single atomic statement. Both results are floored at zero.
	*/
	AdjustAggregates(context context.Context, id string, pageDelta, wordDelta int, at time.Time) error

	/*
		SetAggregates overwrites page_count and total_word_count with recomputed values.
	*/
	SetAggregates(context context.Context, id string, pageCount, totalWordCount int, at time.Time) error

	/*
		MarkExternalized flips a work to the externalized layout and records its
		aggregates. migrated_at is only set when it is still empty.

		Parameters:
		  - dropInline: bool (replace inline_pages with one placeholder and clear legacy_pages)
	*/
	MarkExternalized(context context.Context, id string, pageCount, totalWordCount int, at time.Time, dropInline bool) error

	/*
		InlineSource returns the work's inline source (see [InlineSource]).
	*/
	InlineSource(context context.Context, id string) ([]InlinePage, error)

	/*
		InlineWindow slices the inline source inside the database, so large
		un-migrated works are never loaded whole.
	*/
	InlineWindow(context context.Context, id string, offset, limit int) ([]InlinePage, error)

	/*
		ListCandidates returns work ids ascending, strictly after filter.AfterID.
	*/
	ListCandidates(context context.Context, filter CandidateFilter) ([]string, error)
}

// # Page Data Access

// PageStore defines the data access contract for externalized pages.
// Single-page operations only lock the (work, index) row they touch.
type PageStore interface {

	/*
		FindPage returns one page.

		Returns:
		  - error: NotFound if (workID, index) does not exist
	*/
	FindPage(context context.Context, workID string, index int) (*Page, error)

	/*
		ListRange returns pages with index in [offset, offset+limit), ascending.
	*/
	ListRange(context context.Context, workID string, offset, limit int) ([]*Page, error)

	/*
		CountPages returns the number of page rows stored for the work.
	*/
	CountPages(context context.Context, workID string) (int, error)

	/*
		InsertPage stores a new page.

		Returns:
		  - error: Conflict if (workID, index) already exists
	*/
	InsertPage(context context.Context, page *Page) error

	/*
		AppendPage stores page one past the work's highest stored index and
		sets page.Index to that index. Appends and deletes on the same work
		are serialized, so the chosen index never leaves a gap.

		Returns:
		  - error: NotFound if the work does not exist
	*/
	AppendPage(context context.Context, page *Page) error

	/*
		UpsertPage inserts or replaces a page by its natural key. An existing
		row keeps its created_at, and is left untouched when content and word
		count already match.

		Returns:
		  - bool: Whether a row was inserted or changed
	*/
	UpsertPage(context context.Context, page *Page) (bool, error)

	/*
		ReplaceContent atomically replaces a page's content and word count.

		Returns:
		  - int: The word count that was overwritten
		  - error: NotFound if the page does not exist
	*/
	ReplaceContent(context context.Context, workID string, index int, content json.RawMessage, wordCount int, at time.Time) (int, error)

	/*
		DeletePage removes one page and shifts every higher index down by one,
		in one transaction. The stored page count is checked inside that
		transaction, so concurrent deletes cannot empty a work.

		Returns:
		  - int: The removed page's word count
		  - error: ErrLastPage if it is the work's only stored page, NotFound if the page does not exist
	*/
	DeletePage(context context.Context, workID string, index int) (int, error)

	/*
		PageStats lists (index, word_count) for every stored page, ascending.
	*/
	PageStats(context context.Context, workID string) ([]PageStat, error)

	/*
		Renumber compacts the work's page indices to [0, n) keeping their order.

		Returns:
		  - int: Number of pages whose index changed
	*/
	Renumber(context context.Context, workID string) (int, error)
}

// Store is a backend implementing both contracts over one database.
type Store interface {
	WorkRepository
	PageStore
}
