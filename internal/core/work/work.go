// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package work owns works, their pages and the aggregates derived from them.

A work's pages live in one of two physical layouts:

  - inline: the legacy shape, an array of page documents embedded in the work row.
  - externalized: one independently addressable row per page, keyed by (work, index).

Every write path in this package targets externalized works. Inline works are
read-only until the layout migrator converts them; after that the work's
layout never goes back.

The [Service] keeps page_count and total_word_count correct by applying
signed deltas on each page mutation instead of re-summing the document.
*/
package work

import (
	"encoding/json"
	"time"

	"github.com/taibuivan/folio/internal/core/delta"
)

// LayoutMode is the physical layout of a work's pages.
type LayoutMode string

const (
	LayoutInline       LayoutMode = "inline"
	LayoutExternalized LayoutMode = "externalized"
)

// MaxTitleLength bounds the work title, in runes.
const MaxTitleLength = 200

// Work is the aggregate root for one story.
type Work struct {
	ID             string     `json:"id"`
	OwnerID        string     `json:"owner_id"`
	Title          string     `json:"title"`
	LayoutMode     LayoutMode `json:"layout_mode"`
	PageCount      int        `json:"page_count"`
	TotalWordCount int        `json:"total_word_count"`
	MigratedAt     *time.Time `json:"migrated_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Externalized reports whether the work's pages are individual records.
func (w *Work) Externalized() bool {
	return w.LayoutMode == LayoutExternalized
}

// View is the public representation of a work, with a first-page excerpt.
type View struct {
	*Work
	Excerpt string `json:"excerpt"`
}

// Page is one externalized page record.
type Page struct {
	WorkID    string          `json:"work_id"`
	Index     int             `json:"index"`
	Content   json.RawMessage `json:"content"`
	WordCount int             `json:"word_count"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// PageStat is a page's position and word count without its content.
type PageStat struct {
	Index     int
	WordCount int
}

// # Inline Layout

// InlinePage is one element of an inline work's embedded page array.
//
// Historical records hold either {"content": <delta>, "createdAt": ...,
// "updatedAt": ...} or a bare delta {"ops": [...]}. Both decode here; any
// other value decodes to an empty page. Encoding always produces the first form.
type InlinePage struct {
	Content   json.RawMessage `json:"content"`
	CreatedAt *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt *time.Time      `json:"updatedAt,omitempty"`
}

// UnmarshalJSON implements tolerant decoding. It never returns an error.
func (p *InlinePage) UnmarshalJSON(raw []byte) error {
	*p = InlinePage{Content: delta.Empty}

	var fields map[string]json.RawMessage
	if json.Unmarshal(raw, &fields) != nil || fields == nil {
		return nil
	}

	switch {
	case delta.Valid(fields["content"]):
		p.Content = fields["content"]
		p.CreatedAt = ParseTimestamp(fields["createdAt"])
		p.UpdatedAt = ParseTimestamp(fields["updatedAt"])
	case delta.Valid(raw):
		p.Content = raw
	}
	return nil
}

// WordCount counts the words of the page's content.
func (p InlinePage) WordCount() int {
	return delta.CountRaw(p.Content)
}

// EmptyInlinePage returns the placeholder left behind when inline copies are dropped.
func EmptyInlinePage(at time.Time) InlinePage {
	return InlinePage{Content: delta.Empty, CreatedAt: &at, UpdatedAt: &at}
}

// ParseTimestamp decodes an RFC 3339 string, optionally wrapped as
// {"$date": ...} the way document database exports write dates. Epoch
// milliseconds are accepted inside the wrapper. Anything else is nil.
func ParseTimestamp(raw json.RawMessage) *time.Time {
	if len(raw) == 0 {
		return nil
	}

	var wrapped struct {
		Date json.RawMessage `json:"$date"`
	}
	if json.Unmarshal(raw, &wrapped) == nil && len(wrapped.Date) > 0 {
		var millis int64
		if json.Unmarshal(wrapped.Date, &millis) == nil && millis != 0 {
			parsed := time.UnixMilli(millis).UTC()
			return &parsed
		}
		raw = wrapped.Date
	}

	var parsed time.Time
	if json.Unmarshal(raw, &parsed) != nil || parsed.IsZero() {
		return nil
	}
	return &parsed
}

// DecodeInline decodes an embedded page array. A missing or malformed array is empty.
func DecodeInline(raw []byte) []InlinePage {
	if len(raw) == 0 {
		return nil
	}
	var pages []InlinePage
	if json.Unmarshal(raw, &pages) != nil {
		return nil
	}
	return pages
}

// InlineSource picks the pages a migration reads: the first non-empty of the
// current and legacy arrays, or a single empty page.
func InlineSource(current, legacy []InlinePage) []InlinePage {
	switch {
	case len(current) > 0:
		return current
	case len(legacy) > 0:
		return legacy
	default:
		return []InlinePage{{Content: delta.Empty}}
	}
}

// # Listing

// CandidateMode selects which works [WorkRepository.ListCandidates] returns.
type CandidateMode int

const (
	// CandidatesInline selects works still in the inline layout.
	CandidatesInline CandidateMode = iota
	// CandidatesRepair selects externalized works whose page rows are not
	// exactly [0, page_count).
	CandidatesRepair
	// CandidatesExternalized selects every externalized work.
	CandidatesExternalized
)

// CandidateFilter is a keyset-paginated query over work ids.
type CandidateFilter struct {
	Mode    CandidateMode
	WorkID  string
	AfterID string
	Limit   int
}
