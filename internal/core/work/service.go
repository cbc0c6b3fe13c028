// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package work

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/folio/internal/core/delta"
	"github.com/taibuivan/folio/internal/platform/apperr"
	"github.com/taibuivan/folio/internal/platform/constants"
	"github.com/taibuivan/folio/internal/platform/validate"
	"github.com/taibuivan/folio/pkg/uuid"
)

const (
	FieldOwnerID = "owner_id"
	FieldTitle   = "title"
	FieldPages   = "pages"
	FieldContent = "content"
	FieldIndex   = "index"
)

// Domain errors returned by the mutation paths.
var (
	ErrNotOwner          = apperr.Forbidden("Only the owner of a work can modify it")
	ErrUnsupportedLayout = apperr.FailedPrecondition(apperr.CodeUnsupportedLayout, "Work has not been migrated to the page layout yet")
	ErrLastPage          = apperr.FailedPrecondition(apperr.CodeLastPageProtected, "A work must keep at least one page")
	ErrAppendRace        = apperr.Conflict("Another writer claimed the same page index, retry the request")
)

// Invalidator is notified after a work's pages or aggregates change.
type Invalidator interface {
	Invalidate(context context.Context, workID string)
}

// PageChange describes the outcome of a page mutation.
type PageChange struct {
	Index     int   `json:"index"`
	WordCount int   `json:"word_count"`
	WordDelta int   `json:"word_delta"`
	Work      *Work `json:"work"`
}

// # Service Layer

// Service is the work aggregate manager. It owns every write to pages and
// keeps the work's aggregates in step with them.
type Service struct {
	works       WorkRepository
	pages       PageStore
	invalidator Invalidator
	now         func() time.Time
	logger      *slog.Logger
}

// NewService constructs a new [Service]. invalidator may be nil.
func NewService(works WorkRepository, pages PageStore, invalidator Invalidator, logger *slog.Logger) *Service {
	return &Service{
		works:       works,
		pages:       pages,
		invalidator: invalidator,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      logger,
	}
}

// # Reads

/*
GetWork returns a work's metadata with an excerpt of its first page.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *View: Metadata and excerpt
  - error: NotFound if the work does not exist
*/
func (service *Service) GetWork(context context.Context, id string) (*View, error) {
	work, err := service.find(context, id)
	if err != nil {
		return nil, err
	}

	first, err := service.firstPage(context, work)
	if err != nil {
		return nil, err
	}

	return &View{Work: work, Excerpt: delta.Excerpt(delta.Parse(first), constants.ExcerptRunes)}, nil
}

/*
ListOwnedWorks returns the caller's works, newest first.

Returns:
  - []*Work: The requested slice
  - int: Total number of works owned
*/
func (service *Service) ListOwnedWorks(context context.Context, ownerID string, limit, offset int) ([]*Work, int, error) {
	if err := (&validate.Validator{}).Required(FieldOwnerID, ownerID).Err(); err != nil {
		return nil, 0, err
	}
	return service.works.ListByOwner(context, ownerID, limit, offset)
}

// # Mutations

/*
CreateWork stores a new externalized work.

Description: Pages are written at indices 0..n-1 together with the work row.
A work created without pages gets one empty page.

Parameters:
  - ownerID: string (caller identity)
  - title: string
  - contents: []json.RawMessage (initial page deltas, may be empty)

Returns:
  - *Work: The stored work
  - error: VALIDATION_ERROR for a missing owner, a long title or a malformed page
*/
func (service *Service) CreateWork(context context.Context, ownerID, title string, contents []json.RawMessage) (*Work, error) {
	validator := &validate.Validator{}
	validator.Required(FieldOwnerID, ownerID)
	validator.MaxLen(FieldTitle, title, MaxTitleLength)
	for index, content := range contents {
		validator.Custom(fmt.Sprintf("%s[%d]", FieldPages, index), !delta.Valid(content), "Must be a rich-text delta")
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if len(contents) == 0 {
		contents = []json.RawMessage{delta.Empty}
	}

	currentTime := service.now()
	work := &Work{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		Title:      title,
		LayoutMode: LayoutExternalized,
		PageCount:  len(contents),
		CreatedAt:  currentTime,
		UpdatedAt:  currentTime,
	}

	pages := make([]*Page, len(contents))
	for index, content := range contents {
		wordCount := delta.CountRaw(content)
		work.TotalWordCount += wordCount
		pages[index] = &Page{
			WorkID:    work.ID,
			Index:     index,
			Content:   content,
			WordCount: wordCount,
			CreatedAt: currentTime,
			UpdatedAt: currentTime,
		}
	}

	if err := service.works.Create(context, work, pages); err != nil {
		return nil, err
	}

	service.logger.Info("work_created",
		slog.String("work_id", work.ID),
		slog.String("owner_id", ownerID),
		slog.Int("page_count", work.PageCount),
		slog.Int("total_word_count", work.TotalWordCount),
	)

	return work, nil
}

/*
EditPage replaces one page's content and adjusts the work's word total by
the difference.

Description: The page write and the aggregate write are independent. The
difference is taken against the word count the replace actually overwrote,
so a concurrent edit of the same page cannot skew the total.

Returns:
  - *PageChange: New word count, signed delta and the updated work
  - error: FORBIDDEN, UNSUPPORTED_LAYOUT, NOT_FOUND or VALIDATION_ERROR
*/
func (service *Service) EditPage(context context.Context, callerID, workID string, index int, content json.RawMessage) (*PageChange, error) {
	validator := &validate.Validator{}
	validator.Min(FieldIndex, index, 0)
	validator.Custom(FieldContent, !delta.Valid(content), "Must be a rich-text delta")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	work, err := service.loadOwned(context, callerID, workID)
	if err != nil {
		return nil, err
	}
	if index >= work.PageCount {
		return nil, apperr.NotFound(resourcePage)
	}

	currentTime := service.now()
	wordCount := delta.CountRaw(content)

	previous, err := service.pages.ReplaceContent(context, workID, index, content, wordCount, currentTime)
	if err != nil {
		return nil, err
	}

	wordDelta := wordCount - previous
	if err := service.adjust(context, work, 0, wordDelta, currentTime); err != nil {
		return nil, err
	}

	service.logger.Info("page_edited",
		slog.String("work_id", workID),
		slog.Int("index", index),
		slog.Int("word_delta", wordDelta),
	)

	return &PageChange{Index: index, WordCount: wordCount, WordDelta: wordDelta, Work: work}, nil
}

/*
AppendPage adds an empty page after the last stored one.

Description: The store picks the index under the same lock deletes take, so
an append racing a delete still lands at the end of a contiguous range.

Returns:
  - *PageChange: The new page's index and the updated work
  - error: CONFLICT when another writer claimed the same index
*/
func (service *Service) AppendPage(context context.Context, callerID, workID string) (*PageChange, error) {
	work, err := service.loadOwned(context, callerID, workID)
	if err != nil {
		return nil, err
	}

	currentTime := service.now()
	page := &Page{
		WorkID:    workID,
		Content:   delta.Empty,
		CreatedAt: currentTime,
		UpdatedAt: currentTime,
	}

	if err := service.pages.AppendPage(context, page); err != nil {
		if apperr.HasCode(err, apperr.CodeConflict) {
			return nil, ErrAppendRace.WithCause(err)
		}
		return nil, err
	}

	if err := service.adjust(context, work, 1, 0, currentTime); err != nil {
		return nil, err
	}

	service.logger.Info("page_appended",
		slog.String("work_id", workID),
		slog.Int("index", page.Index),
	)

	return &PageChange{Index: page.Index, Work: work}, nil
}

/*
DeletePage removes a page and shifts the following pages down by one.

Description: The single-page rule is checked again by the store inside the
delete transaction, against the pages actually stored.

Returns:
  - *PageChange: The removed index, its word count (as a negative delta) and the updated work
  - error: LAST_PAGE_PROTECTED when the work has a single page
*/
func (service *Service) DeletePage(context context.Context, callerID, workID string, index int) (*PageChange, error) {
	if err := (&validate.Validator{}).Min(FieldIndex, index, 0).Err(); err != nil {
		return nil, err
	}

	work, err := service.loadOwned(context, callerID, workID)
	if err != nil {
		return nil, err
	}
	if work.PageCount <= 1 {
		return nil, ErrLastPage
	}
	if index >= work.PageCount {
		return nil, apperr.NotFound(resourcePage)
	}

	removed, err := service.pages.DeletePage(context, workID, index)
	if err != nil {
		return nil, err
	}

	currentTime := service.now()
	if err := service.adjust(context, work, -1, -removed, currentTime); err != nil {
		return nil, err
	}

	service.logger.Info("page_deleted",
		slog.String("work_id", workID),
		slog.Int("index", index),
		slog.Int("removed_words", removed),
	)

	return &PageChange{Index: index, WordCount: removed, WordDelta: -removed, Work: work}, nil
}

// # Internal Helpers

// find loads a work, mapping ids that cannot exist to NOT_FOUND.
func (service *Service) find(context context.Context, id string) (*Work, error) {
	if !uuid.Valid(id) {
		return nil, apperr.NotFound(resourceWork)
	}
	return service.works.FindByID(context, id)
}

// loadOwned enforces the preconditions shared by every page mutation:
// the caller owns the work and the work is externalized.
func (service *Service) loadOwned(context context.Context, callerID, workID string) (*Work, error) {
	work, err := service.find(context, workID)
	if err != nil {
		return nil, err
	}
	if callerID == "" || callerID != work.OwnerID {
		return nil, ErrNotOwner
	}
	if !work.Externalized() {
		return nil, ErrUnsupportedLayout
	}
	return work, nil
}

// adjust applies aggregate deltas in storage, mirrors them on work and
// invalidates cached windows.
func (service *Service) adjust(context context.Context, work *Work, pageDelta, wordDelta int, at time.Time) error {
	defer service.invalidate(context, work.ID)

	if pageDelta != 0 || wordDelta != 0 {
		if err := service.works.AdjustAggregates(context, work.ID, pageDelta, wordDelta, at); err != nil {
			service.logger.Error("aggregate_update_failed",
				slog.String("work_id", work.ID),
				slog.Int("page_delta", pageDelta),
				slog.Int("word_delta", wordDelta),
				slog.Any("error", err),
			)
			return err
		}
	}

	work.PageCount = max(work.PageCount+pageDelta, 0)
	work.TotalWordCount = max(work.TotalWordCount+wordDelta, 0)
	work.UpdatedAt = at
	return nil
}

func (service *Service) invalidate(context context.Context, workID string) {
	if service.invalidator != nil {
		service.invalidator.Invalidate(context, workID)
	}
}

// firstPage returns the content of page 0 in either layout.
func (service *Service) firstPage(context context.Context, work *Work) (json.RawMessage, error) {
	if !work.Externalized() {
		inline, err := service.works.InlineWindow(context, work.ID, 0, 1)
		if err != nil || len(inline) == 0 {
			return nil, err
		}
		return inline[0].Content, nil
	}

	page, err := service.pages.FindPage(context, work.ID, 0)
	if apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return page.Content, nil
}
