// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reader

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/folio/internal/core/work"
	"github.com/taibuivan/folio/internal/platform/apperr"
	"github.com/taibuivan/folio/internal/platform/constants"
	"github.com/taibuivan/folio/pkg/uuid"
)

// # Service Layer

// Service is the batch reader.
type Service struct {
	works     work.WorkRepository
	pages     work.PageStore
	cache     Cache
	maxWindow int
	logger    *slog.Logger
}

// NewService constructs a new [Service]. cache may be nil.
func NewService(works work.WorkRepository, pages work.PageStore, cache Cache, maxWindow int, logger *slog.Logger) *Service {
	return &Service{
		works:     works,
		pages:     pages,
		cache:     cache,
		maxWindow: maxWindow,
		logger:    logger,
	}
}

/*
GetPageWindow returns up to limit pages starting at offset.

Description: limit is clamped to [1, max window]; a non-positive limit asks
for the maximum. Weak clients always get [constants.WeakConnectionWindow]
pages. An offset at or past the end yields an empty window, never an error.

Parameters:
  - workID: string (UUID)
  - offset: int (negative is treated as 0)
  - limit: int
  - weak: bool (constrained connection)

Returns:
  - *Window: Pages in index order
  - error: NotFound for an unknown work
*/
func (service *Service) GetPageWindow(context context.Context, workID string, offset, limit int, weak bool) (*Window, error) {
	if !uuid.Valid(workID) {
		return nil, apperr.NotFound("Work")
	}

	offset = max(offset, 0)
	limit = service.Clamp(limit, weak)

	key, cached := service.lookup(context, workID, offset, limit)
	if cached != nil {
		return cached, nil
	}

	window, err := service.read(context, workID, offset, limit)
	if err != nil {
		return nil, err
	}

	if key != "" {
		if err := service.cache.Store(context, key, window); err != nil {
			service.logger.Warn("reader_cache_store_failed", slog.String("work_id", workID), slog.Any("error", err))
		}
	}

	return window, nil
}

// Clamp applies the window bounds to a requested limit.
func (service *Service) Clamp(limit int, weak bool) int {
	if weak {
		return constants.WeakConnectionWindow
	}
	if limit <= 0 || limit > service.maxWindow {
		return service.maxWindow
	}
	return limit
}

// Invalidate drops every cached window of a work. Failures are logged; the
// stale entries expire with their TTL.
func (service *Service) Invalidate(context context.Context, workID string) {
	if service.cache == nil {
		return
	}
	if err := service.cache.Bump(context, workID); err != nil {
		service.logger.Warn("reader_cache_invalidate_failed", slog.String("work_id", workID), slog.Any("error", err))
	}
}

// # Internal Helpers

// lookup returns the cache key for the window and the cached window, if any.
// An empty key means the cache is disabled or unreachable.
func (service *Service) lookup(context context.Context, workID string, offset, limit int) (string, *Window) {
	if service.cache == nil {
		return "", nil
	}

	version, err := service.cache.Version(context, workID)
	if err != nil {
		service.logger.Warn("reader_cache_unavailable", slog.String("work_id", workID), slog.Any("error", err))
		return "", nil
	}

	key := WindowKey(workID, version, offset, limit)
	window, err := service.cache.Load(context, key)
	if err != nil {
		service.logger.Warn("reader_cache_load_failed", slog.String("work_id", workID), slog.Any("error", err))
		return key, nil
	}
	return key, window
}

func (service *Service) read(context context.Context, workID string, offset, limit int) (*Window, error) {
	target, err := service.works.FindByID(context, workID)
	if err != nil {
		return nil, err
	}

	window := &Window{Pages: []Page{}, PageCount: target.PageCount}
	if offset >= target.PageCount {
		return window, nil
	}

	if target.Externalized() {
		stored, err := service.pages.ListRange(context, workID, offset, limit)
		if err != nil {
			return nil, err
		}
		for _, page := range stored {
			window.Pages = append(window.Pages, Page{Index: page.Index, Content: page.Content, WordCount: page.WordCount})
		}
	} else {
		inline, err := service.works.InlineWindow(context, workID, offset, limit)
		if err != nil {
			return nil, err
		}
		for position, page := range inline {
			window.Pages = append(window.Pages, Page{Index: offset + position, Content: page.Content, WordCount: page.WordCount()})
		}
	}

	window.HasMore = offset+len(window.Pages) < window.PageCount
	return window, nil
}

// WindowKey is the cache key of one window at one work version.
func WindowKey(workID string, version int64, offset, limit int) string {
	return fmt.Sprintf("%s%s:v%d:%d:%d", constants.RedisPrefixWindow, workID, version, offset, limit)
}
