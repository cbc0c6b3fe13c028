// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reader

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/folio/internal/core/delta"
	requestutil "github.com/taibuivan/folio/internal/platform/request"
	"github.com/taibuivan/folio/internal/platform/respond"
	"github.com/taibuivan/folio/pkg/convert"
)

// AssetRewrite maps embedded asset URLs from the storage origin to the
// delivery origin. The zero value disables rewriting.
type AssetRewrite struct {
	From string
	To   string
}

// Handler implements the HTTP layer for page windows.
type Handler struct {
	service *Service
	assets  AssetRewrite
}

// NewHandler constructs a new reader [Handler].
func NewHandler(service *Service, assets AssetRewrite) *Handler {
	return &Handler{service: service, assets: assets}
}

// RegisterRoutes attaches the public window endpoint.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Get("/works/{workID}/pages", handler.GetPageWindow)
}

/*
GET /api/v1/works/{workID}/pages.

Request:
  - offset: int (default 0)
  - limit: int (default and ceiling: READER_MAX_WINDOW)
  - weak: bool (constrained connection, serves 2 pages)

Response:
  - 200: Window
  - 400: Non-numeric offset or limit
  - 404: Unknown work
*/
func (handler *Handler) GetPageWindow(writer http.ResponseWriter, request *http.Request) {
	offset, err := requestutil.QueryInt(request, "offset", 0)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	limit, err := requestutil.QueryInt(request, "limit", 0)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	weak := convert.ToBool(request.URL.Query().Get("weak"))

	window, err := handler.service.GetPageWindow(request.Context(), requestutil.ID(request, "workID"), offset, limit, weak)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handler.rewrite(window))
}

// rewrite returns a copy of window with asset URLs moved to the delivery
// origin. Cached windows are never modified in place.
func (handler *Handler) rewrite(window *Window) *Window {
	if handler.assets.From == "" {
		return window
	}

	rewritten := &Window{Pages: make([]Page, len(window.Pages)), PageCount: window.PageCount, HasMore: window.HasMore}
	for i, page := range window.Pages {
		page.Content = delta.RewriteURLs(page.Content, handler.assets.From, handler.assets.To)
		rewritten.Pages[i] = page
	}
	return rewritten
}
