// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package work

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/folio/internal/platform/middleware"
	requestutil "github.com/taibuivan/folio/internal/platform/request"
	"github.com/taibuivan/folio/internal/platform/respond"
	"github.com/taibuivan/folio/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for works and page mutations.
type Handler struct {
	service *Service
}

// NewHandler constructs a new work [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches work endpoints to the API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Get("/works/{workID}", handler.GetWork)

	api.Group(func(owner chi.Router) {
		owner.Use(middleware.RequireAuth)
		owner.Get("/me/works", handler.ListMyWorks)
		owner.Post("/works", handler.CreateWork)
		owner.Post("/works/{workID}/pages", handler.AppendPage)
		owner.Put("/works/{workID}/pages/{index}", handler.EditPage)
		owner.Delete("/works/{workID}/pages/{index}", handler.DeletePage)
	})
}

// # Work Retrieval

/*
GET /api/v1/works/{workID}.

Description: Returns work metadata with a short excerpt of the first page,
used by link previews and the comment and notification subsystems.

Response:
  - 200: View
  - 404: ErrNotFound: Unknown work
*/
func (handler *Handler) GetWork(writer http.ResponseWriter, request *http.Request) {
	view, err := handler.service.GetWork(request.Context(), requestutil.ID(request, "workID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, view)
}

/*
GET /api/v1/me/works.

Request:
  - page: int
  - limit: int

Response:
  - 200: []Work: Paginated list
  - 401: ErrUnauthorized
*/
func (handler *Handler) ListMyWorks(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)

	works, total, err := handler.service.ListOwnedWorks(request.Context(), userID, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, works, pagination.NewMeta(params.Page, params.Limit, total))
}

// # Work Creation

// createWorkRequest is the inbound JSON schema for a new work.
type createWorkRequest struct {
	Title string            `json:"title"`
	Pages []json.RawMessage `json:"pages"`
}

/*
POST /api/v1/works.

Request:
  - body: createWorkRequest (pages are rich-text deltas, optional)

Response:
  - 201: Work
  - 400: Validation failure
*/
func (handler *Handler) CreateWork(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createWorkRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	work, err := handler.service.CreateWork(request.Context(), userID, input.Title, input.Pages)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, work)
}

// # Page Mutations

// editPageRequest carries the replacement content of one page.
type editPageRequest struct {
	Content json.RawMessage `json:"content"`
}

/*
PUT /api/v1/works/{workID}/pages/{index}.

Response:
  - 200: PageChange
  - 403: Caller is not the owner
  - 404: Unknown work or index out of range
  - 409: Work not yet externalized
*/
func (handler *Handler) EditPage(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	index, err := requestutil.Index(request, "index")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input editPageRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	change, err := handler.service.EditPage(request.Context(), userID, requestutil.ID(request, "workID"), index, input.Content)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, change)
}

/*
POST /api/v1/works/{workID}/pages.

Response:
  - 201: PageChange
  - 409: Concurrent append or work not yet externalized
*/
func (handler *Handler) AppendPage(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	change, err := handler.service.AppendPage(request.Context(), userID, requestutil.ID(request, "workID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, change)
}

/*
DELETE /api/v1/works/{workID}/pages/{index}.

Response:
  - 200: PageChange
  - 409: LAST_PAGE_PROTECTED or work not yet externalized
*/
func (handler *Handler) DeletePage(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	index, err := requestutil.Index(request, "index")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	change, err := handler.service.DeletePage(request.Context(), userID, requestutil.ID(request, "workID"), index)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, change)
}
