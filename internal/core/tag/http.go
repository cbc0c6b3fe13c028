// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/folio/internal/platform/middleware"
	requestutil "github.com/taibuivan/folio/internal/platform/request"
	"github.com/taibuivan/folio/internal/platform/respond"
	"github.com/taibuivan/folio/pkg/pagination"
	"github.com/taibuivan/folio/pkg/query"
)

// Handler implements the HTTP layer for work tags.
type Handler struct {
	service *Service
}

// NewHandler constructs a new tag [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches tag endpoints to the API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Get("/works", handler.listWorks)
	api.Get("/works/{workID}/tags", handler.listTags)

	api.Group(func(owner chi.Router) {
		owner.Use(middleware.RequireAuth)
		owner.Put("/works/{workID}/tags", handler.setTags)
	})
}

/*
GET /api/v1/works?tag=...

Request:
  - tag: string (repeatable, comma-separated; any match)
  - page: int
  - limit: int

Response:
  - 200: []Work: Paginated list
  - 400: No usable tag given
*/
func (handler *Handler) listWorks(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	filter := query.Values(request.URL.Query(), FieldTag)

	works, total, err := handler.service.ListWorks(request.Context(), filter, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, works, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) listTags(writer http.ResponseWriter, request *http.Request) {
	tags, err := handler.service.ListTags(request.Context(), requestutil.ID(request, "workID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tags)
}

// setTagsRequest carries the full replacement tag set.
type setTagsRequest struct {
	Tags []string `json:"tags"`
}

/*
PUT /api/v1/works/{workID}/tags.

Response:
  - 200: []Tag
  - 400: Empty or oversized label
  - 403: Caller is not the owner
*/
func (handler *Handler) setTags(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input setTagsRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tags, err := handler.service.SetTags(request.Context(), userID, requestutil.ID(request, "workID"), input.Tags)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tags)
}
