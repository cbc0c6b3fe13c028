// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination parses page-numbered list requests (a caller's works,
// works carrying a tag) and builds the "meta" block of list responses.
//
// Page windows of a single work are not paginated here: the reader takes a
// raw offset and limit because pages are addressed by index.
package pagination

import (
	"net/http"
	"net/url"
	"strconv"
)

const (
	// DefaultLimit is the number of works per page when "limit" is absent.
	DefaultLimit = 20
	// MaxLimit caps "limit"; larger values are clamped down to it.
	MaxLimit = 50
	// DefaultPage is the first page. Pages are 1-indexed.
	DefaultPage = 1
)

// Params is a parsed page request.
type Params struct {
	Page  int
	Limit int
}

// Offset returns the number of rows before the first row of Page.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta is the "meta" block of a paginated response.
type Meta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

// NewMeta describes page of a list holding total rows.
func NewMeta(page, limit, total int) Meta {
	meta := Meta{Page: page, Limit: limit, Total: total}
	if limit > 0 {
		meta.TotalPages = (total + limit - 1) / limit
	}
	meta.HasMore = page < meta.TotalPages
	return meta
}

// FromRequest reads "page" and "limit" from the request's query string.
func FromRequest(request *http.Request) Params {
	return FromQuery(request.URL.Query())
}

// FromQuery parses "page" and "limit". Missing or malformed values fall back
// to the defaults, a page below 1 becomes [DefaultPage], and a limit above
// [MaxLimit] is clamped to it.
func FromQuery(values url.Values) Params {
	page := intValue(values, "page", DefaultPage)
	if page < 1 {
		page = DefaultPage
	}

	limit := intValue(values, "limit", DefaultLimit)
	switch {
	case limit < 1:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	return Params{Page: page, Limit: limit}
}

func intValue(values url.Values, key string, fallback int) int {
	n, err := strconv.Atoi(values.Get(key))
	if err != nil {
		return fallback
	}
	return n
}
