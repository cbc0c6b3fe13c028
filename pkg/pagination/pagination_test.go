// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/folio/pkg/pagination"
)

func TestFromQuery(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", 1, 20, 0},
		{"explicit", "page=3&limit=10", 3, 10, 20},
		{"limit_clamped", "limit=500", 1, pagination.MaxLimit, 0},
		{"zero_limit", "limit=0", 1, 20, 0},
		{"negative_page", "page=-2", 1, 20, 0},
		{"malformed", "page=two&limit=x", 1, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)

			params := pagination.FromQuery(values)
			assert.Equal(t, tt.wantPage, params.Page)
			assert.Equal(t, tt.wantLimit, params.Limit)
			assert.Equal(t, tt.wantOffset, params.Offset())
		})
	}
}

func TestNewMeta(t *testing.T) {
	assert.Equal(t, pagination.Meta{Page: 1, Limit: 20, Total: 45, TotalPages: 3, HasMore: true}, pagination.NewMeta(1, 20, 45))
	assert.Equal(t, pagination.Meta{Page: 3, Limit: 20, Total: 45, TotalPages: 3}, pagination.NewMeta(3, 20, 45))
	assert.Equal(t, pagination.Meta{Page: 1, Limit: 20}, pagination.NewMeta(1, 20, 0))
}
