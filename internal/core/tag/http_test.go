// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/folio/internal/core/tag"
	"github.com/taibuivan/folio/internal/platform/ctxutil"
	"github.com/taibuivan/folio/internal/platform/sec"
)

func TestHandler(t *testing.T) {
	f := newFixture(t)
	target := f.createWork(t, "Tagged")

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if user := request.Header.Get("X-Test-User"); user != "" {
				request = request.WithContext(ctxutil.WithAuthUser(request.Context(), &sec.AuthClaims{UserID: user}))
			}
			next.ServeHTTP(writer, request)
		})
	})
	tag.NewHandler(f.tags).RegisterRoutes(router)

	do := func(method, path, user, body string) (int, map[string]any) {
		request := httptest.NewRequest(method, path, strings.NewReader(body))
		if user != "" {
			request.Header.Set("X-Test-User", user)
		}
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)

		var envelope map[string]any
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
		return recorder.Code, envelope
	}

	status, _ := do(http.MethodPut, "/works/"+target.ID+"/tags", "", `{"tags":["Noir"]}`)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, envelope := do(http.MethodPut, "/works/"+target.ID+"/tags", owner, `{"tags":["Slow Burn","Noir"]}`)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, envelope["data"], 2)

	status, envelope = do(http.MethodGet, "/works/"+target.ID+"/tags", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "noir", envelope["data"].([]any)[0].(map[string]any)["key"])

	status, envelope = do(http.MethodGet, "/works?tag=%EF%BC%83slow_burn&tag=unknown", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, envelope["meta"].(map[string]any)["total"])
	assert.Equal(t, target.ID, envelope["data"].([]any)[0].(map[string]any)["id"])

	status, envelope = do(http.MethodGet, "/works", "", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", envelope["code"])
}
