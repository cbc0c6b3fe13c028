// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/folio/internal/api"
	"github.com/taibuivan/folio/internal/bootstrap"
	"github.com/taibuivan/folio/internal/core/reader"
	"github.com/taibuivan/folio/internal/core/tag"
	"github.com/taibuivan/folio/internal/core/work"
	"github.com/taibuivan/folio/internal/platform/config"
	"github.com/taibuivan/folio/internal/platform/sec"
	"github.com/taibuivan/folio/internal/platform/sqlite"
)

const issuer = "folio.test"

type harness struct {
	handler http.Handler
	tokens  *sec.TokenService
}

func newHarness(t *testing.T, checks ...bootstrap.Check) harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.DiscardHandler)
	db, err := sqlite.Open(ctx, sqlite.MemoryPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tokens := sec.NewTokenService(key, &key.PublicKey, issuer)

	works := work.NewSQLiteStore(db)
	readerService := reader.NewService(works, works, nil, 20, logger)
	workService := work.NewService(works, works, readerService, logger)
	tagService := tag.NewService(tag.NewSQLiteStore(db), works, logger)

	liveness, readiness := api.NewHealthHandlers(checks, logger)
	cfg := &config.Config{ServerPort: "0", Environment: "test"}

	server := api.NewServer(ctx, cfg, logger, tokens, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Work:      work.NewHandler(workService),
		Reader:    reader.NewHandler(readerService, reader.AssetRewrite{From: "https://old.cdn/", To: "https://cdn/"}),
		Tag:       tag.NewHandler(tagService),
	})

	return harness{handler: server.Handler(), tokens: tokens}
}

func (h harness) do(t *testing.T, method, path, user, body string) (int, map[string]any) {
	t.Helper()

	request := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != "" {
		token, err := h.tokens.GenerateAccessToken(user, user, time.Minute)
		require.NoError(t, err)
		request.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	h.handler.ServeHTTP(recorder, request)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return recorder.Code, envelope
}

func TestServer_EndToEnd(t *testing.T) {
	h := newHarness(t)

	status, envelope := h.do(t, http.MethodPost, "/api/v1/works", "author-1",
		`{"title":"Harbour","pages":[{"ops":[{"insert":"one two\n"}]},{"ops":[{"insert":{"image":"https://old.cdn/a.png"}},{"insert":"\n"}]}]}`)
	require.Equal(t, http.StatusCreated, status)
	workID := envelope["data"].(map[string]any)["id"].(string)

	status, envelope = h.do(t, http.MethodGet, "/api/v1/works/"+workID+"/pages?offset=1&limit=5", "", "")
	require.Equal(t, http.StatusOK, status)
	window := envelope["data"].(map[string]any)
	pages := window["pages"].([]any)
	require.Len(t, pages, 1)
	raw, err := json.Marshal(pages[0].(map[string]any)["content"])
	require.NoError(t, err)
	assert.Contains(t, string(raw), "https://cdn/a.png")

	status, _ = h.do(t, http.MethodPut, "/api/v1/works/"+workID+"/tags", "author-1", `{"tags":["Sea Stories"]}`)
	require.Equal(t, http.StatusOK, status)

	status, envelope = h.do(t, http.MethodGet, "/api/v1/works?tag=sea_stories", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, envelope["meta"].(map[string]any)["total"])

	status, envelope = h.do(t, http.MethodDelete, "/api/v1/works/"+workID+"/pages/0", "author-2", "")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", envelope["code"])
}

func TestServer_RejectsForgedToken(t *testing.T) {
	h := newHarness(t)

	request := httptest.NewRequest(http.MethodPost, "/api/v1/works", strings.NewReader(`{}`))
	request.Header.Set("Authorization", "Bearer not-a-token")
	recorder := httptest.NewRecorder()
	h.handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestServer_Health(t *testing.T) {
	healthy := bootstrap.Check{Name: "sqlite", Ping: func(context.Context) error { return nil }}
	broken := bootstrap.Check{Name: "redis", Ping: func(context.Context) error { return errors.New("connection refused") }}

	h := newHarness(t, healthy)
	status, _ := h.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, status)
	status, envelope := h.do(t, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", envelope["data"].(map[string]any)["status"])

	h = newHarness(t, healthy, broken)
	status, envelope = h.do(t, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	data := envelope["data"].(map[string]any)
	assert.Equal(t, "degraded", data["status"])
	assert.Len(t, data["checks"], 2)
}
