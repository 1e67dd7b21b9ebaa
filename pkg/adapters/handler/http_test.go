package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/linkshelf/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/linkshelf/pkg/config"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/domain"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/services"
	"github.com/wadjakorntonsri/linkshelf/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		AllowedOrigins: []string{"http://localhost:3000"},
		MaxBodyBytes:   1 << 20,
		RequestTimeout: 5 * time.Second,
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	repo, err := sqlite.NewSQLiteRepository("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return NewRouter(cfg, services.NewLinkService(repo), logger.Discard().Logger)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestLinkLifecycle(t *testing.T) {
	h := newTestRouter(t, testConfig())

	rr := do(t, h, http.MethodGet, "/api/links", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = do(t, h, http.MethodPost, "/api/links", domain.LinkFields{
		Title: "Rust Book",
		URL:   "https://doc.rust-lang.org/book/",
		Tags:  "rust,books",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[domain.Link](t, rr)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	path := "/api/links/" + strconv.FormatInt(created.ID, 10)

	rr = do(t, h, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Rust Book", decode[domain.Link](t, rr).Title)

	rr = do(t, h, http.MethodPut, path, domain.LinkFields{
		Title: "The Rust Book",
		URL:   "https://doc.rust-lang.org/book/",
		Tags:  "rust",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decode[domain.Link](t, rr)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "The Rust Book", updated.Title)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))

	rr = do(t, h, http.MethodGet, "/api/links", nil)
	links := decode[[]domain.Link](t, rr)
	require.Len(t, links, 1)
	assert.Equal(t, "rust", links[0].Tags)

	rr = do(t, h, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Link deleted successfully"}`, rr.Body.String())

	rr = do(t, h, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, domain.CodeNotFound, decode[ErrorResponse](t, rr).Code)
}

func TestCreateValidation(t *testing.T) {
	h := newTestRouter(t, testConfig())

	tests := []struct {
		name    string
		body    any
		wantErr string
	}{
		{name: "missing title", body: map[string]string{"url": "https://x.io"}, wantErr: "Title and URL are required"},
		{name: "missing url", body: map[string]string{"title": "X"}, wantErr: "Title and URL are required"},
		{name: "bad url", body: map[string]string{"title": "X", "url": "not-a-url"}, wantErr: "Invalid URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/api/links", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			resp := decode[ErrorResponse](t, rr)
			assert.Equal(t, tt.wantErr, resp.Error)
			assert.Equal(t, domain.CodeValidation, resp.Code)
		})
	}

	rr := do(t, h, http.MethodGet, "/api/links", nil)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestInvalidBodyAndIDs(t *testing.T) {
	h := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/links", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid request body", decode[ErrorResponse](t, rr).Error)

	rr = do(t, h, http.MethodPut, "/api/links/abc", domain.LinkFields{Title: "X", URL: "https://x.io"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid link id", decode[ErrorResponse](t, rr).Error)

	rr = do(t, h, http.MethodPut, "/api/links/999", domain.LinkFields{Title: "X", URL: "https://x.io"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, domain.CodeNotFound, decode[ErrorResponse](t, rr).Code)

	rr = do(t, h, http.MethodDelete, "/api/links/0", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBodyLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxBodyBytes = 64
	h := newTestRouter(t, cfg)

	rr := do(t, h, http.MethodPost, "/api/links", domain.LinkFields{
		Title:     "Voice memo",
		URL:       "https://x.io",
		AudioNote: "data:audio/webm;base64," + strings.Repeat("A", 256),
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Request body too large", decode[ErrorResponse](t, rr).Error)
}

func TestRootAndHealth(t *testing.T) {
	h := newTestRouter(t, testConfig())

	rr := do(t, h, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "LinkShelf backend is running", decode[MessageResponse](t, rr).Message)

	rr = do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodPatch, "/api/links", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

// brokenService fails every call with err.
type brokenService struct{ err error }

func (s brokenService) CreateLink(ctx context.Context, fields domain.LinkFields) (*domain.Link, error) {
	return nil, s.err
}

func (s brokenService) GetLink(ctx context.Context, id int64) (*domain.Link, error) {
	return nil, s.err
}

func (s brokenService) ListLinks(ctx context.Context) ([]domain.Link, error) {
	return nil, s.err
}

func (s brokenService) UpdateLink(ctx context.Context, id int64, fields domain.LinkFields) (*domain.Link, error) {
	return nil, s.err
}

func (s brokenService) DeleteLink(ctx context.Context, id int64) error {
	return s.err
}

func (s brokenService) Health(ctx context.Context) error {
	return s.err
}

func TestUnexpectedErrorsAreGeneric(t *testing.T) {
	const secret = "pq: secret dsn detail"
	valid := domain.LinkFields{Title: "X", URL: "https://x.io"}

	tests := []struct {
		name     string
		err      error
		method   string
		path     string
		body     any
		wantBody string
	}{
		{name: "list", err: errors.New(secret), method: http.MethodGet, path: "/api/links",
			wantBody: `{"error":"Failed to load links","code":"INTERNAL"}`},
		{name: "create", err: errors.New(secret), method: http.MethodPost, path: "/api/links", body: valid,
			wantBody: `{"error":"Error creating link","code":"INTERNAL"}`},
		{name: "update", err: errors.New(secret), method: http.MethodPut, path: "/api/links/1", body: valid,
			wantBody: `{"error":"Error updating link","code":"INTERNAL"}`},
		{name: "delete", err: errors.New(secret), method: http.MethodDelete, path: "/api/links/1",
			wantBody: `{"error":"Error deleting link","code":"INTERNAL"}`},
		{name: "wrapped internal", err: domain.Wrap(errors.New(secret), domain.CodeInternal, secret),
			method: http.MethodGet, path: "/api/links",
			wantBody: `{"error":"Failed to load links","code":"INTERNAL"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			log := logger.New(logger.Config{Writer: &logs, Format: logger.FormatJSON})
			h := NewRouter(testConfig(), brokenService{err: tt.err}, log.Logger)

			rr := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusInternalServerError, rr.Code)
			assert.JSONEq(t, tt.wantBody, rr.Body.String())
			assert.NotContains(t, rr.Body.String(), "secret")
			assert.Contains(t, logs.String(), secret)
		})
	}
}
