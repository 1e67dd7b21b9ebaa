package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wadjakorntonsri/linkshelf/pkg/logger"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Writer: &buf, Format: logger.FormatJSON})
	mw := NewMiddleware(testConfig(), log.Logger)

	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{name: "ok", status: http.StatusOK, wantLevel: `"level":"INFO"`},
		{name: "client error", status: http.StatusBadRequest, wantLevel: `"level":"INFO"`},
		{name: "server error", status: http.StatusInternalServerError, wantLevel: `"level":"ERROR"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			h := mw.RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/links", nil))

			assert.Equal(t, tt.status, rr.Code)
			assert.Contains(t, buf.String(), tt.wantLevel)
			assert.Contains(t, buf.String(), `"path":"/api/links"`)
		})
	}
}

func TestCORS(t *testing.T) {
	mw := NewMiddleware(testConfig(), logger.Discard().Logger)
	h := mw.CORS()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		origin     string
		wantHeader string
	}{
		{name: "allowed origin", origin: "http://localhost:3000", wantHeader: "http://localhost:3000"},
		{name: "other origin", origin: "https://evil.example", wantHeader: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/api/links", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPut)

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantHeader, rr.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
