package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/linkshelf/pkg/adapters/handler"
	"github.com/wadjakorntonsri/linkshelf/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/linkshelf/pkg/config"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/domain"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/services"
	"github.com/wadjakorntonsri/linkshelf/pkg/logger"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	repo, err := sqlite.NewSQLiteRepository("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	cfg := &config.Config{MaxBodyBytes: 1 << 20, RequestTimeout: 5 * time.Second}
	srv := httptest.NewServer(handler.NewRouter(cfg, services.NewLinkService(repo), logger.Discard().Logger))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	c := New(srv.URL+"/", WithHTTPClient(srv.Client()))

	created, err := c.CreateLink(ctx, domain.LinkFields{Title: "Go", URL: "https://go.dev", Tags: "go,lang"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := c.GetLink(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go", got.Title)

	updated, err := c.UpdateLink(ctx, created.ID, domain.LinkFields{Title: "Go Dev", URL: "https://go.dev"})
	require.NoError(t, err)
	assert.Equal(t, "Go Dev", updated.Title)

	links, err := c.ListLinks(ctx)
	require.NoError(t, err)
	require.Len(t, links, 1)

	require.NoError(t, c.DeleteLink(ctx, created.ID))

	err = c.DeleteLink(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClientValidationError(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL, WithHTTPClient(srv.Client()))

	_, err := c.CreateLink(context.Background(), domain.LinkFields{Title: "X"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "Title and URL are required", err.Error())
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).ListLinks(context.Background())
	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestClientErrorWithoutCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to load links"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).ListLinks(context.Background())
	assert.ErrorIs(t, err, domain.ErrInternal)
	assert.Equal(t, "Failed to load links", err.Error())
}
