package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/wadjakorntonsri/linkshelf/pkg/adapters/handler"
	"github.com/wadjakorntonsri/linkshelf/pkg/adapters/repository"
	"github.com/wadjakorntonsri/linkshelf/pkg/config"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/services"
	"github.com/wadjakorntonsri/linkshelf/pkg/logger"
	"github.com/wadjakorntonsri/linkshelf/pkg/ports"
)

// shutdownTimeout is the maximum time to wait for in-flight requests on shutdown.
const shutdownTimeout = 30 * time.Second

// ProvideConfig loads configuration from the environment and .env.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.Load(), nil
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Format:      cfg.LogFormat,
		Environment: cfg.AppEnv,
		Component:   "server",
		Level:       logger.ParseLevel(cfg.LogLevel),
		AddSource:   cfg.AppEnv == "development",
	})

	log.Info("Starting LinkShelf server",
		"environment", cfg.AppEnv,
		"log_level", cfg.LogLevel,
		"backend", repository.Backend(cfg.DatabaseURL),
	)

	return log, nil
}

// RepositoryHandle wraps the link store with shutdown capability.
type RepositoryHandle struct {
	ports.LinkRepository
}

// Shutdown implements do.Shutdownable.
func (h *RepositoryHandle) Shutdown() error {
	return h.Close()
}

// ProvideRepository opens the store named by DATABASE_URL and migrates it.
func ProvideRepository(i do.Injector) (*RepositoryHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	repo, err := repository.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "backend", repository.Backend(cfg.DatabaseURL))

	return &RepositoryHandle{LinkRepository: repo}, nil
}

// ProvideLinkService provides the link business logic.
func ProvideLinkService(i do.Injector) (*services.LinkService, error) {
	repo := do.MustInvoke[*RepositoryHandle](i)
	return services.NewLinkService(repo.LinkRepository), nil
}

// ProvideRouter provides the HTTP handler with every route and middleware.
func ProvideRouter(i do.Injector) (http.Handler, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	service := do.MustInvoke[*services.LinkService](i)

	return handler.NewRouter(cfg, service, log.Logger), nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	listener net.Listener
}

// Addr is the address the server is actually listening on.
func (h *HTTPServerHandle) Addr() string {
	return h.listener.Addr().String()
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer binds the port and serves in the background. Binding
// happens here so a busy port fails Bootstrap.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	router := do.MustInvoke[http.Handler](i)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, err
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", ln.Addr().String())

	return &HTTPServerHandle{Server: srv, listener: ln}, nil
}
