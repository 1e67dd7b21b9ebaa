// Package app wires the server's dependencies together.
package app

import (
	"net/http"

	"github.com/samber/do/v2"

	"github.com/wadjakorntonsri/linkshelf/pkg/config"
	"github.com/wadjakorntonsri/linkshelf/pkg/logger"
)

// NewContainer creates the container with configuration read from the
// environment.
func NewContainer() *do.RootScope {
	injector := do.New()
	do.Provide(injector, ProvideConfig)
	register(injector)
	return injector
}

// NewContainerWithConfig creates the container around an explicit config.
func NewContainerWithConfig(cfg *config.Config) *do.RootScope {
	injector := do.New()
	do.ProvideValue(injector, cfg)
	register(injector)
	return injector
}

func register(injector do.Injector) {
	do.Provide(injector, ProvideLogger)
	do.Provide(injector, ProvideRepository)
	do.Provide(injector, ProvideLinkService)
	do.Provide(injector, ProvideRouter)
	do.Provide(injector, ProvideHTTPServer)
}

// Handler builds everything up to the router without starting a listener.
func Handler(injector do.Injector) (http.Handler, error) {
	return do.Invoke[http.Handler](injector)
}

// Bootstrap initializes every service and starts the HTTP server.
func Bootstrap(injector do.Injector) error {
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*RepositoryHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*HTTPServerHandle](injector); err != nil {
		return err
	}
	return nil
}
