// Package main runs the LinkShelf HTTP server.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/wadjakorntonsri/linkshelf/pkg/app"
	"github.com/wadjakorntonsri/linkshelf/pkg/logger"
)

func main() {
	injector := app.NewContainer()
	log := do.MustInvoke[*logger.Logger](injector)

	if err := app.Bootstrap(injector); err != nil {
		_ = injector.Shutdown()
		log.Fatal("Failed to start server", "error", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// The container stops the HTTP server before closing the database.
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	log.Info("Server stopped")
}
