// Package home provides the dashboard landing page.
package home

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/datagrid/internal/dataservice"
)

// SetupRoutes configures routes for the home feature.
func SetupRoutes(router chi.Router, client *dataservice.Client, logger *slog.Logger) error {
	handlers := NewHandlers(client, logger)

	router.Get("/", handlers.HomePage)

	return nil
}
