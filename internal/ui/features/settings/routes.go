package settings

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/datagrid/internal/dataservice"
)

// SetupRoutes registers the settings feature routes.
func SetupRoutes(router chi.Router, client *dataservice.Client, logger *slog.Logger) error {
	handlers := NewHandlers(client, logger)

	router.Get("/settings", handlers.SettingsPage)
	router.Post("/api/settings/save", handlers.SaveSettings)

	return nil
}
