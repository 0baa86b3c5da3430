package terminal

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/datagrid/internal/dataservice"
)

// SetupRoutes registers the terminal feature routes.
func SetupRoutes(router chi.Router, client *dataservice.Client, logger *slog.Logger) error {
	handlers := NewHandlers(client, logger)

	router.Get("/terminal", handlers.TerminalPage)
	router.Post("/api/terminal/run", handlers.RunCommand)

	return nil
}
