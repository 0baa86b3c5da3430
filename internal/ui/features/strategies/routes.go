package strategies

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/datagrid/internal/dataservice"
)

// SetupRoutes registers the strategies feature routes.
func SetupRoutes(router chi.Router, client *dataservice.Client, logger *slog.Logger) error {
	handlers := NewHandlers(client, logger)

	router.Get("/strategies", handlers.StrategiesPage)

	router.Route("/api/fleet", func(r chi.Router) {
		r.Post("/strategies/create", handlers.CreateStrategy)
		r.Post("/strategies/{id}/delete", handlers.DeleteStrategy)
		r.Post("/agents/create", handlers.CreateAgent)
		r.Post("/agents/{id}/delete", handlers.DeleteAgent)
	})

	return nil
}
