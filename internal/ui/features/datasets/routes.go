package datasets

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/datagrid/internal/ui/features/common"
	"github.com/leapstack-labs/datagrid/internal/ui/notifier"
)

// SetupRoutes registers the data explorer feature routes.
func SetupRoutes(
	router chi.Router,
	backend Backend,
	sessions *common.SessionManager,
	notify *notifier.Notifier,
	logger *slog.Logger,
) error {
	handlers := NewHandlers(backend, sessions, notify, logger)

	// Page routes
	router.Get("/data", handlers.DataPage)
	router.Get("/data/feed", handlers.FeedSSE)

	// Grid actions
	router.Route("/api/data", func(r chi.Router) {
		r.Post("/select", handlers.SelectDataset)
		r.Post("/search", handlers.SetSearch)
		r.Post("/pagesize", handlers.SetPageSize)
		r.Post("/page/{page}", handlers.SetPage)
		r.Post("/sort/{column}", handlers.SetSort)
		r.Post("/filter/{column}", handlers.SetFilter)
		r.Post("/column/{column}/toggle", handlers.ToggleColumn)
		r.Post("/refresh", handlers.Refresh)
	})

	return nil
}
