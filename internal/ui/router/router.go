// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/datagrid/internal/dataservice"
	"github.com/leapstack-labs/datagrid/internal/ui/features/common"
	datasetsFeature "github.com/leapstack-labs/datagrid/internal/ui/features/datasets"
	homeFeature "github.com/leapstack-labs/datagrid/internal/ui/features/home"
	settingsFeature "github.com/leapstack-labs/datagrid/internal/ui/features/settings"
	strategiesFeature "github.com/leapstack-labs/datagrid/internal/ui/features/strategies"
	terminalFeature "github.com/leapstack-labs/datagrid/internal/ui/features/terminal"
	"github.com/leapstack-labs/datagrid/internal/ui/notifier"
	"github.com/leapstack-labs/datagrid/internal/ui/resources"
)

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(
	router chi.Router,
	client *dataservice.Client,
	sessionManager *common.SessionManager,
	notify *notifier.Notifier,
	logger *slog.Logger,
	isDev bool,
) error {
	// Hot reload endpoint for dev mode
	if isDev {
		setupReload(router)
	}

	// Static assets
	router.Handle("/static/*", resources.Handler())

	// Feature routes
	if err := homeFeature.SetupRoutes(router, client, logger); err != nil {
		return err
	}

	if err := datasetsFeature.SetupRoutes(router, client, sessionManager, notify, logger); err != nil {
		return err
	}

	if err := strategiesFeature.SetupRoutes(router, client, logger); err != nil {
		return err
	}

	if err := terminalFeature.SetupRoutes(router, client, logger); err != nil {
		return err
	}

	if err := settingsFeature.SetupRoutes(router, client, logger); err != nil {
		return err
	}

	return nil
}

func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
