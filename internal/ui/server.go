// Package ui provides the web dashboard server.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/datagrid/internal/dataservice"
	"github.com/leapstack-labs/datagrid/internal/explorer"
	"github.com/leapstack-labs/datagrid/internal/ui/features/common"
	"github.com/leapstack-labs/datagrid/internal/ui/notifier"
	"github.com/leapstack-labs/datagrid/internal/ui/router"
)

// Server is the dashboard server.
type Server struct {
	client         *dataservice.Client
	sessionManager *common.SessionManager
	port           int
	configPath     string
	logger         *slog.Logger
	notifier       *notifier.Notifier
	isDev          bool
}

// Config holds configuration for the dashboard server.
type Config struct {
	Client        *dataservice.Client
	Port          int
	SessionSecret string
	// ConfigPath, when set, is watched so open dashboards reload after a
	// config edit.
	ConfigPath   string
	PageSize     int
	FetchTimeout time.Duration
	Logger       *slog.Logger
	Dev          bool
}

// NewServer creates a new dashboard server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	notify := notifier.New()
	sessionManager := common.NewSessionManager(sessionStore, func() *explorer.Session {
		return explorer.NewSession(explorer.Config{
			Source:       cfg.Client,
			PageSize:     cfg.PageSize,
			FetchTimeout: cfg.FetchTimeout,
			Logger:       logger,
			OnChange:     notify.Broadcast,
		})
	})

	return &Server{
		client:         cfg.Client,
		sessionManager: sessionManager,
		port:           cfg.Port,
		configPath:     cfg.ConfigPath,
		logger:         logger,
		notifier:       notify,
		isDev:          cfg.Dev,
	}
}

// Serve starts the dashboard server and blocks until the context is
// cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting dashboard", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	if err := router.SetupRoutes(r, s.client, s.sessionManager, s.notifier, s.logger, s.isDev); err != nil {
		return fmt.Errorf("failed to setup routes: %w", err)
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.configPath != "" {
		eg.Go(func() error {
			return s.watchConfig(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down dashboard...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// watchConfig watches the config file and pings connected dashboards when
// it changes so their feeds re-render.
func (s *Server) watchConfig(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(s.configPath); err != nil {
		s.logger.Warn("config watch unavailable", "path", s.configPath, "error", err)
		<-ctx.Done()
		return nil
	}

	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			// Debounce
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				s.logger.Info("config changed", "file", event.Name)
				s.notifier.Broadcast()
			})

		case err := <-watcher.Errors:
			s.logger.Error("watcher error", "error", err)
		}
	}
}
