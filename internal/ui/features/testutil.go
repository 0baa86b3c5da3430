// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/datagrid/internal/backend"
	"github.com/leapstack-labs/datagrid/internal/dataservice"
	"github.com/leapstack-labs/datagrid/internal/explorer"
	"github.com/leapstack-labs/datagrid/internal/testutil"
	"github.com/leapstack-labs/datagrid/internal/ui/features/common"
	"github.com/leapstack-labs/datagrid/internal/ui/notifier"
)

// TestFixture holds all dependencies needed for UI handler tests: the
// embedded demo backend behind a real HTTP server, the client against it,
// and the session plumbing the handlers expect.
type TestFixture struct {
	Client   *dataservice.Client
	Notifier *notifier.Notifier
	Sessions *common.SessionManager
}

// SetupTestFixture stands up an in-memory demo backend and wires the UI
// dependencies against it.
func SetupTestFixture(t *testing.T) *TestFixture {
	t.Helper()

	logger := testutil.NewTestLogger(t)

	store, err := backend.OpenStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	srv := httptest.NewServer(backend.NewServer(store, logger).Routes())
	t.Cleanup(srv.Close)

	client := dataservice.New(dataservice.Options{BaseURL: srv.URL, Logger: logger})
	notify := notifier.New()

	sessionManager := common.NewSessionManager(NewTestSessionStore(), func() *explorer.Session {
		return explorer.NewSession(explorer.Config{
			Source:   client,
			Logger:   logger,
			OnChange: notify.Broadcast,
		})
	})

	return &TestFixture{
		Client:   client,
		Notifier: notify,
		Sessions: sessionManager,
	}
}

// RequestWithPathParam wraps a request with chi URL params.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}
