package common

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/datagrid/internal/explorer"
)

const (
	cookieName = "datagrid"
	sidKey     = "sid"
)

// SessionManager maps browser cookies to server-side explorer sessions.
// The cookie only carries an opaque id; all grid state lives in the
// explorer.Session so SSE handlers and action handlers share one view.
type SessionManager struct {
	cookies sessions.Store
	factory func() *explorer.Session

	mu     sync.Mutex
	active map[string]*explorer.Session
}

// NewSessionManager creates a SessionManager. factory is called once per
// new browser session to build its explorer state.
func NewSessionManager(cookies sessions.Store, factory func() *explorer.Session) *SessionManager {
	return &SessionManager{
		cookies: cookies,
		factory: factory,
		active:  make(map[string]*explorer.Session),
	}
}

// Session resolves the explorer session for a request, creating both the
// cookie and the server-side state on first contact.
func (m *SessionManager) Session(w http.ResponseWriter, r *http.Request) (*explorer.Session, error) {
	cookie, err := m.cookies.Get(r, cookieName)
	if err != nil {
		// A stale or tampered cookie decodes with an error but still
		// yields a usable new session.
		cookie, _ = m.cookies.New(r, cookieName)
	}

	sid, ok := cookie.Values[sidKey].(string)
	if !ok || sid == "" {
		sid = uuid.NewString()
		cookie.Values[sidKey] = sid
		if err := m.cookies.Save(r, w, cookie); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.active[sid]
	if !ok {
		sess = m.factory()
		m.active[sid] = sess
	}
	return sess, nil
}

// Len reports the number of live server-side sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}
