package datasets

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/datagrid/internal/dataservice"
	"github.com/leapstack-labs/datagrid/internal/explorer"
	"github.com/leapstack-labs/datagrid/internal/ui/features/common"
	commonComponents "github.com/leapstack-labs/datagrid/internal/ui/features/common/components"
	"github.com/leapstack-labs/datagrid/internal/ui/features/datasets/components"
	"github.com/leapstack-labs/datagrid/internal/ui/notifier"
)

// Handlers provides HTTP handlers for the data explorer feature.
type Handlers struct {
	backend  Backend
	sessions *common.SessionManager
	notifier *notifier.Notifier
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(backend Backend, sessions *common.SessionManager, notify *notifier.Notifier, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		backend:  backend,
		sessions: sessions,
		notifier: notify,
		logger:   logger,
	}
}

// DataPage renders the full data explorer page.
func (h *Handlers) DataPage(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Session(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	page := commonComponents.Shell("Data · DataGrid", "/data",
		components.DataPage(h.listDatasets(r), sess.Snapshot()))
	if err := page.Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// FeedSSE is the long-lived stream that re-renders the grid whenever any
// session state changes, most importantly when an in-flight fetch lands.
func (h *Handlers) FeedSSE(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Session(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	ch, cancel := h.notifier.Subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ch:
			if err := sse.PatchElementTempl(components.Grid(sess.Snapshot())); err != nil {
				return
			}
		}
	}
}

// SelectDataset switches the session to the dataset chosen in the toolbar.
func (h *Handlers) SelectDataset(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(sess *explorer.Session, sig gridSignals) {
		sess.SelectDataset(sig.Dataset)
	})
}

// SetSearch applies the debounced free-text search input.
func (h *Handlers) SetSearch(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(sess *explorer.Session, sig gridSignals) {
		sess.SetSearch(sig.Search)
	})
}

// SetPageSize applies the page size selector.
func (h *Handlers) SetPageSize(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(sess *explorer.Session, sig gridSignals) {
		if n, err := strconv.Atoi(sig.PageSize); err == nil {
			sess.SetPageSize(n)
		}
	})
}

// SetPage navigates to the page named in the URL.
func (h *Handlers) SetPage(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil {
		return
	}
	h.action(w, r, func(sess *explorer.Session, _ gridSignals) {
		sess.SetPage(n)
	})
}

// SetSort sorts by the clicked column header.
func (h *Handlers) SetSort(w http.ResponseWriter, r *http.Request) {
	column := chi.URLParam(r, "column")
	h.action(w, r, func(sess *explorer.Session, _ gridSignals) {
		sess.SetSort(column)
	})
}

// SetFilter applies one per-column filter input.
func (h *Handlers) SetFilter(w http.ResponseWriter, r *http.Request) {
	column := chi.URLParam(r, "column")
	h.action(w, r, func(sess *explorer.Session, sig gridSignals) {
		sess.SetFilter(column, sig.Filters[column])
	})
}

// ToggleColumn flips one column's visibility.
func (h *Handlers) ToggleColumn(w http.ResponseWriter, r *http.Request) {
	column := chi.URLParam(r, "column")
	h.action(w, r, func(sess *explorer.Session, _ gridSignals) {
		sess.ToggleColumn(column)
	})
}

// Refresh re-runs the current query.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(sess *explorer.Session, _ gridSignals) {
		sess.Refresh()
	})
}

// action runs one grid mutation and immediately patches the grid in its
// loading state. The finished fetch arrives through the feed stream.
// Signals must be read before the SSE writer takes over the request body.
func (h *Handlers) action(w http.ResponseWriter, r *http.Request, apply func(*explorer.Session, gridSignals)) {
	var sig gridSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		h.logger.Debug("unreadable grid signals", "error", err)
	}

	sess, err := h.sessions.Session(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	apply(sess, sig)

	if err := sse.PatchElementTempl(components.Grid(sess.Snapshot())); err != nil {
		_ = sse.ConsoleError(err)
	}
}

func (h *Handlers) listDatasets(r *http.Request) []dataservice.DatasetInfo {
	list, err := h.backend.ListDatasets(r.Context())
	if err != nil {
		h.logger.Warn("dataset listing unavailable", "error", err)
		return nil
	}
	return list
}
