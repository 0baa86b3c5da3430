package explorer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultFetchTimeout bounds a single dataset query. A request that exceeds
// it surfaces as a fetch error rather than leaving the grid loading forever.
const DefaultFetchTimeout = 30 * time.Second

// Row is a single record, keyed by column identifier.
type Row map[string]any

// Result is a page of data returned by the backend.
type Result struct {
	// Columns is the key order of the first row exactly as the backend
	// returned it, used to infer the column list when metadata is absent.
	Columns   []string
	Rows      []Row
	TotalRows int
}

// Metadata describes a dataset as reported by the backend.
type Metadata struct {
	ID      string
	Columns []string
}

// DataSource is the dataset-query interface of the remote backend.
type DataSource interface {
	QueryDataset(ctx context.Context, datasetID string, q QueryState) (*Result, error)
	DatasetMetadata(ctx context.Context, datasetID string) (*Metadata, error)
}

// Status is the fetch state machine state.
type Status string

// Fetch statuses.
const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// FetchState is the single mutable result of the orchestrator. It is written
// only by the session's fetch goroutines and read by everyone else through
// Snapshot.
type FetchState struct {
	Status       Status
	Rows         []Row
	TotalRows    int
	ErrorMessage string
}

// Config configures a Session.
type Config struct {
	Source       DataSource
	PageSize     int
	FetchTimeout time.Duration
	Logger       *slog.Logger
	// OnChange is called after every state change, outside the session
	// lock. The UI uses it to ping SSE subscribers.
	OnChange func()
}

// Session owns the explorer state for one user: the query state, the column
// registry and the fetch state machine. Every mutation that changes the
// effective remote query issues exactly one fetch, tagged with a
// monotonically increasing token; a response is applied only if its token is
// still the latest issued one, so a stale response can never overwrite a
// newer one regardless of arrival order.
type Session struct {
	source   DataSource
	logger   *slog.Logger
	timeout  time.Duration
	onChange func()

	mu        sync.Mutex
	datasetID string
	query     QueryState
	registry  ColumnRegistry
	fetch     FetchState
	token     uint64
}

// NewSession creates a session around a data source.
func NewSession(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Session{
		source:   cfg.Source,
		logger:   logger,
		timeout:  timeout,
		onChange: cfg.OnChange,
		query:    NewQueryState(cfg.PageSize),
		registry: NewColumnRegistry(),
		fetch:    FetchState{Status: StatusIdle},
	}
}

// Snapshot is a consistent, read-only copy of the session state.
type Snapshot struct {
	DatasetID      string
	Query          QueryState
	Columns        []string
	VisibleColumns []string
	Fetch          FetchState
	TotalPages     int
}

// Snapshot returns a copy of the current state for rendering.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	fetch := s.fetch
	fetch.Rows = append([]Row(nil), s.fetch.Rows...)

	return Snapshot{
		DatasetID:      s.datasetID,
		Query:          s.query.Clone(),
		Columns:        s.registry.Columns(),
		VisibleColumns: s.registry.VisibleColumns(),
		Fetch:          fetch,
		TotalPages:     TotalPages(s.fetch.TotalRows, s.query.PageSize),
	}
}

// SelectDataset switches the session to a dataset: query state and column
// registry are reset, metadata is requested to seed the registry, and the
// first page is fetched.
func (s *Session) SelectDataset(datasetID string) {
	if datasetID == "" {
		return
	}
	s.mu.Lock()
	s.datasetID = datasetID
	s.query = NewQueryState(s.query.PageSize)
	s.registry.Reset()
	s.fetch = FetchState{Status: StatusIdle}
	s.refetchLocked()
	s.mu.Unlock()

	go s.loadMetadata(datasetID)
	s.changed()
}

// SetPage moves to page n. Values outside [1, totalPages] and the current
// page are a silent no-op; page changes alone never reset other state.
func (s *Session) SetPage(n int) {
	s.mu.Lock()
	total := TotalPages(s.fetch.TotalRows, s.query.PageSize)
	if n < 1 || n > total || n == s.query.Page {
		s.mu.Unlock()
		return
	}
	s.query.Page = n
	s.refetchLocked()
	s.mu.Unlock()
	s.changed()
}

// SetPageSize changes the page size; it must be one of AllowedPageSizes.
// The page resets to 1 because the old page position is meaningless under a
// new size.
func (s *Session) SetPageSize(n int) {
	s.mu.Lock()
	if !ValidPageSize(n) || (n == s.query.PageSize && s.query.Page == 1) {
		s.mu.Unlock()
		return
	}
	s.query.PageSize = n
	s.query.Page = 1
	s.refetchLocked()
	s.mu.Unlock()
	s.changed()
}

// SetSort sorts by a column: sorting the current sort column flips the
// direction, a new column sorts ascending. Resets the page to 1.
func (s *Session) SetSort(column string) {
	if column == "" {
		return
	}
	s.mu.Lock()
	if column == s.query.SortColumn {
		if s.query.SortDirection == SortAsc {
			s.query.SortDirection = SortDesc
		} else {
			s.query.SortDirection = SortAsc
		}
	} else {
		s.query.SortColumn = column
		s.query.SortDirection = SortAsc
	}
	s.query.Page = 1
	s.refetchLocked()
	s.mu.Unlock()
	s.changed()
}

// SetSearch replaces the free-text search. Resets the page to 1.
func (s *Session) SetSearch(text string) {
	s.mu.Lock()
	if text == s.query.SearchText {
		s.mu.Unlock()
		return
	}
	s.query.SearchText = text
	s.query.Page = 1
	s.refetchLocked()
	s.mu.Unlock()
	s.changed()
}

// SetFilter upserts a per-column filter; an empty value removes the entry.
// Resets the page to 1.
func (s *Session) SetFilter(column, value string) {
	if column == "" {
		return
	}
	s.mu.Lock()
	if value == "" {
		if _, ok := s.query.Filters[column]; !ok {
			s.mu.Unlock()
			return
		}
		delete(s.query.Filters, column)
	} else {
		if s.query.Filters[column] == value {
			s.mu.Unlock()
			return
		}
		s.query.Filters[column] = value
	}
	s.query.Page = 1
	s.refetchLocked()
	s.mu.Unlock()
	s.changed()
}

// ToggleColumn flips a column's visibility. Display-only: it never triggers
// a fetch and never resets the page. Unknown columns are a no-op.
func (s *Session) ToggleColumn(column string) {
	s.mu.Lock()
	if !s.registry.Known(column) {
		s.mu.Unlock()
		return
	}
	s.registry.Toggle(column)
	s.mu.Unlock()
	s.changed()
}

// Refresh re-issues the current query. It always performs a new fetch; the
// explorer never serves a page from a cache. Retry after an error is the
// same operation.
func (s *Session) Refresh() {
	s.mu.Lock()
	if s.datasetID == "" {
		s.mu.Unlock()
		return
	}
	s.refetchLocked()
	s.mu.Unlock()
	s.changed()
}

// refetchLocked issues a new tagged fetch for the current query state.
// Callers must hold s.mu.
func (s *Session) refetchLocked() {
	s.token++
	s.fetch.Status = StatusLoading
	s.fetch.ErrorMessage = ""

	token := s.token
	datasetID := s.datasetID
	query := s.query.Clone()

	go s.runFetch(token, datasetID, query)
}

// runFetch performs one tagged request and applies the response only if it
// is still the latest issued one.
func (s *Session) runFetch(token uint64, datasetID string, query QueryState) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	res, err := s.source.QueryDataset(ctx, datasetID, query)

	s.mu.Lock()
	if token != s.token {
		s.mu.Unlock()
		s.logger.Debug("discarding stale response", "dataset", datasetID, "token", token, "latest", s.token)
		return
	}

	if err != nil {
		s.fetch = FetchState{
			Status:       StatusError,
			ErrorMessage: fetchErrorMessage(err),
		}
		s.mu.Unlock()
		s.logger.Warn("dataset query failed", "dataset", datasetID, "error", err)
		s.changed()
		return
	}

	s.fetch = FetchState{
		Status:    StatusSuccess,
		Rows:      res.Rows,
		TotalRows: res.TotalRows,
	}
	if !s.registry.Resolved() && len(res.Columns) > 0 {
		s.registry.Resolve(nil, res.Columns)
	}
	s.mu.Unlock()
	s.changed()
}

// loadMetadata seeds the column registry from dataset metadata. Metadata may
// arrive before or after the first data page; Resolve keeps any visibility
// choices the user made in the meantime.
func (s *Session) loadMetadata(datasetID string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	meta, err := s.source.DatasetMetadata(ctx, datasetID)
	if err != nil {
		// Not fatal: the registry is inferred from the first page instead.
		s.logger.Debug("dataset metadata unavailable", "dataset", datasetID, "error", err)
		return
	}
	if meta == nil || len(meta.Columns) == 0 {
		return
	}

	s.mu.Lock()
	if s.datasetID != datasetID {
		s.mu.Unlock()
		return
	}
	s.registry.Resolve(meta.Columns, nil)
	s.mu.Unlock()
	s.changed()
}

func (s *Session) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

func fetchErrorMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	return err.Error()
}
