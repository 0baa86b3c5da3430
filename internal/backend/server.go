package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/sync/errgroup"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Server exposes the demo control-plane API over HTTP.
type Server struct {
	store  *Store
	logger *slog.Logger

	mu         sync.Mutex
	settings   settings
	strategies []strategy
	agents     []agent
}

type settings struct {
	ExchangeAPIKey    string  `json:"exchangeApiKey"`
	ExchangeAPISecret string  `json:"exchangeApiSecret"`
	BaseCurrency      string  `json:"baseCurrency"`
	MaxPositionSize   float64 `json:"maxPositionSize"`
}

type strategy struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Status string `json:"status"`
}

type agent struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Model  string `json:"model"`
	Status string `json:"status"`
}

// NewServer creates the demo server around a store.
func NewServer(store *Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		store:    store,
		logger:   logger,
		settings: settings{BaseCurrency: "USD", MaxPositionSize: 250000},
		strategies: []strategy{
			{ID: uuid.New().String(), Name: "momentum-breakout", Symbol: "NVDA", Status: "running"},
			{ID: uuid.New().String(), Name: "mean-reversion", Symbol: "AAPL", Status: "paused"},
		},
		agents: []agent{
			{ID: uuid.New().String(), Name: "executor-1", Model: "twap", Status: "idle"},
		},
	}
}

// Routes builds the demo API router.
func (s *Server) Routes() http.Handler {
	r := chi.NewMux()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/datasets", s.handleDatasets)
		r.Get("/datasets/{id}/metadata", s.handleMetadata)
		r.Post("/datasets/{id}/query", s.handleQuery)

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)
		r.Post("/terminal", s.handleTerminal)
		r.Get("/summary", s.handleSummary)

		r.Get("/strategies", s.handleListStrategies)
		r.Post("/strategies", s.handleCreateStrategy)
		r.Delete("/strategies/{id}", s.handleDeleteStrategy)
		r.Get("/agents", s.handleListAgents)
		r.Post("/agents", s.handleCreateAgent)
		r.Delete("/agents/{id}", s.handleDeleteAgent)
	})

	return r
}

// Serve runs the demo server until the context is cancelled.
func (s *Server) Serve(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.logger.Info("starting demo backend", "addr", fmt.Sprintf("http://localhost:%d", port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("demo backend error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (s *Server) handleDatasets(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.Datasets(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, list)
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cols, ok := s.store.Columns(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("unknown dataset %q", id))
		return
	}
	s.writeJSON(w, map[string]any{"id": id, "columns": cols})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req PageRequest
	var wire struct {
		Page          int               `json:"page"`
		PageSize      int               `json:"pageSize"`
		SortColumn    string            `json:"sortColumn"`
		SortDirection string            `json:"sortDirection"`
		Search        string            `json:"search"`
		Filters       map[string]string `json:"filters"`
	}
	if err := json.NewDecoder(r.Body).Decode(&wire); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("malformed query request: %w", err))
		return
	}
	req = PageRequest(wire)

	page, err := s.store.QueryPage(r.Context(), id, req)
	if err != nil {
		status := http.StatusBadRequest
		if strings.Contains(err.Error(), "unknown dataset") {
			status = http.StatusNotFound
		}
		s.writeError(w, status, err)
		return
	}

	// Rows are streamed as objects in column order; plain map marshalling
	// would shuffle the keys and break column inference on the client.
	w.Header().Set("Content-Type", "application/json")
	stream := json.BorrowStream(w)
	defer json.ReturnStream(stream)

	stream.WriteObjectStart()
	stream.WriteObjectField("data")
	stream.WriteArrayStart()
	for i, row := range page.Rows {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectStart()
		for j, col := range page.Columns {
			if j > 0 {
				stream.WriteMore()
			}
			stream.WriteObjectField(col)
			stream.WriteVal(row[j])
		}
		stream.WriteObjectEnd()
	}
	stream.WriteArrayEnd()
	stream.WriteMore()
	stream.WriteObjectField("totalRows")
	stream.WriteInt(page.TotalRows)
	stream.WriteObjectEnd()
	if err := stream.Flush(); err != nil {
		s.logger.Warn("write query response", "error", err)
	}
}

func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	cur := s.settings
	s.mu.Unlock()
	s.writeJSON(w, cur)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var next settings
	if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.mu.Lock()
	s.settings = next
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTerminal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Command string `json:"command"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, map[string]any{"output": s.runCommand(r.Context(), req.Command)})
}

// runCommand interprets the toy command language of the terminal panel.
func (s *Server) runCommand(ctx context.Context, command string) []string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return []string{"(empty command)"}
	}

	switch fields[0] {
	case "help":
		return []string{
			"commands: help, status, datasets, echo <text>",
		}
	case "status":
		s.mu.Lock()
		running := 0
		for _, st := range s.strategies {
			if st.Status == "running" {
				running++
			}
		}
		total := len(s.strategies)
		s.mu.Unlock()
		return []string{
			"engine: running",
			fmt.Sprintf("strategies: %d running / %d total", running, total),
		}
	case "datasets":
		list, err := s.store.Datasets(ctx)
		if err != nil {
			return []string{"error: " + err.Error()}
		}
		out := make([]string, 0, len(list))
		for _, d := range list {
			out = append(out, fmt.Sprintf("%s (%d rows)", d.ID, d.RowCount))
		}
		return out
	case "echo":
		return []string{strings.Join(fields[1:], " ")}
	default:
		return []string{fmt.Sprintf("unknown command %q (try help)", fields[0])}
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.Datasets(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	var parts []string
	for _, d := range list {
		parts = append(parts, fmt.Sprintf("%d %s", d.RowCount, d.ID))
	}
	s.mu.Lock()
	nStrat := len(s.strategies)
	s.mu.Unlock()
	summary := fmt.Sprintf("Account is tracking %s across %d strategies. No risk limit breaches in the last 24h.",
		strings.Join(parts, " and "), nStrat)
	s.writeJSON(w, map[string]string{"summary": summary})
}

func (s *Server) handleListStrategies(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := append([]strategy(nil), s.strategies...)
	s.mu.Unlock()
	s.writeJSON(w, out)
}

func (s *Server) handleCreateStrategy(w http.ResponseWriter, r *http.Request) {
	var st strategy
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if st.Name == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("strategy name is required"))
		return
	}
	st.ID = uuid.New().String()
	if st.Status == "" {
		st.Status = "paused"
	}
	s.mu.Lock()
	s.strategies = append(s.strategies, st)
	s.mu.Unlock()
	s.writeJSON(w, st)
}

func (s *Server) handleDeleteStrategy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	kept := s.strategies[:0]
	for _, st := range s.strategies {
		if st.ID != id {
			kept = append(kept, st)
		}
	}
	s.strategies = kept
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAgents(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := append([]agent(nil), s.agents...)
	s.mu.Unlock()
	s.writeJSON(w, out)
}

func (s *Server) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	var a agent
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if a.Name == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("agent name is required"))
		return
	}
	a.ID = uuid.New().String()
	if a.Status == "" {
		a.Status = "idle"
	}
	s.mu.Lock()
	s.agents = append(s.agents, a)
	s.mu.Unlock()
	s.writeJSON(w, a)
}

func (s *Server) handleDeleteAgent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	kept := s.agents[:0]
	for _, a := range s.agents {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	s.agents = kept
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
