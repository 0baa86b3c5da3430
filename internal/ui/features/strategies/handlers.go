// Package strategies provides the strategy and agent management tables.
package strategies

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/datagrid/internal/dataservice"
	"github.com/leapstack-labs/datagrid/internal/ui/features/common"
	commonComponents "github.com/leapstack-labs/datagrid/internal/ui/features/common/components"
)

// fleetSignals mirrors the add-row form inputs.
type fleetSignals struct {
	StrategyName   string `json:"strategyName"`
	StrategySymbol string `json:"strategySymbol"`
	AgentName      string `json:"agentName"`
	AgentModel     string `json:"agentModel"`
}

// Handlers provides HTTP handlers for the strategies feature.
type Handlers struct {
	client *dataservice.Client
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(client *dataservice.Client, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{client: client, logger: logger}
}

// StrategiesPage renders the fleet management page.
func (h *Handlers) StrategiesPage(w http.ResponseWriter, r *http.Request) {
	page := commonComponents.Shell("Strategies · DataGrid", "/strategies", h.fleet(r.Context()))
	if err := page.Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// CreateStrategy adds a strategy from the form signals.
func (h *Handlers) CreateStrategy(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, sig fleetSignals) error {
		if sig.StrategyName == "" {
			return fmt.Errorf("strategy name is required")
		}
		return h.client.CreateStrategy(ctx, dataservice.Strategy{
			Name:   sig.StrategyName,
			Symbol: sig.StrategySymbol,
		})
	})
}

// DeleteStrategy removes the strategy named in the URL.
func (h *Handlers) DeleteStrategy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(w, r, func(ctx context.Context, _ fleetSignals) error {
		return h.client.DeleteStrategy(ctx, id)
	})
}

// CreateAgent adds an agent from the form signals.
func (h *Handlers) CreateAgent(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, sig fleetSignals) error {
		if sig.AgentName == "" {
			return fmt.Errorf("agent name is required")
		}
		return h.client.CreateAgent(ctx, dataservice.Agent{
			Name:  sig.AgentName,
			Model: sig.AgentModel,
		})
	})
}

// DeleteAgent removes the agent named in the URL.
func (h *Handlers) DeleteAgent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(w, r, func(ctx context.Context, _ fleetSignals) error {
		return h.client.DeleteAgent(ctx, id)
	})
}

// mutate runs one fleet change and re-renders the whole fleet region.
func (h *Handlers) mutate(w http.ResponseWriter, r *http.Request, apply func(context.Context, fleetSignals) error) {
	var sig fleetSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		h.logger.Debug("unreadable fleet signals", "error", err)
	}

	sse := datastar.NewSSE(w, r)

	if err := apply(r.Context(), sig); err != nil {
		_ = sse.PatchElementTempl(commonComponents.ErrorBanner("fleet-status", err.Error(), ""))
		return
	}
	if err := sse.PatchElementTempl(h.fleet(r.Context())); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// fleet renders both tables plus the add forms inside the patched region.
func (h *Handlers) fleet(ctx context.Context) templ.Component {
	strategies, err := h.client.ListStrategies(ctx)
	if err != nil {
		h.logger.Warn("strategy listing unavailable", "error", err)
	}
	agents, err := h.client.ListAgents(ctx)
	if err != nil {
		h.logger.Warn("agent listing unavailable", "error", err)
	}

	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div id="fleet"><div id="fleet-status"></div>`); err != nil {
			return err
		}

		if _, err := io.WriteString(w, `<div class="card"><h2>Strategies</h2><table class="data"><thead><tr><th>name</th><th>symbol</th><th>status</th><th></th></tr></thead><tbody>`); err != nil {
			return err
		}
		for _, s := range strategies {
			if _, err := fmt.Fprintf(w,
				`<tr><td>%s</td><td>%s</td><td><span class="badge %s">%s</span></td><td><button data-on-click="@post('/api/fleet/strategies/%s/delete')">Delete</button></td></tr>`,
				templ.EscapeString(s.Name), templ.EscapeString(s.Symbol),
				templ.EscapeString(s.Status), templ.EscapeString(common.StatusLabel(s.Status)),
				templ.EscapeString(s.ID)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</tbody></table>`+
			`<div class="grid-toolbar">`+
			`<input type="text" placeholder="name" data-bind-strategyName>`+
			`<input type="text" placeholder="symbol" data-bind-strategySymbol>`+
			`<button data-on-click="@post('/api/fleet/strategies/create')">Add strategy</button>`+
			`</div></div>`); err != nil {
			return err
		}

		if _, err := io.WriteString(w, `<div class="card"><h2>Agents</h2><table class="data"><thead><tr><th>name</th><th>model</th><th>status</th><th></th></tr></thead><tbody>`); err != nil {
			return err
		}
		for _, a := range agents {
			if _, err := fmt.Fprintf(w,
				`<tr><td>%s</td><td>%s</td><td><span class="badge %s">%s</span></td><td><button data-on-click="@post('/api/fleet/agents/%s/delete')">Delete</button></td></tr>`,
				templ.EscapeString(a.Name), templ.EscapeString(a.Model),
				templ.EscapeString(a.Status), templ.EscapeString(common.StatusLabel(a.Status)),
				templ.EscapeString(a.ID)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</tbody></table>`+
			`<div class="grid-toolbar">`+
			`<input type="text" placeholder="name" data-bind-agentName>`+
			`<input type="text" placeholder="model" data-bind-agentModel>`+
			`<button data-on-click="@post('/api/fleet/agents/create')">Add agent</button>`+
			`</div></div></div>`)
		return err
	})
}
