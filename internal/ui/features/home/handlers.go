package home

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/datagrid/internal/dataservice"
	commonComponents "github.com/leapstack-labs/datagrid/internal/ui/features/common/components"
)

// Handlers provides HTTP handlers for the home feature.
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

// HomePage renders the landing page. Each card degrades independently when
// the backend is unreachable rather than failing the whole page.
func (h *Handlers) HomePage(w http.ResponseWriter, r *http.Request) {
	data := h.buildDashboardData(r.Context())

	page := commonComponents.Shell("DataGrid", "/", dashboard(data))
	if err := page.Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// buildDashboardData assembles the landing page cards.
func (h *Handlers) buildDashboardData(ctx context.Context) DashboardData {
	var data DashboardData
	var err error

	if data.Summary, err = h.client.Summary(ctx); err != nil {
		h.logger.Warn("summary unavailable", "error", err)
		data.Summary = "Backend unreachable."
	}
	if data.Datasets, err = h.client.ListDatasets(ctx); err != nil {
		h.logger.Warn("dataset listing unavailable", "error", err)
	}
	if data.Strategies, err = h.client.ListStrategies(ctx); err != nil {
		h.logger.Warn("strategy listing unavailable", "error", err)
	}
	if data.Agents, err = h.client.ListAgents(ctx); err != nil {
		h.logger.Warn("agent listing unavailable", "error", err)
	}
	return data
}

func dashboard(data DashboardData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<div class="card"><h2>Account</h2><p>%s</p></div>`,
			templ.EscapeString(data.Summary)); err != nil {
			return err
		}

		if _, err := io.WriteString(w, `<div class="card"><h2>Datasets</h2><table class="data"><thead><tr><th>dataset</th><th>rows</th></tr></thead><tbody>`); err != nil {
			return err
		}
		for _, d := range data.Datasets {
			if _, err := fmt.Fprintf(w, `<tr><td><a href="/data">%s</a></td><td>%d</td></tr>`,
				templ.EscapeString(d.ID), d.RowCount); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</tbody></table></div>`); err != nil {
			return err
		}

		_, err := fmt.Fprintf(w,
			`<div class="card"><h2>Fleet</h2><p>%d strategies, %d agents. <a href="/strategies">Manage</a></p></div>`,
			len(data.Strategies), len(data.Agents))
		return err
	})
}
