// Package settings provides the backend settings form.
package settings

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/datagrid/internal/dataservice"
	commonComponents "github.com/leapstack-labs/datagrid/internal/ui/features/common/components"
)

// settingsSignals mirrors the form inputs. Numbers arrive as strings.
type settingsSignals struct {
	ExchangeAPIKey    string `json:"exchangeApiKey"`
	ExchangeAPISecret string `json:"exchangeApiSecret"`
	BaseCurrency      string `json:"baseCurrency"`
	MaxPositionSize   string `json:"maxPositionSize"`
}

// Handlers provides HTTP handlers for the settings feature.
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

// SettingsPage renders the settings form seeded with the current values.
func (h *Handlers) SettingsPage(w http.ResponseWriter, r *http.Request) {
	current, err := h.client.Settings(r.Context())
	if err != nil {
		h.logger.Warn("settings unavailable", "error", err)
		current = &dataservice.Settings{}
	}

	page := commonComponents.Shell("Settings · DataGrid", "/settings", settingsForm(*current))
	if err := page.Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// SaveSettings persists the form and confirms with a toast.
func (h *Handlers) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var sig settingsSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.ConsoleError(err)
		return
	}

	sse := datastar.NewSSE(w, r)

	maxSize, err := strconv.ParseFloat(sig.MaxPositionSize, 64)
	if err != nil && sig.MaxPositionSize != "" {
		_ = sse.PatchElementTempl(commonComponents.ErrorBanner("settings-status",
			"max position size must be a number", ""))
		return
	}

	next := dataservice.Settings{
		ExchangeAPIKey:    sig.ExchangeAPIKey,
		ExchangeAPISecret: sig.ExchangeAPISecret,
		BaseCurrency:      sig.BaseCurrency,
		MaxPositionSize:   maxSize,
	}
	if err := h.client.SaveSettings(r.Context(), next); err != nil {
		_ = sse.PatchElementTempl(commonComponents.ErrorBanner("settings-status", err.Error(), ""))
		return
	}

	if err := sse.PatchElementTempl(statusSaved()); err != nil {
		_ = sse.ConsoleError(err)
	}
}

func settingsForm(s dataservice.Settings) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		size := ""
		if s.MaxPositionSize > 0 {
			size = strconv.FormatFloat(s.MaxPositionSize, 'f', -1, 64)
		}
		_, err := fmt.Fprintf(w, `<div class="card"><h2>Settings</h2>
<form data-on-submit__prevent="@post('/api/settings/save')">
<p><label>Exchange API key<br><input type="text" value="%s" data-bind-exchangeApiKey></label></p>
<p><label>Exchange API secret<br><input type="password" value="%s" data-bind-exchangeApiSecret></label></p>
<p><label>Base currency<br><input type="text" value="%s" data-bind-baseCurrency></label></p>
<p><label>Max position size<br><input type="text" value="%s" data-bind-maxPositionSize></label></p>
<button type="submit">Save</button>
</form>
<div id="settings-status"></div>
</div>`,
			templ.EscapeString(s.ExchangeAPIKey),
			templ.EscapeString(s.ExchangeAPISecret),
			templ.EscapeString(s.BaseCurrency),
			templ.EscapeString(size))
		return err
	})
}

func statusSaved() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div id="settings-status" class="toast">Settings saved.</div>`)
		return err
	})
}
