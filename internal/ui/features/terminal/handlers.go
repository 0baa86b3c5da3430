// Package terminal provides the backend command echo panel.
package terminal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/datagrid/internal/dataservice"
	commonComponents "github.com/leapstack-labs/datagrid/internal/ui/features/common/components"
)

// historyLimit caps the retained output so a long-lived dashboard does not
// grow without bound.
const historyLimit = 400

// terminalSignals mirrors the command input.
type terminalSignals struct {
	Command string `json:"command"`
}

// Handlers provides HTTP handlers for the terminal feature.
type Handlers struct {
	client *dataservice.Client
	logger *slog.Logger

	mu      sync.Mutex
	history []string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(client *dataservice.Client, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{client: client, logger: logger}
}

// TerminalPage renders the terminal with its accumulated history.
func (h *Handlers) TerminalPage(w http.ResponseWriter, r *http.Request) {
	body := templ.ComponentFunc(func(ctx context.Context, wr io.Writer) error {
		if _, err := io.WriteString(wr, `<div class="card"><h2>Terminal</h2>`); err != nil {
			return err
		}
		if err := h.output().Render(ctx, wr); err != nil {
			return err
		}
		_, err := io.WriteString(wr, `<form data-on-submit__prevent="@post('/api/terminal/run')">`+
			`<input type="text" placeholder="command (try: help)" data-bind-command style="width:100%;margin-top:8px">`+
			`</form></div>`)
		return err
	})

	page := commonComponents.Shell("Terminal · DataGrid", "/terminal", body)
	if err := page.Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// RunCommand forwards one command to the backend and patches the output.
func (h *Handlers) RunCommand(w http.ResponseWriter, r *http.Request) {
	var sig terminalSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.ConsoleError(err)
		return
	}

	sse := datastar.NewSSE(w, r)

	command := strings.TrimSpace(sig.Command)
	if command == "" {
		return
	}

	lines, err := h.client.ExecCommand(r.Context(), command)
	if err != nil {
		lines = []string{"error: " + err.Error()}
	}

	h.mu.Lock()
	h.history = append(h.history, "> "+command)
	h.history = append(h.history, lines...)
	if len(h.history) > historyLimit {
		h.history = h.history[len(h.history)-historyLimit:]
	}
	h.mu.Unlock()

	if err := sse.PatchElementTempl(h.output()); err != nil {
		_ = sse.ConsoleError(err)
	}
}

func (h *Handlers) output() templ.Component {
	h.mu.Lock()
	lines := append([]string(nil), h.history...)
	h.mu.Unlock()

	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div id="term-output" class="terminal">`); err != nil {
			return err
		}
		if len(lines) == 0 {
			if _, err := io.WriteString(w, "Type a command below."); err != nil {
				return err
			}
		}
		for _, line := range lines {
			if _, err := fmt.Fprintf(w, "%s\n", templ.EscapeString(line)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}
