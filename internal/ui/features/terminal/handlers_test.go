package terminal

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/datagrid/internal/testutil"
	features "github.com/leapstack-labs/datagrid/internal/ui/features"
)

func runCommand(t *testing.T, h *Handlers, command string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/terminal/run",
		strings.NewReader(`{"command":"`+command+`"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.RunCommand(rec, req)
	return rec
}

func TestRunCommandEchoesOutput(t *testing.T) {
	fx := features.SetupTestFixture(t)
	h := NewHandlers(fx.Client, testutil.NewTestLogger(t))

	rec := runCommand(t, h, "echo hello")
	body := rec.Body.String()
	assert.Contains(t, body, "&gt; echo hello")
	assert.Contains(t, body, "hello")
}

func TestHistoryAccumulatesAcrossCommands(t *testing.T) {
	fx := features.SetupTestFixture(t)
	h := NewHandlers(fx.Client, testutil.NewTestLogger(t))

	runCommand(t, h, "echo first")
	rec := runCommand(t, h, "echo second")

	body := rec.Body.String()
	assert.Contains(t, body, "first")
	assert.Contains(t, body, "second")
}

func TestEmptyCommandIsIgnored(t *testing.T) {
	fx := features.SetupTestFixture(t)
	h := NewHandlers(fx.Client, testutil.NewTestLogger(t))

	rec := runCommand(t, h, "")
	assert.NotContains(t, rec.Body.String(), "term-output")
}

func TestTerminalPageRenders(t *testing.T) {
	fx := features.SetupTestFixture(t)
	h := NewHandlers(fx.Client, testutil.NewTestLogger(t))

	req := httptest.NewRequest(http.MethodGet, "/terminal", nil)
	rec := httptest.NewRecorder()
	h.TerminalPage(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, `id="term-output"`)
	assert.Contains(t, body, "data-bind-command")
}
