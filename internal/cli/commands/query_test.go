package commands

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/datagrid/internal/backend"
	"github.com/leapstack-labs/datagrid/internal/cli/config"
	"github.com/leapstack-labs/datagrid/internal/testutil"
)

// startDemoBackend serves the seeded demo backend over httptest and points
// the CLI at it through the environment.
func startDemoBackend(t *testing.T) {
	t.Helper()

	store, err := backend.OpenStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	srv := httptest.NewServer(backend.NewServer(store, testutil.NewTestLogger(t)).Routes())
	t.Cleanup(srv.Close)

	config.ResetConfig()
	t.Setenv("DATAGRID_BACKEND_URL", srv.URL)
}

// runCommand executes a command with args and returns its combined output.
func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestQueryRendersFirstPage(t *testing.T) {
	startDemoBackend(t)

	out, err := runCommand(t, NewQueryCommand(), "trades")
	require.NoError(t, err)

	assert.Contains(t, out, "symbol")
	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "(25 of 240 rows)")
}

func TestQueryFilterFlagNarrowsRows(t *testing.T) {
	startDemoBackend(t)

	out, err := runCommand(t, NewQueryCommand(), "trades", "--filter", "symbol=NVDA", "--page-size", "50")
	require.NoError(t, err)

	assert.Contains(t, out, "NVDA")
	assert.NotContains(t, out, "AAPL")
	assert.Contains(t, out, "(40 of 40 rows)")
}

func TestQuerySortDescending(t *testing.T) {
	startDemoBackend(t)

	out, err := runCommand(t, NewQueryCommand(), "trades", "--sort", "symbol", "--desc", "--page-size", "10")
	require.NoError(t, err)

	assert.Contains(t, out, "TSLA")
	assert.NotContains(t, out, "AAPL")
}

func TestQueryJSONFormatKeepsColumnOrder(t *testing.T) {
	startDemoBackend(t)

	out, err := runCommand(t, NewQueryCommand(), "trades", "--format", "json", "--page-size", "10")
	require.NoError(t, err)

	assert.Contains(t, out, `"symbol"`)
	idIdx := bytes.Index([]byte(out), []byte(`"id"`))
	symbolIdx := bytes.Index([]byte(out), []byte(`"symbol"`))
	require.GreaterOrEqual(t, idIdx, 0)
	require.GreaterOrEqual(t, symbolIdx, 0)
	assert.Less(t, idIdx, symbolIdx, "id should precede symbol in JSON output")
}

func TestQueryRejectsInvalidFilter(t *testing.T) {
	startDemoBackend(t)

	_, err := runCommand(t, NewQueryCommand(), "trades", "--filter", "symbol")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected column=value")
}

func TestQueryRejectsInvalidPageSize(t *testing.T) {
	startDemoBackend(t)

	_, err := runCommand(t, NewQueryCommand(), "trades", "--page-size", "7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid page size")
}

func TestQueryDatasetsSubcommand(t *testing.T) {
	startDemoBackend(t)

	out, err := runCommand(t, NewQueryCommand(), "datasets")
	require.NoError(t, err)

	assert.Contains(t, out, "trades")
	assert.Contains(t, out, "positions")
}

func TestQueryColumnsSubcommand(t *testing.T) {
	startDemoBackend(t)

	out, err := runCommand(t, NewQueryCommand(), "columns", "trades")
	require.NoError(t, err)

	assert.Contains(t, out, "symbol")
	assert.Contains(t, out, "executed_at")
}
