package components

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/datagrid/internal/explorer"
)

func renderGrid(t *testing.T, snap explorer.Snapshot) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Grid(snap).Render(context.Background(), &buf))
	return buf.String()
}

func TestGridRendersSingleEmptyRowWhenNoRowsMatch(t *testing.T) {
	snap := explorer.Snapshot{
		DatasetID:      "trades",
		Query:          explorer.NewQueryState(25),
		Columns:        []string{"id", "symbol"},
		VisibleColumns: []string{"id", "symbol"},
		Fetch:          explorer.FetchState{Status: explorer.StatusSuccess},
	}

	html := renderGrid(t, snap)

	assert.Equal(t, 1, strings.Count(html, "No rows match the current filters."),
		"empty result should render exactly one placeholder row")
	assert.Contains(t, html, `colspan="2"`)
	assert.Contains(t, html, "<table")
}

func TestGridDisablesPagerOnEmptyResult(t *testing.T) {
	snap := explorer.Snapshot{
		DatasetID:      "trades",
		Query:          explorer.NewQueryState(25),
		Columns:        []string{"id", "symbol"},
		VisibleColumns: []string{"id", "symbol"},
		Fetch:          explorer.FetchState{Status: explorer.StatusSuccess},
	}

	html := renderGrid(t, snap)

	assert.Equal(t, 4, strings.Count(html, " disabled"),
		"all four pager buttons should be disabled with zero rows")
	assert.Contains(t, html, "0 of 0")
}

func TestGridRendersPlaceholderWithoutColumns(t *testing.T) {
	snap := explorer.Snapshot{
		DatasetID: "trades",
		Query:     explorer.NewQueryState(25),
		Fetch:     explorer.FetchState{Status: explorer.StatusSuccess},
	}

	html := renderGrid(t, snap)

	assert.Contains(t, html, "No columns available.")
	assert.NotContains(t, html, "<table")
}

func TestGridLoadingStateReplacesRangeLabel(t *testing.T) {
	snap := explorer.Snapshot{
		DatasetID:      "trades",
		Query:          explorer.NewQueryState(25),
		Columns:        []string{"id"},
		VisibleColumns: []string{"id"},
		Fetch:          explorer.FetchState{Status: explorer.StatusLoading},
	}

	html := renderGrid(t, snap)

	assert.Contains(t, html, `class="card loading"`)
	assert.Contains(t, html, "Loading…")
	assert.NotContains(t, html, "0 of 0")
}
