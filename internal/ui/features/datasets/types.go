// Package datasets provides the remote-backed data explorer feature.
package datasets

import (
	"context"

	"github.com/leapstack-labs/datagrid/internal/dataservice"
)

// Backend lists the datasets offered by the control-plane backend. The
// per-session query traffic goes through the explorer sessions instead.
type Backend interface {
	ListDatasets(ctx context.Context) ([]dataservice.DatasetInfo, error)
}

// gridSignals are the frontend signals shared by the grid actions.
// Select values arrive as strings regardless of their semantic type.
type gridSignals struct {
	Dataset  string            `json:"dataset"`
	Search   string            `json:"search"`
	PageSize string            `json:"pagesize"`
	Filters  map[string]string `json:"filters"`
}
