// Package dataservice is the HTTP client for the DataGrid control-plane
// backend: the dataset-query contract consumed by the explorer, plus the
// thin collaborator endpoints behind the dashboard's simple pages.
package dataservice

// DatasetInfo identifies a browsable dataset.
type DatasetInfo struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	RowCount    int    `json:"rowCount,omitempty"`
}

// QueryRequest is the wire form of a dataset page request.
type QueryRequest struct {
	Page          int               `json:"page"`
	PageSize      int               `json:"pageSize"`
	SortColumn    string            `json:"sortColumn,omitempty"`
	SortDirection string            `json:"sortDirection,omitempty"`
	Search        string            `json:"search,omitempty"`
	Filters       map[string]string `json:"filters"`
}

// metadataResponse is the wire form of dataset metadata.
type metadataResponse struct {
	ID      string   `json:"id"`
	Columns []string `json:"columns,omitempty"`
}

// errorResponse is the backend's error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

// Settings are the trading backend credentials and limits edited on the
// settings page. The dashboard only round-trips them.
type Settings struct {
	ExchangeAPIKey    string  `json:"exchangeApiKey"`
	ExchangeAPISecret string  `json:"exchangeApiSecret"`
	BaseCurrency      string  `json:"baseCurrency"`
	MaxPositionSize   float64 `json:"maxPositionSize"`
}

// Strategy is a trading strategy managed through the CRUD table.
type Strategy struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Status string `json:"status"`
}

// Agent is an execution agent managed through the CRUD table.
type Agent struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Model  string `json:"model"`
	Status string `json:"status"`
}
