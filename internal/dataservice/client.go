package dataservice

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/leapstack-labs/datagrid/internal/explorer"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client talks to the control-plane backend. It implements
// explorer.DataSource for the dataset-query contract.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
	logger     *slog.Logger
}

// Options configures a Client.
type Options struct {
	BaseURL  string
	APIToken string
	// Timeout is a transport-level guard; the explorer applies its own
	// per-fetch timeout via context.
	Timeout time.Duration
	Logger  *slog.Logger
}

// New creates a backend client.
func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiToken:   opts.APIToken,
		httpClient: &http.Client{Timeout: opts.Timeout},
		logger:     logger,
	}
}

// ListDatasets returns the datasets the backend exposes.
func (c *Client) ListDatasets(ctx context.Context) ([]DatasetInfo, error) {
	var out []DatasetInfo
	if err := c.do(ctx, http.MethodGet, "/api/datasets", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DatasetMetadata fetches the column metadata for a dataset.
func (c *Client) DatasetMetadata(ctx context.Context, datasetID string) (*explorer.Metadata, error) {
	var out metadataResponse
	path := "/api/datasets/" + url.PathEscape(datasetID) + "/metadata"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &explorer.Metadata{ID: out.ID, Columns: out.Columns}, nil
}

// QueryDataset requests one page of a dataset. The first row's key order is
// preserved so the column registry can infer columns when metadata is
// absent.
func (c *Client) QueryDataset(ctx context.Context, datasetID string, q explorer.QueryState) (*explorer.Result, error) {
	req := QueryRequest{
		Page:          q.Page,
		PageSize:      q.PageSize,
		SortColumn:    q.SortColumn,
		SortDirection: string(q.SortDirection),
		Search:        q.SearchText,
		Filters:       q.Filters,
	}
	if req.Filters == nil {
		req.Filters = map[string]string{}
	}

	var out struct {
		Data      jsoniter.RawMessage `json:"data"`
		TotalRows int                 `json:"totalRows"`
	}
	path := "/api/datasets/" + url.PathEscape(datasetID) + "/query"
	if err := c.do(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}

	rows, columns, err := decodeRows(out.Data)
	if err != nil {
		return nil, fmt.Errorf("malformed dataset response: %w", err)
	}

	return &explorer.Result{
		Columns:   columns,
		Rows:      rows,
		TotalRows: out.TotalRows,
	}, nil
}

// decodeRows decodes the data array with an iterator rather than into maps
// directly, capturing the first row's field order as returned on the wire.
func decodeRows(data []byte) ([]explorer.Row, []string, error) {
	if len(data) == 0 {
		return nil, nil, nil
	}

	iter := jsoniter.ParseBytes(json, data)
	var rows []explorer.Row
	var columns []string

	for iter.ReadArray() {
		row := explorer.Row{}
		first := len(rows) == 0
		for field := iter.ReadObject(); field != ""; field = iter.ReadObject() {
			row[field] = iter.Read()
			if first {
				columns = append(columns, field)
			}
		}
		rows = append(rows, row)
	}
	if iter.Error != nil && iter.Error != io.EOF {
		return nil, nil, iter.Error
	}
	return rows, columns, nil
}

// Settings fetches the current backend settings.
func (c *Client) Settings(ctx context.Context) (*Settings, error) {
	var out Settings
	if err := c.do(ctx, http.MethodGet, "/api/settings", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveSettings writes the backend settings.
func (c *Client) SaveSettings(ctx context.Context, s Settings) error {
	return c.do(ctx, http.MethodPut, "/api/settings", s, nil)
}

// ExecCommand sends a text command to the backend and returns its output
// lines for the terminal echo panel.
func (c *Client) ExecCommand(ctx context.Context, command string) ([]string, error) {
	req := map[string]string{"command": command}
	var out struct {
		Output []string `json:"output"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/terminal", req, &out); err != nil {
		return nil, err
	}
	return out.Output, nil
}

// Summary fetches the backend's generated account summary text.
func (c *Client) Summary(ctx context.Context) (string, error) {
	var out struct {
		Summary string `json:"summary"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/summary", nil, &out); err != nil {
		return "", err
	}
	return out.Summary, nil
}

// ListStrategies returns the configured strategies.
func (c *Client) ListStrategies(ctx context.Context) ([]Strategy, error) {
	var out []Strategy
	if err := c.do(ctx, http.MethodGet, "/api/strategies", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateStrategy registers a strategy.
func (c *Client) CreateStrategy(ctx context.Context, s Strategy) error {
	return c.do(ctx, http.MethodPost, "/api/strategies", s, nil)
}

// DeleteStrategy removes a strategy.
func (c *Client) DeleteStrategy(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/strategies/"+url.PathEscape(id), nil, nil)
}

// ListAgents returns the configured agents.
func (c *Client) ListAgents(ctx context.Context) ([]Agent, error) {
	var out []Agent
	if err := c.do(ctx, http.MethodGet, "/api/agents", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAgent registers an agent.
func (c *Client) CreateAgent(ctx context.Context, a Agent) error {
	return c.do(ctx, http.MethodPost, "/api/agents", a, nil)
}

// DeleteAgent removes an agent.
func (c *Client) DeleteAgent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/agents/"+url.PathEscape(id), nil, nil)
}

// do performs one JSON round trip and maps transport and server failures to
// human-readable errors.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("backend unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var envelope errorResponse
		if json.Unmarshal(data, &envelope) == nil && envelope.Error != "" {
			return fmt.Errorf("backend error: %s", envelope.Error)
		}
		return fmt.Errorf("backend error: %s", resp.Status)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
