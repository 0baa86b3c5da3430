// Package backend is an embedded demo implementation of the control-plane
// contract, backed by an in-memory sqlite database. `datagrid demo` serves
// it so the dashboard can be exercised without a real trading backend, and
// tests use it as a realistic collaborator with genuine paging, sorting and
// filtering semantics.
package backend

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// datasetDef declares a browsable table: its column order as reported in
// metadata and the columns free-text search applies to.
type datasetDef struct {
	name       string
	columns    []string
	searchable []string
}

var datasets = []datasetDef{
	{
		name:       "trades",
		columns:    []string{"id", "symbol", "side", "qty", "price", "executed_at"},
		searchable: []string{"symbol", "side"},
	},
	{
		name:       "positions",
		columns:    []string{"symbol", "qty", "avg_price", "market_value", "updated_at"},
		searchable: []string{"symbol"},
	},
}

// Store owns the demo database.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and seeds) the demo database. Use ":memory:" for an
// ephemeral one.
func OpenStore(path string) (*Store, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open demo database: %w", err)
	}
	// A single connection keeps the in-memory database alive and visible
	// to every request.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping demo database: %w", err)
	}

	s := &Store{db: db}
	if err := s.seed(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// seed creates and fills the demo tables with deterministic data.
func (s *Store) seed() error {
	schema := `
		CREATE TABLE IF NOT EXISTS trades (
			id INTEGER PRIMARY KEY,
			symbol TEXT NOT NULL,
			side TEXT NOT NULL,
			qty INTEGER NOT NULL,
			price REAL NOT NULL,
			executed_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS positions (
			symbol TEXT PRIMARY KEY,
			qty INTEGER NOT NULL,
			avg_price REAL NOT NULL,
			market_value REAL NOT NULL,
			updated_at TEXT NOT NULL
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create demo schema: %w", err)
	}

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM trades`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	symbols := []string{"AAPL", "MSFT", "NVDA", "AMZN", "GOOG", "TSLA"}
	sides := []string{"buy", "sell"}
	base := time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for i := 0; i < 240; i++ {
		sym := symbols[i%len(symbols)]
		side := sides[(i/3)%len(sides)]
		qty := 10 + (i%12)*5
		price := 90.0 + float64(i%60)*2.25 + float64(i%7)*0.4
		at := base.Add(time.Duration(i) * 17 * time.Minute).Format(time.RFC3339)
		if _, err := tx.Exec(
			`INSERT INTO trades (id, symbol, side, qty, price, executed_at) VALUES (?, ?, ?, ?, ?, ?)`,
			i+1, sym, side, qty, price, at,
		); err != nil {
			return fmt.Errorf("seed trades: %w", err)
		}
	}

	for i, sym := range symbols {
		qty := 100 + i*40
		avg := 95.0 + float64(i)*31.5
		if _, err := tx.Exec(
			`INSERT INTO positions (symbol, qty, avg_price, market_value, updated_at) VALUES (?, ?, ?, ?, ?)`,
			sym, qty, avg, float64(qty)*avg*1.08, base.Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("seed positions: %w", err)
		}
	}

	return tx.Commit()
}

// Datasets lists the demo datasets with their current row counts.
func (s *Store) Datasets(ctx context.Context) ([]DatasetSummary, error) {
	out := make([]DatasetSummary, 0, len(datasets))
	for _, d := range datasets {
		var n int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+d.name).Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, DatasetSummary{ID: d.name, RowCount: n})
	}
	return out, nil
}

// Columns returns the metadata column order for a dataset.
func (s *Store) Columns(dataset string) ([]string, bool) {
	d, ok := findDataset(dataset)
	if !ok {
		return nil, false
	}
	return append([]string(nil), d.columns...), true
}

// Page is one page of a dataset, with rows in column order.
type Page struct {
	Columns   []string
	Rows      [][]any
	TotalRows int
}

// PageRequest describes one page query against a dataset.
type PageRequest struct {
	Page          int
	PageSize      int
	SortColumn    string
	SortDirection string
	Search        string
	Filters       map[string]string
}

// QueryPage runs one validated page query. Sort and filter columns must be
// known dataset columns; everything user-supplied is bound as a parameter.
func (s *Store) QueryPage(ctx context.Context, dataset string, req PageRequest) (*Page, error) {
	d, ok := findDataset(dataset)
	if !ok {
		return nil, fmt.Errorf("unknown dataset %q", dataset)
	}
	if req.Page < 1 || req.PageSize < 1 {
		return nil, fmt.Errorf("invalid page %d/%d", req.Page, req.PageSize)
	}

	var conds []string
	var args []any

	if req.Search != "" {
		var likes []string
		for _, col := range d.searchable {
			likes = append(likes, col+" LIKE ?")
			args = append(args, "%"+req.Search+"%")
		}
		conds = append(conds, "("+strings.Join(likes, " OR ")+")")
	}

	for _, col := range d.columns {
		v, ok := req.Filters[col]
		if !ok || v == "" {
			continue
		}
		conds = append(conds, col+" = ?")
		args = append(args, v)
	}
	for col := range req.Filters {
		if !hasColumn(d, col) {
			return nil, fmt.Errorf("unknown filter column %q", col)
		}
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	countSQL := "SELECT COUNT(*) FROM " + d.name + where
	if err := s.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count %s: %w", d.name, err)
	}

	order := ""
	if req.SortColumn != "" {
		if !hasColumn(d, req.SortColumn) {
			return nil, fmt.Errorf("unknown sort column %q", req.SortColumn)
		}
		dir := "ASC"
		if strings.EqualFold(req.SortDirection, "desc") {
			dir = "DESC"
		}
		order = " ORDER BY " + req.SortColumn + " " + dir
	}

	query := "SELECT " + strings.Join(d.columns, ", ") + " FROM " + d.name +
		where + order + " LIMIT ? OFFSET ?"
	queryArgs := append(append([]any(nil), args...), req.PageSize, (req.Page-1)*req.PageSize)

	rows, err := s.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", d.name, err)
	}
	defer func() { _ = rows.Close() }()

	page := &Page{Columns: append([]string(nil), d.columns...), TotalRows: total}
	for rows.Next() {
		values := make([]any, len(d.columns))
		ptrs := make([]any, len(d.columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		page.Rows = append(page.Rows, values)
	}
	return page, rows.Err()
}

// DatasetSummary is one entry in the dataset listing.
type DatasetSummary struct {
	ID       string `json:"id"`
	RowCount int    `json:"rowCount"`
}

func findDataset(name string) (datasetDef, bool) {
	for _, d := range datasets {
		if d.name == name {
			return d, true
		}
	}
	return datasetDef{}, false
}

func hasColumn(d datasetDef, col string) bool {
	for _, c := range d.columns {
		if c == col {
			return true
		}
	}
	return false
}
