// Package explorer implements the remote-backed tabular data explorer:
// the query state describing which page of which view the user wants, the
// column registry resolving the table shape, and the fetch orchestrator
// that keeps the displayed page consistent with a slow, fallible backend.
package explorer

// SortDirection is the direction of a column sort.
type SortDirection string

// Sort directions.
const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// AllowedPageSizes lists the page sizes the UI offers.
var AllowedPageSizes = []int{10, 25, 50, 100, 250, 500}

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 25

// QueryState is the authoritative description of the page the user wants:
// page index, page size, sort, search text and per-column filters. Column
// visibility lives in the ColumnRegistry since it is a display-only concern
// that never changes the remote query.
type QueryState struct {
	Page          int
	PageSize      int
	SortColumn    string
	SortDirection SortDirection
	SearchText    string
	Filters       map[string]string
}

// NewQueryState returns a query state pointing at the first page.
func NewQueryState(pageSize int) QueryState {
	if !ValidPageSize(pageSize) {
		pageSize = DefaultPageSize
	}
	return QueryState{
		Page:     1,
		PageSize: pageSize,
		Filters:  map[string]string{},
	}
}

// Clone returns a deep copy; fetches hold a copy so that later mutations
// cannot leak into an in-flight request.
func (q QueryState) Clone() QueryState {
	c := q
	c.Filters = make(map[string]string, len(q.Filters))
	for k, v := range q.Filters {
		c.Filters[k] = v
	}
	return c
}

// ValidPageSize reports whether n is one of the allowed page sizes.
func ValidPageSize(n int) bool {
	for _, s := range AllowedPageSizes {
		if n == s {
			return true
		}
	}
	return false
}

// TotalPages computes the page count for a row count and page size.
func TotalPages(totalRows, pageSize int) int {
	if totalRows <= 0 || pageSize <= 0 {
		return 0
	}
	return (totalRows + pageSize - 1) / pageSize
}
