package explorer

// ColumnRegistry resolves the authoritative column list for a dataset and
// tracks which columns are currently visible. Columns come verbatim from
// dataset metadata when the backend supplies it, otherwise they are inferred
// from the shape of the first returned data page.
type ColumnRegistry struct {
	columns  []string
	visible  map[string]bool
	resolved bool
}

// NewColumnRegistry returns an empty, unresolved registry.
func NewColumnRegistry() ColumnRegistry {
	return ColumnRegistry{visible: map[string]bool{}}
}

// Resolve rebuilds the column list. Metadata columns win when non-empty;
// otherwise the inferred order (first-row key order as returned by the
// backend) is used; if both are empty the registry stays as it was.
//
// The first resolution makes every column visible. Later resolutions (for
// example metadata arriving after the first data page) keep the user's
// visibility choices for columns that still exist and add newly discovered
// columns as visible.
func (r *ColumnRegistry) Resolve(metadataColumns, inferred []string) {
	next := metadataColumns
	if len(next) == 0 {
		next = inferred
	}
	if len(next) == 0 {
		return
	}

	visible := make(map[string]bool, len(next))
	for _, col := range next {
		if r.resolved {
			if v, known := r.visible[col]; known {
				visible[col] = v
				continue
			}
		}
		visible[col] = true
	}

	r.columns = append([]string(nil), next...)
	r.visible = visible
	r.resolved = true
}

// Reset clears the registry; used when a new dataset is selected.
func (r *ColumnRegistry) Reset() {
	r.columns = nil
	r.visible = map[string]bool{}
	r.resolved = false
}

// Toggle flips the visibility of a known column. Unknown columns are a
// no-op, which also guarantees visible ⊆ columns.
func (r *ColumnRegistry) Toggle(column string) {
	if _, known := r.visible[column]; !known {
		return
	}
	r.visible[column] = !r.visible[column]
}

// Columns returns the known columns in backend order.
func (r *ColumnRegistry) Columns() []string {
	return append([]string(nil), r.columns...)
}

// VisibleColumns returns the visible columns, preserving backend order.
func (r *ColumnRegistry) VisibleColumns() []string {
	out := make([]string, 0, len(r.columns))
	for _, col := range r.columns {
		if r.visible[col] {
			out = append(out, col)
		}
	}
	return out
}

// Known reports whether a column is in the registry.
func (r *ColumnRegistry) Known(column string) bool {
	_, ok := r.visible[column]
	return ok
}

// Visible reports whether a column is currently shown.
func (r *ColumnRegistry) Visible(column string) bool {
	return r.visible[column]
}

// Resolved reports whether a column list has been established.
func (r *ColumnRegistry) Resolved() bool {
	return r.resolved
}
