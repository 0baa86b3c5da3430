// Package components renders the data explorer grid.
package components

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/datagrid/internal/dataservice"
	"github.com/leapstack-labs/datagrid/internal/explorer"
)

// DataPage is the body of the data explorer page: the toolbar, the feed
// hookup and the initial grid. The grid region is re-patched over SSE;
// the toolbar inputs are not, so typing is never clobbered mid-fetch.
func DataPage(datasets []dataservice.DatasetInfo, snap explorer.Snapshot) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div data-on-load="@get('/data/feed')">`); err != nil {
			return err
		}
		if err := toolbar(datasets, snap).Render(ctx, w); err != nil {
			return err
		}
		if err := Grid(snap).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

func toolbar(datasets []dataservice.DatasetInfo, snap explorer.Snapshot) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div class="grid-toolbar">`); err != nil {
			return err
		}

		if _, err := io.WriteString(w, `<select data-bind-dataset data-on-change="@post('/api/data/select')">`+
			`<option value="">dataset…</option>`); err != nil {
			return err
		}
		for _, d := range datasets {
			selected := ""
			if d.ID == snap.DatasetID {
				selected = " selected"
			}
			if _, err := fmt.Fprintf(w, `<option value="%s"%s>%s (%d rows)</option>`,
				templ.EscapeString(d.ID), selected, templ.EscapeString(d.ID), d.RowCount); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</select>`); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(w,
			`<input type="text" placeholder="search" value="%s" data-bind-search data-on-input__debounce.400ms="@post('/api/data/search')">`,
			templ.EscapeString(snap.Query.SearchText)); err != nil {
			return err
		}

		if _, err := io.WriteString(w, `<select data-bind-pagesize data-on-change="@post('/api/data/pagesize')">`); err != nil {
			return err
		}
		for _, size := range explorer.AllowedPageSizes {
			selected := ""
			if size == snap.Query.PageSize {
				selected = " selected"
			}
			if _, err := fmt.Fprintf(w, `<option value="%d"%s>%d / page</option>`, size, selected, size); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</select>`); err != nil {
			return err
		}

		_, err := io.WriteString(w,
			`<button data-on-click="@post('/api/data/refresh')">Refresh</button></div>`)
		return err
	})
}

// Grid renders the table region from a state snapshot. It carries the
// stable id the SSE handlers patch.
func Grid(snap explorer.Snapshot) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		class := "card"
		if snap.Fetch.Status == explorer.StatusLoading {
			class += " loading"
		}
		if _, err := fmt.Fprintf(w, `<div id="grid" class="%s">`, class); err != nil {
			return err
		}

		if snap.Fetch.Status == explorer.StatusError {
			if _, err := fmt.Fprintf(w,
				`<div class="banner-error">%s <button data-on-click="@post('/api/data/refresh')">Retry</button></div>`,
				templ.EscapeString(snap.Fetch.ErrorMessage)); err != nil {
				return err
			}
		}

		switch {
		case snap.DatasetID == "":
			if _, err := io.WriteString(w, `<div class="empty">Select a dataset to browse.</div>`); err != nil {
				return err
			}
		case len(snap.Columns) == 0:
			if _, err := io.WriteString(w, `<div class="empty">No columns available.</div>`); err != nil {
				return err
			}
		default:
			if err := columnToggles(snap).Render(ctx, w); err != nil {
				return err
			}
			if err := dataTable(snap).Render(ctx, w); err != nil {
				return err
			}
			if err := pager(snap).Render(ctx, w); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

func columnToggles(snap explorer.Snapshot) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		visible := make(map[string]bool, len(snap.VisibleColumns))
		for _, col := range snap.VisibleColumns {
			visible[col] = true
		}

		if _, err := io.WriteString(w, `<div class="grid-toolbar">`); err != nil {
			return err
		}
		for _, col := range snap.Columns {
			checked := ""
			if visible[col] {
				checked = " checked"
			}
			if _, err := fmt.Fprintf(w,
				`<label><input type="checkbox"%s data-on-change="@post('/api/data/column/%s/toggle')"> %s</label>`,
				checked, templ.EscapeString(col), templ.EscapeString(col)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

func dataTable(snap explorer.Snapshot) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if len(snap.VisibleColumns) == 0 {
			_, err := io.WriteString(w, `<div class="empty">All columns are hidden.</div>`)
			return err
		}

		if _, err := io.WriteString(w, `<table class="data"><thead><tr>`); err != nil {
			return err
		}
		for _, col := range snap.VisibleColumns {
			marker := ""
			if col == snap.Query.SortColumn {
				marker = " ▲"
				if snap.Query.SortDirection == explorer.SortDesc {
					marker = " ▼"
				}
			}
			if _, err := fmt.Fprintf(w, `<th data-on-click="@post('/api/data/sort/%s')">%s%s</th>`,
				templ.EscapeString(col), templ.EscapeString(col), marker); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</tr><tr class="filter-row">`); err != nil {
			return err
		}
		for _, col := range snap.VisibleColumns {
			if _, err := fmt.Fprintf(w,
				`<th><input type="text" placeholder="filter" value="%s" data-bind-filters.%s data-on-input__debounce.400ms="@post('/api/data/filter/%s')"></th>`,
				templ.EscapeString(snap.Query.Filters[col]), templ.EscapeString(col), templ.EscapeString(col)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</tr></thead><tbody>`); err != nil {
			return err
		}

		if len(snap.Fetch.Rows) == 0 && snap.Fetch.Status == explorer.StatusSuccess {
			if _, err := fmt.Fprintf(w, `<tr><td colspan="%d" class="empty">No rows match the current filters.</td></tr>`,
				len(snap.VisibleColumns)); err != nil {
				return err
			}
		}
		for _, row := range snap.Fetch.Rows {
			if _, err := io.WriteString(w, `<tr>`); err != nil {
				return err
			}
			for _, col := range snap.VisibleColumns {
				if _, err := fmt.Fprintf(w, `<td>%s</td>`,
					templ.EscapeString(explorer.FormatCell(row[col]))); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</tr>`); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, `</tbody></table>`)
		return err
	})
}

func pager(snap explorer.Snapshot) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		page := snap.Query.Page
		last := snap.TotalPages

		if _, err := io.WriteString(w, `<div class="pager">`); err != nil {
			return err
		}
		for _, b := range []struct {
			label  string
			target int
		}{
			{"«", 1},
			{"‹", page - 1},
			{"›", page + 1},
			{"»", last},
		} {
			disabled := ""
			if b.target < 1 || b.target > last || b.target == page {
				disabled = " disabled"
			}
			if _, err := fmt.Fprintf(w, `<button data-on-click="@post('/api/data/page/%d')"%s>%s</button>`,
				b.target, disabled, b.label); err != nil {
				return err
			}
		}

		info := explorer.PageRange(page, snap.Query.PageSize, snap.Fetch.TotalRows)
		if snap.Fetch.Status == explorer.StatusLoading {
			info = "Loading…"
		}
		_, err := fmt.Fprintf(w, `<span>%s</span></div>`, templ.EscapeString(info))
		return err
	})
}
