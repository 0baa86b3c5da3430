package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	jsoniter "github.com/json-iterator/go"

	"github.com/leapstack-labs/datagrid/internal/explorer"
)

// renderResult renders one dataset page in the requested format. Column
// order follows cols, which is the metadata order when available and the
// wire order of the first row otherwise.
func renderResult(w io.Writer, cols []string, res *explorer.Result, format string) error {
	switch format {
	case "json":
		return renderJSON(w, cols, res.Rows)
	case "csv":
		return renderCSV(w, cols, res.Rows)
	case "md", "markdown":
		return renderMarkdown(w, cols, res.Rows)
	default:
		return renderTable(w, cols, res)
	}
}

func renderTable(w io.Writer, cols []string, res *explorer.Result) error {
	if len(res.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(cols))
	for i, col := range cols {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	for _, r := range res.Rows {
		row := make(table.Row, len(cols))
		for i, col := range cols {
			row[i] = explorer.FormatCell(r[col])
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d of %d rows)\n", len(res.Rows), res.TotalRows)
	return nil
}

func renderJSON(w io.Writer, cols []string, rows []explorer.Row) error {
	// Re-encode through an ordered stream so fields keep the column order
	// instead of Go's randomized map order.
	cfg := jsoniter.ConfigCompatibleWithStandardLibrary
	stream := cfg.BorrowStream(w)
	defer cfg.ReturnStream(stream)

	stream.WriteArrayStart()
	for i, r := range rows {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectStart()
		for j, col := range cols {
			if j > 0 {
				stream.WriteMore()
			}
			stream.WriteObjectField(col)
			stream.WriteVal(r[col])
		}
		stream.WriteObjectEnd()
	}
	stream.WriteArrayEnd()
	if err := stream.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

func renderCSV(w io.Writer, cols []string, rows []explorer.Row) error {
	_, _ = fmt.Fprintln(w, strings.Join(cols, ","))

	for _, r := range rows {
		values := make([]string, len(cols))
		for i, col := range cols {
			values[i] = escapeCSV(explorer.FormatCell(r[col]))
		}
		_, _ = fmt.Fprintln(w, strings.Join(values, ","))
	}
	return nil
}

func renderMarkdown(w io.Writer, cols []string, rows []explorer.Row) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(cols, " | "))
	seps := make([]string, len(cols))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, r := range rows {
		values := make([]string, len(cols))
		for i, col := range cols {
			values[i] = explorer.FormatCell(r[col])
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | "))
	}
	return nil
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
