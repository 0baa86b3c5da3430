package explorer

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NullPlaceholder is rendered for null/absent cell values.
const NullPlaceholder = "–"

var printer = message.NewPrinter(language.English)

// dateLayouts are accepted when deciding whether a string cell is a date.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatCell renders a scalar cell value for display. Integers get thousands
// separators, other numbers render with two decimals, ISO date strings are
// reformatted to a readable form, and null becomes the placeholder.
func FormatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return NullPlaceholder
	case string:
		if s := formatDateString(val); s != "" {
			return s
		}
		return val
	case bool:
		return fmt.Sprintf("%t", val)
	case int:
		return printer.Sprintf("%d", val)
	case int64:
		return printer.Sprintf("%d", val)
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1e15 {
			return printer.Sprintf("%d", int64(val))
		}
		return printer.Sprintf("%.2f", val)
	case float32:
		return FormatCell(float64(val))
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// FormatCurrency renders a numeric value with two decimals and separators.
func FormatCurrency(v float64) string {
	return printer.Sprintf("%.2f", v)
}

func formatDateString(s string) string {
	// Cheap pre-check so ordinary strings skip the layout parses.
	if len(s) < 10 || s[4] != '-' || s[7] != '-' {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if layout == "2006-01-02" {
				return t.Format("Jan 2, 2006")
			}
			return t.Format("Jan 2, 2006 15:04")
		}
	}
	return ""
}

// PageRange renders the pagination strip label, e.g. "101-120 of 120".
func PageRange(page, pageSize, totalRows int) string {
	if totalRows <= 0 {
		return "0 of 0"
	}
	start := (page-1)*pageSize + 1
	end := page * pageSize
	if end > totalRows {
		end = totalRows
	}
	return fmt.Sprintf("%s-%s of %s",
		printer.Sprintf("%d", start),
		printer.Sprintf("%d", end),
		printer.Sprintf("%d", totalRows))
}

// FilterSummary renders the active filters for display, in column order.
func FilterSummary(columns []string, filters map[string]string) string {
	if len(filters) == 0 {
		return ""
	}
	parts := make([]string, 0, len(filters))
	for _, col := range columns {
		if v, ok := filters[col]; ok {
			parts = append(parts, col+"="+v)
		}
	}
	return strings.Join(parts, ", ")
}
