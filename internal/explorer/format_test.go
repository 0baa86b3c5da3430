package explorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"nil", nil, "–"},
		{"string", "hello", "hello"},
		{"int", 42, "42"},
		{"large int", int64(1234567), "1,234,567"},
		{"integral float", 2500.0, "2,500"},
		{"fractional float", 1234.5, "1,234.50"},
		{"bool", true, "true"},
		{"bytes", []byte("raw"), "raw"},
		{"date", "2024-03-05", "Mar 5, 2024"},
		{"timestamp", "2024-03-05T14:30:00Z", "Mar 5, 2024 14:30"},
		{"not a date", "2024-03-0", "2024-03-0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatCell(tt.input))
		})
	}
}

func TestPageRange(t *testing.T) {
	assert.Equal(t, "101-120 of 120", PageRange(3, 50, 120))
	assert.Equal(t, "1-25 of 120", PageRange(1, 25, 120))
	assert.Equal(t, "0 of 0", PageRange(1, 25, 0))
}

func TestFilterSummary(t *testing.T) {
	cols := []string{"symbol", "side", "qty"}
	assert.Equal(t, "", FilterSummary(cols, nil))
	assert.Equal(t, "symbol=AAPL, qty=100",
		FilterSummary(cols, map[string]string{"qty": "100", "symbol": "AAPL"}))
}
