package explorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewQueryState(t *testing.T) {
	q := NewQueryState(50)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 50, q.PageSize)
	assert.NotNil(t, q.Filters)

	q = NewQueryState(7)
	assert.Equal(t, DefaultPageSize, q.PageSize, "invalid sizes fall back to the default")
}

func TestCloneIsDeep(t *testing.T) {
	q := NewQueryState(25)
	q.Filters["symbol"] = "AAPL"

	c := q.Clone()
	c.Filters["symbol"] = "MSFT"

	assert.Equal(t, "AAPL", q.Filters["symbol"])
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		totalRows int
		pageSize  int
		expected  int
	}{
		{0, 25, 0},
		{1, 25, 1},
		{25, 25, 1},
		{26, 25, 2},
		{120, 50, 3},
		{-5, 25, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, TotalPages(tt.totalRows, tt.pageSize),
			"TotalPages(%d, %d)", tt.totalRows, tt.pageSize)
	}
}
