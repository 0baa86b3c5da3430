package home

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/datagrid/internal/dataservice"
	"github.com/leapstack-labs/datagrid/internal/testutil"
	features "github.com/leapstack-labs/datagrid/internal/ui/features"
)

func TestHomePageRendersCards(t *testing.T) {
	fx := features.SetupTestFixture(t)
	h := NewHandlers(fx.Client, testutil.NewTestLogger(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.HomePage(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, "Account")
	assert.Contains(t, body, "trades")
	assert.Contains(t, body, "positions")
	assert.Contains(t, body, "strategies")
}

func TestHomePageDegradesWhenBackendDown(t *testing.T) {
	dead := dataservice.New(dataservice.Options{BaseURL: "http://127.0.0.1:1"})
	h := NewHandlers(dead, testutil.NewTestLogger(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.HomePage(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Backend unreachable.")
}
