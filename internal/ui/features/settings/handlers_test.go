package settings

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/datagrid/internal/testutil"
	features "github.com/leapstack-labs/datagrid/internal/ui/features"
)

func TestSaveSettingsRoundTrip(t *testing.T) {
	fx := features.SetupTestFixture(t)
	h := NewHandlers(fx.Client, testutil.NewTestLogger(t))

	body := `{"exchangeApiKey":"key","exchangeApiSecret":"secret","baseCurrency":"CHF","maxPositionSize":"2500"}`
	req := httptest.NewRequest(http.MethodPost, "/api/settings/save", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.SaveSettings(rec, req)

	assert.Contains(t, rec.Body.String(), "Settings saved.")

	saved, err := fx.Client.Settings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "CHF", saved.BaseCurrency)
	assert.Equal(t, 2500.0, saved.MaxPositionSize)
}

func TestSaveSettingsRejectsBadNumber(t *testing.T) {
	fx := features.SetupTestFixture(t)
	h := NewHandlers(fx.Client, testutil.NewTestLogger(t))

	body := `{"baseCurrency":"USD","maxPositionSize":"lots"}`
	req := httptest.NewRequest(http.MethodPost, "/api/settings/save", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.SaveSettings(rec, req)

	assert.Contains(t, rec.Body.String(), "must be a number")
}

func TestSettingsPageSeedsForm(t *testing.T) {
	fx := features.SetupTestFixture(t)
	h := NewHandlers(fx.Client, testutil.NewTestLogger(t))

	req := httptest.NewRequest(http.MethodGet, "/settings", nil)
	rec := httptest.NewRecorder()
	h.SettingsPage(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, "data-bind-baseCurrency")
	assert.Contains(t, body, "data-bind-maxPositionSize")
}
