package strategies

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

func postSignals(t *testing.T, h http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestCreateAndDeleteStrategy(t *testing.T) {
	fx := features.SetupTestFixture(t)
	h := NewHandlers(fx.Client, testutil.NewTestLogger(t))

	rec := postSignals(t, h.CreateStrategy, "/api/fleet/strategies/create",
		`{"strategyName":"breakout","strategySymbol":"NVDA"}`)
	assert.Contains(t, rec.Body.String(), "breakout")

	list, err := fx.Client.ListStrategies(context.Background())
	require.NoError(t, err)
	created := list[len(list)-1]
	assert.Equal(t, "breakout", created.Name)

	del := func(w http.ResponseWriter, r *http.Request) {
		h.DeleteStrategy(w, features.RequestWithPathParam(r, "id", created.ID))
	}
	rec = postSignals(t, del, "/api/fleet/strategies/"+created.ID+"/delete", "{}")
	assert.NotContains(t, rec.Body.String(), "breakout")
}

func TestCreateStrategyRequiresName(t *testing.T) {
	fx := features.SetupTestFixture(t)
	h := NewHandlers(fx.Client, testutil.NewTestLogger(t))

	rec := postSignals(t, h.CreateStrategy, "/api/fleet/strategies/create", `{"strategySymbol":"NVDA"}`)
	assert.Contains(t, rec.Body.String(), "strategy name is required")
}

func TestCreateAgent(t *testing.T) {
	fx := features.SetupTestFixture(t)
	h := NewHandlers(fx.Client, testutil.NewTestLogger(t))

	rec := postSignals(t, h.CreateAgent, "/api/fleet/agents/create",
		`{"agentName":"scalper","agentModel":"momentum-v2"}`)
	assert.Contains(t, rec.Body.String(), "scalper")
	assert.Contains(t, rec.Body.String(), "momentum-v2")
}

func TestStrategiesPageRendersFleet(t *testing.T) {
	fx := features.SetupTestFixture(t)
	h := NewHandlers(fx.Client, testutil.NewTestLogger(t))

	req := httptest.NewRequest(http.MethodGet, "/strategies", nil)
	rec := httptest.NewRecorder()
	h.StrategiesPage(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, `id="fleet"`)
	assert.Contains(t, body, "Strategies")
	assert.Contains(t, body, "Agents")
}
