package explorer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource answers every query immediately with a canned result.
type stubSource struct {
	mu       sync.Mutex
	requests []QueryState
	result   *Result
	err      error
	metadata *Metadata
}

func (s *stubSource) QueryDataset(_ context.Context, _ string, q QueryState) (*Result, error) {
	s.mu.Lock()
	s.requests = append(s.requests, q.Clone())
	res, err := s.result, s.err
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *stubSource) DatasetMetadata(context.Context, string) (*Metadata, error) {
	if s.metadata == nil {
		return nil, errors.New("metadata not available")
	}
	return s.metadata, nil
}

func (s *stubSource) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *stubSource) lastRequest() QueryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

func sampleResult(total int) *Result {
	return &Result{
		Columns:   []string{"symbol", "close"},
		Rows:      []Row{{"symbol": "AAPL", "close": 150.0}},
		TotalRows: total,
	}
}

func waitStatus(t *testing.T, s *Session, want Status) Snapshot {
	t.Helper()
	var snap Snapshot
	require.Eventually(t, func() bool {
		snap = s.Snapshot()
		return snap.Fetch.Status == want
	}, time.Second, 2*time.Millisecond)
	return snap
}

func waitRequests(t *testing.T, src *stubSource, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return src.requestCount() == n
	}, time.Second, 2*time.Millisecond)
}

func newTestSession(t *testing.T, src DataSource) *Session {
	t.Helper()
	return NewSession(Config{Source: src})
}

func TestMutationsResetPage(t *testing.T) {
	src := &stubSource{result: sampleResult(5000)}
	s := newTestSession(t, src)
	s.SelectDataset("trades")
	waitStatus(t, s, StatusSuccess)

	mutations := []struct {
		name string
		run  func()
	}{
		{"page size", func() { s.SetPageSize(50) }},
		{"sort", func() { s.SetSort("close") }},
		{"search", func() { s.SetSearch("AAPL") }},
		{"filter", func() { s.SetFilter("symbol", "AAPL") }},
	}

	for _, m := range mutations {
		s.SetPage(3)
		waitStatus(t, s, StatusSuccess)
		require.Equal(t, 3, s.Snapshot().Query.Page)

		m.run()
		assert.Equal(t, 1, s.Snapshot().Query.Page, "%s must reset page to 1", m.name)
		waitStatus(t, s, StatusSuccess)
	}
}

func TestSetPageOutOfRangeIsNoOp(t *testing.T) {
	src := &stubSource{result: sampleResult(120)}
	s := newTestSession(t, src)
	s.SelectDataset("trades")
	waitStatus(t, s, StatusSuccess)
	issued := src.requestCount()

	// 120 rows at the default page size of 25 gives 5 pages.
	for _, n := range []int{0, -1, 6, 100} {
		s.SetPage(n)
	}
	assert.Equal(t, 1, s.Snapshot().Query.Page)
	assert.Equal(t, issued, src.requestCount(), "out-of-range pages must not fetch")

	s.SetPage(5)
	waitStatus(t, s, StatusSuccess)
	assert.Equal(t, 5, s.Snapshot().Query.Page)
}

func TestExactlyOneFetchPerMutation(t *testing.T) {
	src := &stubSource{result: sampleResult(5000)}
	s := newTestSession(t, src)
	s.SelectDataset("trades")
	waitRequests(t, src, 1)

	s.SetSort("close")
	waitRequests(t, src, 2)
	s.SetSearch("AAPL")
	waitRequests(t, src, 3)
	s.SetFilter("symbol", "AAPL")
	waitRequests(t, src, 4)
	s.SetFilter("symbol", "AAPL") // unchanged value
	s.SetSearch("AAPL")           // unchanged text
	s.ToggleColumn("close")       // display-only
	s.SetPageSize(999)            // not an allowed size

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 4, src.requestCount())
}

func TestSortTogglesDirection(t *testing.T) {
	src := &stubSource{result: sampleResult(100)}
	s := newTestSession(t, src)
	s.SelectDataset("trades")
	waitStatus(t, s, StatusSuccess)

	s.SetSort("close")
	snap := waitStatus(t, s, StatusSuccess)
	assert.Equal(t, "close", snap.Query.SortColumn)
	assert.Equal(t, SortAsc, snap.Query.SortDirection)

	s.SetSort("close")
	snap = waitStatus(t, s, StatusSuccess)
	assert.Equal(t, SortDesc, snap.Query.SortDirection)

	s.SetSort("symbol")
	snap = waitStatus(t, s, StatusSuccess)
	assert.Equal(t, "symbol", snap.Query.SortColumn)
	assert.Equal(t, SortAsc, snap.Query.SortDirection)
}

// blockingSource parks every query until the test releases it, so response
// arrival order can be controlled independently of issuance order.
type blockingSource struct {
	calls chan *blockedCall
}

type blockedCall struct {
	query   QueryState
	release chan struct{}
	result  *Result
	err     error
}

func newBlockingSource() *blockingSource {
	return &blockingSource{calls: make(chan *blockedCall, 8)}
}

func (b *blockingSource) QueryDataset(ctx context.Context, _ string, q QueryState) (*Result, error) {
	c := &blockedCall{query: q.Clone(), release: make(chan struct{})}
	b.calls <- c
	select {
	case <-c.release:
		return c.result, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *blockingSource) DatasetMetadata(context.Context, string) (*Metadata, error) {
	return nil, errors.New("metadata not available")
}

func (b *blockingSource) next(t *testing.T) *blockedCall {
	t.Helper()
	select {
	case c := <-b.calls:
		return c
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for query")
		return nil
	}
}

func TestStaleResponseNeverOverwritesNewer(t *testing.T) {
	src := newBlockingSource()
	s := newTestSession(t, src)

	s.SelectDataset("trades")
	first := src.next(t)

	s.SetSearch("AAPL")
	second := src.next(t)

	// Second request resolves first.
	second.result = &Result{
		Columns:   []string{"symbol"},
		Rows:      []Row{{"symbol": "AAPL"}},
		TotalRows: 1,
	}
	close(second.release)
	snap := waitStatus(t, s, StatusSuccess)
	require.Equal(t, 1, snap.Fetch.TotalRows)
	require.Equal(t, "AAPL", snap.Fetch.Rows[0]["symbol"])

	// First request resolves late with different data; it must be discarded.
	first.result = &Result{
		Columns:   []string{"symbol"},
		Rows:      []Row{{"symbol": "MSFT"}, {"symbol": "NVDA"}},
		TotalRows: 2,
	}
	close(first.release)
	time.Sleep(20 * time.Millisecond)

	snap = s.Snapshot()
	assert.Equal(t, StatusSuccess, snap.Fetch.Status)
	assert.Equal(t, 1, snap.Fetch.TotalRows)
	assert.Equal(t, "AAPL", snap.Fetch.Rows[0]["symbol"])
}

func TestErrorClearsRowsAndRetryRecovers(t *testing.T) {
	src := &stubSource{result: sampleResult(120)}
	s := newTestSession(t, src)
	s.SelectDataset("trades")
	waitStatus(t, s, StatusSuccess)
	require.Equal(t, 120, s.Snapshot().Fetch.TotalRows)

	src.mu.Lock()
	src.err = errors.New("backend unavailable")
	src.mu.Unlock()
	s.Refresh()
	snap := waitStatus(t, s, StatusError)
	assert.Equal(t, "backend unavailable", snap.Fetch.ErrorMessage)
	assert.Empty(t, snap.Fetch.Rows)
	assert.Zero(t, snap.Fetch.TotalRows)

	failedReq := src.lastRequest()

	src.mu.Lock()
	src.err = nil
	src.mu.Unlock()
	s.Refresh()
	snap = waitStatus(t, s, StatusSuccess)
	assert.Equal(t, 120, snap.Fetch.TotalRows)
	assert.Empty(t, snap.Fetch.ErrorMessage)
	assert.Equal(t, failedReq, src.lastRequest(), "retry must re-issue an identical request")
}

func TestFetchTimeout(t *testing.T) {
	src := newBlockingSource()
	s := NewSession(Config{Source: src, FetchTimeout: 15 * time.Millisecond})

	s.SelectDataset("trades")
	src.next(t) // never released; the context deadline fires instead

	snap := waitStatus(t, s, StatusError)
	assert.Equal(t, "request timed out", snap.Fetch.ErrorMessage)
}

func TestMetadataSeedsRegistry(t *testing.T) {
	src := &stubSource{
		result:   sampleResult(1),
		metadata: &Metadata{ID: "trades", Columns: []string{"symbol", "side", "qty", "price", "close"}},
	}
	s := newTestSession(t, src)
	s.SelectDataset("trades")
	waitStatus(t, s, StatusSuccess)

	require.Eventually(t, func() bool {
		return len(s.Snapshot().Columns) == 5
	}, time.Second, 2*time.Millisecond)
	assert.Equal(t, []string{"symbol", "side", "qty", "price", "close"}, s.Snapshot().Columns)
}

func TestSelectDatasetResetsState(t *testing.T) {
	src := &stubSource{result: sampleResult(5000)}
	s := newTestSession(t, src)
	s.SelectDataset("trades")
	waitStatus(t, s, StatusSuccess)

	s.SetSearch("AAPL")
	waitStatus(t, s, StatusSuccess)
	s.SetPage(2)
	waitStatus(t, s, StatusSuccess)

	s.SelectDataset("positions")
	snap := waitStatus(t, s, StatusSuccess)
	assert.Equal(t, "positions", snap.DatasetID)
	assert.Equal(t, 1, snap.Query.Page)
	assert.Empty(t, snap.Query.SearchText)
	assert.Empty(t, snap.Query.Filters)
}
