package notifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastReachesAllListeners(t *testing.T) {
	n := New()
	a, cancelA := n.Subscribe()
	defer cancelA()
	b, cancelB := n.Subscribe()
	defer cancelB()

	n.Broadcast()

	assert.Len(t, a, 1)
	assert.Len(t, b, 1)
}

func TestBroadcastDoesNotBlockOnFullBuffer(t *testing.T) {
	n := New()
	ch, cancel := n.Subscribe()
	defer cancel()

	n.Broadcast()
	n.Broadcast()
	n.Broadcast()

	// One pending ping is enough; the listener re-reads state on wake.
	require.Len(t, ch, 1)
	<-ch
	assert.Empty(t, ch)
}

func TestCancelRemovesListener(t *testing.T) {
	n := New()
	_, cancel := n.Subscribe()
	require.Equal(t, 1, n.Len())

	cancel()
	cancel() // idempotent
	assert.Zero(t, n.Len())

	n.Broadcast() // must not panic with no listeners
}
