// Package notifier fans explorer state changes out to SSE handlers.
package notifier

import "sync"

// Notifier broadcasts pings to subscribed listeners. A ping carries no
// payload; listeners re-read the session state and re-render.
type Notifier struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]chan struct{}
}

// New creates a Notifier.
func New() *Notifier {
	return &Notifier{listeners: make(map[int]chan struct{})}
}

// Subscribe registers a listener and returns its channel plus a cancel
// function. Cancel must be called to avoid leaking the listener.
func (n *Notifier) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.listeners[id] = ch
	n.mu.Unlock()

	cancel := func() {
		n.mu.Lock()
		if _, ok := n.listeners[id]; ok {
			delete(n.listeners, id)
			close(ch)
		}
		n.mu.Unlock()
	}
	return ch, cancel
}

// Broadcast pings every listener. Non-blocking: a listener whose buffer is
// full already has a pending ping and will catch up.
func (n *Notifier) Broadcast() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.listeners {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Len reports the number of active listeners.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}
