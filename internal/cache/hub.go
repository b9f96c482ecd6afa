package cache

import (
	"sync"

	"rivalwatch/internal/ports"
)

// NewDataNotification is the message broadcast when a background revalidation
// lands a changed payload.
func NewDataNotification() ports.Notification {
	return ports.Notification{Type: "NEW_DATA"}
}

// Hub fans notifications out to subscribed observers. Broadcasting with no
// observers is a no-op; a slow observer loses messages rather than blocking
// the revalidation path.
type Hub struct {
	mu   sync.Mutex
	subs map[chan ports.Notification]struct{}
}

var _ ports.Broadcaster = (*Hub)(nil)

// NewHub builds an empty hub.
func NewHub() *Hub {
	return &Hub{subs: map[chan ports.Notification]struct{}{}}
}

// Subscribe registers an observer. The returned cancel func must be called
// when the observer goes away.
func (h *Hub) Subscribe() (<-chan ports.Notification, func()) {
	ch := make(chan ports.Notification, 4)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
	return ch, cancel
}

// Broadcast delivers msg to every active observer without blocking.
func (h *Hub) Broadcast(msg ports.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}
