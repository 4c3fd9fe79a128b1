package announce

import (
	"sync"

	"physiotrack/backend/internal/logging"
)

const subscriberBuffer = 16

// Hub fans events out to per-user subscribers. A subscriber that falls behind
// loses events instead of blocking the publisher.
type Hub struct {
	mu     sync.Mutex
	nextID int
	closed bool
	subs   map[string]map[int]chan Event
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int]chan Event)}
}

// Subscribe returns a channel of the user's events and a cancel func that
// closes it. After Close the channel comes back already closed.
func (h *Hub) Subscribe(userID string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		ch := make(chan Event)
		close(ch)
		return ch, func() {}
	}

	h.nextID++
	id := h.nextID
	ch := make(chan Event, subscriberBuffer)
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[int]chan Event)
	}
	h.subs[userID][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[userID][id]; !ok {
				return
			}
			delete(h.subs[userID], id)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			close(ch)
		})
	}
	return ch, cancel
}

func (h *Hub) Announce(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs[e.UserID] {
		select {
		case ch <- e:
		default:
			logging.Logger.Warn("dropping announcement for slow subscriber", "user_id", e.UserID, "kind", e.Kind)
		}
	}
}

// Close ends every subscription so open streams can return.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for userID, subs := range h.subs {
		for _, ch := range subs {
			close(ch)
		}
		delete(h.subs, userID)
	}
}

func (h *Hub) Subscribers(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[userID])
}
