package live

import "sync"

// Notifier delivers change notifications for named topics (usually table names).
type Notifier interface {
	// Subscribe returns a channel that receives a value after any of the
	// topics changes, and a function that ends the subscription.
	Subscribe(topics ...string) (<-chan struct{}, func())
}

// Hub is an in-process Notifier. Notifications are coalesced: a subscriber
// that has not consumed the previous signal receives no second one.
type Hub struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*subscription
}

type subscription struct {
	topics map[string]struct{}
	ch     chan struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]*subscription)}
}

// Subscribe implements Notifier. Subscribing to no topics receives every notification.
func (h *Hub) Subscribe(topics ...string) (<-chan struct{}, func()) {
	sub := &subscription{
		topics: make(map[string]struct{}, len(topics)),
		ch:     make(chan struct{}, 1),
	}
	for _, t := range topics {
		sub.topics[t] = struct{}{}
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = sub
	h.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
	return sub.ch, unsubscribe
}

// Notify signals every subscriber observing at least one of topics.
func (h *Hub) Notify(topics ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subs {
		if !sub.observes(topics) {
			continue
		}
		select {
		case sub.ch <- struct{}{}:
		default:
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (s *subscription) observes(topics []string) bool {
	if len(s.topics) == 0 {
		return true
	}
	for _, t := range topics {
		if _, ok := s.topics[t]; ok {
			return true
		}
	}
	return false
}
