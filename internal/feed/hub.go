package feed

import "sync"

// queueSize is the number of pending events per subscriber. When the queue
// is full further events are dropped; a subscriber reloads everything on the
// next event anyway.
const queueSize = 16

// Hub fans events out to subscribers.
type Hub struct {
	mutex  sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs: map[*Subscription]struct{}{},
	}
}

// Publish delivers the event to every matching subscriber without blocking.
func (h *Hub) Publish(e Event) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for sub := range h.subs {
		if !sub.filter.Match(e) {
			continue
		}
		select {
		case sub.events <- e:
		default:
		}
	}
}

// Subscribe registers a new subscription. The caller must Close it.
func (h *Hub) Subscribe(f Filter) *Subscription {
	sub := &Subscription{
		hub:    h,
		filter: f,
		events: make(chan Event, queueSize),
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.closed {
		close(sub.events)
		sub.done = true
		return sub
	}
	h.subs[sub] = struct{}{}
	return sub
}

// Len returns the number of open subscriptions.
func (h *Hub) Len() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.subs)
}

// Close ends all subscriptions. Later subscriptions are closed immediately.
func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.closed = true
	for sub := range h.subs {
		delete(h.subs, sub)
		sub.done = true
		close(sub.events)
	}
}

func (h *Hub) remove(sub *Subscription) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if sub.done {
		return
	}
	delete(h.subs, sub)
	sub.done = true
	close(sub.events)
}

// Subscription is a filtered view on the hub's events.
type Subscription struct {
	hub    *Hub
	filter Filter
	events chan Event
	done   bool
}

// Events returns the channel of matching events. It is closed when the
// subscription or the hub is closed.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Close releases the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.hub.remove(s)
}
