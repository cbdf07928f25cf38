package sse

import (
	"sync"
)

// TopicAdmins receives every ledger event, whoever it concerns.
const TopicAdmins = "admins"

// Event is one message pushed to stream subscribers.
type Event struct {
	Topic string
	Name  string
	Data  interface{}
}

// Hub fans events out to the subscribers of a topic. A topic is a recipient id
// or TopicAdmins.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	closed      bool
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a subscriber for topic and returns its channel and an
// unsubscribe function that is safe to call more than once.
func (h *Hub) Subscribe(topic string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 16)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	if h.subscribers[topic] == nil {
		h.subscribers[topic] = make(map[chan Event]struct{})
	}
	h.subscribers[topic][ch] = struct{}{}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subscribers[topic][ch]; !ok {
				return
			}
			delete(h.subscribers[topic], ch)
			close(ch)
			if len(h.subscribers[topic]) == 0 {
				delete(h.subscribers, topic)
			}
		})
	}

	return ch, cancel
}

// Publish delivers event to the subscribers of each topic without blocking;
// a subscriber whose buffer is full misses the event.
func (h *Hub) Publish(event Event, topics ...string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, topic := range topics {
		e := event
		e.Topic = topic
		for ch := range h.subscribers[topic] {
			select {
			case ch <- e:
			default:
			}
		}
	}
}

func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[topic])
}

// Close ends every subscription; later subscriptions are closed immediately.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for topic, subs := range h.subscribers {
		for ch := range subs {
			close(ch)
		}
		delete(h.subscribers, topic)
	}
	h.closed = true
}
