// Package feed turns database writes into live snapshots. Writers publish
// change notifications on topics; watchers reload their query and push the
// full result to a channel.
package feed

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Relay forwards notifications to other processes sharing the same database.
type Relay interface {
	Publish(ctx context.Context, topics []string) error
}

type subscriber struct {
	ch chan struct{}
}

// Hub tracks topic subscribers. Notifications coalesce: a subscriber that has
// not consumed the previous signal does not queue another one.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*subscriber]struct{}
	relay  Relay
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[*subscriber]struct{})}
}

// SetRelay attaches a cross-process relay. Pass nil to detach.
func (h *Hub) SetRelay(r Relay) {
	h.mu.Lock()
	h.relay = r
	h.mu.Unlock()
}

// Subscribe returns a channel signalled whenever any of topics changes, and a
// cancel function that is safe to call more than once.
func (h *Hub) Subscribe(topics ...string) (<-chan struct{}, func()) {
	sub := &subscriber{ch: make(chan struct{}, 1)}

	h.mu.Lock()
	for _, t := range topics {
		if h.topics[t] == nil {
			h.topics[t] = make(map[*subscriber]struct{})
		}
		h.topics[t][sub] = struct{}{}
	}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for _, t := range topics {
				if subs, ok := h.topics[t]; ok {
					delete(subs, sub)
					if len(subs) == 0 {
						delete(h.topics, t)
					}
				}
			}
		})
	}
	return sub.ch, cancel
}

// Notify signals local subscribers of topics without touching the relay.
func (h *Hub) Notify(topics ...string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, t := range topics {
		for sub := range h.topics[t] {
			select {
			case sub.ch <- struct{}{}:
			default:
			}
		}
	}
}

// Publish notifies local subscribers and forwards topics through the relay.
// Relay failures are logged; local delivery has already happened.
func (h *Hub) Publish(ctx context.Context, topics ...string) {
	h.Notify(topics...)

	h.mu.RLock()
	relay := h.relay
	h.mu.RUnlock()
	if relay == nil {
		return
	}
	if err := relay.Publish(ctx, topics); err != nil {
		log.Warn().Err(err).Strs("topics", topics).Msg("feed relay publish failed")
	}
}

// SubscriberCount returns how many subscribers listen on topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
