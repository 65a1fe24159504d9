// Package notify delivers record change notifications to subscribers.
package notify

import (
	"sync"
	"time"
)

// AllEntities subscribes to changes of every entity.
const AllEntities = "*"

// Change operations.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Event describes one change to a record.
type Event struct {
	Entity string    `json:"entity"`
	Op     string    `json:"op"`
	ID     string    `json:"id,omitempty"`
	At     time.Time `json:"at"`
}

// Handler is called for every matching event.
type Handler func(Event)

// Hub fans change events out to subscribers. It is safe for concurrent use.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[uint64]Handler
	next uint64
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[uint64]Handler)}
}

// Subscription is an active registration on a hub.
type Subscription struct {
	hub    *Hub
	entity string
	id     uint64
	once   sync.Once
}

// Subscribe registers fn for changes to entity (or AllEntities).
func (h *Hub) Subscribe(entity string, fn Handler) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.next++
	if h.subs[entity] == nil {
		h.subs[entity] = make(map[uint64]Handler)
	}
	h.subs[entity][h.next] = fn

	return &Subscription{hub: h, entity: entity, id: h.next}
}

// Unsubscribe removes the subscription. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()

		delete(s.hub.subs[s.entity], s.id)
		if len(s.hub.subs[s.entity]) == 0 {
			delete(s.hub.subs, s.entity)
		}
	})
}

// Publish delivers e synchronously to every subscriber of its entity and to
// wildcard subscribers. Handlers run outside the hub lock and may subscribe
// or unsubscribe.
func (h *Hub) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	h.mu.RLock()
	handlers := make([]Handler, 0, len(h.subs[e.Entity])+len(h.subs[AllEntities]))
	for _, fn := range h.subs[e.Entity] {
		handlers = append(handlers, fn)
	}
	if e.Entity != AllEntities {
		for _, fn := range h.subs[AllEntities] {
			handlers = append(handlers, fn)
		}
	}
	h.mu.RUnlock()

	for _, fn := range handlers {
		fn(e)
	}
}

// Len returns the number of active subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, subs := range h.subs {
		n += len(subs)
	}
	return n
}
