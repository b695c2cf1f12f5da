// Package realtime fans table change notifications out to websocket clients
// and in-process listeners. Events are invalidation signals only.
package realtime

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	TableLocations = "locations"
	TableHotDeals  = "hot_deals"
	TableMessages  = "messages"
	TableWallets   = "wallets"
	TableTreasures = "treasures"
)

const (
	OpInsert = "INSERT"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

// ChangeEvent is delivered to every subscriber of Table. When UserID is set
// the event is private and only reaches that user's connections.
type ChangeEvent struct {
	Table   string    `json:"table"`
	Op      string    `json:"op"`
	UserID  string    `json:"user_id,omitempty"`
	Balance string    `json:"balance,omitempty"`
	At      time.Time `json:"at"`
}

type Publisher interface {
	Publish(event ChangeEvent)
}

type subscriber struct {
	userID string
	tables map[string]struct{}
	send   chan []byte
	events chan ChangeEvent
}

func (s *subscriber) wants(event ChangeEvent) bool {
	if _, ok := s.tables[event.Table]; !ok {
		return false
	}
	return event.UserID == "" || event.UserID == s.userID
}

type Hub struct {
	mu          sync.RWMutex
	subscribers map[*subscriber]struct{}
	now         func() time.Time
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[*subscriber]struct{}),
		now:         time.Now,
	}
}

func (h *Hub) register(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[sub] = struct{}{}
}

func (h *Hub) unregister(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribers, sub)
}

// Listen registers an in-process subscriber for public events on tables.
// The returned cancel func must be called to release it.
func (h *Hub) Listen(buffer int, tables ...string) (<-chan ChangeEvent, func()) {
	sub := &subscriber{tables: tableSet(tables), events: make(chan ChangeEvent, buffer)}
	h.register(sub)
	var once sync.Once
	return sub.events, func() {
		once.Do(func() { h.unregister(sub) })
	}
}

// Publish never blocks: a subscriber with a full buffer misses the event.
func (h *Hub) Publish(event ChangeEvent) {
	if event.At.IsZero() {
		event.At = h.now().UTC()
	}
	payload, _ := json.Marshal(event)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subscribers {
		if !sub.wants(event) {
			continue
		}
		if sub.events != nil {
			if event.UserID != "" {
				continue
			}
			select {
			case sub.events <- event:
			default:
			}
			continue
		}
		select {
		case sub.send <- payload:
		default:
		}
	}
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

func tableSet(tables []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tables))
	for _, table := range tables {
		set[table] = struct{}{}
	}
	return set
}

func KnownTable(table string) bool {
	switch table {
	case TableLocations, TableHotDeals, TableMessages, TableWallets, TableTreasures:
		return true
	}
	return false
}
