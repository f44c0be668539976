package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Event is the envelope every frame on the chat socket uses, in both
// directions.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Hub tracks live connections per user. A user may hold several connections
// at once (multiple devices); an event published to a user reaches all of
// them.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[uint]map[*Client]struct{})}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
}

// Online reports whether the user has at least one live connection.
func (h *Hub) Online(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// Publish delivers an event to every live connection of the user. Slow
// consumers are dropped rather than allowed to block the caller.
func (h *Hub) Publish(userID uint, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("ws payload marshal failed", "error", err, "event", event)
		return
	}
	frame, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		slog.Error("ws frame marshal failed", "error", err, "event", event)
		return
	}

	h.mu.RLock()
	var stale []*Client
	for c := range h.clients[userID] {
		select {
		case c.send <- frame:
		default:
			stale = append(stale, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stale {
		slog.Warn("ws send queue full, dropping connection", "user_id", userID)
		h.remove(c)
	}
}
