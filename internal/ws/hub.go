package ws

import (
	"sync"
)

// Hub maps a user id to that user's open connections (zero, one, or more —
// multiple devices). It is the only shared mutable state in the process.
// Send is at-most-once: no queue, no retry, silent drop when nobody is
// connected; durable state lives in the match repository.
type Hub struct {
	clientsByUser map[string]map[*Client]struct{}
	mu            sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clientsByUser: make(map[string]map[*Client]struct{}),
	}
}

// Join registers a connection under the user's key. Registering the same
// connection twice is a no-op.
func (h *Hub) Join(userID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clientsByUser[userID]; !ok {
		h.clientsByUser[userID] = make(map[*Client]struct{})
	}
	h.clientsByUser[userID][c] = struct{}{}
	c.userID = userID
}

// Leave deregisters a connection; safe to call for a connection that never
// joined or already left.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.clientsByUser[c.userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clientsByUser, c.userID)
		}
	}
}

// Send pushes payload to every open connection of userID. A slow connection
// gets the payload dropped rather than blocking the caller.
func (h *Hub) Send(userID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clientsByUser[userID] {
		select {
		case c.send <- payload:
		default:
			// client not keeping up
		}
	}
}

// Connections reports how many connections userID currently has open.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clientsByUser[userID])
}
