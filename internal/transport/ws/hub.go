package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Hub is the presence registry: every live connection, and which user's
// channel set it currently belongs to. All state is process-local and comes
// back empty after a restart; clients must rejoin after reconnecting.
//
// A user has one entry per device. Broadcasts go to every connection in the
// user's set; a user with no set is simply offline.
type Hub struct {
	mu sync.RWMutex

	// conns holds every accepted connection, joined or not.
	conns map[*Client]struct{}

	// channels maps a user id to that user's live connections.
	channels map[uuid.UUID]map[*Client]struct{}

	// joined is the reverse index used for disconnect cleanup.
	joined map[*Client]uuid.UUID
}

func NewHub() *Hub {
	return &Hub{
		conns:    make(map[*Client]struct{}),
		channels: make(map[uuid.UUID]map[*Client]struct{}),
		joined:   make(map[*Client]uuid.UUID),
	}
}

// Connect registers a freshly accepted connection with no user association.
func (h *Hub) Connect(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.conns[c] = struct{}{}
	log.Printf("ws hub: connection opened (%d total)", len(h.conns))
}

// Join adds the connection to userID's channel set. Joining the same set
// twice is a no-op; joining as a different user moves the connection.
func (h *Hub) Join(c *Client, userID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[c]; !ok {
		return
	}
	if prev, ok := h.joined[c]; ok {
		if prev == userID {
			return
		}
		h.removeLocked(c, prev)
	}

	set, ok := h.channels[userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.channels[userID] = set
	}
	set[c] = struct{}{}
	h.joined[c] = userID
	log.Printf("ws hub: user %s joined (%d device(s))", userID, len(set))
}

// Leave removes the connection from userID's channel set. The connection
// itself stays open.
func (h *Hub) Leave(c *Client, userID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.joined[c] != userID {
		return
	}
	h.removeLocked(c, userID)
	delete(h.joined, c)
	log.Printf("ws hub: user %s left", userID)
}

// Disconnect removes the connection from the registry and from whatever
// channel set it joined, then releases its write pump. Safe to call more
// than once; only the first call does anything.
func (h *Hub) Disconnect(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[c]; !ok {
		return
	}
	delete(h.conns, c)
	if userID, ok := h.joined[c]; ok {
		h.removeLocked(c, userID)
		delete(h.joined, c)
	}
	close(c.done)
	log.Printf("ws hub: connection closed (%d total)", len(h.conns))
}

// BroadcastToUser pushes an event to all of the user's live connections.
// Sends never block: a connection with a full buffer just misses the event,
// the durable store remains the source of truth.
func (h *Hub) BroadcastToUser(userID uuid.UUID, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws hub: marshal error: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.channels[userID] {
		select {
		case c.send <- data:
		default:
		}
	}
}

// Devices reports how many live connections the user has joined.
func (h *Hub) Devices(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[userID])
}

// ConnectionCount reports all open connections, joined or not.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// removeLocked drops c from userID's set and prunes the set when it empties.
// Callers hold the write lock.
func (h *Hub) removeLocked(c *Client, userID uuid.UUID) {
	set, ok := h.channels[userID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.channels, userID)
	}
}
