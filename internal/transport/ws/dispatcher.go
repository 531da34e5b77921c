package ws

import (
	"log"

	"github.com/moiz862/backend/internal/domain"
)

// HubDispatcher implements service.EventDispatcher using the WebSocket Hub.
type HubDispatcher struct {
	hub *Hub
}

func NewHubDispatcher(hub *Hub) *HubDispatcher {
	return &HubDispatcher{hub: hub}
}

// Dispatch pushes each event to all of its recipient's live connections.
// A recipient with no connection just misses the push; whatever was
// persisted is picked up on the next fetch.
func (d *HubDispatcher) Dispatch(events []domain.Event) {
	for _, e := range events {
		evt, err := NewEvent(e.Name, e.Payload)
		if err != nil {
			log.Printf("ws dispatcher: marshal %s: %v", e.Name, err)
			continue
		}
		d.hub.BroadcastToUser(e.Recipient, evt)
	}
}
