package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types - Client → Server
const (
	EventTypeJoin            = "join"
	EventTypeLeave           = "leave"
	EventTypeTypingIndicator = "typing_indicator"
	EventTypePing            = "ping"
)

// Event types - Server → Client (domain events carry their own names, these
// are the connection-level ones)
const (
	EventTypeJoined = "joined"
	EventTypePong   = "pong"
	EventTypeError  = "error"
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type JoinPayload struct {
	UserID uuid.UUID `json:"user_id"`
}

type TypingIndicatorPayload struct {
	ReceiverID uuid.UUID `json:"receiver_id"`
	IsTyping   bool      `json:"is_typing"`
}

// --- Server → Client payloads ---

type JoinedPayload struct {
	UserID uuid.UUID `json:"user_id"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
