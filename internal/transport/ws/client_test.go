package ws

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/moiz862/backend/internal/domain"
	"github.com/moiz862/backend/internal/service"
	"github.com/stretchr/testify/require"
)

func newEventClient(hub *Hub, authID uuid.UUID, messages *service.MessageService) *Client {
	return &Client{
		hub:        hub,
		authUserID: authID,
		messages:   messages,
		send:       make(chan []byte, 4),
		done:       make(chan struct{}),
	}
}

// inbound builds a client→server event the way the read pump decodes it.
func inbound(t *testing.T, eventType string, payload any) *Event {
	t.Helper()
	if payload == nil {
		return &Event{Type: eventType}
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return &Event{Type: eventType, Payload: data}
}

func TestClient_JoinAck(t *testing.T) {
	req := require.New(t)
	hub := NewHub()
	userID := uuid.New()
	c := newEventClient(hub, userID, nil)
	hub.Connect(c)

	// A bare join binds the connection to the token subject
	c.handleEvent(inbound(t, EventTypeJoin, nil))
	req.Equal(1, hub.Devices(userID))

	got := receive(t, c)
	req.Equal(EventTypeJoined, got.Type)
	var ack JoinedPayload
	req.NoError(json.Unmarshal(got.Payload, &ack))
	req.Equal(userID, ack.UserID)

	// Naming your own id is the same join
	c.handleEvent(inbound(t, EventTypeJoin, JoinPayload{UserID: userID}))
	req.Equal(1, hub.Devices(userID))
	req.Equal(EventTypeJoined, receive(t, c).Type)
}

func TestClient_JoinOtherUserForbidden(t *testing.T) {
	req := require.New(t)
	hub := NewHub()
	self := uuid.New()
	other := uuid.New()
	c := newEventClient(hub, self, nil)
	hub.Connect(c)

	c.handleEvent(inbound(t, EventTypeJoin, JoinPayload{UserID: other}))

	// The connection joined nothing and was told why
	req.Equal(0, hub.Devices(other))
	req.Equal(0, hub.Devices(self))
	got := receive(t, c)
	req.Equal(EventTypeError, got.Type)
	var perr ErrorPayload
	req.NoError(json.Unmarshal(got.Payload, &perr))
	req.Equal("FORBIDDEN", perr.Code)
}

func TestClient_JoinMalformedPayload(t *testing.T) {
	req := require.New(t)
	hub := NewHub()
	userID := uuid.New()
	c := newEventClient(hub, userID, nil)
	hub.Connect(c)

	c.handleEvent(&Event{Type: EventTypeJoin, Payload: json.RawMessage(`{"user_id":"nope"}`)})

	req.Equal(0, hub.Devices(userID))
	got := receive(t, c)
	req.Equal(EventTypeError, got.Type)
	var perr ErrorPayload
	req.NoError(json.Unmarshal(got.Payload, &perr))
	req.Equal("INVALID_PAYLOAD", perr.Code)
}

func TestClient_TypingForward(t *testing.T) {
	req := require.New(t)
	hub := NewHub()
	sender := uuid.New()
	receiver := uuid.New()

	// Typing never touches storage, so the service needs no repositories
	messages := service.NewMessageService(nil, nil)
	messages.SetDispatcher(NewHubDispatcher(hub))

	peer := newTestClient(4)
	hub.Connect(peer)
	hub.Join(peer, receiver)

	c := newEventClient(hub, sender, messages)
	hub.Connect(c)
	hub.Join(c, sender)

	c.handleEvent(inbound(t, EventTypeTypingIndicator, TypingIndicatorPayload{ReceiverID: receiver, IsTyping: true}))

	got := receive(t, peer)
	req.Equal(domain.EventUserTyping, got.Type)
	var p domain.UserTypingPayload
	req.NoError(json.Unmarshal(got.Payload, &p))
	req.Equal(sender, p.UserID)
	req.True(p.IsTyping)

	// The typist gets no echo
	req.Empty(c.send)

	// A missing receiver id comes back as an error on the connection
	c.handleEvent(inbound(t, EventTypeTypingIndicator, TypingIndicatorPayload{IsTyping: true}))
	got = receive(t, c)
	req.Equal(EventTypeError, got.Type)
	req.Empty(peer.send)
}

func TestClient_LeavePingUnknown(t *testing.T) {
	req := require.New(t)
	hub := NewHub()
	userID := uuid.New()
	c := newEventClient(hub, userID, nil)
	hub.Connect(c)
	hub.Join(c, userID)

	c.handleEvent(inbound(t, EventTypeLeave, nil))
	req.Equal(0, hub.Devices(userID))

	c.handleEvent(inbound(t, EventTypePing, nil))
	req.Equal(EventTypePong, receive(t, c).Type)

	c.handleEvent(inbound(t, "shout", nil))
	got := receive(t, c)
	req.Equal(EventTypeError, got.Type)
	var perr ErrorPayload
	req.NoError(json.Unmarshal(got.Payload, &perr))
	req.Equal("UNKNOWN_EVENT", perr.Code)
}
