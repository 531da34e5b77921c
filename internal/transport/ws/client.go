package ws

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/moiz862/backend/internal/service"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait      = 10 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 4096
	sendBufSize    = 256
)

// Client represents a single WebSocket connection. The authenticated user is
// fixed at upgrade time; which channel set the connection belongs to is
// tracked by the Hub and only changes through join/leave events.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// authUserID is the token subject bound at upgrade. Joining any other
	// user's channel is refused.
	authUserID uuid.UUID

	messages *service.MessageService

	send chan []byte
	done chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, authUserID uuid.UUID, messages *service.MessageService) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		authUserID: authUserID,
		messages:   messages,
		send:       make(chan []byte, sendBufSize),
		done:       make(chan struct{}),
	}
}

// ReadPump reads events from the WebSocket until the connection dies, then
// cleans the connection out of the registry.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Disconnect(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		var event Event
		err := wsjson.Read(context.Background(), c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("ws: client %s disconnected", c.authUserID)
			} else {
				log.Printf("ws: read error from %s: %v", c.authUserID, err)
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes queued events to the WebSocket and keeps the connection
// alive with pings. Exits when the Hub releases the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message := <-c.send:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				log.Printf("ws: write error to %s: %v", c.authUserID, err)
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				log.Printf("ws: ping error to %s: %v", c.authUserID, err)
				return
			}

		case <-c.done:
			return
		}
	}
}

// handleEvent routes an incoming client event.
func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypeJoin:
		userID := c.authUserID
		if len(event.Payload) > 0 {
			var p JoinPayload
			if err := json.Unmarshal(event.Payload, &p); err != nil {
				c.sendError("INVALID_PAYLOAD", "invalid join payload")
				return
			}
			if p.UserID != uuid.Nil {
				userID = p.UserID
			}
		}
		if userID != c.authUserID {
			c.sendError("FORBIDDEN", "cannot join another user's channel")
			return
		}
		c.hub.Join(c, userID)
		c.sendJoined(userID)

	case EventTypeLeave:
		userID := c.authUserID
		if len(event.Payload) > 0 {
			var p JoinPayload
			if err := json.Unmarshal(event.Payload, &p); err != nil {
				c.sendError("INVALID_PAYLOAD", "invalid leave payload")
				return
			}
			if p.UserID != uuid.Nil {
				userID = p.UserID
			}
		}
		c.hub.Leave(c, userID)

	case EventTypeTypingIndicator:
		var p TypingIndicatorPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid typing_indicator payload")
			return
		}
		if err := c.messages.SendTypingIndicator(context.Background(), c.authUserID, p.ReceiverID, p.IsTyping); err != nil {
			c.sendError("INVALID_PAYLOAD", err.Error())
		}

	case EventTypePing:
		c.sendPong()

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

func (c *Client) sendJoined(userID uuid.UUID) {
	evt, err := NewEvent(EventTypeJoined, JoinedPayload{UserID: userID})
	if err != nil {
		return
	}
	c.enqueue(evt)
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(Event{Type: EventTypePong})
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(code, message string) {
	evt, err := NewEvent(EventTypeError, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	c.enqueue(evt)
}

func (c *Client) enqueue(evt *Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
