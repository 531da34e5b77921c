package domain

import "github.com/google/uuid"

// Event names pushed to live connections. Clients key their handlers on
// these strings, so they are part of the wire contract.
const (
	EventNewMessage          = "new_message"
	EventMessageSent         = "message_sent"
	EventConversationUpdated = "conversation_updated"
	EventMessagesRead        = "messages_read"
	EventMessageDeleted      = "message_deleted"
	EventUserTyping          = "user_typing"
)

// Event is one fan-out unit: a named payload addressed to a single user.
// Controllers build a list of these after persisting and hand the whole
// batch to a dispatcher; delivery is best-effort and never awaited.
type Event struct {
	Name      string
	Recipient uuid.UUID
	Payload   any
}

type ConversationUpdatedPayload struct {
	PeerID      uuid.UUID `json:"peer_id"`
	LastMessage *Message  `json:"last_message"`
}

type MessagesReadPayload struct {
	ReaderID   uuid.UUID   `json:"reader_id"`
	MessageIDs []uuid.UUID `json:"message_ids"`
}

type MessageDeletedPayload struct {
	MessageID uuid.UUID `json:"message_id"`
	DeletedBy uuid.UUID `json:"deleted_by"`
}

type UserTypingPayload struct {
	UserID   uuid.UUID `json:"user_id"`
	IsTyping bool      `json:"is_typing"`
}
