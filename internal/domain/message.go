package domain

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
	MessageTypeFile  MessageType = "file"
)

const (
	// MaxContentLength is the upper bound on message text, in characters.
	MaxContentLength = 1000
	// MaxAttachmentSize is the per-file cap for attachments, in bytes.
	MaxAttachmentSize = 5 << 20
)

var allowedAttachmentTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/gif":       {},
	"image/webp":      {},
	"application/pdf": {},
}

// AllowedAttachmentType reports whether a MIME type is accepted for uploads
// and message attachments.
func AllowedAttachmentType(mimeType string) bool {
	_, ok := allowedAttachmentTypes[mimeType]
	return ok
}

// Attachment is the stored descriptor of a staged file. The byte content
// lives with the attachment store; messages and items only carry descriptors.
type Attachment struct {
	URL          string `json:"url"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mimetype"`
}

type Message struct {
	ID          uuid.UUID    `json:"id"`
	SenderID    uuid.UUID    `json:"sender_id"`
	ReceiverID  uuid.UUID    `json:"receiver_id"`
	Content     string       `json:"content"`
	Type        MessageType  `json:"message_type"`
	Attachments []Attachment `json:"attachments"`
	IsRead      bool         `json:"is_read"`
	ReadAt      *time.Time   `json:"read_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	// Joined fields
	SenderUsername    string `json:"sender_username,omitempty"`
	SenderDisplayName string `json:"sender_display_name,omitempty"`
}

// ResolveMessageType applies the attachment override: any message carrying
// attachments is stored as a file message no matter what type the caller
// asked for.
func ResolveMessageType(requested MessageType, attachments []Attachment) MessageType {
	if len(attachments) > 0 {
		return MessageTypeFile
	}
	switch requested {
	case MessageTypeImage, MessageTypeFile:
		return requested
	default:
		return MessageTypeText
	}
}

// Conversation is a derived, per-peer summary of a message exchange. It is
// recomputed from the message store on every listing and never persisted.
type Conversation struct {
	Peer          Profile  `json:"peer"`
	LastMessage   *Message `json:"last_message"`
	UnreadCount   int      `json:"unread_count"`
	TotalMessages int      `json:"total_messages"`
}
