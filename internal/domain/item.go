package domain

import (
	"time"

	"github.com/google/uuid"
)

// Item is a tagged content record owned by a single user. Images are staged
// through the attachment store and recorded as descriptors, like message
// attachments.
type Item struct {
	ID          uuid.UUID    `json:"id"`
	OwnerID     uuid.UUID    `json:"owner_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Tags        []string     `json:"tags"`
	Images      []Attachment `json:"images"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	// Joined fields
	OwnerUsername    string `json:"owner_username,omitempty"`
	OwnerDisplayName string `json:"owner_display_name,omitempty"`
}
