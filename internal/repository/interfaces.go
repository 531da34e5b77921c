package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/moiz862/backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Search(ctx context.Context, query string, limit int) ([]domain.User, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	// ListBetween returns a page of the pair's messages, newest first.
	ListBetween(ctx context.Context, userA, userB uuid.UUID, offset, limit int) ([]domain.Message, error)
	CountBetween(ctx context.Context, userA, userB uuid.UUID) (int, error)
	// MarkConversationRead flips every unread message from sender to receiver
	// in one statement and returns the ids that changed.
	MarkConversationRead(ctx context.Context, receiverID, senderID uuid.UUID) ([]uuid.UUID, error)
	// MarkReadByIDs flips the given ids where the caller is the receiver and
	// the message is still unread; non-matching ids are skipped. Returns the
	// affected ids grouped by original sender.
	MarkReadByIDs(ctx context.Context, receiverID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountUnread(ctx context.Context, receiverID uuid.UUID) (int, error)
	// ListConversations aggregates one summary row per distinct peer,
	// newest conversation first. Grouping happens store-side.
	ListConversations(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error)
}

type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	List(ctx context.Context, filter ItemFilter) ([]domain.Item, int, error)
	Update(ctx context.Context, item *domain.Item) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ItemFilter narrows item listings; zero values mean "no constraint".
type ItemFilter struct {
	OwnerID *uuid.UUID
	Tag     string
	Offset  int
	Limit   int
}

type PaymentRepository interface {
	CreateIntent(ctx context.Context, intent *domain.PaymentIntent) error
	GetIntentByID(ctx context.Context, id uuid.UUID) (*domain.PaymentIntent, error)
	ListIntentsByUser(ctx context.Context, userID uuid.UUID) ([]domain.PaymentIntent, error)
	MarkIntentStatus(ctx context.Context, id uuid.UUID, status string) error
}
