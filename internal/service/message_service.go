package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/moiz862/backend/internal/domain"
	"github.com/moiz862/backend/internal/repository"
)

var (
	ErrMessageNotFound          = errors.New("message not found")
	ErrCannotMessageSelf        = errors.New("cannot send a message to yourself")
	ErrEmptyMessage             = errors.New("message content is required")
	ErrContentTooLong           = errors.New("message content is too long")
	ErrAttachmentTooLarge       = errors.New("attachment exceeds the size limit")
	ErrAttachmentTypeNotAllowed = errors.New("attachment type is not allowed")
	ErrNoMessageIDs             = errors.New("no message ids given")
	ErrReceiverRequired         = errors.New("receiver id is required")
)

// EventDispatcher pushes composed events to live connections. Delivery is
// best-effort: implementations must not block and must swallow recipients
// with no live connection.
type EventDispatcher interface {
	Dispatch(events []domain.Event)
}

type MessageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	dispatcher  EventDispatcher
}

func NewMessageService(messageRepo repository.MessageRepository, userRepo repository.UserRepository) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
	}
}

// SetDispatcher sets the real-time dispatcher (optional dependency).
func (s *MessageService) SetDispatcher(d EventDispatcher) {
	s.dispatcher = d
}

type SendMessageInput struct {
	ReceiverID  uuid.UUID           `json:"receiver_id"`
	Content     string              `json:"content"`
	Type        domain.MessageType  `json:"message_type"`
	Attachments []domain.Attachment `json:"attachments"`
}

type ConversationPage struct {
	Messages   []domain.Message `json:"messages"`
	Peer       domain.Profile   `json:"peer"`
	Pagination Pagination       `json:"pagination"`
}

func (s *MessageService) SendMessage(ctx context.Context, senderID uuid.UUID, input SendMessageInput) (*domain.Message, error) {
	if senderID == input.ReceiverID {
		return nil, ErrCannotMessageSelf
	}

	receiver, err := s.userRepo.GetByID(ctx, input.ReceiverID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, ErrUserNotFound
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > domain.MaxContentLength {
		return nil, ErrContentTooLong
	}
	if err := validateAttachments(input.Attachments); err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:          uuid.New(),
		SenderID:    senderID,
		ReceiverID:  input.ReceiverID,
		Content:     content,
		Type:        domain.ResolveMessageType(input.Type, input.Attachments),
		Attachments: input.Attachments,
		CreatedAt:   time.Now(),
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	// Reload with sender info for payloads
	full, err := s.messageRepo.GetByID(ctx, msg.ID)
	if err != nil {
		return nil, err
	}

	s.dispatch([]domain.Event{
		{Name: domain.EventNewMessage, Recipient: full.ReceiverID, Payload: full},
		{Name: domain.EventMessageSent, Recipient: full.SenderID, Payload: full},
		{Name: domain.EventConversationUpdated, Recipient: full.ReceiverID, Payload: domain.ConversationUpdatedPayload{
			PeerID:      full.SenderID,
			LastMessage: full,
		}},
		{Name: domain.EventConversationUpdated, Recipient: full.SenderID, Payload: domain.ConversationUpdatedPayload{
			PeerID:      full.ReceiverID,
			LastMessage: full,
		}},
	})

	return full, nil
}

// GetConversation returns one page of the exchange with a peer. Viewing is
// also the read acknowledgment: every unread message the peer sent is marked
// read in one batch and the peer is told which ids flipped.
func (s *MessageService) GetConversation(ctx context.Context, selfID, peerID uuid.UUID, page, limit int) (*ConversationPage, error) {
	peer, err := s.userRepo.GetByID(ctx, peerID)
	if err != nil {
		return nil, err
	}
	if peer == nil {
		return nil, ErrUserNotFound
	}

	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	readIDs, err := s.messageRepo.MarkConversationRead(ctx, selfID, peerID)
	if err != nil {
		return nil, fmt.Errorf("marking conversation read: %w", err)
	}

	messages, err := s.messageRepo.ListBetween(ctx, selfID, peerID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}

	total, err := s.messageRepo.CountBetween(ctx, selfID, peerID)
	if err != nil {
		return nil, err
	}

	if len(readIDs) > 0 {
		s.dispatch([]domain.Event{
			{Name: domain.EventMessagesRead, Recipient: peerID, Payload: domain.MessagesReadPayload{
				ReaderID:   selfID,
				MessageIDs: readIDs,
			}},
		})
	}

	return &ConversationPage{
		Messages:   messages,
		Peer:       peer.Profile(),
		Pagination: NewPagination(page, limit, total),
	}, nil
}

func (s *MessageService) ListConversations(ctx context.Context, selfID uuid.UUID) ([]domain.Conversation, error) {
	convs, err := s.messageRepo.ListConversations(ctx, selfID)
	if err != nil {
		return nil, err
	}
	if convs == nil {
		convs = []domain.Conversation{}
	}
	return convs, nil
}

// MarkRead flips the given messages to read where self is the receiver.
// Ids that do not match are skipped, not errors. Read receipts go out
// grouped per original sender.
func (s *MessageService) MarkRead(ctx context.Context, selfID uuid.UUID, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, ErrNoMessageIDs
	}

	bySender, err := s.messageRepo.MarkReadByIDs(ctx, selfID, ids)
	if err != nil {
		return 0, fmt.Errorf("marking messages read: %w", err)
	}

	count := 0
	events := make([]domain.Event, 0, len(bySender))
	for senderID, msgIDs := range bySender {
		count += len(msgIDs)
		events = append(events, domain.Event{
			Name:      domain.EventMessagesRead,
			Recipient: senderID,
			Payload: domain.MessagesReadPayload{
				ReaderID:   selfID,
				MessageIDs: msgIDs,
			},
		})
	}
	if len(events) > 0 {
		s.dispatch(events)
	}

	return count, nil
}

// DeleteMessage hard-deletes one of the caller's own messages. A message
// that exists but belongs to someone else reports not found, so callers
// cannot fish for other people's message ids.
func (s *MessageService) DeleteMessage(ctx context.Context, selfID, messageID uuid.UUID) (*domain.Message, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil || msg.SenderID != selfID {
		return nil, ErrMessageNotFound
	}

	if err := s.messageRepo.Delete(ctx, messageID); err != nil {
		return nil, fmt.Errorf("deleting message: %w", err)
	}

	s.dispatch([]domain.Event{
		{Name: domain.EventMessageDeleted, Recipient: msg.ReceiverID, Payload: domain.MessageDeletedPayload{
			MessageID: msg.ID,
			DeletedBy: selfID,
		}},
	})

	return msg, nil
}

func (s *MessageService) GetUnreadCount(ctx context.Context, selfID uuid.UUID) (int, error) {
	return s.messageRepo.CountUnread(ctx, selfID)
}

// SendTypingIndicator forwards an ephemeral typing signal to the receiver.
// Nothing is persisted and there is no delivery guarantee.
func (s *MessageService) SendTypingIndicator(ctx context.Context, selfID, receiverID uuid.UUID, isTyping bool) error {
	if receiverID == uuid.Nil {
		return ErrReceiverRequired
	}

	s.dispatch([]domain.Event{
		{Name: domain.EventUserTyping, Recipient: receiverID, Payload: domain.UserTypingPayload{
			UserID:   selfID,
			IsTyping: isTyping,
		}},
	})

	return nil
}

// dispatch hands a batch of events to the live connection layer. With no
// dispatcher attached the batch is dropped and logged; the triggering
// operation has already committed and must not fail.
func (s *MessageService) dispatch(events []domain.Event) {
	if s.dispatcher == nil {
		log.Printf("messages: no dispatcher attached, dropping %d event(s)", len(events))
		return
	}
	s.dispatcher.Dispatch(events)
}

// validateAttachments checks every descriptor before anything is persisted.
// One bad attachment rejects the whole set.
func validateAttachments(attachments []domain.Attachment) error {
	for _, a := range attachments {
		if !domain.AllowedAttachmentType(a.MimeType) {
			return ErrAttachmentTypeNotAllowed
		}
		if a.Size > domain.MaxAttachmentSize {
			return ErrAttachmentTooLarge
		}
	}
	return nil
}
