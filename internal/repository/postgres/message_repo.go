package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moiz862/backend/internal/domain"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	attachments, err := encodeAttachments(msg.Attachments)
	if err != nil {
		return fmt.Errorf("encoding attachments: %w", err)
	}

	query := `
		INSERT INTO messages (id, sender_id, receiver_id, content, message_type, attachments, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.pool.Exec(ctx, query,
		msg.ID, msg.SenderID, msg.ReceiverID, msg.Content, msg.Type, attachments, msg.IsRead, msg.CreatedAt,
	)
	return err
}

func (r *MessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	query := `
		SELECT m.id, m.sender_id, m.receiver_id, m.content, m.message_type, m.attachments,
			m.is_read, m.read_at, m.created_at, u.username, u.display_name
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.id = $1`
	var msg domain.Message
	var attachments []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.Type, &attachments,
		&msg.IsRead, &msg.ReadAt, &msg.CreatedAt,
		&msg.SenderUsername, &msg.SenderDisplayName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := decodeAttachments(attachments, &msg.Attachments); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *MessageRepo) ListBetween(ctx context.Context, userA, userB uuid.UUID, offset, limit int) ([]domain.Message, error) {
	query := fmt.Sprintf(`
		SELECT m.id, m.sender_id, m.receiver_id, m.content, m.message_type, m.attachments,
			m.is_read, m.read_at, m.created_at, u.username, u.display_name
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE (m.sender_id = $1 AND m.receiver_id = $2) OR (m.sender_id = $2 AND m.receiver_id = $1)
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT %d OFFSET %d`, limit, offset)

	rows, err := r.pool.Query(ctx, query, userA, userB)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		var attachments []byte
		if err := rows.Scan(
			&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.Type, &attachments,
			&msg.IsRead, &msg.ReadAt, &msg.CreatedAt,
			&msg.SenderUsername, &msg.SenderDisplayName,
		); err != nil {
			return nil, err
		}
		if err := decodeAttachments(attachments, &msg.Attachments); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to chronological order (query returns DESC)
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

func (r *MessageRepo) CountBetween(ctx context.Context, userA, userB uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)`
	var count int
	err := r.pool.QueryRow(ctx, query, userA, userB).Scan(&count)
	return count, err
}

func (r *MessageRepo) MarkConversationRead(ctx context.Context, receiverID, senderID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		UPDATE messages
		SET is_read = TRUE, read_at = $1
		WHERE receiver_id = $2 AND sender_id = $3 AND is_read = FALSE
		RETURNING id`

	rows, err := r.pool.Query(ctx, query, time.Now(), receiverID, senderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *MessageRepo) MarkReadByIDs(ctx context.Context, receiverID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	query := `
		UPDATE messages
		SET is_read = TRUE, read_at = $1
		WHERE id = ANY($2) AND receiver_id = $3 AND is_read = FALSE
		RETURNING id, sender_id`

	rows, err := r.pool.Query(ctx, query, time.Now(), ids, receiverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bySender := make(map[uuid.UUID][]uuid.UUID)
	for rows.Next() {
		var id, senderID uuid.UUID
		if err := rows.Scan(&id, &senderID); err != nil {
			return nil, err
		}
		bySender[senderID] = append(bySender[senderID], id)
	}
	return bySender, rows.Err()
}

func (r *MessageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	return err
}

func (r *MessageRepo) CountUnread(ctx context.Context, receiverID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND is_read = FALSE`,
		receiverID,
	).Scan(&count)
	return count, err
}

// ListConversations groups the user's messages by peer entirely in the
// database: a DISTINCT ON pass picks the newest message per peer, a grouped
// pass counts totals and unread, and the peer profile is joined in.
func (r *MessageRepo) ListConversations(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	query := `
		WITH scoped AS (
			SELECT m.*,
				CASE WHEN m.sender_id = $1 THEN m.receiver_id ELSE m.sender_id END AS peer_id
			FROM messages m
			WHERE m.sender_id = $1 OR m.receiver_id = $1
		), latest AS (
			SELECT DISTINCT ON (peer_id)
				peer_id, id, sender_id, receiver_id, content, message_type, attachments, is_read, read_at, created_at
			FROM scoped
			ORDER BY peer_id, created_at DESC, id DESC
		), totals AS (
			SELECT peer_id,
				COUNT(*) AS total_messages,
				COUNT(*) FILTER (WHERE receiver_id = $1 AND is_read = FALSE) AS unread_count
			FROM scoped
			GROUP BY peer_id
		)
		SELECT
			u.id, u.username, u.display_name, u.email, u.avatar_url,
			l.id, l.sender_id, l.receiver_id, l.content, l.message_type, l.attachments, l.is_read, l.read_at, l.created_at,
			t.unread_count, t.total_messages
		FROM latest l
		JOIN totals t ON t.peer_id = l.peer_id
		JOIN users u ON u.id = l.peer_id
		ORDER BY l.created_at DESC, l.id DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations []domain.Conversation
	for rows.Next() {
		var conv domain.Conversation
		var msg domain.Message
		var attachments []byte
		if err := rows.Scan(
			&conv.Peer.ID, &conv.Peer.Username, &conv.Peer.DisplayName, &conv.Peer.Email, &conv.Peer.AvatarURL,
			&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.Type, &attachments, &msg.IsRead, &msg.ReadAt, &msg.CreatedAt,
			&conv.UnreadCount, &conv.TotalMessages,
		); err != nil {
			return nil, err
		}
		if err := decodeAttachments(attachments, &msg.Attachments); err != nil {
			return nil, err
		}
		conv.LastMessage = &msg
		conversations = append(conversations, conv)
	}
	return conversations, rows.Err()
}

func encodeAttachments(attachments []domain.Attachment) ([]byte, error) {
	if attachments == nil {
		attachments = []domain.Attachment{}
	}
	return json.Marshal(attachments)
}

func decodeAttachments(data []byte, dst *[]domain.Attachment) error {
	if len(data) == 0 {
		*dst = []domain.Attachment{}
		return nil
	}
	return json.Unmarshal(data, dst)
}
