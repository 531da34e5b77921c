package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moiz862/backend/internal/domain"
	"github.com/moiz862/backend/internal/repository"
)

type ItemRepo struct {
	pool *pgxpool.Pool
}

func NewItemRepo(pool *pgxpool.Pool) *ItemRepo {
	return &ItemRepo{pool: pool}
}

func (r *ItemRepo) Create(ctx context.Context, item *domain.Item) error {
	images, err := encodeAttachments(item.Images)
	if err != nil {
		return fmt.Errorf("encoding images: %w", err)
	}

	query := `
		INSERT INTO items (id, owner_id, title, description, tags, images, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.pool.Exec(ctx, query,
		item.ID, item.OwnerID, item.Title, item.Description, item.Tags, images, item.CreatedAt, item.UpdatedAt,
	)
	return err
}

func (r *ItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	query := `
		SELECT i.id, i.owner_id, i.title, i.description, i.tags, i.images, i.created_at, i.updated_at,
			u.username, u.display_name
		FROM items i
		JOIN users u ON i.owner_id = u.id
		WHERE i.id = $1`
	var item domain.Item
	var images []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&item.ID, &item.OwnerID, &item.Title, &item.Description, &item.Tags, &images,
		&item.CreatedAt, &item.UpdatedAt,
		&item.OwnerUsername, &item.OwnerDisplayName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := decodeAttachments(images, &item.Images); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *ItemRepo) List(ctx context.Context, filter repository.ItemFilter) ([]domain.Item, int, error) {
	where := "TRUE"
	args := []any{}
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		where += fmt.Sprintf(" AND i.owner_id = $%d", len(args))
	}
	if filter.Tag != "" {
		args = append(args, filter.Tag)
		where += fmt.Sprintf(" AND $%d = ANY(i.tags)", len(args))
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM items i WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT i.id, i.owner_id, i.title, i.description, i.tags, i.images, i.created_at, i.updated_at,
			u.username, u.display_name
		FROM items i
		JOIN users u ON i.owner_id = u.id
		WHERE %s
		ORDER BY i.created_at DESC, i.id DESC
		LIMIT %d OFFSET %d`, where, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var item domain.Item
		var images []byte
		if err := rows.Scan(
			&item.ID, &item.OwnerID, &item.Title, &item.Description, &item.Tags, &images,
			&item.CreatedAt, &item.UpdatedAt,
			&item.OwnerUsername, &item.OwnerDisplayName,
		); err != nil {
			return nil, 0, err
		}
		if err := decodeAttachments(images, &item.Images); err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

func (r *ItemRepo) Update(ctx context.Context, item *domain.Item) error {
	images, err := encodeAttachments(item.Images)
	if err != nil {
		return fmt.Errorf("encoding images: %w", err)
	}

	query := `
		UPDATE items
		SET title = $1, description = $2, tags = $3, images = $4, updated_at = $5
		WHERE id = $6`
	_, err = r.pool.Exec(ctx, query,
		item.Title, item.Description, item.Tags, images, item.UpdatedAt, item.ID,
	)
	return err
}

func (r *ItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	return err
}
