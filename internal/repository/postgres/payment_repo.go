package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moiz862/backend/internal/domain"
)

type PaymentRepo struct {
	pool *pgxpool.Pool
}

func NewPaymentRepo(pool *pgxpool.Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

func (r *PaymentRepo) CreateIntent(ctx context.Context, intent *domain.PaymentIntent) error {
	query := `
		INSERT INTO payment_intents (id, user_id, plan, amount, currency, status, client_secret, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.pool.Exec(ctx, query,
		intent.ID, intent.UserID, intent.Plan, intent.Amount, intent.Currency,
		intent.Status, intent.ClientSecret, intent.CreatedAt,
	)
	return err
}

func (r *PaymentRepo) GetIntentByID(ctx context.Context, id uuid.UUID) (*domain.PaymentIntent, error) {
	query := `
		SELECT id, user_id, plan, amount, currency, status, client_secret, created_at, confirmed_at
		FROM payment_intents
		WHERE id = $1`
	var intent domain.PaymentIntent
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&intent.ID, &intent.UserID, &intent.Plan, &intent.Amount, &intent.Currency,
		&intent.Status, &intent.ClientSecret, &intent.CreatedAt, &intent.ConfirmedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

func (r *PaymentRepo) ListIntentsByUser(ctx context.Context, userID uuid.UUID) ([]domain.PaymentIntent, error) {
	query := `
		SELECT id, user_id, plan, amount, currency, status, client_secret, created_at, confirmed_at
		FROM payment_intents
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var intents []domain.PaymentIntent
	for rows.Next() {
		var intent domain.PaymentIntent
		if err := rows.Scan(
			&intent.ID, &intent.UserID, &intent.Plan, &intent.Amount, &intent.Currency,
			&intent.Status, &intent.ClientSecret, &intent.CreatedAt, &intent.ConfirmedAt,
		); err != nil {
			return nil, err
		}
		intents = append(intents, intent)
	}
	return intents, rows.Err()
}

func (r *PaymentRepo) MarkIntentStatus(ctx context.Context, id uuid.UUID, status string) error {
	var confirmedAt *time.Time
	if status == domain.IntentStatusSucceeded {
		now := time.Now()
		confirmedAt = &now
	}
	query := `UPDATE payment_intents SET status = $1, confirmed_at = $2 WHERE id = $3`
	_, err := r.pool.Exec(ctx, query, status, confirmedAt, id)
	return err
}
