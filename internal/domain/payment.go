package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	PlanFree    = "free"
	PlanPro     = "pro"
	PlanPremium = "premium"
)

const (
	IntentStatusRequiresConfirmation = "requires_confirmation"
	IntentStatusSucceeded            = "succeeded"
	IntentStatusCanceled             = "canceled"
)

// PaymentIntent is a mocked provider object. Amounts are in cents; the
// client secret is generated locally and never leaves the mock flow.
type PaymentIntent struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	Plan         string     `json:"plan"`
	Amount       int64      `json:"amount"`
	Currency     string     `json:"currency"`
	Status       string     `json:"status"`
	ClientSecret string     `json:"client_secret,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty"`
}

// PlanPrice describes one subscription tier in the static catalog.
type PlanPrice struct {
	Plan     string `json:"plan"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Interval string `json:"interval"`
}
