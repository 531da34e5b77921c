package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/moiz862/backend/internal/domain"
	"github.com/moiz862/backend/internal/repository"
	"github.com/samber/lo"
)

var (
	ErrIntentNotFound   = errors.New("payment intent not found")
	ErrUnknownPlan      = errors.New("unknown subscription plan")
	ErrIntentNotPending = errors.New("payment intent is not awaiting confirmation")
	ErrNotSubscribed    = errors.New("no active subscription")
)

// planCatalog is the static price list. Amounts are cents per month.
var planCatalog = []domain.PlanPrice{
	{Plan: domain.PlanPro, Amount: 999, Currency: "usd", Interval: "month"},
	{Plan: domain.PlanPremium, Amount: 1999, Currency: "usd", Interval: "month"},
}

// PaymentService runs the mocked subscription flow: intents are created and
// confirmed locally, no real provider is ever called. Confirming an intent
// is what flips the user's plan.
type PaymentService struct {
	paymentRepo repository.PaymentRepository
	userRepo    repository.UserRepository
}

func NewPaymentService(paymentRepo repository.PaymentRepository, userRepo repository.UserRepository) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
	}
}

func (s *PaymentService) ListPlans() []domain.PlanPrice {
	return planCatalog
}

func (s *PaymentService) CreateIntent(ctx context.Context, userID uuid.UUID, plan string) (*domain.PaymentIntent, error) {
	price, ok := lo.Find(planCatalog, func(p domain.PlanPrice) bool {
		return p.Plan == plan
	})
	if !ok {
		return nil, ErrUnknownPlan
	}

	secret, err := generateClientSecret()
	if err != nil {
		return nil, fmt.Errorf("generating client secret: %w", err)
	}

	intent := &domain.PaymentIntent{
		ID:           uuid.New(),
		UserID:       userID,
		Plan:         price.Plan,
		Amount:       price.Amount,
		Currency:     price.Currency,
		Status:       domain.IntentStatusRequiresConfirmation,
		ClientSecret: secret,
		CreatedAt:    time.Now(),
	}

	if err := s.paymentRepo.CreateIntent(ctx, intent); err != nil {
		return nil, fmt.Errorf("creating payment intent: %w", err)
	}

	return intent, nil
}

// ConfirmIntent settles a pending intent and upgrades the user's plan.
// An intent that exists but belongs to another user reports not found.
func (s *PaymentService) ConfirmIntent(ctx context.Context, userID, intentID uuid.UUID) (*domain.PaymentIntent, error) {
	intent, err := s.ownedIntent(ctx, userID, intentID)
	if err != nil {
		return nil, err
	}
	if intent.Status != domain.IntentStatusRequiresConfirmation {
		return nil, ErrIntentNotPending
	}

	if err := s.paymentRepo.MarkIntentStatus(ctx, intentID, domain.IntentStatusSucceeded); err != nil {
		return nil, fmt.Errorf("confirming payment intent: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		user.Plan = intent.Plan
		user.UpdatedAt = time.Now()
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("updating user plan: %w", err)
		}
	}

	return s.paymentRepo.GetIntentByID(ctx, intentID)
}

func (s *PaymentService) CancelIntent(ctx context.Context, userID, intentID uuid.UUID) (*domain.PaymentIntent, error) {
	intent, err := s.ownedIntent(ctx, userID, intentID)
	if err != nil {
		return nil, err
	}
	if intent.Status != domain.IntentStatusRequiresConfirmation {
		return nil, ErrIntentNotPending
	}

	if err := s.paymentRepo.MarkIntentStatus(ctx, intentID, domain.IntentStatusCanceled); err != nil {
		return nil, fmt.Errorf("canceling payment intent: %w", err)
	}

	return s.paymentRepo.GetIntentByID(ctx, intentID)
}

// Subscription is the user's current tier plus the settled intent that
// produced it, when one exists.
type Subscription struct {
	Plan   string                `json:"plan"`
	Price  *domain.PlanPrice     `json:"price,omitempty"`
	Intent *domain.PaymentIntent `json:"intent,omitempty"`
}

func (s *PaymentService) GetSubscription(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	sub := &Subscription{Plan: user.Plan}
	if price, ok := lo.Find(planCatalog, func(p domain.PlanPrice) bool {
		return p.Plan == user.Plan
	}); ok {
		sub.Price = &price
	}

	intents, err := s.paymentRepo.ListIntentsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, intent := range intents {
		if intent.Status == domain.IntentStatusSucceeded && intent.Plan == user.Plan {
			sub.Intent = &intent
			break
		}
	}
	return sub, nil
}

// CancelSubscription drops the user back to the free tier. Settled intents
// keep their history; the mock flow refunds nothing.
func (s *PaymentService) CancelSubscription(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Plan == domain.PlanFree {
		return nil, ErrNotSubscribed
	}

	user.Plan = domain.PlanFree
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("downgrading user plan: %w", err)
	}

	return &Subscription{Plan: domain.PlanFree}, nil
}

func (s *PaymentService) ListIntents(ctx context.Context, userID uuid.UUID) ([]domain.PaymentIntent, error) {
	intents, err := s.paymentRepo.ListIntentsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if intents == nil {
		intents = []domain.PaymentIntent{}
	}
	return intents, nil
}

func (s *PaymentService) ownedIntent(ctx context.Context, userID, intentID uuid.UUID) (*domain.PaymentIntent, error) {
	intent, err := s.paymentRepo.GetIntentByID(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if intent == nil || intent.UserID != userID {
		return nil, ErrIntentNotFound
	}
	return intent, nil
}

func generateClientSecret() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "mock_secret_" + base64.RawURLEncoding.EncodeToString(buf), nil
}
