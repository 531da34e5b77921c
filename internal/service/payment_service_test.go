package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/moiz862/backend/internal/domain"
	"github.com/stretchr/testify/require"
)

func newPaymentFixture(users ...*domain.User) (*PaymentService, *fakeUserRepo) {
	userRepo := newFakeUserRepo(users...)
	return NewPaymentService(newFakePaymentRepo(), userRepo), userRepo
}

func TestListPlans(t *testing.T) {
	req := require.New(t)
	svc, _ := newPaymentFixture()

	plans := svc.ListPlans()
	req.Len(plans, 2)
	req.Equal(domain.PlanPro, plans[0].Plan)
	req.Equal(int64(999), plans[0].Amount)
	req.Equal(domain.PlanPremium, plans[1].Plan)
}

func TestCreateIntent(t *testing.T) {
	req := require.New(t)
	alice := seedUser("alice")
	svc, _ := newPaymentFixture(alice)

	intent, err := svc.CreateIntent(context.Background(), alice.ID, domain.PlanPro)
	req.NoError(err)
	req.Equal(domain.IntentStatusRequiresConfirmation, intent.Status)
	req.Equal(int64(999), intent.Amount)
	req.Equal("usd", intent.Currency)
	req.True(strings.HasPrefix(intent.ClientSecret, "mock_secret_"))

	_, err = svc.CreateIntent(context.Background(), alice.ID, "enterprise")
	req.ErrorIs(err, ErrUnknownPlan)
}

func TestConfirmIntent_UpgradesPlan(t *testing.T) {
	req := require.New(t)
	alice := seedUser("alice")
	svc, userRepo := newPaymentFixture(alice)
	ctx := context.Background()

	intent, err := svc.CreateIntent(ctx, alice.ID, domain.PlanPremium)
	req.NoError(err)

	confirmed, err := svc.ConfirmIntent(ctx, alice.ID, intent.ID)
	req.NoError(err)
	req.Equal(domain.IntentStatusSucceeded, confirmed.Status)
	req.NotNil(confirmed.ConfirmedAt)

	// Confirming is what flips the subscription
	req.Equal(domain.PlanPremium, userRepo.users[alice.ID].Plan)

	// A settled intent cannot be confirmed again
	_, err = svc.ConfirmIntent(ctx, alice.ID, intent.ID)
	req.ErrorIs(err, ErrIntentNotPending)
}

func TestConfirmIntent_WrongUser(t *testing.T) {
	req := require.New(t)
	alice := seedUser("alice")
	mallory := seedUser("mallory")
	svc, userRepo := newPaymentFixture(alice, mallory)
	ctx := context.Background()

	intent, err := svc.CreateIntent(ctx, alice.ID, domain.PlanPro)
	req.NoError(err)

	// Someone else's intent id looks like it does not exist
	_, err = svc.ConfirmIntent(ctx, mallory.ID, intent.ID)
	req.ErrorIs(err, ErrIntentNotFound)

	_, err = svc.ConfirmIntent(ctx, alice.ID, uuid.New())
	req.ErrorIs(err, ErrIntentNotFound)

	req.Equal(domain.PlanFree, userRepo.users[alice.ID].Plan)
}

func TestCancelIntent(t *testing.T) {
	req := require.New(t)
	alice := seedUser("alice")
	svc, userRepo := newPaymentFixture(alice)
	ctx := context.Background()

	intent, err := svc.CreateIntent(ctx, alice.ID, domain.PlanPro)
	req.NoError(err)

	canceled, err := svc.CancelIntent(ctx, alice.ID, intent.ID)
	req.NoError(err)
	req.Equal(domain.IntentStatusCanceled, canceled.Status)
	req.Nil(canceled.ConfirmedAt)

	// Canceling never touches the plan, and the intent is spent
	req.Equal(domain.PlanFree, userRepo.users[alice.ID].Plan)
	_, err = svc.ConfirmIntent(ctx, alice.ID, intent.ID)
	req.ErrorIs(err, ErrIntentNotPending)
}

func TestSubscriptionLifecycle(t *testing.T) {
	req := require.New(t)
	alice := seedUser("alice")
	svc, userRepo := newPaymentFixture(alice)
	ctx := context.Background()

	// Fresh accounts are on the free tier with nothing to show
	sub, err := svc.GetSubscription(ctx, alice.ID)
	req.NoError(err)
	req.Equal(domain.PlanFree, sub.Plan)
	req.Nil(sub.Price)
	req.Nil(sub.Intent)

	intent, err := svc.CreateIntent(ctx, alice.ID, domain.PlanPro)
	req.NoError(err)
	_, err = svc.ConfirmIntent(ctx, alice.ID, intent.ID)
	req.NoError(err)

	sub, err = svc.GetSubscription(ctx, alice.ID)
	req.NoError(err)
	req.Equal(domain.PlanPro, sub.Plan)
	req.NotNil(sub.Price)
	req.Equal(int64(999), sub.Price.Amount)
	req.NotNil(sub.Intent)
	req.Equal(intent.ID, sub.Intent.ID)

	sub, err = svc.CancelSubscription(ctx, alice.ID)
	req.NoError(err)
	req.Equal(domain.PlanFree, sub.Plan)
	req.Equal(domain.PlanFree, userRepo.users[alice.ID].Plan)

	// The old intent stays in history but no longer backs a subscription
	sub, err = svc.GetSubscription(ctx, alice.ID)
	req.NoError(err)
	req.Nil(sub.Intent)

	_, err = svc.CancelSubscription(ctx, alice.ID)
	req.ErrorIs(err, ErrNotSubscribed)

	_, err = svc.GetSubscription(ctx, uuid.New())
	req.ErrorIs(err, ErrUserNotFound)
}

func TestListIntents(t *testing.T) {
	req := require.New(t)
	alice := seedUser("alice")
	svc, _ := newPaymentFixture(alice)
	ctx := context.Background()

	intents, err := svc.ListIntents(ctx, alice.ID)
	req.NoError(err)
	req.NotNil(intents)
	req.Empty(intents)

	_, err = svc.CreateIntent(ctx, alice.ID, domain.PlanPro)
	req.NoError(err)
	_, err = svc.CreateIntent(ctx, alice.ID, domain.PlanPremium)
	req.NoError(err)

	intents, err = svc.ListIntents(ctx, alice.ID)
	req.NoError(err)
	req.Len(intents, 2)
}
