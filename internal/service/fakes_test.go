package service

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/moiz862/backend/internal/domain"
	"github.com/moiz862/backend/internal/repository"
)

// In-memory repository fakes shared by the service tests. They copy values
// in and out like the real store and keep the same ordering guarantees the
// Postgres queries give (newest first where the queries sort that way).

type fakeUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
	for _, u := range users {
		cp := *u
		repo.users[u.ID] = &cp
	}
	return repo
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) Search(_ context.Context, query string, limit int) ([]domain.User, error) {
	q := strings.ToLower(query)
	var out []domain.User
	for _, u := range f.users {
		if len(out) == limit {
			break
		}
		if strings.Contains(strings.ToLower(u.Username), q) || strings.Contains(strings.ToLower(u.DisplayName), q) {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakeMessageRepo struct {
	// messages is kept in insertion order, which the tests keep chronological.
	messages  []*domain.Message
	createErr error
}

func (f *fakeMessageRepo) Create(_ context.Context, msg *domain.Message) error {
	if f.createErr != nil {
		return f.createErr
	}
	cp := *msg
	f.messages = append(f.messages, &cp)
	return nil
}

func (f *fakeMessageRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Message, error) {
	for _, m := range f.messages {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeMessageRepo) ListBetween(_ context.Context, userA, userB uuid.UUID, offset, limit int) ([]domain.Message, error) {
	var pair []domain.Message
	for _, m := range f.messages {
		if (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA) {
			pair = append(pair, *m)
		}
	}

	// Page from the newest end, returning each page in chronological order,
	// the same shape the DESC-then-reverse query produces.
	end := len(pair) - offset
	if end < 0 {
		end = 0
	}
	start := end - limit
	if start < 0 {
		start = 0
	}
	return pair[start:end], nil
}

func (f *fakeMessageRepo) CountBetween(_ context.Context, userA, userB uuid.UUID) (int, error) {
	count := 0
	for _, m := range f.messages {
		if (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA) {
			count++
		}
	}
	return count, nil
}

func (f *fakeMessageRepo) MarkConversationRead(_ context.Context, receiverID, senderID uuid.UUID) ([]uuid.UUID, error) {
	now := time.Now()
	var ids []uuid.UUID
	for _, m := range f.messages {
		if m.ReceiverID == receiverID && m.SenderID == senderID && !m.IsRead {
			m.IsRead = true
			m.ReadAt = &now
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

func (f *fakeMessageRepo) MarkReadByIDs(_ context.Context, receiverID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	now := time.Now()
	bySender := make(map[uuid.UUID][]uuid.UUID)
	for _, m := range f.messages {
		if m.ReceiverID != receiverID || m.IsRead || !slices.Contains(ids, m.ID) {
			continue
		}
		m.IsRead = true
		m.ReadAt = &now
		bySender[m.SenderID] = append(bySender[m.SenderID], m.ID)
	}
	return bySender, nil
}

func (f *fakeMessageRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, m := range f.messages {
		if m.ID == id {
			f.messages = append(f.messages[:i], f.messages[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeMessageRepo) CountUnread(_ context.Context, receiverID uuid.UUID) (int, error) {
	count := 0
	for _, m := range f.messages {
		if m.ReceiverID == receiverID && !m.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeMessageRepo) ListConversations(_ context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	type agg struct {
		last   *domain.Message
		unread int
		total  int
	}
	byPeer := make(map[uuid.UUID]*agg)
	for _, m := range f.messages {
		var peerID uuid.UUID
		switch userID {
		case m.SenderID:
			peerID = m.ReceiverID
		case m.ReceiverID:
			peerID = m.SenderID
		default:
			continue
		}
		a := byPeer[peerID]
		if a == nil {
			a = &agg{}
			byPeer[peerID] = a
		}
		a.total++
		if m.ReceiverID == userID && !m.IsRead {
			a.unread++
		}
		cp := *m
		a.last = &cp
	}

	var convs []domain.Conversation
	for peerID, a := range byPeer {
		convs = append(convs, domain.Conversation{
			Peer:          domain.Profile{ID: peerID},
			LastMessage:   a.last,
			UnreadCount:   a.unread,
			TotalMessages: a.total,
		})
	}
	sort.Slice(convs, func(i, j int) bool {
		return convs[i].LastMessage.CreatedAt.After(convs[j].LastMessage.CreatedAt)
	})
	return convs, nil
}

type fakeItemRepo struct {
	items []*domain.Item
}

func (f *fakeItemRepo) Create(_ context.Context, item *domain.Item) error {
	cp := *item
	f.items = append(f.items, &cp)
	return nil
}

func (f *fakeItemRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Item, error) {
	for _, item := range f.items {
		if item.ID == id {
			cp := *item
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeItemRepo) List(_ context.Context, filter repository.ItemFilter) ([]domain.Item, int, error) {
	var matched []domain.Item
	for i := len(f.items) - 1; i >= 0; i-- {
		item := f.items[i]
		if filter.OwnerID != nil && item.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.Tag != "" && !slices.Contains(item.Tags, filter.Tag) {
			continue
		}
		matched = append(matched, *item)
	}

	total := len(matched)
	if filter.Offset >= total {
		return nil, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (f *fakeItemRepo) Update(_ context.Context, item *domain.Item) error {
	for i, existing := range f.items {
		if existing.ID == item.ID {
			cp := *item
			f.items[i] = &cp
			return nil
		}
	}
	return nil
}

func (f *fakeItemRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, item := range f.items {
		if item.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakePaymentRepo struct {
	intents map[uuid.UUID]*domain.PaymentIntent
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{intents: make(map[uuid.UUID]*domain.PaymentIntent)}
}

func (f *fakePaymentRepo) CreateIntent(_ context.Context, intent *domain.PaymentIntent) error {
	cp := *intent
	f.intents[intent.ID] = &cp
	return nil
}

func (f *fakePaymentRepo) GetIntentByID(_ context.Context, id uuid.UUID) (*domain.PaymentIntent, error) {
	intent, ok := f.intents[id]
	if !ok {
		return nil, nil
	}
	cp := *intent
	return &cp, nil
}

func (f *fakePaymentRepo) ListIntentsByUser(_ context.Context, userID uuid.UUID) ([]domain.PaymentIntent, error) {
	var out []domain.PaymentIntent
	for _, intent := range f.intents {
		if intent.UserID == userID {
			out = append(out, *intent)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakePaymentRepo) MarkIntentStatus(_ context.Context, id uuid.UUID, status string) error {
	intent, ok := f.intents[id]
	if !ok {
		return nil
	}
	intent.Status = status
	if status == domain.IntentStatusSucceeded {
		now := time.Now()
		intent.ConfirmedAt = &now
	}
	return nil
}

// recorderDispatcher captures dispatched batches for assertions.
type recorderDispatcher struct {
	batches [][]domain.Event
}

func (d *recorderDispatcher) Dispatch(events []domain.Event) {
	d.batches = append(d.batches, events)
}

func (d *recorderDispatcher) events() []domain.Event {
	var all []domain.Event
	for _, batch := range d.batches {
		all = append(all, batch...)
	}
	return all
}

func (d *recorderDispatcher) named(name string) []domain.Event {
	var out []domain.Event
	for _, e := range d.events() {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

func seedUser(username string) *domain.User {
	now := time.Now()
	return &domain.User{
		ID:          uuid.New(),
		Email:       username + "@example.com",
		Username:    username,
		DisplayName: username,
		Plan:        domain.PlanFree,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
