package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/moiz862/backend/internal/domain"
	"github.com/moiz862/backend/internal/service"
	"github.com/stretchr/testify/require"
)

// memUserRepo is just enough of a user store to drive the auth flow.
type memUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (m *memUserRepo) Create(_ context.Context, user *domain.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	return m.users[id], nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memUserRepo) Update(_ context.Context, user *domain.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *memUserRepo) Search(_ context.Context, _ string, _ int) ([]domain.User, error) {
	return nil, nil
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
	Data    json.RawMessage   `json:"data"`
}

func postJSON(t *testing.T, handler http.HandlerFunc, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, r)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestAuthHandler_Register(t *testing.T) {
	req := require.New(t)
	handler := NewAuthHandler(service.NewAuthService(newMemUserRepo(), "test-secret"))

	w, env := postJSON(t, handler.Register, "/api/v1/auth/register",
		`{"email":"alice@example.com","username":"alice","display_name":"Alice","password":"Sup3rSecret"}`)

	req.Equal(http.StatusCreated, w.Code)
	req.True(env.Success)

	var data struct {
		User        domain.User `json:"user"`
		AccessToken string      `json:"access_token"`
	}
	req.NoError(json.Unmarshal(env.Data, &data))
	req.Equal("alice", data.User.Username)
	req.NotEmpty(data.AccessToken)
}

func TestAuthHandler_Register_ValidationEnvelope(t *testing.T) {
	req := require.New(t)
	handler := NewAuthHandler(service.NewAuthService(newMemUserRepo(), "test-secret"))

	w, env := postJSON(t, handler.Register, "/api/v1/auth/register",
		`{"email":"nope","username":"al","display_name":"Alice","password":"short"}`)

	// Validation failures report every offending field at once
	req.Equal(http.StatusBadRequest, w.Code)
	req.False(env.Success)
	req.Equal("Validation failed", env.Message)
	req.Contains(env.Errors, "email")
	req.Contains(env.Errors, "username")
	req.Contains(env.Errors, "password")
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	req := require.New(t)
	repo := newMemUserRepo()
	handler := NewAuthHandler(service.NewAuthService(repo, "test-secret"))
	body := `{"email":"alice@example.com","username":"alice","display_name":"Alice","password":"Sup3rSecret"}`

	w, _ := postJSON(t, handler.Register, "/api/v1/auth/register", body)
	req.Equal(http.StatusCreated, w.Code)

	w, env := postJSON(t, handler.Register, "/api/v1/auth/register", body)
	req.Equal(http.StatusConflict, w.Code)
	req.False(env.Success)
	req.NotEmpty(env.Message)
}

func TestAuthHandler_Login(t *testing.T) {
	req := require.New(t)
	svc := service.NewAuthService(newMemUserRepo(), "test-secret")
	handler := NewAuthHandler(svc)

	_, err := svc.Register(context.Background(), service.RegisterInput{
		Email:       "alice@example.com",
		Username:    "alice",
		DisplayName: "Alice",
		Password:    "Sup3rSecret",
	})
	req.NoError(err)

	w, env := postJSON(t, handler.Login, "/api/v1/auth/login",
		`{"email":"alice@example.com","password":"Sup3rSecret"}`)
	req.Equal(http.StatusOK, w.Code)
	req.True(env.Success)

	w, env = postJSON(t, handler.Login, "/api/v1/auth/login",
		`{"email":"alice@example.com","password":"WrongPass1"}`)
	req.Equal(http.StatusUnauthorized, w.Code)
	req.False(env.Success)
	req.Equal("Invalid email or password", env.Message)
}

func TestAuthHandler_MalformedBody(t *testing.T) {
	req := require.New(t)
	handler := NewAuthHandler(service.NewAuthService(newMemUserRepo(), "test-secret"))

	w, env := postJSON(t, handler.Register, "/api/v1/auth/register", `{not json`)
	req.Equal(http.StatusBadRequest, w.Code)
	req.False(env.Success)
}
