package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"agora/internal/api"
	"agora/internal/models"
	"agora/internal/session"
	"agora/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Login(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	client := &requesterStub{doFn: respondWith(models.LoginResponse{
		Token:    "jwt-token",
		ID:       7,
		Username: "alice",
		Email:    "alice@example.com",
		Type:     "Bearer",
		Success:  true,
	})}
	store := newStore(t)
	svc := NewAuthService(client, store, nil)

	var published, header []*models.User
	store.Subscribe(func(u *models.User) { published = append(published, u) })
	store.Subscribe(func(u *models.User) { header = append(header, u) })

	user, err := svc.Login(ctx, "alice", "Passw0rd!")
	require.NoError(t, err)

	want := &models.User{ID: 7, Username: "alice", Email: "alice@example.com", Token: "jwt-token"}
	assert.Equal(t, want, user)
	assert.Equal(t, want, store.Current())
	assert.True(t, store.IsLoggedIn(ctx))
	require.Len(t, published, 2)
	assert.Equal(t, want, published[1])
	require.Len(t, header, 2)
	assert.Equal(t, want, header[1])

	require.Len(t, client.requests, 1)
	req := client.requests[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/auth/login", req.Path)
	assert.Equal(t, models.LoginRequest{Username: "alice", Password: "Passw0rd!"}, req.Body)
}

func TestAuthService_LoginFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server message", &api.HTTPError{Status: 401, Detail: "Invalid username or password"}, "[401] Invalid username or password"},
		{"status text", &api.HTTPError{Status: 503, Text: "Service Unavailable"}, "[503] Service Unavailable"},
		{"network", &api.HTTPError{Text: "dial tcp: connection refused"}, "[0] dial tcp: connection refused"},
		{"nothing to say", &api.HTTPError{Status: 500}, "[500] Login failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := newStore(t)
			svc := NewAuthService(&requesterStub{doFn: failWith(tt.err)}, store, nil)

			_, err := svc.Login(context.Background(), "alice", "wrong")
			assertAppError(t, err, models.CodeRemote, tt.want)
			assert.Nil(t, store.Current())
		})
	}
}

func TestAuthService_Register(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	client := &requesterStub{doFn: respondWith(map[string]any{
		"id":       9,
		"username": "alice1",
		"email":    "alice@example.com",
		"password": "$2a$10$hash",
	})}
	store := newStore(t)
	svc := NewAuthService(client, store, nil)

	user, err := svc.Register(ctx, RegisterInput{
		Username:        "alice1",
		Email:           "alice@example.com",
		Password:        "Passw0rd!",
		ConfirmPassword: "Passw0rd!",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(9), user.ID)
	assert.Empty(t, user.Password)
	assert.Nil(t, store.Current(), "register does not log in")

	require.Len(t, client.requests, 1)
	assert.Equal(t, "/api/auth/register", client.requests[0].Path)
	assert.Equal(t, models.RegisterRequest{
		Username: "alice1",
		Password: "Passw0rd!",
		Email:    "alice@example.com",
	}, client.requests[0].Body)
}

func TestAuthService_RegisterValidationSkipsNetwork(t *testing.T) {
	t.Parallel()

	client := &requesterStub{doFn: failWith(errors.New("must not be called"))}
	svc := NewAuthService(client, newStore(t), nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username:        "alice1",
		Email:           "alice@example.com",
		Password:        "Passw0rd!",
		ConfirmPassword: "Passw0rd?",
	})
	assertAppError(t, err, models.CodeValidation, validation.MsgPasswordMismatch)
	assert.Empty(t, client.requests)
}

func TestAuthService_RegisterFailure(t *testing.T) {
	t.Parallel()

	client := &requesterStub{doFn: failWith(&api.HTTPError{Status: 400, Detail: "Username is already taken!"})}
	svc := NewAuthService(client, newStore(t), nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username:        "alice1",
		Email:           "alice@example.com",
		Password:        "Passw0rd!",
		ConfirmPassword: "Passw0rd!",
	})
	assertAppError(t, err, models.CodeRemote, "[400] Username is already taken!")
}

func TestAuthService_LogoutClearsEvenWhenRemoteFails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	client := &requesterStub{doFn: failWith(&api.HTTPError{Text: "connection refused"})}
	store := loggedInStore(t)
	svc := NewAuthService(client, store, nil)

	require.NoError(t, svc.Logout(ctx))
	assert.Nil(t, store.Current())
	assert.False(t, svc.IsLoggedIn(ctx))
	require.Len(t, client.requests, 1)
	assert.Equal(t, "/api/auth/logout", client.requests[0].Path)
}

func TestAuthService_LogoutReportsLocalFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	storage := &brokenRemoveStorage{MemoryStorage: session.NewMemoryStorage()}
	store := session.NewStore(ctx, storage)
	require.NoError(t, store.SetIdentity(ctx, &models.User{ID: 1, Token: "tok"}))

	svc := NewAuthService(&requesterStub{doFn: respondWith(nil)}, store, nil)

	err := svc.Logout(ctx)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeLocal, appErr.Code)
	assert.Nil(t, svc.CurrentUser())
}

type brokenRemoveStorage struct {
	*session.MemoryStorage
}

func (s *brokenRemoveStorage) Remove(context.Context, string) error {
	return errors.New("read-only storage")
}
