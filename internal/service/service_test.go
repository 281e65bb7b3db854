package service

import (
	"context"
	"encoding/json"
	"testing"

	"agora/internal/api"
	"agora/internal/models"
	"agora/internal/navigation"
	"agora/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requesterStub is a stub for Requester that records every request.
type requesterStub struct {
	doFn     func(context.Context, api.Request, any) error
	requests []api.Request
}

func (s *requesterStub) Do(ctx context.Context, req api.Request, out any) error {
	s.requests = append(s.requests, req)
	return s.doFn(ctx, req, out)
}

// respondWith returns a doFn that decodes v into the caller's out value.
func respondWith(v any) func(context.Context, api.Request, any) error {
	return func(_ context.Context, _ api.Request, out any) error {
		if out == nil {
			return nil
		}
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, out)
	}
}

func failWith(err error) func(context.Context, api.Request, any) error {
	return func(context.Context, api.Request, any) error { return err }
}

func newStore(t *testing.T) *session.Store {
	t.Helper()
	return session.NewStore(context.Background(), session.NewMemoryStorage())
}

func loggedInStore(t *testing.T) *session.Store {
	t.Helper()
	store := newStore(t)
	require.NoError(t, store.SetIdentity(context.Background(), &models.User{
		ID:       1,
		Username: "alice",
		Email:    "alice@example.com",
		Token:    "tok",
	}))
	return store
}

func assertAppError(t *testing.T, err error, code, message string) {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
	assert.Equal(t, message, appErr.Message)
}

func TestContentFailure(t *testing.T) {
	t.Parallel()

	router := navigation.NewRouter()
	err := contentFailure(&api.HTTPError{Status: 401, Detail: "Invalid token"}, router)
	assertAppError(t, err, models.CodeUnauthorized, MsgLoginToContinue)
	assert.Equal(t, navigation.RouteLogin, router.Current())

	router = navigation.NewRouter()
	err = contentFailure(&api.HTTPError{Status: 500, Text: "Internal Server Error"}, router)
	assertAppError(t, err, models.CodeRemote, "Something went wrong. Please try again later. (500 Internal Server Error)")
	assert.Empty(t, router.History())
}

func TestAuthFailure(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "[400] Username taken", authFailure(&api.HTTPError{Status: 400, Detail: "Username taken"}, MsgLoginFailed).Message)
	assert.Equal(t, "[0] connection refused", authFailure(&api.HTTPError{Text: "connection refused"}, MsgLoginFailed).Message)
	assert.Equal(t, "[502] Login failed", authFailure(&api.HTTPError{Status: 502}, MsgLoginFailed).Message)
}
