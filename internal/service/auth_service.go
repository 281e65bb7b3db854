package service

import (
	"context"
	"log/slog"
	"net/http"

	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/session"
	"agora/internal/validation"
)

// AuthService logs users in and out and registers new accounts.
type AuthService struct {
	client Requester
	store  *session.Store
	logger *slog.Logger
}

// RegisterInput is the raw registration form.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

func NewAuthService(client Requester, store *session.Store, logger *slog.Logger) *AuthService {
	return &AuthService{
		client: client,
		store:  store,
		logger: observability.Or(logger).With(slog.String("service", "auth")),
	}
}

// Login exchanges credentials for a token and makes the result the current
// identity.
func (s *AuthService) Login(ctx context.Context, loginID, password string) (*models.User, error) {
	var resp models.LoginResponse
	err := s.client.Do(ctx, apiRequest(http.MethodPost, "/api/auth/login", models.LoginRequest{
		Username: loginID,
		Password: password,
	}), &resp)
	if err != nil {
		s.logger.WarnContext(ctx, "login failed", slog.String("error", err.Error()))
		return nil, authFailure(err, MsgLoginFailed)
	}

	user := resp.Identity()
	if err := s.store.SetIdentity(ctx, user); err != nil {
		return nil, models.NewLocalError(MsgSessionSaveFailed, err)
	}
	s.logger.InfoContext(ctx, "user logged in", slog.Int64("user_id", user.ID))
	return user.Clone(), nil
}

// Register validates the form locally and creates the account. It does not
// log the new user in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if msg := validation.ValidateRegistration(validation.Registration{
		Username:        in.Username,
		Email:           in.Email,
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
	}); msg != "" {
		return nil, models.NewValidationError(msg)
	}

	var user models.User
	err := s.client.Do(ctx, apiRequest(http.MethodPost, "/api/auth/register", models.RegisterRequest{
		Username: in.Username,
		Password: in.Password,
		Email:    in.Email,
	}), &user)
	if err != nil {
		s.logger.WarnContext(ctx, "registration failed", slog.String("error", err.Error()))
		return nil, authFailure(err, MsgRegistrationFailed)
	}

	user.Password = ""
	s.logger.InfoContext(ctx, "user registered", slog.Int64("user_id", user.ID))
	return &user, nil
}

// Logout ends the server session and always clears the local identity. A
// failed remote call is only logged; only a local storage failure is
// returned.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.client.Do(ctx, apiRequest(http.MethodPost, "/api/auth/logout", struct{}{}), nil); err != nil {
		s.logger.WarnContext(ctx, "logout request failed", slog.String("error", err.Error()))
	}

	if err := s.store.Clear(ctx); err != nil {
		return models.NewLocalError(MsgSessionRemoveFailed, err)
	}
	return nil
}

// IsLoggedIn reports whether a usable session is stored.
func (s *AuthService) IsLoggedIn(ctx context.Context) bool {
	return s.store.IsLoggedIn(ctx)
}

// CurrentUser returns the current identity or nil.
func (s *AuthService) CurrentUser() *models.User {
	return s.store.Current()
}
