// Package service holds the client-side auth, content and message services
// that front the forum API.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"agora/internal/api"
	"agora/internal/models"
	"agora/internal/navigation"
)

// Requester sends a single API request. *api.Client implements it.
type Requester interface {
	Do(ctx context.Context, req api.Request, out any) error
}

// User-facing messages.
const (
	MsgLoginFailed         = "Login failed"
	MsgRegistrationFailed  = "Registration failed"
	MsgLoginToComment      = "Please login to comment."
	MsgLoginToCreatePost   = "Please login to create a post."
	MsgLoginToContinue     = "Please login to perform this action."
	MsgTryAgainLater       = "Something went wrong. Please try again later."
	MsgLoadMessagesFailed  = "Failed to load messages, please try again"
	MsgReplyFailed         = "Failed to send reply, please try again"
	MsgNotLoggedIn         = "User is not logged in"
	MsgSessionSaveFailed   = "Failed to save session"
	MsgSessionRemoveFailed = "Failed to clear session"
)

// statusDetail splits err into the HTTP status and the best description
// available, falling back to def when there is none.
func statusDetail(err error, def string) (int, string) {
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		if d := httpErr.Describe(); d != "" {
			return httpErr.Status, d
		}
		return httpErr.Status, def
	}
	if err != nil && err.Error() != "" {
		return 0, err.Error()
	}
	return 0, def
}

// authFailure formats a failed auth call as "[status] detail".
func authFailure(err error, def string) *models.AppError {
	status, detail := statusDetail(err, def)
	return models.NewRemoteError(fmt.Sprintf("[%d] %s", status, detail), err)
}

// contentFailure maps a failed content call. A 401 sends the user to the
// login route; anything else is reported as a generic failure with the
// status and detail kept in the text.
func contentFailure(err error, nav navigation.Navigator) *models.AppError {
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) && httpErr.Status == http.StatusUnauthorized {
		nav.Navigate(navigation.RouteLogin)
		return models.NewUnauthorizedError(MsgLoginToContinue, err)
	}
	status, detail := statusDetail(err, http.StatusText(http.StatusInternalServerError))
	return models.NewRemoteError(fmt.Sprintf("%s (%d %s)", MsgTryAgainLater, status, detail), err)
}

func apiRequest(method, path string, body any) api.Request {
	return api.Request{Method: method, Path: path, Route: path, Body: body}
}
