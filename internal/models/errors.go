package models

import (
	"errors"
	"fmt"
)

// Error codes carried by AppError.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeAuthRequired = "AUTH_REQUIRED"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeRemote       = "REMOTE_ERROR"
	CodeLocal        = "LOCAL_ERROR"
)

// ErrorResponse is the JSON error body produced by the API.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Detail returns the most specific human readable text in the body.
func (r *ErrorResponse) Detail() string {
	if r.Message != "" {
		return r.Message
	}
	return r.Error
}

// AppError is the single error kind returned by the client services. Message
// is always safe to show to the user.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError reports input rejected before any request was made.
func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewAuthRequiredError reports an operation attempted without a session.
func NewAuthRequiredError(message string) *AppError {
	return &AppError{
		Code:    CodeAuthRequired,
		Message: message,
	}
}

// NewUnauthorizedError reports a request the server rejected with 401.
func NewUnauthorizedError(message string, err error) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
		Err:     err,
	}
}

// NewRemoteError reports any other failed request.
func NewRemoteError(message string, err error) *AppError {
	return &AppError{
		Code:    CodeRemote,
		Message: message,
		Err:     err,
	}
}

// NewLocalError wraps a failure of local state such as session storage.
func NewLocalError(message string, err error) *AppError {
	return &AppError{
		Code:    CodeLocal,
		Message: fmt.Sprintf("%s: %v", message, err),
		Err:     err,
	}
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
