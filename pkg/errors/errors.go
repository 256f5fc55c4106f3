package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the outcomes the client distinguishes. Call sites
// branch on these with errors.Is; the structured detail travels in AppError.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrInternal        = errors.New("internal error")
	ErrEmailTaken      = errors.New("email already registered")
	ErrInactiveAccount = errors.New("account inactive")
	ErrSessionExpired  = errors.New("session expired")
	ErrUnreachable     = errors.New("server unreachable")
	ErrSaveInFlight    = errors.New("save already in flight")
)

// AppError is a structured error with an HTTP status and a machine code.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// NotFound creates a 404 error.
func NotFound(message string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: message,
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// Conflict creates a 409 error.
func Conflict(message string) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
		Status:  http.StatusConflict,
		Err:     ErrConflict,
	}
}

// EmailTaken creates a 409 error for a duplicate registration email.
func EmailTaken(message string) *AppError {
	return &AppError{
		Code:    "EMAIL_TAKEN",
		Message: message,
		Status:  http.StatusConflict,
		Err:     ErrEmailTaken,
	}
}

// InactiveAccount creates a 403 error for a deactivated account.
func InactiveAccount(message string) *AppError {
	return &AppError{
		Code:    "ACCOUNT_INACTIVE",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrInactiveAccount,
	}
}

// SessionExpired creates a 401 error for an expired or invalidated session.
func SessionExpired(message string) *AppError {
	return &AppError{
		Code:    "SESSION_EXPIRED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrSessionExpired,
	}
}

// Unreachable wraps a transport-level failure where no response arrived.
func Unreachable(err error) *AppError {
	return &AppError{
		Code:    "UNREACHABLE",
		Message: "could not reach the server",
		Status:  0,
		Err:     fmt.Errorf("%w: %w", ErrUnreachable, err),
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code associated with the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrInactiveAccount):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict), errors.Is(err, ErrEmailTaken):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
