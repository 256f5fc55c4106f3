package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsWrapSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		status   int
		code     string
	}{
		{name: "invalid input", err: InvalidInput("bad"), sentinel: ErrInvalidInput, status: http.StatusBadRequest, code: "INVALID_INPUT"},
		{name: "unauthorized", err: Unauthorized("no"), sentinel: ErrUnauthorized, status: http.StatusUnauthorized, code: "UNAUTHORIZED"},
		{name: "forbidden", err: Forbidden("no"), sentinel: ErrForbidden, status: http.StatusForbidden, code: "FORBIDDEN"},
		{name: "not found", err: NotFound("gone"), sentinel: ErrNotFound, status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "conflict", err: Conflict("dup"), sentinel: ErrConflict, status: http.StatusConflict, code: "CONFLICT"},
		{name: "email taken", err: EmailTaken("dup"), sentinel: ErrEmailTaken, status: http.StatusConflict, code: "EMAIL_TAKEN"},
		{name: "inactive account", err: InactiveAccount("off"), sentinel: ErrInactiveAccount, status: http.StatusForbidden, code: "ACCOUNT_INACTIVE"},
		{name: "session expired", err: SessionExpired("old"), sentinel: ErrSessionExpired, status: http.StatusUnauthorized, code: "SESSION_EXPIRED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.sentinel))

			var appErr *AppError
			require.ErrorAs(t, tt.err, &appErr)
			assert.Equal(t, tt.status, appErr.Status)
			assert.Equal(t, tt.code, appErr.Code)
		})
	}
}

func TestUnreachable(t *testing.T) {
	cause := errors.New("connection refused")
	err := Unreachable(cause)

	assert.True(t, errors.Is(err, ErrUnreachable))
	assert.True(t, errors.Is(err, cause))

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Zero(t, appErr.Status)
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("save profile: %w", EmailTaken("taken"))
	assert.True(t, errors.Is(err, ErrEmailTaken))

	var appErr *AppError
	assert.True(t, errors.As(err, &appErr))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "CONFLICT: dup", Conflict("dup").Error())

	err := &AppError{Code: "X", Message: "m", Err: errors.New("cause")}
	assert.Equal(t, "X: m: cause", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusConflict, HTTPStatus(EmailTaken("dup")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(fmt.Errorf("wrapped: %w", ErrNotFound)))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(ErrInactiveAccount))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("anything")))
}
