package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/pkg/errors"
)

// serverErrorBody mirrors the error payloads the HomeFix backend returns.
// Historical revisions used either {"message": "..."} or a bare string body.
type serverErrorBody struct {
	Message string `json:"message"`
}

// ReadErrorMessage consumes the body of a non-2xx response and extracts the
// server-provided message, falling back to the raw body text. The body is
// fully consumed and closed.
func ReadErrorMessage(resp *http.Response) string {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return ""
	}

	var body serverErrorBody
	if json.Unmarshal(bodyBytes, &body) == nil && body.Message != "" {
		return body.Message
	}
	return strings.TrimSpace(string(bodyBytes))
}

// ParseResponseError translates a non-2xx HTTP response into an AppError
// carrying the server detail. The caller should only invoke this when
// resp.StatusCode indicates an error; the body is consumed and closed.
func ParseResponseError(resp *http.Response) error {
	message := ReadErrorMessage(resp)

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		if message == "" {
			message = "check the submitted fields"
		}
		return apperrors.InvalidInput(message)
	case resp.StatusCode == http.StatusUnauthorized:
		return apperrors.Unauthorized(orDefault(message, "unauthorized"))
	case resp.StatusCode == http.StatusForbidden:
		return apperrors.Forbidden(orDefault(message, "forbidden"))
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NotFound(orDefault(message, "resource not found"))
	case resp.StatusCode == http.StatusConflict:
		return apperrors.Conflict(orDefault(message, "conflict"))
	case resp.StatusCode >= 500:
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, message)
	default:
		return &apperrors.AppError{
			Code:    "HTTP_ERROR",
			Message: orDefault(message, http.StatusText(resp.StatusCode)),
			Status:  resp.StatusCode,
		}
	}
}

// IsClientError reports whether the status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
