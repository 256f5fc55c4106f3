// Package transport implements the cross-cutting auth pipeline around every
// HTTP call: bearer injection on the way out, session teardown and
// redirect-based recovery on 401/403 on the way in. Individual call sites
// never duplicate this logic.
package transport

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// TokenSource yields the persisted bearer token, if any.
type TokenSource interface {
	Token() (string, bool)
}

// SessionClearer tears down the local session (token and user record).
type SessionClearer interface {
	Clear() error
}

// Navigator abstracts the front end's location: where the user currently is
// and how to send them somewhere else. The interceptor uses it to bounce an
// invalidated session to the login route with an explanatory reason.
type Navigator interface {
	CurrentPath() string
	Navigate(path string)
}

// Reason query values appended to the login route on forced navigation.
const (
	ReasonInactive = "inactive"
	ReasonExpired  = "expired"
)

// AuthTransport is an http.RoundTripper wrapping the base transport.
//
// Outbound: requests to non-public paths get the persisted bearer token
// attached when one exists; a missing token is not an error here, the call
// proceeds unauthenticated and the server rejects it. Every request gets a
// correlation ID.
//
// Inbound: a 401/403 on a path not in the teardown skip-list clears the
// local session and navigates to the login route, unless the user is
// already there. The response always passes through to the caller, which
// handles its own error presentation.
type AuthTransport struct {
	Base     http.RoundTripper
	Tokens   TokenSource
	Sessions SessionClearer
	Nav      Navigator
	Logger   *slog.Logger
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	if out.Header.Get("X-Correlation-ID") == "" {
		out.Header.Set("X-Correlation-ID", uuid.NewString())
	}

	if !publicRoutes.Match(out.URL.Path) {
		if token, ok := t.Tokens.Token(); ok {
			out.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := t.Base.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		t.handleAuthFailure(out, resp)
	}
	return resp, nil
}

// handleAuthFailure classifies the rejection, tears down the session and
// triggers recovery navigation. It never fails on its own account and is
// idempotent across repeated 401s.
func (t *AuthTransport) handleAuthFailure(req *http.Request, resp *http.Response) {
	if teardownExempt.Match(req.URL.Path) {
		return
	}

	reason := ReasonExpired
	if IsInactiveMessage(restoreBody(resp)) {
		reason = ReasonInactive
	}

	if err := t.Sessions.Clear(); err != nil {
		t.Logger.Warn("failed to clear session after auth rejection",
			slog.String("error", err.Error()),
		)
	}

	t.Logger.Info("session invalidated by server",
		slog.Int("status", resp.StatusCode),
		slog.String("path", req.URL.Path),
		slog.String("reason", reason),
	)

	if t.Nav == nil {
		return
	}
	// Avoid redirect loops when the rejection happens on the login screen.
	if strings.HasPrefix(t.Nav.CurrentPath(), LoginRoute) {
		return
	}
	t.Nav.Navigate(LoginRoute + "?m=" + reason)
}

// restoreBody reads the response body for inspection and replaces it so the
// caller still sees the full payload.
func restoreBody(resp *http.Response) string {
	if resp.Body == nil {
		return ""
	}
	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	_ = resp.Body.Close()
	if err != nil {
		resp.Body = io.NopCloser(bytes.NewReader(nil))
		return ""
	}
	resp.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	return string(bodyBytes)
}

// IsInactiveMessage distinguishes an inactive-account rejection from a
// generic expired/unauthorized one by the server's message text. Both the
// English and Spanish spellings the backend has used are covered.
func IsInactiveMessage(body string) bool {
	lower := strings.ToLower(body)
	return strings.Contains(lower, "inactiv") || strings.Contains(lower, "deshabilitad")
}
