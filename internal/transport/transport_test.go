package transport

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/pkg/logger"
)

type fakeTokens struct {
	token string
}

func (f *fakeTokens) Token() (string, bool) {
	return f.token, f.token != ""
}

type fakeSessions struct {
	cleared int
}

func (f *fakeSessions) Clear() error {
	f.cleared++
	return nil
}

type fakeNav struct {
	path      string
	navigated []string
}

func (f *fakeNav) CurrentPath() string { return f.path }

func (f *fakeNav) Navigate(path string) {
	f.navigated = append(f.navigated, path)
	f.path = path
}

type fixture struct {
	transport *AuthTransport
	tokens    *fakeTokens
	sessions  *fakeSessions
	nav       *fakeNav
	server    *httptest.Server
}

func newFixture(t *testing.T, handler http.HandlerFunc) *fixture {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	f := &fixture{
		tokens:   &fakeTokens{token: "tok-123"},
		sessions: &fakeSessions{},
		nav:      &fakeNav{path: "/perfil"},
		server:   server,
	}
	f.transport = &AuthTransport{
		Base:     http.DefaultTransport,
		Tokens:   f.tokens,
		Sessions: f.sessions,
		Nav:      f.nav,
		Logger:   logger.NewWithWriter("transport-test", "error", io.Discard),
	}
	return f
}

func (f *fixture) get(t *testing.T, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, f.server.URL+path, nil)
	require.NoError(t, err)
	resp, err := f.transport.RoundTrip(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestBearerAttachedOnProtectedPath(t *testing.T) {
	var gotAuth string
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	})

	f.get(t, "/api/users/42")
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestNoBearerOnPublicPaths(t *testing.T) {
	var gotAuth string
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	})

	for _, path := range []string{
		PathLogin,
		PathRegister,
		PathForgotPassword,
		PathResetPassword,
		"/api/users/42/reset-password",
	} {
		gotAuth = "unset"
		f.get(t, path)
		assert.Empty(t, gotAuth, "path %s should not carry a bearer token", path)
	}
}

func TestChangePasswordIsNotPublic(t *testing.T) {
	var gotAuth string
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	})

	f.get(t, PathChangePassword)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestMissingTokenProceedsUnauthenticated(t *testing.T) {
	var gotAuth string
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	})
	f.tokens.token = ""

	resp := f.get(t, "/api/users/42")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, gotAuth)
}

func TestCorrelationIDAttached(t *testing.T) {
	var gotID string
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Correlation-ID")
		w.WriteHeader(http.StatusOK)
	})

	f.get(t, "/api/users/42")
	assert.NotEmpty(t, gotID)
}

func TestExpiredSessionClearsAndRedirects(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"token expired"}`))
	})

	resp := f.get(t, "/api/users/42")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 1, f.sessions.cleared)
	require.Len(t, f.nav.navigated, 1)
	assert.Equal(t, "/login?m=expired", f.nav.navigated[0])

	// The caller still sees the full body after classification.
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "token expired")
}

func TestInactiveAccountRedirectReason(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "english wording", body: `{"message":"account inactive"}`},
		{name: "spanish wording", body: `{"message":"usuario deshabilitado"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(tt.body))
			})

			f.get(t, "/api/users/42")
			require.Len(t, f.nav.navigated, 1)
			assert.Equal(t, "/login?m=inactive", f.nav.navigated[0])
		})
	}
}

func TestNoRedirectWhenAlreadyOnLogin(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	f.nav.path = "/login?m=expired"

	f.get(t, "/api/users/42")

	// The session is still torn down, only the navigation is suppressed.
	assert.Equal(t, 1, f.sessions.cleared)
	assert.Empty(t, f.nav.navigated)
}

func TestTeardownExemptPathsPassThrough(t *testing.T) {
	for _, path := range []string{
		PathChangePassword,
		PathRegister,
		PathResetPassword,
		"/api/users/42/reset-password",
	} {
		t.Run(path, func(t *testing.T) {
			f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			})

			resp := f.get(t, path)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Zero(t, f.sessions.cleared)
			assert.Empty(t, f.nav.navigated)
		})
	}
}

func TestNilNavigatorIsSafe(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	f.transport.Nav = nil

	resp := f.get(t, "/api/users/42")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 1, f.sessions.cleared)
}

func TestRouteSetMatch(t *testing.T) {
	set := routeSet{
		entries: []string{"/exact", "/prefix/"},
		rules:   []prefixSuffixRule{{prefix: "/api/users/", suffix: "/reset-password"}},
	}

	assert.True(t, set.Match("/exact"))
	assert.False(t, set.Match("/exact/sub"))
	assert.True(t, set.Match("/prefix/anything"))
	assert.True(t, set.Match("/api/users/42/reset-password"))
	assert.False(t, set.Match("/api/users/42"))
	assert.False(t, set.Match("/other"))
}

func TestPublicRoutesDoNotSwallowUserRoutes(t *testing.T) {
	// The allow-list must not treat every /api/users/ path as public.
	assert.False(t, publicRoutes.Match("/api/users/42"))
	assert.False(t, publicRoutes.Match("/api/users"))
	assert.True(t, publicRoutes.Match(PathLogin))
}

func TestIsInactiveMessage(t *testing.T) {
	assert.True(t, IsInactiveMessage("Usuario INACTIVO"))
	assert.True(t, IsInactiveMessage("cuenta deshabilitada"))
	assert.False(t, IsInactiveMessage("token expired"))
	assert.False(t, IsInactiveMessage(""))
}
