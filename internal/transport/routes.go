package transport

import "strings"

// Route paths of the HomeFix API, declared centrally so the allow-list and
// the teardown skip-list stop depending on ad hoc substring checks.
const (
	PathLogin          = "/api/users/login"
	PathRegister       = "/api/users/register"
	PathForgotPassword = "/api/users/forgot-password"
	PathResetPassword  = "/api/users/reset-password"
	PathChangePassword = "/api/users/change-password"

	// LoginRoute is the front-end route the interceptor redirects to on
	// session invalidation.
	LoginRoute = "/login"
)

// routeSet matches request paths by exact entry, by trailing-slash prefix,
// or by a prefix+suffix pair for parameterized paths such as
// /api/users/{id}/reset-password.
type routeSet struct {
	entries []string
	rules   []prefixSuffixRule
}

type prefixSuffixRule struct {
	prefix string
	suffix string
}

func (r routeSet) Match(path string) bool {
	for _, e := range r.entries {
		if strings.HasSuffix(e, "/") {
			if strings.HasPrefix(path, e) {
				return true
			}
		} else if path == e {
			return true
		}
	}
	for _, rule := range r.rules {
		if strings.HasPrefix(path, rule.prefix) && strings.HasSuffix(path, rule.suffix) {
			return true
		}
	}
	return false
}

// publicRoutes are reachable without a bearer token.
var publicRoutes = routeSet{
	entries: []string{
		PathLogin,
		PathRegister,
		PathForgotPassword,
		PathResetPassword,
	},
	rules: []prefixSuffixRule{
		{prefix: "/api/users/", suffix: "/reset-password"},
	},
}

// teardownExempt lists endpoints whose 401/403 responses are meaningful
// business outcomes (wrong old password, duplicate registration, spent reset
// token) rather than session failures; the interceptor must pass those
// through without clearing the session or redirecting.
var teardownExempt = routeSet{
	entries: []string{
		PathChangePassword,
		PathRegister,
		PathResetPassword,
	},
	rules: []prefixSuffixRule{
		{prefix: "/api/users/", suffix: "/reset-password"},
	},
}
