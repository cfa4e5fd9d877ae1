package authkit

import (
	"net/http"
	"net/url"
)

// DefaultSignInPath is where unauthenticated requests are redirected.
const DefaultSignInPath = "/auth"

// Middleware gates HTTP handlers on the current actor state.
//
// The three denial paths are deliberately different:
//
//   - still loading: 503 with Retry-After, a non-committal answer the client
//     retries once the state converges;
//   - unauthenticated: redirect to the sign-in path carrying the original URL
//     in the "from" query parameter, so navigation resumes after login;
//   - insufficient role: a terminal 403, never a redirect, because sending an
//     authenticated user back to sign-in would loop.
type Middleware struct {
	store      *SessionStore
	signInPath string
	metrics    *Metrics
}

// MiddlewareOption configures the Middleware.
type MiddlewareOption func(*Middleware)

// WithSignInPath sets the authentication entry point for redirects.
func WithSignInPath(path string) MiddlewareOption {
	return func(m *Middleware) {
		m.signInPath = path
	}
}

// WithGateMetrics records every gate decision the middleware makes.
func WithGateMetrics(metrics *Metrics) MiddlewareOption {
	return func(m *Middleware) {
		m.metrics = metrics
	}
}

// NewMiddleware creates a Middleware over the session store.
//
// Example:
//
//	mw := authkit.NewMiddleware(service.Store(),
//	    authkit.WithSignInPath("/login"),
//	)
//	mux.Handle("/reports", mw.RequireRole(authkit.RoleManager)(reportsHandler))
func NewMiddleware(store *SessionStore, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		store:      store,
		signInPath: DefaultSignInPath,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RequireAuth gates a handler on authentication alone.
func (m *Middleware) RequireAuth() func(http.Handler) http.Handler {
	return m.RequireRole(RoleNone)
}

// RequireRole gates a handler on the actor holding at least the given role.
func (m *Middleware) RequireRole(required Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap := m.store.Snapshot()
			decision := Decide(snap, required)
			m.metrics.observeDecision(decision)

			switch decision {
			case DecisionPending:
				w.Header().Set("Retry-After", "1")
				http.Error(w, "authentication pending", http.StatusServiceUnavailable)

			case DecisionDenyUnauthenticated:
				location := m.signInPath + "?from=" + url.QueryEscape(r.URL.RequestURI())
				http.Redirect(w, r, location, http.StatusSeeOther)

			case DecisionDenyInsufficientRole:
				http.Error(w, "Forbidden", http.StatusForbidden)

			case DecisionAllow:
				ctx := WithActor(r.Context(), snap.Profile)
				ctx = WithReturnTo(ctx, r.URL.RequestURI())
				next.ServeHTTP(w, r.WithContext(ctx))
			}
		})
	}
}
