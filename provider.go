package authkit

import "context"

// Credentials are the identity-provider credentials for password flows.
type Credentials struct {
	Email    string
	Password string
}

// IdentityProvider is the external collaborator that owns session lifecycle.
// AuthKit observes it: the SessionStore restores the persisted session at
// cold start and consumes the live change stream; AuthActions delegate
// sign-in, sign-up and sign-out to it.
//
// Providers must invoke session-change callbacks for every login, logout and
// expiry that happens after subscription. The unsubscribe function returned
// by OnSessionChange releases the subscription and must be safe to call once.
type IdentityProvider interface {
	// CurrentSession returns the already-persisted session, or nil when no
	// session survives a cold start.
	CurrentSession(ctx context.Context) (*Session, error)

	// OnSessionChange registers a callback for session-change events and
	// returns an unsubscribe function.
	OnSessionChange(fn func(SessionEvent)) (unsubscribe func())

	// SignInWithPassword authenticates the credentials and establishes a new
	// current session. The new session is also delivered through the change
	// stream.
	SignInWithPassword(ctx context.Context, creds Credentials) (*Session, error)

	// SignUp provisions a new identity and returns its subject identifier.
	// No session is established and no change event is emitted.
	SignUp(ctx context.Context, creds Credentials) (subjectID string, err error)

	// SignOut invalidates the current session. On success the change stream
	// delivers an absent-session event; on failure the session stays live.
	SignOut(ctx context.Context) error
}

// IdentityRemover is optionally implemented by providers that can remove a
// freshly provisioned identity. AuthKit uses it to compensate when profile
// provisioning fails after SignUp succeeded, keeping sign-up atomic from the
// caller's perspective.
type IdentityRemover interface {
	RemoveIdentity(ctx context.Context, subjectID string) error
}

// Resolver fetches the authorization profile for a session subject.
// Implemented by ProfileResolver against the data store; test code may
// substitute its own.
type Resolver interface {
	// Resolve returns the profile keyed by subjectID. A valid session with no
	// profile yields ErrProfileNotFound; infrastructure failures yield
	// ErrStoreUnavailable. The two are never conflated.
	Resolve(ctx context.Context, subjectID string) (*Profile, error)
}
