package authkit

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MemoryProvider is a complete in-process IdentityProvider. It stores bcrypt
// credential hashes and issues opaque uuid session tokens. Suitable for
// tests, examples and single-node deployments; production systems typically
// plug in a hosted provider instead.
//
// Session-change callbacks are invoked synchronously on the goroutine that
// triggered the change.
type MemoryProvider struct {
	mu          sync.Mutex
	identities  map[string]*memoryIdentity // keyed by normalized email
	current     *Session
	subscribers map[int]func(SessionEvent)
	nextSubID   int
	sessionTTL  time.Duration
	now         func() time.Time
}

type memoryIdentity struct {
	subjectID    string
	email        string
	passwordHash []byte
}

// MemoryProviderOption configures a MemoryProvider.
type MemoryProviderOption func(*MemoryProvider)

// WithSessionTTL sets the lifetime of issued sessions. Zero means sessions
// never expire.
func WithSessionTTL(ttl time.Duration) MemoryProviderOption {
	return func(p *MemoryProvider) {
		p.sessionTTL = ttl
	}
}

// withClock overrides the provider clock. Test hook.
func withClock(now func() time.Time) MemoryProviderOption {
	return func(p *MemoryProvider) {
		p.now = now
	}
}

// NewMemoryProvider creates an empty in-process identity provider.
func NewMemoryProvider(opts ...MemoryProviderOption) *MemoryProvider {
	p := &MemoryProvider{
		identities:  make(map[string]*memoryIdentity),
		subscribers: make(map[int]func(SessionEvent)),
		sessionTTL:  24 * time.Hour,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CurrentSession returns the live session, or nil when none survives.
// An expired session is discarded and reported as absent.
func (p *MemoryProvider) CurrentSession(ctx context.Context) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil && p.current.Expired(p.now()) {
		p.current = nil
	}
	if p.current == nil {
		return nil, nil
	}
	s := *p.current
	return &s, nil
}

// OnSessionChange registers a session-change callback and returns its
// unsubscribe function.
func (p *MemoryProvider) OnSessionChange(fn func(SessionEvent)) func() {
	p.mu.Lock()
	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subscribers, id)
		p.mu.Unlock()
	}
}

// SignInWithPassword verifies the credentials and issues a new session.
func (p *MemoryProvider) SignInWithPassword(ctx context.Context, creds Credentials) (*Session, error) {
	p.mu.Lock()
	ident, ok := p.identities[normalizeEmail(creds.Email)]
	p.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(ident.passwordHash, []byte(creds.Password)) != nil {
		return nil, NewError(ErrProviderRejected, "invalid email or password")
	}

	now := p.now()
	session := &Session{
		Token:    uuid.NewString(),
		Subject:  ident.subjectID,
		IssuedAt: now,
	}
	if p.sessionTTL > 0 {
		session.ExpiresAt = now.Add(p.sessionTTL)
	}

	p.mu.Lock()
	p.current = session
	subs := p.snapshotSubscribers()
	p.mu.Unlock()

	emit := *session
	for _, fn := range subs {
		fn(SessionEvent{Session: &emit})
	}
	return session, nil
}

// SignUp provisions a new identity. No session is established.
func (p *MemoryProvider) SignUp(ctx context.Context, creds Credentials) (string, error) {
	email := normalizeEmail(creds.Email)
	if email == "" || creds.Password == "" {
		return "", NewError(ErrProviderRejected, "email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", NewError(ErrUnexpected, "could not hash password")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.identities[email]; exists {
		return "", NewError(ErrProviderRejected, "an account with this email already exists")
	}

	ident := &memoryIdentity{
		subjectID:    uuid.NewString(),
		email:        email,
		passwordHash: hash,
	}
	p.identities[email] = ident
	return ident.subjectID, nil
}

// SignOut invalidates the current session and emits an absent-session event.
// Signing out without a live session is a provider rejection.
func (p *MemoryProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	if p.current == nil {
		p.mu.Unlock()
		return NewError(ErrProviderRejected, "no active session")
	}
	p.current = nil
	subs := p.snapshotSubscribers()
	p.mu.Unlock()

	for _, fn := range subs {
		fn(SessionEvent{Session: nil})
	}
	return nil
}

// RemoveIdentity deletes a provisioned identity. Implements IdentityRemover
// for sign-up compensation.
func (p *MemoryProvider) RemoveIdentity(ctx context.Context, subjectID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for email, ident := range p.identities {
		if ident.subjectID == subjectID {
			delete(p.identities, email)
			return nil
		}
	}
	return NewError(ErrProviderRejected, "unknown identity").WithSubject(subjectID)
}

// ExpireCurrentSession forcibly ends the live session and emits an
// absent-session event, simulating provider-side expiry.
func (p *MemoryProvider) ExpireCurrentSession() {
	p.mu.Lock()
	if p.current == nil {
		p.mu.Unlock()
		return
	}
	p.current = nil
	subs := p.snapshotSubscribers()
	p.mu.Unlock()

	for _, fn := range subs {
		fn(SessionEvent{Session: nil})
	}
}

// snapshotSubscribers copies the callback set. Caller must hold p.mu.
func (p *MemoryProvider) snapshotSubscribers() []func(SessionEvent) {
	subs := make([]func(SessionEvent), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
