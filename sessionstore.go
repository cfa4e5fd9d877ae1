package authkit

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionStore owns the process-wide actor state. It is the single writer of
// session and profile state: the identity-provider subscription drives every
// session transition, and profile resolutions are applied only when they
// still belong to the current session generation.
//
// Readers never block. Snapshot returns the latest published ActorState and
// Subscribe delivers every subsequent snapshot.
type SessionStore struct {
	provider IdentityProvider
	resolver Resolver
	log      *zap.Logger
	metrics  *Metrics

	mu         sync.Mutex
	state      ActorState
	generation uint64
	subs       map[int]func(ActorState)
	nextSubID  int
	started    bool
	unsub      func()
	runCtx     context.Context
	cancel     context.CancelFunc
}

// StoreOption configures a SessionStore.
type StoreOption func(*SessionStore)

// WithStoreLogger sets the logger used for session transitions.
func WithStoreLogger(log *zap.Logger) StoreOption {
	return func(s *SessionStore) {
		if log != nil {
			s.log = log
		}
	}
}

// WithStoreMetrics sets the metrics bundle recording resolutions and dropped
// stale results.
func WithStoreMetrics(m *Metrics) StoreOption {
	return func(s *SessionStore) {
		s.metrics = m
	}
}

// NewSessionStore creates a SessionStore over the given provider and
// resolver. The store starts in the loading state; nothing is resolved until
// Start is called.
func NewSessionStore(provider IdentityProvider, resolver Resolver, opts ...StoreOption) *SessionStore {
	s := &SessionStore{
		provider: provider,
		resolver: resolver,
		log:      zap.NewNop(),
		state:    ActorState{Loading: true},
		subs:     make(map[int]func(ActorState)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start performs the cold-start session restore and subscribes to the live
// session-change stream. The two inputs are reconciled: if a live event
// arrives while the restore is in flight, the restored session is discarded
// in its favor.
//
// The given context bounds every profile resolution the store performs; it
// should live as long as the application.
func (s *SessionStore) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("authkit: session store already started")
	}
	s.started = true
	s.runCtx, s.cancel = context.WithCancel(ctx)
	gen0 := s.generation
	s.mu.Unlock()

	unsub := s.provider.OnSessionChange(func(ev SessionEvent) {
		s.apply(ev.Session, nil)
	})

	s.mu.Lock()
	if s.cancel == nil {
		// Closed while the subscription was being set up.
		s.mu.Unlock()
		unsub()
		return errors.New("authkit: session store closed")
	}
	s.unsub = unsub
	s.mu.Unlock()

	session, err := s.provider.CurrentSession(ctx)
	if err != nil {
		s.log.Warn("cold-start session restore failed", zap.Error(err))
		// Converge to unauthenticated rather than staying in loading forever.
		s.apply(nil, &gen0)
		return classify(err, ErrUnexpected, "could not restore session")
	}
	s.apply(session, &gen0)
	return nil
}

// Close releases the identity-provider subscription, the only resource the
// store owns. In-flight profile resolutions are logically cancelled: their
// results no longer apply.
func (s *SessionStore) Close() {
	s.mu.Lock()
	unsub := s.unsub
	s.unsub = nil
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if cancel != nil {
		cancel()
	}
}

// Snapshot returns the latest published actor state.
func (s *SessionStore) Snapshot() ActorState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers a callback invoked with every published ActorState,
// starting with the current one (delivered synchronously before Subscribe
// returns). The returned function removes the subscription.
func (s *SessionStore) Subscribe(fn func(ActorState)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	snap := s.state
	s.mu.Unlock()

	fn(snap)

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// apply is the single state-transition function for session events. expect,
// when non-nil, makes the transition conditional on the generation being
// unchanged; the cold-start restore uses this so it can never overwrite a
// live event that arrived first.
func (s *SessionStore) apply(session *Session, expect *uint64) {
	s.mu.Lock()
	if expect != nil && s.generation != *expect {
		s.mu.Unlock()
		s.log.Debug("restored session superseded by live event")
		return
	}

	s.generation++
	gen := s.generation
	s.state.Session = session

	if session == nil {
		s.state.Profile = nil
		s.state.Loading = false
		snap, subs := s.publishLocked()
		s.mu.Unlock()
		s.log.Info("session cleared", zap.Uint64("generation", gen))
		notify(subs, snap)
		return
	}

	s.state.Loading = true
	snap, subs := s.publishLocked()
	ctx := s.runCtx
	s.mu.Unlock()

	s.log.Info("session changed",
		zap.String("subject", session.Subject),
		zap.Uint64("generation", gen))
	notify(subs, snap)

	go s.resolveProfile(ctx, session.Subject, gen)
}

// resolveProfile fetches the profile for one session generation and applies
// the result only if that generation is still current. The generation check
// and the state write happen under the same lock; a result for a superseded
// session can never be attributed to the current actor.
func (s *SessionStore) resolveProfile(ctx context.Context, subjectID string, gen uint64) {
	start := time.Now()
	profile, err := s.resolver.Resolve(ctx, subjectID)
	s.metrics.observeResolution(err, time.Since(start))

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		s.metrics.staleResultDropped()
		s.log.Debug("dropped stale profile resolution",
			zap.String("subject", subjectID),
			zap.Uint64("generation", gen))
		return
	}

	switch {
	case err == nil:
		s.state.Profile = profile
	case errors.Is(err, ErrProfileNotFound):
		// Valid session, no authorization profile. Treated as
		// unauthenticated by the gate.
		s.state.Profile = nil
	default:
		// Store failure. Still converge so the caller is never stuck
		// loading; the profile stays absent until a later event retries.
		s.state.Profile = nil
	}
	s.state.Loading = false
	snap, subs := s.publishLocked()
	s.mu.Unlock()

	switch {
	case err == nil:
		s.log.Info("profile resolved",
			zap.String("subject", subjectID),
			zap.String("tenant", profile.TenantID.String()),
			zap.String("role", profile.Role.String()))
	case errors.Is(err, ErrProfileNotFound):
		s.log.Warn("session has no profile", zap.String("subject", subjectID))
	default:
		s.log.Error("profile resolution failed",
			zap.String("subject", subjectID),
			zap.Error(err))
	}
	notify(subs, snap)
}

// mergeProfile applies an already-persisted profile update to the local
// state. Only AuthActions.UpdateProfile calls this, after the write
// succeeded server-side. subjectID names the profile row that was written;
// if the published profile belongs to anyone else by now (the session moved
// on while the write was in flight), the merge is discarded, like any other
// result for a superseded subject.
func (s *SessionStore) mergeProfile(subjectID string, upd ProfileUpdate) {
	s.mu.Lock()
	if s.state.Profile == nil || s.state.Profile.ID != subjectID {
		s.mu.Unlock()
		s.log.Debug("dropped profile merge for superseded subject",
			zap.String("subject", subjectID))
		return
	}
	merged := *s.state.Profile
	if upd.FullName != nil {
		merged.FullName = *upd.FullName
	}
	if upd.Phone != nil {
		merged.Phone = *upd.Phone
	}
	merged.UpdatedAt = time.Now()
	s.state.Profile = &merged
	snap, subs := s.publishLocked()
	s.mu.Unlock()

	notify(subs, snap)
}

// publishLocked snapshots the state and subscriber set. Caller must hold
// s.mu.
func (s *SessionStore) publishLocked() (ActorState, []func(ActorState)) {
	subs := make([]func(ActorState), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return s.state, subs
}

func notify(subs []func(ActorState), snap ActorState) {
	for _, fn := range subs {
		fn(snap)
	}
}
