package authkit

import (
	"context"

	"github.com/fernandezvara/dbkit"
	"go.uber.org/zap"
)

// Service wires the authorization subsystem together: the data store, the
// identity provider, the session store and the tenant-scoped entity
// operations.
//
// Error handling: failures cross the service boundary as values. Auth-action
// failures carry a user-displayable message (see UserMessage); access
// decisions are encoded as Decision states, never as panics. Cross-tenant
// and insufficient-role rejections are fatal to the specific operation only;
// the actor stays in its current authenticated state.
type Service struct {
	db       dbkit.IDB
	provider IdentityProvider
	resolver *ProfileResolver
	store    *SessionStore
	log      *zap.Logger
	metrics  *Metrics
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the structured logger. Defaults to a nop logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics sets the metrics bundle shared by the session store, the gate
// and tenant scoping.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New creates an AuthKit service.
//
// Example:
//
//	db, _ := dbkit.New(dbkit.Config{URL: "postgres://..."})
//	provider := authkit.NewMemoryProvider()
//	service := authkit.New(db, provider, authkit.WithLogger(logger))
func New(db dbkit.IDB, provider IdentityProvider, opts ...Option) *Service {
	s := &Service{
		db:       db,
		provider: provider,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resolver = NewProfileResolver(db)
	s.store = NewSessionStore(provider, s.resolver,
		WithStoreLogger(s.log),
		WithStoreMetrics(s.metrics))
	return s
}

// Store returns the session store.
func (s *Service) Store() *SessionStore {
	return s.store
}

// Start begins watching the identity provider: cold-start restore plus live
// subscription. See SessionStore.Start.
func (s *Service) Start(ctx context.Context) error {
	return s.store.Start(ctx)
}

// Close releases the identity-provider subscription.
func (s *Service) Close() {
	s.store.Close()
}

// ScopeFor builds the tenant scope for an acting profile. Every entity
// operation on the service routes through this.
func (s *Service) ScopeFor(actor *Profile) (*TenantScope, error) {
	return newTenantScope(s.db, actor, s.metrics)
}

// Gate evaluates entry into a view requiring the given role against the
// current actor state. Pass RoleNone for authentication-only views.
func (s *Service) Gate(required Role) Decision {
	d := Decide(s.store.Snapshot(), required)
	s.metrics.observeDecision(d)
	return d
}

// ============================================================================
// AUTH EVENT LOG
// ============================================================================

// recordAuthEvent persists an authentication event, filling request metadata
// from context. Recording failures are logged, never propagated: the audit
// trail must not take down the auth path.
func (s *Service) recordAuthEvent(ctx context.Context, event *AuthEvent) {
	meta := GetRequestMeta(ctx)
	event.IPAddress = meta.IPAddress
	event.UserAgent = meta.UserAgent
	event.RequestID = meta.RequestID

	result, err := s.db.NewInsert().Model(event).Exec(ctx)
	if err := dbkit.WithErr(result, err, "RecordAuthEvent").Err(); err != nil {
		s.log.Warn("could not record auth event",
			zap.String("action", string(event.Action)),
			zap.Error(err))
	}
}

// GetAuthEvents retrieves authentication events with optional filters,
// newest first.
func (s *Service) GetAuthEvents(ctx context.Context, filter AuthEventFilter) ([]AuthEvent, error) {
	var events []AuthEvent
	q := s.db.NewSelect().Model(&events)
	if filter.SubjectID != "" {
		q = q.Where("subject_id = ?", filter.SubjectID)
	}
	if filter.Tenant != "" {
		q = q.Where("tenant_id = ?", filter.Tenant)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if !filter.Since.IsZero() {
		q = q.Where("timestamp >= ?", filter.Since)
	}
	if !filter.Until.IsZero() {
		q = q.Where("timestamp <= ?", filter.Until)
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 100
	}
	q = q.Limit(limit)
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	q = q.Order("timestamp DESC")
	if err := dbkit.WithErr1(q.Scan(ctx), "GetAuthEvents").Err(); err != nil {
		return nil, NewError(ErrStoreUnavailable, "could not load auth events")
	}
	return events, nil
}
