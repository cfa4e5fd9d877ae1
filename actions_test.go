package authkit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUpdateProfileRequiresActor tests the unauthenticated guard without a
// database.
func TestUpdateProfileRequiresActor(t *testing.T) {
	service := New(nil, NewMemoryProvider())

	name := "Nobody"
	err := service.UpdateProfile(context.Background(), ProfileUpdate{FullName: &name})
	assert.True(t, IsUnauthenticated(err))
}

// TestSignUpAndSignInFlow tests the full provisioning and authentication
// round trip: sign-up creates identity plus profile, sign-in converges the
// session store onto the resolved actor.
func TestSignUpAndSignInFlow(t *testing.T) {
	if !RequireDatabase(t) {
		return
	}

	ctx := context.Background()
	service, _, err := SetupTestDatabase(ctx)
	require.NoError(t, err)

	require.NoError(t, service.Start(ctx))
	defer service.Close()

	tenant := UniqueTenant("signup")
	email := string(tenant) + "@example.com"
	require.NoError(t, service.SignUp(ctx, email, "secret", "Maria Oliveira", tenant, RoleConsultant))

	// Sign-up establishes no session.
	assert.Equal(t, DecisionDenyUnauthenticated, service.Gate(RoleNone))

	require.NoError(t, service.SignIn(ctx, email, "secret"))

	require.Eventually(t, func() bool {
		s := service.Store().Snapshot()
		return !s.Loading && s.Authenticated()
	}, 5*time.Second, 10*time.Millisecond)

	state := service.Store().Snapshot()
	assert.Equal(t, "Maria Oliveira", state.Profile.FullName)
	assert.Equal(t, tenant, state.Profile.TenantID)
	assert.Equal(t, RoleConsultant, state.Profile.Role)
	assert.Equal(t, DecisionAllow, service.Gate(RoleConsultant))
	assert.Equal(t, DecisionDenyInsufficientRole, service.Gate(RoleAdmin))

	events, err := service.GetAuthEvents(ctx, NewAuthEventFilter().WithSubject(state.Profile.ID))
	require.NoError(t, err)
	require.Len(t, events, 2, "signed_up then signed_in")
	assert.Equal(t, AuthActionSignedIn, events[0].Action, "newest first")
	assert.Equal(t, AuthActionSignedUp, events[1].Action)
}

// TestSignUpValidation tests the role and tenant guards.
func TestSignUpValidation(t *testing.T) {
	service := New(nil, NewMemoryProvider())
	ctx := context.Background()

	err := service.SignUp(ctx, "x@example.com", "secret", "X", "tenant", Role("superuser"))
	assert.Error(t, err)

	err = service.SignUp(ctx, "x@example.com", "secret", "X", "", RoleOperator)
	assert.Error(t, err)
}

// TestSignUpCompensatesFailedProfile tests atomicity: when the profile write
// fails after the identity was provisioned, the identity is removed again so
// the email is not left orphaned.
func TestSignUpCompensatesFailedProfile(t *testing.T) {
	// No database behind the service, so the profile write always fails.
	provider := NewMemoryProvider()
	service := New(nil, provider)
	ctx := context.Background()

	err := service.SignUp(ctx, "ana@example.com", "secret", "Ana", "tenant-a", RoleOperator)
	assert.True(t, IsStoreUnavailable(err))

	// The identity was rolled back: retrying fails on the store again instead
	// of being rejected as a duplicate email.
	err = service.SignUp(ctx, "ana@example.com", "secret", "Ana", "tenant-a", RoleOperator)
	assert.True(t, IsStoreUnavailable(err))
	assert.False(t, IsProviderRejected(err))

	// Direct provisioning through the provider still works for this email,
	// proving no identity lingers.
	_, err = provider.SignUp(ctx, Credentials{Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)
}

// TestSignUpDuplicateEmailRejected tests that a taken email is a provider
// rejection before anything is written.
func TestSignUpDuplicateEmailRejected(t *testing.T) {
	if !RequireDatabase(t) {
		return
	}

	ctx := context.Background()
	service, _, err := SetupTestDatabase(ctx)
	require.NoError(t, err)

	tenant := UniqueTenant("dup-email")
	email := string(tenant) + "@example.com"
	require.NoError(t, service.SignUp(ctx, email, "secret", "First", tenant, RoleOperator))

	err = service.SignUp(ctx, email, "other", "Second", tenant, RoleOperator)
	assert.True(t, IsProviderRejected(err))
}

// TestSignInRejectionIsRecorded tests that a failed sign-in surfaces a
// displayable error and lands in the audit log.
func TestSignInRejectionIsRecorded(t *testing.T) {
	if !RequireDatabase(t) {
		return
	}

	ctx := context.Background()
	service, _, err := SetupTestDatabase(ctx)
	require.NoError(t, err)

	err = service.SignIn(ctx, "ghost@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, IsProviderRejected(err))
	assert.NotEmpty(t, UserMessage(err))

	events, err := service.GetAuthEvents(ctx, NewAuthEventFilter().WithAction(AuthActionSignInFailed).WithPagination(1, 0))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, AuthActionSignInFailed, events[0].Action)
}

// rejectSignOutProvider refuses every sign-out without emitting a session
// event, simulating a provider outage on that endpoint.
type rejectSignOutProvider struct {
	*MemoryProvider
}

func (p *rejectSignOutProvider) SignOut(ctx context.Context) error {
	return NewError(ErrProviderRejected, "sign-out rejected upstream")
}

// TestSignOutKeepsStateOnFailure tests that a rejected sign-out leaves the
// actor signed in. Local state is only cleared by the provider's event
// stream, never speculatively.
func TestSignOutKeepsStateOnFailure(t *testing.T) {
	if !RequireDatabase(t) {
		return
	}

	ctx := context.Background()
	base, _, err := SetupTestDatabase(ctx)
	require.NoError(t, err)

	provider := &rejectSignOutProvider{MemoryProvider: NewMemoryProvider()}
	service := New(base.db, provider)
	require.NoError(t, service.Start(ctx))
	defer service.Close()

	tenant := UniqueTenant("signout")
	email := string(tenant) + "@example.com"
	require.NoError(t, service.SignUp(ctx, email, "secret", "Ana", tenant, RoleOwner))
	require.NoError(t, service.SignIn(ctx, email, "secret"))

	require.Eventually(t, func() bool {
		s := service.Store().Snapshot()
		return !s.Loading && s.Authenticated()
	}, 5*time.Second, 10*time.Millisecond)

	err = service.SignOut(ctx)
	assert.True(t, IsProviderRejected(err))

	// The snapshot was not cleared speculatively.
	time.Sleep(50 * time.Millisecond)
	assert.True(t, service.Store().Snapshot().Authenticated())
}

// TestSignOutConvergesService tests the happy sign-out path through the
// service.
func TestSignOutConvergesService(t *testing.T) {
	if !RequireDatabase(t) {
		return
	}

	ctx := context.Background()
	service, _, err := SetupTestDatabase(ctx)
	require.NoError(t, err)

	require.NoError(t, service.Start(ctx))
	defer service.Close()

	tenant := UniqueTenant("signout-ok")
	email := string(tenant) + "@example.com"
	require.NoError(t, service.SignUp(ctx, email, "secret", "Ana", tenant, RoleOwner))
	require.NoError(t, service.SignIn(ctx, email, "secret"))

	require.Eventually(t, func() bool {
		return service.Store().Snapshot().Authenticated()
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, service.SignOut(ctx))

	require.Eventually(t, func() bool {
		s := service.Store().Snapshot()
		return !s.Loading && s.Session == nil && s.Profile == nil
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, DecisionDenyUnauthenticated, service.Gate(RoleNone))
}

// TestUpdateProfilePersistsAndMerges tests the optimistic merge path: the
// write lands in the store and the local snapshot reflects it without a
// re-fetch.
func TestUpdateProfilePersistsAndMerges(t *testing.T) {
	if !RequireDatabase(t) {
		return
	}

	ctx := context.Background()
	service, _, err := SetupTestDatabase(ctx)
	require.NoError(t, err)

	require.NoError(t, service.Start(ctx))
	defer service.Close()

	tenant := UniqueTenant("profile-upd")
	email := string(tenant) + "@example.com"
	require.NoError(t, service.SignUp(ctx, email, "secret", "Before", tenant, RoleProducer))
	require.NoError(t, service.SignIn(ctx, email, "secret"))

	require.Eventually(t, func() bool {
		return service.Store().Snapshot().Authenticated()
	}, 5*time.Second, 10*time.Millisecond)

	name := "After"
	phone := "+55 11 98888-7777"
	require.NoError(t, service.UpdateProfile(ctx, ProfileUpdate{FullName: &name, Phone: &phone}))

	snap := service.Store().Snapshot()
	assert.Equal(t, "After", snap.Profile.FullName)
	assert.Equal(t, phone, snap.Profile.Phone)
	assert.Equal(t, RoleProducer, snap.Profile.Role, "role is untouched")

	// The write is durable, not just local.
	resolved, err := service.resolver.Resolve(ctx, snap.Profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", resolved.FullName)
	assert.Equal(t, phone, resolved.Phone)

	// An empty update is a no-op, not an error.
	require.NoError(t, service.UpdateProfile(ctx, ProfileUpdate{}))
}
