package authkit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testSession(subject string) *Session {
	return &Session{
		Token:    "token-" + subject,
		Subject:  subject,
		IssuedAt: time.Now(),
	}
}

func testProfile(subject string, tenant TenantID, role Role) *Profile {
	return &Profile{
		ID:       subject,
		TenantID: tenant,
		Role:     role,
		FullName: "Test User",
	}
}

// TestDecideLoading tests that a loading state is always pending, whatever
// else the snapshot carries.
func TestDecideLoading(t *testing.T) {
	states := []ActorState{
		{Loading: true},
		{Loading: true, Session: testSession("u1")},
		{Loading: true, Session: testSession("u1"), Profile: testProfile("u1", "t1", RoleAdmin)},
	}
	for _, state := range states {
		assert.Equal(t, DecisionPending, Decide(state, RoleNone))
		assert.Equal(t, DecisionPending, Decide(state, RoleAdmin))
	}
}

// TestDecideUnauthenticated tests the absent-session and absent-profile
// paths.
func TestDecideUnauthenticated(t *testing.T) {
	// No session at all.
	assert.Equal(t, DecisionDenyUnauthenticated, Decide(ActorState{}, RoleNone))

	// Valid session whose resolution terminated without a profile
	// (mid-provisioning account) is treated exactly like unauthenticated.
	state := ActorState{Session: testSession("u1")}
	assert.Equal(t, DecisionDenyUnauthenticated, Decide(state, RoleNone))
	assert.Equal(t, DecisionDenyUnauthenticated, Decide(state, RoleOperator))

	// Profile without session is equally unauthenticated.
	state = ActorState{Profile: testProfile("u1", "t1", RoleAdmin)}
	assert.Equal(t, DecisionDenyUnauthenticated, Decide(state, RoleNone))
}

// TestDecideInsufficientRole tests that an authenticated but under-privileged
// actor gets the terminal denial, not the redirect path.
func TestDecideInsufficientRole(t *testing.T) {
	state := ActorState{
		Session: testSession("u1"),
		Profile: testProfile("u1", "t1", RoleProducer),
	}

	assert.Equal(t, DecisionDenyInsufficientRole, Decide(state, RoleManager))
	assert.Equal(t, DecisionDenyInsufficientRole, Decide(state, RoleAdmin))
	assert.Equal(t, DecisionAllow, Decide(state, RoleProducer))
	assert.Equal(t, DecisionAllow, Decide(state, RoleOperator))
	assert.Equal(t, DecisionAllow, Decide(state, RoleNone))
}

// TestDecideUnknownRequirement tests that a requirement outside the closed
// role set denies everyone rather than admitting everyone.
func TestDecideUnknownRequirement(t *testing.T) {
	state := ActorState{
		Session: testSession("u1"),
		Profile: testProfile("u1", "t1", RoleAdmin),
	}
	assert.Equal(t, DecisionDenyInsufficientRole, Decide(state, Role("superuser")))
}

// TestDecideRoleMatrix tests every actual/required pair against the
// hierarchy.
func TestDecideRoleMatrix(t *testing.T) {
	for _, actual := range Roles() {
		state := ActorState{
			Session: testSession("u1"),
			Profile: testProfile("u1", "t1", actual),
		}
		for _, required := range Roles() {
			want := DecisionAllow
			if actual.Rank() < required.Rank() {
				want = DecisionDenyInsufficientRole
			}
			assert.Equal(t, want, Decide(state, required),
				"actual=%s required=%s", actual, required)
		}
	}
}

// TestDecideIsPure tests that the decision is a pure function of its inputs.
func TestDecideIsPure(t *testing.T) {
	state := ActorState{
		Session: testSession("u1"),
		Profile: testProfile("u1", "t1", RoleConsultant),
	}
	first := Decide(state, RoleManager)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Decide(state, RoleManager))
	}
}

// TestDecisionString tests decision names used in logs and metrics labels.
func TestDecisionString(t *testing.T) {
	assert.Equal(t, "pending", DecisionPending.String())
	assert.Equal(t, "deny_unauthenticated", DecisionDenyUnauthenticated.String())
	assert.Equal(t, "deny_insufficient_role", DecisionDenyInsufficientRole.String())
	assert.Equal(t, "allow", DecisionAllow.String())
	assert.Equal(t, "unknown", Decision(42).String())
}
