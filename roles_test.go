package authkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRoleOrder verifies the fixed privilege order.
func TestRoleOrder(t *testing.T) {
	ordered := Roles()
	require.Equal(t, []Role{RoleOperator, RoleProducer, RoleConsultant, RoleManager, RoleOwner, RoleAdmin}, ordered)

	for i := 1; i < len(ordered); i++ {
		assert.Greater(t, ordered[i].Rank(), ordered[i-1].Rank(),
			"%s must outrank %s", ordered[i], ordered[i-1])
	}
}

// TestRoleSatisfies verifies satisfies(a, b) == (rank(a) >= rank(b)) over
// every role pair.
func TestRoleSatisfies(t *testing.T) {
	for _, actual := range Roles() {
		for _, required := range Roles() {
			expected := actual.Rank() >= required.Rank()
			assert.Equal(t, expected, actual.Satisfies(required),
				"%s satisfies %s", actual, required)
		}
	}
}

// TestRoleSatisfiesNone tests the no-requirement case.
func TestRoleSatisfiesNone(t *testing.T) {
	for _, role := range Roles() {
		assert.True(t, role.Satisfies(RoleNone))
	}

	// An invalid role satisfies nothing, not even "no requirement".
	assert.False(t, Role("intruder").Satisfies(RoleNone))
	assert.False(t, Role("intruder").Satisfies(RoleOperator))
	assert.False(t, RoleNone.Satisfies(RoleOperator))
}

// TestRoleSatisfiesUnknownRequirement tests that a requirement outside the
// closed role set fails closed: no actor satisfies it, not even admin.
func TestRoleSatisfiesUnknownRequirement(t *testing.T) {
	for _, actual := range Roles() {
		assert.False(t, actual.Satisfies(Role("superuser")),
			"%s must not satisfy an unknown requirement", actual)
	}
	assert.False(t, Role("ghost").Satisfies(Role("superuser")))
}

// TestRoleValid tests membership in the closed role set.
func TestRoleValid(t *testing.T) {
	for _, role := range Roles() {
		assert.True(t, role.Valid())
	}
	assert.False(t, RoleNone.Valid())
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("Admin").Valid(), "role names are case sensitive")
}

// TestParseRole tests string conversion.
func TestParseRole(t *testing.T) {
	role, err := ParseRole("manager")
	require.NoError(t, err)
	assert.Equal(t, RoleManager, role)

	_, err = ParseRole("root")
	assert.Error(t, err)

	_, err = ParseRole("")
	assert.Error(t, err)
}

// TestRoleRankUnknown tests that unknown roles rank below every valid role.
func TestRoleRankUnknown(t *testing.T) {
	assert.Equal(t, 0, Role("ghost").Rank())
	assert.Equal(t, 0, RoleNone.Rank())
	for _, role := range Roles() {
		assert.Greater(t, role.Rank(), 0)
	}
}
