package authkit

import "fmt"

// Role is an element of the fixed, totally ordered privilege set.
// The zero value RoleNone means "no role requirement" when used as a
// requirement and is never a valid profile role.
type Role string

// All roles, in ascending privilege order.
const (
	RoleNone       Role = ""
	RoleOperator   Role = "operator"
	RoleProducer   Role = "producer"
	RoleConsultant Role = "consultant"
	RoleManager    Role = "manager"
	RoleOwner      Role = "owner"
	RoleAdmin      Role = "admin"
)

// roleRanks is the static hierarchy table. Higher rank means more privilege.
var roleRanks = map[Role]int{
	RoleOperator:   1,
	RoleProducer:   2,
	RoleConsultant: 3,
	RoleManager:    4,
	RoleOwner:      5,
	RoleAdmin:      6,
}

// Roles returns all valid roles in ascending privilege order.
func Roles() []Role {
	return []Role{RoleOperator, RoleProducer, RoleConsultant, RoleManager, RoleOwner, RoleAdmin}
}

// Rank returns the position of the role in the hierarchy, starting at 1 for
// the least privileged role. Unknown roles rank 0, below every valid role.
func (r Role) Rank() int {
	return roleRanks[r]
}

// Valid reports whether the role is a member of the closed role set.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// Satisfies reports whether this role meets a requirement: its rank must be
// greater than or equal to the required role's rank. RoleNone is satisfied by
// any valid role. A requirement outside the closed role set is unsatisfiable,
// so a mistyped requirement fails closed instead of admitting everyone.
//
// Example:
//
//	authkit.RoleOwner.Satisfies(authkit.RoleManager) // true
//	authkit.RoleProducer.Satisfies(authkit.RoleManager) // false
func (r Role) Satisfies(required Role) bool {
	if required == RoleNone {
		return r.Valid()
	}
	if !required.Valid() {
		return false
	}
	return r.Valid() && r.Rank() >= required.Rank()
}

// String returns the role name.
func (r Role) String() string {
	return string(r)
}

// ParseRole converts a string into a Role, rejecting anything outside the
// closed role set.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return RoleNone, fmt.Errorf("authkit: unknown role %q", s)
	}
	return r, nil
}
