package authkit

// Decision is the outcome of an access-gate evaluation.
type Decision int

const (
	// DecisionPending means actor state is still resolving. Callers must
	// render a non-committal waiting state and re-evaluate on the next
	// ActorState change.
	DecisionPending Decision = iota

	// DecisionDenyUnauthenticated means no resolved actor is present. Callers
	// should redirect to an authentication entry point, preserving the
	// originally requested location.
	DecisionDenyUnauthenticated

	// DecisionDenyInsufficientRole means the actor is authenticated but its
	// role does not satisfy the requirement. Callers must render a terminal
	// forbidden response, not a redirect: sending an authenticated user back
	// to sign-in would loop.
	DecisionDenyInsufficientRole

	// DecisionAllow grants entry.
	DecisionAllow
)

// String returns the decision name.
func (d Decision) String() string {
	switch d {
	case DecisionPending:
		return "pending"
	case DecisionDenyUnauthenticated:
		return "deny_unauthenticated"
	case DecisionDenyInsufficientRole:
		return "deny_insufficient_role"
	case DecisionAllow:
		return "allow"
	}
	return "unknown"
}

// Decide evaluates entry into a protected view for the given actor state.
// Pass RoleNone as required when the view only needs authentication.
//
// The checks run top-down, first match wins:
//
//  1. state still loading          -> DecisionPending
//  2. session or profile absent    -> DecisionDenyUnauthenticated
//  3. role requirement unsatisfied -> DecisionDenyInsufficientRole
//  4. otherwise                    -> DecisionAllow
//
// Decide is a pure function of its inputs: it performs no I/O, takes no
// locks and never retries. A session whose profile resolution terminated
// without a profile is treated exactly like fully unauthenticated.
func Decide(state ActorState, required Role) Decision {
	if state.Loading {
		return DecisionPending
	}
	if state.Session == nil || state.Profile == nil {
		return DecisionDenyUnauthenticated
	}
	if required != RoleNone && !state.Profile.Role.Satisfies(required) {
		return DecisionDenyInsufficientRole
	}
	return DecisionAllow
}
