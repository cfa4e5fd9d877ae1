package authkit

import (
	"errors"
	"fmt"
)

// Sentinel errors for AuthKit operations.
var (
	// ErrUnauthenticated is returned when an operation requires an
	// authenticated actor and none is present.
	ErrUnauthenticated = errors.New("authkit: unauthenticated")

	// ErrInsufficientRole is returned when the actor's role does not satisfy
	// the required role.
	ErrInsufficientRole = errors.New("authkit: insufficient role")

	// ErrProfileNotFound is returned when a valid session carries no
	// authorization profile (e.g. the account is mid-provisioning).
	ErrProfileNotFound = errors.New("authkit: profile not found")

	// ErrNotFound is returned when a tenant-scoped row does not exist within
	// the actor's tenant.
	ErrNotFound = errors.New("authkit: not found")

	// ErrStoreUnavailable is returned when the backing data store cannot be
	// reached or a query fails for infrastructure reasons.
	ErrStoreUnavailable = errors.New("authkit: store unavailable")

	// ErrCrossTenantAccess is returned on an attempted mutation of a row
	// outside the actor's tenant. The operation performs no mutation.
	ErrCrossTenantAccess = errors.New("authkit: cross-tenant access")

	// ErrProviderRejected is returned when the identity provider rejects an
	// operation (bad credentials, duplicate account, dead session).
	ErrProviderRejected = errors.New("authkit: provider rejected")

	// ErrUnexpected is returned for failures that do not fit any other kind.
	ErrUnexpected = errors.New("authkit: unexpected error")
)

// Error wraps a sentinel error with additional context. Failures are always
// returned as values across the authorization boundary, never panicked.
type Error struct {
	Err     error    // Underlying sentinel error
	Cause   error    // Original failure, when classifying a foreign error
	Message string   // User-displayable context
	Subject string   // Session subject involved (if applicable)
	Tenant  TenantID // Tenant involved (if applicable)
	Role    Role     // Role involved (if applicable)
}

// Error implements the error interface. The cause is appended so logs keep
// the original failure text; UserMessage stays limited to Message.
func (e *Error) Error() string {
	msg := e.Err.Error()
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap exposes the sentinel and, when present, the original cause, so both
// stay reachable through errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// NewError creates a new Error with context.
func NewError(err error, message string) *Error {
	return &Error{
		Err:     err,
		Message: message,
	}
}

// WithCause records the original failure behind a classified error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithSubject adds the session subject to the error.
func (e *Error) WithSubject(subjectID string) *Error {
	e.Subject = subjectID
	return e
}

// WithTenant adds tenant information to the error.
func (e *Error) WithTenant(tenant TenantID) *Error {
	e.Tenant = tenant
	return e
}

// WithRole adds role information to the error.
func (e *Error) WithRole(role Role) *Error {
	e.Role = role
	return e
}

// UserMessage returns a message suitable for display to the end user. For
// AuthKit errors this is the contextual message; for anything else the plain
// error text.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// IsUnauthenticated checks if an error is due to a missing actor.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

// IsInsufficientRole checks if an error is due to a role requirement.
func IsInsufficientRole(err error) bool {
	return errors.Is(err, ErrInsufficientRole)
}

// IsCrossTenant checks if an error is a cross-tenant access rejection.
func IsCrossTenant(err error) bool {
	return errors.Is(err, ErrCrossTenantAccess)
}

// IsProviderRejected checks if an error is an identity-provider rejection.
func IsProviderRejected(err error) bool {
	return errors.Is(err, ErrProviderRejected)
}

// IsStoreUnavailable checks if an error is an infrastructure failure of the
// backing store.
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// classify wraps a non-AuthKit error into an *Error. AuthKit errors pass
// through unchanged so their kind is preserved; foreign errors get the
// fallback kind with the original failure retained as the cause.
func classify(err error, fallback error, message string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return NewError(fallback, message).WithCause(err)
}
