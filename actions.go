package authkit

import (
	"context"
	"time"

	"github.com/fernandezvara/dbkit"
	"go.uber.org/zap"
)

// ============================================================================
// AUTH ACTIONS
// ============================================================================

// SignIn authenticates the credentials against the identity provider. It
// never mutates actor state directly: the provider's session-change stream is
// the sole writer, and a successful sign-in converges through it.
//
// Failures come back as a classified error carrying a user-displayable
// message; ErrProviderRejected covers bad credentials.
func (s *Service) SignIn(ctx context.Context, email, password string) error {
	session, err := s.provider.SignInWithPassword(ctx, Credentials{Email: email, Password: password})
	s.metrics.observeSignIn(err)
	if err != nil {
		s.recordAuthEvent(ctx, &AuthEvent{
			Action: AuthActionSignInFailed,
			Detail: UserMessage(err),
		})
		s.log.Info("sign-in rejected", zap.Error(err))
		return classify(err, ErrProviderRejected, "sign in was rejected")
	}

	s.recordAuthEvent(ctx, &AuthEvent{
		SubjectID: session.Subject,
		Action:    AuthActionSignedIn,
	})
	return nil
}

// SignUp provisions an identity together with its authorization profile,
// atomically from the caller's perspective: either both are recorded or the
// operation fails. When the profile insert fails after the identity was
// created, the identity is removed again if the provider supports it.
//
// No session is established; the new account signs in afterwards.
func (s *Service) SignUp(ctx context.Context, email, password, fullName string, tenant TenantID, role Role) error {
	if !role.Valid() {
		return NewError(ErrUnexpected, "unknown role").WithRole(role)
	}
	if tenant == "" {
		return NewError(ErrUnexpected, "a tenant is required")
	}

	subjectID, err := s.provider.SignUp(ctx, Credentials{Email: email, Password: password})
	if err != nil {
		return classify(err, ErrProviderRejected, "sign up was rejected")
	}

	now := time.Now()
	profile := &Profile{
		ID:        subjectID,
		TenantID:  tenant,
		Role:      role,
		FullName:  fullName,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.Transaction(ctx, func(ctx context.Context, tx *dbkit.Tx) error {
		result, err := tx.NewInsert().Model(profile).Exec(ctx)
		return dbkit.WithErr(result, err, "CreateProfile").Err()
	})
	if err != nil {
		// Identity without profile is a defect, not an accepted outcome.
		// Compensate when the provider allows it.
		if remover, ok := s.provider.(IdentityRemover); ok {
			if rerr := remover.RemoveIdentity(ctx, subjectID); rerr != nil {
				s.log.Error("orphaned identity after failed profile provisioning",
					zap.String("subject", subjectID),
					zap.Error(rerr))
			}
		} else {
			s.log.Error("identity created but profile provisioning failed",
				zap.String("subject", subjectID),
				zap.Error(err))
		}
		return NewError(ErrStoreUnavailable, "could not provision the account").
			WithSubject(subjectID).
			WithTenant(tenant)
	}

	s.recordAuthEvent(ctx, &AuthEvent{
		SubjectID: subjectID,
		TenantID:  tenant,
		Action:    AuthActionSignedUp,
	})
	return nil
}

// SignOut asks the identity provider to invalidate the session. Failure is
// propagated and local state is never cleared speculatively: the session
// subscription remains the sole writer, so a failed sign-out leaves the actor
// signed in, which matches reality.
func (s *Service) SignOut(ctx context.Context) error {
	snap := s.store.Snapshot()

	if err := s.provider.SignOut(ctx); err != nil {
		s.log.Warn("sign-out failed", zap.Error(err))
		return classify(err, ErrProviderRejected, "sign out failed")
	}

	event := &AuthEvent{Action: AuthActionSignedOut}
	if snap.Session != nil {
		event.SubjectID = snap.Session.Subject
	}
	if snap.Profile != nil {
		event.TenantID = snap.Profile.TenantID
	}
	s.recordAuthEvent(ctx, event)
	return nil
}

// UpdateProfile persists display-field changes for the authenticated actor
// and, on success, merges them into the local actor state. The optimistic
// merge is safe here because the write already succeeded server-side, unlike
// sign-out. Role and tenant cannot be changed through this path.
func (s *Service) UpdateProfile(ctx context.Context, upd ProfileUpdate) error {
	snap := s.store.Snapshot()
	if !snap.Authenticated() {
		return NewError(ErrUnauthenticated, "sign in to update your profile")
	}

	cols := upd.columns()
	if len(cols) == 0 {
		return nil
	}

	updated := *snap.Profile
	if upd.FullName != nil {
		updated.FullName = *upd.FullName
	}
	if upd.Phone != nil {
		updated.Phone = *upd.Phone
	}
	updated.UpdatedAt = time.Now()

	result, err := s.db.NewUpdate().Model(&updated).
		Column(append(cols, "updated_at")...).
		Where("id = ?", updated.ID).
		Exec(ctx)
	if err := dbkit.WithErr(result, err, "UpdateProfile").Err(); err != nil {
		return NewError(ErrStoreUnavailable, "could not save your profile").
			WithSubject(updated.ID)
	}

	s.store.mergeProfile(updated.ID, upd)
	s.recordAuthEvent(ctx, &AuthEvent{
		SubjectID: updated.ID,
		TenantID:  updated.TenantID,
		Action:    AuthActionProfileUpdated,
	})
	return nil
}
