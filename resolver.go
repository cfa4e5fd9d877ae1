package authkit

import (
	"context"

	"github.com/fernandezvara/dbkit"
)

// ProfileResolver looks up the authorization profile for a session subject in
// the data store. It is the database-backed implementation of Resolver.
type ProfileResolver struct {
	db dbkit.IDB
}

// NewProfileResolver creates a resolver over the given database.
func NewProfileResolver(db dbkit.IDB) *ProfileResolver {
	return &ProfileResolver{db: db}
}

// Resolve fetches exactly one profile record keyed by subjectID.
//
// Zero rows is a legitimate terminal outcome (ErrProfileNotFound): the
// session is valid but carries no authorization profile, e.g. an account
// mid-provisioning. Infrastructure failures are reported as
// ErrStoreUnavailable and are never folded into not-found.
func (r *ProfileResolver) Resolve(ctx context.Context, subjectID string) (*Profile, error) {
	var profile Profile
	err := dbkit.WithErr1(r.db.NewSelect().Model(&profile).Where("id = ?", subjectID).Limit(1).Scan(ctx), "ResolveProfile").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, NewError(ErrProfileNotFound, "no profile for this account").WithSubject(subjectID)
		}
		return nil, NewError(ErrStoreUnavailable, "profile lookup failed").WithSubject(subjectID)
	}
	return &profile, nil
}
