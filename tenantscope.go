package authkit

import (
	"context"

	"github.com/fernandezvara/dbkit"
	"github.com/uptrace/bun"
)

// Scope returns the tenant key every operation by this actor must be
// constrained to.
func Scope(actor *Profile) TenantID {
	return actor.TenantID
}

// TenantScope shapes every entity read and write so it stays inside the
// acting profile's tenant. It is the only path by which entity queries are
// built; there is no unscoped alternative in this package. The backing store
// is assumed to enforce the same constraint independently (row-level
// security), as defense in depth.
type TenantScope struct {
	db      dbkit.IDB
	tenant  TenantID
	metrics *Metrics
}

// NewTenantScope builds a scope for the given actor. An absent actor cannot
// be scoped and yields ErrUnauthenticated.
func NewTenantScope(db dbkit.IDB, actor *Profile) (*TenantScope, error) {
	return newTenantScope(db, actor, nil)
}

func newTenantScope(db dbkit.IDB, actor *Profile, m *Metrics) (*TenantScope, error) {
	if actor == nil {
		return nil, NewError(ErrUnauthenticated, "sign in to access this resource")
	}
	return &TenantScope{db: db, tenant: Scope(actor), metrics: m}, nil
}

// Tenant returns the scope's tenant key.
func (ts *TenantScope) Tenant() TenantID {
	return ts.tenant
}

// NewSelect starts a query over the model with the tenant filter already
// applied. Callers may add further conditions, ordering and limits. The
// filter is qualified with the model's alias so relation joins stay
// unambiguous.
func (ts *TenantScope) NewSelect(model any) *bun.SelectQuery {
	return ts.db.NewSelect().Model(model).Where("?TableAlias.tenant_id = ?", ts.tenant)
}

// Insert creates the record inside the scope's tenant. Any caller-supplied
// tenant value is overwritten, never trusted.
func (ts *TenantScope) Insert(ctx context.Context, rec TenantScoped) error {
	rec.SetTenant(ts.tenant)
	result, err := ts.db.NewInsert().Model(rec).Exec(ctx)
	if err := dbkit.WithErr(result, err, "TenantScopedInsert").Err(); err != nil {
		if dbkit.IsDuplicate(err) {
			return NewError(ErrUnexpected, "record already exists").WithTenant(ts.tenant)
		}
		return NewError(ErrStoreUnavailable, "could not save record").WithTenant(ts.tenant)
	}
	return nil
}

// Get loads one record by primary key within the tenant. A row that exists
// in another tenant is indistinguishable from a missing row on reads, so the
// result is ErrNotFound either way; existence outside the tenant is not
// leaked.
func (ts *TenantScope) Get(ctx context.Context, rec TenantScoped) error {
	err := dbkit.WithErr1(ts.NewSelect(rec).Where("id = ?", rec.PrimaryKey()).Limit(1).Scan(ctx), "TenantScopedGet").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return NewError(ErrNotFound, "record not found").WithTenant(ts.tenant)
		}
		return NewError(ErrStoreUnavailable, "could not load record").WithTenant(ts.tenant)
	}
	return nil
}

// Update persists the record's columns (all non-PK columns when none are
// named) for a row that exists inside the tenant. Updating a row that lives
// in another tenant fails with ErrCrossTenantAccess and mutates nothing,
// even when the row id is otherwise valid.
func (ts *TenantScope) Update(ctx context.Context, rec TenantScoped, columns ...string) error {
	rec.SetTenant(ts.tenant)
	q := ts.db.NewUpdate().Model(rec).
		Where("id = ?", rec.PrimaryKey()).
		Where("tenant_id = ?", ts.tenant)
	if len(columns) > 0 {
		q = q.Column(columns...)
	}

	result, err := q.Exec(ctx)
	if err := dbkit.WithErr(result, err, "TenantScopedUpdate").Err(); err != nil {
		return NewError(ErrStoreUnavailable, "could not update record").WithTenant(ts.tenant)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ts.classifyMiss(ctx, rec)
	}
	return nil
}

// Delete removes a row that exists inside the tenant. Deleting a row that
// lives in another tenant fails with ErrCrossTenantAccess and mutates
// nothing.
func (ts *TenantScope) Delete(ctx context.Context, rec TenantScoped) error {
	result, err := ts.db.NewDelete().Model(rec).
		Where("id = ?", rec.PrimaryKey()).
		Where("tenant_id = ?", ts.tenant).
		Exec(ctx)
	if err := dbkit.WithErr(result, err, "TenantScopedDelete").Err(); err != nil {
		return NewError(ErrStoreUnavailable, "could not delete record").WithTenant(ts.tenant)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ts.classifyMiss(ctx, rec)
	}
	return nil
}

// classifyMiss distinguishes a genuinely missing row from a cross-tenant
// attempt after a zero-row mutation. The row is counted by id alone; a hit
// means it exists under a different tenant.
func (ts *TenantScope) classifyMiss(ctx context.Context, rec TenantScoped) error {
	count, err := ts.db.NewSelect().Model(rec).Where("id = ?", rec.PrimaryKey()).Count(ctx)
	if err != nil {
		return NewError(ErrStoreUnavailable, "could not verify record").WithTenant(ts.tenant)
	}
	if count > 0 {
		ts.metrics.crossTenantDenied()
		return NewError(ErrCrossTenantAccess, "record belongs to another tenant").WithTenant(ts.tenant)
	}
	return NewError(ErrNotFound, "record not found").WithTenant(ts.tenant)
}
