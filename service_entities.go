package authkit

import (
	"context"
	"time"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// TENANT-SCOPED ENTITY OPERATIONS
// ============================================================================
//
// Every operation here builds its queries through the actor's TenantScope.
// There is deliberately no variant that takes a raw tenant key: the acting
// profile is the only source of tenancy.

// CreateProducer creates a producer inside the actor's tenant.
func (s *Service) CreateProducer(ctx context.Context, actor *Profile, producer *Producer) error {
	ts, err := s.ScopeFor(actor)
	if err != nil {
		return err
	}
	return ts.Insert(ctx, producer)
}

// ListProducers returns all producers of the actor's tenant, ordered by name.
func (s *Service) ListProducers(ctx context.Context, actor *Profile) ([]Producer, error) {
	ts, err := s.ScopeFor(actor)
	if err != nil {
		return nil, err
	}
	var producers []Producer
	if err := dbkit.WithErr1(ts.NewSelect(&producers).Order("name ASC").Scan(ctx), "ListProducers").Err(); err != nil {
		return nil, NewError(ErrStoreUnavailable, "could not load producers").WithTenant(ts.Tenant())
	}
	return producers, nil
}

// GetProducer loads one producer of the actor's tenant by id.
func (s *Service) GetProducer(ctx context.Context, actor *Profile, id string) (*Producer, error) {
	ts, err := s.ScopeFor(actor)
	if err != nil {
		return nil, err
	}
	producer := &Producer{ID: id}
	if err := ts.Get(ctx, producer); err != nil {
		return nil, err
	}
	return producer, nil
}

// UpdateProducer persists producer changes within the actor's tenant.
func (s *Service) UpdateProducer(ctx context.Context, actor *Profile, producer *Producer, columns ...string) error {
	ts, err := s.ScopeFor(actor)
	if err != nil {
		return err
	}
	producer.UpdatedAt = time.Now()
	return ts.Update(ctx, producer, columns...)
}

// DeleteProducer removes a producer from the actor's tenant.
func (s *Service) DeleteProducer(ctx context.Context, actor *Profile, id string) error {
	ts, err := s.ScopeFor(actor)
	if err != nil {
		return err
	}
	return ts.Delete(ctx, &Producer{ID: id})
}

// CreateProperty creates a property inside the actor's tenant.
func (s *Service) CreateProperty(ctx context.Context, actor *Profile, property *Property) error {
	ts, err := s.ScopeFor(actor)
	if err != nil {
		return err
	}
	return ts.Insert(ctx, property)
}

// ListProperties returns all properties of the actor's tenant with their
// producers, ordered by name.
func (s *Service) ListProperties(ctx context.Context, actor *Profile) ([]Property, error) {
	ts, err := s.ScopeFor(actor)
	if err != nil {
		return nil, err
	}
	var properties []Property
	q := ts.NewSelect(&properties).Relation("Producer").Order("pp.name ASC")
	if err := dbkit.WithErr1(q.Scan(ctx), "ListProperties").Err(); err != nil {
		return nil, NewError(ErrStoreUnavailable, "could not load properties").WithTenant(ts.Tenant())
	}
	return properties, nil
}

// UpdateProperty persists property changes within the actor's tenant.
func (s *Service) UpdateProperty(ctx context.Context, actor *Profile, property *Property, columns ...string) error {
	ts, err := s.ScopeFor(actor)
	if err != nil {
		return err
	}
	property.UpdatedAt = time.Now()
	return ts.Update(ctx, property, columns...)
}

// DeleteProperty removes a property from the actor's tenant.
func (s *Service) DeleteProperty(ctx context.Context, actor *Profile, id string) error {
	ts, err := s.ScopeFor(actor)
	if err != nil {
		return err
	}
	return ts.Delete(ctx, &Property{ID: id})
}

// CreateParcel creates a parcel inside the actor's tenant.
func (s *Service) CreateParcel(ctx context.Context, actor *Profile, parcel *Parcel) error {
	ts, err := s.ScopeFor(actor)
	if err != nil {
		return err
	}
	return ts.Insert(ctx, parcel)
}

// ListParcels returns the parcels of the actor's tenant, optionally limited
// to one property.
func (s *Service) ListParcels(ctx context.Context, actor *Profile, propertyID string) ([]Parcel, error) {
	ts, err := s.ScopeFor(actor)
	if err != nil {
		return nil, err
	}
	var parcels []Parcel
	q := ts.NewSelect(&parcels).Order("name ASC")
	if propertyID != "" {
		q = q.Where("property_id = ?", propertyID)
	}
	if err := dbkit.WithErr1(q.Scan(ctx), "ListParcels").Err(); err != nil {
		return nil, NewError(ErrStoreUnavailable, "could not load parcels").WithTenant(ts.Tenant())
	}
	return parcels, nil
}

// UpdateParcel persists parcel changes within the actor's tenant.
func (s *Service) UpdateParcel(ctx context.Context, actor *Profile, parcel *Parcel, columns ...string) error {
	ts, err := s.ScopeFor(actor)
	if err != nil {
		return err
	}
	parcel.UpdatedAt = time.Now()
	return ts.Update(ctx, parcel, columns...)
}

// DeleteParcel removes a parcel from the actor's tenant.
func (s *Service) DeleteParcel(ctx context.Context, actor *Profile, id string) error {
	ts, err := s.ScopeFor(actor)
	if err != nil {
		return err
	}
	return ts.Delete(ctx, &Parcel{ID: id})
}

// ScheduleVisit creates a visit inside the actor's tenant. A new visit
// starts in the scheduled state unless a status is set.
func (s *Service) ScheduleVisit(ctx context.Context, actor *Profile, visit *Visit) error {
	ts, err := s.ScopeFor(actor)
	if err != nil {
		return err
	}
	if visit.Status == "" {
		visit.Status = VisitScheduled
	}
	return ts.Insert(ctx, visit)
}

// ScheduleVisits creates several visits in one transaction. All of them are
// forced into the actor's tenant; either every visit is recorded or none is.
func (s *Service) ScheduleVisits(ctx context.Context, actor *Profile, visits []*Visit) error {
	ts, err := s.ScopeFor(actor)
	if err != nil {
		return err
	}
	return s.Transaction(ctx, func(ctx context.Context, tx *dbkit.Tx) error {
		for _, visit := range visits {
			visit.SetTenant(ts.Tenant())
			if visit.Status == "" {
				visit.Status = VisitScheduled
			}
			result, err := tx.NewInsert().Model(visit).Exec(ctx)
			if err := dbkit.WithErr(result, err, "ScheduleVisit").Err(); err != nil {
				return NewError(ErrStoreUnavailable, "could not schedule visits").WithTenant(ts.Tenant())
			}
		}
		return nil
	})
}

// ListVisits returns the visits of the actor's tenant matching the filter,
// soonest first.
func (s *Service) ListVisits(ctx context.Context, actor *Profile, filter VisitFilter) ([]Visit, error) {
	ts, err := s.ScopeFor(actor)
	if err != nil {
		return nil, err
	}

	var visits []Visit
	q := ts.NewSelect(&visits)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ConsultantID != "" {
		q = q.Where("consultant_id = ?", filter.ConsultantID)
	}
	if filter.ParcelID != "" {
		q = q.Where("parcel_id = ?", filter.ParcelID)
	}
	if !filter.Since.IsZero() {
		q = q.Where("scheduled_at >= ?", filter.Since)
	}
	if !filter.Until.IsZero() {
		q = q.Where("scheduled_at <= ?", filter.Until)
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 100
	}
	q = q.Limit(limit)
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	q = q.Order("scheduled_at ASC")
	if err := dbkit.WithErr1(q.Scan(ctx), "ListVisits").Err(); err != nil {
		return nil, NewError(ErrStoreUnavailable, "could not load visits").WithTenant(ts.Tenant())
	}
	return visits, nil
}

// RecentVisits returns the latest visits of the actor's tenant with parcel,
// property and producer loaded, for the dashboard.
func (s *Service) RecentVisits(ctx context.Context, actor *Profile, limit int) ([]Visit, error) {
	ts, err := s.ScopeFor(actor)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	var visits []Visit
	q := ts.NewSelect(&visits).
		Relation("Parcel").
		Relation("Parcel.Property").
		Relation("Parcel.Property.Producer").
		Order("scheduled_at DESC").
		Limit(limit)
	if err := dbkit.WithErr1(q.Scan(ctx), "RecentVisits").Err(); err != nil {
		return nil, NewError(ErrStoreUnavailable, "could not load recent visits").WithTenant(ts.Tenant())
	}
	return visits, nil
}

// CompleteVisit marks a visit of the actor's tenant as completed.
func (s *Service) CompleteVisit(ctx context.Context, actor *Profile, visitID string) error {
	return s.setVisitStatus(ctx, actor, visitID, VisitCompleted)
}

// CancelVisit marks a visit of the actor's tenant as canceled.
func (s *Service) CancelVisit(ctx context.Context, actor *Profile, visitID string) error {
	return s.setVisitStatus(ctx, actor, visitID, VisitCanceled)
}

func (s *Service) setVisitStatus(ctx context.Context, actor *Profile, visitID string, status VisitStatus) error {
	ts, err := s.ScopeFor(actor)
	if err != nil {
		return err
	}
	visit := &Visit{ID: visitID, Status: status, UpdatedAt: time.Now()}
	return ts.Update(ctx, visit, "status", "updated_at")
}

// DashboardStats aggregates tenant-scoped counts: entity totals and the visit
// status breakdown. The counts run inside one read-only transaction so the
// dashboard never shows a visit total that disagrees with its status
// breakdown.
func (s *Service) DashboardStats(ctx context.Context, actor *Profile) (*DashboardStats, error) {
	if _, err := s.ScopeFor(actor); err != nil {
		return nil, err
	}

	stats := &DashboardStats{}
	err := s.ReadOnlyTransaction(ctx, func(ctx context.Context, tx *dbkit.Tx) error {
		ts, err := newTenantScope(tx, actor, s.metrics)
		if err != nil {
			return err
		}

		counts := []struct {
			model any
			out   *int
		}{
			{(*Producer)(nil), &stats.TotalProducers},
			{(*Property)(nil), &stats.TotalProperties},
			{(*Parcel)(nil), &stats.TotalParcels},
		}
		for _, c := range counts {
			n, err := ts.NewSelect(c.model).Count(ctx)
			if err != nil {
				return err
			}
			*c.out = n
		}

		visitCounts := []struct {
			status VisitStatus
			out    *int
		}{
			{VisitScheduled, &stats.ScheduledVisits},
			{VisitCompleted, &stats.CompletedVisits},
			{VisitCanceled, &stats.CanceledVisits},
		}
		for _, c := range visitCounts {
			n, err := ts.NewSelect((*Visit)(nil)).Where("status = ?", c.status).Count(ctx)
			if err != nil {
				return err
			}
			*c.out = n
		}
		return nil
	})
	if err != nil {
		return nil, classify(err, ErrStoreUnavailable, "could not load dashboard stats")
	}
	return stats, nil
}
