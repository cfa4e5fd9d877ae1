package authkit

import "time"

// VisitFilter provides options for filtering visit queries.
type VisitFilter struct {
	// Filter by lifecycle status
	Status VisitStatus

	// Filter by assigned consultant
	ConsultantID string

	// Filter by parcel
	ParcelID string

	// Filter by scheduled time range
	Since time.Time
	Until time.Time

	// Pagination
	Limit  int
	Offset int
}

// NewVisitFilter creates a VisitFilter with default values.
func NewVisitFilter() VisitFilter {
	return VisitFilter{
		Limit: 100,
	}
}

// WithStatus sets the status filter.
func (f VisitFilter) WithStatus(status VisitStatus) VisitFilter {
	f.Status = status
	return f
}

// WithConsultant sets the consultant filter.
func (f VisitFilter) WithConsultant(consultantID string) VisitFilter {
	f.ConsultantID = consultantID
	return f
}

// WithParcel sets the parcel filter.
func (f VisitFilter) WithParcel(parcelID string) VisitFilter {
	f.ParcelID = parcelID
	return f
}

// WithTimeRange sets the scheduled time range filter.
func (f VisitFilter) WithTimeRange(since, until time.Time) VisitFilter {
	f.Since = since
	f.Until = until
	return f
}

// WithPagination sets both limit and offset.
func (f VisitFilter) WithPagination(limit, offset int) VisitFilter {
	f.Limit = limit
	f.Offset = offset
	return f
}

// AuthEventFilter provides options for filtering auth event queries.
type AuthEventFilter struct {
	// Filter by session subject
	SubjectID string

	// Filter by tenant
	Tenant TenantID

	// Filter by action type
	Action AuthAction

	// Filter by time range
	Since time.Time
	Until time.Time

	// Pagination
	Limit  int
	Offset int
}

// NewAuthEventFilter creates an AuthEventFilter with default values.
func NewAuthEventFilter() AuthEventFilter {
	return AuthEventFilter{
		Limit: 100,
	}
}

// WithSubject sets the subject filter.
func (f AuthEventFilter) WithSubject(subjectID string) AuthEventFilter {
	f.SubjectID = subjectID
	return f
}

// WithTenant sets the tenant filter.
func (f AuthEventFilter) WithTenant(tenant TenantID) AuthEventFilter {
	f.Tenant = tenant
	return f
}

// WithAction sets the action filter.
func (f AuthEventFilter) WithAction(action AuthAction) AuthEventFilter {
	f.Action = action
	return f
}

// WithTimeRange sets the time range filter.
func (f AuthEventFilter) WithTimeRange(since, until time.Time) AuthEventFilter {
	f.Since = since
	f.Until = until
	return f
}

// WithPagination sets both limit and offset.
func (f AuthEventFilter) WithPagination(limit, offset int) AuthEventFilter {
	f.Limit = limit
	f.Offset = offset
	return f
}
