package authkit

import (
	"time"

	"github.com/uptrace/bun"
)

// TenantID is an opaque tenant key. It is only ever compared for equality and
// must never be confused with other string identifiers.
type TenantID string

// String returns the raw tenant key.
func (t TenantID) String() string {
	return string(t)
}

// Session is provider-issued proof of authentication for one subject. AuthKit
// observes sessions, it never owns their lifecycle.
type Session struct {
	// Token is the opaque session token issued by the provider.
	Token string

	// Subject is the stable actor identifier the session was issued for.
	Subject string

	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at the given time.
// Sessions without expiry metadata never expire from AuthKit's point of view.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// SessionEvent is emitted by an identity provider whenever the current
// session changes. A nil Session means signed out or expired.
type SessionEvent struct {
	Session *Session
}

// Profile is the authorization record for one subject. A profile is always
// fetched by, and must equal, the subject of the currently active session.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:p"`

	// ID equals the session subject identifier.
	ID string `bun:"id,pk"`

	TenantID TenantID `bun:"tenant_id,notnull"`
	Role     Role     `bun:"role,notnull"`
	FullName string   `bun:"full_name,notnull"`
	Phone    string   `bun:"phone"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// ProfileUpdate carries the mutable display fields of a profile. Role and
// tenant are deliberately not updatable through this path.
type ProfileUpdate struct {
	FullName *string
	Phone    *string
}

// columns returns the profile columns touched by this update.
func (u ProfileUpdate) columns() []string {
	var cols []string
	if u.FullName != nil {
		cols = append(cols, "full_name")
	}
	if u.Phone != nil {
		cols = append(cols, "phone")
	}
	return cols
}

// ActorState is the published snapshot consumed by every access decision and
// tenant-scoped query. Loading=false implies session and profile are in their
// final resolved state for the current session generation: either both
// present, or profile absent because resolution terminated without one.
type ActorState struct {
	Session *Session
	Profile *Profile
	Loading bool
}

// Authenticated reports whether the snapshot carries a fully resolved actor.
func (s ActorState) Authenticated() bool {
	return s.Session != nil && s.Profile != nil
}

// AuthAction is the type of a recorded authentication event.
type AuthAction string

const (
	AuthActionSignedIn       AuthAction = "signed_in"
	AuthActionSignInFailed   AuthAction = "sign_in_failed"
	AuthActionSignedUp       AuthAction = "signed_up"
	AuthActionSignedOut      AuthAction = "signed_out"
	AuthActionProfileUpdated AuthAction = "profile_updated"
)

// AuthEvent records an authentication-path event for audit and forensics.
type AuthEvent struct {
	bun.BaseModel `bun:"table:auth_events,alias:ae"`

	ID        string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Timestamp time.Time `bun:"timestamp,notnull,default:current_timestamp"`

	SubjectID string     `bun:"subject_id"`
	TenantID  TenantID   `bun:"tenant_id"`
	Action    AuthAction `bun:"action,notnull"`
	Detail    string     `bun:"detail"`

	// Request metadata for forensics
	IPAddress string `bun:"ip_address"`
	UserAgent string `bun:"user_agent"`
	RequestID string `bun:"request_id"`
}

// TenantScoped is implemented by every entity row that belongs to exactly one
// tenant. TenantScope uses it to force the tenant on writes and to key
// cross-tenant checks.
type TenantScoped interface {
	PrimaryKey() string
	Tenant() TenantID
	SetTenant(TenantID)
}

// Producer is a rural producer managed within a tenant.
type Producer struct {
	bun.BaseModel `bun:"table:producers,alias:pr"`

	ID       string   `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	TenantID TenantID `bun:"tenant_id,notnull"`

	Name    string `bun:"name,notnull"`
	CpfCnpj string `bun:"cpf_cnpj,notnull"`
	Phone   string `bun:"phone"`
	Email   string `bun:"email"`
	Address string `bun:"address"`
	Notes   string `bun:"notes"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

func (p *Producer) PrimaryKey() string   { return p.ID }
func (p *Producer) Tenant() TenantID     { return p.TenantID }
func (p *Producer) SetTenant(t TenantID) { p.TenantID = t }

// Property is a rural property owned by a producer.
type Property struct {
	bun.BaseModel `bun:"table:properties,alias:pp"`

	ID         string   `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	TenantID   TenantID `bun:"tenant_id,notnull"`
	ProducerID string   `bun:"producer_id,notnull"`

	Name string `bun:"name,notnull"`
	// Location is a GeoJSON document, stored as-is.
	Location     string  `bun:"location,type:jsonb"`
	AreaHectares float64 `bun:"area_hectares"`
	Address      string  `bun:"address"`
	Notes        string  `bun:"notes"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`

	Producer *Producer `bun:"rel:belongs-to,join:producer_id=id"`
}

func (p *Property) PrimaryKey() string   { return p.ID }
func (p *Property) Tenant() TenantID     { return p.TenantID }
func (p *Property) SetTenant(t TenantID) { p.TenantID = t }

// Parcel is a cultivated subdivision of a property.
type Parcel struct {
	bun.BaseModel `bun:"table:parcels,alias:pc"`

	ID         string   `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	TenantID   TenantID `bun:"tenant_id,notnull"`
	PropertyID string   `bun:"property_id,notnull"`

	Name         string  `bun:"name,notnull"`
	AreaHectares float64 `bun:"area_hectares"`
	Crop         string  `bun:"crop"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`

	Property *Property `bun:"rel:belongs-to,join:property_id=id"`
}

func (p *Parcel) PrimaryKey() string   { return p.ID }
func (p *Parcel) Tenant() TenantID     { return p.TenantID }
func (p *Parcel) SetTenant(t TenantID) { p.TenantID = t }

// VisitStatus is the lifecycle state of a technical visit.
type VisitStatus string

const (
	VisitScheduled VisitStatus = "scheduled"
	VisitCompleted VisitStatus = "completed"
	VisitCanceled  VisitStatus = "canceled"
)

// Visit is a technical visit scheduled for a parcel.
type Visit struct {
	bun.BaseModel `bun:"table:visits,alias:v"`

	ID           string   `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	TenantID     TenantID `bun:"tenant_id,notnull"`
	ParcelID     string   `bun:"parcel_id,notnull"`
	ConsultantID string   `bun:"consultant_id"`

	ScheduledAt time.Time   `bun:"scheduled_at,notnull"`
	Status      VisitStatus `bun:"status,notnull,default:'scheduled'"`
	Notes       string      `bun:"notes"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`

	Parcel *Parcel `bun:"rel:belongs-to,join:parcel_id=id"`
}

func (v *Visit) PrimaryKey() string   { return v.ID }
func (v *Visit) Tenant() TenantID     { return v.TenantID }
func (v *Visit) SetTenant(t TenantID) { v.TenantID = t }

// DashboardStats aggregates tenant-scoped counts for the operational
// dashboard.
type DashboardStats struct {
	TotalProducers  int
	TotalProperties int
	TotalParcels    int
	ScheduledVisits int
	CompletedVisits int
	CanceledVisits  int
}
