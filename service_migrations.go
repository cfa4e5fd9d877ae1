package authkit

import (
	"context"
	"fmt"

	"github.com/fernandezvara/dbkit"
)

// MigrationService provides migration management as an extension to Service.
type MigrationService struct {
	*Service
}

// NewMigrationService creates a new migration service extension.
func NewMigrationService(service *Service) *MigrationService {
	return &MigrationService{Service: service}
}

// Migrations returns all database migrations required by AuthKit.
// Use dbkit's migration runner, or RunMigrations below.
func (ms *MigrationService) Migrations() []dbkit.Migration {
	return []dbkit.Migration{
		{
			ID:          "authkit-001",
			Description: "Create profiles table",
			SQL: `
                CREATE TABLE IF NOT EXISTS profiles (
                    id TEXT PRIMARY KEY,
                    tenant_id TEXT NOT NULL,
                    role TEXT NOT NULL,
                    full_name TEXT NOT NULL,
                    phone TEXT,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "authkit-002",
			Description: "Create auth_events table",
			SQL: `
                CREATE TABLE IF NOT EXISTS auth_events (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    timestamp TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    subject_id TEXT,
                    tenant_id TEXT,
                    action TEXT NOT NULL,
                    detail TEXT,
                    ip_address TEXT,
                    user_agent TEXT,
                    request_id TEXT
                )`,
		},
		{
			ID:          "authkit-003",
			Description: "Create producers table",
			SQL: `
                CREATE TABLE IF NOT EXISTS producers (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    tenant_id TEXT NOT NULL,
                    name TEXT NOT NULL,
                    cpf_cnpj TEXT NOT NULL,
                    phone TEXT,
                    email TEXT,
                    address TEXT,
                    notes TEXT,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "authkit-004",
			Description: "Create properties table",
			SQL: `
                CREATE TABLE IF NOT EXISTS properties (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    tenant_id TEXT NOT NULL,
                    producer_id UUID NOT NULL REFERENCES producers(id),
                    name TEXT NOT NULL,
                    location JSONB,
                    area_hectares DOUBLE PRECISION,
                    address TEXT,
                    notes TEXT,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "authkit-005",
			Description: "Create parcels table",
			SQL: `
                CREATE TABLE IF NOT EXISTS parcels (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    tenant_id TEXT NOT NULL,
                    property_id UUID NOT NULL REFERENCES properties(id),
                    name TEXT NOT NULL,
                    area_hectares DOUBLE PRECISION,
                    crop TEXT,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "authkit-006",
			Description: "Create visits table",
			SQL: `
                CREATE TABLE IF NOT EXISTS visits (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    tenant_id TEXT NOT NULL,
                    parcel_id UUID NOT NULL REFERENCES parcels(id),
                    consultant_id TEXT,
                    scheduled_at TIMESTAMPTZ NOT NULL,
                    status TEXT NOT NULL DEFAULT 'scheduled',
                    notes TEXT,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "authkit-007",
			Description: "Index tenant keys on all entity tables",
			SQL: `
                CREATE INDEX IF NOT EXISTS idx_profiles_tenant ON profiles (tenant_id);
                CREATE INDEX IF NOT EXISTS idx_producers_tenant ON producers (tenant_id);
                CREATE INDEX IF NOT EXISTS idx_properties_tenant ON properties (tenant_id);
                CREATE INDEX IF NOT EXISTS idx_parcels_tenant ON parcels (tenant_id);
                CREATE INDEX IF NOT EXISTS idx_visits_tenant ON visits (tenant_id);
                CREATE INDEX IF NOT EXISTS idx_visits_schedule ON visits (tenant_id, scheduled_at)`,
		},
	}
}

// RunMigrations applies all pending AuthKit migrations.
func (ms *MigrationService) RunMigrations(ctx context.Context) error {
	db, ok := ms.db.(*dbkit.DBKit)
	if !ok {
		return fmt.Errorf("authkit: migrations require a dbkit.DBKit instance")
	}
	_, err := db.Migrate(ctx, ms.Migrations())
	return err
}
