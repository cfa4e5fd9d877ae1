package authkit

import (
	"context"

	"github.com/fernandezvara/dbkit"
)

// HealthService provides health monitoring as an extension to Service.
type HealthService struct {
	*Service
}

// NewHealthService creates a new health service extension.
func NewHealthService(service *Service) *HealthService {
	return &HealthService{Service: service}
}

// Health performs a comprehensive health check of the database connection,
// including latency and pool statistics.
func (hs *HealthService) Health(ctx context.Context) dbkit.HealthStatus {
	if db, ok := hs.db.(*dbkit.DBKit); ok {
		return db.Health(ctx)
	}
	return dbkit.HealthStatus{
		Healthy: hs.IsHealthy(ctx),
		Error:   "Limited health check - not a DBKit instance",
	}
}

// IsHealthy performs a simple reachability check of the database.
func (hs *HealthService) IsHealthy(ctx context.Context) bool {
	if db, ok := hs.db.(*dbkit.DBKit); ok {
		return db.IsHealthy(ctx)
	}
	return hs.Ping(ctx) == nil
}

// Ping performs a basic connectivity test to the database.
func (hs *HealthService) Ping(ctx context.Context) error {
	var result int
	return hs.db.NewSelect().Model((*struct{})(nil)).ColumnExpr("1").Limit(1).Scan(ctx, &result)
}
