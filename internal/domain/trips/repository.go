package trips

import "context"

// Repository persists trips. Every method is scoped to one tenant and
// returns domain.ErrNotFound for trips of other tenants.
type Repository interface {
	Create(ctx context.Context, t *Trip) error
	GetByID(ctx context.Context, tenantID, tripID string) (*Trip, error)
	List(ctx context.Context, tenantID string, filter ListFilter) ([]Trip, int64, error)
	// UpdateStatus writes status and version; it fails with
	// ErrVersionConflict when the stored version is not t.Version-1.
	UpdateStatus(ctx context.Context, t *Trip) error
	// NextShipmentSeq atomically increments and returns the trip's shipment counter.
	NextShipmentSeq(ctx context.Context, tenantID, tripID string) (int64, error)
}
