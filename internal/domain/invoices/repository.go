package invoices

import (
	"context"
	"errors"

	"logistix/internal/domain/trips"
)

var (
	// ErrDuplicateNumber is returned when (tenant_id, number) is already taken.
	ErrDuplicateNumber = errors.New("invoice number already exists")
	// ErrVersionConflict is returned on optimistic lock failure.
	ErrVersionConflict = errors.New("invoice was modified concurrently")
)

// Repository persists invoices with their lines.
type Repository interface {
	// Create inserts the header and lines.
	Create(ctx context.Context, inv *Invoice) error
	// GetByID loads the header and lines, or domain.ErrNotFound.
	GetByID(ctx context.Context, tenantID, id string) (*Invoice, error)
	// List returns headers only.
	List(ctx context.Context, tenantID string, filter ListFilter) ([]Invoice, int64, error)
	// UpdateStatus writes status fields guarded by version.
	UpdateStatus(ctx context.Context, inv *Invoice) error
}

// TripLookup resolves the trip an invoice is raised for.
type TripLookup interface {
	GetByID(ctx context.Context, tenantID, tripID string) (*trips.Trip, error)
}
