package trips

import (
	"context"
	"errors"
	"time"

	"logistix/internal/core/apperror"
	"logistix/internal/core/entity"
	corenum "logistix/internal/core/numbering"
	"logistix/internal/core/security"
	"logistix/internal/domain"
	"logistix/internal/domain/audit"
	"logistix/pkg/logger"
)

// ErrVersionConflict is returned by repositories on optimistic lock failure.
var ErrVersionConflict = errors.New("trip was modified concurrently")

// ErrDuplicateNumber is returned by repositories when the trip number is taken.
var ErrDuplicateNumber = errors.New("trip number already exists")

// Service implements trip use cases.
type Service struct {
	repo    Repository
	numbers corenum.Generator
	audit   audit.Recorder
	now     func() time.Time
}

// NewService creates a trip service. recorder may be nil.
func NewService(repo Repository, numbers corenum.Generator, recorder audit.Recorder) *Service {
	return &Service{repo: repo, numbers: numbers, audit: recorder, now: time.Now}
}

// Create plans a new trip and assigns it a trip number.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Trip, error) {
	tenantID, err := domain.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := security.GetScope(ctx).RequireWarehouse(in.WarehouseID); err != nil {
		return nil, err
	}

	number, err := s.numbers.Generate(ctx, corenum.Request{TenantID: tenantID, Kind: corenum.KindTrip})
	if err != nil {
		return nil, err
	}

	trip := &Trip{
		Base:        entity.NewBase(tenantID, s.now()),
		Number:      number,
		WarehouseID: in.WarehouseID,
		VehicleNo:   in.VehicleNo,
		DriverName:  in.DriverName,
		Origin:      in.Origin,
		Destination: in.Destination,
		Status:      StatusPlanned,
	}

	if err := s.repo.Create(ctx, trip); err != nil {
		if errors.Is(err, ErrDuplicateNumber) {
			return nil, apperror.NewDuplicate("trip", "number", number)
		}
		return nil, apperror.NewInternal(err)
	}

	logger.Info(ctx, "trip created", "trip_id", trip.ID, "number", trip.Number)
	return trip, nil
}

// Get returns a trip visible to the caller.
func (s *Service) Get(ctx context.Context, tripID string) (*Trip, error) {
	tenantID, err := domain.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}
	trip, err := s.repo.GetByID(ctx, tenantID, tripID)
	if err != nil {
		return nil, domain.NormalizeGetErr(err, "trip", tripID)
	}
	if !security.GetScope(ctx).CanAccessWarehouse(trip.WarehouseID) {
		return nil, apperror.NewNotFound("trip", tripID)
	}
	return trip, nil
}

// List returns trips of the warehouses the caller may see.
func (s *Service) List(ctx context.Context, filter ListFilter) (*domain.ListResult[Trip], error) {
	tenantID, err := domain.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}
	filter.ListFilter = filter.ListFilter.Normalize()
	filter.WarehouseIDs = security.GetScope(ctx).FilterWarehouseIDs(filter.WarehouseIDs)

	result := &domain.ListResult[Trip]{Items: []Trip{}, Limit: filter.Limit, Offset: filter.Offset}
	if filter.WarehouseIDs != nil && len(filter.WarehouseIDs) == 0 {
		return result, nil
	}

	items, total, err := s.repo.List(ctx, tenantID, filter)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	result.Items = items
	result.TotalCount = total
	return result, nil
}

// UpdateStatus moves a trip along its lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, tripID string, next Status) (*Trip, error) {
	trip, err := s.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	prev := trip.Status
	if !prev.CanTransition(next) {
		return nil, apperror.NewInvalidTransition("trip", string(prev), string(next))
	}

	trip.Status = next
	trip.Touch(s.now())
	if err := s.repo.UpdateStatus(ctx, trip); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return nil, apperror.NewConflict("trip was modified by another request, reload and retry").
				WithDetail("trip_id", tripID)
		}
		return nil, apperror.NewInternal(err)
	}

	audit.Record(ctx, s.audit, audit.Entry{
		TenantID:   trip.TenantID,
		EntityType: "trip",
		EntityID:   trip.ID,
		Action:     audit.ActionTripStatus,
		Changes:    map[string]any{"status": map[string]any{"old": prev, "new": next}},
	})
	return trip, nil
}
