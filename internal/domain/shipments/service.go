package shipments

import (
	"context"
	"time"

	"logistix/internal/core/apperror"
	"logistix/internal/core/entity"
	"logistix/internal/core/id"
	"logistix/internal/core/security"
	"logistix/internal/core/tx"
	"logistix/internal/domain"
	"logistix/internal/domain/trips"
	"logistix/pkg/logger"
)

// Repository persists shipments.
type Repository interface {
	Create(ctx context.Context, s *Shipment) error
	List(ctx context.Context, tenantID string, filter ListFilter) ([]Shipment, int64, error)
}

// TripStore is the part of the trip repository shipments need.
type TripStore interface {
	GetByID(ctx context.Context, tenantID, tripID string) (*trips.Trip, error)
	NextShipmentSeq(ctx context.Context, tenantID, tripID string) (int64, error)
}

// Service implements shipment use cases.
type Service struct {
	repo  Repository
	trips TripStore
	txm   tx.Manager
	now   func() time.Time
}

// NewService creates a shipment service.
func NewService(repo Repository, tripStore TripStore, txm tx.Manager) *Service {
	return &Service{repo: repo, trips: tripStore, txm: txm, now: time.Now}
}

// Create loads a shipment onto a planned trip.
// The shipment sequence increment and the insert share one transaction, so
// barcodes on a trip have no gaps.
func (s *Service) Create(ctx context.Context, tripID string, in CreateInput) (*Shipment, error) {
	tenantID, err := domain.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var shipment *Shipment
	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		trip, err := s.trips.GetByID(ctx, tenantID, tripID)
		if err != nil {
			return domain.NormalizeGetErr(err, "trip", tripID)
		}
		if !security.GetScope(ctx).CanAccessWarehouse(trip.WarehouseID) {
			return apperror.NewNotFound("trip", tripID)
		}
		if !trip.Status.AcceptsShipments() {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule, "shipments can only be added to planned trips").
				WithDetail("status", string(trip.Status))
		}

		seq, err := s.trips.NextShipmentSeq(ctx, tenantID, tripID)
		if err != nil {
			return domain.NormalizeGetErr(err, "trip", tripID)
		}

		barcode := Barcode(trip.Number, seq)
		shipment = &Shipment{
			Base:          entity.NewBase(tenantID, s.now()),
			TripID:        trip.ID,
			WarehouseID:   trip.WarehouseID,
			ClientName:    in.ClientName,
			WeightKg:      in.WeightKg,
			Rate:          in.Rate,
			Amount:        Amount(in.Rate, in.WeightKg),
			Pieces:        in.Pieces,
			Barcode:       barcode,
			PieceBarcodes: PieceBarcodes(barcode, in.Pieces),
		}
		return s.repo.Create(ctx, shipment)
	})
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.NewInternal(err)
	}

	logger.Info(ctx, "shipment created", "trip_id", tripID, "barcode", shipment.Barcode, "amount", shipment.Amount.String())
	return shipment, nil
}

// List returns shipments of visible warehouses.
func (s *Service) List(ctx context.Context, filter ListFilter) (*domain.ListResult[Shipment], error) {
	tenantID, err := domain.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}
	filter.ListFilter = filter.ListFilter.Normalize()
	if filter.TripID != "" && !id.IsValid(filter.TripID) {
		return nil, apperror.NewValidation("tripId must be a UUID").WithDetail("field", "tripId")
	}
	filter.WarehouseIDs = security.GetScope(ctx).FilterWarehouseIDs(filter.WarehouseIDs)

	result := &domain.ListResult[Shipment]{Items: []Shipment{}, Limit: filter.Limit, Offset: filter.Offset}
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
