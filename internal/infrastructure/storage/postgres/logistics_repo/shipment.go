package logistics_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"logistix/internal/domain/shipments"
	"logistix/internal/infrastructure/storage/postgres"
)

const shipmentsTable = "shipments"

var shipmentColumns = postgres.ExtractDBColumns[shipments.Shipment]()

var _ shipments.Repository = (*ShipmentRepo)(nil)

// ShipmentRepo implements shipments.Repository.
type ShipmentRepo struct {
	db postgres.QuerierProvider
}

// NewShipmentRepo creates a shipment repository.
func NewShipmentRepo(db postgres.QuerierProvider) *ShipmentRepo {
	return &ShipmentRepo{db: db}
}

// Create inserts a shipment.
func (r *ShipmentRepo) Create(ctx context.Context, s *shipments.Shipment) error {
	sql, args, err := postgres.Builder().
		Insert(shipmentsTable).
		SetMap(postgres.InsertMap(s, shipmentColumns)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.db.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert shipment: %w", err)
	}
	return nil
}

func listShipmentsQuery(tenantID string, f shipments.ListFilter) squirrel.SelectBuilder {
	q := postgres.Builder().
		Select(shipmentColumns...).
		From(shipmentsTable).
		Where(squirrel.Eq{"tenant_id": tenantID})
	if f.TripID != "" {
		q = q.Where(squirrel.Eq{"trip_id": f.TripID})
	}
	if f.WarehouseIDs != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": f.WarehouseIDs})
	}
	return q
}

// List returns a page of shipments with the total count.
func (r *ShipmentRepo) List(ctx context.Context, tenantID string, f shipments.ListFilter) ([]shipments.Shipment, int64, error) {
	items := []shipments.Shipment{}
	total, err := selectPage(ctx, r.db.GetQuerier(ctx), listShipmentsQuery(tenantID, f), f.ListFilter, &items)
	if err != nil {
		return nil, 0, fmt.Errorf("list shipments: %w", err)
	}
	return items, total, nil
}
