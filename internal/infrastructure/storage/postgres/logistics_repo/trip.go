// Package logistics_repo provides PostgreSQL storage for trips and shipments.
// Every query filters on tenant_id; rows of other tenants behave as absent.
package logistics_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"logistix/internal/core/id"
	corenum "logistix/internal/core/numbering"
	"logistix/internal/domain"
	"logistix/internal/domain/trips"
	"logistix/internal/infrastructure/storage/postgres"
)

const tripsTable = "trips"

var tripColumns = postgres.ExtractDBColumns[trips.Trip]()

var (
	_ trips.Repository   = (*TripRepo)(nil)
	_ corenum.ScopeStore = (*TripRepo)(nil)
)

// TripRepo implements trips.Repository and the trip scope store used by
// TripSeq numbering segments.
type TripRepo struct {
	db postgres.QuerierProvider
}

// NewTripRepo creates a trip repository.
func NewTripRepo(db postgres.QuerierProvider) *TripRepo {
	return &TripRepo{db: db}
}

// Create inserts a trip.
func (r *TripRepo) Create(ctx context.Context, t *trips.Trip) error {
	sql, args, err := postgres.Builder().
		Insert(tripsTable).
		SetMap(postgres.InsertMap(t, tripColumns)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.db.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err, "trips_tenant_number_key") {
			return trips.ErrDuplicateNumber
		}
		return fmt.Errorf("insert trip: %w", err)
	}
	return nil
}

// GetByID loads one trip.
func (r *TripRepo) GetByID(ctx context.Context, tenantID, tripID string) (*trips.Trip, error) {
	if !id.IsValid(tripID) {
		return nil, domain.ErrNotFound
	}
	sql, args, err := postgres.Builder().
		Select(tripColumns...).
		From(tripsTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "id": tripID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var t trips.Trip
	if err := pgxscan.Get(ctx, r.db.GetQuerier(ctx), &t, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get trip: %w", err)
	}
	return &t, nil
}

// listTripsQuery builds the filtered SELECT without paging.
func listTripsQuery(tenantID string, f trips.ListFilter) squirrel.SelectBuilder {
	q := postgres.Builder().
		Select(tripColumns...).
		From(tripsTable).
		Where(squirrel.Eq{"tenant_id": tenantID})
	if f.Status != "" {
		q = q.Where(squirrel.Eq{"status": string(f.Status)})
	}
	if f.WarehouseIDs != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": f.WarehouseIDs})
	}
	return q
}

// List returns a page of trips, newest first, with the total count.
func (r *TripRepo) List(ctx context.Context, tenantID string, f trips.ListFilter) ([]trips.Trip, int64, error) {
	base := listTripsQuery(tenantID, f)
	items := []trips.Trip{}
	total, err := selectPage(ctx, r.db.GetQuerier(ctx), base, f.ListFilter, &items)
	if err != nil {
		return nil, 0, fmt.Errorf("list trips: %w", err)
	}
	return items, total, nil
}

// UpdateStatus writes status and version when the stored version is t.Version-1.
func (r *TripRepo) UpdateStatus(ctx context.Context, t *trips.Trip) error {
	sql, args, err := postgres.Builder().
		Update(tripsTable).
		Set("status", string(t.Status)).
		Set("version", t.Version).
		Set("updated_at", t.UpdatedAt).
		Where(squirrel.Eq{"tenant_id": t.TenantID, "id": t.ID, "version": t.Version - 1}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.db.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update trip status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return trips.ErrVersionConflict
	}
	return nil
}

// NextSeq implements corenum.ScopeStore over trips.invoice_seq.
// The UPDATE takes the row lock, so concurrent invoices on one trip are
// serialized and never share a value.
func (r *TripRepo) NextSeq(ctx context.Context, tenantID, tripID string) (int64, error) {
	seq, err := r.bump(ctx, "invoice_seq", tenantID, tripID)
	if errors.Is(err, domain.ErrNotFound) {
		return 0, corenum.ErrScopeNotFound
	}
	return seq, err
}

// CheckScope implements corenum.ScopeStore.
func (r *TripRepo) CheckScope(ctx context.Context, tenantID, tripID string) error {
	if !id.IsValid(tripID) {
		return corenum.ErrScopeNotFound
	}
	var one int64
	err := r.db.GetQuerier(ctx).QueryRow(ctx,
		`SELECT 1 FROM trips WHERE id = $1 AND tenant_id = $2`, tripID, tenantID).Scan(&one)
	if postgres.IsNoRows(err) {
		return corenum.ErrScopeNotFound
	}
	if err != nil {
		return fmt.Errorf("check trip: %w", err)
	}
	return nil
}

// NextShipmentSeq increments trips.shipment_seq.
func (r *TripRepo) NextShipmentSeq(ctx context.Context, tenantID, tripID string) (int64, error) {
	return r.bump(ctx, "shipment_seq", tenantID, tripID)
}

func (r *TripRepo) bump(ctx context.Context, column, tenantID, tripID string) (int64, error) {
	if !id.IsValid(tripID) {
		return 0, domain.ErrNotFound
	}
	query := fmt.Sprintf(
		`UPDATE trips SET %[1]s = %[1]s + 1 WHERE id = $1 AND tenant_id = $2 RETURNING %[1]s`, column)

	var seq int64
	err := r.db.GetQuerier(ctx).QueryRow(ctx, query, tripID, tenantID).Scan(&seq)
	if postgres.IsNoRows(err) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("increment %s: %w", column, err)
	}
	return seq, nil
}
