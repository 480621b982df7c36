package shipments

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logistix/internal/core/apperror"
	appctx "logistix/internal/core/context"
	"logistix/internal/core/entity"
	"logistix/internal/core/tenant"
	"logistix/internal/core/types"
	"logistix/internal/domain"
	"logistix/internal/domain/trips"
)

type fakeTrips struct {
	mu    sync.Mutex
	trips map[string]*trips.Trip
}

func (f *fakeTrips) GetByID(_ context.Context, tenantID, tripID string) (*trips.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.trips[tripID]
	if !ok || t.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTrips) NextShipmentSeq(_ context.Context, tenantID, tripID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.trips[tripID]
	if !ok || t.TenantID != tenantID {
		return 0, domain.ErrNotFound
	}
	t.ShipmentSeq++
	return t.ShipmentSeq, nil
}

type memRepo struct {
	mu        sync.Mutex
	shipments []Shipment
	err       error
}

func (m *memRepo) Create(_ context.Context, s *Shipment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.shipments = append(m.shipments, *s)
	return nil
}

func (m *memRepo) List(_ context.Context, tenantID string, f ListFilter) ([]Shipment, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Shipment
	for _, s := range m.shipments {
		if s.TenantID != tenantID || (f.TripID != "" && s.TripID != f.TripID) {
			continue
		}
		if f.WarehouseIDs != nil && !contains(f.WarehouseIDs, s.WarehouseID) {
			continue
		}
		out = append(out, s)
	}
	return out, int64(len(out)), nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// passTx runs fn directly and counts transactions.
type passTx struct{ calls int }

func (p *passTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}

func ctxFor(tenantID, role string, warehouses ...string) context.Context {
	ctx := tenant.WithTenant(context.Background(), &tenant.Tenant{ID: tenantID, Status: tenant.StatusActive})
	return appctx.WithUser(ctx, &appctx.UserContext{UserID: "u-" + role, TenantID: tenantID, Role: role, WarehouseIDs: warehouses})
}

func setup() (*Service, *fakeTrips, *memRepo, *passTx) {
	ft := &fakeTrips{trips: map[string]*trips.Trip{
		"trip-1": {Base: entity.Base{ID: "trip-1", TenantID: "t1"}, Number: "TRP-2026-0007", WarehouseID: "w1", Status: trips.StatusPlanned},
		"trip-2": {Base: entity.Base{ID: "trip-2", TenantID: "t1"}, Number: "TRP-2026-0008", WarehouseID: "w2", Status: trips.StatusInTransit},
	}}
	repo := &memRepo{}
	txm := &passTx{}
	return NewService(repo, ft, txm), ft, repo, txm
}

func input(weight, rate string, pieces int) CreateInput {
	return CreateInput{
		ClientName: "Acme Traders",
		WeightKg:   decimal.RequireFromString(weight),
		Rate:       decimal.RequireFromString(rate),
		Pieces:     pieces,
	}
}

func TestBarcodes(t *testing.T) {
	assert.Equal(t, "TRP-2026-0007-001", Barcode("TRP-2026-0007", 1))
	assert.Equal(t, "TRP-2026-0007-1234", Barcode("TRP-2026-0007", 1234))
	assert.Equal(t, []string{"X-001-01/03", "X-001-02/03", "X-001-03/03"}, PieceBarcodes("X-001", 3))
}

func TestAmount_RoundsToCents(t *testing.T) {
	got := Amount(types.MustMoney("12.345"), decimal.RequireFromString("3"))
	assert.Equal(t, "37.04", got.StringFixed(2))
}

func TestCreate_AssignsSequentialBarcodes(t *testing.T) {
	svc, _, repo, txm := setup()
	ctx := ctxFor("t1", "manager")

	first, err := svc.Create(ctx, "trip-1", input("10.5", "4", 2))
	require.NoError(t, err)
	second, err := svc.Create(ctx, "trip-1", input("1", "1", 0))
	require.NoError(t, err)

	assert.Equal(t, "TRP-2026-0007-001", first.Barcode)
	assert.Equal(t, []string{"TRP-2026-0007-001-01/02", "TRP-2026-0007-001-02/02"}, first.PieceBarcodes)
	assert.Equal(t, "42.00", first.Amount.StringFixed(2))
	assert.Equal(t, "w1", first.WarehouseID)
	assert.Equal(t, "TRP-2026-0007-002", second.Barcode)
	assert.Equal(t, 1, second.Pieces)
	assert.Len(t, repo.shipments, 2)
	assert.Equal(t, 2, txm.calls)
}

func TestCreate_Rejections(t *testing.T) {
	svc, ft, _, _ := setup()

	_, err := svc.Create(ctxFor("t1", "manager"), "trip-2", input("1", "1", 1))
	assert.True(t, apperror.IsCode(err, apperror.CodeBusinessRule))

	_, err = svc.Create(ctxFor("t1", "warehouse", "w2"), "trip-1", input("1", "1", 1))
	assert.True(t, apperror.IsNotFound(err))

	_, err = svc.Create(ctxFor("t2", "admin"), "trip-1", input("1", "1", 1))
	assert.True(t, apperror.IsNotFound(err))

	_, err = svc.Create(ctxFor("t1", "manager"), "trip-1", input("0", "1", 1))
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	_, err = svc.Create(ctxFor("t1", "manager"), "trip-1", input("1", "1", MaxPieces+1))
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	assert.Zero(t, ft.trips["trip-1"].ShipmentSeq, "rejected shipments must not consume sequence numbers")
}

func TestCreate_RepositoryFailure(t *testing.T) {
	svc, _, repo, _ := setup()
	repo.err = errors.New("connection reset")

	_, err := svc.Create(ctxFor("t1", "manager"), "trip-1", input("1", "1", 1))

	assert.True(t, apperror.IsCode(err, apperror.CodeInternal))
}

func TestList_WarehouseScoped(t *testing.T) {
	svc, ft, _, _ := setup()
	ft.trips["trip-2"].Status = trips.StatusPlanned
	_, err := svc.Create(ctxFor("t1", "admin"), "trip-1", input("1", "1", 1))
	require.NoError(t, err)
	_, err = svc.Create(ctxFor("t1", "admin"), "trip-2", input("1", "1", 1))
	require.NoError(t, err)

	all, err := svc.List(ctxFor("t1", "accountant"), ListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.TotalCount)

	scoped, err := svc.List(ctxFor("t1", "warehouse", "w2"), ListFilter{})
	require.NoError(t, err)
	require.Len(t, scoped.Items, 1)
	assert.Equal(t, "trip-2", scoped.Items[0].TripID)

	none, err := svc.List(ctxFor("t1", "warehouse", "w2"), ListFilter{WarehouseIDs: []string{"w1"}})
	require.NoError(t, err)
	assert.Empty(t, none.Items)
}
