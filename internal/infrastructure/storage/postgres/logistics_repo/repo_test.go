package logistics_repo

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logistix/internal/core/id"
	corenum "logistix/internal/core/numbering"
	"logistix/internal/domain"
	"logistix/internal/domain/shipments"
	"logistix/internal/domain/trips"
	"logistix/internal/infrastructure/storage/postgres"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	*dest[0].(*int64) = m.val
	return nil
}

// mockQuerier records the last statement and answers QueryRow with row.
type mockQuerier struct {
	row      *mockRow
	affected int64
	lastSQL  string
	lastArgs []any
}

func (m *mockQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.lastSQL, m.lastArgs = sql, args
	if m.affected == 0 {
		return pgconn.NewCommandTag("UPDATE 0"), nil
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (m *mockQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not supported")
}

func (m *mockQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	m.lastSQL, m.lastArgs = sql, args
	return m.row
}

type provider struct{ q postgres.Querier }

func (p provider) GetQuerier(context.Context) postgres.Querier { return p.q }

func TestListTripsQuery(t *testing.T) {
	tests := []struct {
		name     string
		filter   trips.ListFilter
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "tenant only",
			filter:   trips.ListFilter{},
			wantSQL:  "SELECT COUNT(*) FROM trips WHERE tenant_id = $1",
			wantArgs: []any{"t1"},
		},
		{
			name:     "status and warehouses",
			filter:   trips.ListFilter{Status: trips.StatusPlanned, WarehouseIDs: []string{"w1", "w2"}},
			wantSQL:  "SELECT COUNT(*) FROM trips WHERE tenant_id = $1 AND status = $2 AND warehouse_id IN ($3,$4)",
			wantArgs: []any{"t1", "planned", "w1", "w2"},
		},
		{
			name:     "empty warehouse scope matches nothing",
			filter:   trips.ListFilter{WarehouseIDs: []string{}},
			wantSQL:  "SELECT COUNT(*) FROM trips WHERE tenant_id = $1 AND (1=0)",
			wantArgs: []any{"t1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := countQuery(listTripsQuery("t1", tt.filter)).ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestPageQuery(t *testing.T) {
	page := domain.ListFilter{Limit: 20, Offset: 40}
	sql, _, err := pageQuery(listShipmentsQuery("t1", shipments.ListFilter{TripID: "trip-1"}), page).ToSql()

	require.NoError(t, err)
	assert.Contains(t, sql, "FROM shipments WHERE tenant_id = $1 AND trip_id = $2")
	assert.Contains(t, sql, "ORDER BY created_at DESC, id DESC LIMIT 20 OFFSET 40")
	assert.Contains(t, sql, "piece_barcodes")
}

func TestTripRepo_NextSeq(t *testing.T) {
	tripID := id.NewString()
	q := &mockQuerier{row: &mockRow{val: 7}}
	repo := NewTripRepo(provider{q})

	seq, err := repo.NextSeq(context.Background(), "t1", tripID)

	require.NoError(t, err)
	assert.Equal(t, int64(7), seq)
	assert.Equal(t, "UPDATE trips SET invoice_seq = invoice_seq + 1 WHERE id = $1 AND tenant_id = $2 RETURNING invoice_seq", q.lastSQL)
	assert.Equal(t, []any{tripID, "t1"}, q.lastArgs)
}

func TestTripRepo_NextSeq_ScopeNotFound(t *testing.T) {
	q := &mockQuerier{row: &mockRow{err: pgx.ErrNoRows}}
	repo := NewTripRepo(provider{q})

	_, err := repo.NextSeq(context.Background(), "t1", id.NewString())
	assert.ErrorIs(t, err, corenum.ErrScopeNotFound)

	_, err = repo.NextSeq(context.Background(), "t1", "not-a-uuid")
	assert.ErrorIs(t, err, corenum.ErrScopeNotFound)

	_, err = repo.NextShipmentSeq(context.Background(), "t1", id.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripRepo_CheckScope(t *testing.T) {
	tripID := id.NewString()
	q := &mockQuerier{row: &mockRow{val: 1}}
	repo := NewTripRepo(provider{q})

	require.NoError(t, repo.CheckScope(context.Background(), "t1", tripID))
	assert.Equal(t, "SELECT 1 FROM trips WHERE id = $1 AND tenant_id = $2", q.lastSQL)
	assert.Equal(t, []any{tripID, "t1"}, q.lastArgs)

	q.row = &mockRow{err: pgx.ErrNoRows}
	assert.ErrorIs(t, repo.CheckScope(context.Background(), "t1", tripID), corenum.ErrScopeNotFound)
	assert.ErrorIs(t, repo.CheckScope(context.Background(), "t1", "not-a-uuid"), corenum.ErrScopeNotFound)

	boom := errors.New("connection reset")
	q.row = &mockRow{err: boom}
	assert.ErrorIs(t, repo.CheckScope(context.Background(), "t1", tripID), boom)
}

func TestTripRepo_NextSeq_StorageError(t *testing.T) {
	boom := errors.New("connection reset")
	repo := NewTripRepo(provider{&mockQuerier{row: &mockRow{err: boom}}})

	_, err := repo.NextShipmentSeq(context.Background(), "t1", id.NewString())

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestTripRepo_UpdateStatus_VersionGuard(t *testing.T) {
	q := &mockQuerier{}
	repo := NewTripRepo(provider{q})
	trip := &trips.Trip{Status: trips.StatusInTransit}
	trip.ID, trip.TenantID, trip.Version = "trip-1", "t1", 4

	err := repo.UpdateStatus(context.Background(), trip)
	assert.ErrorIs(t, err, trips.ErrVersionConflict)
	assert.Contains(t, q.lastSQL, "WHERE id = $4 AND tenant_id = $5 AND version = $6")
	assert.Equal(t, 3, q.lastArgs[5])

	q.affected = 1
	assert.NoError(t, repo.UpdateStatus(context.Background(), trip))
}
