package settings

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logistix/internal/core/apperror"
	corenum "logistix/internal/core/numbering"
	"logistix/internal/domain/audit"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]corenum.Template
	err  error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]corenum.Template)}
}

func (m *memStore) GetTemplate(_ context.Context, tenantID string, kind corenum.Kind) (corenum.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return corenum.Template{}, m.err
	}
	t, ok := m.data[tenantID+":"+string(kind)]
	if !ok {
		return corenum.Template{}, corenum.ErrConfigurationMissing
	}
	return t, nil
}

func (m *memStore) SaveTemplate(_ context.Context, tenantID string, kind corenum.Kind, t corenum.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[tenantID+":"+string(kind)] = t
	return nil
}

func fixedClock() time.Time {
	return time.Date(2026, time.February, 3, 12, 0, 0, 0, time.UTC)
}

func TestResolve_DefaultsWhenMissing(t *testing.T) {
	svc := NewService(newMemStore())

	got, err := svc.Resolve(context.Background(), "t1", corenum.KindInvoice)

	require.NoError(t, err)
	assert.Equal(t, corenum.DefaultTemplate(corenum.KindInvoice), got)
}

func TestResolve_StorageError(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("connection refused")
	svc := NewService(store)

	_, err := svc.Resolve(context.Background(), "t1", corenum.KindInvoice)

	require.Error(t, err)
	assert.NotErrorIs(t, err, corenum.ErrConfigurationMissing)
}

func TestGetTemplate_ReportsDefault(t *testing.T) {
	svc := NewService(newMemStore()).WithClock(fixedClock)

	view, err := svc.GetTemplate(context.Background(), "t1", corenum.KindTrip)

	require.NoError(t, err)
	assert.True(t, view.IsDefault)
	assert.Equal(t, "TRP-2026-XXXX", view.Example)
}

func TestSaveTemplate(t *testing.T) {
	store := newMemStore()
	svc := NewService(store).WithClock(fixedClock)
	ctx := context.Background()
	tmpl := corenum.Template{
		Segments:  []corenum.Segment{corenum.Static{Value: "S"}, corenum.Year{Digits: 2}, corenum.Month{Digits: 2}, corenum.GlobalSeq{Digits: 3}},
		Separator: "-",
	}

	view, err := svc.SaveTemplate(ctx, "t1", corenum.KindInvoice, tmpl)
	require.NoError(t, err)
	assert.Equal(t, "S-26-02-XXX", view.Example)

	got, err := svc.Resolve(ctx, "t1", corenum.KindInvoice)
	require.NoError(t, err)
	assert.Equal(t, tmpl, got)

	// Other tenants keep the default.
	other, err := svc.GetTemplate(ctx, "t2", corenum.KindInvoice)
	require.NoError(t, err)
	assert.True(t, other.IsDefault)
}

func TestSaveTemplate_RejectsWithoutSequence(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	tmpl := corenum.Template{Segments: []corenum.Segment{corenum.Static{Value: "INV"}, corenum.Year{Digits: 4}}, Separator: "-"}

	_, err := svc.SaveTemplate(context.Background(), "t1", corenum.KindInvoice, tmpl)

	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidTemplate))
	assert.ErrorIs(t, err, corenum.ErrInvalidTemplate)
	assert.Empty(t, store.data)
}

func TestSaveTemplate_RejectsTripSeqForTrips(t *testing.T) {
	svc := NewService(newMemStore())
	tmpl := corenum.Template{Segments: []corenum.Segment{corenum.Static{Value: "TRP"}, corenum.TripSeq{Digits: 3}}, Separator: "-"}

	_, err := svc.SaveTemplate(context.Background(), "t1", corenum.KindTrip, tmpl)

	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidTemplate))
}

func TestPreview(t *testing.T) {
	svc := NewService(newMemStore()).WithClock(fixedClock)

	out, err := svc.Preview(corenum.DefaultTemplate(corenum.KindInvoice))
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-XXX", out)

	_, err = svc.Preview(corenum.Template{})
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidTemplate))
}

type auditLog []audit.Entry

func (a *auditLog) Record(_ context.Context, e audit.Entry) error {
	*a = append(*a, e)
	return nil
}

func TestSaveTemplate_Audited(t *testing.T) {
	var log auditLog
	svc := NewService(newMemStore()).WithAudit(&log)

	_, err := svc.SaveTemplate(context.Background(), "t1", corenum.KindTrip, corenum.DefaultTemplate(corenum.KindTrip))
	require.NoError(t, err)

	require.Len(t, log, 1)
	assert.Equal(t, audit.ActionTemplateSaved, log[0].Action)
	assert.Equal(t, "t1", log[0].TenantID)
	assert.Equal(t, "trip", log[0].EntityID)
}
