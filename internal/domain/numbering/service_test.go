package numbering

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logistix/internal/core/apperror"
	corenum "logistix/internal/core/numbering"
	"logistix/internal/domain/settings"
)

// --- in-memory stores ---

type memCounters struct {
	mu     sync.Mutex
	values map[string]int64
	err    error
}

func newMemCounters() *memCounters {
	return &memCounters{values: make(map[string]int64)}
}

func (m *memCounters) IncrementAndGet(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.values[key]++
	return m.values[key], nil
}

func (m *memCounters) get(key string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

type memTrips struct {
	mu   sync.Mutex
	seqs map[string]int64 // tenant/trip -> invoice_seq
}

func newMemTrips(tenantID string, tripIDs ...string) *memTrips {
	m := &memTrips{seqs: make(map[string]int64)}
	for _, id := range tripIDs {
		m.seqs[tenantID+"/"+id] = 0
	}
	return m
}

func (m *memTrips) NextSeq(_ context.Context, tenantID, tripID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := tenantID + "/" + tripID
	cur, ok := m.seqs[key]
	if !ok {
		return 0, corenum.ErrScopeNotFound
	}
	m.seqs[key] = cur + 1
	return cur + 1, nil
}

func (m *memTrips) CheckScope(_ context.Context, tenantID, tripID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seqs[tenantID+"/"+tripID]; !ok {
		return corenum.ErrScopeNotFound
	}
	return nil
}

type memTemplates struct {
	mu   sync.Mutex
	data map[string]corenum.Template
}

func newMemTemplates() *memTemplates {
	return &memTemplates{data: make(map[string]corenum.Template)}
}

func (m *memTemplates) GetTemplate(_ context.Context, tenantID string, kind corenum.Kind) (corenum.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.data[tenantID+":"+string(kind)]
	if !ok {
		return corenum.Template{}, corenum.ErrConfigurationMissing
	}
	return t, nil
}

func (m *memTemplates) SaveTemplate(_ context.Context, tenantID string, kind corenum.Kind, t corenum.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[tenantID+":"+string(kind)] = t
	return nil
}

type recordingObserver struct {
	mu      sync.Mutex
	reasons []string
}

func (r *recordingObserver) ObserveGenerate(_ corenum.Kind, reason string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons = append(r.reasons, reason)
}

type fixture struct {
	svc       *Service
	counters  *memCounters
	trips     *memTrips
	templates *memTemplates
}

var feb2026 = time.Date(2026, time.February, 10, 9, 30, 0, 0, time.UTC)

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		counters:  newMemCounters(),
		trips:     newMemTrips("t1", "trip-a", "trip-b"),
		templates: newMemTemplates(),
	}
	opts = append([]Option{WithClock(func() time.Time { return feb2026 })}, opts...)
	f.svc = NewService(settings.NewService(f.templates), f.counters, f.trips, opts...)
	return f
}

func (f *fixture) use(tenantID string, kind corenum.Kind, tmpl corenum.Template) {
	f.templates.data[tenantID+":"+string(kind)] = tmpl
}

func invoice(tenantID string) corenum.Request {
	return corenum.Request{TenantID: tenantID, Kind: corenum.KindInvoice}
}

func lastPart(s string) string {
	return s[strings.LastIndex(s, "-")+1:]
}

// --- properties ---

func TestGenerate_Monotonic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 1; i <= 25; i++ {
		got, err := f.svc.Generate(ctx, invoice("t1"))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("%03d", i), lastPart(got))
	}
}

func TestGenerate_UniqueUnderConcurrency(t *testing.T) {
	f := newFixture(t)
	const k = 64

	var wg sync.WaitGroup
	results := make(chan string, k)
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := f.svc.Generate(context.Background(), invoice("t1"))
			if err == nil {
				results <- n
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool, k)
	for n := range results {
		assert.False(t, seen[n], "duplicate number %s", n)
		seen[n] = true
	}
	assert.Len(t, seen, k)
	assert.Equal(t, int64(k), f.counters.get("invoice_seq_t1"))
}

func TestGenerate_TenantIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := f.svc.Generate(ctx, invoice("tenant-a"))
		require.NoError(t, err)
	}
	got, err := f.svc.Generate(ctx, invoice("tenant-b"))

	require.NoError(t, err)
	assert.Equal(t, "INV-2026-001", got)
}

func TestGenerate_TripScoping(t *testing.T) {
	f := newFixture(t)
	f.use("t1", corenum.KindInvoice, corenum.Template{
		Segments:  []corenum.Segment{corenum.Static{Value: "TI"}, corenum.TripSeq{Digits: 3}},
		Separator: "-",
	})
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := f.svc.Generate(ctx, corenum.Request{TenantID: "t1", Kind: corenum.KindInvoice, ScopeID: "trip-a"})
		require.NoError(t, err)
	}
	got, err := f.svc.Generate(ctx, corenum.Request{TenantID: "t1", Kind: corenum.KindInvoice, ScopeID: "trip-b"})

	require.NoError(t, err)
	assert.Equal(t, "TI-001", got)
}

func TestGenerate_PaddingNeverTruncates(t *testing.T) {
	f := newFixture(t)
	f.counters.values["invoice_seq_t1"] = 999

	got, err := f.svc.Generate(context.Background(), invoice("t1"))

	require.NoError(t, err)
	assert.Equal(t, "INV-2026-1000", got)
}

func TestPreview_DoesNotAdvanceCounters(t *testing.T) {
	f := newFixture(t)
	tmpl := corenum.DefaultTemplate(corenum.KindInvoice)

	for i := 0; i < 10; i++ {
		out, err := f.svc.Preview(tmpl)
		require.NoError(t, err)
		assert.Equal(t, "INV-2026-XXX", out)
	}
	got, err := f.svc.Generate(context.Background(), invoice("t1"))

	require.NoError(t, err)
	assert.Equal(t, "INV-2026-001", got)
}

func TestGenerate_DefaultTemplate(t *testing.T) {
	f := newFixture(t, WithClock(time.Now))
	pattern := regexp.MustCompile(`^INV-\d{4}-\d{3}$`)

	first, err := f.svc.Generate(context.Background(), invoice("tenant-x"))
	require.NoError(t, err)
	second, err := f.svc.Generate(context.Background(), invoice("tenant-x"))
	require.NoError(t, err)

	assert.Regexp(t, pattern, first)
	assert.Regexp(t, pattern, second)
	assert.Equal(t, first[:len(first)-3], second[:len(second)-3])
	assert.NotEqual(t, first, second)
}

func TestGenerate_DefaultTripTemplate(t *testing.T) {
	f := newFixture(t)

	got, err := f.svc.Generate(context.Background(), corenum.Request{TenantID: "t1", Kind: corenum.KindTrip})

	require.NoError(t, err)
	assert.Equal(t, "TRP-2026-0001", got)
	assert.Equal(t, int64(1), f.counters.get("trip_seq_t1"))
	assert.Zero(t, f.counters.get("invoice_seq_t1"))
}

func TestGenerate_FebruaryExample(t *testing.T) {
	f := newFixture(t)
	f.use("t1", corenum.KindInvoice, corenum.Template{
		Segments: []corenum.Segment{
			corenum.Static{Value: "S"}, corenum.Year{Digits: 2}, corenum.Month{Digits: 2}, corenum.GlobalSeq{Digits: 3},
		},
		Separator: "-",
	})
	f.counters.values["invoice_seq_t1"] = 4

	got, err := f.svc.Generate(context.Background(), invoice("t1"))

	require.NoError(t, err)
	assert.Equal(t, "S-26-02-005", got)
}

func TestGenerate_FreshTrip(t *testing.T) {
	f := newFixture(t)
	f.use("t1", corenum.KindInvoice, corenum.Template{Segments: []corenum.Segment{corenum.TripSeq{Digits: 3}}})
	req := corenum.Request{TenantID: "t1", Kind: corenum.KindInvoice, ScopeID: "trip-a"}

	first, err := f.svc.Generate(context.Background(), req)
	require.NoError(t, err)
	second, err := f.svc.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "001", first)
	assert.Equal(t, "002", second)
}

// --- errors ---

func tripAndGlobal() corenum.Template {
	return corenum.Template{
		Segments:  []corenum.Segment{corenum.Static{Value: "INV"}, corenum.TripSeq{Digits: 2}, corenum.GlobalSeq{Digits: 4}},
		Separator: "-",
	}
}

func TestGenerate_MissingScope(t *testing.T) {
	f := newFixture(t)
	f.use("t1", corenum.KindInvoice, tripAndGlobal())

	_, err := f.svc.Generate(context.Background(), invoice("t1"))

	assert.True(t, apperror.IsCode(err, apperror.CodeMissingScope))
	assert.ErrorIs(t, err, corenum.ErrMissingScope)
	assert.Zero(t, f.counters.get("invoice_seq_t1"))
}

func TestGenerate_ScopeNotFound(t *testing.T) {
	f := newFixture(t)
	f.use("t1", corenum.KindInvoice, tripAndGlobal())

	_, err := f.svc.Generate(context.Background(), corenum.Request{TenantID: "t1", Kind: corenum.KindInvoice, ScopeID: "nope"})

	assert.True(t, apperror.IsNotFound(err))
	assert.ErrorIs(t, err, corenum.ErrScopeNotFound)
	assert.Zero(t, f.counters.get("invoice_seq_t1"), "global counter must not move when the trip is missing")
}

func TestGenerate_TripOfOtherTenantIsNotFound(t *testing.T) {
	f := newFixture(t)
	f.use("t2", corenum.KindInvoice, tripAndGlobal())

	_, err := f.svc.Generate(context.Background(), corenum.Request{TenantID: "t2", Kind: corenum.KindInvoice, ScopeID: "trip-a"})

	assert.True(t, apperror.IsNotFound(err))
}

func TestGenerate_UnknownTripWithoutTripSeq(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Generate(ctx, corenum.Request{TenantID: "t1", Kind: corenum.KindInvoice, ScopeID: "no-such-trip"})

	assert.True(t, apperror.IsNotFound(err))
	assert.ErrorIs(t, err, corenum.ErrScopeNotFound)
	assert.Zero(t, f.counters.get("invoice_seq_t1"))

	got, err := f.svc.Generate(ctx, corenum.Request{TenantID: "t1", Kind: corenum.KindInvoice, ScopeID: "trip-a"})
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-001", got)
	assert.Zero(t, f.trips.seqs["t1/trip-a"], "trip sequence is untouched without a TripSeq segment")
}

func TestGenerate_TripAndGlobal(t *testing.T) {
	f := newFixture(t)
	f.use("t1", corenum.KindInvoice, tripAndGlobal())
	req := corenum.Request{TenantID: "t1", Kind: corenum.KindInvoice, ScopeID: "trip-b"}

	first, err := f.svc.Generate(context.Background(), req)
	require.NoError(t, err)
	second, err := f.svc.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "INV-01-0001", first)
	assert.Equal(t, "INV-02-0002", second)
}

func TestGenerate_InvalidStoredTemplate(t *testing.T) {
	f := newFixture(t)
	f.use("t1", corenum.KindInvoice, corenum.Template{
		Segments:  []corenum.Segment{corenum.GlobalSeq{Digits: 3}, corenum.GlobalSeq{Digits: 3}},
		Separator: "-",
	})

	_, err := f.svc.Generate(context.Background(), invoice("t1"))

	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidTemplate))
	assert.Zero(t, f.counters.get("invoice_seq_t1"))
}

func TestGenerate_StorageUnavailable(t *testing.T) {
	obs := &recordingObserver{}
	f := newFixture(t, WithObserver(obs))
	f.counters.err = errors.New("dial tcp: connection refused")

	_, err := f.svc.Generate(context.Background(), invoice("t1"))

	assert.True(t, apperror.IsCode(err, apperror.CodeStorageUnavailable))
	assert.Equal(t, []string{ReasonStorage}, obs.reasons)
}

func TestGenerate_RequiresTenant(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Generate(context.Background(), corenum.Request{})

	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestGenerate_ObserverSeesSuccess(t *testing.T) {
	obs := &recordingObserver{}
	f := newFixture(t, WithObserver(obs))

	_, err := f.svc.Generate(context.Background(), invoice("t1"))

	require.NoError(t, err)
	assert.Equal(t, []string{""}, obs.reasons)
}
