package tenant

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Registry provides access to tenant metadata.
type Registry interface {
	// GetByID retrieves tenant by UUID string.
	GetByID(ctx context.Context, tenantID string) (*Tenant, error)

	// ListActive returns all active tenants.
	ListActive(ctx context.Context) ([]*Tenant, error)

	// ListAll returns all tenants.
	ListAll(ctx context.Context) ([]*Tenant, error)

	// Create inserts a new tenant row and populates t.ID.
	Create(ctx context.Context, t *Tenant) error

	// UpdateStatusByID updates tenant status by UUID string.
	UpdateStatusByID(ctx context.Context, tenantID string, status Status) error
}

// DB is the subset of pgxpool.Pool used by the registry.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const tenantColumns = `id, slug, display_name, status, created_at`

// PostgresRegistry implements Registry on the tenants table.
type PostgresRegistry struct {
	db DB
}

func NewPostgresRegistry(db DB) *PostgresRegistry {
	return &PostgresRegistry{db: db}
}

func (r *PostgresRegistry) GetByID(ctx context.Context, tenantID string) (*Tenant, error) {
	var t Tenant
	err := pgxscan.Get(ctx, r.db, &t, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, tenantID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("get tenant by id: %w", err)
	}
	return &t, nil
}

func (r *PostgresRegistry) ListActive(ctx context.Context) ([]*Tenant, error) {
	var tenants []*Tenant
	err := pgxscan.Select(ctx, r.db, &tenants,
		`SELECT `+tenantColumns+` FROM tenants WHERE status = $1 ORDER BY slug`, StatusActive)
	if err != nil {
		return nil, fmt.Errorf("list active tenants: %w", err)
	}
	return tenants, nil
}

func (r *PostgresRegistry) ListAll(ctx context.Context) ([]*Tenant, error) {
	var tenants []*Tenant
	err := pgxscan.Select(ctx, r.db, &tenants, `SELECT `+tenantColumns+` FROM tenants ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	return tenants, nil
}

func (r *PostgresRegistry) Create(ctx context.Context, t *Tenant) error {
	if t == nil {
		return fmt.Errorf("tenant is nil")
	}
	if t.Status == "" {
		t.Status = StatusActive
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO tenants (slug, display_name, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, t.Slug, t.DisplayName, t.Status).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("create tenant: %w", err)
	}
	return nil
}

func (r *PostgresRegistry) UpdateStatusByID(ctx context.Context, tenantID string, status Status) error {
	tag, err := r.db.Exec(ctx, `UPDATE tenants SET status = $2 WHERE id = $1`, tenantID, status)
	if err != nil {
		return fmt.Errorf("update tenant status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTenantNotFound
	}
	return nil
}

var _ Registry = (*PostgresRegistry)(nil)

type cachedTenant struct {
	tenant   *Tenant
	loadedAt time.Time
}

// CachedRegistry keeps GetByID results for ttl so the per-request tenant
// lookup does not hit the database. Writes go through and drop the entry.
type CachedRegistry struct {
	Registry

	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]cachedTenant
}

// NewCachedRegistry wraps next with a TTL cache.
func NewCachedRegistry(next Registry, ttl time.Duration) *CachedRegistry {
	return &CachedRegistry{
		Registry: next,
		ttl:      ttl,
		now:      time.Now,
		entries:  make(map[string]cachedTenant),
	}
}

func (c *CachedRegistry) GetByID(ctx context.Context, tenantID string) (*Tenant, error) {
	c.mu.RLock()
	e, ok := c.entries[tenantID]
	c.mu.RUnlock()
	if ok && c.now().Sub(e.loadedAt) < c.ttl {
		return e.tenant, nil
	}

	t, err := c.Registry.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[tenantID] = cachedTenant{tenant: t, loadedAt: c.now()}
	c.mu.Unlock()
	return t, nil
}

func (c *CachedRegistry) UpdateStatusByID(ctx context.Context, tenantID string, status Status) error {
	c.mu.Lock()
	delete(c.entries, tenantID)
	c.mu.Unlock()
	return c.Registry.UpdateStatusByID(ctx, tenantID, status)
}
