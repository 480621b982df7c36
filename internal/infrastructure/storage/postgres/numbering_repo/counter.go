// Package numbering_repo provides PostgreSQL storage for numbering counters
// and templates.
package numbering_repo

import (
	"context"
	"fmt"

	corenum "logistix/internal/core/numbering"
	"logistix/internal/infrastructure/storage/postgres"
)

var _ corenum.CounterStore = (*CounterRepo)(nil)

// CounterRepo keeps named counters in sys_counters.
// Every statement runs on the querier in ctx, so counters join the
// caller's transaction when there is one.
type CounterRepo struct {
	db postgres.QuerierProvider
}

// NewCounterRepo creates a counter repository.
func NewCounterRepo(db postgres.QuerierProvider) *CounterRepo {
	return &CounterRepo{db: db}
}

// IncrementAndGet atomically bumps key and returns the new value.
// The upsert holds the row lock until the statement (or the enclosing
// transaction) ends, so concurrent callers are serialized per key.
func (r *CounterRepo) IncrementAndGet(ctx context.Context, key string) (int64, error) {
	const query = `
		INSERT INTO sys_counters (key, value, updated_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = sys_counters.value + 1, updated_at = NOW()
		RETURNING value
	`
	var value int64
	if err := r.db.GetQuerier(ctx).QueryRow(ctx, query, key).Scan(&value); err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", key, err)
	}
	return value, nil
}

// Set forces a counter to value; the next IncrementAndGet returns value+1.
// Used when a tenant migrates from another system.
func (r *CounterRepo) Set(ctx context.Context, key string, value int64) error {
	if value < 0 {
		return fmt.Errorf("counter %s: value must not be negative", key)
	}
	const query = `
		INSERT INTO sys_counters (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = NOW()
	`
	if _, err := r.db.GetQuerier(ctx).Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("set counter %s: %w", key, err)
	}
	return nil
}

// Get returns the last issued value, or 0 when the counter was never used.
func (r *CounterRepo) Get(ctx context.Context, key string) (int64, error) {
	var value int64
	err := r.db.GetQuerier(ctx).QueryRow(ctx, `SELECT value FROM sys_counters WHERE key = $1`, key).Scan(&value)
	if postgres.IsNoRows(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get counter %s: %w", key, err)
	}
	return value, nil
}
