// Package entity provides fields shared by all tenant-owned records.
package entity

import (
	"time"

	"logistix/internal/core/id"
)

// Base contains common fields for all tenant-owned entities.
type Base struct {
	// ID is the primary key (UUIDv7)
	ID string `db:"id" json:"id"`

	// TenantID partitions every row; all queries filter on it.
	TenantID string `db:"tenant_id" json:"-"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBase creates a Base with a fresh ID owned by tenantID.
func NewBase(tenantID string, now time.Time) Base {
	now = now.UTC()
	return Base{
		ID:        id.NewString(),
		TenantID:  tenantID,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch increments version and refreshes UpdatedAt.
func (b *Base) Touch(now time.Time) {
	b.Version++
	b.UpdatedAt = now.UTC()
}
