package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"logistix/internal/core/entity"
)

type mockTrip struct {
	entity.Base
	Number string   `db:"number"`
	Notes  string   `db:"-"`
	Tags   []string `db:"tags"`
}

func TestExtractDBColumns_Embedded(t *testing.T) {
	cols := ExtractDBColumns[mockTrip]()

	assert.Equal(t, []string{"id", "tenant_id", "version", "created_at", "updated_at", "number", "tags"}, cols)
}

func TestStructToMap_Embedded(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	trip := mockTrip{
		Base:   entity.Base{ID: "id-1", TenantID: "t1", Version: 3, CreatedAt: now, UpdatedAt: now},
		Number: "TRP-2026-0001",
		Notes:  "ignored",
		Tags:   []string{"cold"},
	}

	m := StructToMap(&trip)

	assert.Equal(t, "id-1", m["id"])
	assert.Equal(t, "t1", m["tenant_id"])
	assert.Equal(t, 3, m["version"])
	assert.Equal(t, now, m["created_at"])
	assert.Equal(t, "TRP-2026-0001", m["number"])
	assert.Equal(t, []string{"cold"}, m["tags"])
	assert.NotContains(t, m, "Notes")
	assert.Nil(t, StructToMap(42))
}

func TestInsertMap_RestrictsColumns(t *testing.T) {
	trip := mockTrip{Base: entity.Base{ID: "id-1", TenantID: "t1"}, Number: "N"}

	m := InsertMap(trip, []string{"id", "number", "missing"})

	assert.Equal(t, map[string]any{"id": "id-1", "number": "N"}, m)
}
