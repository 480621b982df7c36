package postgres

import (
	"context"
	_ "embed"
	"fmt"
)

// Schema is the reference DDL for every table the service uses.
//
//go:embed schema.sql
var Schema string

// ApplySchema executes Schema. The statements are idempotent, so applying
// twice is harmless; there is no migration history.
func ApplySchema(ctx context.Context, db Querier) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
