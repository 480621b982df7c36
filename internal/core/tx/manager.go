// Package tx defines the transaction contract used by domain services.
// The implementation lives in infrastructure/storage/postgres.
package tx

import "context"

// Manager runs work inside a database transaction.
//
// If fn returns an error, the transaction is rolled back; otherwise it is
// committed. Nested calls reuse the transaction already in context, so a
// service can compose repository calls without knowing who opened it.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
