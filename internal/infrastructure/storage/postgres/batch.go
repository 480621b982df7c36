package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// ErrNoTransaction is returned by bulk operations called outside RunInTransaction.
var ErrNoTransaction = errors.New("bulk insert requires a transaction in context")

// TxProvider exposes the transaction stored in ctx; *TxManager satisfies it.
type TxProvider interface {
	GetTx(ctx context.Context) pgx.Tx
}

// BatchInserter bulk-loads rows with the COPY protocol.
// It only works inside a transaction so a failed load leaves nothing behind.
type BatchInserter struct {
	txs TxProvider
}

// NewBatchInserter creates a new batch inserter.
func NewBatchInserter(txs TxProvider) *BatchInserter {
	return &BatchInserter{txs: txs}
}

// InTransaction reports whether ctx carries a transaction COPY can use.
func (b *BatchInserter) InTransaction(ctx context.Context) bool {
	return b != nil && b.txs != nil && b.txs.GetTx(ctx) != nil
}

// CopyFromSlice inserts rows (each matching columns) into table.
func (b *BatchInserter) CopyFromSlice(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if !b.InTransaction(ctx) {
		return 0, ErrNoTransaction
	}
	return b.txs.GetTx(ctx).CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
}
