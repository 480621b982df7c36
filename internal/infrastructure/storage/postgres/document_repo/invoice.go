// Package document_repo provides PostgreSQL storage for invoices.
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"logistix/internal/core/id"
	"logistix/internal/domain"
	"logistix/internal/domain/invoices"
	"logistix/internal/infrastructure/storage/postgres"
)

const (
	invoicesTable = "invoices"
	linesTable    = "invoice_lines"
)

var (
	invoiceColumns = postgres.ExtractDBColumns[invoices.Invoice]()
	lineColumns    = postgres.ExtractDBColumns[invoices.Line]()
)

var _ invoices.Repository = (*InvoiceRepo)(nil)

// InvoiceRepo implements invoices.Repository.
type InvoiceRepo struct {
	db    postgres.QuerierProvider
	batch *postgres.BatchInserter
}

// NewInvoiceRepo creates an invoice repository. batch may be nil, in which
// case lines are written with a multi-row INSERT.
func NewInvoiceRepo(db postgres.QuerierProvider, batch *postgres.BatchInserter) *InvoiceRepo {
	return &InvoiceRepo{db: db, batch: batch}
}

// Create inserts the header and its lines.
func (r *InvoiceRepo) Create(ctx context.Context, inv *invoices.Invoice) error {
	sql, args, err := postgres.Builder().
		Insert(invoicesTable).
		SetMap(postgres.InsertMap(inv, invoiceColumns)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.db.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err, "invoices_tenant_number_key") {
			return invoices.ErrDuplicateNumber
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return r.insertLines(ctx, inv.Lines)
}

func (r *InvoiceRepo) insertLines(ctx context.Context, lines []invoices.Line) error {
	if len(lines) == 0 {
		return nil
	}
	if r.batch.InTransaction(ctx) {
		rows := make([][]any, len(lines))
		for i := range lines {
			rows[i] = lineValues(lines[i])
		}
		if _, err := r.batch.CopyFromSlice(ctx, linesTable, lineColumns, rows); err != nil {
			return fmt.Errorf("copy invoice lines: %w", err)
		}
		return nil
	}

	sql, args, err := insertLinesQuery(lines).ToSql()
	if err != nil {
		return fmt.Errorf("build lines insert: %w", err)
	}
	if _, err := r.db.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert invoice lines: %w", err)
	}
	return nil
}

func lineValues(l invoices.Line) []any {
	m := postgres.StructToMap(l)
	values := make([]any, len(lineColumns))
	for i, col := range lineColumns {
		values[i] = m[col]
	}
	return values
}

func insertLinesQuery(lines []invoices.Line) squirrel.InsertBuilder {
	q := postgres.Builder().Insert(linesTable).Columns(lineColumns...)
	for _, l := range lines {
		q = q.Values(lineValues(l)...)
	}
	return q
}

// GetByID loads an invoice with its lines.
func (r *InvoiceRepo) GetByID(ctx context.Context, tenantID, invoiceID string) (*invoices.Invoice, error) {
	if !id.IsValid(invoiceID) {
		return nil, domain.ErrNotFound
	}
	querier := r.db.GetQuerier(ctx)

	sql, args, err := postgres.Builder().
		Select(invoiceColumns...).
		From(invoicesTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "id": invoiceID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var inv invoices.Invoice
	if err := pgxscan.Get(ctx, querier, &inv, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}

	sql, args, err = postgres.Builder().
		Select(lineColumns...).
		From(linesTable).
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lines query: %w", err)
	}
	inv.Lines = []invoices.Line{}
	if err := pgxscan.Select(ctx, querier, &inv.Lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get invoice lines: %w", err)
	}
	return &inv, nil
}

func listQuery(tenantID string, f invoices.ListFilter) squirrel.SelectBuilder {
	q := postgres.Builder().
		Select(invoiceColumns...).
		From(invoicesTable).
		Where(squirrel.Eq{"tenant_id": tenantID})
	if f.Status != "" {
		q = q.Where(squirrel.Eq{"status": string(f.Status)})
	}
	if f.TripID != "" {
		q = q.Where(squirrel.Eq{"trip_id": f.TripID})
	}
	if f.ClientName != "" {
		q = q.Where(squirrel.ILike{"client_name": "%" + f.ClientName + "%"})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.Lt{"created_at": *f.To})
	}
	return q
}

// List returns a page of invoice headers, newest first.
func (r *InvoiceRepo) List(ctx context.Context, tenantID string, f invoices.ListFilter) ([]invoices.Invoice, int64, error) {
	querier := r.db.GetQuerier(ctx)
	base := listQuery(tenantID, f)

	countSQL, countArgs, err := base.RemoveColumns().Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int64
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	items := []invoices.Invoice{}
	if total == 0 {
		return items, 0, nil
	}

	sql, args, err := base.
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build select: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	return items, total, nil
}

// UpdateStatus writes the status fields guarded by version.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, inv *invoices.Invoice) error {
	sql, args, err := postgres.Builder().
		Update(invoicesTable).
		Set("status", string(inv.Status)).
		Set("issued_at", inv.IssuedAt).
		Set("voided_at", inv.VoidedAt).
		Set("void_reason", inv.VoidReason).
		Set("version", inv.Version).
		Set("updated_at", inv.UpdatedAt).
		Where(squirrel.Eq{"tenant_id": inv.TenantID, "id": inv.ID, "version": inv.Version - 1}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.db.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return invoices.ErrVersionConflict
	}
	return nil
}
