package invoices

import (
	"context"
	"errors"
	"strings"
	"time"

	"logistix/internal/core/apperror"
	"logistix/internal/core/entity"
	"logistix/internal/core/id"
	corenum "logistix/internal/core/numbering"
	"logistix/internal/core/security"
	"logistix/internal/core/tx"
	"logistix/internal/domain"
	"logistix/internal/domain/audit"
	"logistix/pkg/logger"
)

// Service implements invoice use cases.
type Service struct {
	repo    Repository
	trips   TripLookup
	numbers corenum.Generator
	txm     tx.Manager
	audit   audit.Recorder
	now     func() time.Time
	gapless bool
}

// Option configures a Service.
type Option func(*Service)

// WithGaplessNumbering generates the number inside the invoice transaction,
// so a failed insert rolls the counters back. Only valid when every counter
// store in use joins the ambient PostgreSQL transaction.
func WithGaplessNumbering() Option {
	return func(s *Service) { s.gapless = true }
}

// WithAudit enables audit records.
func WithAudit(r audit.Recorder) Option {
	return func(s *Service) { s.audit = r }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates an invoice service.
func NewService(repo Repository, tripLookup TripLookup, numbers corenum.Generator, txm tx.Manager, opts ...Option) *Service {
	s := &Service{repo: repo, trips: tripLookup, numbers: numbers, txm: txm, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new invoice. Unless in.Number is set, the number comes from
// the tenant's invoice template with the trip as scope.
//
// By default the number is drawn before the transaction opens: a failed
// insert leaves a gap in the sequence but never blocks other writers on the
// counter row.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Invoice, error) {
	tenantID, err := domain.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var tripID *string
	if in.TripID != "" {
		trip, err := s.trips.GetByID(ctx, tenantID, in.TripID)
		if err != nil {
			return nil, domain.NormalizeGetErr(err, "trip", in.TripID)
		}
		if !security.GetScope(ctx).CanAccessWarehouse(trip.WarehouseID) {
			return nil, apperror.NewNotFound("trip", in.TripID)
		}
		tripID = &trip.ID
	}

	now := s.now()
	inv := &Invoice{
		Base:       entity.NewBase(tenantID, now),
		Number:     in.Number,
		TripID:     tripID,
		ClientName: in.ClientName,
		Status:     StatusIssued,
	}
	if in.Draft {
		inv.Status = StatusDraft
	} else {
		issued := inv.CreatedAt
		inv.IssuedAt = &issued
	}
	inv.Lines, inv.Total = BuildLines(inv.ID, in.Lines)

	req := corenum.Request{TenantID: tenantID, Kind: corenum.KindInvoice, ScopeID: in.TripID}
	if inv.Number == "" && !s.gapless {
		if inv.Number, err = s.numbers.Generate(ctx, req); err != nil {
			return nil, err
		}
	}

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if inv.Number == "" {
			number, err := s.numbers.Generate(ctx, req)
			if err != nil {
				return err
			}
			inv.Number = number
		}
		return s.repo.Create(ctx, inv)
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateNumber) {
			return nil, apperror.NewDuplicate("invoice", "number", inv.Number)
		}
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.NewInternal(err)
	}

	if inv.Status == StatusIssued {
		audit.Record(ctx, s.audit, audit.Entry{
			TenantID:   tenantID,
			EntityType: "invoice",
			EntityID:   inv.ID,
			Action:     audit.ActionInvoiceIssued,
			Changes:    map[string]any{"number": inv.Number, "total": inv.Total.String()},
		})
	}
	logger.Info(ctx, "invoice created", "invoice_id", inv.ID, "number", inv.Number, "status", inv.Status)
	return inv, nil
}

// Get returns an invoice with its lines.
func (s *Service) Get(ctx context.Context, id string) (*Invoice, error) {
	tenantID, err := domain.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}
	inv, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, domain.NormalizeGetErr(err, "invoice", id)
	}
	return inv, nil
}

// List returns invoice headers.
func (s *Service) List(ctx context.Context, filter ListFilter) (*domain.ListResult[Invoice], error) {
	tenantID, err := domain.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}
	filter.ListFilter = filter.ListFilter.Normalize()
	if filter.Status != "" {
		if _, ok := ParseStatus(string(filter.Status)); !ok {
			return nil, apperror.NewValidation("unknown invoice status").WithDetail("status", string(filter.Status))
		}
	}
	if filter.TripID != "" && !id.IsValid(filter.TripID) {
		return nil, apperror.NewValidation("tripId must be a UUID").WithDetail("field", "tripId")
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, apperror.NewValidation("'to' must not be before 'from'")
	}

	items, total, err := s.repo.List(ctx, tenantID, filter)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	if items == nil {
		items = []Invoice{}
	}
	return &domain.ListResult[Invoice]{Items: items, TotalCount: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// Issue finalizes a draft invoice.
func (s *Service) Issue(ctx context.Context, id string) (*Invoice, error) {
	return s.transition(ctx, id, StatusIssued, "", audit.ActionInvoiceIssued)
}

// Void cancels an invoice. The number stays consumed.
func (s *Service) Void(ctx context.Context, id, reason string) (*Invoice, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperror.NewValidation("void reason is required").WithDetail("field", "reason")
	}
	return s.transition(ctx, id, StatusVoid, reason, audit.ActionInvoiceVoided)
}

func (s *Service) transition(ctx context.Context, id string, next Status, reason string, action audit.Action) (*Invoice, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := inv.Status
	if !canTransition(prev, next) {
		return nil, apperror.NewInvalidTransition("invoice", string(prev), string(next))
	}

	now := s.now().UTC()
	inv.Status = next
	switch next {
	case StatusIssued:
		inv.IssuedAt = &now
	case StatusVoid:
		inv.VoidedAt = &now
		inv.VoidReason = reason
	}
	inv.Touch(now)

	if err := s.repo.UpdateStatus(ctx, inv); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return nil, apperror.NewConflict("invoice was modified by another request, reload and retry").
				WithDetail("invoice_id", id)
		}
		return nil, apperror.NewInternal(err)
	}

	changes := map[string]any{"status": map[string]any{"old": prev, "new": next}}
	if reason != "" {
		changes["reason"] = reason
	}
	audit.Record(ctx, s.audit, audit.Entry{
		TenantID:   inv.TenantID,
		EntityType: "invoice",
		EntityID:   inv.ID,
		Action:     action,
		Changes:    changes,
	})
	return inv, nil
}

func canTransition(from, to Status) bool {
	switch from {
	case StatusDraft:
		return to == StatusIssued || to == StatusVoid
	case StatusIssued:
		return to == StatusVoid
	}
	return false
}
