// Package numbering issues document numbers for tenants.
//
// The service resolves the tenant's template, renders it once per call and
// drives the atomic counters behind TripSeq and GlobalSeq segments. Skipped
// numbers are accepted; duplicates are not, which is why every increment is
// delegated to a storage-level atomic operation.
package numbering

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"logistix/internal/core/apperror"
	corenum "logistix/internal/core/numbering"
	"logistix/pkg/logger"
)

var tracer = otel.Tracer("logistix/numbering")

// TemplateResolver returns the active template for a tenant, already
// defaulted when the tenant has none stored.
type TemplateResolver interface {
	Resolve(ctx context.Context, tenantID string, kind corenum.Kind) (corenum.Template, error)
}

// Observer receives the outcome of every Generate call.
// reason is empty on success.
type Observer interface {
	ObserveGenerate(kind corenum.Kind, reason string, elapsed time.Duration)
}

// Failure reasons reported to the Observer.
const (
	ReasonInvalidTemplate = "invalid_template"
	ReasonMissingScope    = "missing_scope"
	ReasonScopeNotFound   = "scope_not_found"
	ReasonStorage         = "storage"
	ReasonInvalidRequest  = "invalid_request"
)

// Service implements corenum.Generator.
type Service struct {
	templates TemplateResolver
	counters  corenum.CounterStore
	scopes    corenum.ScopeStore
	now       func() time.Time
	observer  Observer
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now, e.g. for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithObserver attaches metrics.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// NewService wires the generator to its stores.
func NewService(templates TemplateResolver, counters corenum.CounterStore, scopes corenum.ScopeStore, opts ...Option) *Service {
	s := &Service{
		templates: templates,
		counters:  counters,
		scopes:    scopes,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ corenum.Generator = (*Service)(nil)

// Generate issues the next number for req.
//
// Nothing is incremented unless the template is valid and the trip, when
// one is given or the template has a TripSeq segment, exists. A failure after an increment committed
// leaves a gap in the sequence.
func (s *Service) Generate(ctx context.Context, req corenum.Request) (number string, err error) {
	if req.TenantID == "" {
		return "", apperror.NewValidation("tenant is required")
	}
	if req.Kind == "" {
		req.Kind = corenum.KindInvoice
	}

	ctx, span := tracer.Start(ctx, "numbering.generate", trace.WithAttributes(
		attribute.String("tenant.id", req.TenantID),
		attribute.String("numbering.kind", string(req.Kind)),
	))
	start := time.Now()
	defer func() {
		reason := failureReason(err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, reason)
		}
		span.End()
		if s.observer != nil {
			s.observer.ObserveGenerate(req.Kind, reason, time.Since(start))
		}
	}()

	tmpl, err := s.templates.Resolve(ctx, req.TenantID, req.Kind)
	if err != nil {
		return "", s.mapErr(ctx, req, err)
	}
	if err := tmpl.Validate(); err != nil {
		return "", s.mapErr(ctx, req, err)
	}
	if tmpl.HasTripSeq() && req.ScopeID == "" {
		return "", s.mapErr(ctx, req, corenum.ErrMissingScope)
	}
	// A trip given to a template without TripSeq must still exist.
	if !tmpl.HasTripSeq() && req.ScopeID != "" {
		if err := s.scopes.CheckScope(ctx, req.TenantID, req.ScopeID); err != nil {
			return "", s.mapErr(ctx, req, err)
		}
	}

	number, err = corenum.Render(ctx, tmpl, s.now(), func(ctx context.Context, seg corenum.Segment) (int64, error) {
		if _, ok := seg.(corenum.TripSeq); ok {
			return s.scopes.NextSeq(ctx, req.TenantID, req.ScopeID)
		}
		return s.counters.IncrementAndGet(ctx, req.Kind.CounterKey(req.TenantID))
	})
	if err != nil {
		return "", s.mapErr(ctx, req, err)
	}

	span.SetAttributes(attribute.String("numbering.number", number))
	logger.Debug(ctx, "document number issued", "kind", req.Kind, "number", number, "trip_id", req.ScopeID)
	return number, nil
}

// Preview renders tmpl for the current time without touching counters.
func (s *Service) Preview(tmpl corenum.Template) (string, error) {
	out, err := corenum.Preview(tmpl, s.now())
	if err != nil {
		return "", apperror.NewInvalidTemplate(err)
	}
	return out, nil
}

func (s *Service) mapErr(ctx context.Context, req corenum.Request, err error) error {
	switch {
	case errors.Is(err, corenum.ErrInvalidTemplate), errors.Is(err, corenum.ErrUnknownSegment):
		logger.Warn(ctx, "numbering template rejected", "kind", req.Kind, "error", err)
		return apperror.NewInvalidTemplate(err).WithDetail("kind", string(req.Kind))
	case errors.Is(err, corenum.ErrMissingScope):
		return apperror.NewMissingScope(err)
	case errors.Is(err, corenum.ErrScopeNotFound):
		return apperror.NewNotFound("trip", req.ScopeID).WithCause(err)
	case apperror.IsAppError(err):
		return err
	default:
		logger.Error(ctx, "document number generation failed", "kind", req.Kind, "trip_id", req.ScopeID, "error", err)
		return apperror.NewStorageUnavailable(err)
	}
}

func failureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case apperror.IsCode(err, apperror.CodeInvalidTemplate):
		return ReasonInvalidTemplate
	case apperror.IsCode(err, apperror.CodeMissingScope):
		return ReasonMissingScope
	case apperror.IsNotFound(err):
		return ReasonScopeNotFound
	case apperror.IsCode(err, apperror.CodeValidation):
		return ReasonInvalidRequest
	default:
		return ReasonStorage
	}
}
