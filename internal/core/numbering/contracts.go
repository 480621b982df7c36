package numbering

import (
	"context"
	"fmt"
)

// Kind identifies which document family a number is generated for.
// Each kind has its own template and its own tenant counter.
type Kind string

const (
	KindInvoice Kind = "invoice"
	KindTrip    Kind = "trip"
)

// ParseKind converts a path or flag value into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindInvoice, KindTrip:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown numbering kind %q", s)
}

// CounterKey returns the counter-store key for this kind and tenant,
// e.g. "invoice_seq_<tenant>".
func (k Kind) CounterKey(tenantID string) string {
	return string(k) + "_seq_" + tenantID
}

// AllowsTripSeq reports whether documents of this kind are scoped to a trip.
func (k Kind) AllowsTripSeq() bool {
	return k == KindInvoice
}

// DefaultTemplate is the built-in template used when a tenant has none stored.
func DefaultTemplate(k Kind) Template {
	switch k {
	case KindTrip:
		return Template{
			Segments:  []Segment{Static{Value: "TRP"}, Year{Digits: 4}, GlobalSeq{Digits: 4}},
			Separator: "-",
		}
	default:
		return Template{
			Segments:  []Segment{Static{Value: "INV"}, Year{Digits: 4}, GlobalSeq{Digits: 3}},
			Separator: "-",
		}
	}
}

// CounterStore is a durable per-key counter.
// IncrementAndGet must be atomic: the first call for a key returns 1 and
// no two callers ever observe the same value.
type CounterStore interface {
	IncrementAndGet(ctx context.Context, key string) (int64, error)
}

// ScopeStore owns the per-trip invoice sequence.
// NextSeq atomically increments the trip's counter and returns the new value,
// or ErrScopeNotFound when the trip does not exist for the tenant.
// CheckScope returns ErrScopeNotFound under the same condition without
// touching the counter.
type ScopeStore interface {
	NextSeq(ctx context.Context, tenantID, scopeID string) (int64, error)
	CheckScope(ctx context.Context, tenantID, scopeID string) error
}

// TemplateStore persists tenant templates.
// GetTemplate returns ErrConfigurationMissing when nothing is stored.
type TemplateStore interface {
	GetTemplate(ctx context.Context, tenantID string, kind Kind) (Template, error)
	SaveTemplate(ctx context.Context, tenantID string, kind Kind, t Template) error
}

// Request describes one generate call.
type Request struct {
	TenantID string
	Kind     Kind
	// ScopeID is the trip id; required only when the template has a TripSeq segment.
	ScopeID string
}

// Generator issues document numbers.
// This is the domain contract used by invoice and trip services.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}
