// Package audit records who changed numbering configuration and documents.
package audit

import (
	"context"
	"time"

	appctx "logistix/internal/core/context"
	"logistix/pkg/logger"
)

// Action is the kind of audited change.
type Action string

const (
	ActionTemplateSaved Action = "numbering.template_saved"
	ActionCounterSet    Action = "numbering.counter_set"
	ActionInvoiceIssued Action = "invoice.issued"
	ActionInvoiceVoided Action = "invoice.voided"
	ActionTripStatus    Action = "trip.status_changed"
)

// Entry is one audit record.
type Entry struct {
	TenantID   string
	EntityType string
	EntityID   string
	Action     Action
	ActorID    string
	Changes    map[string]any
	CreatedAt  time.Time
}

// Recorder persists audit entries.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Record fills the actor and timestamp from ctx and stores e.
// Audit failures are logged and never fail the business operation.
func Record(ctx context.Context, r Recorder, e Entry) {
	if r == nil {
		return
	}
	if e.ActorID == "" {
		e.ActorID = appctx.GetUserID(ctx)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if err := r.Record(ctx, e); err != nil {
		logger.Warn(ctx, "audit record failed", "action", e.Action, "entity_id", e.EntityID, "error", err)
	}
}
