package dto

import (
	"time"

	corenum "logistix/internal/core/numbering"
	"logistix/internal/domain/audit"
)

// SaveTemplateRequest replaces a tenant's numbering template.
// The body is the template JSON itself: {"segments": [...], "separator": "-"}.
type SaveTemplateRequest = corenum.Template

// PreviewRequest asks for a sample number of an unsaved template.
type PreviewRequest struct {
	Template corenum.Template `json:"template"`
}

// PreviewResponse carries the rendered sample.
type PreviewResponse struct {
	Example string `json:"example"`
}

// NextNumberRequest issues a number without creating a document.
type NextNumberRequest struct {
	TripID string `json:"tripId,omitempty"`
}

// NextNumberResponse carries the issued number.
type NextNumberResponse struct {
	Kind   corenum.Kind `json:"kind"`
	Number string       `json:"number"`
}

// AuditEntryResponse is one row of a change history.
type AuditEntryResponse struct {
	Action    string         `json:"action"`
	ActorID   string         `json:"actorId,omitempty"`
	Changes   map[string]any `json:"changes,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// FromAuditEntries converts audit entries into responses.
func FromAuditEntries(entries []audit.Entry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, AuditEntryResponse{
			Action:    string(e.Action),
			ActorID:   e.ActorID,
			Changes:   e.Changes,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}
