package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"logistix/internal/core/apperror"
	corenum "logistix/internal/core/numbering"
	"logistix/internal/domain/audit"
	"logistix/internal/domain/settings"
	"logistix/internal/infrastructure/http/v1/dto"
)

// SettingsService manages numbering templates.
type SettingsService interface {
	GetTemplate(ctx context.Context, tenantID string, kind corenum.Kind) (*settings.TemplateView, error)
	SaveTemplate(ctx context.Context, tenantID string, kind corenum.Kind, t corenum.Template) (*settings.TemplateView, error)
	Preview(t corenum.Template) (string, error)
}

// HistoryReader returns audit history of an entity.
type HistoryReader interface {
	History(ctx context.Context, tenantID, entityType, entityID string, limit int) ([]audit.Entry, error)
}

// SettingsHandler serves /settings/numbering.
type SettingsHandler struct {
	*BaseHandler
	service SettingsService
	history HistoryReader
}

// NewSettingsHandler creates a settings handler. history may be nil.
func NewSettingsHandler(base *BaseHandler, service SettingsService, history HistoryReader) *SettingsHandler {
	return &SettingsHandler{BaseHandler: base, service: service, history: history}
}

// GetTemplate handles GET /settings/numbering/:kind
func (h *SettingsHandler) GetTemplate(c *gin.Context) {
	kind, ok := h.kindParam(c)
	if !ok {
		return
	}

	view, err := h.service.GetTemplate(c.Request.Context(), h.GetTenantID(c), kind)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, view)
}

// SaveTemplate handles PUT /settings/numbering/:kind
func (h *SettingsHandler) SaveTemplate(c *gin.Context) {
	kind, ok := h.kindParam(c)
	if !ok {
		return
	}

	var req dto.SaveTemplateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	view, err := h.service.SaveTemplate(c.Request.Context(), h.GetTenantID(c), kind, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, view)
}

// Preview handles POST /settings/numbering/preview
func (h *SettingsHandler) Preview(c *gin.Context) {
	var req dto.PreviewRequest
	if !h.BindJSON(c, &req) {
		return
	}

	example, err := h.service.Preview(req.Template)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.PreviewResponse{Example: example})
}

// History handles GET /settings/numbering/:kind/history
func (h *SettingsHandler) History(c *gin.Context) {
	kind, ok := h.kindParam(c)
	if !ok {
		return
	}
	if h.history == nil {
		h.OK(c, []dto.AuditEntryResponse{})
		return
	}

	limit := h.ParseIntQuery(c, "limit", 20)
	entries, err := h.history.History(c.Request.Context(), h.GetTenantID(c), "numbering_template", string(kind), limit)
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}
	h.OK(c, dto.FromAuditEntries(entries))
}

func (h *SettingsHandler) kindParam(c *gin.Context) (corenum.Kind, bool) {
	return parseKind(h.BaseHandler, c)
}

func parseKind(h *BaseHandler, c *gin.Context) (corenum.Kind, bool) {
	kind, err := corenum.ParseKind(c.Param("kind"))
	if err != nil {
		h.Error(c, apperror.NewValidation(err.Error()).WithDetail("kind", c.Param("kind")))
		return "", false
	}
	return kind, true
}
