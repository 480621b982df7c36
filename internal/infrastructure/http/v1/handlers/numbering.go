package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	corenum "logistix/internal/core/numbering"
	"logistix/internal/domain/trips"
	"logistix/internal/infrastructure/http/v1/dto"
)

// TripReader loads a trip visible to the caller.
type TripReader interface {
	Get(ctx context.Context, tripID string) (*trips.Trip, error)
}

// NumberingHandler issues numbers outside of document creation,
// e.g. for paper forms that are keyed in later.
type NumberingHandler struct {
	*BaseHandler
	generator corenum.Generator
	trips     TripReader
}

// NewNumberingHandler creates a numbering handler. Trip ids in requests are
// checked against the caller's warehouse scope through tripReader.
func NewNumberingHandler(base *BaseHandler, generator corenum.Generator, tripReader TripReader) *NumberingHandler {
	return &NumberingHandler{BaseHandler: base, generator: generator, trips: tripReader}
}

// Next handles POST /numbering/:kind/next
func (h *NumberingHandler) Next(c *gin.Context) {
	kind, ok := parseKind(h.BaseHandler, c)
	if !ok {
		return
	}

	var req dto.NextNumberRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	if req.TripID != "" && h.trips != nil {
		// Out-of-scope trips read as not found, like invoice creation.
		if _, err := h.trips.Get(ctx, req.TripID); err != nil {
			h.Error(c, err)
			return
		}
	}

	number, err := h.generator.Generate(ctx, corenum.Request{
		TenantID: h.GetTenantID(c),
		Kind:     kind,
		ScopeID:  req.TripID,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.NextNumberResponse{Kind: kind, Number: number})
}
