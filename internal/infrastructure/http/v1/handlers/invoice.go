package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"logistix/internal/domain"
	"logistix/internal/domain/invoices"
	"logistix/internal/infrastructure/http/v1/dto"
)

// InvoiceService is the invoice use-case surface.
type InvoiceService interface {
	Create(ctx context.Context, in invoices.CreateInput) (*invoices.Invoice, error)
	Get(ctx context.Context, id string) (*invoices.Invoice, error)
	List(ctx context.Context, filter invoices.ListFilter) (*domain.ListResult[invoices.Invoice], error)
	Issue(ctx context.Context, id string) (*invoices.Invoice, error)
	Void(ctx context.Context, id, reason string) (*invoices.Invoice, error)
}

// InvoiceHandler serves /invoices.
type InvoiceHandler struct {
	*BaseHandler
	service InvoiceService
}

// NewInvoiceHandler creates an invoice handler.
func NewInvoiceHandler(base *BaseHandler, service InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{BaseHandler: base, service: service}
}

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, inv)
}

// Get handles GET /invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	inv, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, inv)
}

// List handles GET /invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	var q dto.ListInvoicesQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromListResult(result))
}

// Issue handles POST /invoices/:id/issue
func (h *InvoiceHandler) Issue(c *gin.Context) {
	inv, err := h.service.Issue(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, inv)
}

// Void handles POST /invoices/:id/void
func (h *InvoiceHandler) Void(c *gin.Context) {
	var req dto.VoidInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, err := h.service.Void(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, inv)
}
