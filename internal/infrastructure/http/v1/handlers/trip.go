package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"logistix/internal/domain"
	"logistix/internal/domain/shipments"
	"logistix/internal/domain/trips"
	"logistix/internal/infrastructure/http/v1/dto"
)

// TripService is the trip use-case surface.
type TripService interface {
	Create(ctx context.Context, in trips.CreateInput) (*trips.Trip, error)
	Get(ctx context.Context, tripID string) (*trips.Trip, error)
	List(ctx context.Context, filter trips.ListFilter) (*domain.ListResult[trips.Trip], error)
	UpdateStatus(ctx context.Context, tripID string, next trips.Status) (*trips.Trip, error)
}

// ShipmentService is the shipment use-case surface.
type ShipmentService interface {
	Create(ctx context.Context, tripID string, in shipments.CreateInput) (*shipments.Shipment, error)
	List(ctx context.Context, filter shipments.ListFilter) (*domain.ListResult[shipments.Shipment], error)
}

// TripHandler serves /trips.
type TripHandler struct {
	*BaseHandler
	service TripService
}

// NewTripHandler creates a trip handler.
func NewTripHandler(base *BaseHandler, service TripService) *TripHandler {
	return &TripHandler{BaseHandler: base, service: service}
}

// Create handles POST /trips
func (h *TripHandler) Create(c *gin.Context) {
	var req dto.CreateTripRequest
	if !h.BindJSON(c, &req) {
		return
	}

	trip, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, trip)
}

// Get handles GET /trips/:id
func (h *TripHandler) Get(c *gin.Context) {
	trip, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, trip)
}

// List handles GET /trips
func (h *TripHandler) List(c *gin.Context) {
	var q dto.ListTripsQuery
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

// UpdateStatus handles POST /trips/:id/status
func (h *TripHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateTripStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	status, err := req.ToStatus()
	if err != nil {
		h.Error(c, err)
		return
	}

	trip, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, trip)
}

// ShipmentHandler serves shipment endpoints.
type ShipmentHandler struct {
	*BaseHandler
	service ShipmentService
}

// NewShipmentHandler creates a shipment handler.
func NewShipmentHandler(base *BaseHandler, service ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{BaseHandler: base, service: service}
}

// Create handles POST /trips/:id/shipments
func (h *ShipmentHandler) Create(c *gin.Context) {
	var req dto.CreateShipmentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	shipment, err := h.service.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, shipment)
}

// List handles GET /shipments
func (h *ShipmentHandler) List(c *gin.Context) {
	var q dto.ListShipmentsQuery
	if !h.BindQuery(c, &q) {
		return
	}

	result, err := h.service.List(c.Request.Context(), q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromListResult(result))
}
