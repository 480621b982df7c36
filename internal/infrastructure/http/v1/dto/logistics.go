package dto

import (
	"logistix/internal/core/apperror"
	"logistix/internal/domain/shipments"
	"logistix/internal/domain/trips"
)

// --- Trips ---

// CreateTripRequest is the body of POST /trips.
type CreateTripRequest = trips.CreateInput

// UpdateTripStatusRequest is the body of POST /trips/:id/status.
type UpdateTripStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ToStatus validates the requested status.
func (r *UpdateTripStatusRequest) ToStatus() (trips.Status, error) {
	status, ok := trips.ParseStatus(r.Status)
	if !ok {
		return "", apperror.NewValidation("unknown trip status").WithDetail("status", r.Status)
	}
	return status, nil
}

// ListTripsQuery filters GET /trips.
type ListTripsQuery struct {
	ListQuery
	Status       string   `form:"status"`
	WarehouseIDs []string `form:"warehouseId"`
}

// ToFilter converts the query into a domain filter.
func (q *ListTripsQuery) ToFilter() (trips.ListFilter, error) {
	f := trips.ListFilter{ListFilter: q.ListQuery.ToFilter(), WarehouseIDs: q.WarehouseIDs}
	if q.Status != "" {
		status, ok := trips.ParseStatus(q.Status)
		if !ok {
			return f, apperror.NewValidation("unknown trip status").WithDetail("status", q.Status)
		}
		f.Status = status
	}
	return f, nil
}

// --- Shipments ---

// CreateShipmentRequest is the body of POST /trips/:id/shipments.
type CreateShipmentRequest = shipments.CreateInput

// ListShipmentsQuery filters GET /shipments.
type ListShipmentsQuery struct {
	ListQuery
	TripID       string   `form:"tripId"`
	WarehouseIDs []string `form:"warehouseId"`
}

// ToFilter converts the query into a domain filter.
func (q *ListShipmentsQuery) ToFilter() shipments.ListFilter {
	return shipments.ListFilter{
		ListFilter:   q.ListQuery.ToFilter(),
		TripID:       q.TripID,
		WarehouseIDs: q.WarehouseIDs,
	}
}
