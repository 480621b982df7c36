// Package trips manages vehicle trips: the scope entity that owns its own
// invoice and shipment sequences.
package trips

import (
	"strings"

	"logistix/internal/core/apperror"
	"logistix/internal/core/entity"
	"logistix/internal/domain"
)

// Status is the lifecycle state of a trip.
type Status string

const (
	StatusPlanned   Status = "planned"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusPlanned:   {StatusInTransit, StatusCancelled},
	StatusInTransit: {StatusDelivered, StatusCancelled},
}

// ParseStatus validates a status name.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPlanned, StatusInTransit, StatusDelivered, StatusCancelled:
		return Status(s), true
	}
	return "", false
}

// CanTransition reports whether a trip may move from s to next.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AcceptsShipments reports whether cargo can still be loaded.
func (s Status) AcceptsShipments() bool {
	return s == StatusPlanned
}

// Trip is a vehicle run from one warehouse.
type Trip struct {
	entity.Base
	Number      string `db:"number" json:"number"`
	WarehouseID string `db:"warehouse_id" json:"warehouseId"`
	VehicleNo   string `db:"vehicle_no" json:"vehicleNo"`
	DriverName  string `db:"driver_name" json:"driverName"`
	Origin      string `db:"origin" json:"origin"`
	Destination string `db:"destination" json:"destination"`
	Status      Status `db:"status" json:"status"`
	// InvoiceSeq backs TripSeq numbering segments.
	InvoiceSeq  int64 `db:"invoice_seq" json:"invoiceSeq"`
	ShipmentSeq int64 `db:"shipment_seq" json:"shipmentSeq"`
}

// CreateInput is the data needed to plan a trip.
type CreateInput struct {
	WarehouseID string `json:"warehouseId"`
	VehicleNo   string `json:"vehicleNo"`
	DriverName  string `json:"driverName"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// Validate checks required fields.
func (in *CreateInput) Validate() error {
	in.WarehouseID = strings.TrimSpace(in.WarehouseID)
	in.VehicleNo = strings.ToUpper(strings.TrimSpace(in.VehicleNo))
	switch {
	case in.WarehouseID == "":
		return apperror.NewValidation("warehouseId is required").WithDetail("field", "warehouseId")
	case in.VehicleNo == "":
		return apperror.NewValidation("vehicleNo is required").WithDetail("field", "vehicleNo")
	case strings.TrimSpace(in.Origin) == "" || strings.TrimSpace(in.Destination) == "":
		return apperror.NewValidation("origin and destination are required")
	}
	return nil
}

// ListFilter narrows trip listings.
type ListFilter struct {
	domain.ListFilter
	Status       Status
	WarehouseIDs []string
}
