// Package shipments records cargo loaded on trips and prices it.
package shipments

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"logistix/internal/core/apperror"
	"logistix/internal/core/entity"
	corenum "logistix/internal/core/numbering"
	"logistix/internal/core/types"
	"logistix/internal/domain"
)

// MaxPieces bounds the number of piece labels printed for one shipment.
const MaxPieces = 99

// Shipment is one consignment on a trip.
type Shipment struct {
	entity.Base
	TripID        string       `db:"trip_id" json:"tripId"`
	WarehouseID   string       `db:"warehouse_id" json:"warehouseId"`
	ClientName    string       `db:"client_name" json:"clientName"`
	WeightKg      types.Weight `db:"weight_kg" json:"weightKg"`
	Rate          types.Money  `db:"rate" json:"rate"`
	Amount        types.Money  `db:"amount" json:"amount"`
	Pieces        int          `db:"pieces" json:"pieces"`
	Barcode       string       `db:"barcode" json:"barcode"`
	PieceBarcodes []string     `db:"piece_barcodes" json:"pieceBarcodes"`
}

// CreateInput is the data of a new shipment.
type CreateInput struct {
	ClientName string          `json:"clientName"`
	WeightKg   decimal.Decimal `json:"weightKg"`
	Rate       decimal.Decimal `json:"rate"`
	Pieces     int             `json:"pieces"`
}

// Validate checks the input and defaults Pieces to 1.
func (in *CreateInput) Validate() error {
	in.ClientName = strings.TrimSpace(in.ClientName)
	if in.Pieces == 0 {
		in.Pieces = 1
	}
	switch {
	case in.ClientName == "":
		return apperror.NewValidation("clientName is required").WithDetail("field", "clientName")
	case !in.WeightKg.IsPositive():
		return apperror.NewValidation("weightKg must be positive").WithDetail("field", "weightKg")
	case in.Rate.IsNegative():
		return apperror.NewValidation("rate must not be negative").WithDetail("field", "rate")
	case in.Pieces < 1 || in.Pieces > MaxPieces:
		return apperror.NewValidation(fmt.Sprintf("pieces must be between 1 and %d", MaxPieces)).WithDetail("field", "pieces")
	}
	return nil
}

// Amount prices a shipment: rate × weight, rounded to cents.
func Amount(rate types.Money, weightKg types.Weight) types.Money {
	return types.LineAmount(rate, weightKg)
}

// Barcode renders "<trip number>-<seq:3>".
func Barcode(tripNumber string, seq int64) string {
	return tripNumber + "-" + corenum.Pad(seq, 3)
}

// PieceBarcodes renders one label per piece: "<barcode>-<piece:2>/<pieces:2>".
func PieceBarcodes(barcode string, pieces int) []string {
	out := make([]string, pieces)
	total := corenum.Pad(int64(pieces), 2)
	for i := range out {
		out[i] = barcode + "-" + corenum.Pad(int64(i+1), 2) + "/" + total
	}
	return out
}

// ListFilter narrows shipment listings.
type ListFilter struct {
	domain.ListFilter
	TripID       string
	WarehouseIDs []string
}
