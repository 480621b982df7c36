// Package invoices issues numbered invoices, optionally tied to a trip.
package invoices

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"logistix/internal/core/apperror"
	"logistix/internal/core/entity"
	"logistix/internal/core/types"
	"logistix/internal/domain"
)

// Status is the lifecycle state of an invoice.
type Status string

const (
	StatusDraft  Status = "draft"
	StatusIssued Status = "issued"
	StatusVoid   Status = "void"
)

// ParseStatus validates a status name.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusDraft, StatusIssued, StatusVoid:
		return Status(s), true
	}
	return "", false
}

// MaxLines bounds the number of lines accepted on one invoice.
const MaxLines = 500

// Invoice is a billing document.
type Invoice struct {
	entity.Base
	Number     string      `db:"number" json:"number"`
	TripID     *string     `db:"trip_id" json:"tripId,omitempty"`
	ClientName string      `db:"client_name" json:"clientName"`
	Total      types.Money `db:"total" json:"total"`
	Status     Status      `db:"status" json:"status"`
	IssuedAt   *time.Time  `db:"issued_at" json:"issuedAt,omitempty"`
	VoidedAt   *time.Time  `db:"voided_at" json:"voidedAt,omitempty"`
	VoidReason string      `db:"void_reason" json:"voidReason,omitempty"`

	Lines []Line `db:"-" json:"lines"`
}

// Line is one priced row of an invoice.
type Line struct {
	InvoiceID   string          `db:"invoice_id" json:"-"`
	LineNo      int             `db:"line_no" json:"lineNo"`
	Description string          `db:"description" json:"description"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	Rate        types.Money     `db:"rate" json:"rate"`
	Amount      types.Money     `db:"amount" json:"amount"`
}

// LineInput is a line as submitted by the client.
type LineInput struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
}

// CreateInput is the data of a new invoice.
type CreateInput struct {
	// Number overrides generation when set, e.g. for invoices migrated
	// from another system.
	Number     string      `json:"number,omitempty"`
	TripID     string      `json:"tripId,omitempty"`
	ClientName string      `json:"clientName"`
	Lines      []LineInput `json:"lines"`
	Draft      bool        `json:"draft,omitempty"`
}

// Validate checks the input.
func (in *CreateInput) Validate() error {
	in.Number = strings.TrimSpace(in.Number)
	in.TripID = strings.TrimSpace(in.TripID)
	in.ClientName = strings.TrimSpace(in.ClientName)

	if in.ClientName == "" {
		return apperror.NewValidation("clientName is required").WithDetail("field", "clientName")
	}
	if len(in.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").WithDetail("field", "lines")
	}
	if len(in.Lines) > MaxLines {
		return apperror.NewValidation(fmt.Sprintf("at most %d lines are allowed", MaxLines)).WithDetail("field", "lines")
	}
	for i, l := range in.Lines {
		field := fmt.Sprintf("lines[%d]", i)
		switch {
		case strings.TrimSpace(l.Description) == "":
			return apperror.NewValidation("line description is required").WithDetail("field", field+".description")
		case !l.Quantity.IsPositive():
			return apperror.NewValidation("line quantity must be positive").WithDetail("field", field+".quantity")
		case l.Rate.IsNegative():
			return apperror.NewValidation("line rate must not be negative").WithDetail("field", field+".rate")
		}
	}
	return nil
}

// BuildLines prices the submitted lines and returns them with the invoice total.
func BuildLines(invoiceID string, in []LineInput) ([]Line, types.Money) {
	lines := make([]Line, len(in))
	amounts := make([]types.Money, len(in))
	for i, l := range in {
		amount := types.LineAmount(l.Rate, l.Quantity)
		lines[i] = Line{
			InvoiceID:   invoiceID,
			LineNo:      i + 1,
			Description: strings.TrimSpace(l.Description),
			Quantity:    l.Quantity,
			Rate:        l.Rate,
			Amount:      amount,
		}
		amounts[i] = amount
	}
	return lines, types.Sum(amounts...)
}

// ListFilter narrows invoice listings.
type ListFilter struct {
	domain.ListFilter
	Status     Status
	TripID     string
	ClientName string
	From       *time.Time
	To         *time.Time
}
