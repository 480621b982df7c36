package dto

import (
	"logistix/internal/domain/invoices"
)

// CreateInvoiceRequest is the body of POST /invoices.
type CreateInvoiceRequest = invoices.CreateInput

// VoidInvoiceRequest is the body of POST /invoices/:id/void.
type VoidInvoiceRequest struct {
	Reason string `json:"reason"`
}

// ListInvoicesQuery filters GET /invoices.
type ListInvoicesQuery struct {
	ListQuery
	Status     string `form:"status"`
	TripID     string `form:"tripId"`
	ClientName string `form:"client"`
	From       string `form:"from"`
	To         string `form:"to"`
}

// ToFilter converts the query into a domain filter.
// Status values are validated by the invoice service.
func (q *ListInvoicesQuery) ToFilter() (invoices.ListFilter, error) {
	from, err := ParseTime("from", q.From)
	if err != nil {
		return invoices.ListFilter{}, err
	}
	to, err := ParseTime("to", q.To)
	if err != nil {
		return invoices.ListFilter{}, err
	}
	return invoices.ListFilter{
		ListFilter: q.ListQuery.ToFilter(),
		Status:     invoices.Status(q.Status),
		TripID:     q.TripID,
		ClientName: q.ClientName,
		From:       from,
		To:         to,
	}, nil
}
