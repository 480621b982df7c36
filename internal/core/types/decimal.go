// Package types provides money and weight helpers shared by logistics documents.
package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// Weight is a shipment weight in kilograms.
type Weight = decimal.Decimal

// MoneyPlaces is the number of fractional digits kept for amounts.
const MoneyPlaces = 2

// ParseMoney parses a decimal string. Negative values are rejected.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount %q must not be negative", s)
	}
	return d, nil
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	return decimal.RequireFromString(s)
}

// LineAmount returns rate × quantity rounded half away from zero to cents.
func LineAmount(rate Money, qty decimal.Decimal) Money {
	return rate.Mul(qty).Round(MoneyPlaces)
}

// Sum adds amounts, keeping cent precision.
func Sum(amounts ...Money) Money {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total.Round(MoneyPlaces)
}
