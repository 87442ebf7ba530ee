// Package model defines the core domain types shared across the pipeline.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a single invoice line from the retail dataset.
// One invoice may span many lines; the invoice ID ties them together.
type Transaction struct {
	InvoiceDate time.Time
	InvoiceID   string
	CustomerID  string
	StockCode   string
	Description string
	Country     string
	UnitPrice   decimal.Decimal
	Quantity    int64
}

// LineTotal returns quantity × unit price for this line.
func (t *Transaction) LineTotal() decimal.Decimal {
	return t.UnitPrice.Mul(decimal.NewFromInt(t.Quantity))
}
