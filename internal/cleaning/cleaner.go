// Package cleaning filters raw transaction rows down to valid sale lines.
package cleaning

import (
	"strings"

	"github.com/harperclay/rfmflow/internal/model"
)

// Policy configures how invalid rows are recognized. The cancellation
// prefix is a dataset convention, not a guarantee of the data model, so it
// stays configurable.
type Policy struct {
	CancellationPrefix string
}

// DefaultPolicy matches the Online Retail convention of prefixing
// cancelled invoice numbers with "C".
func DefaultPolicy() Policy {
	return Policy{CancellationPrefix: "C"}
}

// Report tallies how many rows survived cleaning and why the rest were
// dropped. Drops are diagnostics, not errors.
type Report struct {
	Kept                int
	Cancelled           int
	MissingCustomer     int
	NonPositiveQuantity int
	NonPositivePrice    int
}

// Dropped returns the total number of excluded rows.
func (r Report) Dropped() int {
	return r.Cancelled + r.MissingCustomer + r.NonPositiveQuantity + r.NonPositivePrice
}

// Clean returns the subset of transactions that are valid sale lines:
// customer present, positive quantity and price, and not a cancellation.
// It is a pure filter; surviving rows are returned unmodified.
func Clean(txns []model.Transaction, policy Policy) ([]model.Transaction, Report) {
	valid := make([]model.Transaction, 0, len(txns))
	var report Report

	for _, t := range txns {
		switch {
		case policy.CancellationPrefix != "" && strings.HasPrefix(t.InvoiceID, policy.CancellationPrefix):
			report.Cancelled++
		case strings.TrimSpace(t.CustomerID) == "":
			report.MissingCustomer++
		case t.Quantity <= 0:
			report.NonPositiveQuantity++
		case t.UnitPrice.Sign() <= 0:
			report.NonPositivePrice++
		default:
			valid = append(valid, t)
			report.Kept++
		}
	}

	return valid, report
}
