// Package rfm aggregates valid transactions into per-customer
// recency/frequency/monetary features.
package rfm

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/harperclay/rfmflow/internal/common"
	"github.com/harperclay/rfmflow/internal/model"
)

// ReferenceDate returns the anchor date recency is measured from: the
// latest invoice date in the set plus one day, so recency is never
// negative for any customer in the set.
func ReferenceDate(txns []model.Transaction) time.Time {
	var latest time.Time
	for _, t := range txns {
		if t.InvoiceDate.After(latest) {
			latest = t.InvoiceDate
		}
	}
	return latest.AddDate(0, 0, 1)
}

// Compute groups valid transactions by customer and derives one RFM record
// per customer. A zero ref derives the reference date from the data via
// ReferenceDate. Frequency counts distinct invoices, not lines. Customers
// appear only if they have at least one valid row, so frequency >= 1 and
// monetary > 0 hold for every record returned.
func Compute(txns []model.Transaction, ref time.Time) ([]model.RFMRecord, error) {
	if len(txns) == 0 {
		return nil, common.ErrNoTransactions
	}
	if ref.IsZero() {
		ref = ReferenceDate(txns)
	}

	type group struct {
		lastPurchase time.Time
		invoices     map[string]struct{}
		monetary     decimal.Decimal
	}

	groups := make(map[string]*group)
	for _, t := range txns {
		g, ok := groups[t.CustomerID]
		if !ok {
			g = &group{invoices: make(map[string]struct{})}
			groups[t.CustomerID] = g
		}
		if t.InvoiceDate.After(g.lastPurchase) {
			g.lastPurchase = t.InvoiceDate
		}
		g.invoices[t.InvoiceID] = struct{}{}
		g.monetary = g.monetary.Add(t.LineTotal())
	}

	records := make([]model.RFMRecord, 0, len(groups))
	for customerID, g := range groups {
		records = append(records, model.RFMRecord{
			CustomerID: customerID,
			Recency:    daysBetween(g.lastPurchase, ref),
			Frequency:  len(g.invoices),
			Monetary:   g.monetary.InexactFloat64(),
		})
	}

	// Map iteration order is random; training must see a stable order.
	sort.Slice(records, func(i, j int) bool {
		return records[i].CustomerID < records[j].CustomerID
	})

	return records, nil
}

// daysBetween returns the number of whole days from a to b.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
