// Package ingest parses the raw retail dataset into transaction records.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/harperclay/rfmflow/internal/model"
)

// Expected header names, matching the Online Retail export.
var requiredColumns = []string{"InvoiceNo", "Quantity", "InvoiceDate", "UnitPrice"}

// Invoice date layouts seen across exports of the dataset.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"1/2/2006 15:04",
	"2006-01-02",
}

// Report tallies parse outcomes. Malformed rows are excluded and counted,
// never fatal: row-level data quality problems are recovered locally.
type Report struct {
	Rows      int
	Parsed    int
	Malformed int
}

// ReadCSV parses a CSV export of the transaction dataset. The first row
// must be a header naming at least InvoiceNo, Quantity, InvoiceDate and
// UnitPrice; CustomerID, StockCode, Description and Country are optional
// columns.
func ReadCSV(r io.Reader) ([]model.Transaction, Report, error) {
	var report Report

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, report, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, report, fmt.Errorf("missing required column %q in CSV header", name)
		}
	}

	var txns []model.Transaction
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Structurally broken row (bad quoting, etc).
			report.Rows++
			report.Malformed++
			continue
		}

		report.Rows++
		t, ok := parseRow(row, cols)
		if !ok {
			report.Malformed++
			continue
		}

		txns = append(txns, t)
		report.Parsed++
	}

	return txns, report, nil
}

func parseRow(row []string, cols map[string]int) (model.Transaction, bool) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	quantity, err := strconv.ParseInt(field("Quantity"), 10, 64)
	if err != nil {
		return model.Transaction{}, false
	}

	price, err := decimal.NewFromString(field("UnitPrice"))
	if err != nil {
		return model.Transaction{}, false
	}

	date, ok := parseDate(field("InvoiceDate"))
	if !ok {
		return model.Transaction{}, false
	}

	invoiceID := field("InvoiceNo")
	if invoiceID == "" {
		return model.Transaction{}, false
	}

	return model.Transaction{
		InvoiceID:   invoiceID,
		StockCode:   field("StockCode"),
		Description: field("Description"),
		Quantity:    quantity,
		InvoiceDate: date,
		UnitPrice:   price,
		CustomerID:  normalizeCustomerID(field("CustomerID")),
		Country:     field("Country"),
	}, true
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// normalizeCustomerID strips the spurious ".0" suffix spreadsheet exports
// attach to numeric customer IDs.
func normalizeCustomerID(s string) string {
	return strings.TrimSuffix(s, ".0")
}
