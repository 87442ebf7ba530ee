package model

import (
	"fmt"

	"github.com/harperclay/rfmflow/internal/common"
)

// Upper bounds for scorable RFM values. A profile outside these bounds is
// outside the population the models were trained on and is rejected rather
// than clamped.
const (
	MaxRecencyDays = 365
	MaxFrequency   = 300
	MaxMonetary    = 300000.0
)

// RFMRecord summarizes one customer's purchase behavior: days since the
// last valid purchase, count of distinct invoices, and total spend.
type RFMRecord struct {
	CustomerID string  `json:"customer_id,omitempty"`
	Recency    int     `json:"recency"`
	Frequency  int     `json:"frequency"`
	Monetary   float64 `json:"monetary"`
}

// Vector returns the record's features in (recency, frequency, monetary)
// order, the layout the scaler and clustering model are trained on.
func (r RFMRecord) Vector() []float64 {
	return []float64{float64(r.Recency), float64(r.Frequency), r.Monetary}
}

// Validate checks that the record describes a scorable customer profile.
func (r RFMRecord) Validate() error {
	if r.Recency < 0 {
		return common.NewValidationError("recency", "must be zero or more days")
	}
	if r.Recency > MaxRecencyDays {
		return common.NewValidationError("recency", fmt.Sprintf("must be at most %d days", MaxRecencyDays))
	}
	if r.Frequency < 1 {
		return common.NewValidationError("frequency", "a customer cannot be scored with zero qualifying orders")
	}
	if r.Frequency > MaxFrequency {
		return common.NewValidationError("frequency", fmt.Sprintf("must be at most %d orders", MaxFrequency))
	}
	if r.Monetary <= 0 {
		return common.NewValidationError("monetary", "must be greater than zero")
	}
	if r.Monetary > MaxMonetary {
		return common.NewValidationError("monetary", fmt.Sprintf("must be at most %.0f", MaxMonetary))
	}
	return nil
}
