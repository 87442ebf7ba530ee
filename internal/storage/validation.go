package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harperclay/rfmflow/internal/model"
)

// Validation errors.
var (
	ErrNilContext  = errors.New("context cannot be nil")
	ErrEmptyString = errors.New("string parameter cannot be empty")
	ErrNilSlice    = errors.New("slice cannot be nil")
	ErrEmptySlice  = errors.New("slice cannot be empty")
	ErrInvalidRow  = errors.New("invalid transaction row")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions checks a batch is storable. Rows with missing
// customers or non-positive values are legal here: the cleaner decides
// validity, storage only requires structural completeness.
func validateTransactions(txns []model.Transaction) error {
	if txns == nil {
		return fmt.Errorf("%w: transactions", ErrNilSlice)
	}
	if len(txns) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i, t := range txns {
		if t.InvoiceID == "" {
			return fmt.Errorf("%w at index %d: missing invoice ID", ErrInvalidRow, i)
		}
		if t.InvoiceDate.IsZero() {
			return fmt.Errorf("%w at index %d: missing invoice date", ErrInvalidRow, i)
		}
	}
	return nil
}
