package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/harperclay/rfmflow/internal/model"
)

// Invoice dates are stored as RFC 3339 text so they survive the round
// trip without driver-dependent precision loss.
const dateFormat = time.RFC3339

// SaveTransactions inserts a batch of transaction rows in one database
// transaction.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, txns []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(txns); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (
			invoice_id, stock_code, description, quantity,
			invoice_date, unit_price, customer_id, country
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, t := range txns {
		_, err = stmt.ExecContext(ctx,
			t.InvoiceID, t.StockCode, t.Description, t.Quantity,
			t.InvoiceDate.UTC().Format(dateFormat), t.UnitPrice.String(),
			t.CustomerID, t.Country)
		if err != nil {
			return fmt.Errorf("failed to insert transaction at index %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetTransactionsByCustomer returns all rows recorded for one customer,
// ordered by invoice date.
func (s *SQLiteStorage) GetTransactionsByCustomer(ctx context.Context, customerID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(customerID, "customerID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT invoice_id, stock_code, description, quantity,
		       invoice_date, unit_price, customer_id, country
		FROM transactions
		WHERE customer_id = ?
		ORDER BY invoice_date, invoice_id
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTransactions(rows)
}

// GetAllTransactions returns every stored row, ordered by invoice date.
// Training reads the full set.
func (s *SQLiteStorage) GetAllTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT invoice_id, stock_code, description, quantity,
		       invoice_date, unit_price, customer_id, country
		FROM transactions
		ORDER BY invoice_date, invoice_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTransactions(rows)
}

// CountTransactions returns the number of stored rows.
func (s *SQLiteStorage) CountTransactions(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	var txns []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var date, price string

		err := rows.Scan(&t.InvoiceID, &t.StockCode, &t.Description, &t.Quantity,
			&date, &price, &t.CustomerID, &t.Country)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		t.InvoiceDate, err = time.Parse(dateFormat, date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse invoice date %q: %w", date, err)
		}
		t.UnitPrice, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("failed to parse unit price %q: %w", price, err)
		}

		txns = append(txns, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txns, nil
}
