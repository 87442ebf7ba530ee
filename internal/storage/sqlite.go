// Package storage provides the SQLite persistence layer for imported
// transactions.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage stores raw transaction rows imported from the dataset.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage opens (and if needed creates) the transaction database.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStorage{db: db, dbPath: dbPath}
	if err := s.migrate(); err != nil {
		return nil, err
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			invoice_id TEXT NOT NULL,
			stock_code TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			quantity INTEGER NOT NULL,
			invoice_date TEXT NOT NULL,
			unit_price TEXT NOT NULL,
			customer_id TEXT NOT NULL DEFAULT '',
			country TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_transactions_customer ON transactions(customer_id);
		CREATE INDEX IF NOT EXISTS idx_transactions_invoice ON transactions(invoice_id);
	`)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
