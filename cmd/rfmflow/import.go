package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/harperclay/rfmflow/internal/cli"
	"github.com/harperclay/rfmflow/internal/ingest"
	"github.com/harperclay/rfmflow/internal/storage"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import raw transactions from a CSV export",
		Long: `Parse a CSV export of the retail transaction dataset and store the rows
in the local database. Rows that cannot be parsed are skipped and counted;
validity filtering (cancellations, missing customers, non-positive values)
happens later at training time.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().String("db", "rfmflow.db", "database path")
	_ = viper.BindPFlag("db.path", cmd.Flags().Lookup("db"))

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	slog.Info("importing transactions", "file", path)

	txns, report, err := ingest.ReadCSV(f)
	if err != nil {
		return fmt.Errorf("failed to parse dataset: %w", err)
	}
	if len(txns) == 0 {
		return fmt.Errorf("no parseable rows in %s", path)
	}

	store, err := storage.NewSQLiteStorage(viper.GetString("db.path"))
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.SaveTransactions(cmd.Context(), txns); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	slog.Info("import complete",
		"rows", report.Rows,
		"parsed", report.Parsed,
		"malformed", report.Malformed)
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d transactions (%d malformed rows skipped)",
		report.Parsed, report.Malformed)))

	return nil
}
