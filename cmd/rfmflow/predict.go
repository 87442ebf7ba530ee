package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/harperclay/rfmflow/internal/cli"
	"github.com/harperclay/rfmflow/internal/common"
	"github.com/harperclay/rfmflow/internal/inference"
	"github.com/harperclay/rfmflow/internal/model"
	"github.com/harperclay/rfmflow/internal/storage"
)

func predictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Classify a customer profile against the trained models",
		Long: `Classify either a direct RFM triple (--recency/--frequency/--monetary)
or a stored customer's full transaction history (--customer). The persisted
scaler and model are used read-only; nothing is refit.`,
		RunE: runPredict,
	}

	cmd.Flags().Int("recency", -1, "days since last purchase")
	cmd.Flags().Int("frequency", -1, "number of distinct orders")
	cmd.Flags().Float64("monetary", -1, "total spend")
	cmd.Flags().String("customer", "", "classify a stored customer by ID instead of a direct triple")
	cmd.Flags().String("reference", "", "reference date for recency (YYYY-MM-DD, default: today)")

	return cmd
}

// referenceDate parses the --reference flag. Empty means now: recency
// measures elapsed time against the present, never against the customer's
// own history.
func referenceDate(cmd *cobra.Command) (time.Time, error) {
	raw, _ := cmd.Flags().GetString("reference")
	if raw == "" {
		return time.Now().UTC(), nil
	}
	ref, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: reference must be YYYY-MM-DD, got %q", common.ErrInvalidConfig, raw)
	}
	return ref, nil
}

func runPredict(cmd *cobra.Command, _ []string) error {
	infCtx, err := loadInferenceContext()
	if err != nil {
		return err
	}

	customerID, _ := cmd.Flags().GetString("customer")

	var result *inference.Result
	if customerID != "" {
		ref, err := referenceDate(cmd)
		if err != nil {
			return err
		}

		store, err := storage.NewSQLiteStorage(viper.GetString("db.path"))
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		defer func() { _ = store.Close() }()

		txns, err := store.GetTransactionsByCustomer(cmd.Context(), customerID)
		if err != nil {
			return fmt.Errorf("failed to load customer transactions: %w", err)
		}
		if len(txns) == 0 {
			return fmt.Errorf("no transactions stored for customer %s", customerID)
		}

		result, err = infCtx.PredictTransactions(txns, ref)
		if err != nil {
			return predictError(err)
		}
	} else {
		recency, _ := cmd.Flags().GetInt("recency")
		frequency, _ := cmd.Flags().GetInt("frequency")
		monetary, _ := cmd.Flags().GetFloat64("monetary")

		result, err = infCtx.PredictRFM(model.RFMRecord{
			Recency:   recency,
			Frequency: frequency,
			Monetary:  monetary,
		})
		if err != nil {
			return predictError(err)
		}
	}

	content := fmt.Sprintf(`Recency:   %d days
Frequency: %d orders
Monetary:  %.2f

Cluster:  %d
Segment:  %s
Strategy: %s`,
		result.RFM.Recency, result.RFM.Frequency, result.RFM.Monetary,
		result.Cluster, result.Segment.Name, result.Segment.Strategy)

	fmt.Println(cli.RenderBox("Customer Segment", content))

	return nil
}

// predictError distinguishes rejected input from real failures so the user
// sees which value to correct.
func predictError(err error) error {
	if common.IsValidation(err) {
		return fmt.Errorf("profile rejected: %w", err)
	}
	return err
}
