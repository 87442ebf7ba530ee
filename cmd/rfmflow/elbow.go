package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/harperclay/rfmflow/internal/cleaning"
	"github.com/harperclay/rfmflow/internal/cli"
	"github.com/harperclay/rfmflow/internal/cluster"
	"github.com/harperclay/rfmflow/internal/rfm"
	"github.com/harperclay/rfmflow/internal/scale"
	"github.com/harperclay/rfmflow/internal/storage"
)

func elbowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "elbow",
		Short: "Sweep candidate cluster counts and print the elbow curve",
		Long: `Fit k-means for k = 1..max-k over the imported data and print the
within-cluster sum of squares for each k. Pick k where the curve bends;
production uses k=5.`,
		RunE: runElbow,
	}

	cmd.Flags().Int("max-k", 10, "largest cluster count to try")
	cmd.Flags().Int64("seed", 0, "random seed (default from config)")
	_ = viper.BindPFlag("elbow.max_k", cmd.Flags().Lookup("max-k"))
	_ = viper.BindPFlag("elbow.seed", cmd.Flags().Lookup("seed"))

	return cmd
}

func runElbow(cmd *cobra.Command, _ []string) error {
	maxK := viper.GetInt("elbow.max_k")
	seed := viper.GetInt64("elbow.seed")
	if seed == 0 {
		seed = viper.GetInt64("train.seed")
	}

	store, err := storage.NewSQLiteStorage(viper.GetString("db.path"))
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	raw, err := store.GetAllTransactions(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}

	policy := cleaning.Policy{CancellationPrefix: viper.GetString("rfm.cancellation_prefix")}
	valid, _ := cleaning.Clean(raw, policy)
	records, err := rfm.Compute(valid, time.Time{})
	if err != nil {
		return fmt.Errorf("failed to compute RFM features: %w", err)
	}

	scaler, err := scale.Fit(records)
	if err != nil {
		return fmt.Errorf("failed to fit scaler: %w", err)
	}
	vectors := scaler.Transform(records)

	slog.Info("running elbow sweep", "customers", len(records), "max_k", maxK, "seed", seed)

	// The sweep stops at the population size when there are fewer
	// customers than max-k; size the bar to what will actually run.
	span := maxK
	if len(records) < span {
		span = len(records)
	}
	bar := progressbar.NewOptions(span,
		progressbar.OptionSetDescription("Sweeping cluster counts..."),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
	)
	results, err := cluster.Sweep(vectors, maxK, seed, func(_ int) {
		_ = bar.Add(1)
	})
	if err != nil {
		return fmt.Errorf("elbow sweep failed: %w", err)
	}
	fmt.Println()

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.K),
			fmt.Sprintf("%.2f", r.Inertia),
		})
	}

	fmt.Println(cli.FormatTitle("Elbow curve"))
	fmt.Println(cli.RenderTable([]string{"K", "WCSS"}, rows))

	return nil
}
