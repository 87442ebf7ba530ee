package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/harperclay/rfmflow/internal/artifact"
	"github.com/harperclay/rfmflow/internal/cleaning"
	"github.com/harperclay/rfmflow/internal/cli"
	"github.com/harperclay/rfmflow/internal/cluster"
	"github.com/harperclay/rfmflow/internal/common"
	"github.com/harperclay/rfmflow/internal/model"
	"github.com/harperclay/rfmflow/internal/rfm"
	"github.com/harperclay/rfmflow/internal/scale"
	"github.com/harperclay/rfmflow/internal/storage"
)

func trainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the segmentation models from imported transactions",
		Long: `Run the full training pipeline: clean the imported transactions,
aggregate RFM features per customer, fit the standard scaler and the
k-means model, and persist both artifacts for inference.`,
		RunE: runTrain,
	}

	cmd.Flags().IntP("clusters", "k", 5, "number of clusters")
	cmd.Flags().Int64("seed", 42, "random seed for centroid initialization")
	cmd.Flags().String("models-dir", "models", "directory for model artifacts")
	_ = viper.BindPFlag("train.clusters", cmd.Flags().Lookup("clusters"))
	_ = viper.BindPFlag("train.seed", cmd.Flags().Lookup("seed"))
	_ = viper.BindPFlag("models.dir", cmd.Flags().Lookup("models-dir"))

	return cmd
}

func runTrain(cmd *cobra.Command, _ []string) error {
	k := viper.GetInt("train.clusters")
	seed := viper.GetInt64("train.seed")
	modelsDir := viper.GetString("models.dir")

	store, err := storage.NewSQLiteStorage(viper.GetString("db.path"))
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	raw, err := store.GetAllTransactions(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}
	slog.Info("loaded transactions", "rows", len(raw))

	policy := cleaning.Policy{CancellationPrefix: viper.GetString("rfm.cancellation_prefix")}
	valid, report := cleaning.Clean(raw, policy)
	slog.Info("cleaned transactions",
		"kept", report.Kept,
		"cancelled", report.Cancelled,
		"missing_customer", report.MissingCustomer,
		"non_positive_quantity", report.NonPositiveQuantity,
		"non_positive_price", report.NonPositivePrice)
	if len(valid) == 0 {
		return fmt.Errorf("%w (dropped %d rows)", common.ErrNoValidRows, report.Dropped())
	}

	records, err := rfm.Compute(valid, time.Time{})
	if err != nil {
		return fmt.Errorf("failed to compute RFM features: %w", err)
	}
	slog.Info("computed RFM features", "customers", len(records))

	scaler, err := scale.Fit(records)
	if err != nil {
		return fmt.Errorf("failed to fit scaler: %w", err)
	}
	if degenerate := scaler.DegenerateFeatures(); len(degenerate) > 0 {
		slog.Warn("zero-variance features detected, using identity shift for them", "features", degenerate)
	}

	vectors := scaler.Transform(records)
	m, err := cluster.Fit(vectors, cluster.Config{K: k, Seed: seed})
	if err != nil {
		return fmt.Errorf("failed to fit k-means model: %w", err)
	}
	slog.Info("fitted k-means model", "k", k, "seed", seed, "inertia", m.Inertia)

	runID := uuid.NewString()
	trainedAt := time.Now().UTC()
	if err := artifact.SaveScaler(modelsDir, &artifact.Scaler{RunID: runID, TrainedAt: trainedAt, Scaler: scaler}); err != nil {
		return err
	}
	if err := artifact.SaveModel(modelsDir, &artifact.Model{RunID: runID, TrainedAt: trainedAt, Model: m}); err != nil {
		return err
	}

	fmt.Println(cli.FormatTitle("Training complete"))
	fmt.Println(clusterSummary(records, vectors, m))
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Artifacts saved to %s (run %s)", modelsDir, runID)))

	return nil
}

// clusterSummary renders per-cluster membership counts and average RFM,
// the same summary table the training run is judged by.
func clusterSummary(records []model.RFMRecord, vectors [][]float64, m *cluster.Model) string {
	labels := m.Assign(vectors)

	counts := make([]int, m.K)
	sums := make([][3]float64, m.K)
	for i, label := range labels {
		counts[label]++
		sums[label][0] += float64(records[i].Recency)
		sums[label][1] += float64(records[i].Frequency)
		sums[label][2] += records[i].Monetary
	}

	rows := make([][]string, 0, m.K)
	for c := 0; c < m.K; c++ {
		n := counts[c]
		if n == 0 {
			rows = append(rows, []string{fmt.Sprintf("%d", c), "0", "-", "-", "-"})
			continue
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", c),
			fmt.Sprintf("%d", n),
			fmt.Sprintf("%.1f", sums[c][0]/float64(n)),
			fmt.Sprintf("%.1f", sums[c][1]/float64(n)),
			fmt.Sprintf("%.2f", sums[c][2]/float64(n)),
		})
	}

	return cli.RenderTable([]string{"Cluster", "Count", "Avg Recency", "Avg Frequency", "Avg Monetary"}, rows)
}
