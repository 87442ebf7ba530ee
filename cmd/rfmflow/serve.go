package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/harperclay/rfmflow/internal/common"
	"github.com/harperclay/rfmflow/internal/inference"
	"github.com/harperclay/rfmflow/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve predictions over HTTP",
		Long: `Start the HTTP API: POST /api/predict classifies an RFM triple,
GET /api/segments returns the catalog, GET /health reports artifact state.
Both artifacts must load before serving starts.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	_ = viper.BindPFlag("serve.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr := viper.GetString("serve.addr")

	// Missing or corrupt artifacts block serving entirely.
	infCtx, err := loadInferenceContext()
	if err != nil {
		return fmt.Errorf("refusing to serve: %w", err)
	}

	swapper := inference.NewSwapper(infCtx)
	srv := server.New(swapper)

	slog.Info("serving predictions",
		"addr", addr,
		"run_id", infCtx.RunID(),
		"clusters", infCtx.Clusters())

	if err := srv.Run(cmd.Context(), addr); err != nil {
		common.LogError(err, "server stopped", common.Fields{"addr": addr})
		return err
	}

	return nil
}
