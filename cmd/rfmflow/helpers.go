package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/harperclay/rfmflow/internal/artifact"
	"github.com/harperclay/rfmflow/internal/cleaning"
	"github.com/harperclay/rfmflow/internal/common"
	"github.com/harperclay/rfmflow/internal/inference"
	"github.com/harperclay/rfmflow/internal/model"
)

// loadInferenceContext loads both persisted artifacts and the segment
// catalog into an immutable inference context. Artifact load failures are
// returned as-is; they are fatal for any command that needs to classify.
func loadInferenceContext() (*inference.Context, error) {
	modelsDir := viper.GetString("models.dir")
	if modelsDir == "" {
		return nil, fmt.Errorf("%w: models.dir", common.ErrMissingConfig)
	}

	scalerArtifact, err := artifact.LoadScaler(modelsDir)
	if err != nil {
		return nil, err
	}
	modelArtifact, err := artifact.LoadModel(modelsDir)
	if err != nil {
		return nil, err
	}
	if scalerArtifact.RunID != modelArtifact.RunID {
		slog.Warn("scaler and model come from different training runs",
			"scaler_run", scalerArtifact.RunID,
			"model_run", modelArtifact.RunID)
	}

	catalog := model.DefaultCatalog()
	if path := viper.GetString("segments.labels_path"); path != "" {
		catalog, err = model.LoadCatalog(path)
		if err != nil {
			return nil, err
		}
	}

	policy := cleaning.Policy{CancellationPrefix: viper.GetString("rfm.cancellation_prefix")}

	return inference.NewContext(scalerArtifact.Scaler, modelArtifact.Model, catalog, policy, modelArtifact.RunID)
}
