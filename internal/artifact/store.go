// Package artifact persists the fitted scaler and clustering model as
// flat JSON files. JSON float encoding uses the shortest representation
// that round-trips exactly, so reloaded parameters match the fitted ones
// bit for bit.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/harperclay/rfmflow/internal/cluster"
	"github.com/harperclay/rfmflow/internal/common"
	"github.com/harperclay/rfmflow/internal/scale"
)

// Standard artifact file names under the models directory.
const (
	ScalerFile = "rfm_scaler.json"
	ModelFile  = "rfm_kmeans.json"
)

// Scaler is the persisted form of a fitted standard scaler, stamped with
// the training run that produced it.
type Scaler struct {
	RunID     string                `json:"run_id"`
	TrainedAt time.Time             `json:"trained_at"`
	Scaler    *scale.StandardScaler `json:"scaler"`
}

// Model is the persisted form of a fitted k-means model.
type Model struct {
	RunID     string         `json:"run_id"`
	TrainedAt time.Time      `json:"trained_at"`
	Model     *cluster.Model `json:"model"`
}

// SaveScaler writes the scaler artifact under dir.
func SaveScaler(dir string, a *Scaler) error {
	return save(filepath.Join(dir, ScalerFile), a)
}

// SaveModel writes the clustering model artifact under dir.
func SaveModel(dir string, a *Model) error {
	return save(filepath.Join(dir, ModelFile), a)
}

// LoadScaler reads the scaler artifact from dir. Any failure is an
// ArtifactLoadError: callers must treat it as fatal before serving.
func LoadScaler(dir string) (*Scaler, error) {
	path := filepath.Join(dir, ScalerFile)

	var a Scaler
	if err := load(path, &a); err != nil {
		return nil, err
	}
	if a.Scaler == nil || len(a.Scaler.Mean) != scale.Features || len(a.Scaler.Std) != scale.Features {
		return nil, common.NewArtifactLoadError(path, fmt.Errorf("scaler state is incomplete"))
	}
	return &a, nil
}

// LoadModel reads the clustering model artifact from dir.
func LoadModel(dir string) (*Model, error) {
	path := filepath.Join(dir, ModelFile)

	var a Model
	if err := load(path, &a); err != nil {
		return nil, err
	}
	if a.Model == nil || len(a.Model.Centroids) == 0 {
		return nil, common.NewArtifactLoadError(path, fmt.Errorf("model state is incomplete"))
	}
	for _, c := range a.Model.Centroids {
		if len(c) != scale.Features {
			return nil, common.NewArtifactLoadError(path, fmt.Errorf("centroid dimensionality mismatch"))
		}
	}
	return &a, nil
}

func save(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create models directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", path, err)
	}
	return nil
}

func load(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return common.NewArtifactLoadError(path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return common.NewArtifactLoadError(path, err)
	}
	return nil
}
