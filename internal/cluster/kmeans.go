// Package cluster implements k-means segmentation over scaled RFM vectors.
package cluster

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/harperclay/rfmflow/internal/common"
)

// Fit defaults, matching the training configuration the segment catalog
// was calibrated against.
const (
	DefaultMaxIterations = 300
	DefaultRestarts      = 10

	convergenceTol = 1e-6
)

// Config controls a k-means fit. The seed is an explicit parameter: given
// the same seed and input order, Fit is fully reproducible.
type Config struct {
	K             int
	Seed          int64
	MaxIterations int
	Restarts      int
}

// Model is a fitted k-means clustering over the scaled RFM feature space.
type Model struct {
	Centroids [][]float64 `json:"centroids"`
	Inertia   float64     `json:"inertia"`
	K         int         `json:"k"`
	Seed      int64       `json:"seed"`
}

// Fit runs Lloyd's algorithm with k-means++ seeding. Multiple restarts are
// performed from the same seeded source and the run with the lowest
// within-cluster sum of squares wins.
func Fit(vectors [][]float64, cfg Config) (*Model, error) {
	if cfg.K < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", common.ErrInvalidConfig, cfg.K)
	}
	if len(vectors) < cfg.K {
		return nil, fmt.Errorf("%w: need at least %d vectors for k=%d, got %d",
			common.ErrInvalidConfig, cfg.K, cfg.K, len(vectors))
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.Restarts <= 0 {
		cfg.Restarts = DefaultRestarts
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	best := &Model{K: cfg.K, Seed: cfg.Seed, Inertia: math.Inf(1)}
	for restart := 0; restart < cfg.Restarts; restart++ {
		centroids := seedCentroids(vectors, cfg.K, rng)
		centroids, inertia := lloyd(vectors, centroids, cfg.MaxIterations)
		if inertia < best.Inertia {
			best.Centroids = centroids
			best.Inertia = inertia
		}
	}

	return best, nil
}

// Predict returns the index of the nearest centroid under Euclidean
// distance. Ties break to the lowest index.
func (m *Model) Predict(v []float64) int {
	idx, _ := nearest(v, m.Centroids)
	return idx
}

// Assign labels every vector with its nearest centroid.
func (m *Model) Assign(vectors [][]float64) []int {
	labels := make([]int, len(vectors))
	for i, v := range vectors {
		labels[i] = m.Predict(v)
	}
	return labels
}

// seedCentroids implements k-means++ initialization: the first centroid is
// drawn uniformly, each subsequent one with probability proportional to
// its squared distance from the nearest centroid chosen so far.
func seedCentroids(vectors [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, cloneVector(vectors[rng.Intn(len(vectors))]))

	distSq := make([]float64, len(vectors))
	for len(centroids) < k {
		var total float64
		for i, v := range vectors {
			_, d := nearest(v, centroids)
			distSq[i] = d * d
			total += distSq[i]
		}

		if total == 0 {
			// All points coincide with existing centroids.
			centroids = append(centroids, cloneVector(vectors[rng.Intn(len(vectors))]))
			continue
		}

		target := rng.Float64() * total
		chosen := len(vectors) - 1
		var cumulative float64
		for i, d := range distSq {
			cumulative += d
			if cumulative >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, cloneVector(vectors[chosen]))
	}

	return centroids
}

// lloyd iterates assignment and centroid updates until centroids stop
// moving or the iteration cap is reached. Returns the final centroids and
// the within-cluster sum of squares.
func lloyd(vectors [][]float64, centroids [][]float64, maxIterations int) ([][]float64, float64) {
	k := len(centroids)
	dim := len(vectors[0])
	labels := make([]int, len(vectors))

	for iter := 0; iter < maxIterations; iter++ {
		for i, v := range vectors {
			labels[i], _ = nearest(v, centroids)
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, v := range vectors {
			floats.Add(sums[labels[i]], v)
			counts[labels[i]]++
		}

		moved := 0.0
		for c := range centroids {
			if counts[c] == 0 {
				// Empty cluster: reseed from the point farthest from its
				// assigned centroid.
				sums[c] = cloneVector(farthestPoint(vectors, labels, centroids))
				counts[c] = 1
			}
			floats.Scale(1/float64(counts[c]), sums[c])
			moved += floats.Distance(centroids[c], sums[c], 2)
			centroids[c] = sums[c]
		}

		if moved < convergenceTol {
			break
		}
	}

	var inertia float64
	for _, v := range vectors {
		_, d := nearest(v, centroids)
		inertia += d * d
	}

	return centroids, inertia
}

// nearest returns the index of and distance to the closest centroid.
func nearest(v []float64, centroids [][]float64) (int, float64) {
	bestIdx := 0
	bestDist := math.Inf(1)
	for i, c := range centroids {
		if d := floats.Distance(v, c, 2); d < bestDist {
			bestIdx = i
			bestDist = d
		}
	}
	return bestIdx, bestDist
}

func farthestPoint(vectors [][]float64, labels []int, centroids [][]float64) []float64 {
	worstIdx := 0
	worstDist := -1.0
	for i, v := range vectors {
		if d := floats.Distance(v, centroids[labels[i]], 2); d > worstDist {
			worstIdx = i
			worstDist = d
		}
	}
	return vectors[worstIdx]
}

func cloneVector(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
