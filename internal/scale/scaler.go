// Package scale implements the standardization transform applied to RFM
// features before clustering.
package scale

import (
	"gonum.org/v1/gonum/stat"

	"github.com/harperclay/rfmflow/internal/common"
	"github.com/harperclay/rfmflow/internal/model"
)

// Features is the dimensionality of the RFM feature space.
const Features = 3

// StandardScaler holds per-feature population statistics learned from a
// training population. Fit it once per training run; Transform reuses the
// stored statistics and never refits.
type StandardScaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// Fit learns per-feature mean and population standard deviation over the
// training records.
func Fit(records []model.RFMRecord) (*StandardScaler, error) {
	if len(records) == 0 {
		return nil, common.ErrNoTransactions
	}

	cols := make([][]float64, Features)
	for i := range cols {
		cols[i] = make([]float64, len(records))
	}
	for row, r := range records {
		v := r.Vector()
		for i := 0; i < Features; i++ {
			cols[i][row] = v[i]
		}
	}

	s := &StandardScaler{
		Mean: make([]float64, Features),
		Std:  make([]float64, Features),
	}
	for i, col := range cols {
		s.Mean[i] = stat.Mean(col, nil)
		s.Std[i] = stat.PopStdDev(col, nil)
	}

	return s, nil
}

// DegenerateFeatures returns the indices of features whose training
// standard deviation was zero. Such features are centered but not divided,
// so their transformed values are all zero.
func (s *StandardScaler) DegenerateFeatures() []int {
	var degenerate []int
	for i, std := range s.Std {
		if std == 0 {
			degenerate = append(degenerate, i)
		}
	}
	return degenerate
}

// TransformVector standardizes a single feature vector using the stored
// training statistics.
func (s *StandardScaler) TransformVector(v []float64) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		out[i] = v[i] - s.Mean[i]
		if s.Std[i] != 0 {
			out[i] /= s.Std[i]
		}
	}
	return out
}

// Transform standardizes every record into a scaled feature vector.
func (s *StandardScaler) Transform(records []model.RFMRecord) [][]float64 {
	vectors := make([][]float64, len(records))
	for i, r := range records {
		vectors[i] = s.TransformVector(r.Vector())
	}
	return vectors
}
