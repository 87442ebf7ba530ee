package cluster

// KResult is one point on the elbow curve: the within-cluster sum of
// squares obtained with k clusters.
type KResult struct {
	K       int
	Inertia float64
}

// Sweep fits models for k = 1..maxK over the same vectors and seed and
// returns their inertias. The progress callback, if non-nil, is invoked
// after each completed fit. The choice of k from the curve is left to the
// operator; production fixes k=5.
func Sweep(vectors [][]float64, maxK int, seed int64, progress func(k int)) ([]KResult, error) {
	if maxK > len(vectors) {
		maxK = len(vectors)
	}

	results := make([]KResult, 0, maxK)
	for k := 1; k <= maxK; k++ {
		m, err := Fit(vectors, Config{K: k, Seed: seed})
		if err != nil {
			return nil, err
		}
		results = append(results, KResult{K: k, Inertia: m.Inertia})
		if progress != nil {
			progress(k)
		}
	}

	return results, nil
}
