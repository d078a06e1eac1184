// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package regression

import (
	"math"
	"math/rand"
)

// MinTrainSamples is the smallest training partition Split will leave.
const MinTrainSamples = 2

// Split partitions sample indices 0..n-1 into a training and a holdout set
// using a seeded shuffle. The holdout has floor(n*fraction) samples, or none
// when that would leave fewer than MinTrainSamples for training. The same
// (n, fraction, seed) always yields the same partition.
func Split(n int, fraction float64, seed int64) (train, holdout []int) {
	if n <= 0 {
		return nil, nil
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n) //nolint:gosec // reproducible shuffle

	k := int(math.Floor(float64(n) * fraction))
	if k < 0 || n-k < MinTrainSamples {
		k = 0
	}

	return perm[k:], perm[:k]
}

// Subset returns the rows of X and y selected by idx.
//
//nolint:gocritic // X follows linear algebra notation
func Subset(X [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	xs := make([][]float64, len(idx))
	ys := make([]float64, len(idx))
	for i, j := range idx {
		xs[i] = X[j]
		ys[i] = y[j]
	}
	return xs, ys
}
