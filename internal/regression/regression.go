// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package regression fits the per-user models that map article embeddings to
// predicted interest scores.
//
// Two regressors are provided:
//
//   - Ridge: closed-form L2-regularized least squares with an unpenalized
//     intercept, solved by Cholesky factorization. It picks the dual form
//     when there are fewer samples than features, which is the common case
//     for per-user training sets over dense embeddings.
//   - MLP: a single hidden layer ReLU network trained with Adam on squared
//     loss, following the usual defaults of 100 hidden units, learning rate
//     1e-3 and L2 penalty 1e-4.
//
// Fitted models are plain structs with exported fields so they can be gob
// encoded by the model store. They are immutable after fitting and safe for
// concurrent Predict calls.
package regression

import (
	"errors"
	"fmt"
	"math"
)

// ErrModelFit is returned when a regressor cannot be fitted, for example
// because the input is empty, contains non-finite values, or the system is
// numerically singular.
var ErrModelFit = errors.New("model fit failed")

// Kinds of regressors, stored in model metadata.
const (
	KindRidge = "ridge"
	KindMLP   = "mlp"
)

// Regressor is a fitted model.
type Regressor interface {
	// Predict returns the predicted score for a feature vector of length Dim().
	Predict(x []float64) float64

	// Dim returns the feature dimensionality the model was fitted on.
	Dim() int

	// Kind returns the regressor kind (KindRidge or KindMLP).
	Kind() string
}

// MSE returns the mean squared error of model on (X, y). It returns 0 for an
// empty set.
func MSE(model Regressor, X [][]float64, y []float64) float64 {
	if len(X) == 0 {
		return 0
	}
	var sum float64
	for i, row := range X {
		d := model.Predict(row) - y[i]
		sum += d * d
	}
	return sum / float64(len(X))
}

// checkInput validates the design matrix and targets and returns the
// feature dimensionality.
func checkInput(X [][]float64, y []float64) (int, error) {
	if len(X) == 0 {
		return 0, fmt.Errorf("%w: no samples", ErrModelFit)
	}
	if len(X) != len(y) {
		return 0, fmt.Errorf("%w: %d samples but %d targets", ErrModelFit, len(X), len(y))
	}
	d := len(X[0])
	if d == 0 {
		return 0, fmt.Errorf("%w: zero-length feature vectors", ErrModelFit)
	}
	for i, row := range X {
		if len(row) != d {
			return 0, fmt.Errorf("%w: sample %d has %d features, want %d", ErrModelFit, i, len(row), d)
		}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, fmt.Errorf("%w: non-finite feature in sample %d", ErrModelFit, i)
			}
		}
		if math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			return 0, fmt.Errorf("%w: non-finite target for sample %d", ErrModelFit, i)
		}
	}
	return d, nil
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
