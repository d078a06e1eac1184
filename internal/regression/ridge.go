// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package regression

import (
	"fmt"
)

// RidgeConfig contains configuration for ridge regression.
type RidgeConfig struct {
	// Lambda is the L2 regularization strength. It must be positive so the
	// normal equations stay positive definite.
	Lambda float64 `koanf:"lambda"`
}

// DefaultRidgeConfig returns the default ridge configuration.
func DefaultRidgeConfig() RidgeConfig {
	return RidgeConfig{Lambda: 0.1}
}

// Validate checks the ridge configuration.
func (c *RidgeConfig) Validate() error {
	if c.Lambda <= 0 {
		return fmt.Errorf("training.ridge.lambda must be positive, got %v", c.Lambda)
	}
	return nil
}

// Ridge is a fitted linear model: score = Weights . x + Intercept.
type Ridge struct {
	Weights   []float64
	Intercept float64
}

// FitRidge fits ridge regression with an unpenalized intercept.
//
// Features and targets are centered, then the penalized least squares
// problem is solved in whichever form is smaller: the primal
// (Xc^T Xc + λI) w = Xc^T yc when n > d, or the dual
// (Xc Xc^T + λI) α = yc with w = Xc^T α otherwise. Both systems are
// symmetric positive definite for λ > 0 and are solved by Cholesky.
//
//nolint:gocritic // X follows standard linear algebra notation
func FitRidge(X [][]float64, y []float64, cfg RidgeConfig) (*Ridge, error) {
	d, err := checkInput(X, y)
	if err != nil {
		return nil, err
	}
	if cfg.Lambda <= 0 {
		cfg.Lambda = DefaultRidgeConfig().Lambda
	}
	n := len(X)

	// Column means and centered copies
	xMean := make([]float64, d)
	var yMean float64
	for i, row := range X {
		for j, v := range row {
			xMean[j] += v
		}
		yMean += y[i]
	}
	for j := range xMean {
		xMean[j] /= float64(n)
	}
	yMean /= float64(n)

	Xc := make([][]float64, n)
	yc := make([]float64, n)
	for i, row := range X {
		Xc[i] = make([]float64, d)
		for j, v := range row {
			Xc[i][j] = v - xMean[j]
		}
		yc[i] = y[i] - yMean
	}

	var w []float64
	if n <= d {
		w, err = ridgeDual(Xc, yc, cfg.Lambda)
	} else {
		w, err = ridgePrimal(Xc, yc, cfg.Lambda)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelFit, err)
	}

	intercept := yMean - dot(w, xMean)
	if !finite(intercept) || !finite(w...) {
		return nil, fmt.Errorf("%w: non-finite coefficients", ErrModelFit)
	}

	return &Ridge{Weights: w, Intercept: intercept}, nil
}

// ridgeDual solves (Xc Xc^T + λI) α = yc and returns w = Xc^T α.
//
//nolint:gocritic // Xc follows standard linear algebra notation
func ridgeDual(Xc [][]float64, yc []float64, lambda float64) ([]float64, error) {
	n := len(Xc)
	d := len(Xc[0])

	K := make([][]float64, n)
	for i := range K {
		K[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			v := dot(Xc[i], Xc[j])
			K[i][j] = v
			K[j][i] = v
		}
		K[i][i] += lambda
	}

	L, err := choleskyDecomposition(K)
	if err != nil {
		return nil, err
	}
	alpha := choleskySolve(L, yc)

	w := make([]float64, d)
	for i, a := range alpha {
		for j, v := range Xc[i] {
			w[j] += a * v
		}
	}
	return w, nil
}

// ridgePrimal solves (Xc^T Xc + λI) w = Xc^T yc.
//
//nolint:gocritic // Xc follows standard linear algebra notation
func ridgePrimal(Xc [][]float64, yc []float64, lambda float64) ([]float64, error) {
	d := len(Xc[0])

	G := make([][]float64, d)
	for i := range G {
		G[i] = make([]float64, d)
	}
	rhs := make([]float64, d)
	for r, row := range Xc {
		for i := 0; i < d; i++ {
			if row[i] == 0 {
				continue
			}
			for j := 0; j <= i; j++ {
				G[i][j] += row[i] * row[j]
			}
			rhs[i] += row[i] * yc[r]
		}
	}
	for i := 0; i < d; i++ {
		for j := 0; j < i; j++ {
			G[j][i] = G[i][j]
		}
		G[i][i] += lambda
	}

	L, err := choleskyDecomposition(G)
	if err != nil {
		return nil, err
	}
	return choleskySolve(L, rhs), nil
}

// Predict returns Weights . x + Intercept.
func (r *Ridge) Predict(x []float64) float64 {
	return dot(r.Weights, x) + r.Intercept
}

// Dim returns the number of features.
func (r *Ridge) Dim() int { return len(r.Weights) }

// Kind returns KindRidge.
func (r *Ridge) Kind() string { return KindRidge }
