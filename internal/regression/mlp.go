// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package regression

import (
	"context"
	"fmt"
	"math"
	"math/rand"
)

// MLPConfig contains configuration for the multilayer perceptron regressor.
type MLPConfig struct {
	// HiddenUnits is the width of the single ReLU hidden layer.
	HiddenUnits int `koanf:"hidden_units"`

	// LearningRate is the Adam step size.
	LearningRate float64 `koanf:"learning_rate"`

	// Alpha is the L2 penalty on the weights.
	Alpha float64 `koanf:"alpha"`

	// MaxIter is the maximum number of epochs.
	MaxIter int `koanf:"max_iter"`

	// Tol is the minimum loss improvement; training stops after
	// NIterNoChange consecutive epochs that improve by less than Tol.
	Tol           float64 `koanf:"tol"`
	NIterNoChange int     `koanf:"n_iter_no_change"`

	// BatchSize is the minibatch size, capped at the number of samples.
	BatchSize int `koanf:"batch_size"`
}

// DefaultMLPConfig returns the default MLP configuration.
func DefaultMLPConfig() MLPConfig {
	return MLPConfig{
		HiddenUnits:   100,
		LearningRate:  0.001,
		Alpha:         0.0001,
		MaxIter:       500,
		Tol:           1e-4,
		NIterNoChange: 10,
		BatchSize:     200,
	}
}

// Validate checks the MLP configuration.
func (c *MLPConfig) Validate() error {
	if c.HiddenUnits < 1 {
		return fmt.Errorf("training.mlp.hidden_units must be at least 1, got %d", c.HiddenUnits)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("training.mlp.learning_rate must be positive, got %v", c.LearningRate)
	}
	if c.Alpha < 0 {
		return fmt.Errorf("training.mlp.alpha must be non-negative, got %v", c.Alpha)
	}
	if c.MaxIter < 1 {
		return fmt.Errorf("training.mlp.max_iter must be at least 1, got %d", c.MaxIter)
	}
	if c.NIterNoChange < 1 {
		return fmt.Errorf("training.mlp.n_iter_no_change must be at least 1, got %d", c.NIterNoChange)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("training.mlp.batch_size must be at least 1, got %d", c.BatchSize)
	}
	return nil
}

// MLP is a fitted one-hidden-layer ReLU network with a linear output.
type MLP struct {
	// Hidden is HiddenUnits x Dim.
	Hidden     [][]float64
	HiddenBias []float64
	Output     []float64
	OutputBias float64

	// Epochs is the number of epochs actually run.
	Epochs int
	// Loss is the final training loss.
	Loss float64
}

// Adam hyperparameters.
const (
	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-8
)

// FitMLP trains an MLP on (X, y). Weights are drawn from a Glorot uniform
// distribution seeded with seed, so fits are reproducible. The context is
// checked between epochs.
//
//nolint:gocyclo,gocritic // gocyclo: backprop with Adam is one unit; gocritic: X follows linear algebra notation
func FitMLP(ctx context.Context, X [][]float64, y []float64, cfg MLPConfig, seed int64) (*MLP, error) {
	d, err := checkInput(X, y)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelFit, err)
	}

	n := len(X)
	h := cfg.HiddenUnits
	batch := cfg.BatchSize
	if batch > n {
		batch = n
	}

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible initialization, not security sensitive
	m := newMLP(d, h, rng)

	// Parameters are flattened into one slice of references for Adam
	params := m.paramRefs()
	grads := make([]float64, len(params))
	mom := make([]float64, len(params))
	vel := make([]float64, len(params))

	hidden := make([]float64, h)
	bestLoss := math.Inf(1)
	noImprove := 0
	step := 0
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	for epoch := 1; epoch <= cfg.MaxIter; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })

		var epochLoss float64
		for start := 0; start < n; start += batch {
			end := start + batch
			if end > n {
				end = n
			}
			bs := float64(end - start)

			for i := range grads {
				grads[i] = 0
			}

			var batchLoss float64
			for _, idx := range order[start:end] {
				x := X[idx]
				pred := m.forward(x, hidden)
				diff := pred - y[idx]
				batchLoss += diff * diff

				// Output layer gradients
				delta := diff / bs
				m.accumulate(grads, x, hidden, delta)
			}

			// L2 penalty on weights (not biases)
			var sq float64
			m.eachWeight(func(k int, w float64) {
				sq += w * w
				grads[k] += cfg.Alpha * w / bs
			})
			batchLoss = batchLoss/(2*bs) + cfg.Alpha*sq/(2*bs)
			if !finite(batchLoss) {
				return nil, fmt.Errorf("%w: loss diverged at epoch %d", ErrModelFit, epoch)
			}
			epochLoss += batchLoss * bs

			// Adam update
			step++
			lr := cfg.LearningRate * math.Sqrt(1-math.Pow(adamBeta2, float64(step))) / (1 - math.Pow(adamBeta1, float64(step)))
			for k, p := range params {
				g := grads[k]
				mom[k] = adamBeta1*mom[k] + (1-adamBeta1)*g
				vel[k] = adamBeta2*vel[k] + (1-adamBeta2)*g*g
				*p -= lr * mom[k] / (math.Sqrt(vel[k]) + adamEpsilon)
			}
		}

		epochLoss /= float64(n)
		m.Epochs = epoch
		m.Loss = epochLoss

		if epochLoss > bestLoss-cfg.Tol {
			noImprove++
		} else {
			noImprove = 0
		}
		if epochLoss < bestLoss {
			bestLoss = epochLoss
		}
		if noImprove > cfg.NIterNoChange {
			break
		}
	}

	return m, nil
}

func newMLP(d, h int, rng *rand.Rand) *MLP {
	m := &MLP{
		Hidden:     make([][]float64, h),
		HiddenBias: make([]float64, h),
		Output:     make([]float64, h),
	}

	// Glorot uniform: U(-b, b) with b = sqrt(6 / (fan_in + fan_out))
	b1 := math.Sqrt(6.0 / float64(d+h))
	for i := range m.Hidden {
		m.Hidden[i] = make([]float64, d)
		for j := range m.Hidden[i] {
			m.Hidden[i][j] = uniform(rng, b1)
		}
		m.HiddenBias[i] = uniform(rng, b1)
	}

	b2 := math.Sqrt(6.0 / float64(h+1))
	for i := range m.Output {
		m.Output[i] = uniform(rng, b2)
	}
	m.OutputBias = uniform(rng, b2)
	return m
}

func uniform(rng *rand.Rand, bound float64) float64 {
	return (rng.Float64()*2 - 1) * bound
}

// paramRefs returns pointers to every parameter in a fixed order:
// hidden weights row-major, hidden biases, output weights, output bias.
func (m *MLP) paramRefs() []*float64 {
	var refs []*float64
	for i := range m.Hidden {
		for j := range m.Hidden[i] {
			refs = append(refs, &m.Hidden[i][j])
		}
	}
	for i := range m.HiddenBias {
		refs = append(refs, &m.HiddenBias[i])
	}
	for i := range m.Output {
		refs = append(refs, &m.Output[i])
	}
	return append(refs, &m.OutputBias)
}

// eachWeight visits the non-bias parameters with their index in paramRefs order.
func (m *MLP) eachWeight(fn func(k int, w float64)) {
	k := 0
	for i := range m.Hidden {
		for _, w := range m.Hidden[i] {
			fn(k, w)
			k++
		}
	}
	k += len(m.HiddenBias)
	for _, w := range m.Output {
		fn(k, w)
		k++
	}
}

// forward computes the prediction for x, writing hidden activations into hidden.
func (m *MLP) forward(x, hidden []float64) float64 {
	out := m.OutputBias
	for i, row := range m.Hidden {
		a := dot(row, x) + m.HiddenBias[i]
		if a < 0 {
			a = 0
		}
		hidden[i] = a
		out += m.Output[i] * a
	}
	return out
}

// accumulate adds the gradients of one sample with output error delta into
// grads, in paramRefs order.
func (m *MLP) accumulate(grads, x, hidden []float64, delta float64) {
	h := len(m.Hidden)
	d := len(x)
	hbOff := h * d
	outOff := hbOff + h

	for i := 0; i < h; i++ {
		grads[outOff+i] += delta * hidden[i]
		if hidden[i] <= 0 {
			continue
		}
		back := delta * m.Output[i]
		row := i * d
		for j, v := range x {
			grads[row+j] += back * v
		}
		grads[hbOff+i] += back
	}
	grads[outOff+h] += delta
}

// Predict returns the network output for x.
func (m *MLP) Predict(x []float64) float64 {
	hidden := make([]float64, len(m.Hidden))
	return m.forward(x, hidden)
}

// Dim returns the number of input features.
func (m *MLP) Dim() int {
	if len(m.Hidden) == 0 {
		return 0
	}
	return len(m.Hidden[0])
}

// Kind returns KindMLP.
func (m *MLP) Kind() string { return KindMLP }
