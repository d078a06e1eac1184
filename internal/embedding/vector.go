// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package embedding

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrVectorParse marks a persisted vector that cannot be decoded.
var ErrVectorParse = errors.New("malformed embedding vector")

// ParseVector decodes the comma-joined decimal form stored in the articles
// table. Surrounding whitespace and one trailing comma are tolerated. Empty
// input, empty components, NaN and Inf are rejected with ErrVectorParse.
func ParseVector(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ",")
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrVectorParse)
	}

	parts := strings.Split(s, ",")
	vec := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: component %d: %v", ErrVectorParse, i, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: component %d is not finite", ErrVectorParse, i)
		}
		vec[i] = v
	}
	return vec, nil
}

// FormatVector encodes vec in the form ParseVector reads, using the shortest
// representation that round-trips each component exactly.
func FormatVector(vec []float64) string {
	var b strings.Builder
	b.Grow(len(vec) * 12)
	for i, v := range vec {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
	return b.String()
}

// Normalize scales vec to unit L2 norm in place. A zero vector is left alone.
func Normalize(vec []float64) {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
}
