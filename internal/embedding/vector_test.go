// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package embedding

import (
	"errors"
	"math"
	"testing"
)

func TestParseVector(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []float64
		wantErr bool
	}{
		{"simple", "0.1,0.2,0.3", []float64{0.1, 0.2, 0.3}, false},
		{"trailing comma", "1,2,3,", []float64{1, 2, 3}, false},
		{"surrounding whitespace", "  -1.5, 2e-3 ,4\n", []float64{-1.5, 0.002, 4}, false},
		{"single value", "7", []float64{7}, false},
		{"empty", "", nil, true},
		{"only comma", ",", nil, true},
		{"empty component", "1,,2", nil, true},
		{"garbage", "1,abc,2", nil, true},
		{"nan", "1,NaN", nil, true},
		{"inf", "+Inf,1", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVector(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrVectorParse) {
					t.Fatalf("ParseVector(%q) error = %v, want ErrVectorParse", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVector(%q) unexpected error: %v", tt.input, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseVector(%q) len = %d, want %d", tt.input, len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseVector(%q)[%d] = %v, want %v", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFormatVectorRoundTrip(t *testing.T) {
	vec := []float64{0.1, -2.5, 1e-7, 123456.789, 0}
	s := FormatVector(vec)

	got, err := ParseVector(s)
	if err != nil {
		t.Fatalf("ParseVector(FormatVector()) error: %v", err)
	}
	for i := range vec {
		if got[i] != vec[i] {
			t.Errorf("component %d = %v, want %v", i, got[i], vec[i])
		}
	}

	if s := FormatVector([]float64{1, 0.5}); s != "1,0.5" {
		t.Errorf("FormatVector() = %q, want %q", s, "1,0.5")
	}
}

func TestNormalize(t *testing.T) {
	vec := []float64{3, 4}
	Normalize(vec)
	if math.Abs(vec[0]-0.6) > 1e-12 || math.Abs(vec[1]-0.8) > 1e-12 {
		t.Errorf("Normalize([3,4]) = %v, want [0.6 0.8]", vec)
	}

	zero := []float64{0, 0}
	Normalize(zero)
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("Normalize(zero) = %v, want unchanged", zero)
	}
}

func TestArticleText(t *testing.T) {
	tests := []struct {
		title, abstract, want string
	}{
		{"Title", "Abstract", "Title Abstract"},
		{" Title ", "", "Title"},
		{"", "Only abstract", "Only abstract"},
		{"", "", ""},
	}
	for _, tt := range tests {
		if got := ArticleText(tt.title, tt.abstract); got != tt.want {
			t.Errorf("ArticleText(%q, %q) = %q, want %q", tt.title, tt.abstract, got, tt.want)
		}
	}
}
