// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package validation

import (
	"math"
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

type eventStruct struct {
	UserID    string   `json:"user_id" validate:"required,max=16"`
	ArticleID string   `json:"article_id" validate:"required"`
	Type      string   `json:"type" validate:"required,interaction_type"`
	Value     *float64 `json:"value,omitempty" validate:"omitempty,finite,gte=0"`
	Page      int      `json:"page" validate:"gte=0"`
}

func floatPtr(f float64) *float64 { return &f }

func TestValidateStruct(t *testing.T) {
	valid := eventStruct{UserID: "u1", ArticleID: "a1", Type: "view", Value: floatPtr(12.5)}

	tests := []struct {
		name      string
		mutate    func(e *eventStruct)
		wantField string
		wantTag   string
	}{
		{"valid", func(e *eventStruct) {}, "", ""},
		{"nil value", func(e *eventStruct) { e.Value = nil }, "", ""},
		{"missing user", func(e *eventStruct) { e.UserID = "" }, "user_id", "required"},
		{"user too long", func(e *eventStruct) { e.UserID = strings.Repeat("u", 17) }, "user_id", "max"},
		{"missing article", func(e *eventStruct) { e.ArticleID = "" }, "article_id", "required"},
		{"unknown type", func(e *eventStruct) { e.Type = "share" }, "type", "interaction_type"},
		{"negative value", func(e *eventStruct) { e.Value = floatPtr(-1) }, "value", "gte"},
		{"infinite value", func(e *eventStruct) { e.Value = floatPtr(math.Inf(1)) }, "value", "finite"},
		{"negative page", func(e *eventStruct) { e.Page = -1 }, "page", "gte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)

			verr := ValidateStruct(&e)
			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			errs := verr.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), verr)
			}
			if errs[0].Field() != tt.wantField || errs[0].Tag() != tt.wantTag {
				t.Errorf("error = %s/%s, want %s/%s", errs[0].Field(), errs[0].Tag(), tt.wantField, tt.wantTag)
			}
		})
	}
}

func TestRequestValidationError_Messages(t *testing.T) {
	verr := ValidateStruct(&eventStruct{Type: "bogus"})
	if verr == nil {
		t.Fatal("ValidateStruct() = nil, want error")
	}

	fields := verr.Fields()
	want := map[string]string{
		"user_id":    "user_id is required",
		"article_id": "article_id is required",
		"type":       "type must be one of view, read, like, comment, archive, follow",
	}
	for field, msg := range want {
		if fields[field] != msg {
			t.Errorf("Fields()[%q] = %q, want %q", field, fields[field], msg)
		}
	}
	if !strings.Contains(verr.Error(), "user_id is required; ") {
		t.Errorf("Error() = %q, want messages joined by '; '", verr.Error())
	}
}

func TestValidateStruct_MinMaxMessages(t *testing.T) {
	type limits struct {
		Name  string `json:"name" validate:"min=3"`
		Count int    `json:"count" validate:"max=5"`
	}

	verr := ValidateStruct(&limits{Name: "ab", Count: 9})
	if verr == nil {
		t.Fatal("ValidateStruct() = nil, want error")
	}
	fields := verr.Fields()
	if fields["name"] != "name must be at least 3 characters" {
		t.Errorf("name message = %q", fields["name"])
	}
	if fields["count"] != "count must be at most 5" {
		t.Errorf("count message = %q", fields["count"])
	}
}

func TestValidateStruct_NotAStruct(t *testing.T) {
	verr := ValidateStruct("not a struct")
	if verr == nil {
		t.Fatal("ValidateStruct(string) = nil, want error")
	}
	if verr.Errors()[0].Field() != "unknown" {
		t.Errorf("Field() = %q, want unknown", verr.Errors()[0].Field())
	}
}

func TestEmptyRequestValidationError(t *testing.T) {
	verr := &RequestValidationError{}
	if verr.Error() != "validation failed" {
		t.Errorf("Error() = %q, want %q", verr.Error(), "validation failed")
	}
}
