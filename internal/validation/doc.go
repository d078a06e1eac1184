// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared by the process; it caches struct
// metadata and is safe for concurrent use. Field names in error messages are
// taken from json tags, so messages match the wire names callers send.
//
// # Custom Tags
//
//   - interaction_type: one of view, read, like, comment, archive, follow
//   - finite: a float that is neither NaN nor infinite
//
// # Usage
//
//	type InteractionEvent struct {
//	    UserID    string   `json:"user_id" validate:"required,max=255"`
//	    ArticleID string   `json:"article_id" validate:"required,max=255"`
//	    Type      string   `json:"type" validate:"required,interaction_type"`
//	    Value     *float64 `json:"value" validate:"omitempty,finite,gte=0"`
//	}
//
//	if verr := validation.ValidateStruct(&event); verr != nil {
//	    return fmt.Errorf("%w: %v", events.ErrInvalidEvent, verr)
//	}
//
// ValidateStruct returns a *RequestValidationError listing every failing
// field; Fields() gives a field to message map for structured logging.
package validation
