// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package query builds parameterized WHERE clauses for the database package.
// Values always travel as bind arguments, never as SQL text.
package query
