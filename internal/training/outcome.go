// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package training

import "time"

// Outcome is the result of training one user.
type Outcome string

// Outcomes of TrainUser.
const (
	OutcomeTrained Outcome = "trained"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
	OutcomeTimeout Outcome = "timeout"
)

// UserOutcome reports what happened to one user in a cycle.
type UserOutcome struct {
	UserID  string  `json:"user_id"`
	Outcome Outcome `json:"outcome"`

	// Err is set for skipped, failed and timeout outcomes.
	Err error `json:"-"`

	// Samples and ValidationMSE are set for trained users.
	Samples       int     `json:"samples,omitempty"`
	ValidationMSE float64 `json:"validation_mse,omitempty"`

	// Watermark is the trained_through value written for trained users.
	Watermark int64 `json:"watermark,omitempty"`

	Duration time.Duration `json:"duration"`
}

// CycleSummary aggregates the outcomes of one training cycle.
type CycleSummary struct {
	CorrelationID string        `json:"correlation_id"`
	StartedAt     time.Time     `json:"started_at"`
	Duration      time.Duration `json:"duration"`

	// Dirty is the number of users found pending at the start of the cycle.
	Dirty int `json:"dirty"`

	Trained  int `json:"trained"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
	TimedOut int `json:"timed_out"`

	Users []UserOutcome `json:"users"`
}

func (s *CycleSummary) add(o UserOutcome) {
	switch o.Outcome {
	case OutcomeTrained:
		s.Trained++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
	case OutcomeTimeout:
		s.TimedOut++
	}
	s.Users = append(s.Users, o)
}

// Processed returns the number of users with an outcome.
func (s *CycleSummary) Processed() int {
	return len(s.Users)
}
