// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package calendar

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // Asia/Tehran must resolve on hosts without zoneinfo

	"github.com/tomtom215/feedrank/internal/config"
)

const persianZero = '۰'

// PersianDigits replaces ASCII digits in s with Extended Arabic-Indic digits.
func PersianDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return persianZero + (r - '0')
		}
		return r
	}, s)
}

// Formatter renders unix timestamps as "YYYY-MM-DD HH:MM:SS".
type Formatter struct {
	loc           *time.Location
	jalali        bool
	persianDigits bool
}

// NewFormatter builds a Formatter from the ranking configuration.
func NewFormatter(cfg *config.RankingConfig) (*Formatter, error) {
	tz := cfg.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}

	var jalali bool
	switch cfg.Calendar {
	case config.CalendarJalali:
		jalali = true
	case config.CalendarGregorian, "":
	default:
		return nil, fmt.Errorf("unknown calendar %q", cfg.Calendar)
	}
	return &Formatter{loc: loc, jalali: jalali, persianDigits: cfg.PersianDigits}, nil
}

// Format renders the unix timestamp sec in the formatter's zone and calendar.
func (f *Formatter) Format(sec int64) string {
	t := time.Unix(sec, 0).In(f.loc)
	y, m, d := t.Year(), int(t.Month()), t.Day()
	if f.jalali {
		y, m, d = ToJalali(y, m, d)
	}

	s := fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", y, m, d, t.Hour(), t.Minute(), t.Second())
	if f.persianDigits {
		s = PersianDigits(s)
	}
	return s
}

// Location returns the display time zone.
func (f *Formatter) Location() *time.Location {
	return f.loc
}
