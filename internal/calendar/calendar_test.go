// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package calendar

import (
	"testing"
	"time"

	"github.com/tomtom215/feedrank/internal/config"
)

func TestToJalali(t *testing.T) {
	tests := []struct {
		gy, gm, gd int
		jy, jm, jd int
	}{
		{2024, 3, 20, 1403, 1, 1},
		{2024, 3, 19, 1402, 12, 29},
		{2025, 3, 20, 1403, 12, 30},
		{2025, 3, 21, 1404, 1, 1},
		{2024, 10, 5, 1403, 7, 14},
		{2000, 1, 1, 1378, 10, 11},
		{1979, 2, 11, 1357, 11, 22},
	}

	for _, tt := range tests {
		jy, jm, jd := ToJalali(tt.gy, tt.gm, tt.gd)
		if jy != tt.jy || jm != tt.jm || jd != tt.jd {
			t.Errorf("ToJalali(%d, %d, %d) = %d-%d-%d, want %d-%d-%d",
				tt.gy, tt.gm, tt.gd, jy, jm, jd, tt.jy, tt.jm, tt.jd)
		}
	}
}

func TestJalaliRoundTrip(t *testing.T) {
	day := time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2080, 1, 1, 0, 0, 0, 0, time.UTC)
	for ; day.Before(end); day = day.AddDate(0, 0, 1) {
		jy, jm, jd := ToJalali(day.Year(), int(day.Month()), day.Day())
		gy, gm, gd := ToGregorian(jy, jm, jd)
		if gy != day.Year() || gm != int(day.Month()) || gd != day.Day() {
			t.Fatalf("round trip of %s via %d-%d-%d = %d-%d-%d", day.Format("2006-01-02"), jy, jm, jd, gy, gm, gd)
		}
	}
}

func TestIsJalaliLeap(t *testing.T) {
	leap := map[int]bool{1395: true, 1399: true, 1403: true, 1408: true}
	for y := 1395; y <= 1410; y++ {
		if got := IsJalaliLeap(y); got != leap[y] {
			t.Errorf("IsJalaliLeap(%d) = %v, want %v", y, got, leap[y])
		}
	}
}

func TestPersianDigits(t *testing.T) {
	if got := PersianDigits("1403-07-14 12:50:00"); got != "۱۴۰۳-۰۷-۱۴ ۱۲:۵۰:۰۰" {
		t.Errorf("PersianDigits() = %q", got)
	}
	if got := PersianDigits("abc"); got != "abc" {
		t.Errorf("PersianDigits(abc) = %q, want abc", got)
	}
}

func TestFormatter(t *testing.T) {
	const ts = 1728120000 // 2024-10-05 08:20:00 UTC

	tests := []struct {
		name string
		cfg  config.RankingConfig
		want string
	}{
		{
			name: "jalali persian tehran",
			cfg:  config.RankingConfig{Timezone: "Asia/Tehran", Calendar: config.CalendarJalali, PersianDigits: true},
			want: "۱۴۰۳-۰۷-۱۴ ۱۲:۵۰:۰۰",
		},
		{
			name: "jalali latin digits",
			cfg:  config.RankingConfig{Timezone: "Asia/Tehran", Calendar: config.CalendarJalali},
			want: "1403-07-14 12:50:00",
		},
		{
			name: "gregorian utc",
			cfg:  config.RankingConfig{Timezone: "UTC", Calendar: config.CalendarGregorian},
			want: "2024-10-05 08:20:00",
		},
		{
			name: "defaults",
			cfg:  config.RankingConfig{},
			want: "2024-10-05 08:20:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFormatter(&tt.cfg)
			if err != nil {
				t.Fatalf("NewFormatter() error = %v", err)
			}
			if got := f.Format(ts); got != tt.want {
				t.Errorf("Format(%d) = %q, want %q", ts, got, tt.want)
			}
		})
	}
}

func TestNewFormatterErrors(t *testing.T) {
	if _, err := NewFormatter(&config.RankingConfig{Timezone: "Mars/Olympus"}); err == nil {
		t.Error("NewFormatter(bad timezone) error = nil, want error")
	}
	if _, err := NewFormatter(&config.RankingConfig{Calendar: "lunar"}); err == nil {
		t.Error("NewFormatter(bad calendar) error = nil, want error")
	}
}
