// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package calendar renders article publication times for display, in the
// Gregorian or the Jalali (Solar Hijri) calendar.
//
// Jalali dates use the 33-year arithmetic leap cycle, which agrees with the
// official Iranian calendar for the years news articles carry.
package calendar

// Days before each Gregorian month in a common year.
var gregorianMonthOffsets = [12]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

// ToJalali converts a Gregorian date to the Jalali calendar. Years before
// 1 AD are not supported.
func ToJalali(gy, gm, gd int) (jy, jm, jd int) {
	gy2 := gy
	if gm > 2 {
		gy2 = gy + 1
	}
	days := 355666 + 365*gy + (gy2+3)/4 - (gy2+99)/100 + (gy2+399)/400 + gd + gregorianMonthOffsets[gm-1]

	jy = -1595 + 33*(days/12053)
	days %= 12053
	jy += 4 * (days / 1461)
	days %= 1461
	if days > 365 {
		jy += (days - 1) / 365
		days = (days - 1) % 365
	}

	if days < 186 {
		return jy, 1 + days/31, 1 + days%31
	}
	return jy, 7 + (days-186)/30, 1 + (days-186)%30
}

// ToGregorian converts a Jalali date to the Gregorian calendar.
func ToGregorian(jy, jm, jd int) (gy, gm, gd int) {
	jy += 1595
	days := -355668 + 365*jy + (jy/33)*8 + ((jy%33)+3)/4 + jd
	if jm < 7 {
		days += (jm - 1) * 31
	} else {
		days += (jm-7)*30 + 186
	}

	gy = 400 * (days / 146097)
	days %= 146097
	if days > 36524 {
		days--
		gy += 100 * (days / 36524)
		days %= 36524
		if days >= 365 {
			days++
		}
	}
	gy += 4 * (days / 1461)
	days %= 1461
	if days > 365 {
		gy += (days - 1) / 365
		days = (days - 1) % 365
	}

	gd = days + 1
	monthDays := [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	if (gy%4 == 0 && gy%100 != 0) || gy%400 == 0 {
		monthDays[2] = 29
	}
	for gm = 1; gm <= 12 && gd > monthDays[gm]; gm++ {
		gd -= monthDays[gm]
	}
	return gy, gm, gd
}

// IsJalaliLeap reports whether jy has 30 days in Esfand.
func IsJalaliLeap(jy int) bool {
	gy, gm, gd := ToGregorian(jy, 12, 30)
	y, m, _ := ToJalali(gy, gm, gd)
	return y == jy && m == 12
}
