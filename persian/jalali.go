// Package persian provides the localization helpers used by document
// templates: Jalali (Solar Hijri) calendar conversion, Persian digit
// transliteration and number/currency formatting.
//
// Every function is pure. Nothing reads the process locale or the clock.
package persian

import (
	"fmt"
	"strings"
	"time"
)

// Sentinel is returned by the date helpers for a zero or unparsable date.
const Sentinel = "-"

var gregorianDaysBeforeMonth = [...]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

// GregorianToJalali converts a proleptic Gregorian date to the Jalali calendar.
func GregorianToJalali(gy, gm, gd int) (jy, jm, jd int) {
	gy2 := gy
	if gm > 2 {
		gy2 = gy + 1
	}
	days := 355666 + 365*gy + (gy2+3)/4 - (gy2+99)/100 + (gy2+399)/400 + gd + gregorianDaysBeforeMonth[gm-1]
	jy = -1595 + 33*(days/12053)
	days %= 12053
	jy += 4 * (days / 1461)
	days %= 1461
	if days > 365 {
		jy += (days - 1) / 365
		days = (days - 1) % 365
	}
	if days < 186 {
		jm = 1 + days/31
		jd = 1 + days%31
	} else {
		jm = 7 + (days-186)/30
		jd = 1 + (days-186)%30
	}
	return jy, jm, jd
}

// JalaliToGregorian converts a Jalali date to the proleptic Gregorian calendar.
func JalaliToGregorian(jy, jm, jd int) (gy, gm, gd int) {
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

	feb := 28
	if gy%4 == 0 && (gy%100 != 0 || gy%400 == 0) {
		feb = 29
	}
	monthDays := [...]int{0, 31, feb, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	for gm = 1; gm <= 12 && gd > monthDays[gm]; gm++ {
		gd -= monthDays[gm]
	}
	return gy, gm, gd
}

// IsJalaliLeap reports whether the Jalali year jy has 366 days, i.e. whether
// Esfand has a 30th day.
func IsJalaliLeap(jy int) bool {
	gy, gm, gd := JalaliToGregorian(jy, 12, 30)
	ny, nm, nd := GregorianToJalali(gy, gm, gd)
	return ny == jy && nm == 12 && nd == 30
}

// ToJalali formats t as a Jalali date (yyyy/mm/dd) in Persian digits.
// The date is taken in t's own location. A zero time yields Sentinel.
func ToJalali(t time.Time) string {
	if t.IsZero() {
		return Sentinel
	}
	jy, jm, jd := GregorianToJalali(t.Year(), int(t.Month()), t.Day())
	return Digits(fmt.Sprintf("%04d/%02d/%02d", jy, jm, jd))
}

// ToJalaliDateTime is ToJalali followed by the wall-clock time (HH:MM).
func ToJalaliDateTime(t time.Time) string {
	if t.IsZero() {
		return Sentinel
	}
	return ToJalali(t) + " - " + Digits(t.Format("15:04"))
}

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseToJalali parses an ISO-8601 date or timestamp and formats it with
// ToJalali. Empty or malformed input yields Sentinel.
func ParseToJalali(s string) string {
	t, ok := parseISO(s)
	if !ok {
		return Sentinel
	}
	return ToJalali(t)
}

// ParseToJalaliDateTime is the date-time variant of ParseToJalali.
func ParseToJalaliDateTime(s string) string {
	t, ok := parseISO(s)
	if !ok {
		return Sentinel
	}
	return ToJalaliDateTime(t)
}

func parseISO(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
