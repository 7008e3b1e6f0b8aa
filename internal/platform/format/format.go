// Package format turns domain values into the strings shown to clinic staff.
// Everything here is pure: callers pass "now" and a location explicitly.
package format

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Date renders a date as "1 January 2025".
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2 January 2006")
}

// Time renders a clock time as "9am", "11:30am" or "12pm".
func Time(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if t.Minute() == 0 {
		return strings.ToLower(t.Format("3PM"))
	}
	return strings.ToLower(t.Format("3:04PM"))
}

// TimeRange renders "9am to 3pm".
func TimeRange(start, end time.Time) string {
	return Time(start) + " to " + Time(end)
}

// RelativeDate describes t relative to now by calendar day in now's location:
// "today", "tomorrow", "yesterday", "in 3 days", "3 days ago", then months
// ("in 2 months", "1 month ago") and years.
func RelativeDate(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.In(now.Location())

	days := daysBetween(now, t)
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days == -1:
		return "yesterday"
	}

	n := days
	if n < 0 {
		n = -n
	}

	var amount string
	switch {
	case n < 31:
		amount = plural(n, "day")
	case n < 365:
		amount = plural(n/30, "month")
	default:
		amount = plural(n/365, "year")
	}

	if days > 0 {
		return "in " + amount
	}
	return amount + " ago"
}

// NHSNumber groups a ten or eleven character NHS number as 3/3/rest:
// "99900900829" -> "999 009 00829". Short values are returned unchanged.
func NHSNumber(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if len(s) <= 6 {
		return s
	}
	return s[:3] + " " + s[3:6] + " " + s[6:]
}

// Phone formats UK eleven digit numbers as "07700 900000". Anything else is
// returned trimmed.
func Phone(s string) string {
	s = strings.TrimSpace(s)
	digits := strings.ReplaceAll(s, " ", "")
	if len(digits) != 11 || !allDigits(digits) || digits[0] != '0' {
		return s
	}
	return digits[:5] + " " + digits[5:]
}

// SentenceCase upper-cases the first letter and lower-cases the rest.
func SentenceCase(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// Age renders an age in whole years as "70 years old".
func Age(years int) string {
	if years == 1 {
		return "1 year old"
	}
	return fmt.Sprintf("%d years old", years)
}

// AgeInYears counts completed birthdays between dob and now.
func AgeInYears(dob, now time.Time) int {
	if dob.IsZero() {
		return 0
	}
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// StartOfDay is midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func daysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
