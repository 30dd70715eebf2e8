// Package dates works with civil calendar dates carried as YYYY-MM-DD
// strings. There is no time-of-day or timezone component anywhere in the
// app; dates compare lexicographically and arithmetic is whole-day.
package dates

import (
	"errors"
	"regexp"
	"time"
)

const Layout = "2006-01-02"

var ErrBadDate = errors.New("date must be YYYY-MM-DD")

var isoRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// IsValid reports whether s is a well-formed calendar date. Write
// boundaries (client creation, completion toggles) validate with this;
// everything downstream assumes dates are already well-formed.
func IsValid(s string) bool {
	if !isoRe.MatchString(s) {
		return false
	}
	_, err := time.Parse(Layout, s)
	return err == nil
}

// Parse converts an ISO date string to a time.Time at midnight UTC.
// Callers are expected to have validated the format; a malformed string
// returns the zero time.
func Parse(s string) time.Time {
	t, _ := time.Parse(Layout, s)
	return t
}

func Format(t time.Time) string {
	return t.Format(Layout)
}

// DaysBetween returns whole calendar days from a to b (b minus a),
// negative when b precedes a.
func DaysBetween(a, b string) int {
	return int(Parse(b).Sub(Parse(a)).Hours() / 24)
}

func AddDays(s string, n int) string {
	return Format(Parse(s).AddDate(0, 0, n))
}

// AddMonths adds n calendar months, clamping day-of-month to the last
// valid day of the target month (Jan 31 + 1 month is Feb 28 or 29).
// time.AddDate normalizes overflow instead of clamping, so the target
// month is computed by hand.
func AddMonths(s string, n int) string {
	t := Parse(s)
	y, m, d := t.Date()

	months := int(m) - 1 + n
	ty := y + months/12
	tm := months % 12
	if tm < 0 {
		tm += 12
		ty--
	}
	targetMonth := time.Month(tm + 1)

	if last := daysIn(ty, targetMonth); d > last {
		d = last
	}
	return Format(time.Date(ty, targetMonth, d, 0, 0, 0, 0, time.UTC))
}

func daysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Weekday returns the day of week with 0=Sunday .. 6=Saturday.
func Weekday(s string) int {
	return int(Parse(s).Weekday())
}

// WeekStart returns the Monday of the week containing s. Sunday maps
// back six days, every other day back (dow+6)%7 days.
func WeekStart(s string) string {
	dow := Weekday(s)
	return AddDays(s, -((dow + 6) % 7))
}

// WeekDates returns the seven dates of the week containing s, Monday first.
func WeekDates(s string) []string {
	start := WeekStart(s)
	out := make([]string, 7)
	for i := range out {
		out[i] = AddDays(start, i)
	}
	return out
}

// Today returns the current date in server local time.
func Today() string {
	return time.Now().Format(Layout)
}
