// Package program derives a client's position in their plan from the
// enrollment date and a reference date.
package program

import (
	"github.com/apexcoaching123/client-tracker/internal/dates"
	"github.com/apexcoaching123/client-tracker/internal/model"
)

const fixedProgramDays = 84 // 12 weeks

// Week returns the 1-based program week containing ref. Week 1 covers the
// first seven days from enrollment. For ref before enroll the formula
// still floors to 1; callers that care about pre-enrollment compare the
// dates directly instead.
func Week(enroll, ref string) int {
	w := dates.DaysBetween(enroll, ref)/7 + 1
	if w < 1 {
		return 1
	}
	return w
}

// EndDate returns the last day of the client's program.
func EndDate(enroll string, p model.ProgramType) string {
	if p == model.ProgramSixMonth {
		return dates.AddMonths(enroll, 6)
	}
	return dates.AddDays(enroll, fixedProgramDays)
}

// TotalWeeks returns the program length in weeks, rounding a partial
// final week up. Fixed plans are always 12; six-month plans vary with
// the calendar (26 or 27).
func TotalWeeks(enroll string, p model.ProgramType) int {
	days := dates.DaysBetween(enroll, EndDate(enroll, p))
	weeks := (days + 6) / 7
	if weeks < 1 {
		return 1
	}
	return weeks
}

// Window is a client's derived program position.
type Window struct {
	Week       int    `json:"week"`
	TotalWeeks int    `json:"totalWeeks"`
	EndDate    string `json:"endDate"`
}

func WindowFor(c model.Client, ref string) Window {
	return Window{
		Week:       Week(c.StartDate, ref),
		TotalWeeks: TotalWeeks(c.StartDate, c.Program),
		EndDate:    EndDate(c.StartDate, c.Program),
	}
}
