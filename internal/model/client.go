package model

import "time"

type ClientID string

type ProgramType string

const (
	// ProgramFixed12 is the fixed-length plan: exactly 12 weeks (84 days).
	ProgramFixed12 ProgramType = "fixed12"
	// ProgramSixMonth runs six calendar months from the start date, with
	// day-of-month clamping at the far end.
	ProgramSixMonth ProgramType = "sixmonth"
)

func (p ProgramType) Valid() bool {
	return p == ProgramFixed12 || p == ProgramSixMonth
}

type Goal string

const (
	GoalFatLoss     Goal = "fat_loss"
	GoalMuscleGain  Goal = "muscle_gain"
	GoalPerformance Goal = "performance"
	GoalHealth      Goal = "health"
)

type Client struct {
	ID   ClientID `json:"id"`
	Name string   `json:"name"`

	// StartDate is the enrollment date (YYYY-MM-DD). Immutable after
	// creation; the whole schedule derives from it.
	StartDate string `json:"startDate"`

	Program ProgramType `json:"program"`
	Goal    Goal        `json:"goal,omitempty"`
	Notes   string      `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StartsAfter reports whether the client has not yet enrolled as of date.
// Such clients are "upcoming": they get the pre-start checklist instead of
// dated tasks.
func (c Client) StartsAfter(date string) bool {
	return c.StartDate > date
}
