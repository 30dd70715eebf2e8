package model

type RuleID string

type RuleKind string

const (
	// RuleOnboarding fires on its weekday during program week 1 only.
	RuleOnboarding RuleKind = "onboarding"
	// RuleWeekly fires on its weekday every week, subject to cadence.
	RuleWeekly RuleKind = "weekly"
	// RuleMilestone fires on every date of the single program week whose
	// number it names.
	RuleMilestone RuleKind = "milestone"
)

// Cadence is the recurrence policy of a weekly rule. The zero value means
// "every week". Otherwise weeks below StartWeek always match, and from
// StartWeek on the rule matches only when week % EveryNWeeks == 0.
//
// The seeded mid-week check-in uses {EveryNWeeks: 2, StartWeek: 5}: weekly
// through week 4, then every even week.
type Cadence struct {
	EveryNWeeks int `json:"everyNWeeks,omitempty"`
	StartWeek   int `json:"startWeek,omitempty"`
}

func (c Cadence) EveryWeek() bool {
	return c.EveryNWeeks <= 1
}

// Matches reports whether the cadence admits the given program week.
func (c Cadence) Matches(week int) bool {
	if c.EveryWeek() {
		return true
	}
	if week < c.StartWeek {
		return true
	}
	return week%c.EveryNWeeks == 0
}

// Rule is one touch-point definition. Kind discriminates the variant:
// onboarding and weekly rules use Weekday (0=Sunday..6=Saturday), weekly
// rules may carry a Cadence, milestone rules use Week (1-based).
type Rule struct {
	ID      RuleID   `json:"id"`
	Kind    RuleKind `json:"kind"`
	Title   string   `json:"title"`
	Weekday int      `json:"weekday,omitempty"`
	Week    int      `json:"week,omitempty"`
	Cadence Cadence  `json:"cadence,omitzero"`
}

// RuleSet holds the rules split by kind. Rule IDs are unique across the
// whole set; they namespace generated task IDs.
type RuleSet struct {
	Onboarding []Rule `json:"onboarding"`
	Weekly     []Rule `json:"weekly"`
	Milestones []Rule `json:"milestones"`
}

func (rs RuleSet) Empty() bool {
	return len(rs.Onboarding) == 0 && len(rs.Weekly) == 0 && len(rs.Milestones) == 0
}

// All returns every rule in the set, onboarding first.
func (rs RuleSet) All() []Rule {
	out := make([]Rule, 0, len(rs.Onboarding)+len(rs.Weekly)+len(rs.Milestones))
	out = append(out, rs.Onboarding...)
	out = append(out, rs.Weekly...)
	out = append(out, rs.Milestones...)
	return out
}

// HasID reports whether any rule in the set carries the given id.
func (rs RuleSet) HasID(id RuleID) bool {
	for _, r := range rs.All() {
		if r.ID == id {
			return true
		}
	}
	return false
}
