package rule

import "github.com/apexcoaching123/client-tracker/internal/model"

// DefaultRuleSet is the rule set a fresh store starts with. IDs are
// stable literals so completion history keyed on them survives restarts.
//
// The mid-week check-in carries the declared cadence policy: weekly
// through week 4, then every even week.
func DefaultRuleSet() model.RuleSet {
	return model.RuleSet{
		Onboarding: []model.Rule{
			{ID: "onb-welcome-call", Kind: model.RuleOnboarding, Weekday: 1, Title: "Welcome call"},
			{ID: "onb-app-setup", Kind: model.RuleOnboarding, Weekday: 3, Title: "Check training app setup"},
		},
		Weekly: []model.Rule{
			{ID: "wk-weigh-in", Kind: model.RuleWeekly, Weekday: 1, Title: "Review weekly weigh-in"},
			{
				ID: "wk-midweek-checkin", Kind: model.RuleWeekly, Weekday: 3,
				Title:   "Mid-week check-in message",
				Cadence: model.Cadence{EveryNWeeks: 2, StartWeek: 5},
			},
			{ID: "wk-recap", Kind: model.RuleWeekly, Weekday: 5, Title: "Send week recap"},
		},
		Milestones: []model.Rule{
			{ID: "ms-week4-photos", Kind: model.RuleMilestone, Week: 4, Title: "Request week 4 progress photos"},
			{ID: "ms-week8-review", Kind: model.RuleMilestone, Week: 8, Title: "Week 8 measurements and plan review"},
		},
	}
}
