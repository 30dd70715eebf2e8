// Package engine computes which touch-point tasks are due for a client on
// a given calendar day. It is pure: clients, rules, and the completion
// ledger are supplied by the caller, and identical inputs always produce
// identical output.
package engine

import (
	"github.com/apexcoaching123/client-tracker/internal/dates"
	"github.com/apexcoaching123/client-tracker/internal/model"
	"github.com/apexcoaching123/client-tracker/internal/program"
)

// Ledger is the read side of the completion store. Unknown keys read as
// false (not done).
type Ledger interface {
	Done(date string, clientID model.ClientID, taskID model.TaskID) bool
}

// Engine evaluates the rule set. Prestart is the checklist shown for
// clients whose start date is still ahead; an empty checklist means
// upcoming clients simply have no tasks.
type Engine struct {
	Prestart []model.Task
}

func New() *Engine {
	return &Engine{Prestart: DefaultPrestart()}
}

// DefaultPrestart is the seeded pre-start checklist. The items are
// tracked per client under the synthetic prestart ledger bucket, not
// under any calendar date.
func DefaultPrestart() []model.Task {
	return []model.Task{
		{ID: "prestart:billing", Title: "Set up billing", Kind: model.TaskPrestart},
		{ID: "prestart:meal-plan", Title: "Send meal plan", Kind: model.TaskPrestart},
		{ID: "prestart:training-plan", Title: "Assign training plan", Kind: model.TaskPrestart},
		{ID: "prestart:confirm-ready", Title: "Confirm client is ready to start", Kind: model.TaskPrestart},
	}
}

// DayTasks is the engine's answer for one (client, date) pair.
type DayTasks struct {
	Week     int          `json:"week"`
	Upcoming bool         `json:"upcoming,omitempty"`
	Tasks    []model.Task `json:"tasks"`
}

// TasksForClientOnDate generates every task due for the client on date.
// Matches accumulate in generation order: onboarding, weekly, milestone,
// then program reminders. Dates before the client's start produce no
// dated tasks; those clients are flagged upcoming with week 0 and their
// checklist lives under the prestart bucket instead.
func (e *Engine) TasksForClientOnDate(c model.Client, date string, rules model.RuleSet) DayTasks {
	if c.StartsAfter(date) {
		return DayTasks{Week: 0, Upcoming: true, Tasks: []model.Task{}}
	}

	week := program.Week(c.StartDate, date)
	dow := dates.Weekday(date)
	tasks := []model.Task{}

	if week == 1 {
		for _, r := range rules.Onboarding {
			if r.Weekday == dow {
				tasks = append(tasks, model.Task{
					ID:    model.RuleTaskID(r.ID),
					Title: r.Title,
					Kind:  model.TaskOnboarding,
				})
			}
		}
	}

	for _, r := range rules.Weekly {
		if r.Weekday != dow {
			continue
		}
		if !r.Cadence.Matches(week) {
			continue
		}
		tasks = append(tasks, model.Task{
			ID:    model.RuleTaskID(r.ID),
			Title: r.Title,
			Kind:  model.TaskWeekly,
		})
	}

	for _, r := range rules.Milestones {
		if r.Week == week {
			tasks = append(tasks, model.Task{
				ID:    model.RuleTaskID(r.ID),
				Title: r.Title,
				Kind:  model.TaskMilestone,
			})
		}
	}

	total := program.TotalWeeks(c.StartDate, c.Program)
	if week == total-1 {
		tasks = append(tasks, model.Task{
			ID:    model.TaskIDProgramWrapup,
			Title: "Program ends next week: plan the wrap-up call",
			Kind:  model.TaskProgram,
		})
	}
	if week == total {
		tasks = append(tasks, model.Task{
			ID:    model.TaskIDProgramFinal,
			Title: "Final program week: send renewal offer",
			Kind:  model.TaskProgram,
		})
	}

	return DayTasks{Week: week, Tasks: tasks}
}

// PrestartTasks returns the checklist for an upcoming client, or nil when
// the client has already started or no checklist is configured.
func (e *Engine) PrestartTasks(c model.Client, date string) []model.Task {
	if !c.StartsAfter(date) || len(e.Prestart) == 0 {
		return nil
	}
	out := make([]model.Task, len(e.Prestart))
	copy(out, e.Prestart)
	return out
}
