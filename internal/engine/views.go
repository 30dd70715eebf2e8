package engine

import (
	"sort"

	"github.com/apexcoaching123/client-tracker/internal/dates"
	"github.com/apexcoaching123/client-tracker/internal/model"
)

// DayRow is one roster line in a day view.
type DayRow struct {
	Client model.Client `json:"client"`
	Week   int          `json:"week"`
	Tasks  []model.Task `json:"tasks"`
}

// DayView evaluates every enrolled client for date. Clients starting
// after date are excluded; they show up in the upcoming view instead.
func (e *Engine) DayView(clients []model.Client, date string, rules model.RuleSet) []DayRow {
	rows := make([]DayRow, 0, len(clients))
	for _, c := range clients {
		if c.StartsAfter(date) {
			continue
		}
		dt := e.TasksForClientOnDate(c, date, rules)
		rows = append(rows, DayRow{Client: c, Week: dt.Week, Tasks: dt.Tasks})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Client.Name < rows[j].Client.Name
	})
	return rows
}

// WeekDay pairs a date with its day view.
type WeekDay struct {
	Date string   `json:"date"`
	Rows []DayRow `json:"rows"`
}

// WeekView returns the seven day views of the week containing date,
// Monday first.
func (e *Engine) WeekView(clients []model.Client, date string, rules model.RuleSet) []WeekDay {
	out := make([]WeekDay, 0, 7)
	for _, d := range dates.WeekDates(date) {
		out = append(out, WeekDay{Date: d, Rows: e.DayView(clients, d, rules)})
	}
	return out
}

// Progress counts tasks and ledger completions across day-view rows.
type Progress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

func (e *Engine) Progress(rows []DayRow, ledger Ledger, date string) Progress {
	var p Progress
	for _, row := range rows {
		for _, t := range row.Tasks {
			p.Total++
			if ledger.Done(date, row.Client.ID, t.ID) {
				p.Done++
			}
		}
	}
	return p
}

// OverdueItem is one missed task on one past day.
type OverdueItem struct {
	Client model.Client `json:"client"`
	Date   string       `json:"date"`
	Week   int          `json:"week"`
	Task   model.Task   `json:"task"`
}

// Overdue re-evaluates each client over the lookbackDays calendar days
// strictly before date, skipping days before enrollment, and reports
// every generated task with no done entry in the ledger. Results are
// sorted by date ascending, then client name. This is a full
// recomputation per day per client; fine at coaching-roster sizes.
func (e *Engine) Overdue(clients []model.Client, date string, rules model.RuleSet, ledger Ledger, lookbackDays int) []OverdueItem {
	if lookbackDays <= 0 {
		lookbackDays = 30
	}
	items := []OverdueItem{}
	for _, c := range clients {
		for off := lookbackDays; off >= 1; off-- {
			day := dates.AddDays(date, -off)
			if day < c.StartDate {
				continue
			}
			dt := e.TasksForClientOnDate(c, day, rules)
			for _, t := range dt.Tasks {
				if ledger.Done(day, c.ID, t.ID) {
					continue
				}
				items = append(items, OverdueItem{Client: c, Date: day, Week: dt.Week, Task: t})
			}
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Date != items[j].Date {
			return items[i].Date < items[j].Date
		}
		return items[i].Client.Name < items[j].Client.Name
	})
	return items
}

// UpcomingRow is a not-yet-started client with their pre-start checklist.
type UpcomingRow struct {
	Client model.Client `json:"client"`
	Tasks  []model.Task `json:"tasks"`
}

// Upcoming lists clients whose start date is after date, soonest start
// first, each with the pre-start checklist. Checklist completion is
// tracked under the prestart ledger bucket, not under date.
func (e *Engine) Upcoming(clients []model.Client, date string) []UpcomingRow {
	rows := []UpcomingRow{}
	for _, c := range clients {
		if !c.StartsAfter(date) {
			continue
		}
		tasks := e.PrestartTasks(c, date)
		if tasks == nil {
			tasks = []model.Task{}
		}
		rows = append(rows, UpcomingRow{Client: c, Tasks: tasks})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Client.StartDate != rows[j].Client.StartDate {
			return rows[i].Client.StartDate < rows[j].Client.StartDate
		}
		return rows[i].Client.Name < rows[j].Client.Name
	})
	return rows
}
