package engine

import (
	"sort"

	"github.com/apexcoaching123/client-tracker/internal/model"
	"github.com/apexcoaching123/client-tracker/internal/program"
)

// RosterSort names the supported roster orderings. Name is the tie-break
// for every ordering.
type RosterSort string

const (
	SortByName       RosterSort = "name"
	SortByStart      RosterSort = "start"
	SortByWeek       RosterSort = "week"
	SortByIncomplete RosterSort = "incomplete"
)

// RosterRow is one client in the sorted roster projection.
type RosterRow struct {
	Client     model.Client `json:"client"`
	Week       int          `json:"week"`
	Incomplete int          `json:"incomplete"`
}

// Roster projects the client list for display: current week and today's
// incomplete-task count per client, ordered by the requested sort. An
// unknown sort falls back to name order.
func (e *Engine) Roster(clients []model.Client, date string, rules model.RuleSet, ledger Ledger, by RosterSort) []RosterRow {
	rows := make([]RosterRow, 0, len(clients))
	for _, c := range clients {
		row := RosterRow{Client: c}
		if !c.StartsAfter(date) {
			row.Week = program.Week(c.StartDate, date)
			dt := e.TasksForClientOnDate(c, date, rules)
			for _, t := range dt.Tasks {
				if !ledger.Done(date, c.ID, t.ID) {
					row.Incomplete++
				}
			}
		}
		rows = append(rows, row)
	}

	byName := func(i, j int) bool { return rows[i].Client.Name < rows[j].Client.Name }
	less := byName
	switch by {
	case SortByStart:
		less = func(i, j int) bool {
			if rows[i].Client.StartDate != rows[j].Client.StartDate {
				return rows[i].Client.StartDate < rows[j].Client.StartDate
			}
			return byName(i, j)
		}
	case SortByWeek:
		less = func(i, j int) bool {
			if rows[i].Week != rows[j].Week {
				return rows[i].Week < rows[j].Week
			}
			return byName(i, j)
		}
	case SortByIncomplete:
		less = func(i, j int) bool {
			if rows[i].Incomplete != rows[j].Incomplete {
				return rows[i].Incomplete > rows[j].Incomplete
			}
			return byName(i, j)
		}
	}
	sort.SliceStable(rows, less)
	return rows
}
