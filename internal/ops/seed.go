package ops

import (
	"fmt"
	"path/filepath"

	"github.com/apexcoaching123/client-tracker/internal/client"
	"github.com/apexcoaching123/client-tracker/internal/dates"
	"github.com/apexcoaching123/client-tracker/internal/ledger"
	"github.com/apexcoaching123/client-tracker/internal/model"
	"github.com/apexcoaching123/client-tracker/internal/rule"
)

// SeedDemo fills a file-backed data dir with a small believable roster:
// a client mid-program, one just started, one not started yet. The rule
// defaults are seeded as a side effect of first touch.
func SeedDemo(dataDir string) error {
	clients, err := client.NewFileRepo(filepath.Join(dataDir, "clients"))
	if err != nil {
		return err
	}
	rules, err := rule.NewFileRepo(filepath.Join(dataDir, "rules"))
	if err != nil {
		return err
	}
	led, err := ledger.NewFileRepo(filepath.Join(dataDir, "completions"))
	if err != nil {
		return err
	}

	today := dates.Today()
	seeds := []model.Client{
		{Name: "Maya Lindqvist", StartDate: dates.AddDays(today, -35), Program: model.ProgramFixed12, Goal: model.GoalFatLoss},
		{Name: "Jon Okafor", StartDate: dates.WeekStart(today), Program: model.ProgramSixMonth, Goal: model.GoalMuscleGain},
		{Name: "Priya Shah", StartDate: dates.AddDays(today, 10), Program: model.ProgramFixed12, Goal: model.GoalHealth},
	}

	existing, err := clients.List()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return fmt.Errorf("data dir already has %d clients, refusing to seed", len(existing))
	}

	created := make([]model.Client, 0, len(seeds))
	for _, c := range seeds {
		got, err := clients.Create(c)
		if err != nil {
			return fmt.Errorf("seed client %q: %w", c.Name, err)
		}
		created = append(created, got)
	}

	if _, err := rules.List(); err != nil {
		return err
	}

	// Give the mid-program client some history so the views aren't empty.
	weighIn := model.RuleTaskID("wk-weigh-in")
	monday := dates.WeekStart(today)
	for off := 7; off <= 28; off += 7 {
		if err := led.Set(dates.AddDays(monday, -off), created[0].ID, weighIn, true); err != nil {
			return err
		}
	}
	return nil
}
