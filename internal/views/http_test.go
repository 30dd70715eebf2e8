package views

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/apexcoaching123/client-tracker/internal/client"
	"github.com/apexcoaching123/client-tracker/internal/engine"
	"github.com/apexcoaching123/client-tracker/internal/ledger"
	"github.com/apexcoaching123/client-tracker/internal/model"
	"github.com/apexcoaching123/client-tracker/internal/rule"
)

func testHandler(t *testing.T) (*Handler, *client.MemoryRepo, *ledger.MemoryRepo) {
	t.Helper()
	clients := client.NewMemoryRepo()
	rules := rule.NewMemoryRepo()
	led := ledger.NewMemoryRepo()

	h := NewHandler(engine.New(), 30)
	h.SetClientResolver(func(*http.Request) client.Repo { return clients })
	h.SetRuleResolver(func(*http.Request) rule.Repo { return rules })
	h.SetLedgerResolver(func(*http.Request) ledger.Repo { return led })
	return h, clients, led
}

func get(t *testing.T, fn http.HandlerFunc, target string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	rec := httptest.NewRecorder()
	fn(rec, httptest.NewRequest(http.MethodGet, target, nil))
	var out map[string]json.RawMessage
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode %s: %v", target, err)
		}
	}
	return rec, out
}

func TestDayViewEndToEnd(t *testing.T) {
	h, clients, led := testHandler(t)
	created, err := clients.Create(model.Client{Name: "Maya", StartDate: "2024-01-01"})
	if err != nil {
		t.Fatalf("seed client: %v", err)
	}

	// Wednesday of week 1: app-setup onboarding plus the mid-week
	// check-in.
	rec, out := get(t, h.Day, "/api/views/day?date=2024-01-03")
	if rec.Code != http.StatusOK {
		t.Fatalf("day expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var rows []engine.DayRow
	if err := json.Unmarshal(out["rows"], &rows); err != nil {
		t.Fatalf("decode rows: %v", err)
	}
	if len(rows) != 1 || len(rows[0].Tasks) != 2 {
		t.Fatalf("expected 1 row with 2 tasks, got %+v", rows)
	}
	if rows[0].Week != 1 {
		t.Fatalf("expected week 1, got %d", rows[0].Week)
	}

	var progress engine.Progress
	if err := json.Unmarshal(out["progress"], &progress); err != nil {
		t.Fatalf("decode progress: %v", err)
	}
	if progress.Total != 2 || progress.Done != 0 {
		t.Fatalf("unexpected progress: %+v", progress)
	}

	// Mark one done and re-query.
	if err := led.Set("2024-01-03", created.ID, "rule:onb-app-setup", true); err != nil {
		t.Fatalf("set completion: %v", err)
	}
	_, out = get(t, h.Day, "/api/views/day?date=2024-01-03")
	if err := json.Unmarshal(out["progress"], &progress); err != nil {
		t.Fatalf("decode progress: %v", err)
	}
	if progress.Done != 1 {
		t.Fatalf("expected done=1 after completion, got %+v", progress)
	}
}

func TestWeekViewShape(t *testing.T) {
	h, clients, _ := testHandler(t)
	if _, err := clients.Create(model.Client{Name: "Maya", StartDate: "2024-01-01"}); err != nil {
		t.Fatalf("seed client: %v", err)
	}

	rec, out := get(t, h.Week, "/api/views/week?date=2024-01-10")
	if rec.Code != http.StatusOK {
		t.Fatalf("week expected 200, got %d", rec.Code)
	}
	var weekStart string
	if err := json.Unmarshal(out["weekStart"], &weekStart); err != nil {
		t.Fatalf("decode weekStart: %v", err)
	}
	if weekStart != "2024-01-08" {
		t.Fatalf("expected week start 2024-01-08, got %s", weekStart)
	}
	var days []engine.WeekDay
	if err := json.Unmarshal(out["days"], &days); err != nil {
		t.Fatalf("decode days: %v", err)
	}
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}
}

func TestOverdueLookbackParam(t *testing.T) {
	h, clients, _ := testHandler(t)
	if _, err := clients.Create(model.Client{Name: "Maya", StartDate: "2024-01-01"}); err != nil {
		t.Fatalf("seed client: %v", err)
	}

	rec, out := get(t, h.Overdue, "/api/views/overdue?date=2024-01-09&lookback=7")
	if rec.Code != http.StatusOK {
		t.Fatalf("overdue expected 200, got %d", rec.Code)
	}
	var items []engine.OverdueItem
	if err := json.Unmarshal(out["items"], &items); err != nil {
		t.Fatalf("decode items: %v", err)
	}
	if len(items) == 0 {
		t.Fatalf("expected missed tasks in the first week")
	}

	rec, _ = get(t, h.Overdue, "/api/views/overdue?date=2024-01-09&lookback=zero")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad lookback, got %d", rec.Code)
	}
}

func TestUpcomingView(t *testing.T) {
	h, clients, _ := testHandler(t)
	if _, err := clients.Create(model.Client{Name: "Priya", StartDate: "2024-03-01"}); err != nil {
		t.Fatalf("seed client: %v", err)
	}

	rec, out := get(t, h.Upcoming, "/api/views/upcoming?date=2024-01-15")
	if rec.Code != http.StatusOK {
		t.Fatalf("upcoming expected 200, got %d", rec.Code)
	}
	var rows []engine.UpcomingRow
	if err := json.Unmarshal(out["rows"], &rows); err != nil {
		t.Fatalf("decode rows: %v", err)
	}
	if len(rows) != 1 || len(rows[0].Tasks) != 4 {
		t.Fatalf("expected one upcoming client with the 4-item checklist, got %+v", rows)
	}
}

func TestRosterRejectsUnknownSort(t *testing.T) {
	h, _, _ := testHandler(t)

	rec, _ := get(t, h.Roster, "/api/views/roster?date=2024-01-15&sort=bogus")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown sort, got %d", rec.Code)
	}

	rec, _ = get(t, h.Roster, "/api/views/roster?date=2024-01-15&sort=incomplete")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for incomplete sort, got %d", rec.Code)
	}
}

func TestViewsRejectBadDate(t *testing.T) {
	h, _, _ := testHandler(t)

	rec, _ := get(t, h.Day, "/api/views/day?date=garbage")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", rec.Code)
	}
}
