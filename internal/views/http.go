// Package views exposes the engine's aggregations over HTTP: day and
// week boards, the overdue backlog, upcoming clients, and the sorted
// roster.
package views

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/apexcoaching123/client-tracker/internal/client"
	"github.com/apexcoaching123/client-tracker/internal/dates"
	"github.com/apexcoaching123/client-tracker/internal/engine"
	"github.com/apexcoaching123/client-tracker/internal/ledger"
	"github.com/apexcoaching123/client-tracker/internal/model"
	"github.com/apexcoaching123/client-tracker/internal/rule"
)

type Handler struct {
	eng          *engine.Engine
	lookbackDays int

	clientResolver func(*http.Request) client.Repo
	ruleResolver   func(*http.Request) rule.Repo
	ledgerResolver func(*http.Request) ledger.Repo
}

func NewHandler(eng *engine.Engine, lookbackDays int) *Handler {
	if lookbackDays <= 0 {
		lookbackDays = 30
	}
	return &Handler{eng: eng, lookbackDays: lookbackDays}
}

func (h *Handler) SetClientResolver(fn func(*http.Request) client.Repo) { h.clientResolver = fn }
func (h *Handler) SetRuleResolver(fn func(*http.Request) rule.Repo)     { h.ruleResolver = fn }
func (h *Handler) SetLedgerResolver(fn func(*http.Request) ledger.Repo) { h.ledgerResolver = fn }

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

// inputs gathers the per-request stores and the queried date. The date
// defaults to today.
func (h *Handler) inputs(w http.ResponseWriter, r *http.Request) ([]model.Client, model.RuleSet, ledger.Repo, string, bool) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return nil, model.RuleSet{}, nil, "", false
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = dates.Today()
	}
	if !dates.IsValid(date) {
		writeErr(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return nil, model.RuleSet{}, nil, "", false
	}

	clients, err := h.clientResolver(r).List()
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "could not list clients")
		return nil, model.RuleSet{}, nil, "", false
	}
	rules, err := h.ruleResolver(r).List()
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "could not list rules")
		return nil, model.RuleSet{}, nil, "", false
	}
	return clients, rules, h.ledgerResolver(r), date, true
}

// Day handles GET /api/views/day?date=.
func (h *Handler) Day(w http.ResponseWriter, r *http.Request) {
	clients, rules, led, date, ok := h.inputs(w, r)
	if !ok {
		return
	}
	rows := h.eng.DayView(clients, date, rules)
	writeJSON(w, http.StatusOK, map[string]any{
		"date":     date,
		"rows":     rows,
		"progress": h.eng.Progress(rows, led, date),
	})
}

// Week handles GET /api/views/week?date=.
func (h *Handler) Week(w http.ResponseWriter, r *http.Request) {
	clients, rules, _, date, ok := h.inputs(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"weekStart": dates.WeekStart(date),
		"days":      h.eng.WeekView(clients, date, rules),
	})
}

// Overdue handles GET /api/views/overdue?date=&lookback=.
func (h *Handler) Overdue(w http.ResponseWriter, r *http.Request) {
	clients, rules, led, date, ok := h.inputs(w, r)
	if !ok {
		return
	}
	lookback := h.lookbackDays
	if v := r.URL.Query().Get("lookback"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeErr(w, http.StatusBadRequest, "lookback must be a positive integer")
			return
		}
		lookback = n
	}
	items := h.eng.Overdue(clients, date, rules, led, lookback)
	writeJSON(w, http.StatusOK, map[string]any{
		"date":     date,
		"lookback": lookback,
		"items":    items,
	})
}

// Upcoming handles GET /api/views/upcoming?date=.
func (h *Handler) Upcoming(w http.ResponseWriter, r *http.Request) {
	clients, _, _, date, ok := h.inputs(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date": date,
		"rows": h.eng.Upcoming(clients, date),
	})
}

// Roster handles GET /api/views/roster?date=&sort=.
func (h *Handler) Roster(w http.ResponseWriter, r *http.Request) {
	clients, rules, led, date, ok := h.inputs(w, r)
	if !ok {
		return
	}
	by := engine.RosterSort(r.URL.Query().Get("sort"))
	switch by {
	case "", engine.SortByName, engine.SortByStart, engine.SortByWeek, engine.SortByIncomplete:
	default:
		writeErr(w, http.StatusBadRequest, "sort must be name, start, week or incomplete")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date": date,
		"sort": by,
		"rows": h.eng.Roster(clients, date, rules, led, by),
	})
}
