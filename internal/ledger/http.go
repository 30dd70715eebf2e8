package ledger

import (
	"encoding/json"
	"net/http"

	"github.com/apexcoaching123/client-tracker/internal/dates"
	"github.com/apexcoaching123/client-tracker/internal/model"
)

type Handler struct {
	repo         Repo
	repoResolver func(*http.Request) Repo
}

func NewHandler(repo Repo) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) SetRepoResolver(fn func(*http.Request) Repo) {
	h.repoResolver = fn
}

func (h *Handler) repoForRequest(r *http.Request) Repo {
	if h.repoResolver != nil {
		if repo := h.repoResolver(r); repo != nil {
			return repo
		}
	}
	return h.repo
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

// validBucket accepts calendar dates plus the synthetic prestart bucket.
func validBucket(date string) bool {
	return date == model.PrestartBucket || dates.IsValid(date)
}

// Toggle handles POST /api/completions/toggle.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var in struct {
		Date     string `json:"date"`
		ClientID string `json:"clientId"`
		TaskID   string `json:"taskId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if !validBucket(in.Date) || in.ClientID == "" || in.TaskID == "" {
		writeErr(w, http.StatusBadRequest, "date, clientId and taskId are required")
		return
	}

	done, err := h.repoForRequest(r).Toggle(in.Date, model.ClientID(in.ClientID), model.TaskID(in.TaskID))
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "could not toggle completion")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":     in.Date,
		"clientId": in.ClientID,
		"taskId":   in.TaskID,
		"done":     done,
	})
}

// List handles GET /api/completions?from=&to=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if !dates.IsValid(from) || !dates.IsValid(to) || from > to {
		writeErr(w, http.StatusBadRequest, "from and to must be YYYY-MM-DD with from <= to")
		return
	}

	entries, err := h.repoForRequest(r).ListBetween(from, to)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "could not list completions")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
