package rule

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

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

// RulesRoot handles /api/rules.
func (h *Handler) RulesRoot(w http.ResponseWriter, r *http.Request) {
	repo := h.repoForRequest(r)

	switch r.Method {
	case http.MethodGet:
		set, err := repo.List()
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "could not list rules")
			return
		}
		writeJSON(w, http.StatusOK, set)

	case http.MethodPost:
		var in model.Rule
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		created, err := repo.Create(in)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidRule):
				writeErr(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, ErrDuplicateID):
				writeErr(w, http.StatusConflict, err.Error())
			default:
				writeErr(w, http.StatusInternalServerError, "could not create rule")
			}
			return
		}
		writeJSON(w, http.StatusCreated, created)

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// RulesSub handles /api/rules/{id}.
func (h *Handler) RulesSub(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/rules/")
	if id == "" || strings.Contains(id, "/") {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodDelete {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := h.repoForRequest(r).Delete(model.RuleID(id)); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeErr(w, http.StatusNotFound, err.Error())
			return
		}
		writeErr(w, http.StatusInternalServerError, "could not delete rule")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
