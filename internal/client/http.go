package client

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

// SetRepoResolver routes each request to a user-scoped repo. Falls back
// to the handler's default repo when the resolver returns nil.
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

func badRequest(err error) bool {
	return errors.Is(err, ErrInvalidName) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidPlan) ||
		errors.Is(err, ErrInvalidPatch)
}

// ClientsRoot handles /api/clients.
func (h *Handler) ClientsRoot(w http.ResponseWriter, r *http.Request) {
	repo := h.repoForRequest(r)

	switch r.Method {
	case http.MethodGet:
		clients, err := repo.List()
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "could not list clients")
			return
		}
		writeJSON(w, http.StatusOK, clients)

	case http.MethodPost:
		var in model.Client
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		created, err := repo.Create(in)
		if err != nil {
			if badRequest(err) {
				writeErr(w, http.StatusBadRequest, err.Error())
				return
			}
			writeErr(w, http.StatusInternalServerError, "could not create client")
			return
		}
		writeJSON(w, http.StatusCreated, created)

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// ClientsSub handles /api/clients/{id}.
func (h *Handler) ClientsSub(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/clients/")
	if id == "" || strings.Contains(id, "/") {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	repo := h.repoForRequest(r)
	clientID := model.ClientID(id)

	switch r.Method {
	case http.MethodGet:
		c, err := repo.Get(clientID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				writeErr(w, http.StatusNotFound, err.Error())
				return
			}
			writeErr(w, http.StatusInternalServerError, "could not load client")
			return
		}
		writeJSON(w, http.StatusOK, c)

	case http.MethodPatch:
		var p Patch
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		c, err := repo.Update(clientID, p)
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				writeErr(w, http.StatusNotFound, err.Error())
			case badRequest(err):
				writeErr(w, http.StatusBadRequest, err.Error())
			default:
				writeErr(w, http.StatusInternalServerError, "could not update client")
			}
			return
		}
		writeJSON(w, http.StatusOK, c)

	case http.MethodDelete:
		if err := repo.Delete(clientID); err != nil {
			if errors.Is(err, ErrNotFound) {
				writeErr(w, http.StatusNotFound, err.Error())
				return
			}
			writeErr(w, http.StatusInternalServerError, "could not delete client")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
