// Package server is the development todo API. It serves the endpoints the
// client talks to, backed by any store.Repository.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/idilsaglam/todosync/internal/api"
	"github.com/idilsaglam/todosync/internal/store"
)

// Handlers holds the repository so route methods can share it.
type Handlers struct {
	Repo store.Repository
	Log  *log.Logger
}

// NewRouter wires the API routes and middleware.
func NewRouter(repo store.Repository, logger *log.Logger) *mux.Router {
	h := &Handlers{Repo: repo, Log: logger}

	r := mux.NewRouter()
	r.Use(requestID, accessLog(logger))

	todo := r.PathPrefix(api.Path).Subrouter()
	todo.HandleFunc("", h.List).Methods(http.MethodGet)
	todo.HandleFunc("/", h.List).Methods(http.MethodGet)
	todo.HandleFunc("", h.Create).Methods(http.MethodPost)
	todo.HandleFunc("/", h.Create).Methods(http.MethodPost)
	todo.HandleFunc("/complete", h.CompleteAll).Methods(http.MethodPut)
	todo.HandleFunc("/{id:[0-9]+}", h.Toggle).Methods(http.MethodPut)
	todo.HandleFunc("/{id:[0-9]+}/reorder", h.Reorder).Methods(http.MethodPut)
	return r
}

// respondWithJSON formats and sends a JSON response.
func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, code int, msg string) {
	respondWithJSON(w, code, map[string]string{"error": msg})
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	h.Log.Error("request failed", "method", r.Method, "path", r.URL.Path, "request_id", RequestID(r.Context()), "err", err)
	respondWithError(w, http.StatusInternalServerError, "internal error")
}

// field reads name from a JSON body or a form body.
func field(r *http.Request, name string) (string, bool) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", false
		}
		switch v := body[name].(type) {
		case string:
			return v, true
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		}
		return "", false
	}
	if err := r.ParseForm(); err != nil {
		return "", false
	}
	if _, ok := r.PostForm[name]; !ok {
		return "", false
	}
	return r.PostForm.Get(name), true
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, items)
}

func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	text, ok := field(r, "text")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "missing text")
		return
	}
	item, err := h.Repo.Create(r.Context(), text)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, item)
}

func (h *Handlers) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid id")
		return
	}
	item, err := h.Repo.Toggle(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, item)
}

func (h *Handlers) CompleteAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.CompleteAll(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, items)
}

func (h *Handlers) Reorder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid id")
		return
	}
	raw, ok := field(r, "new_position")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "missing new_position")
		return
	}
	pos, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "new_position must be an integer")
		return
	}
	items, err := h.Repo.Reorder(r.Context(), id, pos)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, items)
}
