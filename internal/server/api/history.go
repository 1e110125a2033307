package api

import (
	"net/http"
	"strconv"

	"github.com/ayusman/mudra/internal/store"
)

// MaxHistoryLimit caps the page size of GET /api/history.
const MaxHistoryLimit = 500

// HistoryHandler serves the command history.
type HistoryHandler struct {
	store *store.Store
}

// NewHistoryHandler creates a HistoryHandler with the given store.
func NewHistoryHandler(s *store.Store) *HistoryHandler {
	return &HistoryHandler{store: s}
}

type historyResponse struct {
	Entries []*store.Entry `json:"entries"`
	Total   int            `json:"total"`
}

type pruneResponse struct {
	Deleted int64 `json:"deleted"`
}

// ServeHTTP handles GET and DELETE on /api/history.
func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodDelete:
		h.prune(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// list handles GET /api/history?limit=N, newest first.
func (h *HistoryHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(w, r, "limit", store.DefaultHistoryLimit)
	if !ok {
		return
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	entries, err := h.store.History().Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list history")
		return
	}
	total, err := h.store.History().Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count history")
		return
	}

	if entries == nil {
		entries = []*store.Entry{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Entries: entries, Total: total})
}

// prune handles DELETE /api/history?keep=N, dropping all but the newest N.
func (h *HistoryHandler) prune(w http.ResponseWriter, r *http.Request) {
	keep, ok := intParam(w, r, "keep", 0)
	if !ok {
		return
	}

	deleted, err := h.store.History().Prune(keep)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to prune history")
		return
	}
	writeJSON(w, http.StatusOK, pruneResponse{Deleted: deleted})
}

func intParam(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeError(w, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return n, true
}
