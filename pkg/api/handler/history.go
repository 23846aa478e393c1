package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kennyanoano/GeminiReImage/pkg/api/response"
	"github.com/kennyanoano/GeminiReImage/pkg/domain"
)

type HistoryProvider interface {
	Entries(limit int) []domain.HistoryEntry
	Entry(id string) (domain.HistoryEntry, bool)
	Clear()
}

type history struct {
	provider HistoryProvider
	writer   response.JSONResponseWriter
}

func NewHistory(provider HistoryProvider) *history {
	return &history{
		provider: provider,
		writer:   response.JSONResponseWriter{},
	}
}

// List returns history entries, most recent first, optionally limited.
func (h *history) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.writer.WriteErrorResponse(w, http.StatusBadRequest, "limit must be a non-negative integer.")
			return
		}
		limit = parsed
	}

	h.writer.WriteSuccessResponse(w, map[string]interface{}{
		"history": h.provider.Entries(limit),
	})
}

// Get returns one history entry by id.
func (h *history) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	entry, ok := h.provider.Entry(id)
	if !ok {
		h.writer.WriteErrorResponse(w, http.StatusNotFound, "Unknown history entry id.")
		return
	}
	h.writer.WriteSuccessResponse(w, entry)
}

// Clear drops all history entries.
func (h *history) Clear(w http.ResponseWriter, r *http.Request) {
	h.provider.Clear()
	w.WriteHeader(http.StatusNoContent)
}
