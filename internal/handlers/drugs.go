package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"mediguide-backend/internal/models"
)

type drugSearcher interface {
	Search(ctx context.Context, query string) ([]models.DrugSuggestion, error)
}

type DrugHandler struct {
	drugs drugSearcher
	log   *slog.Logger
}

func NewDrugHandler(drugs drugSearcher, log *slog.Logger) *DrugHandler {
	return &DrugHandler{drugs: drugs, log: log}
}

// Search forwards the q query parameter to the drug-label API and returns
// the reshaped suggestion list.
func (h *DrugHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Query parameter q is required", r))
		return
	}

	suggestions, err := h.drugs.Search(r.Context(), query)
	if err != nil {
		h.log.Error("drug search failed", "query", query, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("UPSTREAM_ERROR", "Drug lookup failed", r))
		return
	}

	if suggestions == nil {
		suggestions = []models.DrugSuggestion{}
	}
	writeJSON(w, http.StatusOK, models.DrugSearchResponse{Success: true, Suggestions: suggestions})
}
