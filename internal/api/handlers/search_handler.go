package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/platefinder/backend/internal/application/services"
	apperrors "github.com/platefinder/backend/pkg/errors"
)

// SearchHandler handles search pipeline HTTP requests
type SearchHandler struct {
	orchestrator *services.SearchOrchestrator
	analytics    *services.SearchAnalyticsService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(orchestrator *services.SearchOrchestrator, analytics *services.SearchAnalyticsService) *SearchHandler {
	return &SearchHandler{
		orchestrator: orchestrator,
		analytics:    analytics,
	}
}

type submitResponse struct {
	JobID       string `json:"job_id"`
	Status      string `json:"status"`
	Reused      bool   `json:"reused"`
	DedupReason string `json:"dedup_reason,omitempty"`
}

// SubmitSearch handles POST /api/search
func (h *SearchHandler) SubmitSearch(w http.ResponseWriter, r *http.Request) {
	var req services.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	outcome, err := h.orchestrator.Submit(r.Context(), req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	// Reused jobs answer immediately; new jobs run in the background.
	status := http.StatusAccepted
	if outcome.Reused {
		status = http.StatusOK
	}
	respondWithJSON(w, status, submitResponse{
		JobID:       outcome.Job.ID,
		Status:      string(outcome.Job.Status),
		Reused:      outcome.Reused,
		DedupReason: outcome.DedupReason,
	})
}

// GetJob handles GET /api/search/jobs/{id}
func (h *SearchHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		respondWithError(w, http.StatusBadRequest, "job ID is required")
		return
	}

	job, err := h.orchestrator.GetJob(r.Context(), jobID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, job)
}

// GetZeroResultQueries handles GET /api/search/analytics/zero-results
func (h *SearchHandler) GetZeroResultQueries(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50)

	events, err := h.analytics.GetZeroResultQueries(r.Context(), limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"queries": events,
		"count":   len(events),
	})
}

// GetRequeryBreakdown handles GET /api/search/analytics/requery-breakdown
func (h *SearchHandler) GetRequeryBreakdown(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 20)

	breakdown, err := h.analytics.GetRequeryBreakdown(r.Context(), limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"breakdown": breakdown,
	})
}

func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > 500 {
		return fallback
	}
	return limit
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps domain error types to HTTP statuses. Internal and
// external failures never leak their underlying messages.
func respondWithAppError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	switch appErr.Type {
	case apperrors.ErrorTypeValidation:
		respondWithError(w, http.StatusBadRequest, appErr.Message)
	case apperrors.ErrorTypeNotFound:
		respondWithError(w, http.StatusNotFound, appErr.Message)
	case apperrors.ErrorTypeConflict:
		respondWithError(w, http.StatusConflict, appErr.Message)
	case apperrors.ErrorTypeExternal:
		respondWithError(w, http.StatusBadGateway, "upstream provider unavailable")
	default:
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
