package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linkwarden/linkwarden/internal/auth"
	"github.com/linkwarden/linkwarden/internal/handler/dto"
	"github.com/linkwarden/linkwarden/internal/repository"
	"github.com/linkwarden/linkwarden/internal/service"
)

// AnalyticsHandler handles analytics API requests.
type AnalyticsHandler struct {
	svc    *service.AnalyticsService
	logger *slog.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(svc *service.AnalyticsService, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		svc:    svc,
		logger: logger.With("component", "handler.analytics"),
	}
}

// Summary handles GET /api/v1/links/{id}/analytics/summary.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	linkID := chi.URLParam(r, "id")
	if linkID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Link ID is required")
		return
	}

	summary, err := h.svc.GetSummary(r.Context(), linkID, auth.OwnerIDFromContext(r.Context()))
	if err != nil {
		h.handleError(w, linkID, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSummaryResponse(summary))
}

// DailySeries handles GET /api/v1/links/{id}/analytics/daily.
func (h *AnalyticsHandler) DailySeries(w http.ResponseWriter, r *http.Request) {
	linkID := chi.URLParam(r, "id")
	if linkID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Link ID is required")
		return
	}

	series, err := h.svc.GetDailySeries(r.Context(), linkID, auth.OwnerIDFromContext(r.Context()))
	if err != nil {
		h.handleError(w, linkID, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToDailySeriesResponse(series))
}

// Breakdown handles GET /api/v1/links/{id}/analytics/breakdown.
func (h *AnalyticsHandler) Breakdown(w http.ResponseWriter, r *http.Request) {
	linkID := chi.URLParam(r, "id")
	if linkID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Link ID is required")
		return
	}

	breakdown, err := h.svc.GetBreakdown(r.Context(), linkID, auth.OwnerIDFromContext(r.Context()))
	if err != nil {
		h.handleError(w, linkID, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBreakdownResponse(breakdown))
}

func (h *AnalyticsHandler) handleError(w http.ResponseWriter, linkID string, err error) {
	switch {
	case errors.Is(err, service.ErrLinkNotFound):
		writeError(w, http.StatusNotFound, "LINK_NOT_FOUND", "Link not found")
	case errors.Is(err, repository.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Storage is temporarily unavailable")
	default:
		h.logger.Error("analytics_error", "link_id", linkID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch analytics")
	}
}
