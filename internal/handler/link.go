package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/linkwarden/linkwarden/internal/auth"
	"github.com/linkwarden/linkwarden/internal/handler/dto"
	"github.com/linkwarden/linkwarden/internal/model"
	"github.com/linkwarden/linkwarden/internal/repository"
	"github.com/linkwarden/linkwarden/internal/service"
)

// LinkHandler handles HTTP requests for link operations.
type LinkHandler struct {
	svc     *service.LinkService
	baseURL string
	logger  *slog.Logger
}

// NewLinkHandler creates a new LinkHandler.
func NewLinkHandler(svc *service.LinkService, baseURL string, logger *slog.Logger) *LinkHandler {
	return &LinkHandler{
		svc:     svc,
		baseURL: baseURL,
		logger:  logger.With("component", "handler.link"),
	}
}

// Create handles POST /api/v1/links.
func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	input := service.CreateLinkInput{
		OriginalURL: req.OriginalURL,
		CustomAlias: req.Alias,
		Password:    req.Password,
		Private:     req.Private,
		ExpiresAt:   req.ExpiresAt,
		OwnerID:     auth.OwnerIDFromContext(r.Context()),
	}

	link, err := h.svc.CreateLink(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("link_created",
		"link_id", link.ID,
		"code", link.Code(),
		"has_custom_alias", req.Alias != "",
	)

	writeJSON(w, http.StatusCreated, dto.ToLinkResponse(link, h.baseURL))
}

// Get handles GET /api/v1/links/{id}.
func (h *LinkHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Link ID is required")
		return
	}

	link, err := h.svc.GetLink(r.Context(), id, auth.OwnerIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToLinkResponse(link, h.baseURL))
}

// List handles GET /api/v1/links.
func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 20
	if l := query.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	result, err := h.svc.ListLinks(r.Context(), auth.OwnerIDFromContext(r.Context()), query.Get("cursor"), limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToLinkListResponse(result.Links, h.baseURL, result.NextCursor, result.HasMore))
}

// Update handles PATCH /api/v1/links/{id}. Each present field maps to
// one mutation, applied in a fixed order.
func (h *LinkHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Link ID is required")
		return
	}

	var req dto.UpdateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	ownerID := auth.OwnerIDFromContext(r.Context())

	var link *model.Link
	var err error

	if req.Active != nil {
		link, err = h.svc.ToggleActive(r.Context(), id, ownerID, *req.Active)
		if err != nil {
			h.handleServiceError(w, err)
			return
		}
	}

	if req.Private != nil {
		link, err = h.svc.SetPrivacy(r.Context(), id, ownerID, *req.Private, req.Password)
		if err != nil {
			h.handleServiceError(w, err)
			return
		}
	}

	if req.ClearExpiry {
		link, err = h.svc.SetExpiry(r.Context(), id, ownerID, nil)
	} else if req.ExpiresAt != nil {
		link, err = h.svc.SetExpiry(r.Context(), id, ownerID, req.ExpiresAt)
	}
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if link == nil {
		// Nothing to change; report current state.
		link, err = h.svc.GetLink(r.Context(), id, ownerID)
		if err != nil {
			h.handleServiceError(w, err)
			return
		}
	}

	h.logger.Info("link_updated", "link_id", link.ID, "code", link.Code())

	writeJSON(w, http.StatusOK, dto.ToLinkResponse(link, h.baseURL))
}

// Delete handles DELETE /api/v1/links/{id}.
func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Link ID is required")
		return
	}

	if err := h.svc.DeleteLink(r.Context(), id, auth.OwnerIDFromContext(r.Context())); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("link_deleted", "link_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps service errors to HTTP responses.
func (h *LinkHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrLinkNotFound):
		writeError(w, http.StatusNotFound, "LINK_NOT_FOUND", "Link not found")
	case errors.Is(err, service.ErrDuplicateCode):
		writeError(w, http.StatusConflict, "CODE_TAKEN", "Short code already exists")
	case errors.Is(err, service.ErrInvalidURL):
		writeError(w, http.StatusBadRequest, "INVALID_URL", "Invalid destination URL")
	case errors.Is(err, service.ErrURLTooLong):
		writeError(w, http.StatusBadRequest, "URL_TOO_LONG", "Destination URL exceeds maximum length")
	case errors.Is(err, service.ErrInvalidAlias):
		writeError(w, http.StatusBadRequest, "INVALID_ALIAS", "Invalid alias format")
	case errors.Is(err, service.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, "WEAK_PASSWORD", "Password does not meet the minimum length")
	case errors.Is(err, service.ErrPrivateNeedsPassword):
		writeError(w, http.StatusBadRequest, "PASSWORD_REQUIRED", "Private links require a password")
	case errors.Is(err, service.ErrExpiresInPast):
		writeError(w, http.StatusUnprocessableEntity, "EXPIRES_IN_PAST", "Expiry date must be in the future")
	case errors.Is(err, service.ErrCodeSpaceExhausted):
		writeError(w, http.StatusServiceUnavailable, "CODE_SPACE_EXHAUSTED", "Could not allocate a short code, try again")
	case errors.Is(err, repository.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Storage is temporarily unavailable")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
