package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/linkwarden/linkwarden/internal/policy"
	"github.com/linkwarden/linkwarden/internal/repository"
	"github.com/linkwarden/linkwarden/internal/service"
)

// RedirectHandler handles redirect requests.
type RedirectHandler struct {
	svc    *service.LinkService
	logger *slog.Logger
}

// NewRedirectHandler creates a new RedirectHandler.
func NewRedirectHandler(svc *service.LinkService, logger *slog.Logger) *RedirectHandler {
	return &RedirectHandler{
		svc:    svc,
		logger: logger.With("component", "handler.redirect"),
	}
}

// Redirect handles GET /{code} for URL redirection. A password for a
// protected link is supplied via the X-Link-Password header or the
// password query parameter.
func (h *RedirectHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		h.writeError(w, http.StatusNotFound, "LINK_NOT_FOUND", "Link not found")
		return
	}

	supplied := r.Header.Get("X-Link-Password")
	if supplied == "" {
		supplied = r.URL.Query().Get("password")
	}

	country := r.Header.Get("CF-IPCountry")
	if country == "" {
		country = r.Header.Get("X-Country-Code")
	}

	visitor := service.Visitor{
		IP:        getClientIP(r),
		UserAgent: r.Header.Get("User-Agent"),
		Country:   country,
	}

	start := time.Now()
	outcome, err := h.svc.Resolve(r.Context(), code, supplied, visitor)
	duration := time.Since(start)

	if err != nil {
		if errors.Is(err, repository.ErrStoreUnavailable) {
			h.logger.Error("redirect_store_unavailable", "code", code, "error", err)
			h.writeError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Storage is temporarily unavailable")
			return
		}
		h.logger.Error("redirect_error", "code", code, "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	if !outcome.Allowed() {
		h.handleDenied(w, code, outcome.Verdict, duration)
		return
	}

	h.logger.Info("redirect_success",
		"code", code,
		"duration_ms", float64(duration.Microseconds())/1000,
	)

	// Set security headers
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("Cache-Control", "private, max-age=0")

	http.Redirect(w, r, outcome.OriginalURL, http.StatusFound)
}

// handleDenied maps a denial verdict to its HTTP response. Deactivated
// links answer 404 so their existence is not revealed.
func (h *RedirectHandler) handleDenied(w http.ResponseWriter, code string, verdict policy.Verdict, duration time.Duration) {
	h.logger.Info("redirect_denied",
		"code", code,
		"verdict", string(verdict),
		"duration_ms", float64(duration.Microseconds())/1000,
	)

	switch verdict {
	case policy.VerdictNotFound, policy.VerdictDeactivated:
		h.writeError(w, http.StatusNotFound, "LINK_NOT_FOUND", "Link not found")
	case policy.VerdictExpired:
		h.writeError(w, http.StatusGone, "LINK_EXPIRED", "Link has expired")
	case policy.VerdictPasswordRequired:
		h.writeError(w, http.StatusUnauthorized, "PASSWORD_REQUIRED", "This link requires a password")
	case policy.VerdictPasswordMismatch:
		h.writeError(w, http.StatusUnauthorized, "PASSWORD_MISMATCH", "Incorrect password")
	default:
		h.writeError(w, http.StatusNotFound, "LINK_NOT_FOUND", "Link not found")
	}
}

// writeError writes a JSON error response for redirect failures.
func (h *RedirectHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	// Set security headers even on errors
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, max-age=0")

	writeError(w, status, code, message)
}

// getClientIP extracts the client IP address from the request.
func getClientIP(r *http.Request) string {
	// Check Cloudflare header first
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	// Check X-Forwarded-For
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		// Take the first IP in the chain
		for i := 0; i < len(ip); i++ {
			if ip[i] == ',' {
				return ip[:i]
			}
		}
		return ip
	}
	// Check X-Real-IP
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	// Fall back to RemoteAddr
	return r.RemoteAddr
}
