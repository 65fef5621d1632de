package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/linkwarden/linkwarden/internal/auth"
	"github.com/linkwarden/linkwarden/internal/cache"
	"github.com/linkwarden/linkwarden/internal/model"
	"github.com/linkwarden/linkwarden/internal/password"
	"github.com/linkwarden/linkwarden/internal/repository"
)

// minAuthDuration is the minimum time to spend on auth to prevent
// timing attacks.
const minAuthDuration = 200 * time.Millisecond

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger     *slog.Logger
	Repository *repository.Repository
	Cache      *cache.Cache
}

// Auth returns a middleware that authenticates owner API requests.
// It extracts the bearer token, verifies it against the stored argon2
// hash (with a Redis fast path), and injects the caller identity into
// the request context.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()

			// Ensure consistent timing regardless of outcome
			defer func() {
				elapsed := time.Since(startTime)
				if elapsed < minAuthDuration {
					time.Sleep(minAuthDuration - elapsed)
				}
			}()

			token := extractToken(r)
			if token == "" {
				cfg.logFailure(r, "missing_token")
				writeAuthError(w)
				return
			}

			parsed, err := auth.ParseToken(token)
			if err != nil {
				cfg.logFailure(r, "invalid_format")
				writeAuthError(w)
				return
			}

			// Check cache first
			cacheKey := auth.QuickHash(token)
			identity, _ := cfg.Cache.GetIdentity(r.Context(), cacheKey)

			if identity != nil {
				cfg.logSuccess(r, identity, true)
				next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), identity)))
				return
			}

			// Cache miss - lookup candidates by prefix
			tokens, err := cfg.Repository.FindTokensByPrefix(r.Context(), parsed.Prefix)
			if err != nil {
				cfg.Logger.Error("database error during auth",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			// Verify against each candidate (handles prefix collisions)
			var matched *model.OwnerToken
			for _, candidate := range tokens {
				ok, err := password.Verify(token, candidate.TokenHash)
				if err != nil {
					continue
				}
				if ok {
					matched = candidate
					break
				}
			}

			if matched == nil {
				cfg.logFailure(r, "invalid_token")
				writeAuthError(w)
				return
			}

			identity = &model.Identity{
				TokenID: matched.ID,
				Prefix:  matched.Prefix,
				OwnerID: matched.OwnerID,
			}

			_ = cfg.Cache.SetIdentity(r.Context(), cacheKey, identity)

			// Update last_used_at off the request path.
			go func(id string) {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = cfg.Repository.TouchTokenLastUsed(ctx, id)
			}(matched.ID)

			cfg.logSuccess(r, identity, false)
			next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), identity)))
		})
	}
}

func (cfg AuthConfig) logFailure(r *http.Request, reason string) {
	cfg.Logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

func (cfg AuthConfig) logSuccess(r *http.Request, identity *model.Identity, cacheHit bool) {
	cfg.Logger.Info("authentication successful",
		slog.String("token_id", identity.TokenID),
		slog.String("token_prefix", identity.Prefix),
		slog.String("owner_id", identity.OwnerID),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.Bool("cache_hit", cacheHit),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// extractToken extracts the owner token from the request.
// Supports "Authorization: Bearer <token>" and the X-API-Token header.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return r.Header.Get("X-API-Token")
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Invalid or missing API token","code":"UNAUTHORIZED"}`))
}
