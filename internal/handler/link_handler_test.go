package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/linkwarden/linkwarden/internal/auth"
	"github.com/linkwarden/linkwarden/internal/handler/dto"
	"github.com/linkwarden/linkwarden/internal/model"
	"github.com/linkwarden/linkwarden/internal/service"
)

const testBaseURL = "http://localhost:8080"

func newLinkRouter(t *testing.T) (*chi.Mux, *service.LinkService) {
	t.Helper()
	svc, _, _ := newTestLinkService(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewLinkHandler(svc, testBaseURL, logger)

	r := chi.NewRouter()
	r.Post("/api/v1/links", h.Create)
	r.Get("/api/v1/links", h.List)
	r.Get("/api/v1/links/{id}", h.Get)
	r.Patch("/api/v1/links/{id}", h.Update)
	r.Delete("/api/v1/links/{id}", h.Delete)
	return r, svc
}

// asOwner attaches an authenticated identity the way the auth
// middleware does.
func asOwner(req *http.Request, ownerID string) *http.Request {
	identity := &model.Identity{TokenID: "tok-1", Prefix: "abcdef", OwnerID: ownerID}
	return req.WithContext(auth.ContextWithIdentity(req.Context(), identity))
}

func TestLinkHandler_Create(t *testing.T) {
	r, _ := newLinkRouter(t)

	body := `{"original_url": "https://example.com/page", "alias": "my-page"}`
	req := asOwner(httptest.NewRequest(http.MethodPost, "/api/v1/links", strings.NewReader(body)), "owner-1")
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.LinkResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.CustomAlias != "my-page" {
		t.Errorf("expected alias 'my-page', got %q", resp.CustomAlias)
	}
	if resp.ShortURL != testBaseURL+"/my-page" {
		t.Errorf("unexpected short_url: %s", resp.ShortURL)
	}
	if len(resp.ShortID) == 0 {
		t.Error("expected a generated short_id")
	}
	if !resp.Active {
		t.Error("new links should be active")
	}
}

func TestLinkHandler_Create_ValidationErrors(t *testing.T) {
	r, _ := newLinkRouter(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"invalid json", `{not json`, http.StatusBadRequest, "INVALID_JSON"},
		{"bad scheme", `{"original_url": "ftp://example.com"}`, http.StatusBadRequest, "INVALID_URL"},
		{"bad alias", `{"original_url": "https://example.com", "alias": "x"}`, http.StatusBadRequest, "INVALID_ALIAS"},
		{"weak password", `{"original_url": "https://example.com", "private": true, "password": "abc"}`, http.StatusBadRequest, "WEAK_PASSWORD"},
		{"private without password", `{"original_url": "https://example.com", "private": true}`, http.StatusBadRequest, "PASSWORD_REQUIRED"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := asOwner(httptest.NewRequest(http.MethodPost, "/api/v1/links", strings.NewReader(tt.body)), "owner-1")
			rec := httptest.NewRecorder()

			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}

			var resp dto.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestLinkHandler_Create_PastExpiryAccepted(t *testing.T) {
	r, _ := newLinkRouter(t)

	// Already-expired links are created as-is; resolution answers Expired.
	body := `{"original_url": "https://example.com", "expires_at": "2020-01-01T00:00:00Z"}`
	req := asOwner(httptest.NewRequest(http.MethodPost, "/api/v1/links", strings.NewReader(body)), "owner-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.LinkResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ExpiresAt == nil || resp.ExpiresAt.Year() != 2020 {
		t.Errorf("expected the past expiry to be stored, got %v", resp.ExpiresAt)
	}

	// Updating to a past expiry is still refused.
	patch := `{"expires_at": "2020-01-01T00:00:00Z"}`
	req = asOwner(httptest.NewRequest(http.MethodPatch, "/api/v1/links/"+resp.ID, strings.NewReader(patch)), "owner-1")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected status 422 on update, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLinkHandler_Create_DuplicateAlias(t *testing.T) {
	r, _ := newLinkRouter(t)

	body := `{"original_url": "https://example.com/a", "alias": "taken"}`
	req := asOwner(httptest.NewRequest(http.MethodPost, "/api/v1/links", strings.NewReader(body)), "owner-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("first create failed: %d", rec.Code)
	}

	req = asOwner(httptest.NewRequest(http.MethodPost, "/api/v1/links", strings.NewReader(body)), "owner-2")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != "CODE_TAKEN" {
		t.Errorf("expected CODE_TAKEN, got %s", resp.Code)
	}
}

func TestLinkHandler_Get_OwnershipScoped(t *testing.T) {
	r, svc := newLinkRouter(t)

	link, err := svc.CreateLink(context.Background(), service.CreateLinkInput{
		OriginalURL: "https://example.com/mine",
		OwnerID:     "owner-1",
	})
	if err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	// Owner sees the link.
	req := asOwner(httptest.NewRequest(http.MethodGet, "/api/v1/links/"+link.ID, nil), "owner-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for owner, got %d", rec.Code)
	}

	// A different owner gets 404, same as a missing link.
	req = asOwner(httptest.NewRequest(http.MethodGet, "/api/v1/links/"+link.ID, nil), "owner-2")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for foreign owner, got %d", rec.Code)
	}
}

func TestLinkHandler_Update_Toggle(t *testing.T) {
	r, svc := newLinkRouter(t)

	link, err := svc.CreateLink(context.Background(), service.CreateLinkInput{
		OriginalURL: "https://example.com/toggle",
		OwnerID:     "owner-1",
	})
	if err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	body, _ := json.Marshal(dto.UpdateLinkRequest{Active: boolPtr(false)})
	req := asOwner(httptest.NewRequest(http.MethodPatch, "/api/v1/links/"+link.ID, bytes.NewReader(body)), "owner-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.LinkResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Active {
		t.Error("expected link deactivated")
	}
}

func TestLinkHandler_Delete(t *testing.T) {
	r, svc := newLinkRouter(t)

	link, err := svc.CreateLink(context.Background(), service.CreateLinkInput{
		OriginalURL: "https://example.com/gone",
		OwnerID:     "owner-1",
	})
	if err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	req := asOwner(httptest.NewRequest(http.MethodDelete, "/api/v1/links/"+link.ID, nil), "owner-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}

	// Gone afterwards.
	req = asOwner(httptest.NewRequest(http.MethodGet, "/api/v1/links/"+link.ID, nil), "owner-1")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404 after delete, got %d", rec.Code)
	}
}

func TestLinkHandler_List(t *testing.T) {
	r, svc := newLinkRouter(t)

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateLink(context.Background(), service.CreateLinkInput{
			OriginalURL: "https://example.com/list",
			OwnerID:     "owner-1",
		}); err != nil {
			t.Fatalf("CreateLink failed: %v", err)
		}
	}

	req := asOwner(httptest.NewRequest(http.MethodGet, "/api/v1/links", nil), "owner-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp dto.LinkListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Data) != 3 {
		t.Errorf("expected 3 links, got %d", len(resp.Data))
	}
}

func boolPtr(b bool) *bool { return &b }
