package repository

import (
	"errors"
	"testing"
	"time"
)

func TestLinkCursor_RoundTrip(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	encoded := encodeLinkCursor(&LinkCursor{ID: "01J0ABCDEF", CreatedAt: created})

	decoded, err := decodeLinkCursor(encoded)
	if err != nil {
		t.Fatalf("decodeLinkCursor failed: %v", err)
	}

	if decoded.ID != "01J0ABCDEF" {
		t.Errorf("ID mismatch: got %q", decoded.ID)
	}
	if !decoded.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt mismatch: got %v, want %v", decoded.CreatedAt, created)
	}
}

func TestDecodeLinkCursor_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cursor string
	}{
		{"not base64", "!!!not-base64!!!"},
		{"base64 but not json", "bm90LWpzb24="},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := decodeLinkCursor(tt.cursor); err == nil {
				t.Error("expected error for invalid cursor")
			}
		})
	}
}

func TestUnavailable_WrapsSentinel(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := unavailable("insert link", cause)

	if !errors.Is(err, ErrStoreUnavailable) {
		t.Error("expected ErrStoreUnavailable in chain")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause in chain")
	}
}
