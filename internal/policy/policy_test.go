package policy

import (
	"testing"
	"time"

	"github.com/linkwarden/linkwarden/internal/model"
	"github.com/linkwarden/linkwarden/internal/password"
)

func TestGate_Evaluate_Order(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	gate := NewGate()

	hash, err := password.Hash("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	tests := []struct {
		name     string
		link     *model.Link
		password string
		want     Verdict
	}{
		{
			name: "nil link",
			link: nil,
			want: VerdictNotFound,
		},
		{
			name: "active public link",
			link: &model.Link{Active: true, OriginalURL: "https://example.com"},
			want: VerdictAllowed,
		},
		{
			name: "deactivated",
			link: &model.Link{Active: false},
			want: VerdictDeactivated,
		},
		{
			name: "expired",
			link: &model.Link{Active: true, ExpiresAt: &past},
			want: VerdictExpired,
		},
		{
			name: "deactivated wins over expired",
			link: &model.Link{Active: false, ExpiresAt: &past},
			want: VerdictDeactivated,
		},
		{
			name: "expired wins over password",
			link: &model.Link{Active: true, ExpiresAt: &past, Private: true, PasswordHash: hash},
			want: VerdictExpired,
		},
		{
			name: "private without password",
			link: &model.Link{Active: true, Private: true, PasswordHash: hash},
			want: VerdictPasswordRequired,
		},
		{
			name:     "private with wrong password",
			link:     &model.Link{Active: true, Private: true, PasswordHash: hash},
			password: "wrong12",
			want:     VerdictPasswordMismatch,
		},
		{
			name:     "private with correct password",
			link:     &model.Link{Active: true, Private: true, PasswordHash: hash, OriginalURL: "https://example.com"},
			password: "secret1",
			want:     VerdictAllowed,
		},
		{
			name: "future expiry still allowed",
			link: &model.Link{Active: true, ExpiresAt: &future, OriginalURL: "https://example.com"},
			want: VerdictAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			outcome := gate.Evaluate(tt.link, tt.password, now)
			if outcome.Verdict != tt.want {
				t.Errorf("Verdict = %s, want %s", outcome.Verdict, tt.want)
			}
			if tt.want == VerdictAllowed && outcome.OriginalURL == "" {
				t.Error("allowed outcome missing original URL")
			}
			if tt.want != VerdictAllowed && outcome.OriginalURL != "" {
				t.Errorf("denied outcome leaks original URL %q", outcome.OriginalURL)
			}
		})
	}
}

func TestGate_Evaluate_CorruptHashIsMismatch(t *testing.T) {
	t.Parallel()

	gate := NewGate()
	link := &model.Link{Active: true, Private: true, PasswordHash: "garbage"}

	outcome := gate.Evaluate(link, "secret1", time.Now())
	if outcome.Verdict != VerdictPasswordMismatch {
		t.Errorf("Verdict = %s, want %s", outcome.Verdict, VerdictPasswordMismatch)
	}
}

func TestOutcome_Allowed(t *testing.T) {
	t.Parallel()

	if !(Outcome{Verdict: VerdictAllowed}).Allowed() {
		t.Error("allowed outcome reported as denied")
	}
	if (Outcome{Verdict: VerdictExpired}).Allowed() {
		t.Error("expired outcome reported as allowed")
	}
}
