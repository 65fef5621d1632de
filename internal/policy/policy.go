// Package policy implements the ordered access checks applied to every
// resolution attempt.
package policy

import (
	"time"

	"github.com/linkwarden/linkwarden/internal/model"
	"github.com/linkwarden/linkwarden/internal/password"
)

// Verdict is the terminal outcome of one resolution attempt.
type Verdict string

const (
	VerdictAllowed          Verdict = "allowed"
	VerdictNotFound         Verdict = "not_found"
	VerdictDeactivated      Verdict = "deactivated"
	VerdictExpired          Verdict = "expired"
	VerdictPasswordRequired Verdict = "password_required"
	VerdictPasswordMismatch Verdict = "password_mismatch"
)

// Outcome carries the verdict and, when allowed, the destination.
type Outcome struct {
	Verdict     Verdict
	OriginalURL string
}

// Allowed reports whether the resolution may proceed to a redirect.
func (o Outcome) Allowed() bool {
	return o.Verdict == VerdictAllowed
}

// Gate evaluates activation, expiry and password policy for a link.
// Evaluation is a point-in-time read of the link snapshot passed in;
// concurrent owner mutations are not re-checked mid-attempt.
type Gate struct{}

// NewGate returns a Gate.
func NewGate() *Gate {
	return &Gate{}
}

// Evaluate runs the checks in fixed order so precedence is
// deterministic: not found, deactivated, expired, then password. An
// expired-but-inactive link therefore reports deactivated, not expired.
func (g *Gate) Evaluate(link *model.Link, supplied string, now time.Time) Outcome {
	if link == nil {
		return Outcome{Verdict: VerdictNotFound}
	}

	if !link.Active {
		return Outcome{Verdict: VerdictDeactivated}
	}

	if link.IsExpired(now) {
		return Outcome{Verdict: VerdictExpired}
	}

	if link.Private {
		if supplied == "" {
			return Outcome{Verdict: VerdictPasswordRequired}
		}
		match, err := password.Verify(supplied, link.PasswordHash)
		if err != nil || !match {
			return Outcome{Verdict: VerdictPasswordMismatch}
		}
	}

	return Outcome{Verdict: VerdictAllowed, OriginalURL: link.OriginalURL}
}
