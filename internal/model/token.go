package model

import "time"

// OwnerToken is an API token granting access to one owner's links.
// The plaintext token is shown once at creation; only the argon2id
// hash and the lookup prefix are stored.
type OwnerToken struct {
	ID         string     `json:"id"`
	OwnerID    string     `json:"owner_id"`
	TokenHash  string     `json:"-"`
	Prefix     string     `json:"prefix"` // 6-char visible prefix for lookup
	Name       string     `json:"name"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
}

// IsRevoked reports whether the token has been revoked.
func (t *OwnerToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	TokenID string
	Prefix  string
	OwnerID string
}
