// Package model defines domain entities for the application.
package model

import (
	"strconv"
	"time"
)

// Link represents a shortened URL entity.
//
// ShortID and CustomAlias share one uniqueness namespace: a code resolves
// against either column, and CustomAlias wins as the public-facing code
// when present. Both are immutable after creation.
type Link struct {
	ID           string     `json:"id"`
	ShortID      string     `json:"short_id"`
	CustomAlias  string     `json:"custom_alias,omitempty"`
	OriginalURL  string     `json:"original_url"`
	OwnerID      string     `json:"owner_id"`
	Active       bool       `json:"is_active"`
	Private      bool       `json:"is_private"`
	PasswordHash string     `json:"-"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	ClickCount   int64      `json:"click_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Code returns the public-facing short code for the link.
func (l *Link) Code() string {
	if l.CustomAlias != "" {
		return l.CustomAlias
	}
	return l.ShortID
}

// IsExpired reports whether the link's expiry instant has passed.
func (l *Link) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

// CachedLink represents link data stored in Redis.
// Uses string types for Redis hash compatibility.
type CachedLink struct {
	ID           string `redis:"id"`
	OriginalURL  string `redis:"original_url"`
	OwnerID      string `redis:"owner_id"`
	Active       string `redis:"active"`        // "1" or "0"
	Private      string `redis:"private"`       // "1" or "0"
	PasswordHash string `redis:"password_hash"` // argon2id PHC string or empty
	ExpiresAt    string `redis:"expires_at"`    // Unix timestamp or empty
	UpdatedAt    string `redis:"updated_at"`    // Unix timestamp
}

// ToLink converts CachedLink back into the domain model.
// Only the policy fields and the destination survive the round trip;
// the code the entry was cached under is carried in ShortID.
func (c *CachedLink) ToLink(code string) *Link {
	link := &Link{
		ID:           c.ID,
		ShortID:      code,
		OriginalURL:  c.OriginalURL,
		OwnerID:      c.OwnerID,
		Active:       c.Active == "1",
		Private:      c.Private == "1",
		PasswordHash: c.PasswordHash,
	}

	if c.ExpiresAt != "" {
		if ts, err := strconv.ParseInt(c.ExpiresAt, 10, 64); err == nil {
			t := time.Unix(ts, 0)
			link.ExpiresAt = &t
		}
	}

	if c.UpdatedAt != "" {
		if ts, err := strconv.ParseInt(c.UpdatedAt, 10, 64); err == nil {
			link.UpdatedAt = time.Unix(ts, 0)
		}
	}

	return link
}

// ToCachedLink converts the domain model into its Redis representation.
func (l *Link) ToCachedLink() *CachedLink {
	cached := &CachedLink{
		ID:           l.ID,
		OriginalURL:  l.OriginalURL,
		OwnerID:      l.OwnerID,
		Active:       boolToString(l.Active),
		Private:      boolToString(l.Private),
		PasswordHash: l.PasswordHash,
		UpdatedAt:    strconv.FormatInt(l.UpdatedAt.Unix(), 10),
	}

	if l.ExpiresAt != nil {
		cached.ExpiresAt = strconv.FormatInt(l.ExpiresAt.Unix(), 10)
	}

	return cached
}

func boolToString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
