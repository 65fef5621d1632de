package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/linkwarden/linkwarden/internal/model"
)

// Cache key prefixes and TTLs.
const (
	linkKeyPrefix     = "link:"
	negCacheKeySuffix = ":neg"

	// DefaultLinkTTL is the TTL for cached link data.
	DefaultLinkTTL = 24 * time.Hour

	// NegativeCacheTTL is the TTL for negative cache entries.
	NegativeCacheTTL = 5 * time.Minute
)

// ErrCacheMiss indicates the code is not cached.
var ErrCacheMiss = errors.New("cache miss")

// GetLink retrieves a link snapshot from cache by short code.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetLink(ctx context.Context, code string) (*model.CachedLink, error) {
	key := linkKeyPrefix + code

	result, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall: %w", err)
	}

	if len(result) == 0 {
		return nil, ErrCacheMiss
	}

	return &model.CachedLink{
		ID:           result["id"],
		OriginalURL:  result["original_url"],
		OwnerID:      result["owner_id"],
		Active:       result["active"],
		Private:      result["private"],
		PasswordHash: result["password_hash"],
		ExpiresAt:    result["expires_at"],
		UpdatedAt:    result["updated_at"],
	}, nil
}

// SetLink stores a link snapshot under its public code. Entries for
// expiring links live no longer than the link itself.
func (c *Cache) SetLink(ctx context.Context, code string, link *model.Link) error {
	key := linkKeyPrefix + code
	cached := link.ToCachedLink()

	ttl := DefaultLinkTTL
	if link.ExpiresAt != nil {
		expiresIn := time.Until(*link.ExpiresAt)
		if expiresIn <= 0 {
			c.client.Del(ctx, key, key+negCacheKeySuffix)
			return nil
		}
		if expiresIn < ttl {
			ttl = expiresIn
		}
	}

	fields := map[string]any{
		"id":           cached.ID,
		"original_url": cached.OriginalURL,
		"owner_id":     cached.OwnerID,
		"active":       cached.Active,
		"private":      cached.Private,
		"updated_at":   cached.UpdatedAt,
	}
	if cached.PasswordHash != "" {
		fields["password_hash"] = cached.PasswordHash
	}
	if cached.ExpiresAt != "" {
		fields["expires_at"] = cached.ExpiresAt
	}

	pipe := c.client.Pipeline()
	pipe.Del(ctx, key) // drop stale optional fields
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache link: %w", err)
	}

	c.client.Del(ctx, key+negCacheKeySuffix)

	return nil
}

// DeleteLink drops a cached code, positive and negative entries both.
func (c *Cache) DeleteLink(ctx context.Context, code string) error {
	key := linkKeyPrefix + code

	if err := c.client.Del(ctx, key, key+negCacheKeySuffix).Err(); err != nil {
		return fmt.Errorf("delete cached link: %w", err)
	}

	return nil
}

// IsNegativelyCached checks whether a code is known not to exist.
func (c *Cache) IsNegativelyCached(ctx context.Context, code string) (bool, error) {
	key := linkKeyPrefix + code + negCacheKeySuffix

	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("check negative cache: %w", err)
	}

	return exists > 0, nil
}

// SetNegativeCache marks a code as not found for a short window.
func (c *Cache) SetNegativeCache(ctx context.Context, code string) error {
	key := linkKeyPrefix + code + negCacheKeySuffix

	if err := c.client.SetEx(ctx, key, "", NegativeCacheTTL).Err(); err != nil {
		return fmt.Errorf("set negative cache: %w", err)
	}

	return nil
}
