package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/linkwarden/linkwarden/internal/model"
)

const (
	// identityCachePrefix is the Redis key prefix for verified token identities.
	identityCachePrefix = "auth:identity:"
	// identityCacheTTL is the time-to-live for cached identities.
	identityCacheTTL = 5 * time.Minute
)

// cachedIdentity represents a verified token identity stored in Redis.
type cachedIdentity struct {
	TokenID string `json:"token_id"`
	Prefix  string `json:"prefix"`
	OwnerID string `json:"owner_id"`
}

// GetIdentity retrieves a cached identity by cache key.
// Returns nil if not found (cache miss).
func (c *Cache) GetIdentity(ctx context.Context, cacheKey string) (*model.Identity, error) {
	key := identityCachePrefix + cacheKey

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var cached cachedIdentity
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &model.Identity{
		TokenID: cached.TokenID,
		Prefix:  cached.Prefix,
		OwnerID: cached.OwnerID,
	}, nil
}

// SetIdentity caches a verified token identity.
func (c *Cache) SetIdentity(ctx context.Context, cacheKey string, id *model.Identity) error {
	key := identityCachePrefix + cacheKey

	data, err := json.Marshal(cachedIdentity{
		TokenID: id.TokenID,
		Prefix:  id.Prefix,
		OwnerID: id.OwnerID,
	})
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}

	return c.client.Set(ctx, key, data, identityCacheTTL).Err()
}

// DeleteIdentity removes a cached identity. Used when a token is revoked.
func (c *Cache) DeleteIdentity(ctx context.Context, cacheKey string) error {
	key := identityCachePrefix + cacheKey
	return c.client.Del(ctx, key).Err()
}
