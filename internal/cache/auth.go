package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spendlog/spendlog/internal/model"
)

const (
	// authCachePrefix is the Redis key prefix for cached principals.
	authCachePrefix = "auth:principal:"
	// authCacheTTL is the time-to-live for cached principals.
	authCacheTTL = 5 * time.Minute
)

// cachedPrincipal represents a principal stored in Redis.
type cachedPrincipal struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	IsStaff  bool   `json:"is_staff"`
}

// GetPrincipal retrieves the cached principal for a user.
// Returns nil if not found (cache miss).
func (c *Cache) GetPrincipal(ctx context.Context, userID string) (*model.Principal, error) {
	data, err := c.client.Get(ctx, authCachePrefix+userID).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var cached cachedPrincipal
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &model.Principal{
		UserID:   cached.UserID,
		Username: cached.Username,
		IsStaff:  cached.IsStaff,
	}, nil
}

// SetPrincipal caches a principal under its user ID.
func (c *Cache) SetPrincipal(ctx context.Context, p *model.Principal) error {
	data, err := json.Marshal(cachedPrincipal{
		UserID:   p.UserID,
		Username: p.Username,
		IsStaff:  p.IsStaff,
	})
	if err != nil {
		return fmt.Errorf("marshal principal: %w", err)
	}

	return c.client.Set(ctx, authCachePrefix+p.UserID, data, authCacheTTL).Err()
}

// DeletePrincipal removes a cached principal.
// Used when a user's privileges change.
func (c *Cache) DeletePrincipal(ctx context.Context, userID string) error {
	return c.client.Del(ctx, authCachePrefix+userID).Err()
}
