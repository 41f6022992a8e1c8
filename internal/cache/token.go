package cache

import (
	"context"
	"fmt"
	"time"
)

// revokedTokenPrefix is the Redis key prefix for rotated refresh tokens.
const revokedTokenPrefix = "token:revoked:"

// ClaimToken marks jti as used until ttl elapses. It returns false when the
// token was already claimed or has no lifetime left; only one caller can win
// a given jti.
func (c *Cache) ClaimToken(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}
	ok, err := c.client.SetNX(ctx, revokedTokenPrefix+jti, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim token: %w", err)
	}
	return ok, nil
}
