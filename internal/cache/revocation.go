package cache

import (
	"context"
	"fmt"
	"time"
)

// revokedKeyPrefix is the Redis key prefix for revoked token ids.
const revokedKeyPrefix = "revoked:"

// RevokeToken adds a token id to the revocation set. The entry's TTL is
// the token's remaining lifetime, so the set self-expires and stays
// bounded while surviving process restarts.
// Returns false if the token id was already in the set.
func (c *Cache) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		// Already past expiry; nothing to revoke.
		return false, nil
	}

	added, err := c.client.SetNX(ctx, revokedKeyPrefix+tokenID, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to revoke token: %w", err)
	}

	return added, nil
}

// IsTokenRevoked reports whether a token id is in the revocation set.
func (c *Cache) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := c.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}

	return n > 0, nil
}
