package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevokeToken marks the given token ID as revoked until its natural expiry.
func RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if client == nil {
		return errors.New("redis unavailable")
	}
	if ttl <= 0 {
		return nil
	}
	return client.Set(ctx, RevokedTokenKey(jti), "1", ttl).Err()
}

// IsTokenRevoked reports whether the given token ID has been revoked.
// When Redis is unavailable tokens are treated as valid so that a cache
// outage does not lock out every authenticated user.
func IsTokenRevoked(ctx context.Context, jti string) bool {
	if client == nil || jti == "" {
		return false
	}
	_, err := client.Get(ctx, RevokedTokenKey(jti)).Result()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		return false
	}
	return true
}
