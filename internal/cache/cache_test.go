package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	SetClient(c)
	t.Cleanup(func() {
		SetClient(nil)
		_ = c.Close()
	})
	return mr
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "user:42", UserKey(42))
	assert.Equal(t, "user:42:friends", FriendsKey(42))
	assert.Equal(t, "token:revoked:abc", RevokedTokenKey("abc"))
}

func TestAside(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	loads := 0
	load := func(dest *string) func() error {
		return func() error {
			loads++
			*dest = "from-db"
			return nil
		}
	}

	var v1 string
	require.NoError(t, Aside(ctx, "k", &v1, time.Minute, load(&v1)))
	assert.Equal(t, "from-db", v1)
	assert.Equal(t, 1, loads)

	// Second read is served from the cache.
	var v2 string
	require.NoError(t, Aside(ctx, "k", &v2, time.Minute, load(&v2)))
	assert.Equal(t, "from-db", v2)
	assert.Equal(t, 1, loads)

	// After the TTL the loader runs again.
	mr.FastForward(2 * time.Minute)
	var v3 string
	require.NoError(t, Aside(ctx, "k", &v3, time.Minute, load(&v3)))
	assert.Equal(t, 2, loads)
}

func TestAside_NilClientDegradesToLoad(t *testing.T) {
	SetClient(nil)

	loads := 0
	var v string
	require.NoError(t, Aside(context.Background(), "k", &v, time.Minute, func() error {
		loads++
		v = "direct"
		return nil
	}))
	assert.Equal(t, "direct", v)
	assert.Equal(t, 1, loads)
}

func TestInvalidate(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	var v string
	require.NoError(t, Aside(ctx, FriendsKey(1), &v, time.Minute, func() error {
		v = "cached"
		return nil
	}))

	InvalidateFriends(ctx, 1)

	loads := 0
	require.NoError(t, Aside(ctx, FriendsKey(1), &v, time.Minute, func() error {
		loads++
		return nil
	}))
	assert.Equal(t, 1, loads)
}

func TestTokenRevocation(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	assert.False(t, IsTokenRevoked(ctx, "jti-1"))

	require.NoError(t, RevokeToken(ctx, "jti-1", time.Hour))
	assert.True(t, IsTokenRevoked(ctx, "jti-1"))
	assert.False(t, IsTokenRevoked(ctx, "jti-2"))

	// Revocation expires with the token itself.
	mr.FastForward(2 * time.Hour)
	assert.False(t, IsTokenRevoked(ctx, "jti-1"))
}

func TestTokenRevocation_EdgeCases(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	// Expired tokens need no blacklist entry.
	require.NoError(t, RevokeToken(ctx, "jti-expired", -time.Minute))
	assert.False(t, IsTokenRevoked(ctx, "jti-expired"))

	assert.False(t, IsTokenRevoked(ctx, ""))

	SetClient(nil)
	assert.Error(t, RevokeToken(ctx, "jti", time.Hour))
	assert.False(t, IsTokenRevoked(ctx, "jti"))
}
