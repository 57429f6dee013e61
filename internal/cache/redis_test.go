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

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCacheFromClient(client)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisCacheSetGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "codegen:anthropic:abc", []byte(`{"files":{}}`), time.Hour))

	val, ok := c.Get(ctx, "codegen:anthropic:abc")
	require.True(t, ok)
	assert.Equal(t, []byte(`{"files":{}}`), val)
}

func TestRedisCacheMiss(t *testing.T) {
	c, _ := newTestCache(t)

	_, ok := c.Get(context.Background(), "codegen:openai:missing")
	assert.False(t, ok)
}

func TestRedisCacheExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("value"), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, ok := c.Get(ctx, "key")
	assert.False(t, ok, "entry must expire after its TTL")
}

func TestRedisCacheDelete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("value"), time.Hour))
	require.NoError(t, c.Delete(ctx, "key"))

	_, ok := c.Get(ctx, "key")
	assert.False(t, ok)
}

func TestRedisCacheGetAfterServerGone(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	// Read failures are treated as misses, not errors.
	_, ok := c.Get(context.Background(), "key")
	assert.False(t, ok)
}
