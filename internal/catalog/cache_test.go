package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestMemoryCache_Expiration(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	c := NewMemoryCache(0)
	c.now = clock.Now
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), time.Minute)
	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	clock.Advance(2 * time.Minute)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestMemoryCache_NoTTLNeverExpires(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	c := NewMemoryCache(0)
	c.now = clock.Now
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), 0)
	clock.Advance(24 * time.Hour)
	_, ok := c.Get(ctx, "k")
	assert.True(t, ok)
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	c := NewMemoryCache(2)
	c.now = clock.Now
	ctx := context.Background()

	c.Set(ctx, "a", []byte("1"), time.Hour)
	clock.Advance(time.Second)
	c.Set(ctx, "b", []byte("2"), time.Hour)
	clock.Advance(time.Second)
	_, _ = c.Get(ctx, "a")
	clock.Advance(time.Second)
	c.Set(ctx, "c", []byte("3"), time.Hour)

	_, okA := c.Get(ctx, "a")
	_, okB := c.Get(ctx, "b")
	_, okC := c.Get(ctx, "c")
	assert.True(t, okA)
	assert.False(t, okB)
	assert.True(t, okC)
}

func TestMemoryCache_CopiesValue(t *testing.T) {
	c := NewMemoryCache(0)
	ctx := context.Background()
	v := []byte("abc")
	c.Set(ctx, "k", v, 0)
	v[0] = 'z'

	got, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))
}

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisCacheWithClient(client, "", zerolog.Nop())
}

func TestRedisCache_SetGet(t *testing.T) {
	mr, c := setupMiniRedis(t)
	ctx := context.Background()

	c.Set(ctx, "home", []byte(`{"data":{}}`), time.Minute)

	got, ok := c.Get(ctx, "home")
	require.True(t, ok)
	assert.JSONEq(t, `{"data":{}}`, string(got))
	assert.True(t, mr.Exists(DefaultRedisPrefix+"home"))
	assert.Equal(t, time.Minute, mr.TTL(DefaultRedisPrefix+"home"))

	_, ok = c.Get(ctx, "missing")
	assert.False(t, ok)
}

func TestRedisCache_Expiration(t *testing.T) {
	mr, c := setupMiniRedis(t)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), time.Minute)
	mr.FastForward(2 * time.Minute)

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRedisCache_ServerDownIsMiss(t *testing.T) {
	mr, c := setupMiniRedis(t)
	ctx := context.Background()
	mr.Close()

	c.Set(ctx, "k", []byte("v"), time.Minute)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestNewRedisCache_PingFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisCache(context.Background(), RedisConfig{Addr: addr}, zerolog.Nop())
	assert.Error(t, err)
}

func TestCacheImplementations(t *testing.T) {
	_, c := setupMiniRedis(t)
	var _ Cache = c
	var _ Cache = NewMemoryCache(0)
}
