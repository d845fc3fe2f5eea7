package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/tripplanner/internal/cache"
	"github.com/neexbeast/tripplanner/internal/geo"
	"github.com/neexbeast/tripplanner/internal/geocode"
)

func newTestRedis(t *testing.T, ttl time.Duration) (*cache.Redis, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return cache.NewRedis(client, ttl), mr
}

func sampleLocation() geocode.Location {
	return geocode.Location{
		Coordinates: geo.Coordinates{Latitude: 48.8566, Longitude: 2.3522},
		Country:     "France",
		CountryCode: "fr",
	}
}

func TestRedis_PutAndGet(t *testing.T) {
	c, mr := newTestRedis(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "Paris", sampleLocation()))
	assert.True(t, mr.Exists("geocode:Paris"))

	got, err := c.Get(ctx, "Paris")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sampleLocation(), *got)
}

func TestRedis_Get_Miss(t *testing.T) {
	c, _ := newTestRedis(t, time.Hour)

	got, err := c.Get(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, got, "cache miss should return nil, nil")
}

func TestRedis_KeyIsCaseSensitive(t *testing.T) {
	c, _ := newTestRedis(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "PARIS", sampleLocation()))

	got, err := c.Get(ctx, "paris")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = c.Get(ctx, "PARIS")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestRedis_TTL(t *testing.T) {
	c, mr := newTestRedis(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "Paris", sampleLocation()))
	mr.FastForward(2 * time.Hour)

	got, err := c.Get(ctx, "Paris")
	require.NoError(t, err)
	assert.Nil(t, got, "entry should be expired after TTL")
}

func TestRedis_NoTTL(t *testing.T) {
	c, mr := newTestRedis(t, 0)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "Paris", sampleLocation()))
	mr.FastForward(24 * time.Hour)

	got, err := c.Get(ctx, "Paris")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestRedis_CorruptEntry(t *testing.T) {
	c, mr := newTestRedis(t, time.Hour)
	require.NoError(t, mr.Set("geocode:Paris", "{not json"))

	_, err := c.Get(context.Background(), "Paris")
	require.Error(t, err)
}

func TestMemory_PutAndGet(t *testing.T) {
	c := cache.NewMemory(0)
	ctx := context.Background()

	got, err := c.Get(ctx, "Paris")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Put(ctx, "Paris", sampleLocation()))
	got, err = c.Get(ctx, "Paris")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "fr", got.CountryCode)
}

func TestMemory_Expiry(t *testing.T) {
	c := cache.NewMemory(10 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "Paris", sampleLocation()))
	time.Sleep(30 * time.Millisecond)

	got, err := c.Get(ctx, "Paris")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemory_SatisfiesResolverCache(t *testing.T) {
	var _ geocode.Cache = cache.NewMemory(0)
	var _ geocode.Cache = (*cache.Redis)(nil)
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := cache.Connect(context.Background(), "not-a-url")
	require.Error(t, err)
}

func TestConnect_UnreachableServer(t *testing.T) {
	_, err := cache.Connect(context.Background(), "redis://localhost:19999")
	require.Error(t, err)
}

func TestConnect_Miniredis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := cache.Connect(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
}
