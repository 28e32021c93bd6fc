package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	var out point
	assert.ErrorIs(t, c.Get(ctx, "a", &out), ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "a", point{Lat: 43.589, Lng: -79.6441}, time.Minute))
	require.NoError(t, c.Get(ctx, "a", &out))
	assert.Equal(t, point{Lat: 43.589, Lng: -79.6441}, out)

	require.NoError(t, c.Delete(ctx, "a"))
	assert.ErrorIs(t, c.Get(ctx, "a", &out), ErrCacheMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", 1, 5*time.Minute))
	var v int
	require.NoError(t, c.Get(ctx, "k", &v))

	now = now.Add(5 * time.Minute)
	assert.ErrorIs(t, c.Get(ctx, "k", &v), ErrCacheMiss)
}

func TestMemoryCacheNoExpiration(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	c := NewMemoryCache()
	c.now = func() time.Time { return now }
	require.NoError(t, c.Set(ctx, "k", "v", 0))
	now = now.Add(24 * time.Hour)
	var v string
	require.NoError(t, c.Get(ctx, "k", &v))
	assert.Equal(t, "v", v)
}

func TestHelperCachesResult(t *testing.T) {
	ctx := context.Background()
	h := NewHelper[point](NewMemoryCache())
	calls := 0
	fn := func(context.Context) (point, error) {
		calls++
		return point{Lat: 1, Lng: 2}, nil
	}

	var out point
	require.NoError(t, h.Handle(ctx, "geo", &out, fn, time.Minute))
	require.NoError(t, h.Handle(ctx, "geo", &out, fn, time.Minute))
	assert.Equal(t, 1, calls)
	assert.Equal(t, point{Lat: 1, Lng: 2}, out)
}

func TestHelperDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	h := NewHelper[point](NewMemoryCache())
	boom := errors.New("boom")

	var out point
	err := h.Handle(ctx, "geo", &out, func(context.Context) (point, error) { return point{}, boom }, time.Minute)
	assert.ErrorIs(t, err, boom)

	err = h.Handle(ctx, "geo", &out, func(context.Context) (point, error) { return point{Lat: 3}, nil }, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 3.0, out.Lat)
}
