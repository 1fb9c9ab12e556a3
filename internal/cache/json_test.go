package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pharmacy-desk/internal/cache"
)

func TestJSONRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := cache.NewJSON(rdb, "desk", time.Minute)
	ctx := context.Background()

	key := c.Key("units", "all")
	require.Equal(t, "desk:units:all", key)

	var out []string
	found, err := c.Get(ctx, key, &out)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, c.Set(ctx, key, []string{"tablet", "strip"}))
	found, err = c.Get(ctx, key, &out)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []string{"tablet", "strip"}, out)

	mr.FastForward(2 * time.Minute)
	found, err = c.Get(ctx, key, &out)
	require.NoError(t, err)
	require.False(t, found)
}

func TestJSONNilIsMiss(t *testing.T) {
	var c *cache.JSON
	var out map[string]any
	found, err := c.Get(context.Background(), "k", &out)
	require.NoError(t, err)
	require.False(t, found)
	require.NoError(t, c.Set(context.Background(), "k", 1))
}
