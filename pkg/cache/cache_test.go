package cache_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dukex/flywheel/pkg/cache"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleKey(t *testing.T) {
	assert.Equal(t, "handle:founder", cache.HandleKey("@Founder"))
	assert.Equal(t, "handle:founder", cache.HandleKey(" founder "))
	assert.Equal(t, cache.HandleKey("@jack"), cache.HandleKey("JACK"))
}

func TestMemory(t *testing.T) {
	store := cache.NewMemory(time.Minute)

	_, ok, err := store.Get(t.Context(), cache.MeKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(t.Context(), cache.MeKey, "2244994945"))

	id, ok, err := store.Get(t.Context(), cache.MeKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2244994945", id)
}

func TestMemory_Expires(t *testing.T) {
	store := cache.NewMemory(20 * time.Millisecond)
	require.NoError(t, store.Set(t.Context(), "handle:jack", "12"))

	assert.Eventually(t, func() bool {
		_, ok, _ := store.Get(t.Context(), "handle:jack")

		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestRedis(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer func() { _ = client.Close() }()

	store := cache.NewRedis(client, "flywheel:", time.Hour)

	_, ok, err := store.Get(t.Context(), cache.MeKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(t.Context(), cache.MeKey, "2244994945"))

	raw, err := server.Get("flywheel:me")
	require.NoError(t, err)
	assert.Equal(t, "2244994945", raw)
	assert.Equal(t, time.Hour, server.TTL("flywheel:me"))

	id, ok, err := store.Get(t.Context(), cache.MeKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2244994945", id)

	server.FastForward(2 * time.Hour)

	_, ok, err = store.Get(t.Context(), cache.MeKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis_ServerDown(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: server.Addr(), MaxRetries: -1})
	defer func() { _ = client.Close() }()

	server.Close()

	_, _, err = cache.NewRedis(client, "", 0).Get(t.Context(), cache.MeKey)
	assert.Error(t, err)
}

func TestConnect(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client, err := cache.Connect(t.Context(), "redis://"+server.Addr()+"/0")
	require.NoError(t, err)
	require.NoError(t, client.Close())

	_, err = cache.Connect(t.Context(), "not-a-url")
	assert.Error(t, err)
}
