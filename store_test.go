package redlock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewRedisStore(client, VariantRedisson)
	ctx := context.Background()

	ok, err := store.SetIfAbsent(ctx, "k", "token-a", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.SetIfAbsent(ctx, "k", "token-b", 5*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(3 * time.Second)

	ok, err = store.CompareAndExpire(ctx, "k", "token-b", 5*time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "mismatched token must not extend")
	assert.Equal(t, 2*time.Second, mr.TTL("k"))

	ok, err = store.CompareAndExpire(ctx, "k", "token-a", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 5*time.Second, mr.TTL("k"))

	ok, err = store.CompareAndDelete(ctx, "k", "token-b")
	require.NoError(t, err)
	assert.False(t, ok, "mismatched token must not delete")
	assert.True(t, mr.Exists("k"))

	ok, err = store.CompareAndDelete(ctx, "k", "token-a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, mr.Exists("k"))

	ok, err = store.CompareAndDelete(ctx, "k", "token-a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreExpiry(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewRedisStore(client, VariantRedLock)
	ctx := context.Background()

	ok, err := store.SetIfAbsent(ctx, "k", "token-a", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(time.Second)

	ok, err = store.CompareAndExpire(ctx, "k", "token-a", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.SetIfAbsent(ctx, "k", "token-b", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisStoreTransportError(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewRedisStore(client, VariantRedLock)
	mr.Close()

	_, err := store.SetIfAbsent(context.Background(), "k", "v", time.Second)
	assert.Error(t, err)
	_, err = store.CompareAndDelete(context.Background(), "k", "v")
	assert.Error(t, err)
}
