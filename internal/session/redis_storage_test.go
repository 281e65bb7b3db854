package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStorage(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(ctx, "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	storage := NewRedisStorage(client, time.Hour)

	_, err = storage.Get(ctx, "currentUser")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, storage.Set(ctx, "currentUser", `{"id":1,"token":"t"}`))
	assert.True(t, mr.Exists("agora:session:currentUser"))
	assert.Equal(t, time.Hour, mr.TTL("agora:session:currentUser"))

	got, err := storage.Get(ctx, "currentUser")
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"token":"t"}`, got)

	mr.FastForward(2 * time.Hour)
	_, err = storage.Get(ctx, "currentUser")
	assert.ErrorIs(t, err, ErrNotFound, "entry expires with the session lifetime")

	require.NoError(t, storage.Set(ctx, "currentUser", "x"))
	require.NoError(t, storage.Remove(ctx, "currentUser"))
	assert.False(t, mr.Exists("agora:session:currentUser"))
}

func TestRedisStorage_BacksStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(ctx, mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store := NewStore(ctx, NewRedisStorage(client, 0))
	require.NoError(t, store.SetIdentity(ctx, alice()))

	assert.True(t, NewStore(ctx, NewRedisStorage(client, 0)).IsLoggedIn(ctx))
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisClient(context.Background(), addr)
	assert.Error(t, err)
}

func TestNewRedisClient_InvalidURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "redis://:bad:url")
	assert.Error(t, err)
}
