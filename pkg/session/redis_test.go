package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "approuter", 300*time.Second), mr
}

func TestLoadAbsentSession(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)

	sess, err := store.Load(context.Background(), "+27831234567")
	require.NoError(t, err)
	assert.Nil(t, sess, "absent session should load as nil")
}

func TestCreateAndLoad(t *testing.T) {
	t.Parallel()
	store, mr := newTestStore(t)
	ctx := context.Background()

	err := store.Create(ctx, "u1", &Session{State: StateStart})
	require.NoError(t, err)

	sess, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, StateStart, sess.State)
	assert.False(t, sess.CreatedAt.IsZero(), "store should stamp created_at")

	// Keys are namespaced by the worker prefix.
	assert.True(t, mr.Exists("approuter:u1"))
	ttl := mr.TTL("approuter:u1")
	assert.Equal(t, 300*time.Second, ttl)
}

func TestSaveRefreshesTTL(t *testing.T) {
	t.Parallel()
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, "u1", &Session{State: StateStart}))
	mr.FastForward(200 * time.Second)

	require.NoError(t, store.Save(ctx, "u1", &Session{
		State:     StateSelect,
		Endpoints: []string{"flappy-bird"},
	}))
	assert.Equal(t, 300*time.Second, mr.TTL("approuter:u1"))
}

func TestSaveDropsRemovedFields(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "u1", &Session{
		State:          StateSelected,
		Endpoints:      []string{"flappy-bird"},
		ActiveEndpoint: "flappy-bird",
	}))
	require.NoError(t, store.Save(ctx, "u1", &Session{
		State:     StateSelect,
		Endpoints: []string{"flappy-bird"},
	}))

	sess, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, sess.ActiveEndpoint, "stale active_endpoint must not survive a save")
}

func TestSessionExpires(t *testing.T) {
	t.Parallel()
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, "u1", &Session{State: StateSelect, Endpoints: []string{"x"}}))
	mr.FastForward(301 * time.Second)

	sess, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, sess, "expired session should load as nil")
}

func TestClear(t *testing.T) {
	t.Parallel()
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, "u1", &Session{State: StateStart}))
	require.NoError(t, store.Clear(ctx, "u1"))
	assert.False(t, mr.Exists("approuter:u1"))

	// Clearing an absent session is not an error.
	require.NoError(t, store.Clear(ctx, "u1"))
}
