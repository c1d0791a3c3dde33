package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const itemLock = "confirm:proj-1:item-1"

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return mr, client
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()).Err())
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), "not-a-url")
	assert.Error(t, err)
}

func TestNewLock(t *testing.T) {
	_, client := setupTestRedis(t)

	lock := NewLock(client)
	require.NotNil(t, lock)
	assert.NotEmpty(t, lock.ownerID)
	assert.Equal(t, DefaultLockPrefix, lock.prefix)
}

func TestLock_OwnerID_Unique(t *testing.T) {
	_, client := setupTestRedis(t)

	assert.NotEqual(t, NewLock(client).OwnerID(), NewLock(client).OwnerID())
}

func TestLock_Acquire_KeyUsesPrefix(t *testing.T) {
	mr, client := setupTestRedis(t)

	lock := NewLockWithPrefix(client, "test:")
	acquired, err := lock.Acquire(context.Background(), itemLock, 10*time.Second)
	require.NoError(t, err)
	require.True(t, acquired)

	owner, err := mr.Get("test:" + itemLock)
	require.NoError(t, err)
	assert.Equal(t, lock.OwnerID(), owner)
}

func TestLock_Acquire_AlreadyHeld(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	lock1 := NewLock(client)
	lock2 := NewLock(client)

	acquired, err := lock1.Acquire(ctx, itemLock, 10*time.Second)
	require.NoError(t, err)
	assert.True(t, acquired)

	// A concurrent confirm of the same item from another instance loses
	acquired, err = lock2.Acquire(ctx, itemLock, 10*time.Second)
	require.NoError(t, err)
	assert.False(t, acquired)

	// Same instance is not reentrant either
	acquired, err = lock1.Acquire(ctx, itemLock, 10*time.Second)
	require.NoError(t, err)
	assert.False(t, acquired)
}

func TestLock_Acquire_DifferentItems(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()
	lock := NewLock(client)

	for _, name := range []string{"confirm:proj-1:a", "confirm:proj-1:b", "confirm:proj-2:a"} {
		acquired, err := lock.Acquire(ctx, name, 10*time.Second)
		require.NoError(t, err)
		assert.True(t, acquired, name)
	}
}

func TestLock_Acquire_AfterExpiry(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	lock1 := NewLock(client)
	lock2 := NewLock(client)

	acquired, err := lock1.Acquire(ctx, itemLock, time.Second)
	require.NoError(t, err)
	require.True(t, acquired)

	mr.FastForward(2 * time.Second)

	acquired, err = lock2.Acquire(ctx, itemLock, time.Second)
	require.NoError(t, err)
	assert.True(t, acquired, "expired lock should be claimable")
}

func TestLock_Release(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()
	lock := NewLock(client)

	acquired, err := lock.Acquire(ctx, itemLock, 10*time.Second)
	require.NoError(t, err)
	require.True(t, acquired)

	require.NoError(t, lock.Release(ctx, itemLock))

	acquired, err = lock.Acquire(ctx, itemLock, 10*time.Second)
	require.NoError(t, err)
	assert.True(t, acquired, "expected to acquire lock after release")
}

func TestLock_Release_NotHeld(t *testing.T) {
	_, client := setupTestRedis(t)

	assert.NoError(t, NewLock(client).Release(context.Background(), itemLock))
}

func TestLock_Release_ByDifferentOwner(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	lock1 := NewLock(client)
	lock2 := NewLock(client)

	acquired, err := lock1.Acquire(ctx, itemLock, 10*time.Second)
	require.NoError(t, err)
	require.True(t, acquired)

	require.NoError(t, lock2.Release(ctx, itemLock))

	holder, err := lock1.Holder(ctx, itemLock)
	require.NoError(t, err)
	assert.Equal(t, lock1.OwnerID(), holder, "foreign release must not free the lock")
}

func TestLock_Extend(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	lock1 := NewLock(client)
	lock2 := NewLock(client)

	acquired, err := lock1.Acquire(ctx, itemLock, time.Second)
	require.NoError(t, err)
	require.True(t, acquired)

	require.NoError(t, lock1.Extend(ctx, itemLock, 10*time.Second))
	assert.Error(t, lock2.Extend(ctx, itemLock, 20*time.Second))

	mr.FastForward(2 * time.Second)
	holder, err := lock1.Holder(ctx, itemLock)
	require.NoError(t, err)
	assert.Equal(t, lock1.OwnerID(), holder, "extended lock should survive the original TTL")
}

func TestLock_Extend_NotHeld(t *testing.T) {
	_, client := setupTestRedis(t)

	assert.Error(t, NewLock(client).Extend(context.Background(), itemLock, 10*time.Second))
}

func TestLock_Holder_Free(t *testing.T) {
	_, client := setupTestRedis(t)

	holder, err := NewLock(client).Holder(context.Background(), itemLock)
	require.NoError(t, err)
	assert.Empty(t, holder)
}

func TestLock_Ping(t *testing.T) {
	mr, client := setupTestRedis(t)
	lock := NewLock(client)

	assert.NoError(t, lock.Ping(context.Background()))

	mr.Close()
	assert.Error(t, lock.Ping(context.Background()))
}
