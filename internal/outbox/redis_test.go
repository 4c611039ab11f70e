package outbox

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client)
}

func TestRedisStoreQueueOrder(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Enqueue(ctx, productEntry(t, "e1", "p1")))
	require.NoError(t, store.Enqueue(ctx, productEntry(t, "e2", "p2")))
	require.NoError(t, store.Enqueue(ctx, productEntry(t, "e3", "p3")))

	pending, err := store.ListPending(ctx, 2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, "e1", pending[0].ID)
	require.Equal(t, "e2", pending[1].ID)

	// Re-enqueueing an existing id updates the body without duplicating it.
	require.NoError(t, store.Enqueue(ctx, productEntry(t, "e1", "p1")))
	pending, err = store.ListPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 3)
}

func TestRedisStoreAckAndPark(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Enqueue(ctx, productEntry(t, "e1", "p1")))
	require.NoError(t, store.Enqueue(ctx, productEntry(t, "e2", "p2")))

	require.NoError(t, store.Ack(ctx, "e1"))
	require.ErrorIs(t, store.Ack(ctx, "e1"), ErrEntryNotFound)

	require.NoError(t, store.Park(ctx, "e2", "rejected by server"))
	pending, err := store.ListPending(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, pending)

	parked, err := store.ListParked(ctx)
	require.NoError(t, err)
	require.Len(t, parked, 1)
	require.Equal(t, StatusParked, parked[0].Status)
	require.Equal(t, "rejected by server", parked[0].LastError)
}

func TestRedisStoreMarkAttempt(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Enqueue(ctx, productEntry(t, "e1", "p1")))
	require.NoError(t, store.MarkAttempt(ctx, "e1", "timeout"))
	require.NoError(t, store.MarkAttempt(ctx, "e1", "timeout"))

	pending, err := store.ListPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, 2, pending[0].Attempts)
	require.Equal(t, "timeout", pending[0].LastError)
}
