package outbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/botica-pos/botica/internal/syncer"
)

func TestMemoryStoreAckReleasesEntry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Enqueue(ctx, productEntry(t, "e1", "p1")))
	require.NoError(t, store.Enqueue(ctx, productEntry(t, "e2", "p2")))

	require.NoError(t, store.Ack(ctx, "e1"))

	pending, err := store.ListPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "e2", pending[0].ID)

	// The id slot is gone too: thousands of ack cycles on a long-lived
	// terminal must not accumulate tombstones.
	require.Len(t, store.order, 1)

	require.ErrorIs(t, store.Ack(ctx, "e1"), ErrEntryNotFound)
}

func TestMemoryStoreReEnqueueAfterAck(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Enqueue(ctx, productEntry(t, "e1", "p1")))
	require.NoError(t, store.Ack(ctx, "e1"))
	require.NoError(t, store.Enqueue(ctx, productEntry(t, "e1", "p1")))

	pending, err := store.ListPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, syncer.TypeProducts, pending[0].EntityType)
	require.Len(t, store.order, 1)
}
