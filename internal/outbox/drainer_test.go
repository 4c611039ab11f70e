package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/botica-pos/botica/internal/syncer"
)

type fakePusher struct {
	resp     syncer.PushResponse
	err      error
	requests []syncer.PushRequest
}

func (p *fakePusher) Push(_ context.Context, req syncer.PushRequest) (syncer.PushResponse, error) {
	p.requests = append(p.requests, req)
	if p.err != nil {
		return syncer.PushResponse{}, p.err
	}
	return p.resp, nil
}

func productEntry(t *testing.T, entryID, productID string) Entry {
	t.Helper()
	payload, err := json.Marshal(syncer.ProductDTO{
		ID: productID, Name: "Paracetamol", Price: 2.5, Stock: 10,
		UpdatedAt: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return Entry{
		ID:         entryID,
		EntityType: syncer.TypeProducts,
		EntityID:   productID,
		Payload:    payload,
		EnqueuedAt: time.Now(),
	}
}

func movementEntry(t *testing.T, entryID, movementID string, change int64) Entry {
	t.Helper()
	payload, err := json.Marshal(syncer.StockMovementDTO{
		ID: movementID, ProductID: "p1", Type: "SALE", QuantityChange: change,
		CreatedAt: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return Entry{
		ID:         entryID,
		EntityType: syncer.TypeStockMovements,
		EntityID:   movementID,
		Payload:    payload,
		EnqueuedAt: time.Now(),
	}
}

func TestDrainAcksSyncedEntries(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Enqueue(ctx, productEntry(t, "e1", "p1")))
	require.NoError(t, store.Enqueue(ctx, movementEntry(t, "e2", "m1", -2)))

	pusher := &fakePusher{resp: syncer.PushResponse{
		Success: true,
		Synced: map[string][]string{
			syncer.TypeProducts:       {"p1"},
			syncer.TypeStockMovements: {"m1"},
		},
	}}
	d := NewDrainer(store, pusher, nil, DrainerConfig{})

	acked, err := d.DrainOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, acked)

	pending, err := store.ListPending(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, pending)

	// Both entity arrays travelled in one request.
	require.Len(t, pusher.requests, 1)
	require.Len(t, pusher.requests[0].Products, 1)
	require.Len(t, pusher.requests[0].StockMovements, 1)
}

func TestDrainParksRejectedEntries(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Enqueue(ctx, movementEntry(t, "e1", "m1", -50)))
	require.NoError(t, store.Enqueue(ctx, productEntry(t, "e2", "p1")))

	pusher := &fakePusher{resp: syncer.PushResponse{
		Success: true,
		Synced:  map[string][]string{syncer.TypeProducts: {"p1"}},
		Errors:  []string{"stockMovements m1: insufficient stock for Insulin (p1): available 3, requested 50"},
	}}
	d := NewDrainer(store, pusher, nil, DrainerConfig{})

	acked, err := d.DrainOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, acked)

	pending, err := store.ListPending(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, pending)

	parked, err := store.ListParked(ctx)
	require.NoError(t, err)
	require.Len(t, parked, 1)
	require.Equal(t, "e1", parked[0].ID)
	require.Contains(t, parked[0].LastError, "insufficient stock")
}

func TestDrainRetriesMissingReferenceRejection(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	payload, err := json.Marshal(syncer.SaleItemDTO{
		ID: "si1", SaleID: "s1", ProductID: "p1", Quantity: 2, UnitPrice: 2.5,
		ModifiedAt: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, store.Enqueue(ctx, Entry{
		ID:         "e1",
		EntityType: syncer.TypeSaleItems,
		EntityID:   "si1",
		Payload:    payload,
		EnqueuedAt: time.Now(),
	}))

	// The parent sale is still queued on another device. The item must stay
	// pending so a later drain can land it, not require an operator.
	pusher := &fakePusher{resp: syncer.PushResponse{
		Success: true,
		Errors:  []string{"saleItems si1: missing referenced entity: sale s1"},
	}}
	d := NewDrainer(store, pusher, nil, DrainerConfig{})

	acked, err := d.DrainOnce(ctx)
	require.NoError(t, err)
	require.Zero(t, acked)

	parked, err := store.ListParked(ctx)
	require.NoError(t, err)
	require.Empty(t, parked)

	pending, err := store.ListPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, 1, pending[0].Attempts)
	require.Contains(t, pending[0].LastError, "missing referenced entity")
}

func TestDrainTransientFailureKeepsEntriesPending(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Enqueue(ctx, productEntry(t, "e1", "p1")))

	pusher := &fakePusher{err: errors.New("connection refused")}
	d := NewDrainer(store, pusher, nil, DrainerConfig{})

	_, err := d.DrainOnce(ctx)
	require.Error(t, err)

	pending, err := store.ListPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, 1, pending[0].Attempts)
	require.Contains(t, pending[0].LastError, "connection refused")
}

func TestDrainParksUndecodablePayload(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Enqueue(ctx, Entry{
		ID:         "e1",
		EntityType: syncer.TypeProducts,
		EntityID:   "p1",
		Payload:    []byte(`{broken`),
	}))

	pusher := &fakePusher{resp: syncer.PushResponse{Success: true}}
	d := NewDrainer(store, pusher, nil, DrainerConfig{})

	acked, err := d.DrainOnce(ctx)
	require.NoError(t, err)
	require.Zero(t, acked)
	// Nothing valid remained, so no request was sent.
	require.Empty(t, pusher.requests)

	parked, err := store.ListParked(ctx)
	require.NoError(t, err)
	require.Len(t, parked, 1)
}

func TestDrainEmptyQueue(t *testing.T) {
	d := NewDrainer(NewMemoryStore(), &fakePusher{}, nil, DrainerConfig{})
	acked, err := d.DrainOnce(context.Background())
	require.NoError(t, err)
	require.Zero(t, acked)
}
