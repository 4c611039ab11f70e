package inventory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/botica-pos/botica/internal/catalog"
	"github.com/botica-pos/botica/internal/shared"
)

// memoryRepo serializes transactions with one mutex, standing in for the
// row lock the postgres repository takes on the product.
type memoryRepo struct {
	mu        sync.Mutex
	products  map[string]catalog.Product
	batches   map[string]catalog.ProductBatch
	movements map[string]Movement
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		products:  make(map[string]catalog.Product),
		batches:   make(map[string]catalog.ProductBatch),
		movements: make(map[string]Movement),
	}
}

type memoryTx struct {
	repo *memoryRepo

	// staged state, committed only when the callback succeeds
	products  map[string]catalog.Product
	batches   map[string]catalog.ProductBatch
	movements map[string]Movement
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx := &memoryTx{
		repo:      r,
		products:  make(map[string]catalog.Product),
		batches:   make(map[string]catalog.ProductBatch),
		movements: make(map[string]Movement),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for id, p := range tx.products {
		r.products[id] = p
	}
	for id, b := range tx.batches {
		r.batches[id] = b
	}
	for id, m := range tx.movements {
		r.movements[id] = m
	}
	return nil
}

func (tx *memoryTx) MovementExists(ctx context.Context, id string) (bool, error) {
	_, ok := tx.repo.movements[id]
	return ok, nil
}

func (tx *memoryTx) GetProductForUpdate(ctx context.Context, productID string) (catalog.Product, error) {
	if p, ok := tx.repo.products[productID]; ok {
		return p, nil
	}
	return catalog.Product{}, shared.ErrNotFound
}

func (tx *memoryTx) ListBatchesForUpdate(ctx context.Context, productID string) ([]catalog.ProductBatch, error) {
	var out []catalog.ProductBatch
	for _, b := range tx.repo.batches {
		if b.ProductID == productID && b.Quantity > 0 {
			out = append(out, b)
		}
	}
	return out, nil
}

func (tx *memoryTx) DecrementBatch(ctx context.Context, batchID string, qty int64) error {
	b := tx.repo.batches[batchID]
	b.Quantity -= qty
	tx.batches[batchID] = b
	return nil
}

func (tx *memoryTx) UpdateProductStock(ctx context.Context, productID string, stock int64, at time.Time) error {
	p := tx.repo.products[productID]
	p.Stock = stock
	p.UpdatedAt = at
	tx.products[productID] = p
	return nil
}

func (tx *memoryTx) InsertMovement(ctx context.Context, m Movement) error {
	tx.movements[m.ID] = m
	return nil
}

func seedProduct(repo *memoryRepo, id string, stock int64) {
	repo.products[id] = catalog.Product{ID: id, Name: "Paracetamol 500mg", Stock: stock, MinStock: 5}
}

func TestApplyMovementDecrementsStock(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, "p1", 10)
	svc := NewService(repo, nil, nil)

	applied, err := svc.ApplyMovement(context.Background(), Movement{
		ID: "m1", ProductID: "p1", Type: MovementSale, QuantityChange: -4, UserID: "u1",
	})
	require.NoError(t, err)
	require.Equal(t, int64(6), applied.NewStock)
	require.Equal(t, int64(6), repo.products["p1"].Stock)
	require.Len(t, repo.movements, 1)
}

func TestApplyMovementRejectsNegativeStockAtomically(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, "p1", 3)
	svc := NewService(repo, nil, nil)

	_, err := svc.ApplyMovement(context.Background(), Movement{
		ID: "m1", ProductID: "p1", Type: MovementSale, QuantityChange: -5, UserID: "u1",
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	var detail *InsufficientStockError
	require.ErrorAs(t, err, &detail)
	require.Equal(t, int64(3), detail.Available)
	require.Equal(t, int64(5), detail.Requested)

	// Nothing committed: stock untouched, no movement row.
	require.Equal(t, int64(3), repo.products["p1"].Stock)
	require.Empty(t, repo.movements)
}

func TestApplyMovementDuplicateIDIsNoOp(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, "p1", 10)
	svc := NewService(repo, nil, nil)

	m := Movement{ID: "m1", ProductID: "p1", Type: MovementSale, QuantityChange: -4, UserID: "u1"}
	_, err := svc.ApplyMovement(context.Background(), m)
	require.NoError(t, err)

	applied, err := svc.ApplyMovement(context.Background(), m)
	require.NoError(t, err)
	require.True(t, applied.Duplicate)
	require.Equal(t, int64(6), repo.products["p1"].Stock)
	require.Len(t, repo.movements, 1)
}

func TestApplyMovementSaleConsumesBatchesFEFO(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, "p1", 15)
	recv := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
	repo.batches["b1"] = batch("b1", "LOT-A", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), recv, 5)
	repo.batches["b2"] = batch("b2", "LOT-B", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), recv, 10)
	svc := NewService(repo, nil, nil)

	applied, err := svc.ApplyMovement(context.Background(), Movement{
		ID: "m1", ProductID: "p1", Type: MovementSale, QuantityChange: -8, UserID: "u1",
	})
	require.NoError(t, err)
	require.Equal(t, []BatchAllocation{
		{BatchID: "b1", LotNumber: "LOT-A", Quantity: 5},
		{BatchID: "b2", LotNumber: "LOT-B", Quantity: 3},
	}, applied.Allocations)
	require.Equal(t, int64(0), repo.batches["b1"].Quantity)
	require.Equal(t, int64(7), repo.batches["b2"].Quantity)
	require.Equal(t, int64(7), repo.products["p1"].Stock)
}

func TestApplyMovementBatchShortfallRollsBack(t *testing.T) {
	repo := newMemoryRepo()
	// Denormalised stock says 20 but batches only cover 15: the batch plan
	// is the stricter check and must win.
	seedProduct(repo, "p1", 20)
	recv := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
	repo.batches["b1"] = batch("b1", "LOT-A", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), recv, 5)
	repo.batches["b2"] = batch("b2", "LOT-B", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), recv, 10)
	svc := NewService(repo, nil, nil)

	_, err := svc.ApplyMovement(context.Background(), Movement{
		ID: "m1", ProductID: "p1", Type: MovementSale, QuantityChange: -18, UserID: "u1",
	})
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Equal(t, int64(5), repo.batches["b1"].Quantity)
	require.Equal(t, int64(10), repo.batches["b2"].Quantity)
	require.Equal(t, int64(20), repo.products["p1"].Stock)
	require.Empty(t, repo.movements)
}

func TestConcurrentDecrementsOnlyOneSucceeds(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, "p1", 8)
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	// Two terminals push the same decrement at once. The repo lock plays the
	// product row lock, so whichever transaction lands second sees stock 3
	// and must be rejected.
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, id := range []string{"m1", "m2"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := svc.ApplyMovement(ctx, Movement{ID: id, ProductID: "p1", Type: MovementSale, QuantityChange: -5, UserID: "u-" + id})
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)

	var rejected int
	for err := range errs {
		if err != nil {
			require.ErrorIs(t, err, ErrInsufficientStock)
			rejected++
		}
	}
	require.Equal(t, 1, rejected)
	require.Equal(t, int64(3), repo.products["p1"].Stock)
	require.Len(t, repo.movements, 1)
}

func TestApplyMovementUnknownProduct(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	_, err := svc.ApplyMovement(context.Background(), Movement{
		ID: "m1", ProductID: "ghost", Type: MovementSale, QuantityChange: -1,
	})
	require.ErrorIs(t, err, ErrUnknownProduct)
}

func TestApplyMovementPurchaseIncreasesStock(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, "p1", 2)
	svc := NewService(repo, nil, nil)

	applied, err := svc.ApplyMovement(context.Background(), Movement{
		ID: "m1", ProductID: "p1", Type: MovementPurchase, QuantityChange: 12, UserID: "u1",
	})
	require.NoError(t, err)
	require.Equal(t, int64(14), applied.NewStock)
	require.Empty(t, applied.Allocations)
}
