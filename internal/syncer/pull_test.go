package syncer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/botica-pos/botica/internal/catalog"
	"github.com/botica-pos/botica/internal/inventory"
	"github.com/botica-pos/botica/internal/procurement"
	"github.com/botica-pos/botica/internal/sales"
	"github.com/botica-pos/botica/internal/shared"
)

func seedPullStore(store *memStore) {
	store.products["p1"] = catalog.Product{ID: "p1", Name: "Paracetamol", Price: 2.5, PriceBuy: 1.1, Stock: 40, UpdatedAt: ts(1)}
	store.batches["b1"] = catalog.ProductBatch{ID: "b1", ProductID: "p1", LotNumber: "L1", ExpirationDate: ts(50), Quantity: 40, InitialQty: 40, UpdatedAt: ts(1)}
	store.sales["s1"] = sales.Sale{ID: "s1", Total: 5, PaymentMethod: sales.PaymentCash, PaymentStatus: sales.StatusPaid, AmountPaid: 5, ModifiedAt: ts(2)}
	store.saleItems["si1"] = sales.SaleItem{ID: "si1", SaleID: "s1", ProductID: "p1", Quantity: 2, UnitPrice: 2.5, Subtotal: 5, ModifiedAt: ts(2)}
	store.movements["m1"] = inventory.Movement{ID: "m1", ProductID: "p1", Type: inventory.MovementSale, QuantityChange: -2, CreatedAt: ts(2)}
	store.expenses["e1"] = sales.Expense{ID: "e1", Amount: 12, Category: "utilities", ModifiedAt: ts(3)}
	store.suppliers["sup1"] = procurement.Supplier{ID: "sup1", Name: "PharmaDist", ModifiedAt: ts(1)}
	store.orders["o1"] = procurement.SupplierOrder{ID: "o1", SupplierID: "sup1", Status: procurement.OrderPlaced, Total: 100, ModifiedAt: ts(4)}
}

func TestPullFirstSyncReturnsEverything(t *testing.T) {
	svc, store, _ := newTestService(t)
	seedPullStore(store)

	resp, err := svc.Pull(context.Background(), manager(), nil)
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, store.clock, resp.ServerTime)

	require.Len(t, resp.Data.Products, 1)
	require.Len(t, resp.Data.Sales, 1)
	require.Len(t, resp.Data.StockMovements, 1)
	require.Len(t, resp.Data.Expenses, 1)
	require.Len(t, resp.Data.Suppliers, 1)
	require.Len(t, resp.Data.SupplierOrders, 1)

	// Sales arrive hydrated with their items.
	require.Len(t, resp.Data.Sales[0].Items, 1)
	require.Equal(t, "si1", resp.Data.Sales[0].Items[0].ID)

	// Managers see purchase costs.
	require.InDelta(t, 1.1, resp.Data.Products[0].PriceBuy, 0.001)
}

func TestPullWatermarkFilters(t *testing.T) {
	svc, store, _ := newTestService(t)
	seedPullStore(store)

	since := ts(2)
	resp, err := svc.Pull(context.Background(), manager(), &since)
	require.NoError(t, err)

	// Strictly-after semantics: rows stamped exactly at the watermark were
	// already delivered by the pull that produced it.
	require.Empty(t, resp.Data.Products)
	require.Empty(t, resp.Data.Sales)
	require.Len(t, resp.Data.Expenses, 1)
	require.Len(t, resp.Data.SupplierOrders, 1)
}

func TestPullCashierRedaction(t *testing.T) {
	svc, store, _ := newTestService(t)
	seedPullStore(store)

	cashier := shared.Identity{UserID: "u-cashier", Role: shared.RoleCashier}
	resp, err := svc.Pull(context.Background(), cashier, nil)
	require.NoError(t, err)

	require.Empty(t, resp.Data.Suppliers)
	require.Empty(t, resp.Data.SupplierOrders)
	require.Empty(t, resp.Data.SupplierReturns)
	require.Empty(t, resp.Data.ProductSuppliers)
	require.Empty(t, resp.Data.Expenses)

	// Catalog still flows, with the purchase cost blanked.
	require.Len(t, resp.Data.Products, 1)
	require.Zero(t, resp.Data.Products[0].PriceBuy)
	require.Len(t, resp.Data.ProductBatches, 1)
}

func TestPullServerTimeIsWatermarkSafe(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.clock = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	resp, err := svc.Pull(context.Background(), manager(), nil)
	require.NoError(t, err)
	// The returned watermark is the server clock, never the client's.
	require.Equal(t, store.clock, resp.ServerTime)
}
