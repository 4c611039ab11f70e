package syncer

import (
	"context"
	"time"

	"github.com/botica-pos/botica/internal/catalog"
	"github.com/botica-pos/botica/internal/inventory"
	"github.com/botica-pos/botica/internal/procurement"
	"github.com/botica-pos/botica/internal/sales"
)

// UpsertOutcome tells the synchronizer whether an entity landed or lost the
// last-write-wins comparison. A stale entity is still reported as synced;
// the server copy simply survived.
type UpsertOutcome int

const (
	// OutcomeApplied means the row was inserted or updated.
	OutcomeApplied UpsertOutcome = iota
	// OutcomeStale means the stored modification timestamp was newer or
	// equal, so the server version won unmodified.
	OutcomeStale
)

// Store is the persistence surface of the push and pull synchronizers.
// Every Upsert applies whole-entity last-write-wins on the modification
// timestamp: strictly newer incoming rows replace, everything else is
// reported OutcomeStale.
type Store interface {
	// Existence probes used for referential-integrity checks.
	SaleExists(ctx context.Context, id string) (bool, error)
	ProductExists(ctx context.Context, id string) (bool, error)
	SupplierExists(ctx context.Context, id string) (bool, error)
	SupplierOrderExists(ctx context.Context, id string) (bool, error)

	UpsertSale(ctx context.Context, s sales.Sale) (UpsertOutcome, error)
	UpsertSaleItem(ctx context.Context, i sales.SaleItem) (UpsertOutcome, error)
	UpsertExpense(ctx context.Context, e sales.Expense) (UpsertOutcome, error)
	UpsertProduct(ctx context.Context, p catalog.Product) (UpsertOutcome, error)
	UpsertProductBatch(ctx context.Context, b catalog.ProductBatch) (UpsertOutcome, error)
	UpsertSupplier(ctx context.Context, s procurement.Supplier) (UpsertOutcome, error)
	UpsertSupplierOrder(ctx context.Context, o procurement.SupplierOrder) (UpsertOutcome, error)
	UpsertSupplierOrderItem(ctx context.Context, i procurement.SupplierOrderItem) (UpsertOutcome, error)
	UpsertSupplierReturn(ctx context.Context, r procurement.SupplierReturn) (UpsertOutcome, error)
	UpsertProductSupplier(ctx context.Context, p procurement.ProductSupplier) (UpsertOutcome, error)
	UpsertCreditPayment(ctx context.Context, p sales.CreditPayment) (UpsertOutcome, error)
	UpsertStockoutReport(ctx context.Context, r catalog.StockoutReport) (UpsertOutcome, error)
	UpsertSalePrescription(ctx context.Context, p sales.SalePrescription) (UpsertOutcome, error)

	// Pull queries. A nil since means first sync: everything.
	ListSalesSince(ctx context.Context, since *time.Time) ([]sales.Sale, error)
	ListSaleItemsForSales(ctx context.Context, saleIDs []string) ([]sales.SaleItem, error)
	ListExpensesSince(ctx context.Context, since *time.Time) ([]sales.Expense, error)
	ListMovementsSince(ctx context.Context, since *time.Time) ([]inventory.Movement, error)
	ListProductsSince(ctx context.Context, since *time.Time) ([]catalog.Product, error)
	ListProductBatchesSince(ctx context.Context, since *time.Time) ([]catalog.ProductBatch, error)
	ListSuppliersSince(ctx context.Context, since *time.Time) ([]procurement.Supplier, error)
	ListSupplierOrdersSince(ctx context.Context, since *time.Time) ([]procurement.SupplierOrder, error)
	ListSupplierOrderItemsSince(ctx context.Context, since *time.Time) ([]procurement.SupplierOrderItem, error)
	ListSupplierReturnsSince(ctx context.Context, since *time.Time) ([]procurement.SupplierReturn, error)
	ListProductSuppliersSince(ctx context.Context, since *time.Time) ([]procurement.ProductSupplier, error)
	ListCreditPaymentsSince(ctx context.Context, since *time.Time) ([]sales.CreditPayment, error)
	ListStockoutReportsSince(ctx context.Context, since *time.Time) ([]catalog.StockoutReport, error)
	ListSalePrescriptionsSince(ctx context.Context, since *time.Time) ([]sales.SalePrescription, error)

	// Point reads for the divergence audit.
	GetProduct(ctx context.Context, id string) (catalog.Product, error)
	GetSale(ctx context.Context, id string) (sales.Sale, error)
	GetMovement(ctx context.Context, id string) (inventory.Movement, error)
	GetExpense(ctx context.Context, id string) (sales.Expense, error)

	// ServerTime is the authoritative clock used as the pull watermark.
	ServerTime(ctx context.Context) (time.Time, error)
}
