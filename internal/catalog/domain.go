package catalog

import (
	"errors"
	"fmt"
	"time"
)

// Product is the denormalised stock view of one sellable item. Stock equals
// the sum of remaining batch quantities whenever batch tracking is active.
type Product struct {
	ID         string
	Name       string
	Price      float64
	PriceBuy   float64
	Stock      int64
	MinStock   int64
	UpdatedAt  time.Time
	ModifiedBy string
}

// BelowMinStock reports whether the product needs reordering.
func (p Product) BelowMinStock() bool {
	return p.Stock < p.MinStock
}

// ProductBatch is one physical lot of a product. ExpirationDate ascending
// defines the consumption order for sales.
type ProductBatch struct {
	ID             string
	ProductID      string
	LotNumber      string
	ExpirationDate time.Time
	Quantity       int64
	InitialQty     int64
	ReceivedDate   time.Time
	UpdatedAt      time.Time
}

// StockoutReport records an operator-flagged shortage for later procurement.
type StockoutReport struct {
	ID         string
	ProductID  string
	Quantity   int64
	Note       string
	ReportedAt time.Time
	ModifiedAt time.Time
	ModifiedBy string
}

// ErrBatchQuantityRange indicates a batch whose remaining quantity falls
// outside 0..initialQty.
var ErrBatchQuantityRange = errors.New("catalog: batch quantity out of range")

// Validate enforces the batch invariants before persistence.
func (b ProductBatch) Validate() error {
	if b.ID == "" || b.ProductID == "" {
		return errors.New("catalog: batch id and product id required")
	}
	if b.Quantity < 0 || b.Quantity > b.InitialQty {
		return fmt.Errorf("%w: %d of %d (batch %s)", ErrBatchQuantityRange, b.Quantity, b.InitialQty, b.ID)
	}
	return nil
}
