package inventory

import (
	"fmt"
	"sort"

	"github.com/botica-pos/botica/internal/catalog"
)

// BatchAllocation names one lot and the quantity taken from it.
type BatchAllocation struct {
	BatchID   string
	LotNumber string
	Quantity  int64
}

// PlanAllocation decides which batches satisfy a requested quantity,
// first-expired-first-out. Ties on expiration are broken by received date,
// then id, so replaying the same inputs always yields the same plan.
//
// The plan is computed before anything is mutated: a shortfall fails the
// whole allocation and no batch is touched.
func PlanAllocation(productID, productName string, batches []catalog.ProductBatch, requested int64) ([]BatchAllocation, error) {
	if requested <= 0 {
		return nil, fmt.Errorf("inventory: requested quantity must be positive, got %d", requested)
	}

	available := make([]catalog.ProductBatch, 0, len(batches))
	var total int64
	for _, b := range batches {
		if b.Quantity <= 0 {
			continue
		}
		available = append(available, b)
		total += b.Quantity
	}
	if total < requested {
		return nil, &InsufficientStockError{
			ProductID:   productID,
			ProductName: productName,
			Available:   total,
			Requested:   requested,
		}
	}

	sort.Slice(available, func(i, j int) bool {
		a, b := available[i], available[j]
		if !a.ExpirationDate.Equal(b.ExpirationDate) {
			return a.ExpirationDate.Before(b.ExpirationDate)
		}
		if !a.ReceivedDate.Equal(b.ReceivedDate) {
			return a.ReceivedDate.Before(b.ReceivedDate)
		}
		return a.ID < b.ID
	})

	plan := make([]BatchAllocation, 0, 2)
	remaining := requested
	for _, b := range available {
		take := b.Quantity
		if take > remaining {
			take = remaining
		}
		plan = append(plan, BatchAllocation{BatchID: b.ID, LotNumber: b.LotNumber, Quantity: take})
		remaining -= take
		if remaining == 0 {
			break
		}
	}
	return plan, nil
}
