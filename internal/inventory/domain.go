package inventory

import (
	"errors"
	"fmt"
	"time"
)

// MovementType enumerates supported stock movements.
type MovementType string

const (
	// MovementSale decrements stock when a sale completes.
	MovementSale MovementType = "SALE"
	// MovementPurchase adds received supplier stock.
	MovementPurchase MovementType = "PURCHASE"
	// MovementAdjustment corrects stock in either direction.
	MovementAdjustment MovementType = "ADJUSTMENT"
	// MovementCustomerReturn restocks a returned sale.
	MovementCustomerReturn MovementType = "CUSTOMER_RETURN"
	// MovementSupplierReturn removes stock sent back to a supplier.
	MovementSupplierReturn MovementType = "SUPPLIER_RETURN"
)

// Movement is an immutable audit record of one stock change. Movements are
// append-only; the same id resent by a retrying client is a no-op.
type Movement struct {
	ID             string
	ProductID      string
	Type           MovementType
	QuantityChange int64
	Reason         string
	CreatedAt      time.Time
	UserID         string
	IdempotencyKey string
}

// Applied reports the outcome of a committed movement.
type Applied struct {
	MovementID  string
	ProductID   string
	NewStock    int64
	Allocations []BatchAllocation
	Duplicate   bool
}

// ErrInsufficientStock is the sentinel wrapped by InsufficientStockError.
var ErrInsufficientStock = errors.New("inventory: insufficient stock")

// InsufficientStockError carries the detail an operator needs to act on a
// permanent rejection.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   int64
	Requested   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (%s): available %d, requested %d",
		e.ProductName, e.ProductID, e.Available, e.Requested)
}

// Unwrap lets errors.Is match the sentinel.
func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ErrInvalidQuantity indicates a zero quantity change.
var ErrInvalidQuantity = errors.New("inventory: quantity change must be non zero")

// ErrUnknownProduct indicates the movement references a product the server
// does not know.
var ErrUnknownProduct = errors.New("inventory: unknown product")
