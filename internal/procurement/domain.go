package procurement

import "time"

// Supplier is a vendor the pharmacy orders from. Like every synced entity,
// its id is generated on the client and conflict is resolved by ModifiedAt.
type Supplier struct {
	ID         string
	Name       string
	Phone      string
	Email      string
	ModifiedAt time.Time
	ModifiedBy string
}

// OrderStatus tracks the supplier order lifecycle.
type OrderStatus string

const (
	OrderDraft     OrderStatus = "DRAFT"
	OrderPlaced    OrderStatus = "PLACED"
	OrderReceived  OrderStatus = "RECEIVED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// SupplierOrder is a purchase order against a supplier.
type SupplierOrder struct {
	ID         string
	SupplierID string
	Status     OrderStatus
	Total      float64
	OrderedAt  time.Time
	ModifiedAt time.Time
	ModifiedBy string
}

// SupplierOrderItem is one product line of a supplier order.
type SupplierOrderItem struct {
	ID         string
	OrderID    string
	ProductID  string
	Quantity   int64
	UnitCost   float64
	ModifiedAt time.Time
}

// SupplierReturn sends defective or expired stock back to the supplier.
type SupplierReturn struct {
	ID         string
	SupplierID string
	ProductID  string
	BatchID    string
	Quantity   int64
	Reason     string
	ReturnedAt time.Time
	ModifiedAt time.Time
	ModifiedBy string
}

// ProductSupplier links a product to a supplier with its negotiated cost.
type ProductSupplier struct {
	ID         string
	ProductID  string
	SupplierID string
	UnitCost   float64
	ModifiedAt time.Time
}
