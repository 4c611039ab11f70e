package syncer

import "time"

// Entity type names as they appear on the wire and in idempotency records.
const (
	TypeSales              = "sales"
	TypeSaleItems          = "saleItems"
	TypeExpenses           = "expenses"
	TypeStockMovements     = "stockMovements"
	TypeProducts           = "products"
	TypeProductBatches     = "productBatches"
	TypeSuppliers          = "suppliers"
	TypeSupplierOrders     = "supplierOrders"
	TypeSupplierOrderItems = "supplierOrderItems"
	TypeSupplierReturns    = "supplierReturns"
	TypeProductSuppliers   = "productSuppliers"
	TypeCreditPayments     = "creditPayments"
	TypeStockoutReports    = "stockoutReports"
	TypeSalePrescriptions  = "salePrescriptions"
)

// PushRequest is the tagged-union body of POST /sync/push: one optional
// array per entity type, validated at the boundary before business logic.
type PushRequest struct {
	Sales              []SaleDTO              `json:"sales,omitempty"`
	SaleItems          []SaleItemDTO          `json:"saleItems,omitempty"`
	Expenses           []ExpenseDTO           `json:"expenses,omitempty"`
	StockMovements     []StockMovementDTO     `json:"stockMovements,omitempty"`
	Products           []ProductDTO           `json:"products,omitempty"`
	ProductBatches     []ProductBatchDTO      `json:"productBatches,omitempty"`
	Suppliers          []SupplierDTO          `json:"suppliers,omitempty"`
	SupplierOrders     []SupplierOrderDTO     `json:"supplierOrders,omitempty"`
	SupplierOrderItems []SupplierOrderItemDTO `json:"supplierOrderItems,omitempty"`
	SupplierReturns    []SupplierReturnDTO    `json:"supplierReturns,omitempty"`
	ProductSuppliers   []ProductSupplierDTO   `json:"productSuppliers,omitempty"`
	CreditPayments     []CreditPaymentDTO     `json:"creditPayments,omitempty"`
	StockoutReports    []StockoutReportDTO    `json:"stockoutReports,omitempty"`
	SalePrescriptions  []SalePrescriptionDTO  `json:"salePrescriptions,omitempty"`
}

// PushResponse reports, per entity type, the ids the server now considers
// synced, plus human-readable per-entity errors for skipped entities.
type PushResponse struct {
	Success bool                `json:"success"`
	Synced  map[string][]string `json:"synced"`
	Errors  []string            `json:"errors,omitempty"`
}

// PullResponse carries every entity changed after the watermark plus the
// server timestamp that becomes the next watermark.
type PullResponse struct {
	Success    bool      `json:"success"`
	Data       PullData  `json:"data"`
	ServerTime time.Time `json:"serverTime"`
}

// PullData groups changed rows per entity type. Sales are hydrated with
// their items; supplier-facing types are omitted for cashiers.
type PullData struct {
	Sales              []SaleDTO              `json:"sales"`
	Expenses           []ExpenseDTO           `json:"expenses,omitempty"`
	StockMovements     []StockMovementDTO     `json:"stockMovements"`
	Products           []ProductDTO           `json:"products"`
	ProductBatches     []ProductBatchDTO      `json:"productBatches"`
	Suppliers          []SupplierDTO          `json:"suppliers,omitempty"`
	SupplierOrders     []SupplierOrderDTO     `json:"supplierOrders,omitempty"`
	SupplierOrderItems []SupplierOrderItemDTO `json:"supplierOrderItems,omitempty"`
	SupplierReturns    []SupplierReturnDTO    `json:"supplierReturns,omitempty"`
	ProductSuppliers   []ProductSupplierDTO   `json:"productSuppliers,omitempty"`
	CreditPayments     []CreditPaymentDTO     `json:"creditPayments"`
	StockoutReports    []StockoutReportDTO    `json:"stockoutReports"`
	SalePrescriptions  []SalePrescriptionDTO  `json:"salePrescriptions"`
}

// SaleDTO mirrors sales.Sale on the wire.
type SaleDTO struct {
	ID             string        `json:"id" validate:"required"`
	Total          float64       `json:"total" validate:"gte=0"`
	PaymentMethod  string        `json:"paymentMethod" validate:"required,oneof=CASH MOBILE_MONEY CREDIT"`
	PaymentStatus  string        `json:"paymentStatus,omitempty"`
	AmountPaid     float64       `json:"amountPaid" validate:"gte=0"`
	AmountDue      float64       `json:"amountDue" validate:"gte=0"`
	DueDate        *time.Time    `json:"dueDate,omitempty"`
	Items          []SaleItemDTO `json:"items,omitempty"`
	ModifiedAt     time.Time     `json:"modifiedAt" validate:"required"`
	ModifiedBy     string        `json:"modifiedBy,omitempty"`
	IdempotencyKey string        `json:"idempotencyKey,omitempty"`
}

// SaleItemDTO mirrors sales.SaleItem. Subtotal is informational on input
// and always recomputed by the server.
type SaleItemDTO struct {
	ID             string    `json:"id" validate:"required"`
	SaleID         string    `json:"saleId" validate:"required"`
	ProductID      string    `json:"productId" validate:"required"`
	Quantity       int64     `json:"quantity" validate:"gt=0"`
	UnitPrice      float64   `json:"unitPrice" validate:"gte=0"`
	Subtotal       float64   `json:"subtotal"`
	ModifiedAt     time.Time `json:"modifiedAt" validate:"required"`
	IdempotencyKey string    `json:"idempotencyKey,omitempty"`
}

// ExpenseDTO mirrors sales.Expense.
type ExpenseDTO struct {
	ID             string    `json:"id" validate:"required"`
	Amount         float64   `json:"amount" validate:"gte=0"`
	Category       string    `json:"category"`
	Note           string    `json:"note,omitempty"`
	SpentAt        time.Time `json:"spentAt"`
	ModifiedAt     time.Time `json:"modifiedAt" validate:"required"`
	ModifiedBy     string    `json:"modifiedBy,omitempty"`
	IdempotencyKey string    `json:"idempotencyKey,omitempty"`
}

// StockMovementDTO mirrors inventory.Movement.
type StockMovementDTO struct {
	ID             string    `json:"id" validate:"required"`
	ProductID      string    `json:"productId" validate:"required"`
	Type           string    `json:"type" validate:"required,oneof=SALE PURCHASE ADJUSTMENT CUSTOMER_RETURN SUPPLIER_RETURN"`
	QuantityChange int64     `json:"quantityChange"`
	Reason         string    `json:"reason,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UserID         string    `json:"userId,omitempty"`
	IdempotencyKey string    `json:"idempotencyKey,omitempty"`
}

// ProductDTO mirrors catalog.Product. PriceBuy is blanked for callers who
// may not see purchase costs.
type ProductDTO struct {
	ID             string    `json:"id" validate:"required"`
	Name           string    `json:"name" validate:"required"`
	Price          float64   `json:"price" validate:"gte=0"`
	PriceBuy       float64   `json:"priceBuy,omitempty"`
	Stock          int64     `json:"stock" validate:"gte=0"`
	MinStock       int64     `json:"minStock" validate:"gte=0"`
	UpdatedAt      time.Time `json:"updatedAt" validate:"required"`
	ModifiedBy     string    `json:"modifiedBy,omitempty"`
	IdempotencyKey string    `json:"idempotencyKey,omitempty"`
}

// ProductBatchDTO mirrors catalog.ProductBatch.
type ProductBatchDTO struct {
	ID             string    `json:"id" validate:"required"`
	ProductID      string    `json:"productId" validate:"required"`
	LotNumber      string    `json:"lotNumber"`
	ExpirationDate time.Time `json:"expirationDate" validate:"required"`
	Quantity       int64     `json:"quantity"`
	InitialQty     int64     `json:"initialQty" validate:"gt=0"`
	ReceivedDate   time.Time `json:"receivedDate"`
	UpdatedAt      time.Time `json:"updatedAt" validate:"required"`
	IdempotencyKey string    `json:"idempotencyKey,omitempty"`
}

// SupplierDTO mirrors procurement.Supplier.
type SupplierDTO struct {
	ID             string    `json:"id" validate:"required"`
	Name           string    `json:"name" validate:"required"`
	Phone          string    `json:"phone,omitempty"`
	Email          string    `json:"email,omitempty"`
	ModifiedAt     time.Time `json:"modifiedAt" validate:"required"`
	ModifiedBy     string    `json:"modifiedBy,omitempty"`
	IdempotencyKey string    `json:"idempotencyKey,omitempty"`
}

// SupplierOrderDTO mirrors procurement.SupplierOrder.
type SupplierOrderDTO struct {
	ID             string    `json:"id" validate:"required"`
	SupplierID     string    `json:"supplierId" validate:"required"`
	Status         string    `json:"status" validate:"omitempty,oneof=DRAFT PLACED RECEIVED CANCELLED"`
	Total          float64   `json:"total" validate:"gte=0"`
	OrderedAt      time.Time `json:"orderedAt"`
	ModifiedAt     time.Time `json:"modifiedAt" validate:"required"`
	ModifiedBy     string    `json:"modifiedBy,omitempty"`
	IdempotencyKey string    `json:"idempotencyKey,omitempty"`
}

// SupplierOrderItemDTO mirrors procurement.SupplierOrderItem.
type SupplierOrderItemDTO struct {
	ID             string    `json:"id" validate:"required"`
	OrderID        string    `json:"orderId" validate:"required"`
	ProductID      string    `json:"productId" validate:"required"`
	Quantity       int64     `json:"quantity" validate:"gt=0"`
	UnitCost       float64   `json:"unitCost" validate:"gte=0"`
	ModifiedAt     time.Time `json:"modifiedAt" validate:"required"`
	IdempotencyKey string    `json:"idempotencyKey,omitempty"`
}

// SupplierReturnDTO mirrors procurement.SupplierReturn.
type SupplierReturnDTO struct {
	ID             string    `json:"id" validate:"required"`
	SupplierID     string    `json:"supplierId" validate:"required"`
	ProductID      string    `json:"productId" validate:"required"`
	BatchID        string    `json:"batchId,omitempty"`
	Quantity       int64     `json:"quantity" validate:"gt=0"`
	Reason         string    `json:"reason,omitempty"`
	ReturnedAt     time.Time `json:"returnedAt"`
	ModifiedAt     time.Time `json:"modifiedAt" validate:"required"`
	ModifiedBy     string    `json:"modifiedBy,omitempty"`
	IdempotencyKey string    `json:"idempotencyKey,omitempty"`
}

// ProductSupplierDTO mirrors procurement.ProductSupplier.
type ProductSupplierDTO struct {
	ID             string    `json:"id" validate:"required"`
	ProductID      string    `json:"productId" validate:"required"`
	SupplierID     string    `json:"supplierId" validate:"required"`
	UnitCost       float64   `json:"unitCost" validate:"gte=0"`
	ModifiedAt     time.Time `json:"modifiedAt" validate:"required"`
	IdempotencyKey string    `json:"idempotencyKey,omitempty"`
}

// CreditPaymentDTO mirrors sales.CreditPayment.
type CreditPaymentDTO struct {
	ID             string    `json:"id" validate:"required"`
	SaleID         string    `json:"saleId" validate:"required"`
	Amount         float64   `json:"amount" validate:"gt=0"`
	PaidAt         time.Time `json:"paidAt"`
	ModifiedAt     time.Time `json:"modifiedAt" validate:"required"`
	ModifiedBy     string    `json:"modifiedBy,omitempty"`
	IdempotencyKey string    `json:"idempotencyKey,omitempty"`
}

// StockoutReportDTO mirrors catalog.StockoutReport.
type StockoutReportDTO struct {
	ID             string    `json:"id" validate:"required"`
	ProductID      string    `json:"productId" validate:"required"`
	Quantity       int64     `json:"quantity" validate:"gte=0"`
	Note           string    `json:"note,omitempty"`
	ReportedAt     time.Time `json:"reportedAt"`
	ModifiedAt     time.Time `json:"modifiedAt" validate:"required"`
	ModifiedBy     string    `json:"modifiedBy,omitempty"`
	IdempotencyKey string    `json:"idempotencyKey,omitempty"`
}

// SalePrescriptionDTO mirrors sales.SalePrescription.
type SalePrescriptionDTO struct {
	ID             string    `json:"id" validate:"required"`
	SaleID         string    `json:"saleId" validate:"required"`
	Prescriber     string    `json:"prescriber,omitempty"`
	PatientName    string    `json:"patientName,omitempty"`
	Reference      string    `json:"reference,omitempty"`
	ModifiedAt     time.Time `json:"modifiedAt" validate:"required"`
	ModifiedBy     string    `json:"modifiedBy,omitempty"`
	IdempotencyKey string    `json:"idempotencyKey,omitempty"`
}
