package sales

import (
	"errors"
	"fmt"
	"time"
)

// PaymentMethod enumerates accepted tender types.
type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "CASH"
	PaymentMobileMoney PaymentMethod = "MOBILE_MONEY"
	PaymentCredit      PaymentMethod = "CREDIT"
)

// PaymentStatus derives from the paid/total ratio; it is never trusted from
// the client verbatim.
type PaymentStatus string

const (
	StatusPending       PaymentStatus = "PENDING"
	StatusPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	StatusPaid          PaymentStatus = "PAID"
	StatusOverdue       PaymentStatus = "OVERDUE"
)

// Sale is a client-originated transaction. The id is generated on the client
// and never reassigned, so create and update collapse into one upsert.
type Sale struct {
	ID             string
	Total          float64
	PaymentMethod  PaymentMethod
	PaymentStatus  PaymentStatus
	AmountPaid     float64
	AmountDue      float64
	DueDate        *time.Time
	Items          []SaleItem
	ModifiedAt     time.Time
	ModifiedBy     string
	IdempotencyKey string
}

// SaleItem is one product line of a sale. Subtotal is recomputed server-side.
type SaleItem struct {
	ID         string
	SaleID     string
	ProductID  string
	Quantity   int64
	UnitPrice  float64
	Subtotal   float64
	ModifiedAt time.Time
}

// CreditPayment settles part of a credit sale after the fact.
type CreditPayment struct {
	ID         string
	SaleID     string
	Amount     float64
	PaidAt     time.Time
	ModifiedAt time.Time
	ModifiedBy string
}

// SalePrescription attaches prescription metadata to a sale.
type SalePrescription struct {
	ID          string
	SaleID      string
	Prescriber  string
	PatientName string
	Reference   string
	ModifiedAt  time.Time
	ModifiedBy  string
}

// Expense is a cash-drawer expense recorded at the till.
type Expense struct {
	ID         string
	Amount     float64
	Category   string
	Note       string
	SpentAt    time.Time
	ModifiedAt time.Time
	ModifiedBy string
}

// ErrAmountMismatch indicates amount_paid + amount_due != total.
var ErrAmountMismatch = errors.New("sales: paid plus due does not equal total")

const amountEpsilon = 0.005

// Normalize validates the payment invariant and rederives the status from
// the amounts. Overdue wins over partial payment once the due date passes.
func (s *Sale) Normalize(now time.Time) error {
	if s.ID == "" {
		return errors.New("sales: sale id required")
	}
	if s.Total < 0 || s.AmountPaid < 0 || s.AmountDue < 0 {
		return errors.New("sales: negative amounts not allowed")
	}
	if diff := s.AmountPaid + s.AmountDue - s.Total; diff > amountEpsilon || diff < -amountEpsilon {
		return fmt.Errorf("%w: paid %.2f + due %.2f != total %.2f (sale %s)", ErrAmountMismatch, s.AmountPaid, s.AmountDue, s.Total, s.ID)
	}
	switch {
	case s.AmountDue <= amountEpsilon:
		s.PaymentStatus = StatusPaid
	case s.PaymentMethod == PaymentCredit && s.DueDate != nil && s.DueDate.Before(now):
		s.PaymentStatus = StatusOverdue
	case s.AmountPaid > amountEpsilon:
		s.PaymentStatus = StatusPartiallyPaid
	default:
		s.PaymentStatus = StatusPending
	}
	return nil
}

// RecomputeSubtotal rederives the line subtotal from quantity and unit
// price, discarding whatever the client sent.
func (i *SaleItem) RecomputeSubtotal() error {
	if i.ID == "" || i.SaleID == "" || i.ProductID == "" {
		return errors.New("sales: item id, sale id and product id required")
	}
	if i.Quantity <= 0 {
		return fmt.Errorf("sales: item %s quantity must be positive", i.ID)
	}
	if i.UnitPrice < 0 {
		return fmt.Errorf("sales: item %s unit price must be >= 0", i.ID)
	}
	i.Subtotal = float64(i.Quantity) * i.UnitPrice
	return nil
}
