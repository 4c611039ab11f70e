package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/botica-pos/botica/internal/shared"
)

// Audit statuses.
const (
	AuditHealthy     = "HEALTHY"
	AuditIssuesFound = "ISSUES_FOUND"
)

// auditEpsilon absorbs float round-trip noise when comparing money amounts.
const auditEpsilon = 0.005

// AuditRequest carries client-side snapshots of the fields most likely to
// drift. The server compares them against its own rows.
type AuditRequest struct {
	Products       []ProductSnapshot  `json:"products,omitempty"`
	Sales          []SaleSnapshot     `json:"sales,omitempty"`
	StockMovements []MovementSnapshot `json:"stockMovements,omitempty"`
	Expenses       []ExpenseSnapshot  `json:"expenses,omitempty"`
}

type ProductSnapshot struct {
	ID    string  `json:"id" validate:"required"`
	Stock int64   `json:"stock"`
	Price float64 `json:"price"`
}

type SaleSnapshot struct {
	ID            string  `json:"id" validate:"required"`
	Total         float64 `json:"total"`
	PaymentStatus string  `json:"paymentStatus"`
}

type MovementSnapshot struct {
	ID             string `json:"id" validate:"required"`
	QuantityChange int64  `json:"quantityChange"`
}

type ExpenseSnapshot struct {
	ID     string  `json:"id" validate:"required"`
	Amount float64 `json:"amount"`
}

// AuditIssue names one divergence between a client snapshot and the server
// row, with both values rendered as strings for readability.
type AuditIssue struct {
	EntityType string `json:"entityType"`
	EntityID   string `json:"entityId"`
	Field      string `json:"field"`
	Client     string `json:"clientValue"`
	Server     string `json:"serverValue"`
}

// AuditResponse summarizes the comparison.
type AuditResponse struct {
	Success   bool         `json:"success"`
	Status    string       `json:"status"`
	Checked   int          `json:"checked"`
	Issues    []AuditIssue `json:"issues,omitempty"`
	CheckedAt time.Time    `json:"checkedAt"`
}

// Audit compares client snapshots against server state. An entity the
// server has never seen is itself a divergence. Only infrastructure
// failures return a non-nil error.
func (s *Service) Audit(ctx context.Context, caller shared.Identity, req AuditRequest) (AuditResponse, error) {
	resp := AuditResponse{Success: true, CheckedAt: s.now()}

	for _, snap := range req.Products {
		resp.Checked++
		p, err := s.store.GetProduct(ctx, snap.ID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				resp.Issues = append(resp.Issues, missingIssue(TypeProducts, snap.ID))
				continue
			}
			return AuditResponse{}, err
		}
		if p.Stock != snap.Stock {
			resp.Issues = append(resp.Issues, AuditIssue{
				EntityType: TypeProducts, EntityID: snap.ID, Field: "stock",
				Client: fmt.Sprintf("%d", snap.Stock), Server: fmt.Sprintf("%d", p.Stock),
			})
		}
		if diverges(p.Price, snap.Price) {
			resp.Issues = append(resp.Issues, AuditIssue{
				EntityType: TypeProducts, EntityID: snap.ID, Field: "price",
				Client: fmt.Sprintf("%.2f", snap.Price), Server: fmt.Sprintf("%.2f", p.Price),
			})
		}
	}

	for _, snap := range req.Sales {
		resp.Checked++
		sl, err := s.store.GetSale(ctx, snap.ID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				resp.Issues = append(resp.Issues, missingIssue(TypeSales, snap.ID))
				continue
			}
			return AuditResponse{}, err
		}
		if diverges(sl.Total, snap.Total) {
			resp.Issues = append(resp.Issues, AuditIssue{
				EntityType: TypeSales, EntityID: snap.ID, Field: "total",
				Client: fmt.Sprintf("%.2f", snap.Total), Server: fmt.Sprintf("%.2f", sl.Total),
			})
		}
		if snap.PaymentStatus != "" && string(sl.PaymentStatus) != snap.PaymentStatus {
			resp.Issues = append(resp.Issues, AuditIssue{
				EntityType: TypeSales, EntityID: snap.ID, Field: "paymentStatus",
				Client: snap.PaymentStatus, Server: string(sl.PaymentStatus),
			})
		}
	}

	for _, snap := range req.StockMovements {
		resp.Checked++
		m, err := s.store.GetMovement(ctx, snap.ID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				resp.Issues = append(resp.Issues, missingIssue(TypeStockMovements, snap.ID))
				continue
			}
			return AuditResponse{}, err
		}
		if m.QuantityChange != snap.QuantityChange {
			resp.Issues = append(resp.Issues, AuditIssue{
				EntityType: TypeStockMovements, EntityID: snap.ID, Field: "quantityChange",
				Client: fmt.Sprintf("%d", snap.QuantityChange), Server: fmt.Sprintf("%d", m.QuantityChange),
			})
		}
	}

	for _, snap := range req.Expenses {
		resp.Checked++
		e, err := s.store.GetExpense(ctx, snap.ID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				resp.Issues = append(resp.Issues, missingIssue(TypeExpenses, snap.ID))
				continue
			}
			return AuditResponse{}, err
		}
		if diverges(e.Amount, snap.Amount) {
			resp.Issues = append(resp.Issues, AuditIssue{
				EntityType: TypeExpenses, EntityID: snap.ID, Field: "amount",
				Client: fmt.Sprintf("%.2f", snap.Amount), Server: fmt.Sprintf("%.2f", e.Amount),
			})
		}
	}

	if len(resp.Issues) == 0 {
		resp.Status = AuditHealthy
	} else {
		resp.Status = AuditIssuesFound
		s.logger.Warn("sync audit found divergences",
			slog.String("user_id", caller.UserID),
			slog.Int("issues", len(resp.Issues)))
	}
	return resp, nil
}

func missingIssue(entityType, id string) AuditIssue {
	return AuditIssue{EntityType: entityType, EntityID: id, Field: "presence", Client: "present", Server: "missing"}
}

func diverges(a, b float64) bool {
	return math.Abs(a-b) > auditEpsilon
}
