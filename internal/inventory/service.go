package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/botica-pos/botica/internal/catalog"
	"github.com/botica-pos/botica/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the transactional operations the stock validator
// needs. Implementations must lock the product row for the duration of the
// transaction so concurrent decrements serialize.
type TxRepository interface {
	MovementExists(ctx context.Context, id string) (bool, error)
	GetProductForUpdate(ctx context.Context, productID string) (catalog.Product, error)
	ListBatchesForUpdate(ctx context.Context, productID string) ([]catalog.ProductBatch, error)
	DecrementBatch(ctx context.Context, batchID string, qty int64) error
	UpdateProductStock(ctx context.Context, productID string, stock int64, at time.Time) error
	InsertMovement(ctx context.Context, m Movement) error
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service is the stock validator: it atomically checks and applies stock
// changes, never letting a product go negative, and drives FEFO batch
// consumption for sales.
type Service struct {
	repo   RepositoryPort
	audit  AuditPort
	logger *slog.Logger
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger}
}

// ApplyMovement validates and commits one stock movement as a single atomic
// unit: stock check, batch allocation, movement insert and stock update all
// succeed or all roll back. Resending a movement id that already exists
// returns the prior outcome without duplicating the audit row.
func (s *Service) ApplyMovement(ctx context.Context, m Movement) (Applied, error) {
	if m.ID == "" || m.ProductID == "" {
		return Applied{}, errors.New("inventory: movement id and product id required")
	}
	if m.QuantityChange == 0 {
		return Applied{}, ErrInvalidQuantity
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	var result Applied
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		exists, err := tx.MovementExists(ctx, m.ID)
		if err != nil {
			return err
		}
		if exists {
			result = Applied{MovementID: m.ID, ProductID: m.ProductID, Duplicate: true}
			return nil
		}

		product, err := tx.GetProductForUpdate(ctx, m.ProductID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrUnknownProduct, m.ProductID)
			}
			return err
		}

		newStock := product.Stock + m.QuantityChange
		if newStock < 0 {
			return &InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.Stock,
				Requested:   -m.QuantityChange,
			}
		}

		if m.Type == MovementSale && m.QuantityChange < 0 {
			allocations, err := s.allocateSale(ctx, tx, product, -m.QuantityChange)
			if err != nil {
				return err
			}
			result.Allocations = allocations
		}

		if err := tx.InsertMovement(ctx, m); err != nil {
			return err
		}
		if err := tx.UpdateProductStock(ctx, m.ProductID, newStock, m.CreatedAt); err != nil {
			return err
		}

		result.MovementID = m.ID
		result.ProductID = m.ProductID
		result.NewStock = newStock
		return nil
	})
	if err != nil {
		return Applied{}, err
	}

	if !result.Duplicate && s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  m.UserID,
			Action:   fmt.Sprintf("inventory:%s", m.Type),
			Entity:   "stock_movement",
			EntityID: m.ID,
			Meta: map[string]any{
				"product_id": m.ProductID,
				"change":     m.QuantityChange,
				"new_stock":  result.NewStock,
				"reason":     m.Reason,
			},
		})
	}
	return result, nil
}

// allocateSale plans FEFO consumption across the product's batches and
// applies the per-batch decrements. Products without batch tracking keep
// relying on the denormalised stock column alone.
func (s *Service) allocateSale(ctx context.Context, tx TxRepository, product catalog.Product, requested int64) ([]BatchAllocation, error) {
	batches, err := tx.ListBatchesForUpdate(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, nil
	}

	plan, err := PlanAllocation(product.ID, product.Name, batches, requested)
	if err != nil {
		return nil, err
	}
	for _, alloc := range plan {
		if err := tx.DecrementBatch(ctx, alloc.BatchID, alloc.Quantity); err != nil {
			return nil, err
		}
	}
	s.logger.Debug("fefo allocation applied",
		slog.String("product_id", product.ID),
		slog.Int64("requested", requested),
		slog.Int("batches", len(plan)))
	return plan, nil
}
