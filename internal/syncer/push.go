package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/botica-pos/botica/internal/inventory"
	"github.com/botica-pos/botica/internal/observability"
	"github.com/botica-pos/botica/internal/shared"
)

// IdempotencyStore is the subset of the shared key store the synchronizer
// needs; see shared.IdempotencyStore for the postgres implementation.
type IdempotencyStore interface {
	Lookup(ctx context.Context, key string) (shared.IdempotencyRecord, bool, error)
	Remember(ctx context.Context, key, entityType, entityID string) error
}

// StockApplier validates and commits stock movements atomically; see
// inventory.Service.
type StockApplier interface {
	ApplyMovement(ctx context.Context, m inventory.Movement) (inventory.Applied, error)
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	// MaxBatch caps how many entities one push may carry per type.
	MaxBatch int
}

// Service implements the push, pull and audit synchronizers.
type Service struct {
	store    Store
	idem     IdempotencyStore
	stock    StockApplier
	metrics  *observability.Metrics
	logger   *slog.Logger
	validate *validator.Validate
	maxBatch int
	now      func() time.Time
}

// NewService builds Service.
func NewService(store Store, idem IdempotencyStore, stock StockApplier, metrics *observability.Metrics, logger *slog.Logger, cfg ServiceConfig) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	maxBatch := cfg.MaxBatch
	if maxBatch <= 0 {
		maxBatch = 500
	}
	return &Service{
		store:    store,
		idem:     idem,
		stock:    stock,
		metrics:  metrics,
		logger:   logger,
		validate: validator.New(),
		maxBatch: maxBatch,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ErrMissingReference marks an entity that points at a sale, product, order
// or supplier the server does not know.
var ErrMissingReference = errors.New("missing referenced entity")

// ErrBatchTooLarge aborts a push whose arrays exceed the configured cap.
// Unlike per-entity failures this is a transport-level 400.
var ErrBatchTooLarge = errors.New("sync: batch exceeds maximum size")

// rejection wraps a per-entity business failure. Rejected entities land in
// the response error list; they never abort the batch.
type rejection struct{ err error }

func (r rejection) Error() string { return r.err.Error() }
func (r rejection) Unwrap() error { return r.err }

func reject(err error) error {
	if err == nil {
		return nil
	}
	return rejection{err: err}
}

func rejectf(format string, args ...any) error {
	return rejection{err: fmt.Errorf(format, args...)}
}

func isRejection(err error) bool {
	var r rejection
	return errors.As(err, &r)
}

// Push ingests one client batch. Entity arrays are processed in dependency
// order (parents before children) so that references created in the same
// batch resolve; a failure in one entity never aborts the rest. Only
// infrastructure failures return a non-nil error.
func (s *Service) Push(ctx context.Context, caller shared.Identity, req PushRequest) (PushResponse, error) {
	if err := s.checkBatchSize(req); err != nil {
		return PushResponse{}, err
	}

	resp := PushResponse{Success: true, Synced: make(map[string][]string)}

	for _, p := range req.Products {
		if err := s.processEntity(ctx, &resp, TypeProducts, p.ID, p.IdempotencyKey, func(ctx context.Context) (UpsertOutcome, error) {
			if err := s.validate.Struct(p); err != nil {
				return OutcomeStale, reject(err)
			}
			return s.store.UpsertProduct(ctx, p.toDomain())
		}); err != nil {
			return PushResponse{}, err
		}
	}

	for _, b := range req.ProductBatches {
		if err := s.processEntity(ctx, &resp, TypeProductBatches, b.ID, b.IdempotencyKey, func(ctx context.Context) (UpsertOutcome, error) {
			if err := s.validate.Struct(b); err != nil {
				return OutcomeStale, reject(err)
			}
			batch := b.toDomain()
			if err := batch.Validate(); err != nil {
				return OutcomeStale, reject(err)
			}
			if err := s.requireProduct(ctx, batch.ProductID); err != nil {
				return OutcomeStale, err
			}
			return s.store.UpsertProductBatch(ctx, batch)
		}); err != nil {
			return PushResponse{}, err
		}
	}

	for _, sup := range req.Suppliers {
		if err := s.processEntity(ctx, &resp, TypeSuppliers, sup.ID, sup.IdempotencyKey, func(ctx context.Context) (UpsertOutcome, error) {
			if err := s.validate.Struct(sup); err != nil {
				return OutcomeStale, reject(err)
			}
			return s.store.UpsertSupplier(ctx, sup.toDomain())
		}); err != nil {
			return PushResponse{}, err
		}
	}

	saleItems := hoistSaleItems(req)

	for _, sale := range req.Sales {
		if err := s.processEntity(ctx, &resp, TypeSales, sale.ID, sale.IdempotencyKey, func(ctx context.Context) (UpsertOutcome, error) {
			if err := s.validate.Struct(sale); err != nil {
				return OutcomeStale, reject(err)
			}
			domain := sale.toDomain()
			domain.Items = nil // items sync as their own entities
			if err := domain.Normalize(s.now()); err != nil {
				return OutcomeStale, reject(err)
			}
			return s.store.UpsertSale(ctx, domain)
		}); err != nil {
			return PushResponse{}, err
		}
	}

	for _, item := range saleItems {
		if err := s.processEntity(ctx, &resp, TypeSaleItems, item.ID, item.IdempotencyKey, func(ctx context.Context) (UpsertOutcome, error) {
			if err := s.validate.Struct(item); err != nil {
				return OutcomeStale, reject(err)
			}
			domain := item.toDomain()
			if err := domain.RecomputeSubtotal(); err != nil {
				return OutcomeStale, reject(err)
			}
			if err := s.requireSale(ctx, domain.SaleID); err != nil {
				return OutcomeStale, err
			}
			if err := s.requireProduct(ctx, domain.ProductID); err != nil {
				return OutcomeStale, err
			}
			return s.store.UpsertSaleItem(ctx, domain)
		}); err != nil {
			return PushResponse{}, err
		}
	}

	for _, mv := range req.StockMovements {
		if err := s.processEntity(ctx, &resp, TypeStockMovements, mv.ID, mv.IdempotencyKey, func(ctx context.Context) (UpsertOutcome, error) {
			if err := s.validate.Struct(mv); err != nil {
				return OutcomeStale, reject(err)
			}
			movement := mv.toDomain()
			if movement.UserID == "" {
				movement.UserID = caller.UserID
			}
			applied, err := s.stock.ApplyMovement(ctx, movement)
			if err != nil {
				if errors.Is(err, inventory.ErrInsufficientStock) {
					s.metrics.ObserveStockRejection()
					return OutcomeStale, reject(err)
				}
				if errors.Is(err, inventory.ErrUnknownProduct) || errors.Is(err, inventory.ErrInvalidQuantity) {
					return OutcomeStale, reject(err)
				}
				return OutcomeStale, err
			}
			if applied.Duplicate {
				return OutcomeStale, nil
			}
			return OutcomeApplied, nil
		}); err != nil {
			return PushResponse{}, err
		}
	}

	for _, e := range req.Expenses {
		if err := s.processEntity(ctx, &resp, TypeExpenses, e.ID, e.IdempotencyKey, func(ctx context.Context) (UpsertOutcome, error) {
			if err := s.validate.Struct(e); err != nil {
				return OutcomeStale, reject(err)
			}
			return s.store.UpsertExpense(ctx, e.toDomain())
		}); err != nil {
			return PushResponse{}, err
		}
	}

	for _, o := range req.SupplierOrders {
		if err := s.processEntity(ctx, &resp, TypeSupplierOrders, o.ID, o.IdempotencyKey, func(ctx context.Context) (UpsertOutcome, error) {
			if err := s.validate.Struct(o); err != nil {
				return OutcomeStale, reject(err)
			}
			if err := s.requireSupplier(ctx, o.SupplierID); err != nil {
				return OutcomeStale, err
			}
			return s.store.UpsertSupplierOrder(ctx, o.toDomain())
		}); err != nil {
			return PushResponse{}, err
		}
	}

	for _, oi := range req.SupplierOrderItems {
		if err := s.processEntity(ctx, &resp, TypeSupplierOrderItems, oi.ID, oi.IdempotencyKey, func(ctx context.Context) (UpsertOutcome, error) {
			if err := s.validate.Struct(oi); err != nil {
				return OutcomeStale, reject(err)
			}
			if err := s.requireSupplierOrder(ctx, oi.OrderID); err != nil {
				return OutcomeStale, err
			}
			if err := s.requireProduct(ctx, oi.ProductID); err != nil {
				return OutcomeStale, err
			}
			return s.store.UpsertSupplierOrderItem(ctx, oi.toDomain())
		}); err != nil {
			return PushResponse{}, err
		}
	}

	for _, sr := range req.SupplierReturns {
		if err := s.processEntity(ctx, &resp, TypeSupplierReturns, sr.ID, sr.IdempotencyKey, func(ctx context.Context) (UpsertOutcome, error) {
			if err := s.validate.Struct(sr); err != nil {
				return OutcomeStale, reject(err)
			}
			if err := s.requireSupplier(ctx, sr.SupplierID); err != nil {
				return OutcomeStale, err
			}
			if err := s.requireProduct(ctx, sr.ProductID); err != nil {
				return OutcomeStale, err
			}
			return s.store.UpsertSupplierReturn(ctx, sr.toDomain())
		}); err != nil {
			return PushResponse{}, err
		}
	}

	for _, ps := range req.ProductSuppliers {
		if err := s.processEntity(ctx, &resp, TypeProductSuppliers, ps.ID, ps.IdempotencyKey, func(ctx context.Context) (UpsertOutcome, error) {
			if err := s.validate.Struct(ps); err != nil {
				return OutcomeStale, reject(err)
			}
			if err := s.requireProduct(ctx, ps.ProductID); err != nil {
				return OutcomeStale, err
			}
			if err := s.requireSupplier(ctx, ps.SupplierID); err != nil {
				return OutcomeStale, err
			}
			return s.store.UpsertProductSupplier(ctx, ps.toDomain())
		}); err != nil {
			return PushResponse{}, err
		}
	}

	for _, cp := range req.CreditPayments {
		if err := s.processEntity(ctx, &resp, TypeCreditPayments, cp.ID, cp.IdempotencyKey, func(ctx context.Context) (UpsertOutcome, error) {
			if err := s.validate.Struct(cp); err != nil {
				return OutcomeStale, reject(err)
			}
			if err := s.requireSale(ctx, cp.SaleID); err != nil {
				return OutcomeStale, err
			}
			return s.store.UpsertCreditPayment(ctx, cp.toDomain())
		}); err != nil {
			return PushResponse{}, err
		}
	}

	for _, so := range req.StockoutReports {
		if err := s.processEntity(ctx, &resp, TypeStockoutReports, so.ID, so.IdempotencyKey, func(ctx context.Context) (UpsertOutcome, error) {
			if err := s.validate.Struct(so); err != nil {
				return OutcomeStale, reject(err)
			}
			if err := s.requireProduct(ctx, so.ProductID); err != nil {
				return OutcomeStale, err
			}
			return s.store.UpsertStockoutReport(ctx, so.toDomain())
		}); err != nil {
			return PushResponse{}, err
		}
	}

	for _, pr := range req.SalePrescriptions {
		if err := s.processEntity(ctx, &resp, TypeSalePrescriptions, pr.ID, pr.IdempotencyKey, func(ctx context.Context) (UpsertOutcome, error) {
			if err := s.validate.Struct(pr); err != nil {
				return OutcomeStale, reject(err)
			}
			if err := s.requireSale(ctx, pr.SaleID); err != nil {
				return OutcomeStale, err
			}
			return s.store.UpsertSalePrescription(ctx, pr.toDomain())
		}); err != nil {
			return PushResponse{}, err
		}
	}

	s.logger.Info("push processed",
		slog.String("user_id", caller.UserID),
		slog.Int("types", len(resp.Synced)),
		slog.Int("errors", len(resp.Errors)))
	return resp, nil
}

// processEntity runs the shared per-entity pipeline: idempotency-key
// short-circuit, apply, key persistence, bookkeeping. The returned error is
// infrastructure-only; business rejections are folded into resp.Errors.
func (s *Service) processEntity(ctx context.Context, resp *PushResponse, entityType, id, key string, apply func(context.Context) (UpsertOutcome, error)) error {
	if key != "" && s.idem != nil {
		rec, hit, err := s.idem.Lookup(ctx, key)
		if err != nil {
			return err
		}
		if hit {
			// Already applied on a previous attempt: acknowledge the stored
			// id without touching anything.
			resp.Synced[entityType] = append(resp.Synced[entityType], rec.EntityID)
			s.metrics.ObserveSyncEntity(entityType, observability.OutcomeDuplicate)
			return nil
		}
	}

	outcome, err := apply(ctx)
	if err != nil {
		if isRejection(err) {
			resp.Errors = append(resp.Errors, fmt.Sprintf("%s %s: %s", entityType, id, err.Error()))
			s.metrics.ObserveSyncEntity(entityType, observability.OutcomeRejected)
			return nil
		}
		return err
	}

	if key != "" && s.idem != nil {
		if err := s.idem.Remember(ctx, key, entityType, id); err != nil {
			return err
		}
	}

	resp.Synced[entityType] = append(resp.Synced[entityType], id)
	if outcome == OutcomeStale {
		s.metrics.ObserveSyncEntity(entityType, observability.OutcomeStale)
	} else {
		s.metrics.ObserveSyncEntity(entityType, observability.OutcomeApplied)
	}
	return nil
}

func (s *Service) requireProduct(ctx context.Context, id string) error {
	ok, err := s.store.ProductExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return rejectf("%w: product %s", ErrMissingReference, id)
	}
	return nil
}

func (s *Service) requireSale(ctx context.Context, id string) error {
	ok, err := s.store.SaleExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return rejectf("%w: sale %s", ErrMissingReference, id)
	}
	return nil
}

func (s *Service) requireSupplier(ctx context.Context, id string) error {
	ok, err := s.store.SupplierExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return rejectf("%w: supplier %s", ErrMissingReference, id)
	}
	return nil
}

func (s *Service) requireSupplierOrder(ctx context.Context, id string) error {
	ok, err := s.store.SupplierOrderExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return rejectf("%w: supplier order %s", ErrMissingReference, id)
	}
	return nil
}

// hoistSaleItems merges items nested inside sales into the flat saleItems
// array, letting clients send either shape. An explicit flat item wins over
// a nested duplicate of the same id.
func hoistSaleItems(req PushRequest) []SaleItemDTO {
	items := make([]SaleItemDTO, 0, len(req.SaleItems))
	seen := make(map[string]bool, len(req.SaleItems))
	for _, it := range req.SaleItems {
		items = append(items, it)
		seen[it.ID] = true
	}
	for _, sale := range req.Sales {
		for _, it := range sale.Items {
			if it.SaleID == "" {
				it.SaleID = sale.ID
			}
			if it.ModifiedAt.IsZero() {
				it.ModifiedAt = sale.ModifiedAt
			}
			if !seen[it.ID] {
				items = append(items, it)
				seen[it.ID] = true
			}
		}
	}
	return items
}

func (s *Service) checkBatchSize(req PushRequest) error {
	sizes := []int{
		len(req.Sales), len(req.SaleItems), len(req.Expenses), len(req.StockMovements),
		len(req.Products), len(req.ProductBatches), len(req.Suppliers), len(req.SupplierOrders),
		len(req.SupplierOrderItems), len(req.SupplierReturns), len(req.ProductSuppliers),
		len(req.CreditPayments), len(req.StockoutReports), len(req.SalePrescriptions),
	}
	for _, n := range sizes {
		if n > s.maxBatch {
			return fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, n, s.maxBatch)
		}
	}
	return nil
}
