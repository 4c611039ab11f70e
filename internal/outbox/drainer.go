package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/botica-pos/botica/internal/syncer"
)

// Pusher submits one batch to the server; satisfied by Client.
type Pusher interface {
	Push(ctx context.Context, req syncer.PushRequest) (syncer.PushResponse, error)
}

// Drainer flushes the queue to the server. Transient failures back off
// exponentially and retryable rejections stay queued; only permanent
// rejections are parked, so the rest of the queue keeps moving.
type Drainer struct {
	store     Store
	pusher    Pusher
	logger    *slog.Logger
	batchSize int
	baseDelay time.Duration
	maxDelay  time.Duration
}

// DrainerConfig groups optional settings.
type DrainerConfig struct {
	BatchSize int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// NewDrainer builds Drainer.
func NewDrainer(store Store, pusher Pusher, logger *slog.Logger, cfg DrainerConfig) *Drainer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 5 * time.Minute
	}
	return &Drainer{
		store:     store,
		pusher:    pusher,
		logger:    logger,
		batchSize: cfg.BatchSize,
		baseDelay: cfg.BaseDelay,
		maxDelay:  cfg.MaxDelay,
	}
}

// DrainOnce pushes one batch and reconciles the response against the queue.
// It returns the number of entries acknowledged.
func (d *Drainer) DrainOnce(ctx context.Context) (int, error) {
	entries, err := d.store.ListPending(ctx, d.batchSize)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	var req syncer.PushRequest
	batch := entries[:0]
	for _, e := range entries {
		if err := appendEntry(&req, e); err != nil {
			// Undecodable payloads can never succeed.
			if perr := d.store.Park(ctx, e.ID, err.Error()); perr != nil {
				return 0, perr
			}
			continue
		}
		batch = append(batch, e)
	}
	if len(batch) == 0 {
		return 0, nil
	}

	resp, err := d.pusher.Push(ctx, req)
	if err != nil {
		for _, e := range batch {
			if merr := d.store.MarkAttempt(ctx, e.ID, err.Error()); merr != nil {
				return 0, merr
			}
		}
		return 0, err
	}

	synced := make(map[string]bool)
	for entityType, ids := range resp.Synced {
		for _, id := range ids {
			synced[entityType+"/"+id] = true
		}
	}

	acked := 0
	for _, e := range batch {
		if synced[e.EntityType+"/"+e.EntityID] {
			if err := d.store.Ack(ctx, e.ID); err != nil {
				return acked, err
			}
			acked++
			continue
		}
		reason := findRejection(resp.Errors, e)
		if reason != "" && permanentRejection(reason) {
			d.logger.Warn("outbox entry parked",
				slog.String("entry_id", e.ID),
				slog.String("entity_type", e.EntityType),
				slog.String("reason", reason))
			if err := d.store.Park(ctx, e.ID, reason); err != nil {
				return acked, err
			}
			continue
		}
		if reason == "" {
			reason = "not acknowledged by server"
		}
		if err := d.store.MarkAttempt(ctx, e.ID, reason); err != nil {
			return acked, err
		}
	}
	return acked, nil
}

// Run drains in a loop until ctx is cancelled. The retry delay doubles on
// consecutive failures and resets after a successful drain.
func (d *Drainer) Run(ctx context.Context, interval time.Duration) {
	delay := d.baseDelay
	for {
		acked, err := d.DrainOnce(ctx)
		wait := interval
		if err != nil {
			d.logger.Warn("outbox drain failed", slog.String("error", err.Error()), slog.Duration("retry_in", delay))
			wait = delay
			delay *= 2
			if delay > d.maxDelay {
				delay = d.maxDelay
			}
		} else {
			delay = d.baseDelay
			if acked > 0 {
				d.logger.Info("outbox drained", slog.Int("acked", acked))
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

func appendEntry(req *syncer.PushRequest, e Entry) error {
	switch e.EntityType {
	case syncer.TypeSales:
		return appendDTO(&req.Sales, e)
	case syncer.TypeSaleItems:
		return appendDTO(&req.SaleItems, e)
	case syncer.TypeExpenses:
		return appendDTO(&req.Expenses, e)
	case syncer.TypeStockMovements:
		return appendDTO(&req.StockMovements, e)
	case syncer.TypeProducts:
		return appendDTO(&req.Products, e)
	case syncer.TypeProductBatches:
		return appendDTO(&req.ProductBatches, e)
	case syncer.TypeSuppliers:
		return appendDTO(&req.Suppliers, e)
	case syncer.TypeSupplierOrders:
		return appendDTO(&req.SupplierOrders, e)
	case syncer.TypeSupplierOrderItems:
		return appendDTO(&req.SupplierOrderItems, e)
	case syncer.TypeSupplierReturns:
		return appendDTO(&req.SupplierReturns, e)
	case syncer.TypeProductSuppliers:
		return appendDTO(&req.ProductSuppliers, e)
	case syncer.TypeCreditPayments:
		return appendDTO(&req.CreditPayments, e)
	case syncer.TypeStockoutReports:
		return appendDTO(&req.StockoutReports, e)
	case syncer.TypeSalePrescriptions:
		return appendDTO(&req.SalePrescriptions, e)
	default:
		return fmt.Errorf("outbox: unknown entity type %q", e.EntityType)
	}
}

func appendDTO[T any](dst *[]T, e Entry) error {
	var dto T
	if err := json.Unmarshal(e.Payload, &dto); err != nil {
		return fmt.Errorf("outbox: entry %s payload: %w", e.ID, err)
	}
	*dst = append(*dst, dto)
	return nil
}

// permanentRejection reports whether a rejection can never succeed on
// retry. A stock shortage needs an operator; everything else, like a sale
// item whose parent sale is still on another device, is retried on the next
// drain.
func permanentRejection(reason string) bool {
	return strings.Contains(reason, "insufficient stock")
}

// findRejection locates the server error for this entry, if any. Errors are
// formatted "<entityType> <entityId>: <message>".
func findRejection(errs []string, e Entry) string {
	prefix := e.EntityType + " " + e.EntityID + ":"
	for _, msg := range errs {
		if strings.HasPrefix(msg, prefix) {
			return msg
		}
	}
	return ""
}
