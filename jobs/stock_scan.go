package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/botica-pos/botica/internal/catalog"
	jobmetrics "github.com/botica-pos/botica/internal/jobs"
)

// CatalogReader reads reporting views of the catalog; satisfied by
// catalog.Repository.
type CatalogReader interface {
	ListBelowMinStock(ctx context.Context) ([]catalog.Product, error)
	ListExpiringBatches(ctx context.Context, days int) ([]catalog.ProductBatch, error)
}

// NewLowStockScanHandler builds the handler for TaskLowStockScan. The scan
// only reports; reorders stay a human decision.
func NewLowStockScanHandler(reader CatalogReader, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, _ *asynq.Task) error {
		tracker := metrics.Track("low_stock_scan")
		products, err := reader.ListBelowMinStock(ctx)
		if err != nil {
			return tracker.End(err)
		}
		for _, p := range products {
			logger.Warn("product below minimum stock",
				slog.String("product_id", p.ID),
				slog.String("name", p.Name),
				slog.Int64("stock", p.Stock),
				slog.Int64("min_stock", p.MinStock))
		}
		logger.Info("low stock scan done", slog.Int("flagged", len(products)))
		return tracker.End(nil)
	}
}

// NewExpiryScanHandler builds the handler for TaskExpiryScan.
func NewExpiryScanHandler(reader CatalogReader, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track("expiry_scan")
		horizon := DefaultExpiryHorizonDays
		if len(t.Payload()) > 0 {
			var payload ExpiryScanPayload
			if err := json.Unmarshal(t.Payload(), &payload); err != nil {
				return asynq.SkipRetry
			}
			if payload.HorizonDays > 0 {
				horizon = payload.HorizonDays
			}
		}
		batches, err := reader.ListExpiringBatches(ctx, horizon)
		if err != nil {
			return tracker.End(err)
		}
		for _, b := range batches {
			logger.Warn("batch approaching expiry",
				slog.String("batch_id", b.ID),
				slog.String("product_id", b.ProductID),
				slog.String("lot", b.LotNumber),
				slog.Time("expires", b.ExpirationDate),
				slog.Int64("quantity", b.Quantity))
		}
		logger.Info("expiry scan done", slog.Int("flagged", len(batches)), slog.Int("horizon_days", horizon))
		return tracker.End(nil)
	}
}
