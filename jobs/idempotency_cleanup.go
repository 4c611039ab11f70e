package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/botica-pos/botica/internal/jobs"
)

// KeyPurger removes expired idempotency keys; satisfied by
// shared.IdempotencyStore.
type KeyPurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// NewIdempotencyCleanupHandler builds the handler for TaskIdempotencyCleanup.
func NewIdempotencyCleanupHandler(purger KeyPurger, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, _ *asynq.Task) error {
		tracker := metrics.Track("idempotency_cleanup")
		removed, err := purger.DeleteExpired(ctx)
		if err != nil {
			logger.Error("idempotency cleanup failed", slog.String("error", err.Error()))
			return tracker.End(err)
		}
		if removed > 0 {
			logger.Info("idempotency keys purged", slog.Int64("removed", removed))
		}
		return tracker.End(nil)
	}
}
