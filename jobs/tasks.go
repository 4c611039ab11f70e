package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskIdempotencyCleanup purges expired idempotency keys.
	TaskIdempotencyCleanup = "botica:idempotency:cleanup"
	// TaskLowStockScan reports products that fell under their minimum stock.
	TaskLowStockScan = "botica:stock:lowscan"
	// TaskExpiryScan reports batches approaching their expiration date.
	TaskExpiryScan = "botica:stock:expiryscan"
)

// ExpiryScanPayload configures the expiry horizon.
type ExpiryScanPayload struct {
	HorizonDays int `json:"horizonDays"`
}

// DefaultExpiryHorizonDays is used when the payload carries no horizon.
const DefaultExpiryHorizonDays = 90

// NewIdempotencyCleanupTask constructs the cleanup task.
func NewIdempotencyCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskIdempotencyCleanup, nil)
}

// NewLowStockScanTask constructs the low stock scan task.
func NewLowStockScanTask() *asynq.Task {
	return asynq.NewTask(TaskLowStockScan, nil)
}

// NewExpiryScanTask constructs the expiry scan task.
func NewExpiryScanTask(payload ExpiryScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskExpiryScan, data), nil
}
