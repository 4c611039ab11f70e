// Package outbox implements the client-side pending queue of the sync
// protocol: operations recorded while offline, drained to the server in
// order once connectivity returns.
package outbox

import (
	"encoding/json"
	"time"
)

// Status of a queued entry.
type Status string

const (
	// StatusPending entries are eligible for the next drain.
	StatusPending Status = "PENDING"
	// StatusParked entries hit a permanent rejection and wait for an
	// operator decision instead of burning retries.
	StatusParked Status = "PARKED"
)

// Entry is one queued operation. Payload carries the wire DTO exactly as it
// will appear inside the push request.
type Entry struct {
	ID             string          `json:"id"`
	EntityType     string          `json:"entityType"`
	EntityID       string          `json:"entityId"`
	Payload        json.RawMessage `json:"payload"`
	IdempotencyKey string          `json:"idempotencyKey,omitempty"`
	Status         Status          `json:"status"`
	Attempts       int             `json:"attempts"`
	LastError      string          `json:"lastError,omitempty"`
	EnqueuedAt     time.Time       `json:"enqueuedAt"`
}
