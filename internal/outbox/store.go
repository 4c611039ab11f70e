package outbox

import (
	"context"
	"errors"
)

// ErrEntryNotFound indicates an unknown entry id.
var ErrEntryNotFound = errors.New("outbox: entry not found")

// Store persists queued entries. Pending order is enqueue order so parents
// drain before the children that reference them.
type Store interface {
	Enqueue(ctx context.Context, e Entry) error
	// ListPending returns up to limit pending entries in enqueue order.
	ListPending(ctx context.Context, limit int) ([]Entry, error)
	// Ack removes an entry the server acknowledged.
	Ack(ctx context.Context, id string) error
	// Park moves an entry out of the pending queue after a permanent
	// rejection, keeping it inspectable.
	Park(ctx context.Context, id, reason string) error
	// MarkAttempt bumps the attempt counter after a transient failure.
	MarkAttempt(ctx context.Context, id, reason string) error
	// ListParked returns parked entries for operator review.
	ListParked(ctx context.Context) ([]Entry, error)
}
