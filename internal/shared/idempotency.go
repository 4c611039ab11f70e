package shared

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IdempotencyRecord maps a client-generated key to the entity it produced.
type IdempotencyRecord struct {
	Key        string
	EntityType string
	EntityID   string
	ExpiresAt  time.Time
}

// IdempotencyStore persists processed keys so client retries become no-ops.
// Keys expire after a configurable TTL; past expiry, safety degrades to
// plain identifier-based upsert idempotence.
type IdempotencyStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

// DefaultIdempotencyTTL is used when configuration does not override it.
const DefaultIdempotencyTTL = 24 * time.Hour

// NewIdempotencyStore constructs the store.
func NewIdempotencyStore(pool *pgxpool.Pool, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyStore{pool: pool, ttl: ttl}
}

// ErrIdempotencyStoreNil guards against uninitialised usage.
var ErrIdempotencyStoreNil = errors.New("idempotency store not initialised")

// Lookup returns the record for key when it exists and has not expired.
func (s *IdempotencyStore) Lookup(ctx context.Context, key string) (IdempotencyRecord, bool, error) {
	if s == nil {
		return IdempotencyRecord{}, false, ErrIdempotencyStoreNil
	}
	if key == "" {
		return IdempotencyRecord{}, false, nil
	}
	var rec IdempotencyRecord
	err := s.pool.QueryRow(ctx,
		`SELECT key, entity_type, entity_id, expires_at FROM idempotency_keys WHERE key = $1 AND expires_at > NOW()`,
		key,
	).Scan(&rec.Key, &rec.EntityType, &rec.EntityID, &rec.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return IdempotencyRecord{}, false, nil
		}
		return IdempotencyRecord{}, false, err
	}
	return rec, true, nil
}

// Remember persists the key after the entity has been applied. A concurrent
// insert of the same key is harmless: both callers applied the same upsert,
// so the uniqueness constraint resolves to DO NOTHING.
func (s *IdempotencyStore) Remember(ctx context.Context, key, entityType, entityID string) error {
	if s == nil {
		return ErrIdempotencyStoreNil
	}
	if key == "" {
		return errors.New("idempotency key required")
	}
	if entityType == "" || entityID == "" {
		return errors.New("idempotency entity type and id required")
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO idempotency_keys (key, entity_type, entity_id, expires_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (key) DO NOTHING`,
		key, entityType, entityID, time.Now().UTC().Add(s.ttl),
	)
	return err
}

// DeleteExpired purges keys past their expiry, returning the number removed.
// Invoked by the background cleanup job.
func (s *IdempotencyStore) DeleteExpired(ctx context.Context) (int64, error) {
	if s == nil {
		return 0, ErrIdempotencyStoreNil
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM idempotency_keys WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
