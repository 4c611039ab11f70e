package outbox

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
)

const (
	pendingKey = "outbox:pending"
	parkedKey  = "outbox:parked"
	entryKey   = "outbox:entry:"
)

// RedisStore persists the queue in Redis so it survives process restarts.
// Pending and parked ids live in lists; entry bodies live in their own keys.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs RedisStore.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Enqueue(ctx context.Context, e Entry) error {
	e.Status = StatusPending
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	exists, err := s.client.Exists(ctx, entryKey+e.ID).Result()
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, entryKey+e.ID, data, 0)
	if exists == 0 {
		pipe.RPush(ctx, pendingKey, e.ID)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) ListPending(ctx context.Context, limit int) ([]Entry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	ids, err := s.client.LRange(ctx, pendingKey, 0, stop).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		e, err := s.get(ctx, id)
		if err != nil {
			if errors.Is(err, ErrEntryNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *RedisStore) Ack(ctx context.Context, id string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.LRem(ctx, pendingKey, 0, id)
	pipe.LRem(ctx, parkedKey, 0, id)
	pipe.Del(ctx, entryKey+id)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Park(ctx context.Context, id, reason string) error {
	e, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	e.Status = StatusParked
	e.LastError = reason
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.LRem(ctx, pendingKey, 0, id)
	pipe.RPush(ctx, parkedKey, id)
	pipe.Set(ctx, entryKey+id, data, 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) MarkAttempt(ctx context.Context, id, reason string) error {
	e, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	e.Attempts++
	e.LastError = reason
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, entryKey+id, data, 0).Err()
}

func (s *RedisStore) ListParked(ctx context.Context) ([]Entry, error) {
	ids, err := s.client.LRange(ctx, parkedKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		e, err := s.get(ctx, id)
		if err != nil {
			if errors.Is(err, ErrEntryNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *RedisStore) get(ctx context.Context, id string) (Entry, error) {
	data, err := s.client.Get(ctx, entryKey+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, ErrEntryNotFound
		}
		return Entry{}, err
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, err
	}
	return e, nil
}
