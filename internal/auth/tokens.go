package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/botica-pos/botica/internal/shared"
)

// TokenManager issues and resolves opaque bearer tokens backed by Redis.
// Tokens are random uuids; revocation is a key delete and expiry rides on
// the Redis TTL.
type TokenManager struct {
	client *redis.Client
	ttl    time.Duration
}

type tokenPayload struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// NewTokenManager constructs a TokenManager.
func NewTokenManager(client *redis.Client, ttl time.Duration) *TokenManager {
	return &TokenManager{client: client, ttl: ttl}
}

// Issue creates a token for the user and stores its identity.
func (tm *TokenManager) Issue(ctx context.Context, u User) (string, error) {
	token := uuid.NewString()
	data, err := json.Marshal(tokenPayload{UserID: u.ID, Role: u.Role})
	if err != nil {
		return "", err
	}
	if err := tm.client.Set(ctx, tm.redisKey(token), data, tm.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve maps a token back to the caller identity, refreshing the TTL so
// active devices stay signed in.
func (tm *TokenManager) Resolve(ctx context.Context, token string) (shared.Identity, error) {
	if token == "" {
		return shared.Identity{}, ErrTokenInvalid
	}
	data, err := tm.client.Get(ctx, tm.redisKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return shared.Identity{}, ErrTokenInvalid
		}
		return shared.Identity{}, err
	}
	var payload tokenPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return shared.Identity{}, ErrTokenInvalid
	}
	_ = tm.client.Expire(ctx, tm.redisKey(token), tm.ttl).Err()
	return shared.Identity{UserID: payload.UserID, Role: payload.Role}, nil
}

// Revoke invalidates a token. Revoking an unknown token is a no-op.
func (tm *TokenManager) Revoke(ctx context.Context, token string) error {
	err := tm.client.Del(ctx, tm.redisKey(token)).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// TTL exposes the configured token lifetime.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

func (tm *TokenManager) redisKey(token string) string {
	return "token:" + token
}
