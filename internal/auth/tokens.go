package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/lodgelist/lodgelist/internal/core"
)

// ErrTokenUnknown indicates an expired or revoked token.
var ErrTokenUnknown = errors.New("auth: unknown token")

// TokenManager stores bearer tokens in Redis, mapping each to the actor it
// authenticates.
type TokenManager struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

type tokenPayload struct {
	UserID      string   `json:"user_id"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// NewTokenManager constructs a TokenManager.
func NewTokenManager(client *redis.Client, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{client: client, prefix: "auth:token:", ttl: ttl}
}

// Issue creates a fresh token for the actor.
func (tm *TokenManager) Issue(ctx context.Context, actor core.Actor) (string, error) {
	token := uuid.NewString()
	payload, err := json.Marshal(tokenPayload{
		UserID:      actor.ID,
		Role:        string(actor.Role),
		Permissions: actor.Permissions,
	})
	if err != nil {
		return "", err
	}
	if err := tm.client.Set(ctx, tm.prefix+token, payload, tm.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve looks a token up and rebuilds the actor. The token TTL slides on
// every successful resolution.
func (tm *TokenManager) Resolve(ctx context.Context, token string) (core.Actor, error) {
	if token == "" {
		return core.Actor{}, ErrTokenUnknown
	}
	raw, err := tm.client.Get(ctx, tm.prefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return core.Actor{}, ErrTokenUnknown
		}
		return core.Actor{}, err
	}
	var payload tokenPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return core.Actor{}, err
	}
	_ = tm.client.Expire(ctx, tm.prefix+token, tm.ttl).Err()
	return core.Actor{
		ID:          payload.UserID,
		Role:        core.Role(payload.Role),
		Permissions: payload.Permissions,
	}, nil
}

// Revoke deletes a token.
func (tm *TokenManager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return tm.client.Del(ctx, tm.prefix+token).Err()
}
