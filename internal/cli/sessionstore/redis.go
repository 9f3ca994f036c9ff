package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/recipebox-dev/recipebox/internal/session"
)

// DefaultRedisTTL matches the server's default token lifetime. It is used only when the
// token carries no readable expiry.
const DefaultRedisTTL = 24 * time.Hour

// RedisStorage keeps the session in Redis so several machines (CI runners, dev boxes)
// can share one login
type RedisStorage struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisStorage creates a Redis-backed storage for the given server. Records expire
// with their token; ttl applies to tokens without an exp claim, and zero keeps those
// until logout.
func NewRedisStorage(client *redis.Client, serverURL string, ttl time.Duration, logger zerolog.Logger) *RedisStorage {
	return &RedisStorage{
		client: client,
		key:    "recipebox:session:" + serverURL,
		ttl:    ttl,
		logger: logger,
	}
}

func (r *RedisStorage) GetUser(ctx context.Context) (session.State, error) {
	val, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return session.LoggedOut(), nil
	}
	if err != nil {
		return session.State{}, fmt.Errorf("failed to load session from redis: %w", err)
	}

	return decodeRecord([]byte(val), "redis "+r.key, r.logger), nil
}

func (r *RedisStorage) SaveUser(ctx context.Context, state session.State) error {
	if !state.Valid() {
		return session.ErrInvalidState
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	return r.client.Set(ctx, r.key, data, r.expiry(state.Token)).Err()
}

// expiry is the time left on the token, read from its exp claim without verifying the
// signature. The client never holds the signing key.
func (r *RedisStorage) expiry(token string) time.Duration {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil || claims.ExpiresAt == nil {
		return r.ttl
	}

	left := time.Until(claims.ExpiresAt.Time)
	if left < time.Second {
		// already expired; keep it just long enough to read back
		return time.Second
	}
	return left
}

func (r *RedisStorage) ClearUser(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}

// Close releases the underlying client
func (r *RedisStorage) Close() error {
	return r.client.Close()
}
