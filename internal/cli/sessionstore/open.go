package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/recipebox-dev/recipebox/internal/cli/userconfig"
	"github.com/recipebox-dev/recipebox/internal/session"
)

// Open returns the storage backend selected in the user config. The returned close
// function releases any connection the backend holds.
func Open(cfg *userconfig.UserConfig, logger zerolog.Logger) (session.Storage, func() error, error) {
	noop := func() error { return nil }

	switch cfg.SessionBackend {
	case "", userconfig.BackendFile:
		dir, err := userconfig.Dir()
		if err != nil {
			return nil, nil, err
		}
		return NewFileStorage(dir, logger), noop, nil

	case userconfig.BackendKeyring:
		return NewKeyringStorage(cfg.ServerURL, logger), noop, nil

	case userconfig.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddress, err)
		}

		storage := NewRedisStorage(client, cfg.ServerURL, DefaultRedisTTL, logger)
		return storage, storage.Close, nil

	case userconfig.BackendMemory:
		return NewMemoryStorage(), noop, nil

	default:
		return nil, nil, fmt.Errorf("unknown session backend '%s'", cfg.SessionBackend)
	}
}

// decodeRecord parses a persisted session. A record that cannot be parsed, or breaks the
// all-or-none rule, reads as logged out so the next logout can clear it.
func decodeRecord(data []byte, source string, logger zerolog.Logger) session.State {
	var state session.State
	if err := json.Unmarshal(data, &state); err != nil {
		logger.Warn().Err(err).Str("source", source).Msg("Ignoring unreadable session record")
		return session.LoggedOut()
	}
	return state
}

// MemoryStorage keeps the session for the lifetime of the process
type MemoryStorage struct {
	mu    sync.Mutex
	state session.State
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) GetUser(ctx context.Context) (session.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, nil
}

func (m *MemoryStorage) SaveUser(ctx context.Context, state session.State) error {
	if !state.Valid() {
		return session.ErrInvalidState
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	return nil
}

func (m *MemoryStorage) ClearUser(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = session.LoggedOut()
	return nil
}
