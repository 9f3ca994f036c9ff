package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/zalando/go-keyring"

	"github.com/recipebox-dev/recipebox/internal/session"
)

const keyringService = "recipebox-cli"

// KeyringStorage keeps the session record in the OS keychain/credential manager,
// one entry per server
type KeyringStorage struct {
	key    string
	logger zerolog.Logger
}

// NewKeyringStorage returns a keychain-backed storage for the given server
func NewKeyringStorage(serverURL string, logger zerolog.Logger) *KeyringStorage {
	return &KeyringStorage{key: fmt.Sprintf("session-%s", serverURL), logger: logger}
}

func (k *KeyringStorage) GetUser(ctx context.Context) (session.State, error) {
	secret, err := keyring.Get(keyringService, k.key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return session.LoggedOut(), nil
		}
		return session.State{}, fmt.Errorf("failed to load session from keyring: %w", err)
	}

	return decodeRecord([]byte(secret), "keyring "+k.key, k.logger), nil
}

func (k *KeyringStorage) SaveUser(ctx context.Context, state session.State) error {
	if !state.Valid() {
		return session.ErrInvalidState
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := keyring.Set(keyringService, k.key, string(data)); err != nil {
		return fmt.Errorf("failed to save session to keyring: %w", err)
	}
	return nil
}

func (k *KeyringStorage) ClearUser(ctx context.Context) error {
	if err := keyring.Delete(keyringService, k.key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete session from keyring: %w", err)
	}
	return nil
}
