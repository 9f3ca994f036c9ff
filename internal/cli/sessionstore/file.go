// Package sessionstore provides the durable storage backends for the client session:
// a JSON file, the OS keychain, Redis, and process memory.
package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/recipebox-dev/recipebox/internal/session"
)

const sessionFileName = "session.json"

// FileStorage keeps the session in a JSON file readable only by the current user
type FileStorage struct {
	path   string
	logger zerolog.Logger
}

// NewFileStorage stores the session as session.json inside dir
func NewFileStorage(dir string, logger zerolog.Logger) *FileStorage {
	return &FileStorage{path: filepath.Join(dir, sessionFileName), logger: logger}
}

// Path returns the session file location
func (f *FileStorage) Path() string {
	return f.path
}

func (f *FileStorage) GetUser(ctx context.Context) (session.State, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return session.LoggedOut(), nil
	}
	if err != nil {
		return session.State{}, fmt.Errorf("failed to read session file: %w", err)
	}

	return decodeRecord(data, f.path, f.logger), nil
}

func (f *FileStorage) SaveUser(ctx context.Context, state session.State) error {
	if !state.Valid() {
		return session.ErrInvalidState
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	// Write then rename so a crash never leaves a truncated record behind
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

func (f *FileStorage) ClearUser(ctx context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
