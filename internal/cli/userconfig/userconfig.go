package userconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	configDirName  = "recipebox"
	configFileName = "config.json"

	// DefaultServerURL is used until `recipebox use <url>` is run
	DefaultServerURL = "http://localhost:8080"
)

// Session backends accepted in SessionBackend
const (
	BackendFile    = "file"
	BackendKeyring = "keyring"
	BackendRedis   = "redis"
	BackendMemory  = "memory"
)

// UserConfig represents the user's local configuration stored in ~/.config/recipebox/config.json
type UserConfig struct {
	ServerURL      string `json:"server_url"`
	SessionBackend string `json:"session_backend,omitempty"`
	RedisAddress   string `json:"redis_address,omitempty"`
}

// Dir returns the recipebox configuration directory. RECIPEBOX_CONFIG_DIR overrides it.
func Dir() (string, error) {
	if dir := os.Getenv("RECIPEBOX_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", configDirName), nil
}

// GetConfigPath returns the path to the user config file
func GetConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads the user configuration file, applying defaults and RECIPEBOX_* overrides
func Load() (*UserConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	var cfg UserConfig

	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
		// No config yet
	case err != nil:
		return nil, fmt.Errorf("failed to read user config file: %w", err)
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse user config file: %w", err)
		}
	}

	if v := os.Getenv("RECIPEBOX_SERVER"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("RECIPEBOX_SESSION_BACKEND"); v != "" {
		cfg.SessionBackend = v
	}
	if v := os.Getenv("RECIPEBOX_REDIS_ADDRESS"); v != "" {
		cfg.RedisAddress = v
	}

	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	if cfg.SessionBackend == "" {
		cfg.SessionBackend = BackendFile
	}
	if cfg.RedisAddress == "" {
		cfg.RedisAddress = "localhost:6379"
	}

	return &cfg, nil
}

// Save writes the user configuration to a file
func Save(cfg *UserConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}

	return nil
}

// SetServer updates the server URL (and optionally the session backend) and saves the config
func SetServer(serverURL, backend string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	switch backend {
	case "", BackendFile, BackendKeyring, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unknown session backend '%s' (use file, keyring, redis or memory)", backend)
	}

	cfg.ServerURL = strings.TrimRight(serverURL, "/")
	if backend != "" {
		cfg.SessionBackend = backend
	}
	return Save(cfg)
}
