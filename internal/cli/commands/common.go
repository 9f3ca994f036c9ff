package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/recipebox-dev/recipebox/internal/cli/client"
	"github.com/recipebox-dev/recipebox/internal/cli/sessionstore"
	"github.com/recipebox-dev/recipebox/internal/cli/userconfig"
	"github.com/recipebox-dev/recipebox/internal/logger"
	"github.com/recipebox-dev/recipebox/internal/session"
)

// Globals are the root command's persistent flags
type Globals struct {
	// Ephemeral keeps the session in memory for this invocation only
	Ephemeral bool
}

var errNotLoggedIn = errors.New("not logged in. Run 'recipebox login' first")

// app is what every command works with: one session store built from the configured
// backend and an API client whose token comes from that store.
type app struct {
	cfg     *userconfig.UserConfig
	store   *session.Store
	api     *client.Client
	logger  zerolog.Logger
	closeFn func() error
}

// openApp loads the user config, opens the session backend and restores the session
func openApp(ctx context.Context, g *Globals) (*app, error) {
	cfg, err := userconfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if g != nil && g.Ephemeral {
		cfg.SessionBackend = userconfig.BackendMemory
	}

	log := logger.NewCLI()

	storage, closeFn, err := sessionstore.Open(cfg, log)
	if err != nil {
		return nil, err
	}

	store, err := session.NewStore(ctx, storage, log)
	if err != nil {
		_ = closeFn()
		return nil, err
	}

	return &app{
		cfg:     cfg,
		store:   store,
		api:     client.New(cfg.ServerURL, func() string { return store.State().Token }),
		logger:  log,
		closeFn: closeFn,
	}, nil
}

func (a *app) Close() {
	if err := a.closeFn(); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to close session backend")
	}
}

func (a *app) requireLogin() (session.State, error) {
	state := a.store.State()
	if !state.IsLoggedIn() {
		return state, errNotLoggedIn
	}
	return state, nil
}

// withApp opens the app for the duration of fn
func withApp(ctx context.Context, g *Globals, fn func(a *app) error) error {
	a, err := openApp(ctx, g)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(a)
}
