// Package controls holds the client's user-triggered actions. Each control receives the
// capabilities it needs (store, navigator, API actions) when it is constructed.
package controls

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/recipebox-dev/recipebox/internal/nav"
	"github.com/recipebox-dev/recipebox/internal/session"
)

// Dispatcher accepts session intents
type Dispatcher interface {
	Dispatch(ctx context.Context, intent session.Intent) error
}

// Logout ends the session and sends the user to the login screen
type Logout struct {
	store     Dispatcher
	navigator nav.Navigator
	logger    zerolog.Logger

	// Revoke, if set, runs before the local logout to invalidate the token server-side.
	// Its failure is logged and does not stop the logout.
	Revoke func(ctx context.Context) error
}

// NewLogout creates the logout control
func NewLogout(store Dispatcher, navigator nav.Navigator, logger zerolog.Logger) *Logout {
	return &Logout{
		store:     store,
		navigator: navigator,
		logger:    logger,
	}
}

// Activate dispatches Logout and, once the dispatch has returned, navigates to the login
// screen. Navigation happens even when the persisted session could not be cleared; that
// failure is returned so the caller can report it.
func (l *Logout) Activate(ctx context.Context) error {
	if l.Revoke != nil {
		if err := l.Revoke(ctx); err != nil {
			l.logger.Warn().Err(err).Msg("Failed to revoke token on server")
		}
	}

	err := l.store.Dispatch(ctx, session.Logout{})
	l.navigator.Navigate(nav.PathLogin)
	return err
}
