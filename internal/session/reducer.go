package session

import (
	"context"
	"fmt"
)

// Clearer erases the persisted session
type Clearer interface {
	ClearUser(ctx context.Context) error
}

// Reduce computes the state that follows prior once intent is applied.
//
// The returned State is always the correct next state. A non-nil error only reports that
// the durable clear of a Logout failed; the in-memory state is logged out regardless.
func Reduce(ctx context.Context, clearer Clearer, prior State, intent Intent) (State, error) {
	switch in := intent.(type) {
	case Login:
		return in.Payload, nil
	case Logout:
		if err := clearer.ClearUser(ctx); err != nil {
			return LoggedOut(), fmt.Errorf("failed to clear persisted session: %w", err)
		}
		return LoggedOut(), nil
	case Unknown:
		return prior, nil
	}

	// nil intent
	return prior, nil
}
