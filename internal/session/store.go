package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Storage persists the session across process restarts
type Storage interface {
	// GetUser returns the persisted session, or the logged-out state if none exists
	GetUser(ctx context.Context) (State, error)
	// SaveUser persists a logged-in session
	SaveUser(ctx context.Context, state State) error
	// ClearUser erases the persisted session. Clearing an empty storage is not an error.
	ClearUser(ctx context.Context) error
}

// Listener is called with the new state after each transition
type Listener func(State)

// Store owns the in-memory session. Dispatches are serialized; reads may happen at any time,
// including from inside a Listener. A Listener must not call Dispatch.
type Store struct {
	storage Storage
	logger  zerolog.Logger

	dispatchMu sync.Mutex

	mu        sync.RWMutex
	state     State
	listeners map[int]Listener
	nextID    int
}

// NewStore creates a store whose initial state is read from storage
func NewStore(ctx context.Context, storage Storage, logger zerolog.Logger) (*Store, error) {
	initial, err := storage.GetUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read persisted session: %w", err)
	}

	return &Store{
		storage:   storage,
		logger:    logger,
		state:     initial,
		listeners: make(map[int]Listener),
	}, nil
}

// State returns the current session
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch applies intent and notifies listeners. The state always transitions; an error
// means the durable side effect of the intent did not complete.
func (s *Store) Dispatch(ctx context.Context, intent Intent) error {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	prior := s.State()
	next, err := Reduce(ctx, s.storage, prior, intent)
	if err != nil {
		s.logger.Warn().Err(err).Str("intent", typeOf(intent)).Msg("Session side effect failed")
	}

	s.mu.Lock()
	s.state = next
	listeners := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if l, ok := s.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	if _, unknown := intent.(Unknown); unknown || intent == nil {
		return err
	}

	s.logger.Debug().
		Str("intent", intent.Type()).
		Bool("logged_in", next.IsLoggedIn()).
		Msg("Session updated")

	for _, l := range listeners {
		l(next)
	}

	return err
}

// Subscribe registers l for state changes and returns a function that removes it
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Login persists state and then makes it the current session
func (s *Store) Login(ctx context.Context, state State) error {
	if !state.IsLoggedIn() || !state.Valid() {
		return fmt.Errorf("%w: login requires token, name, email and user id", ErrInvalidState)
	}
	if err := s.storage.SaveUser(ctx, state); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return s.Dispatch(ctx, Login{Payload: state})
}

func typeOf(intent Intent) string {
	if intent == nil {
		return ""
	}
	return intent.Type()
}
