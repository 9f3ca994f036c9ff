// Package session holds the client-side session state: who is logged in and with which
// token. State changes only through intents dispatched to a Store.
package session

import (
	"encoding/json"
	"fmt"
)

// State is the current user's session. The zero value is the logged-out state.
// A valid State has either all fields set or none of them.
type State struct {
	Token  string
	Name   string
	Email  string
	UserID int64
}

// LoggedOut returns the canonical logged-out state
func LoggedOut() State {
	return State{}
}

// IsLoggedIn reports whether the state carries a token
func (s State) IsLoggedIn() bool {
	return s.Token != ""
}

// Valid reports whether the all-or-none invariant holds
func (s State) Valid() bool {
	if s == (State{}) {
		return true
	}
	return s.Token != "" && s.Name != "" && s.Email != "" && s.UserID != 0
}

// wireState is the JSON shape, where absent fields are null
type wireState struct {
	Token  *string `json:"token"`
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	UserID *int64  `json:"userId"`
}

// MarshalJSON encodes the logged-out state as all-null fields
func (s State) MarshalJSON() ([]byte, error) {
	if !s.IsLoggedIn() {
		return json.Marshal(wireState{})
	}
	return json.Marshal(wireState{
		Token:  &s.Token,
		Name:   &s.Name,
		Email:  &s.Email,
		UserID: &s.UserID,
	})
}

// UnmarshalJSON decodes a session record. Partial records are rejected.
func (s *State) UnmarshalJSON(data []byte) error {
	var w wireState
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	var decoded State
	if w.Token != nil {
		decoded.Token = *w.Token
	}
	if w.Name != nil {
		decoded.Name = *w.Name
	}
	if w.Email != nil {
		decoded.Email = *w.Email
	}
	if w.UserID != nil {
		decoded.UserID = *w.UserID
	}

	if !decoded.Valid() {
		return fmt.Errorf("%w: partial session record", ErrInvalidState)
	}

	*s = decoded
	return nil
}
