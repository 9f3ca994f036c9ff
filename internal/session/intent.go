package session

import (
	"encoding/json"
	"errors"
)

// Intent type names as they appear on the wire
const (
	TypeLogin  = "LOGIN"
	TypeLogout = "LOGOUT"
)

var (
	ErrInvalidState = errors.New("invalid session state")
)

// Intent is a request to change the session. The set of implementations is closed:
// Login, Logout and Unknown.
type Intent interface {
	Type() string
	isIntent()
}

// Login replaces the session with Payload
type Login struct {
	Payload State
}

// Logout clears the persisted session and resets to the logged-out state
type Logout struct{}

// Unknown is any intent the reducer does not act on
type Unknown struct {
	Name string
}

func (Login) Type() string { return TypeLogin }
func (Logout) Type() string { return TypeLogout }
func (u Unknown) Type() string { return u.Name }

func (Login) isIntent() {}
func (Logout) isIntent() {}
func (Unknown) isIntent() {}

// DecodeIntent turns an untyped {type, payload} message into an Intent.
// A LOGIN whose payload is missing, malformed or partial decodes to Unknown.
func DecodeIntent(intentType string, payload json.RawMessage) Intent {
	switch intentType {
	case TypeLogin:
		if len(payload) == 0 {
			return Unknown{Name: intentType}
		}
		var state State
		if err := json.Unmarshal(payload, &state); err != nil {
			return Unknown{Name: intentType}
		}
		if !state.IsLoggedIn() {
			return Unknown{Name: intentType}
		}
		return Login{Payload: state}
	case TypeLogout:
		return Logout{}
	default:
		return Unknown{Name: intentType}
	}
}
