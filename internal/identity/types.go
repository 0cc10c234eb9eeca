// Package identity provides clients for the identity provider: a websocket
// stream of auth state plus HTTP actions against identityd, and an
// in-memory provider for offline use. Wire types mirror
// internal/identityd without importing it.
package identity

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/medidas/navshell/internal/session"
)

var (
	ErrUnauthorized  = errors.New("identity: invalid credentials")
	ErrAccountExists = errors.New("identity: account already exists")
	ErrNotSignedIn   = errors.New("identity: not signed in")
)

// Provider is everything the shell consumes from an identity provider.
// Subscribe callbacks may arrive on any goroutine.
type Provider interface {
	session.Source
	SignIn(ctx context.Context, email, password string) error
	Register(ctx context.Context, c Credentials) error
	SignOut(ctx context.Context) error
}

// Credentials are submitted by the register screen.
type Credentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

// MessageType identifies the kind of websocket message.
type MessageType string

const (
	MsgAuthState MessageType = "auth_state"
	MsgError     MessageType = "error"
)

// WSMessage is the envelope for all websocket messages.
type WSMessage struct {
	Type    MessageType     `json:"type"`
	Seq     uint64          `json:"seq"`
	Payload json.RawMessage `json:"payload"`
}

// AuthStatePayload carries the current user, or null when signed out.
type AuthStatePayload struct {
	User *session.Identity `json:"user"`
}

// ErrorPayload is a server-side error description.
type ErrorPayload struct {
	Message string `json:"message"`
}
