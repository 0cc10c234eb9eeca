// Package identityd is a small identity provider for running navshell end to
// end. Accounts live in memory; each device token is bound to at most one
// signed-in user and every websocket of that device hears about changes.
package identityd

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidAccount     = errors.New("email and password are required")
)

// User mirrors session.Identity on the wire.
type User struct {
	ID          string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

type account struct {
	hash []byte
	user User
}

type Store struct {
	mu       sync.RWMutex
	accounts map[string]account
	devices  map[string]User
	cost     int
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[string]account),
		devices:  make(map[string]User),
		cost:     bcrypt.DefaultCost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and returns its user.
func (s *Store) Register(email, password, displayName string) (User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return User{}, ErrInvalidAccount
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[email]; ok {
		return User{}, ErrAccountExists
	}
	u := User{ID: uuid.NewString(), Email: email, DisplayName: displayName}
	s.accounts[email] = account{hash: hash, user: u}
	return u, nil
}

// Authenticate checks credentials.
func (s *Store) Authenticate(email, password string) (User, error) {
	s.mu.RLock()
	acct, ok := s.accounts[normalizeEmail(email)]
	s.mu.RUnlock()
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return acct.user, nil
}

// Bind signs user in on device.
func (s *Store) Bind(device string, u User) {
	s.mu.Lock()
	s.devices[device] = u
	s.mu.Unlock()
}

// Unbind signs device out. It reports whether anyone was signed in.
func (s *Store) Unbind(device string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.devices[device]; !ok {
		return false
	}
	delete(s.devices, device)
	return true
}

// Current returns the user signed in on device, or nil.
func (s *Store) Current(device string) *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.devices[device]
	if !ok {
		return nil
	}
	copy := u
	return &copy
}
