package identity

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/medidas/navshell/internal/session"
)

// MemoryProvider is an in-process identity provider used by offline mode and
// tests. New subscribers immediately receive the current state.
type MemoryProvider struct {
	mu        sync.Mutex
	accounts  map[string]memoryAccount
	current   *session.Identity
	listeners map[int]func(session.Event)
	next      int

	subscribes   int
	unsubscribes int

	// SignOutErr, when set, is returned by SignOut without changing state.
	SignOutErr error
}

type memoryAccount struct {
	password string
	identity session.Identity
}

// NewMemoryProvider returns a provider with no accounts and nobody signed in.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		accounts:  make(map[string]memoryAccount),
		listeners: make(map[int]func(session.Event)),
	}
}

// Subscribe registers onChange and replays the current state to it.
func (m *MemoryProvider) Subscribe(onChange func(session.Event)) func() {
	m.mu.Lock()
	id := m.next
	m.next++
	m.listeners[id] = onChange
	m.subscribes++
	ev := m.eventLocked()
	m.mu.Unlock()

	onChange(ev)

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, id)
			m.unsubscribes++
			m.mu.Unlock()
		})
	}
}

// Counts returns the number of subscribe and unsubscribe calls so far.
func (m *MemoryProvider) Counts() (subscribes, unsubscribes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subscribes, m.unsubscribes
}

// Emit pushes an arbitrary event to every listener.
func (m *MemoryProvider) Emit(ev session.Event) {
	m.mu.Lock()
	if ev.Err == nil {
		m.current = ev.Identity
	}
	fns := m.listenersLocked()
	m.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// SignIn checks the password and broadcasts the signed-in identity.
func (m *MemoryProvider) SignIn(_ context.Context, email, password string) error {
	m.mu.Lock()
	acct, ok := m.accounts[email]
	if !ok || acct.password != password {
		m.mu.Unlock()
		return ErrUnauthorized
	}
	m.mu.Unlock()

	m.Emit(session.SignedIn(acct.identity))
	return nil
}

// Register creates an account and signs it in.
func (m *MemoryProvider) Register(_ context.Context, c Credentials) error {
	m.mu.Lock()
	if _, ok := m.accounts[c.Email]; ok {
		m.mu.Unlock()
		return ErrAccountExists
	}
	id := session.Identity{ID: uuid.NewString(), Email: c.Email, DisplayName: c.DisplayName}
	m.accounts[c.Email] = memoryAccount{password: c.Password, identity: id}
	m.mu.Unlock()

	m.Emit(session.SignedIn(id))
	return nil
}

// SignOut clears the current identity.
func (m *MemoryProvider) SignOut(_ context.Context) error {
	m.mu.Lock()
	if m.SignOutErr != nil {
		err := m.SignOutErr
		m.mu.Unlock()
		return err
	}
	if m.current == nil {
		m.mu.Unlock()
		return ErrNotSignedIn
	}
	m.mu.Unlock()

	m.Emit(session.SignedOut())
	return nil
}

func (m *MemoryProvider) eventLocked() session.Event {
	if m.current == nil {
		return session.SignedOut()
	}
	return session.SignedIn(*m.current)
}

func (m *MemoryProvider) listenersLocked() []func(session.Event) {
	fns := make([]func(session.Event), 0, len(m.listeners))
	for id := 0; id < m.next; id++ {
		if fn, ok := m.listeners[id]; ok {
			fns = append(fns, fn)
		}
	}
	return fns
}
