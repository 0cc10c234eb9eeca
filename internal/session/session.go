// Package session holds the current authentication session of the shell and
// the resolver that feeds it from an identity provider's notification stream.
package session

import "sync"

// Identity is the opaque handle issued by the identity provider. The shell
// only compares it for equality; screens may display its fields.
type Identity struct {
	ID          string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// Session is either absent or present with an identity.
type Session struct {
	identity *Identity
}

// Absent returns the session value used when nobody is signed in.
func Absent() Session {
	return Session{}
}

// Present returns a session carrying a copy of id.
func Present(id Identity) Session {
	return Session{identity: &id}
}

// IsPresent reports whether an identity is attached.
func (s Session) IsPresent() bool {
	return s.identity != nil
}

// Identity returns the attached identity, if any.
func (s Session) Identity() (Identity, bool) {
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

// Equal compares two sessions by presence and identity.
func (s Session) Equal(o Session) bool {
	if s.identity == nil || o.identity == nil {
		return s.identity == nil && o.identity == nil
	}
	return *s.identity == *o.identity
}

func (s Session) String() string {
	if s.identity == nil {
		return "absent"
	}
	return "present(" + s.identity.ID + ")"
}

// Phase tracks whether the provider has answered at least once.
type Phase int

const (
	PhasePending Phase = iota
	PhaseResolved
)

func (p Phase) String() string {
	if p == PhaseResolved {
		return "resolved"
	}
	return "pending"
}

// Snapshot is the pair every reader re-evaluates on change.
type Snapshot struct {
	Phase   Phase
	Session Session
}

// Equal reports whether two snapshots describe the same state.
func (s Snapshot) Equal(o Snapshot) bool {
	return s.Phase == o.Phase && s.Session.Equal(o.Session)
}

// Store is the single holder of the current Snapshot. Only the Resolver in
// this package writes to it; everybody else reads Current or observes changes.
type Store struct {
	mu        sync.RWMutex
	snap      Snapshot
	observers map[int]func(Snapshot)
	nextID    int
}

// NewStore returns a store in the Pending phase with an absent session.
func NewStore() *Store {
	return &Store{
		snap:      Snapshot{Phase: PhasePending, Session: Absent()},
		observers: make(map[int]func(Snapshot)),
	}
}

// Current returns the latest snapshot.
func (s *Store) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Observe registers fn to be called after every write that changes the
// snapshot. The returned func removes the observer.
func (s *Store) Observe(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// set replaces the snapshot and notifies observers outside the lock.
// It reports whether the value changed.
func (s *Store) set(next Snapshot) bool {
	s.mu.Lock()
	if s.snap.Equal(next) {
		s.mu.Unlock()
		return false
	}
	s.snap = next
	fns := make([]func(Snapshot), 0, len(s.observers))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.observers[id]; ok {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
	return true
}
