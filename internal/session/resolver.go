package session

import (
	"log/slog"
	"sync"
)

// Event is one notification from the identity provider. A nil Identity with
// a nil Err is the explicit absence marker.
type Event struct {
	Identity *Identity
	Err      error
}

// SignedIn builds an event carrying id.
func SignedIn(id Identity) Event {
	return Event{Identity: &id}
}

// SignedOut builds the absence marker.
func SignedOut() Event {
	return Event{}
}

// Failed builds a transport error event.
func Failed(err error) Event {
	return Event{Err: err}
}

// Source is the subscription side of an identity provider.
type Source interface {
	Subscribe(onChange func(Event)) (unsubscribe func())
}

// Resolver turns a Source's events into Store writes and owns the
// subscription lifetime.
type Resolver struct {
	store  *Store
	source Source
	logger *slog.Logger

	mu          sync.Mutex
	unsubscribe func()
	generation  int

	// writeMu spans the generation check and the store write, so once
	// Teardown has bumped the generation no event can still be writing.
	writeMu sync.Mutex
}

// NewResolver wires a resolver to store and source. A nil logger falls back
// to slog.Default().
func NewResolver(store *Store, source Source, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{store: store, source: source, logger: logger}
}

// Mount subscribes to the source. If a subscription is already active it is
// released first, so at most one listener exists at any time.
func (r *Resolver) Mount() {
	if old := r.retire(); old != nil {
		old()
	}

	r.mu.Lock()
	gen := r.generation
	r.mu.Unlock()

	unsub := r.source.Subscribe(func(ev Event) {
		r.deliver(gen, ev)
	})

	r.mu.Lock()
	r.unsubscribe = unsub
	r.mu.Unlock()
}

// Teardown releases the subscription. Events that arrive afterwards are
// dropped without touching the store, including ones already in flight on
// another goroutine when Teardown returns.
func (r *Resolver) Teardown() {
	if unsub := r.retire(); unsub != nil {
		unsub()
	}
}

// retire invalidates the current generation and hands back its unsubscribe
// func. The source is released outside the locks because it may wait for a
// callback that is blocked in deliver.
func (r *Resolver) retire() func() {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	unsub := r.unsubscribe
	r.unsubscribe = nil
	r.generation++
	return unsub
}

// Mounted reports whether a subscription is active.
func (r *Resolver) Mounted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unsubscribe != nil
}

func (r *Resolver) deliver(gen int, ev Event) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.mu.Lock()
	stale := gen != r.generation
	r.mu.Unlock()
	if stale {
		r.logger.Debug("dropping identity event after teardown")
		return
	}
	r.Handle(ev)
}

// Handle applies a single event to the store.
func (r *Resolver) Handle(ev Event) {
	if ev.Err != nil {
		r.logger.Error("identity subscription error", "err", ev.Err)
		return
	}

	next := Snapshot{Phase: PhaseResolved, Session: Absent()}
	if ev.Identity != nil {
		next.Session = Present(*ev.Identity)
	}
	if r.store.set(next) {
		r.logger.Info("session changed", "session", next.Session.String())
	}
}
