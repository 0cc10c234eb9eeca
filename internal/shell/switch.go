// Package shell decides which navigation tree is mounted for the current
// session and owns the mounted navigator.
package shell

import (
	"log/slog"

	"github.com/medidas/navshell/internal/nav"
	"github.com/medidas/navshell/internal/session"
)

// State is the root switch state.
type State int

const (
	StatePending State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "pending"
	}
}

// Decide maps a session snapshot onto a switch state.
func Decide(snap session.Snapshot) State {
	switch {
	case snap.Phase == session.PhasePending:
		return StatePending
	case snap.Session.IsPresent():
		return StateAuthenticated
	default:
		return StateUnauthenticated
	}
}

// Switch mounts exactly one tree for the current state. It re-evaluates
// synchronously on every store change.
type Switch struct {
	store  *session.Store
	topo   nav.Topology
	logger *slog.Logger

	state    State
	session  session.Session
	mounted  *nav.Navigator
	mounts   int
	onChange func(State)
	cancel   func()
}

// New creates a switch over store, evaluates the current snapshot and starts
// observing changes.
func New(store *session.Store, topo nav.Topology, logger *slog.Logger) *Switch {
	if logger == nil {
		logger = slog.Default()
	}
	sw := &Switch{store: store, topo: topo, logger: logger, state: StatePending}
	sw.evaluate(store.Current())
	sw.cancel = store.Observe(sw.evaluate)
	return sw
}

// OnChange registers fn to be called after every remount.
func (sw *Switch) OnChange(fn func(State)) {
	sw.onChange = fn
}

func (sw *Switch) evaluate(snap session.Snapshot) {
	next := Decide(snap)
	if next == sw.state && snap.Session.Equal(sw.session) && (next == StatePending || sw.mounted != nil) {
		return
	}

	prev := sw.state
	sw.state = next
	sw.session = snap.Session
	sw.mounted = nil

	switch next {
	case StateUnauthenticated:
		sw.mounted = nav.Mount(sw.topo.Unauthenticated)
	case StateAuthenticated:
		sw.mounted = nav.Mount(sw.topo.Authenticated)
	}
	if sw.mounted != nil {
		sw.mounts++
	}

	sw.logger.Info("root switch", "from", prev.String(), "to", next.String(), "mounts", sw.mounts)
	if sw.onChange != nil {
		sw.onChange(next)
	}
}

// State returns the current switch state.
func (sw *Switch) State() State {
	return sw.state
}

// Session returns the session the current tree was mounted for.
func (sw *Switch) Session() session.Session {
	return sw.session
}

// Mounted returns the active navigator, or nil while pending.
func (sw *Switch) Mounted() *nav.Navigator {
	return sw.mounted
}

// Mounts counts how many trees have been mounted so far.
func (sw *Switch) Mounts() int {
	return sw.mounts
}

// Close stops observing the store.
func (sw *Switch) Close() {
	if sw.cancel != nil {
		sw.cancel()
		sw.cancel = nil
	}
}
