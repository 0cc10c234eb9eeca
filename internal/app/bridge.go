package app

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/medidas/navshell/internal/identity"
	"github.com/medidas/navshell/internal/session"
)

const bridgeBuffer = 64

// authEventMsg carries one provider notification onto the UI loop.
type authEventMsg struct {
	gen int
	ev  session.Event
}

// loopBridge is the session.Source the resolver subscribes to. Provider
// callbacks arrive on arbitrary goroutines; they are queued here and handed
// to the resolver from Update, so every store write happens on the UI loop.
type loopBridge struct {
	provider identity.Provider
	events   chan authEventMsg
	done     chan struct{}
	stop     sync.Once

	mu       sync.Mutex
	gen      int
	onChange func(session.Event)
}

func newLoopBridge(p identity.Provider) *loopBridge {
	return &loopBridge{
		provider: p,
		events:   make(chan authEventMsg, bridgeBuffer),
		done:     make(chan struct{}),
	}
}

// Subscribe implements session.Source. The returned func releases the
// provider subscription before it returns.
func (b *loopBridge) Subscribe(onChange func(session.Event)) func() {
	b.mu.Lock()
	b.gen++
	gen := b.gen
	b.onChange = onChange
	b.mu.Unlock()

	released := make(chan struct{})
	unsub := b.provider.Subscribe(func(ev session.Event) {
		select {
		case b.events <- authEventMsg{gen: gen, ev: ev}:
		case <-released:
		case <-b.done:
		}
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			close(released)
			b.mu.Lock()
			if b.gen == gen {
				b.onChange = nil
			}
			b.mu.Unlock()
			unsub()
		})
	}
}

// Next waits for the next queued event. It follows the same one-read-per-
// command pattern as a websocket read loop: Update re-issues it after every
// authEventMsg.
func (b *loopBridge) Next() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.events:
			return msg
		case <-b.done:
			return nil
		}
	}
}

// Deliver hands msg to the current subscriber. Events from a released
// subscription are dropped.
func (b *loopBridge) Deliver(msg authEventMsg) bool {
	b.mu.Lock()
	fn := b.onChange
	current := msg.gen == b.gen
	b.mu.Unlock()

	if fn == nil || !current {
		return false
	}
	fn(msg.ev)
	return true
}

// Close unblocks Next and any provider callback still waiting to enqueue.
func (b *loopBridge) Close() {
	b.stop.Do(func() { close(b.done) })
}
