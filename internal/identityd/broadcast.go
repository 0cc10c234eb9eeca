package identityd

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrTooManyConnections is returned by AddClient when the limit is reached.
var ErrTooManyConnections = errors.New("too many websocket connections")

type MessageType string

const (
	MsgAuthState MessageType = "auth_state"
	MsgError     MessageType = "error"
)

type WSMessage struct {
	Type    MessageType `json:"type"`
	Seq     uint64      `json:"seq"`
	Payload interface{} `json:"payload"`
}

type AuthStatePayload struct {
	User *User `json:"user"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type client struct {
	conn        *websocket.Conn
	device      string
	send        chan []byte
	sendTimeout time.Duration
	closeOnce   sync.Once
}

func newClient(conn *websocket.Conn, device string, sendTimeout time.Duration) *client {
	c := &client{
		conn:        conn,
		device:      device,
		send:        make(chan []byte, 16),
		sendTimeout: sendTimeout,
	}
	go c.writePump()
	return c
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if c.sendTimeout > 0 {
			c.conn.SetWriteDeadline(time.Now().Add(c.sendTimeout))
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() { close(c.send) })
}

// Broadcaster fans auth state out to every connection of a device.
type Broadcaster struct {
	mu          sync.RWMutex
	clients     map[*client]bool
	store       *Store
	maxConns    int
	sendTimeout time.Duration
	seq         uint64
	logger      *slog.Logger
}

func NewBroadcaster(store *Store, maxConns int, sendTimeout time.Duration, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		clients:     make(map[*client]bool),
		store:       store,
		maxConns:    maxConns,
		sendTimeout: sendTimeout,
		logger:      logger,
	}
}

// AddClient registers conn for device and queues the current auth state.
// The state is read and queued under the same lock that publishes use, so
// the first message is never older than one already fanned out.
func (b *Broadcaster) AddClient(conn *websocket.Conn, device string) (*client, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.maxConns > 0 && len(b.clients) >= b.maxConns {
		return nil, ErrTooManyConnections
	}
	data, err := b.encode(MsgAuthState, AuthStatePayload{User: b.store.Current(device)})
	if err != nil {
		return nil, err
	}
	c := newClient(conn, device, b.sendTimeout)
	b.clients[c] = true
	c.send <- data
	return c, nil
}

func (b *Broadcaster) RemoveClient(c *client) {
	b.mu.Lock()
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		c.close()
	}
	b.mu.Unlock()
}

// PublishAuthState sends device's current user to all of its connections.
// Reading the store, numbering and queueing happen under one lock so
// concurrent publishes reach every client in sequence order.
func (b *Broadcaster) PublishAuthState(device string) {
	var slow []*client
	b.mu.Lock()
	data, err := b.encode(MsgAuthState, AuthStatePayload{User: b.store.Current(device)})
	if err != nil {
		b.mu.Unlock()
		b.logger.Error("broadcast marshal error", "err", err)
		return
	}
	for c := range b.clients {
		if c.device != device {
			continue
		}
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	b.mu.Unlock()

	for _, c := range slow {
		b.logger.Warn("ws client too slow, disconnecting", "device", device)
		b.RemoveClient(c)
	}
}

// encode numbers and marshals a message. Callers hold b.mu.
func (b *Broadcaster) encode(t MessageType, payload interface{}) ([]byte, error) {
	b.seq++
	return json.Marshal(WSMessage{Type: t, Seq: b.seq, Payload: payload})
}

func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}
