package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/medidas/navshell/internal/session"
)

const (
	reconnectBaseDelay = 1 * time.Second
	reconnectMaxDelay  = 30 * time.Second
	writeTimeout       = 10 * time.Second
	pongTimeout        = 60 * time.Second
	pingInterval       = 30 * time.Second
)

// WSProvider streams auth state from identityd over a websocket and performs
// actions through an HTTPClient. Each Subscribe owns one connection loop.
type WSProvider struct {
	url    string
	token  string
	http   *HTTPClient
	dialer *websocket.Dialer
	logger *slog.Logger
}

// NewWSProvider creates a provider for the given websocket URL. The token
// identifies this device to identityd.
func NewWSProvider(url, token string, http *HTTPClient, logger *slog.Logger) *WSProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSProvider{
		url:    url,
		token:  token,
		http:   http,
		dialer: websocket.DefaultDialer,
		logger: logger,
	}
}

// Subscribe starts a connection loop that reports every auth_state message
// to onChange. Dial and read failures are reported as error events and the
// loop reconnects with backoff until unsubscribe is called.
func (p *WSProvider) Subscribe(onChange func(session.Event)) func() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	var connMu sync.Mutex
	var conn *websocket.Conn

	setConn := func(c *websocket.Conn) {
		connMu.Lock()
		conn = c
		connMu.Unlock()
	}

	go func() {
		defer close(done)
		delay := reconnectBaseDelay
		for {
			c, err := p.dial(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				onChange(session.Failed(fmt.Errorf("dial identity stream: %w", err)))
				p.logger.Warn("identity dial failed", "err", err, "retry", delay)
				select {
				case <-ctx.Done():
					return
				case <-time.After(delay):
				}
				delay = min(delay*2, reconnectMaxDelay)
				continue
			}
			delay = reconnectBaseDelay
			setConn(c)
			if ctx.Err() != nil {
				setConn(nil)
				c.Close()
				return
			}

			pingCtx, pingCancel := context.WithCancel(ctx)
			var writeMu sync.Mutex
			go pingLoop(pingCtx, c, &writeMu)

			err = p.readLoop(ctx, c, onChange)
			pingCancel()
			setConn(nil)
			c.Close()
			if ctx.Err() != nil {
				return
			}
			onChange(session.Failed(fmt.Errorf("identity stream closed: %w", err)))
		}
	}()

	return func() {
		cancel()
		connMu.Lock()
		if conn != nil {
			conn.Close()
		}
		connMu.Unlock()
		<-done
	}
}

func (p *WSProvider) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if p.token != "" {
		header.Set("Authorization", "Bearer "+p.token)
	}
	c, _, err := p.dialer.DialContext(ctx, p.url, header)
	return c, err
}

func (p *WSProvider) readLoop(ctx context.Context, c *websocket.Conn, onChange func(session.Event)) error {
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(pongTimeout))
	})
	c.SetReadDeadline(time.Now().Add(pongTimeout))

	var seq seqFilter
	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			p.logger.Debug("ignoring malformed identity message", "err", err)
			continue
		}
		if !seq.accept(msg) {
			p.logger.Debug("dropping stale auth state", "seq", msg.Seq, "last", seq.last)
			continue
		}
		if ev, ok := decode(msg); ok {
			onChange(ev)
		}
	}
}

// seqFilter drops auth_state messages that are not newer than the last one
// seen on the same connection. Unsequenced messages pass through.
type seqFilter struct {
	last uint64
}

func (f *seqFilter) accept(msg WSMessage) bool {
	if msg.Type != MsgAuthState || msg.Seq == 0 {
		return true
	}
	if msg.Seq <= f.last {
		return false
	}
	f.last = msg.Seq
	return true
}

// decode maps a wire message onto a session event.
func decode(msg WSMessage) (session.Event, bool) {
	switch msg.Type {
	case MsgAuthState:
		var p AuthStatePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return session.Failed(fmt.Errorf("decode auth_state: %w", err)), true
		}
		if p.User == nil || p.User.ID == "" {
			return session.SignedOut(), true
		}
		return session.SignedIn(*p.User), true
	case MsgError:
		var p ErrorPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil || p.Message == "" {
			return session.Failed(errors.New("identity server error")), true
		}
		return session.Failed(errors.New(p.Message)), true
	}
	return session.Event{}, false
}

// pingLoop keeps the connection alive until ctx is cancelled.
func pingLoop(ctx context.Context, c *websocket.Conn, writeMu *sync.Mutex) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			writeMu.Lock()
			c.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := c.WriteMessage(websocket.PingMessage, nil)
			writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// SignIn delegates to the HTTP client.
func (p *WSProvider) SignIn(ctx context.Context, email, password string) error {
	return p.http.SignIn(ctx, email, password)
}

// Register delegates to the HTTP client.
func (p *WSProvider) Register(ctx context.Context, c Credentials) error {
	return p.http.Register(ctx, c)
}

// SignOut delegates to the HTTP client.
func (p *WSProvider) SignOut(ctx context.Context) error {
	return p.http.SignOut(ctx)
}
