package identityd

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"
)

func newTestServer(t *testing.T, maxConns int) (*httptest.Server, *Store, *Broadcaster) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := NewStore()
	store.cost = bcrypt.MinCost
	b := NewBroadcaster(store, maxConns, time.Second, logger)
	srv := httptest.NewServer(NewServer(store, b, nil, logger).Handler())
	t.Cleanup(srv.Close)
	return srv, store, b
}

func post(t *testing.T, url, token string, body interface{}) int {
	t.Helper()
	var r io.Reader = http.NoBody
	if body != nil {
		data, _ := json.Marshal(body)
		r = bytes.NewReader(data)
	}
	req, _ := http.NewRequest(http.MethodPost, url, r)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readState(t *testing.T, conn *websocket.Conn) *User {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type    MessageType `json:"type"`
		Payload struct {
			User *User `json:"user"`
		} `json:"payload"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != MsgAuthState {
		t.Fatalf("type = %q, want auth_state", msg.Type)
	}
	return msg.Payload.User
}

func TestSecurityHeaders(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	securityHeaders(inner).ServeHTTP(rec, req)

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Cache-Control":          "no-store",
	}
	for header, expected := range want {
		if got := rec.Header().Get(header); got != expected {
			t.Errorf("header %s = %q, want %q", header, got, expected)
		}
	}
}

func TestAuthStateLifecycle(t *testing.T) {
	srv, _, _ := newTestServer(t, 0)
	conn := dial(t, srv, "phone")

	if u := readState(t, conn); u != nil {
		t.Fatalf("initial user = %+v, want nil", u)
	}

	creds := map[string]string{"email": "Ana@Medidas.io", "password": "pw", "displayName": "Ana"}
	if code := post(t, srv.URL+"/api/register", "phone", creds); code != http.StatusNoContent {
		t.Fatalf("register status = %d", code)
	}
	u := readState(t, conn)
	if u == nil || u.Email != "ana@medidas.io" || u.ID == "" {
		t.Fatalf("after register user = %+v", u)
	}

	if code := post(t, srv.URL+"/api/signout", "phone", nil); code != http.StatusNoContent {
		t.Fatalf("signout status = %d", code)
	}
	if u := readState(t, conn); u != nil {
		t.Fatalf("after signout user = %+v", u)
	}

	if code := post(t, srv.URL+"/api/signin", "phone", map[string]string{"email": "ana@medidas.io", "password": "bad"}); code != http.StatusUnauthorized {
		t.Errorf("bad signin status = %d", code)
	}
	if code := post(t, srv.URL+"/api/signin", "phone", map[string]string{"email": "ana@medidas.io", "password": "pw"}); code != http.StatusNoContent {
		t.Fatalf("signin status = %d", code)
	}
	if u := readState(t, conn); u == nil {
		t.Fatal("expected user after signin")
	}
}

func TestDevicesAreIsolated(t *testing.T) {
	srv, store, _ := newTestServer(t, 0)
	if _, err := store.Register("a@b.c", "pw", ""); err != nil {
		t.Fatal(err)
	}
	tablet := dial(t, srv, "tablet")
	readState(t, tablet)

	post(t, srv.URL+"/api/signin", "phone", map[string]string{"email": "a@b.c", "password": "pw"})

	tablet.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := tablet.ReadMessage(); err == nil {
		t.Error("tablet should not hear about the phone signing in")
	}
	if store.Current("tablet") != nil {
		t.Error("tablet must stay signed out")
	}
}

func TestRegisterConflictAndValidation(t *testing.T) {
	srv, _, _ := newTestServer(t, 0)
	creds := map[string]string{"email": "a@b.c", "password": "pw"}

	if code := post(t, srv.URL+"/api/register", "d", creds); code != http.StatusNoContent {
		t.Fatalf("first register = %d", code)
	}
	if code := post(t, srv.URL+"/api/register", "d", creds); code != http.StatusConflict {
		t.Errorf("duplicate register = %d, want 409", code)
	}
	if code := post(t, srv.URL+"/api/register", "d", map[string]string{"email": "x@y.z"}); code != http.StatusBadRequest {
		t.Errorf("missing password = %d, want 400", code)
	}
	if code := post(t, srv.URL+"/api/register", "", creds); code != http.StatusUnauthorized {
		t.Errorf("no device token = %d, want 401", code)
	}
}

func TestConnectionLimit(t *testing.T) {
	srv, _, b := newTestServer(t, 1)
	first := dial(t, srv, "a")
	readState(t, first)

	second := dial(t, srv, "b")
	second.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type MessageType `json:"type"`
	}
	if err := second.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != MsgError {
		t.Errorf("type = %q, want error", msg.Type)
	}
	if got := b.ClientCount(); got != 1 {
		t.Errorf("ClientCount() = %d, want 1", got)
	}
}

func TestCheckOrigin(t *testing.T) {
	s := NewServer(NewStore(), nil, nil, nil)
	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://localhost:3000", true},
		{"http://127.0.0.1:8090", true},
		{"https://evil.example", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "http://127.0.0.1:8090/ws", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		if got := s.checkOrigin(req); got != tt.want {
			t.Errorf("checkOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}

	restricted := NewServer(NewStore(), nil, []string{"https://app.medidas.io"}, nil)
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "https://app.medidas.io")
	if !restricted.checkOrigin(req) {
		t.Error("allowed origin rejected")
	}
}

func readSeq(t *testing.T, conn *websocket.Conn) (uint64, *User) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Seq     uint64 `json:"seq"`
		Payload struct {
			User *User `json:"user"`
		} `json:"payload"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg.Seq, msg.Payload.User
}

func TestConcurrentPublishesStayOrdered(t *testing.T) {
	srv, store, b := newTestServer(t, 0)
	u, err := store.Register("a@b.c", "pw", "")
	if err != nil {
		t.Fatal(err)
	}
	conn := dial(t, srv, "phone")
	last, _ := readSeq(t, conn)

	const publishers = 8
	var wg sync.WaitGroup
	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				store.Bind("phone", u)
			} else {
				store.Unbind("phone")
			}
			b.PublishAuthState("phone")
		}(i)
	}
	wg.Wait()
	store.Unbind("phone")
	b.PublishAuthState("phone")

	var user *User
	for i := 0; i < publishers+1; i++ {
		var seq uint64
		seq, user = readSeq(t, conn)
		if seq <= last {
			t.Fatalf("message %d seq = %d after %d", i, seq, last)
		}
		last = seq
	}
	if user != nil {
		t.Errorf("last state = %+v, want signed out", user)
	}
}
