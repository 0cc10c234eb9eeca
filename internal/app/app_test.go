package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medidas/navshell/internal/identity"
	"github.com/medidas/navshell/internal/nav"
	"github.com/medidas/navshell/internal/session"
	"github.com/medidas/navshell/internal/shell"
	"github.com/medidas/navshell/internal/views/debug"
	"github.com/medidas/navshell/internal/views/drawer"
	"github.com/medidas/navshell/internal/views/screen"
)

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// drain applies every queued provider event, the way the Next command
// would on a running program.
func drain(m Model) Model {
	for {
		select {
		case msg := <-m.bridge.events:
			m, _ = update(m, msg)
		default:
			return m
		}
	}
}

func keyMsg(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newModel(t *testing.T, p identity.Provider) (Model, *bytes.Buffer) {
	t.Helper()
	logs := &bytes.Buffer{}
	m := New(p, Options{
		Logger:         slog.New(slog.NewTextHandler(logs, nil)),
		SignOutTimeout: time.Second,
		GlamourStyle:   "notty",
	})
	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, logs
}

func focused(m Model) string {
	return m.Navigator().Focused().Route.Name
}

func TestSessionScenario(t *testing.T) {
	p := identity.NewMemoryProvider()
	m, _ := newModel(t, p)

	assert.Equal(t, shell.StatePending, m.State())
	assert.Contains(t, m.View(), "Comprobando sesión")

	m.Init()
	m = drain(m)
	require.Equal(t, shell.StateUnauthenticated, m.State())
	assert.Equal(t, nav.RouteLogin, focused(m))

	m, _ = update(m, screen.NavigateMsg{Route: nav.RouteRegister})
	assert.Equal(t, nav.RouteRegister, focused(m))

	require.NoError(t, p.Register(context.Background(), identity.Credentials{Email: "ana@medidas.io", Password: "pw", DisplayName: "Ana"}))
	m = drain(m)
	require.Equal(t, shell.StateAuthenticated, m.State())
	assert.Equal(t, []string{nav.RoutePrincipal, nav.RouteTab, nav.RouteHome}, m.Navigator().ActivePath())
	assert.Contains(t, m.View(), "Ana")

	m, _ = update(m, screen.NavigateMsg{Route: nav.RouteDatos})
	m, _ = update(m, screen.NavigateMsg{Route: nav.RouteCamera})
	assert.Equal(t, []string{nav.RoutePrincipal, nav.RouteCamera}, m.Navigator().ActivePath())

	m, cmd := update(m, keyMsg(tea.KeyCtrlX))
	require.NotNil(t, cmd)
	assert.Nil(t, cmd(), "successful sign out reports nothing")
	m = drain(m)

	require.Equal(t, shell.StateUnauthenticated, m.State())
	assert.Equal(t, nav.RouteLogin, focused(m), "fresh mount starts at Login, not Register")
	assert.False(t, m.Navigator().CanGoBack())
	assert.Equal(t, 3, m.sw.Mounts())
	assert.Len(t, m.screens, 1)
}

func TestSubscriptionParity(t *testing.T) {
	p := identity.NewMemoryProvider()
	m, _ := newModel(t, p)

	m.Init()
	m = drain(m)
	require.NoError(t, p.Register(context.Background(), identity.Credentials{Email: "a@b.c", Password: "pw"}))
	m = drain(m)
	require.NoError(t, p.SignOut(context.Background()))
	m = drain(m)

	subs, unsubs := p.Counts()
	assert.Equal(t, 1, subs, "session changes must not resubscribe")
	assert.Equal(t, 0, unsubs)

	m.Close()
	subs, unsubs = p.Counts()
	assert.Equal(t, 1, subs)
	assert.Equal(t, 1, unsubs)
}

func TestIdenticalNotificationDoesNotRemount(t *testing.T) {
	p := identity.NewMemoryProvider()
	m, _ := newModel(t, p)
	m.Init()
	require.NoError(t, p.Register(context.Background(), identity.Credentials{Email: "a@b.c", Password: "pw"}))
	m = drain(m)

	nv := m.Navigator()
	m, _ = update(m, screen.NavigateMsg{Route: nav.RouteInformes})
	id, _ := m.sw.Session().Identity()

	p.Emit(session.SignedIn(id))
	m = drain(m)
	assert.Same(t, nv, m.Navigator())
	assert.Equal(t, nav.RouteInformes, focused(m), "history survives an identical notification")
	assert.Equal(t, 2, m.sw.Mounts())
}

func TestSignOutFailureKeepsSession(t *testing.T) {
	p := identity.NewMemoryProvider()
	m, logs := newModel(t, p)
	m.Init()
	require.NoError(t, p.Register(context.Background(), identity.Credentials{Email: "a@b.c", Password: "pw"}))
	m = drain(m)

	p.SignOutErr = errors.New("network down")
	m, cmd := update(m, keyMsg(tea.KeyCtrlX))
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, signOutFailedMsg{}, msg)
	m, _ = update(m, msg)
	m = drain(m)

	assert.Equal(t, shell.StateAuthenticated, m.State())
	assert.Equal(t, 2, m.sw.Mounts())
	assert.Contains(t, logs.String(), "sign out failed")
	assert.Contains(t, logs.String(), "network down")
	assert.Equal(t, 1, m.debug.Count(debug.KindErr))
}

func TestSignOutIgnoredWhenSignedOut(t *testing.T) {
	m, _ := newModel(t, identity.NewMemoryProvider())
	m.Init()
	m = drain(m)

	assert.False(t, m.keys.SignOut.Enabled())
	assert.False(t, m.keys.Drawer.Enabled())
	assert.Nil(t, m.signOut(), "sign out is only offered inside the authenticated tree")
}

func TestTabKeys(t *testing.T) {
	p := identity.NewMemoryProvider()
	m, _ := newModel(t, p)
	m.Init()
	require.NoError(t, p.Register(context.Background(), identity.Credentials{Email: "a@b.c", Password: "pw"}))
	m = drain(m)

	m, _ = update(m, runes("1"))
	assert.Equal(t, nav.RouteMenu, focused(m))
	assert.Contains(t, m.View(), "Administrar datos")

	m, _ = update(m, keyMsg(tea.KeyTab))
	assert.Equal(t, nav.RouteHome, focused(m))

	m, _ = update(m, keyMsg(tea.KeyShiftTab))
	assert.Equal(t, nav.RouteMenu, focused(m))

	m, _ = update(m, runes("3"))
	assert.Equal(t, nav.RouteInformes, focused(m))

	m, _ = update(m, keyMsg(tea.KeyEsc))
	assert.Equal(t, nav.RouteHome, focused(m), "back on tabs returns to the initial tab")
}

func TestDrawerSignOut(t *testing.T) {
	p := identity.NewMemoryProvider()
	m, _ := newModel(t, p)
	m.Init()
	require.NoError(t, p.Register(context.Background(), identity.Credentials{Email: "a@b.c", Password: "pw"}))
	m = drain(m)

	m, _ = update(m, keyMsg(tea.KeyCtrlO))
	require.True(t, m.Navigator().DrawerOpen())
	assert.Contains(t, m.View(), "Sign Out")

	m, _ = update(m, keyMsg(tea.KeyUp))
	m, cmd := update(m, keyMsg(tea.KeyEnter))
	require.NotNil(t, cmd)
	sel, ok := cmd().(drawer.SelectedMsg)
	require.True(t, ok)
	require.True(t, sel.Item.SignOut)

	m, cmd = update(m, sel)
	require.NotNil(t, cmd)
	assert.False(t, m.Navigator().DrawerOpen())
	cmd()
	m = drain(m)
	assert.Equal(t, shell.StateUnauthenticated, m.State())
}

func TestDrawerNavigatesToUser(t *testing.T) {
	p := identity.NewMemoryProvider()
	m, _ := newModel(t, p)
	m.Init()
	require.NoError(t, p.Register(context.Background(), identity.Credentials{Email: "ana@medidas.io", Password: "pw"}))
	m = drain(m)

	m, _ = update(m, drawer.SelectedMsg{Item: drawer.Item{Route: nav.RouteAjustes}})
	assert.Equal(t, []string{nav.RouteAjustes}, m.Navigator().ActivePath())

	m, _ = update(m, drawer.SelectedMsg{Item: drawer.Item{Route: nav.RouteUser}})
	assert.Equal(t, []string{nav.RoutePrincipal, nav.RouteUser}, m.Navigator().ActivePath())
	v := m.View()
	assert.Contains(t, v, "Usuario")
	assert.Contains(t, v, "ana@medidas.io")

	m, _ = update(m, keyMsg(tea.KeyEsc))
	assert.Equal(t, nav.RouteHome, focused(m))
}

// fakeProvider delivers events from its own goroutine and keeps the
// callback after unsubscribe, like a slow transport would.
type fakeProvider struct {
	mu     sync.Mutex
	fn     func(session.Event)
	unsubs int
}

func (f *fakeProvider) Subscribe(fn func(session.Event)) func() {
	f.mu.Lock()
	f.fn = fn
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.unsubs++
		f.mu.Unlock()
	}
}

func (f *fakeProvider) emit(ev session.Event) {
	f.mu.Lock()
	fn := f.fn
	f.mu.Unlock()
	done := make(chan struct{})
	go func() {
		fn(ev)
		close(done)
	}()
	<-done
}

func (f *fakeProvider) unsubscribes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unsubs
}

func (f *fakeProvider) SignIn(context.Context, string, string) error { return nil }

func (f *fakeProvider) Register(context.Context, identity.Credentials) error { return nil }

func (f *fakeProvider) SignOut(context.Context) error { return nil }

func TestErrorBeforeFirstValueStaysPending(t *testing.T) {
	g := &fakeProvider{}
	m, logs := newModel(t, g)
	m.Init()

	g.emit(session.Failed(errors.New("dial refused")))
	m = drain(m)

	assert.Equal(t, shell.StatePending, m.State())
	assert.Nil(t, m.Navigator())
	assert.Contains(t, m.View(), "Comprobando sesión")
	assert.Equal(t, 1, strings.Count(logs.String(), "identity subscription error"))

	g.emit(session.SignedOut())
	m = drain(m)
	assert.Equal(t, shell.StateUnauthenticated, m.State())
}

func TestNoStoreWriteAfterClose(t *testing.T) {
	g := &fakeProvider{}
	m, _ := newModel(t, g)
	m.Init()
	m.Close()

	done := make(chan struct{})
	go func() {
		g.emit(session.SignedIn(session.Identity{ID: "late"}))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("provider callback blocked after close")
	}
	m = drain(m)

	assert.Equal(t, session.PhasePending, m.store.Current().Phase)
	assert.Equal(t, 1, g.unsubscribes())
}

func TestViewBeforeSize(t *testing.T) {
	m := New(identity.NewMemoryProvider(), Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	assert.Equal(t, "Initializing...", m.View())
}
