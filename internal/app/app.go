package app

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/medidas/navshell/internal/identity"
	"github.com/medidas/navshell/internal/nav"
	"github.com/medidas/navshell/internal/records"
	"github.com/medidas/navshell/internal/session"
	"github.com/medidas/navshell/internal/shell"
	"github.com/medidas/navshell/internal/theme"
	"github.com/medidas/navshell/internal/views/debug"
	"github.com/medidas/navshell/internal/views/drawer"
	"github.com/medidas/navshell/internal/views/loading"
	"github.com/medidas/navshell/internal/views/screen"
	"github.com/medidas/navshell/internal/views/status"
)

// Options configure the root model.
type Options struct {
	Logger         *slog.Logger
	SignOutTimeout time.Duration
	Animate        bool
	GlamourStyle   string
	Settings       map[string]string
	Screens        map[nav.ScreenID]screen.Factory
}

// Model is the root Bubble Tea model. It owns the session store, the
// resolver subscription and the root switch for the lifetime of the program.
type Model struct {
	provider identity.Provider
	logger   *slog.Logger
	ctx      context.Context
	cancel   context.CancelFunc

	store    *session.Store
	resolver *session.Resolver
	sw       *shell.Switch
	bridge   *loopBridge

	factories map[nav.ScreenID]screen.Factory
	deps      screen.Deps
	// Screens of the current mount, keyed by route name.
	screens   map[string]screen.Screen
	mountSeen int

	keys   KeyMap
	help   help.Model
	width  int
	height int

	signOutTimeout time.Duration
	animate        bool

	// Sub-views.
	loading   loading.Model
	drawer    drawer.Model
	statusBar status.Model
	debug     debug.Model
	showDebug bool
}

// New creates the root model over provider.
func New(provider identity.Provider, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Screens == nil {
		opts.Screens = Screens()
	}
	ctx, cancel := context.WithCancel(context.Background())

	store := session.NewStore()
	bridge := newLoopBridge(provider)

	m := Model{
		provider:  provider,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		store:     store,
		resolver:  session.NewResolver(store, bridge, logger),
		sw:        shell.New(store, nav.NewTopology(), logger),
		bridge:    bridge,
		factories: opts.Screens,
		deps: screen.Deps{
			Provider:      provider,
			Records:       records.NewLog(),
			Logger:        logger,
			GlamourStyle:  opts.GlamourStyle,
			ActionTimeout: opts.SignOutTimeout,
			Settings:      opts.Settings,
		},
		screens:        make(map[string]screen.Screen),
		keys:           DefaultKeyMap(),
		help:           help.New(),
		signOutTimeout: opts.SignOutTimeout,
		animate:        opts.Animate,
		loading:        loading.New(),
		drawer:         drawer.New(nil, opts.Animate),
		statusBar:      status.New(),
		debug:          debug.New(),
	}
	m.keys.setAuthenticated(false)
	m.keys.setTabs(false)
	return m
}

// Init subscribes to the identity provider and starts the loading spinner.
func (m Model) Init() tea.Cmd {
	m.resolver.Mount()
	return tea.Batch(m.loading.Init(), m.bridge.Next())
}

// Close releases the provider subscription and stops observing the store.
// No store write happens after Close returns.
func (m Model) Close() {
	m.resolver.Teardown()
	m.bridge.Close()
	m.sw.Close()
	m.cancel()
}

// State returns the root switch state.
func (m Model) State() shell.State {
	return m.sw.State()
}

// Navigator returns the mounted navigator, or nil while pending.
func (m Model) Navigator() *nav.Navigator {
	return m.sw.Mounted()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		m.help.Width = msg.Width
		m.drawer.Width = min(max(msg.Width/3, 24), 36)
		return m, nil

	case authEventMsg:
		if m.bridge.Deliver(msg) {
			m.recordEvent(msg.ev)
		}
		cmd := m.syncMount()
		return m, tea.Batch(cmd, m.bridge.Next())

	case signOutFailedMsg:
		m.debug.Addf(debug.KindErr, "sign out failed: %v", msg.err)
		return m, nil

	case spinner.TickMsg:
		if m.sw.State() != shell.StatePending {
			return m, nil
		}
		var cmd tea.Cmd
		m.loading, cmd = m.loading.Update(msg)
		return m, cmd

	case drawer.FrameMsg:
		var cmd tea.Cmd
		m.drawer, cmd = m.drawer.Update(msg)
		return m, cmd

	case drawer.SelectedMsg:
		if msg.Item.SignOut {
			m.closeDrawer()
			cmd := m.signOut()
			return m, cmd
		}
		return m.navigate(msg.Item.Route, nil)

	case screen.NavigateMsg:
		return m.navigate(msg.Route, msg.Params)

	case screen.BackMsg:
		return m.back()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.forward(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Debug):
		m.showDebug = !m.showDebug
		return m, nil
	}

	if m.showDebug {
		switch {
		case key.Matches(msg, m.keys.Up):
			m.debug.ScrollUp(1)
		case key.Matches(msg, m.keys.Down):
			m.debug.ScrollDown(1)
		case key.Matches(msg, m.keys.Back):
			m.showDebug = false
		}
		return m, nil
	}

	nv := m.sw.Mounted()
	if nv == nil {
		return m, nil
	}

	if nv.DrawerOpen() {
		if key.Matches(msg, m.keys.Back, m.keys.Drawer) {
			m.closeDrawer()
			return m, nil
		}
		var cmd tea.Cmd
		m.drawer, cmd = m.drawer.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Drawer):
		if nv.OpenDrawer() {
			m.debug.Add(debug.KindNav, "drawer opened")
			cmd := m.drawer.Open()
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, m.keys.SignOut):
		cmd := m.signOut()
		return m, cmd

	case key.Matches(msg, m.keys.Back):
		return m.back()
	}

	if lvl, ok := activeTabs(nv); ok {
		n := len(lvl.Node.Routes)
		next := -1
		switch {
		case key.Matches(msg, m.keys.NextTab):
			next = (lvl.Active + 1) % n
		case key.Matches(msg, m.keys.PrevTab):
			next = (lvl.Active - 1 + n) % n
		case key.Matches(msg, m.keys.Tab1):
			next = 0
		case key.Matches(msg, m.keys.Tab2):
			next = 1
		case key.Matches(msg, m.keys.Tab3):
			next = 2
		}
		if next >= 0 && next < n {
			return m.navigate(lvl.Node.Routes[next].Name, nil)
		}
	}

	return m.forward(msg)
}

func activeTabs(nv *nav.Navigator) (nav.Level, bool) {
	for _, l := range nv.Levels() {
		if l.Node.Kind == nav.KindTabs {
			return l, true
		}
	}
	return nav.Level{}, false
}

func (m *Model) signOut() tea.Cmd {
	if m.sw.State() != shell.StateAuthenticated {
		return nil
	}
	m.debug.Add(debug.KindAuth, "sign out requested")
	return SignOut(m.ctx, m.provider, m.signOutTimeout, m.logger)
}

func (m *Model) closeDrawer() {
	if nv := m.sw.Mounted(); nv != nil {
		nv.CloseDrawer()
	}
	m.drawer.Close()
}

func (m Model) navigate(route string, params nav.Params) (tea.Model, tea.Cmd) {
	nv := m.sw.Mounted()
	if nv == nil {
		return m, nil
	}
	if err := nv.Navigate(route, params); err != nil {
		m.logger.Warn("navigation failed", "route", route, "err", err)
		m.debug.Add(debug.KindErr, err.Error())
		return m, nil
	}
	m.drawer.Close()
	m.debug.Add(debug.KindNav, strings.Join(nv.ActivePath(), " › "))
	cmd := m.focus()
	return m, cmd
}

func (m Model) back() (tea.Model, tea.Cmd) {
	nv := m.sw.Mounted()
	if nv == nil {
		return m, nil
	}
	wasOpen := nv.DrawerOpen()
	prev := nv.Focused().Route.Name
	if !nv.Back() {
		return m, nil
	}
	if wasOpen {
		m.drawer.Close()
		return m, nil
	}
	if !slices.Contains(nv.ActivePath(), prev) {
		delete(m.screens, prev)
	}
	m.debug.Add(debug.KindNav, "back: "+strings.Join(nv.ActivePath(), " › "))
	cmd := m.focus()
	return m, cmd
}

// syncMount resets per-tree state whenever the switch mounted a new tree.
func (m *Model) syncMount() tea.Cmd {
	snap := m.store.Current()
	if id, ok := snap.Session.Identity(); ok {
		m.statusBar.Identity = id.Email
	} else {
		m.statusBar.Identity = ""
	}
	m.statusBar.State = m.sw.State().String()
	m.statusBar.Mounts = m.sw.Mounts()

	if m.sw.Mounts() == m.mountSeen {
		return nil
	}
	m.mountSeen = m.sw.Mounts()
	m.screens = make(map[string]screen.Screen)
	m.showDebug = false

	nv := m.sw.Mounted()
	authed := m.sw.State() == shell.StateAuthenticated
	m.keys.setAuthenticated(authed)

	var drawerNode *nav.Node
	if authed {
		drawerNode, _ = nv.Drawer()
		m.deps.Records = records.NewLog()
	}
	m.drawer = drawer.New(drawer.Items(drawerNode), m.animate)
	m.drawer.Width = min(max(m.width/3, 24), 36)
	if drawerNode != nil {
		m.drawer.Position = drawerNode.Drawer.Position
		m.drawer.Type = drawerNode.Drawer.Type
	}

	m.debug.Addf(debug.KindRoot, "%s (mount %d)", m.sw.State(), m.sw.Mounts())
	return m.focus()
}

// focus makes sure the focused route has a screen and tells it so.
func (m *Model) focus() tea.Cmd {
	nv := m.sw.Mounted()
	if nv == nil {
		return nil
	}
	_, tabs := activeTabs(nv)
	m.keys.setTabs(tabs)
	m.statusBar.SetPath(nv.ActivePath())

	f := nv.Focused()
	var cmds []tea.Cmd
	s, ok := m.screens[f.Route.Name]
	if !ok {
		s = m.build(f.Route)
		cmds = append(cmds, s.Init())
	}
	s, cmd := s.Update(screen.FocusMsg{}, m.context())
	m.screens[f.Route.Name] = s
	return tea.Batch(append(cmds, cmd)...)
}

func (m Model) build(r nav.Route) screen.Screen {
	factory, ok := m.factories[r.Screen]
	if !ok {
		m.logger.Error("no screen registered", "route", r.Name, "screen", string(r.Screen))
		return missing{id: r.Screen}
	}
	return factory(m.deps)
}

// forward passes msg to the focused screen.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	nv := m.sw.Mounted()
	if nv == nil {
		return m, nil
	}
	name := nv.Focused().Route.Name
	s, ok := m.screens[name]
	if !ok {
		return m, nil
	}
	s, cmd := s.Update(msg, m.context())
	m.screens[name] = s
	return m, cmd
}

func (m Model) context() screen.Context {
	ctx := screen.Context{Width: m.width, Height: m.bodyHeight()}
	if nv := m.sw.Mounted(); nv != nil {
		f := nv.Focused()
		ctx.Route = f.Route.Name
		ctx.Params = f.Params
	}
	if id, ok := m.sw.Session().Identity(); ok {
		ctx.Identity = id
		ctx.SignedIn = true
	}
	return ctx
}

func (m Model) bodyHeight() int {
	// header, tab bar, status bar (2 rows), help
	return max(m.height-5, 3)
}

func (m *Model) recordEvent(ev session.Event) {
	switch {
	case ev.Err != nil:
		m.statusBar.Online = false
		m.debug.Addf(debug.KindErr, "identity: %v", ev.Err)
	case ev.Identity != nil:
		m.statusBar.Online = true
		m.debug.Addf(debug.KindAuth, "signed in as %s", ev.Identity.Email)
	default:
		m.statusBar.Online = true
		m.debug.Add(debug.KindAuth, "signed out")
	}
}

// View renders the mounted tree, or the loading indicator while pending.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	nv := m.sw.Mounted()
	if nv == nil {
		return m.loading.View(m.width, m.height)
	}
	if m.showDebug {
		return m.debug.View(m.width, m.height)
	}

	body := ""
	if s, ok := m.screens[nv.Focused().Route.Name]; ok {
		body = s.View(m.context())
	}
	body = lipgloss.NewStyle().
		Width(m.width).
		Height(m.bodyHeight()).
		MaxHeight(m.bodyHeight()).
		Padding(0, 1).
		Render(body)

	sections := []string{m.renderHeader(nv), body, m.renderTabBar(nv), m.statusBar.View(), m.help.View(m.keys)}
	out := lipgloss.JoinVertical(lipgloss.Left, sections...)
	if nv.DrawerOpen() {
		out = m.drawer.Overlay(out, m.width, m.height)
	}
	return out
}

// renderHeader draws the deepest visible header on the active path.
func (m Model) renderHeader(nv *nav.Navigator) string {
	headers := nv.Headers()
	if len(headers) == 0 {
		return ""
	}
	h := headers[len(headers)-1]
	title := h.Title
	if nv.CanGoBack() {
		title = "‹ " + title
	}

	opts := h.Options
	var bg, fg string
	bold := true
	if opts.HeaderStyle != nil {
		bg, fg, bold = opts.HeaderStyle.Background, opts.HeaderStyle.TitleColor, opts.HeaderStyle.TitleBold
	}
	if opts.HeaderTint != "" {
		fg = opts.HeaderTint
	}
	if opts.HeaderTransparent {
		bg = ""
	}
	return theme.HeaderBar(title, m.width, bg, fg, bold)
}

func (m Model) renderTabBar(nv *nav.Navigator) string {
	lvl, ok := activeTabs(nv)
	if !ok {
		return ""
	}
	var parts []string
	for i, r := range lvl.Node.Routes {
		style := lipgloss.NewStyle().Padding(0, 2).Foreground(theme.ColorTabInactive)
		if i == lvl.Active {
			style = style.Foreground(theme.ColorTabActive).Bold(true).Underline(true)
		}
		parts = append(parts, style.Render(r.Options.Icon+" "+r.Label()))
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, bar)
}
