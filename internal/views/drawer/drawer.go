// Package drawer renders the authenticated drawer content: the drawer's own
// routes plus the Usuario and Sign Out buttons. It slides in from the
// trailing edge on a harmonica spring.
package drawer

import (
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/medidas/navshell/internal/nav"
	"github.com/medidas/navshell/internal/theme"
)

const fps = 60

// Item is one drawer entry. SignOut items trigger the sign-out action
// instead of navigating.
type Item struct {
	Icon    string
	Label   string
	Route   string
	SignOut bool
	Bg, Fg  lipgloss.Color
}

// SelectedMsg is emitted when the user activates an item.
type SelectedMsg struct {
	Item Item
}

// FrameMsg advances the slide animation.
type FrameMsg struct{}

// KeyMap holds drawer bindings.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
}

// DefaultKeyMap returns the default drawer bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "prev item"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next item"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
	}
}

// Model is the drawer panel.
type Model struct {
	Items    []Item
	Selected int
	Width    int
	// Position and Type come from the drawer node's options.
	Position nav.DrawerPosition
	Type     nav.DrawerType

	keys    KeyMap
	animate bool
	spring  harmonica.Spring
	pos     float64
	vel     float64
	target  float64
}

// Items builds the entries for a drawer node: one per route, followed by
// the Usuario and Sign Out buttons.
func Items(n *nav.Node) []Item {
	var items []Item
	if n != nil {
		for _, r := range n.Routes {
			icon := r.Options.Icon
			if icon == "" {
				icon = "•"
			}
			items = append(items, Item{Icon: icon, Label: r.Title(), Route: r.Name, Bg: theme.ColorBg, Fg: theme.ColorBright})
		}
	}
	return append(items,
		Item{Icon: "☺", Label: "Usuario", Route: nav.RouteUser, Bg: theme.ColorUserBg, Fg: theme.ColorUserFg},
		Item{Icon: "⏻", Label: "Sign Out", SignOut: true, Bg: theme.ColorSignOutBg, Fg: theme.ColorSignOutFg},
	)
}

// New creates a closed drawer. When animate is false the drawer snaps open.
func New(items []Item, animate bool) Model {
	return Model{
		Items:    items,
		Width:    28,
		Position: nav.DrawerRight,
		Type:     nav.DrawerFront,
		keys:     DefaultKeyMap(),
		animate:  animate,
		spring:   harmonica.NewSpring(harmonica.FPS(fps), 8.0, 0.9),
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/fps, func(time.Time) tea.Msg { return FrameMsg{} })
}

// Open starts the slide-in and resets the selection.
func (m *Model) Open() tea.Cmd {
	m.Selected = 0
	m.target = 1
	if !m.animate {
		m.pos, m.vel = 1, 0
		return nil
	}
	return tick()
}

// Close hides the drawer immediately.
func (m *Model) Close() {
	m.target, m.pos, m.vel = 0, 0, 0
}

// Progress reports how far the drawer is open, from 0 to 1.
func (m Model) Progress() float64 {
	return m.pos
}

// Update handles animation frames and key presses.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FrameMsg:
		if m.target == 0 {
			return m, nil
		}
		m.pos, m.vel = m.spring.Update(m.pos, m.vel, m.target)
		if math.Abs(m.pos-m.target) < 0.01 && math.Abs(m.vel) < 0.01 {
			m.pos, m.vel = m.target, 0
			return m, nil
		}
		return m, tick()

	case tea.KeyMsg:
		if len(m.Items) == 0 {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Down):
			m.Selected = (m.Selected + 1) % len(m.Items)
		case key.Matches(msg, m.keys.Up):
			m.Selected = (m.Selected - 1 + len(m.Items)) % len(m.Items)
		case key.Matches(msg, m.keys.Select):
			it := m.Items[m.Selected]
			return m, func() tea.Msg { return SelectedMsg{Item: it} }
		}
	}
	return m, nil
}

// View renders the full panel at height rows.
func (m Model) View(height int) string {
	logo := lipgloss.NewStyle().
		Width(m.Width-4).
		Background(theme.ColorBrand).
		Foreground(theme.ColorOnBrand).
		Bold(true).
		Align(lipgloss.Center).
		Render("MEDIDAS")

	rows := []string{logo}
	for i, it := range m.Items {
		rows = append(rows, theme.Button(it.Icon, it.Label, it.Bg, it.Fg, i == m.Selected))
	}

	return lipgloss.NewStyle().
		Width(m.Width).
		Height(max(height-2, len(rows))).
		Padding(0, 1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(theme.ColorBrand).
		Background(theme.ColorBg).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// Overlay draws panel over the trailing edge of base. Only the leading
// Progress() share of the panel is visible while it slides in.
func (m Model) Overlay(base string, width, height int) string {
	if m.pos <= 0 {
		return base
	}
	panel := strings.Split(m.View(height), "\n")
	panelW := lipgloss.Width(panel[0])
	visible := min(int(math.Round(float64(panelW)*min(m.pos, 1))), width)
	if visible <= 0 {
		return base
	}

	lines := strings.Split(base, "\n")
	for len(lines) < len(panel) {
		lines = append(lines, "")
	}
	for i := range lines {
		if i >= len(panel) {
			break
		}
		lines[i] = m.composeLine(lines[i], panel[i], panelW, visible, width)
	}
	return strings.Join(lines, "\n")
}

// composeLine places the visible part of one panel row against one base row.
// A front drawer covers the base; a slide drawer pushes it aside.
func (m Model) composeLine(base, panel string, panelW, visible, width int) string {
	keep := width - visible
	rest := base
	if (m.Type == nav.DrawerFront) == (m.Position == nav.DrawerLeft) {
		rest = ansi.TruncateLeft(base, visible, "")
	}
	rest = ansi.Truncate(rest, keep, "")
	if pad := keep - ansi.StringWidth(rest); pad > 0 {
		rest += strings.Repeat(" ", pad)
	}

	if m.Position == nav.DrawerLeft {
		return ansi.TruncateLeft(panel, panelW-visible, "") + rest
	}
	return rest + ansi.Truncate(panel, visible, "")
}
