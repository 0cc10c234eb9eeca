// Package principal implements the screens reachable from the tab set and
// the drawer: Home, Menu, User and Ajustes.
package principal

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/medidas/navshell/internal/theme"
	"github.com/medidas/navshell/internal/views/screen"
)

// KeyMap holds list bindings shared by the principal screens.
type KeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
}

// DefaultKeyMap returns the default list bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
	}
}

// shortcut is a selectable line that navigates to a route.
type shortcut struct {
	Icon  string
	Label string
	Hint  string
	Route string
}

type shortcutList struct {
	keys     KeyMap
	items    []shortcut
	selected int
}

func newShortcutList(items ...shortcut) shortcutList {
	return shortcutList{keys: DefaultKeyMap(), items: items}
}

func (l *shortcutList) update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok || len(l.items) == 0 {
		return nil
	}
	switch {
	case key.Matches(km, l.keys.Down):
		l.selected = (l.selected + 1) % len(l.items)
	case key.Matches(km, l.keys.Up):
		l.selected = (l.selected - 1 + len(l.items)) % len(l.items)
	case key.Matches(km, l.keys.Enter):
		it := l.items[l.selected]
		return screen.Navigate(it.Route, nil)
	}
	return nil
}

func (l shortcutList) view() string {
	var b strings.Builder
	for i, it := range l.items {
		prefix := "  "
		label := it.Label
		if i == l.selected {
			prefix = "> "
			label = theme.StyleSelected.Render(label)
		}
		icon := lipgloss.NewStyle().Foreground(theme.ColorBrand).Render(it.Icon)
		b.WriteString(prefix + icon + " " + label)
		if it.Hint != "" {
			b.WriteString("  " + theme.StyleDimmed.Render(it.Hint))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
