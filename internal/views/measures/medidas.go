package measures

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/medidas/navshell/internal/nav"
	"github.com/medidas/navshell/internal/theme"
	"github.com/medidas/navshell/internal/views/screen"
)

// Medidas lists the recorded measurements and lets the user delete them or
// add another one of the same kind.
type Medidas struct {
	deps     screen.Deps
	keys     listKeys
	selected int
}

type listKeys struct {
	Up     key.Binding
	Down   key.Binding
	Delete key.Binding
	Again  key.Binding
}

// NewMedidas is the screen.Factory for the Medidas route.
func NewMedidas(deps screen.Deps) screen.Screen {
	return &Medidas{
		deps: deps,
		keys: listKeys{
			Up:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
			Down:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
			Delete: key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
			Again:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add same")),
		},
	}
}

func (s *Medidas) Init() tea.Cmd {
	return nil
}

func (s *Medidas) Update(msg tea.Msg, _ screen.Context) (screen.Screen, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	list := s.deps.Records.List()
	if len(list) == 0 {
		return s, nil
	}
	s.selected = min(s.selected, len(list)-1)

	switch {
	case key.Matches(km, s.keys.Down):
		s.selected = (s.selected + 1) % len(list)
	case key.Matches(km, s.keys.Up):
		s.selected = (s.selected - 1 + len(list)) % len(list)
	case key.Matches(km, s.keys.Delete):
		m := list[s.selected]
		if s.deps.Records.Remove(m.ID) {
			s.deps.Logger.Info("measurement removed", "name", m.Name)
		}
		s.selected = max(0, min(s.selected, len(list)-2))
	case key.Matches(km, s.keys.Again):
		return s, screen.Navigate(nav.RouteDatos, nav.Params{"name": list[s.selected].Name})
	}
	return s, nil
}

func (s *Medidas) View(ctx screen.Context) string {
	list := s.deps.Records.List()
	if len(list) == 0 {
		return theme.StyleDimmed.Render("No hay medidas. Usa Ingresar datos o la cámara.")
	}

	var b strings.Builder
	for i, m := range list {
		prefix := "  "
		line := fmt.Sprintf("%-14s %10.2f %-6s %-7s %s", m.Name, m.Value, m.Unit, m.Source, m.At.Format("15:04:05"))
		if i == min(s.selected, len(list)-1) {
			prefix = "> "
			line = theme.StyleSelected.Render(line)
		}
		b.WriteString(prefix + line + "\n")
	}
	help := theme.StyleDimmed.Render("j/k: mover  d: borrar  enter: otra igual")
	body := lipgloss.NewStyle().MaxWidth(max(ctx.Width, 40)).Render(strings.TrimRight(b.String(), "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, body, "", help)
}
