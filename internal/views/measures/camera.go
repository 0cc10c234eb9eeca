package measures

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/medidas/navshell/internal/records"
	"github.com/medidas/navshell/internal/theme"
	"github.com/medidas/navshell/internal/views/screen"
)

// Camera captures a reading. The reading is typed as read off the
// instrument in the viewfinder and stored with SourceCamera.
type Camera struct {
	deps     screen.Deps
	capture  key.Binding
	reading  textinput.Model
	captured []records.Measurement
	err      string
}

// NewCamera is the screen.Factory for the Camera route.
func NewCamera(deps screen.Deps) screen.Screen {
	ti := textinput.New()
	ti.Placeholder = "lectura"
	ti.Prompt = "◉ "
	ti.CharLimit = 16
	ti.Focus()
	return &Camera{
		deps:    deps,
		capture: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "capture")),
		reading: ti,
	}
}

func (s *Camera) Init() tea.Cmd {
	return textinput.Blink
}

func (s *Camera) Update(msg tea.Msg, ctx screen.Context) (screen.Screen, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, s.capture) {
		s.shoot(ctx)
		return s, nil
	}
	var cmd tea.Cmd
	s.reading, cmd = s.reading.Update(msg)
	return s, cmd
}

func (s *Camera) shoot(ctx screen.Context) {
	value, err := parseValue(s.reading.Value())
	if err != nil {
		s.err = err.Error()
		return
	}
	name := ctx.Params["name"]
	if name == "" {
		name = "captura"
	}
	m, err := s.deps.Records.Add(records.Measurement{Name: name, Value: value, Source: records.SourceCamera})
	if err != nil {
		s.err = err.Error()
		return
	}
	s.err = ""
	s.captured = append(s.captured, m)
	s.reading.SetValue("")
	s.deps.Logger.Info("measurement added", "name", m.Name, "source", m.Source)
}

func (s *Camera) View(ctx screen.Context) string {
	w := min(max(ctx.Width-4, 24), 48)
	frame := lipgloss.NewStyle().
		Width(w).
		Height(5).
		Align(lipgloss.Center, lipgloss.Center).
		BorderStyle(lipgloss.ThickBorder()).
		BorderForeground(theme.ColorOnBrand).
		Render(s.reading.View())

	var rows []string
	rows = append(rows, frame)
	if s.err != "" {
		rows = append(rows, theme.StyleError.Render(s.err))
	}
	if n := len(s.captured); n > 0 {
		last := s.captured[n-1]
		rows = append(rows, theme.StyleDimmed.Render(fmt.Sprintf("%d capturas · última %s = %g", n, last.Name, last.Value)))
	}
	rows = append(rows, theme.StyleDimmed.Render(strings.TrimSpace("enter: capturar  esc: volver")))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
