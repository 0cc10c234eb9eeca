// Package loading renders the placeholder shown while the session is pending.
package loading

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/medidas/navshell/internal/theme"
)

// Model wraps a spinner centred on the screen.
type Model struct {
	spinner spinner.Model
	Label   string
}

// New creates a loading indicator.
func New() Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.ColorBrand)
	return Model{spinner: s, Label: "Comprobando sesión..."}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update advances the spinner on its own tick messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

// View renders the indicator in the middle of a width x height area.
func (m Model) View(width, height int) string {
	content := m.spinner.View() + " " + theme.StyleDimmed.Render(m.Label)
	if width == 0 || height == 0 {
		return content
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
