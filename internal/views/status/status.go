package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/medidas/navshell/internal/theme"
)

// Model holds the status bar state.
type Model struct {
	Online   bool
	State    string
	Identity string
	Path     []string
	Mounts   int
	Width    int
}

// New creates a status bar model.
func New() Model {
	return Model{State: "pending"}
}

// SetPath updates the breadcrumb of active routes.
func (m *Model) SetPath(path []string) {
	m.Path = append([]string(nil), path...)
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	var connStr string
	if m.Online {
		connStr = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("● " + m.State)
	} else {
		connStr = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("○ " + m.State)
	}

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := connStr
	if m.Identity != "" {
		content += sep + lipgloss.NewStyle().Foreground(theme.ColorUserFg).Render(m.Identity)
	}
	if len(m.Path) > 0 {
		content += sep + theme.StyleDimmed.Render(strings.Join(m.Path, " › "))
	}
	content += sep + theme.StyleDimmed.Render(fmt.Sprintf("mounts %d", m.Mounts))

	bar := lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(theme.ColorBorder).
		Render(content)

	return bar
}
