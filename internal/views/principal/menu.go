package principal

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/medidas/navshell/internal/nav"
	"github.com/medidas/navshell/internal/theme"
	"github.com/medidas/navshell/internal/views/screen"
)

// Menu is the data administration entry point.
type Menu struct {
	deps screen.Deps
	list shortcutList
}

// NewMenu is the screen.Factory for the Menu tab.
func NewMenu(deps screen.Deps) screen.Screen {
	return &Menu{
		deps: deps,
		list: newShortcutList(
			shortcut{Icon: "✚", Label: "Ingresar datos", Hint: "nueva medida manual", Route: nav.RouteDatos},
			shortcut{Icon: "◉", Label: "Capturar", Hint: "lectura desde la cámara", Route: nav.RouteCamera},
			shortcut{Icon: "☰", Label: "Administrar medidas", Hint: "ver y borrar", Route: nav.RouteMedidas},
		),
	}
}

func (s *Menu) Init() tea.Cmd {
	return nil
}

func (s *Menu) Update(msg tea.Msg, _ screen.Context) (screen.Screen, tea.Cmd) {
	return s, s.list.update(msg)
}

func (s *Menu) View(_ screen.Context) string {
	count := 0
	if s.deps.Records != nil {
		count = s.deps.Records.Len()
	}
	stats := theme.StyleDimmed.Render(fmt.Sprintf("%d medidas en esta sesión", count))
	return lipgloss.JoinVertical(lipgloss.Left, stats, "", s.list.view())
}
