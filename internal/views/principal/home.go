package principal

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/medidas/navshell/internal/nav"
	"github.com/medidas/navshell/internal/theme"
	"github.com/medidas/navshell/internal/views/screen"
)

// Home greets the signed-in user and links to the stack screens.
type Home struct {
	deps screen.Deps
	list shortcutList
	now  func() time.Time
}

// NewHome is the screen.Factory for the Home tab.
func NewHome(deps screen.Deps) screen.Screen {
	return &Home{
		deps: deps,
		now:  time.Now,
		list: newShortcutList(
			shortcut{Icon: "✚", Label: "Ingresar datos", Route: nav.RouteDatos},
			shortcut{Icon: "◉", Label: "Cámara", Route: nav.RouteCamera},
			shortcut{Icon: "☰", Label: "Administrar datos", Route: nav.RouteMedidas},
			shortcut{Icon: "☺", Label: "Usuario", Route: nav.RouteUser},
		),
	}
}

func (s *Home) Init() tea.Cmd {
	return nil
}

func (s *Home) Update(msg tea.Msg, _ screen.Context) (screen.Screen, tea.Cmd) {
	return s, s.list.update(msg)
}

func greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Buenos días"
	case h < 20:
		return "Buenas tardes"
	default:
		return "Buenas noches"
	}
}

func (s *Home) View(ctx screen.Context) string {
	name := ctx.Identity.DisplayName
	if name == "" {
		name = ctx.Identity.Email
	}
	title := theme.StyleHeader.Render(fmt.Sprintf("%s, %s", greeting(s.now()), name))

	summary := theme.StyleDimmed.Render("Sin medidas registradas")
	if s.deps.Records != nil {
		if n := s.deps.Records.Len(); n > 0 {
			summary = theme.StyleDimmed.Render(fmt.Sprintf("%d medidas registradas", n))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, summary, "", s.list.view())
}
