package principal

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/medidas/navshell/internal/theme"
	"github.com/medidas/navshell/internal/views/screen"
)

// User shows the signed-in identity.
type User struct{}

// NewUser is the screen.Factory for the User route.
func NewUser(screen.Deps) screen.Screen {
	return &User{}
}

func (s *User) Init() tea.Cmd {
	return nil
}

func (s *User) Update(tea.Msg, screen.Context) (screen.Screen, tea.Cmd) {
	return s, nil
}

func (s *User) View(ctx screen.Context) string {
	if !ctx.SignedIn {
		return theme.StyleDimmed.Render("Sin sesión")
	}
	id := ctx.Identity
	name := id.DisplayName
	if name == "" {
		name = "—"
	}

	label := lipgloss.NewStyle().Foreground(theme.ColorUserFg).Width(10)
	rows := []string{
		label.Render("Nombre") + name,
		label.Render("Correo") + id.Email,
		label.Render("ID") + theme.StyleDimmed.Render(id.ID),
	}
	card := lipgloss.NewStyle().
		Background(theme.ColorUserBg).
		Foreground(lipgloss.Color("#1f2937")).
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return card
}
