package measures

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/medidas/navshell/internal/views/screen"
)

// Informes renders the measurement summary report.
type Informes struct {
	deps screen.Deps
}

// NewInformes is the screen.Factory for the Informes tab.
func NewInformes(deps screen.Deps) screen.Screen {
	return &Informes{deps: deps}
}

func (s *Informes) Init() tea.Cmd {
	return nil
}

func (s *Informes) Update(tea.Msg, screen.Context) (screen.Screen, tea.Cmd) {
	return s, nil
}

func (s *Informes) View(ctx screen.Context) string {
	return screen.Markdown(s.deps.Records.Markdown(), s.deps.GlamourStyle, ctx.Width)
}
