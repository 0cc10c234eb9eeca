package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/medidas/navshell/internal/nav"
	"github.com/medidas/navshell/internal/theme"
	"github.com/medidas/navshell/internal/views/auth"
	"github.com/medidas/navshell/internal/views/measures"
	"github.com/medidas/navshell/internal/views/principal"
	"github.com/medidas/navshell/internal/views/screen"
)

// Screens maps every ScreenID in the topology to its factory.
func Screens() map[nav.ScreenID]screen.Factory {
	return map[nav.ScreenID]screen.Factory{
		nav.ScreenLogin:    auth.NewLogin,
		nav.ScreenRegister: auth.NewRegister,
		nav.ScreenHome:     principal.NewHome,
		nav.ScreenMenu:     principal.NewMenu,
		nav.ScreenUser:     principal.NewUser,
		nav.ScreenSettings: principal.NewSettings,
		nav.ScreenData:     measures.NewDatos,
		nav.ScreenCamera:   measures.NewCamera,
		nav.ScreenMeasures: measures.NewMedidas,
		nav.ScreenReports:  measures.NewInformes,
	}
}

// missing stands in for a ScreenID without a factory.
type missing struct {
	id nav.ScreenID
}

func (s missing) Init() tea.Cmd { return nil }

func (s missing) Update(tea.Msg, screen.Context) (screen.Screen, tea.Cmd) { return s, nil }

func (s missing) View(screen.Context) string {
	return theme.StyleError.Render("no screen registered for " + string(s.id))
}
