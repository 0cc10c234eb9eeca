// Package screen is the contract between the shell and the screens it
// mounts. A screen only sees its Context and asks for navigation by
// returning NavigateMsg or BackMsg commands.
package screen

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/medidas/navshell/internal/identity"
	"github.com/medidas/navshell/internal/nav"
	"github.com/medidas/navshell/internal/records"
	"github.com/medidas/navshell/internal/session"
)

// Context is injected into every Update and View call.
type Context struct {
	Route    string
	Params   nav.Params
	Identity session.Identity
	SignedIn bool
	Width    int
	Height   int
}

// Screen is an opaque renderable mounted at a route.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg, ctx Context) (Screen, tea.Cmd)
	View(ctx Context) string
}

// Deps are the collaborators screens may use. Screens never touch the
// session store.
type Deps struct {
	Provider      identity.Provider
	Records       *records.Log
	Logger        *slog.Logger
	GlamourStyle  string
	ActionTimeout time.Duration
	Settings      map[string]string
}

// Factory builds a fresh screen.
type Factory func(Deps) Screen

// NavigateMsg asks the shell to focus a route.
type NavigateMsg struct {
	Route  string
	Params nav.Params
}

// BackMsg asks the shell to go back one step.
type BackMsg struct{}

// FocusMsg is delivered to a screen each time it becomes the focused route,
// including right after it is created.
type FocusMsg struct{}

// Navigate returns a command that requests navigation to route.
func Navigate(route string, params nav.Params) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Route: route, Params: params}
	}
}

// Back returns a command that requests a back step.
func Back() tea.Cmd {
	return func() tea.Msg { return BackMsg{} }
}

// Markdown renders md with glamour at width. The raw text is returned when
// rendering fails.
func Markdown(md, style string, width int) string {
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
