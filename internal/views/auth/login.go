package auth

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/medidas/navshell/internal/nav"
	"github.com/medidas/navshell/internal/views/screen"
)

// Login asks for email and password and signs in through the provider.
type Login struct {
	deps screen.Deps
	form form
}

// NewLogin is the screen.Factory for the Login route.
func NewLogin(deps screen.Deps) screen.Screen {
	return &Login{
		deps: deps,
		form: newForm("login",
			newField("correo@ejemplo.com", false),
			newField("contraseña", true),
		),
	}
}

func (s *Login) Init() tea.Cmd {
	return nil
}

func (s *Login) Update(msg tea.Msg, _ screen.Context) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		s.form.handleResult(msg)
		if msg.form == s.form.name && msg.err != nil {
			s.deps.Logger.Warn("sign in failed", "err", msg.err)
		}
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.form.keys.Switch):
			return s, screen.Navigate(nav.RouteRegister, nil)
		case key.Matches(msg, s.form.keys.Submit):
			return s, s.submit()
		}
	}

	cmd, _ := s.form.update(msg)
	return s, cmd
}

func (s *Login) submit() tea.Cmd {
	if s.form.busy {
		return nil
	}
	email, password := s.form.value(0), s.form.fields[1].Value()
	if email == "" || password == "" {
		s.form.err = "Introduce correo y contraseña"
		return nil
	}
	s.form.busy = true
	s.form.err = ""
	p := s.deps.Provider
	return call(s.form.name, s.deps.ActionTimeout, func(ctx context.Context) error {
		return p.SignIn(ctx, email, password)
	})
}

func (s *Login) View(ctx screen.Context) string {
	return s.form.view("Iniciar sesión",
		[]string{"Correo", "Contraseña"},
		"enter: entrar  ctrl+n: crear cuenta",
		ctx.Width)
}
