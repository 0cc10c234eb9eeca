package auth

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/medidas/navshell/internal/identity"
	"github.com/medidas/navshell/internal/views/screen"
)

// Register creates an account. A successful registration signs the user in,
// which swaps the whole tree, so the screen never navigates on success.
type Register struct {
	deps screen.Deps
	form form
}

// NewRegister is the screen.Factory for the Register route.
func NewRegister(deps screen.Deps) screen.Screen {
	return &Register{
		deps: deps,
		form: newForm("register",
			newField("Nombre", false),
			newField("correo@ejemplo.com", false),
			newField("contraseña", true),
		),
	}
}

func (s *Register) Init() tea.Cmd {
	return nil
}

func (s *Register) Update(msg tea.Msg, _ screen.Context) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		s.form.handleResult(msg)
		if msg.form == s.form.name && msg.err != nil {
			s.deps.Logger.Warn("register failed", "err", msg.err)
		}
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.form.keys.Switch):
			return s, screen.Back()
		case key.Matches(msg, s.form.keys.Submit):
			return s, s.submit()
		}
	}

	cmd, _ := s.form.update(msg)
	return s, cmd
}

func (s *Register) submit() tea.Cmd {
	if s.form.busy {
		return nil
	}
	c := identity.Credentials{
		DisplayName: s.form.value(0),
		Email:       s.form.value(1),
		Password:    s.form.fields[2].Value(),
	}
	if c.Email == "" || c.Password == "" {
		s.form.err = "Correo y contraseña son obligatorios"
		return nil
	}
	s.form.busy = true
	s.form.err = ""
	p := s.deps.Provider
	return call(s.form.name, s.deps.ActionTimeout, func(ctx context.Context) error {
		return p.Register(ctx, c)
	})
}

func (s *Register) View(ctx screen.Context) string {
	return s.form.view("Crear cuenta",
		[]string{"Nombre", "Correo", "Contraseña"},
		"enter: registrar  ctrl+n/esc: volver",
		ctx.Width)
}
