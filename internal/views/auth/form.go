// Package auth implements the Login and Register screens of the
// unauthenticated flow.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/medidas/navshell/internal/identity"
	"github.com/medidas/navshell/internal/theme"
)

// KeyMap holds the form key bindings.
type KeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Switch key.Binding
}

// DefaultKeyMap returns the default form bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab/↓", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab/↑", "prev field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Switch: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "switch form"),
		),
	}
}

// resultMsg carries the outcome of a provider call started by a form.
type resultMsg struct {
	form string
	err  error
}

// form is the shared field list behind both screens.
type form struct {
	name   string
	keys   KeyMap
	fields []textinput.Model
	focus  int
	busy   bool
	err    string
}

func newField(placeholder string, secret bool) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	ti.CharLimit = 128
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return ti
}

func newForm(name string, fields ...textinput.Model) form {
	f := form{name: name, keys: DefaultKeyMap(), fields: fields}
	f.fields[0].Focus()
	return f
}

func (f *form) value(i int) string {
	return strings.TrimSpace(f.fields[i].Value())
}

func (f *form) move(delta int) tea.Cmd {
	f.fields[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	return f.fields[f.focus].Focus()
}

// update handles navigation between fields and forwards the rest to the
// focused input. It reports whether the message was consumed.
func (f *form) update(msg tea.Msg) (tea.Cmd, bool) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, f.keys.Next):
			return f.move(1), true
		case key.Matches(km, f.keys.Prev):
			return f.move(-1), true
		}
	}
	var cmd tea.Cmd
	f.fields[f.focus], cmd = f.fields[f.focus].Update(msg)
	return cmd, false
}

func (f *form) handleResult(msg resultMsg) {
	if msg.form != f.name {
		return
	}
	f.busy = false
	f.err = describe(msg.err)
}

func describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, identity.ErrUnauthorized):
		return "Correo o contraseña incorrectos"
	case errors.Is(err, identity.ErrAccountExists):
		return "Ya existe una cuenta con ese correo"
	case errors.Is(err, context.DeadlineExceeded):
		return "El proveedor de identidad no respondió"
	default:
		return err.Error()
	}
}

// call runs fn against the provider off the UI loop.
func call(name string, timeout time.Duration, fn func(ctx context.Context) error) tea.Cmd {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return resultMsg{form: name, err: fn(ctx)}
	}
}

func (f form) view(title string, labels []string, footer string, width int) string {
	var rows []string
	rows = append(rows, theme.StyleHeader.Foreground(theme.ColorBrand).Render(title), "")
	for i, field := range f.fields {
		label := theme.StyleDimmed.Render(labels[i])
		if i == f.focus {
			label = theme.StyleSelected.Render(labels[i])
		}
		rows = append(rows, label, field.View(), "")
	}
	switch {
	case f.busy:
		rows = append(rows, theme.StyleDimmed.Render("Enviando..."))
	case f.err != "":
		rows = append(rows, theme.StyleError.Render(f.err))
	default:
		rows = append(rows, "")
	}
	rows = append(rows, "", theme.StyleDimmed.Render(footer))

	box := theme.StyleBorder.Padding(1, 3).Width(min(max(width-4, 30), 60))
	return box.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
