// Package measures implements the data screens: Datos, Camera, Medidas and
// Informes. They all share the session's records.Log.
package measures

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/medidas/navshell/internal/records"
	"github.com/medidas/navshell/internal/theme"
	"github.com/medidas/navshell/internal/views/screen"
)

const (
	fieldName = iota
	fieldValue
	fieldUnit
)

// Datos is the manual data entry form. A "name" param prefills the name.
type Datos struct {
	deps   screen.Deps
	keys   formKeys
	fields []textinput.Model
	focus  int
	status string
	err    string
}

type formKeys struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
}

func defaultFormKeys() formKeys {
	return formKeys{
		Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
	}
}

// NewDatos is the screen.Factory for the Datos route.
func NewDatos(deps screen.Deps) screen.Screen {
	mk := func(placeholder string, limit int) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.Prompt = "› "
		ti.CharLimit = limit
		return ti
	}
	s := &Datos{
		deps:   deps,
		keys:   defaultFormKeys(),
		fields: []textinput.Model{mk("ph, cloro, temperatura...", 40), mk("0.0", 16), mk("unidad", 12)},
	}
	s.fields[fieldName].Focus()
	return s
}

func (s *Datos) Init() tea.Cmd {
	return textinput.Blink
}

func (s *Datos) Update(msg tea.Msg, ctx screen.Context) (screen.Screen, tea.Cmd) {
	if _, ok := msg.(screen.FocusMsg); ok {
		if name := ctx.Params["name"]; name != "" {
			s.fields[fieldName].SetValue(name)
		}
		return s, nil
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, s.keys.Next):
			return s, s.move(1)
		case key.Matches(km, s.keys.Prev):
			return s, s.move(-1)
		case key.Matches(km, s.keys.Submit):
			s.save()
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.fields[s.focus], cmd = s.fields[s.focus].Update(msg)
	return s, cmd
}

func (s *Datos) move(delta int) tea.Cmd {
	s.fields[s.focus].Blur()
	s.focus = (s.focus + delta + len(s.fields)) % len(s.fields)
	return s.fields[s.focus].Focus()
}

func (s *Datos) save() {
	value, err := parseValue(s.fields[fieldValue].Value())
	if err != nil {
		s.err = err.Error()
		s.status = ""
		return
	}
	m, err := s.deps.Records.Add(records.Measurement{
		Name:  s.fields[fieldName].Value(),
		Value: value,
		Unit:  strings.TrimSpace(s.fields[fieldUnit].Value()),
	})
	if err != nil {
		s.err = "El nombre es obligatorio"
		if errors.Is(err, records.ErrNonFiniteValue) {
			s.err = "El valor debe ser un número finito"
		}
		s.status = ""
		return
	}
	s.err = ""
	s.status = fmt.Sprintf("Guardado %s = %g %s", m.Name, m.Value, m.Unit)
	s.fields[fieldValue].SetValue("")
	s.deps.Logger.Info("measurement added", "name", m.Name, "source", m.Source)
}

func parseValue(raw string) (float64, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if raw == "" {
		return 0, fmt.Errorf("introduce un valor")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("valor no numérico: %q", raw)
	}
	return v, nil
}

func (s *Datos) View(ctx screen.Context) string {
	labels := []string{"Medida", "Valor", "Unidad"}
	var rows []string
	for i, f := range s.fields {
		label := theme.StyleDimmed.Render(labels[i])
		if i == s.focus {
			label = theme.StyleSelected.Render(labels[i])
		}
		rows = append(rows, label, f.View())
	}
	switch {
	case s.err != "":
		rows = append(rows, "", theme.StyleError.Render(s.err))
	case s.status != "":
		rows = append(rows, "", lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render(s.status))
	}
	return lipgloss.NewStyle().Width(max(ctx.Width-2, 30)).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
