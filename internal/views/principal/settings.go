package principal

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/medidas/navshell/internal/views/screen"
)

// Settings renders the effective configuration as markdown.
type Settings struct {
	deps screen.Deps
}

// NewSettings is the screen.Factory for the Ajustes route.
func NewSettings(deps screen.Deps) screen.Screen {
	return &Settings{deps: deps}
}

func (s *Settings) Init() tea.Cmd {
	return nil
}

func (s *Settings) Update(tea.Msg, screen.Context) (screen.Screen, tea.Cmd) {
	return s, nil
}

func (s *Settings) markdown() string {
	var b strings.Builder
	b.WriteString("# Ajustes\n\n")
	if len(s.deps.Settings) == 0 {
		b.WriteString("_Sin ajustes._\n")
		return b.String()
	}
	keys := make([]string, 0, len(s.deps.Settings))
	for k := range s.deps.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "- **%s**: `%s`\n", k, s.deps.Settings[k])
	}
	return b.String()
}

func (s *Settings) View(ctx screen.Context) string {
	return screen.Markdown(s.markdown(), s.deps.GlamourStyle, ctx.Width)
}
