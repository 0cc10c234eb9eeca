package measures

import (
	"io"
	"log/slog"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medidas/navshell/internal/nav"
	"github.com/medidas/navshell/internal/records"
	"github.com/medidas/navshell/internal/views/screen"
)

func testDeps() screen.Deps {
	return screen.Deps{
		Records:      records.NewLog(),
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		GlamourStyle: "notty",
	}
}

func ctx(params nav.Params) screen.Context {
	return screen.Context{Params: params, SignedIn: true, Width: 80, Height: 24}
}

func typeText(s screen.Screen, c screen.Context, text string) screen.Screen {
	s, _ = s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)}, c)
	return s
}

func press(s screen.Screen, c screen.Context, k tea.KeyType) screen.Screen {
	s, _ = s.Update(tea.KeyMsg{Type: k}, c)
	return s
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"7.2", 7.2, false},
		{" 7,5 ", 7.5, false},
		{"", 0, true},
		{"abc", 0, true},
		{"NaN", 0, true},
		{"inf", 0, true},
		{"-Infinity", 0, true},
		{"1e400", 0, true},
	}
	for _, tt := range tests {
		got, err := parseValue(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want, got, 1e-9)
	}
}

func TestDatosSavesMeasurement(t *testing.T) {
	deps := testDeps()
	c := ctx(nil)
	s := NewDatos(deps)
	s = typeText(s, c, "ph")
	s = press(s, c, tea.KeyTab)
	s = typeText(s, c, "7,1")
	s = press(s, c, tea.KeyEnter)

	list := deps.Records.List()
	require.Len(t, list, 1)
	assert.Equal(t, "ph", list[0].Name)
	assert.InDelta(t, 7.1, list[0].Value, 1e-9)
	assert.Contains(t, s.View(c), "Guardado")
}

func TestDatosRejectsBadValue(t *testing.T) {
	deps := testDeps()
	c := ctx(nil)
	s := NewDatos(deps)
	s = typeText(s, c, "ph")
	s = press(s, c, tea.KeyEnter)

	assert.Equal(t, 0, deps.Records.Len())
	assert.Contains(t, s.View(c), "introduce un valor")
}

func TestDatosRejectsNonFiniteValue(t *testing.T) {
	deps := testDeps()
	c := ctx(nil)
	s := NewDatos(deps)
	s = typeText(s, c, "ph")
	s = press(s, c, tea.KeyTab)
	s = typeText(s, c, "NaN")
	s = press(s, c, tea.KeyEnter)

	assert.Equal(t, 0, deps.Records.Len())
	assert.Contains(t, s.View(c), "valor no numérico")
	assert.NotContains(t, deps.Records.Markdown(), "NaN")
}

func TestDatosPrefillsNameOnFocus(t *testing.T) {
	deps := testDeps()
	c := ctx(nav.Params{"name": "cloro"})
	s := NewDatos(deps)
	s, _ = s.Update(screen.FocusMsg{}, c)
	s = press(s, c, tea.KeyTab)
	s = typeText(s, c, "1")
	press(s, c, tea.KeyEnter)

	require.Equal(t, 1, deps.Records.Len())
	assert.Equal(t, "cloro", deps.Records.List()[0].Name)
}

func TestCameraCaptures(t *testing.T) {
	deps := testDeps()
	c := ctx(nil)
	s := NewCamera(deps)
	s = typeText(s, c, "21.5")
	s = press(s, c, tea.KeyEnter)

	list := deps.Records.List()
	require.Len(t, list, 1)
	assert.Equal(t, records.SourceCamera, list[0].Source)
	assert.Equal(t, "captura", list[0].Name)
	assert.Contains(t, s.View(c), "1 capturas")
}

func TestMedidasDeleteAndRepeat(t *testing.T) {
	deps := testDeps()
	deps.Records.Add(records.Measurement{Name: "ph", Value: 7})
	c := ctx(nil)
	s := NewMedidas(deps)
	assert.Contains(t, s.View(c), "ph")

	_, cmd := s.Update(tea.KeyMsg{Type: tea.KeyEnter}, c)
	require.NotNil(t, cmd)
	assert.Equal(t, screen.NavigateMsg{Route: nav.RouteDatos, Params: nav.Params{"name": "ph"}}, cmd())

	s = typeText(s, c, "d")
	assert.Equal(t, 0, deps.Records.Len())
	assert.Contains(t, s.View(c), "No hay medidas")
}

func TestInformesReport(t *testing.T) {
	deps := testDeps()
	deps.Records.Add(records.Measurement{Name: "ph", Value: 7})
	s := NewInformes(deps)
	v := s.View(ctx(nil))
	assert.Contains(t, v, "Informe de medidas")
	assert.Contains(t, v, "ph")
}
