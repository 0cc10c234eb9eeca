package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopologyValidates(t *testing.T) {
	require.NotPanics(t, func() { NewTopology() })
}

func TestValidateRejectsDuplicateNames(t *testing.T) {
	n := Stack("s", "",
		Screen("A", "a", Options{}),
		Screen("A", "b", Options{}),
	)
	assert.ErrorIs(t, n.Validate(), ErrDuplicateRoute)
	assert.Panics(t, func() { MustValidate(n) })
}

func TestValidateNested(t *testing.T) {
	inner := Tabs("t", "", Screen("X", "x", Options{}), Screen("X", "y", Options{}))
	outer := Stack("s", "", Nested("T", inner, Options{}))
	assert.ErrorIs(t, outer.Validate(), ErrDuplicateRoute)
}

func TestValidateRejectsBadRoutes(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want error
	}{
		{"empty", Stack("s", ""), ErrInvalidNode},
		{"unnamed", Stack("s", "", Screen("", "a", Options{})), ErrInvalidNode},
		{"neither", Stack("s", "", Route{Name: "A"}), ErrInvalidNode},
		{"both", Stack("s", "", Route{Name: "A", Screen: "a", Child: Stack("c", "", Screen("B", "b", Options{}))}), ErrInvalidNode},
		{"unknown initial", Stack("s", "Z", Screen("A", "a", Options{})), ErrUnknownRoute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.node.Validate(), tt.want)
		})
	}
}

func TestUnauthenticatedStartsAtLogin(t *testing.T) {
	nv := Mount(Unauthenticated())
	assert.Equal(t, []string{RouteLogin}, nv.ActivePath())
	assert.Empty(t, nv.Headers(), "auth flow hides headers")
	assert.False(t, nv.OpenDrawer())
}

func TestAuthenticatedInitialPath(t *testing.T) {
	nv := Mount(Authenticated())
	assert.Equal(t, []string{RoutePrincipal, RouteTab, RouteHome}, nv.ActivePath())

	headers := nv.Headers()
	require.Len(t, headers, 1, "stack must not render a header above the tabs")
	assert.Equal(t, RouteHome, headers[0].Title)
	assert.Equal(t, "#2B9ACA", headers[0].Options.HeaderStyle.Background)
}

func TestNavigateSwitchesTabs(t *testing.T) {
	nv := Mount(Authenticated())
	require.NoError(t, nv.Navigate(RouteInformes, nil))
	assert.Equal(t, []string{RoutePrincipal, RouteTab, RouteInformes}, nv.ActivePath())

	require.True(t, nv.Back())
	assert.Equal(t, RouteHome, nv.Focused().Route.Name, "tabs go back to the initial tab")
	assert.False(t, nv.CanGoBack())
}

func TestNavigatePushesAndPopsStack(t *testing.T) {
	nv := Mount(Authenticated())
	require.NoError(t, nv.Navigate(RouteDatos, Params{"medida": "temp"}))
	require.NoError(t, nv.Navigate(RouteCamera, nil))
	assert.Equal(t, []string{RoutePrincipal, RouteCamera}, nv.ActivePath())

	// Navigating to a route already in history pops back to it.
	require.NoError(t, nv.Navigate(RouteDatos, nil))
	f := nv.Focused()
	assert.Equal(t, RouteDatos, f.Route.Name)
	assert.Equal(t, "temp", f.Params["medida"])

	require.True(t, nv.Back())
	assert.Equal(t, []string{RoutePrincipal, RouteTab, RouteHome}, nv.ActivePath())
}

func TestNavigateIntoNestedTabFromStack(t *testing.T) {
	nv := Mount(Authenticated())
	require.NoError(t, nv.Navigate(RouteMenu, nil))
	require.NoError(t, nv.Navigate(RouteMedidas, nil))
	require.NoError(t, nv.Navigate(RouteInformes, nil))

	assert.Equal(t, []string{RoutePrincipal, RouteTab, RouteInformes}, nv.ActivePath())
	require.True(t, nv.Back())
	assert.Equal(t, RouteHome, nv.Focused().Route.Name)
	assert.False(t, nv.CanGoBack(), "Medidas was popped off the stack")
}

func TestNavigateFromSettingsBackIntoPrincipal(t *testing.T) {
	nv := Mount(Authenticated())
	require.NoError(t, nv.Navigate(RouteAjustes, nil))
	assert.Equal(t, []string{RouteAjustes}, nv.ActivePath())
	require.Len(t, nv.Headers(), 1)

	require.NoError(t, nv.Navigate(RouteUser, nil))
	assert.Equal(t, []string{RoutePrincipal, RouteUser}, nv.ActivePath())
}

func TestNavigateUnknown(t *testing.T) {
	nv := Mount(Unauthenticated())
	assert.ErrorIs(t, nv.Navigate(RouteHome, nil), ErrUnknownRoute)
	assert.Equal(t, []string{RouteLogin}, nv.ActivePath())
}

func TestTabStateSurvivesStackPush(t *testing.T) {
	nv := Mount(Authenticated())
	require.NoError(t, nv.Navigate(RouteInformes, nil))
	require.NoError(t, nv.Navigate(RouteDatos, nil))
	require.True(t, nv.Back())
	assert.Equal(t, RouteInformes, nv.Focused().Route.Name)
}

func TestDrawerOpenCloseAndNavigate(t *testing.T) {
	nv := Mount(Authenticated())
	d, ok := nv.Drawer()
	require.True(t, ok)
	assert.Equal(t, DrawerRight, d.Drawer.Position)
	assert.Equal(t, DrawerFront, d.Drawer.Type)

	assert.True(t, nv.ToggleDrawer())
	assert.True(t, nv.DrawerOpen())
	require.True(t, nv.Back())
	assert.False(t, nv.DrawerOpen())

	nv.OpenDrawer()
	require.NoError(t, nv.Navigate(RouteUser, nil))
	assert.False(t, nv.DrawerOpen(), "navigation closes the drawer")
}

func TestMountIsFresh(t *testing.T) {
	topo := NewTopology()
	first := Mount(topo.Authenticated)
	require.NoError(t, first.Navigate(RouteCamera, nil))

	second := Mount(topo.Authenticated)
	assert.Equal(t, []string{RoutePrincipal, RouteTab, RouteHome}, second.ActivePath())
	assert.False(t, second.CanGoBack())
}

func TestRouteFallbacks(t *testing.T) {
	r := Screen("Home", ScreenHome, Options{})
	assert.Equal(t, "Home", r.Title())
	assert.Equal(t, "Home", r.Label())

	menu := TabSet().Routes[0]
	assert.Equal(t, "Administrar datos", menu.Title())
	assert.Equal(t, "Datos", menu.Label())
}
