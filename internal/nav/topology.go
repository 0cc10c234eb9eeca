package nav

// Route names used across the shell.
const (
	RouteLogin    = "Login"
	RouteRegister = "Register"

	RouteMenu     = "Menu"
	RouteHome     = "Home"
	RouteInformes = "Informes"

	RouteTab     = "Tab"
	RouteDatos   = "Datos"
	RouteCamera  = "Camera"
	RouteMedidas = "Medidas"
	RouteUser    = "User"

	RoutePrincipal = "Principal"
	RouteAjustes   = "Ajustes"
)

// Screen identifiers. Screens are looked up by these in the renderer.
const (
	ScreenLogin    ScreenID = "login"
	ScreenRegister ScreenID = "register"
	ScreenMenu     ScreenID = "menu"
	ScreenHome     ScreenID = "home"
	ScreenReports  ScreenID = "reports"
	ScreenData     ScreenID = "data"
	ScreenCamera   ScreenID = "camera"
	ScreenMeasures ScreenID = "measures"
	ScreenUser     ScreenID = "user"
	ScreenSettings ScreenID = "settings"
)

const (
	brandBlue = "#2B9ACA"
	white     = "#FFFFFF"
)

func brandHeader() *HeaderStyle {
	return &HeaderStyle{Background: brandBlue, TitleColor: white, TitleBold: true}
}

// Unauthenticated is the sign-in flow.
func Unauthenticated() *Node {
	return Stack("Auth", RouteLogin,
		Screen(RouteLogin, ScreenLogin, Options{}),
		Screen(RouteRegister, ScreenRegister, Options{}),
	)
}

// TabSet is the authenticated tab set. Home is the initial tab.
func TabSet() *Node {
	return Tabs("Tab", RouteHome,
		Screen(RouteMenu, ScreenMenu, Options{
			Title:       "Administrar datos",
			TabLabel:    "Datos",
			Icon:        "✎",
			HeaderShown: true,
			HeaderStyle: brandHeader(),
		}),
		Screen(RouteHome, ScreenHome, Options{
			TabLabel:    "Home",
			Icon:        "⌂",
			HeaderShown: true,
			HeaderStyle: brandHeader(),
		}),
		Screen(RouteInformes, ScreenReports, Options{
			TabLabel:    "Informes",
			Icon:        "▤",
			HeaderShown: true,
			HeaderStyle: brandHeader(),
		}),
	)
}

// Principal is the authenticated top-level stack. The tab set is its first
// route and hides the stack header so only the tab headers render.
func Principal() *Node {
	return Stack("Principal", RouteTab,
		Nested(RouteTab, TabSet(), Options{HeaderStyle: brandHeader()}),
		Screen(RouteDatos, ScreenData, Options{
			Title:             "Ingresar Datos",
			HeaderShown:       true,
			HeaderTransparent: true,
		}),
		Screen(RouteCamera, ScreenCamera, Options{
			HeaderShown:       true,
			HeaderTransparent: true,
			HeaderTint:        white,
		}),
		Screen(RouteMedidas, ScreenMeasures, Options{
			Title:             "Administrar Datos",
			HeaderShown:       true,
			HeaderTransparent: true,
		}),
		Screen(RouteUser, ScreenUser, Options{
			Title:       "Usuario",
			HeaderShown: true,
			HeaderTint:  white,
			HeaderStyle: brandHeader(),
		}),
	)
}

// Authenticated is the outer drawer. It opens from the right and overlays
// the content.
func Authenticated() *Node {
	return Drawer("Drawer", RoutePrincipal, DrawerOptions{Position: DrawerRight, Type: DrawerFront},
		Nested(RoutePrincipal, Principal(), Options{}),
		Screen(RouteAjustes, ScreenSettings, Options{HeaderShown: true}),
	)
}

// Topology holds the two trees the root switch chooses between.
type Topology struct {
	Unauthenticated *Node
	Authenticated   *Node
}

// NewTopology builds and validates both trees.
func NewTopology() Topology {
	return Topology{
		Unauthenticated: MustValidate(Unauthenticated()),
		Authenticated:   MustValidate(Authenticated()),
	}
}
