// Package nav declares the shell's route topology and interprets it at
// runtime. Nodes are static values built once at startup; a Navigator holds
// the mutable history for one mounted tree.
package nav

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateRoute = errors.New("nav: duplicate route name")
	ErrUnknownRoute   = errors.New("nav: unknown route")
	ErrInvalidNode    = errors.New("nav: invalid node")
)

// Kind is the navigator type of a Node.
type Kind int

const (
	KindStack Kind = iota
	KindTabs
	KindDrawer
)

func (k Kind) String() string {
	switch k {
	case KindStack:
		return "stack"
	case KindTabs:
		return "tabs"
	case KindDrawer:
		return "drawer"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ScreenID names an opaque screen renderable.
type ScreenID string

// HeaderStyle colours a route's header. Colours are hex strings.
type HeaderStyle struct {
	Background string
	TitleColor string
	TitleBold  bool
}

// Options are the per-route presentation settings.
type Options struct {
	Title             string
	HeaderShown       bool
	HeaderTransparent bool
	HeaderTint        string
	Icon              string
	TabLabel          string
	HeaderStyle       *HeaderStyle
}

// Route is a named entry of a Node. Exactly one of Screen and Child is set.
type Route struct {
	Name    string
	Screen  ScreenID
	Child   *Node
	Options Options
}

// Title returns the header title, falling back to the route name.
func (r Route) Title() string {
	if r.Options.Title != "" {
		return r.Options.Title
	}
	return r.Name
}

// Label returns the tab label, falling back to the route name.
func (r Route) Label() string {
	if r.Options.TabLabel != "" {
		return r.Options.TabLabel
	}
	return r.Name
}

// DrawerPosition is the edge a drawer opens from.
type DrawerPosition int

const (
	DrawerLeft DrawerPosition = iota
	DrawerRight
)

// DrawerType controls whether the drawer overlays or pushes content.
type DrawerType int

const (
	DrawerFront DrawerType = iota
	DrawerSlide
)

// DrawerOptions configure a KindDrawer node.
type DrawerOptions struct {
	Position DrawerPosition
	Type     DrawerType
}

// Node is one navigator in the topology.
type Node struct {
	Kind    Kind
	Name    string
	Initial string
	Routes  []Route
	Drawer  DrawerOptions
}

// Screen declares a leaf route.
func Screen(name string, id ScreenID, opts Options) Route {
	return Route{Name: name, Screen: id, Options: opts}
}

// Nested declares a route that renders another navigator.
func Nested(name string, child *Node, opts Options) Route {
	return Route{Name: name, Child: child, Options: opts}
}

// Stack declares a stack navigator. An empty initial selects the first route.
func Stack(name, initial string, routes ...Route) *Node {
	return &Node{Kind: KindStack, Name: name, Initial: initial, Routes: routes}
}

// Tabs declares a tab navigator.
func Tabs(name, initial string, routes ...Route) *Node {
	return &Node{Kind: KindTabs, Name: name, Initial: initial, Routes: routes}
}

// Drawer declares a drawer navigator.
func Drawer(name, initial string, opts DrawerOptions, routes ...Route) *Node {
	return &Node{Kind: KindDrawer, Name: name, Initial: initial, Routes: routes, Drawer: opts}
}

// Index returns the position of the named route, or -1.
func (n *Node) Index(name string) int {
	for i, r := range n.Routes {
		if r.Name == name {
			return i
		}
	}
	return -1
}

// InitialIndex returns the index of the initial route.
func (n *Node) InitialIndex() int {
	if n.Initial == "" {
		return 0
	}
	if i := n.Index(n.Initial); i >= 0 {
		return i
	}
	return 0
}

// Validate checks the node and every nested node. Names must be unique
// within one node, the initial route must exist, and each route must have
// exactly one of a screen or a child.
func (n *Node) Validate() error {
	return n.validate(n.Name)
}

func (n *Node) validate(path string) error {
	if len(n.Routes) == 0 {
		return fmt.Errorf("%w: %s has no routes", ErrInvalidNode, path)
	}
	seen := make(map[string]bool, len(n.Routes))
	for _, r := range n.Routes {
		if r.Name == "" {
			return fmt.Errorf("%w: %s has an unnamed route", ErrInvalidNode, path)
		}
		if seen[r.Name] {
			return fmt.Errorf("%w: %s/%s", ErrDuplicateRoute, path, r.Name)
		}
		seen[r.Name] = true

		hasScreen := r.Screen != ""
		hasChild := r.Child != nil
		if hasScreen == hasChild {
			return fmt.Errorf("%w: %s/%s must have exactly one of screen or child", ErrInvalidNode, path, r.Name)
		}
		if hasChild {
			if err := r.Child.validate(path + "/" + r.Name); err != nil {
				return err
			}
		}
	}
	if n.Initial != "" && !seen[n.Initial] {
		return fmt.Errorf("%w: %s initial route %q", ErrUnknownRoute, path, n.Initial)
	}
	return nil
}

// MustValidate panics if n is misconfigured. Topology errors are startup
// defects, not runtime conditions.
func MustValidate(n *Node) *Node {
	if err := n.Validate(); err != nil {
		panic(err)
	}
	return n
}
