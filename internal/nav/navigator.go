package nav

import "fmt"

// Params are the route parameters injected into a screen.
type Params map[string]string

type entry struct {
	index  int
	params Params
}

// state is the runtime history of one Node.
type state struct {
	node *Node

	// stack navigators
	stack []entry

	// tab and drawer navigators
	active int
	params map[int]Params

	children map[int]*state
}

func newState(n *Node) *state {
	s := &state{node: n, children: make(map[int]*state)}
	initial := n.InitialIndex()
	if n.Kind == KindStack {
		s.stack = []entry{{index: initial}}
	} else {
		s.active = initial
		s.params = make(map[int]Params)
	}
	return s
}

func (s *state) activeIndex() int {
	if s.node.Kind == KindStack {
		return s.stack[len(s.stack)-1].index
	}
	return s.active
}

func (s *state) activeParams() Params {
	if s.node.Kind == KindStack {
		return s.stack[len(s.stack)-1].params
	}
	return s.params[s.active]
}

// child returns the state of the nested navigator at route i, creating it
// on first use. It returns nil for leaf routes.
func (s *state) child(i int) *state {
	r := s.node.Routes[i]
	if r.Child == nil {
		return nil
	}
	c, ok := s.children[i]
	if !ok {
		c = newState(r.Child)
		s.children[i] = c
	}
	return c
}

// focus makes route i active. In a stack a route already in history is
// popped back to; otherwise it is pushed.
func (s *state) focus(i int, params Params) {
	if s.node.Kind != KindStack {
		s.active = i
		if params != nil {
			s.params[i] = params
		}
		return
	}

	for pos, e := range s.stack {
		if e.index != i {
			continue
		}
		for _, dropped := range s.stack[pos+1:] {
			delete(s.children, dropped.index)
		}
		s.stack = s.stack[:pos+1]
		if params != nil {
			s.stack[pos].params = params
		}
		return
	}
	s.stack = append(s.stack, entry{index: i, params: params})
}

// back undoes one step at this level. Stacks pop; tabs and drawers return
// to their initial route.
func (s *state) back() bool {
	if s.node.Kind == KindStack {
		if len(s.stack) < 2 {
			return false
		}
		top := s.stack[len(s.stack)-1]
		delete(s.children, top.index)
		s.stack = s.stack[:len(s.stack)-1]
		return true
	}
	initial := s.node.InitialIndex()
	if s.active == initial {
		return false
	}
	s.active = initial
	return true
}

// Level describes one navigator on the active path.
type Level struct {
	Node   *Node
	Active int
	Route  Route
	Params Params
	Depth  int
}

// Frame is what a focused screen receives.
type Frame struct {
	Route  Route
	Params Params
}

// Header is a visible header on the active path.
type Header struct {
	Title   string
	Options Options
}

// Navigator interprets a Node tree and holds its history.
type Navigator struct {
	root       *Node
	st         *state
	drawerOpen bool
}

// Mount creates a navigator with fresh history at every initial route.
func Mount(root *Node) *Navigator {
	return &Navigator{root: root, st: newState(root)}
}

// Root returns the declared tree.
func (nv *Navigator) Root() *Node {
	return nv.root
}

func (nv *Navigator) chain() []*state {
	var out []*state
	for s := nv.st; s != nil; s = s.child(s.activeIndex()) {
		out = append(out, s)
	}
	return out
}

// Levels returns the active path from the root navigator down.
func (nv *Navigator) Levels() []Level {
	chain := nv.chain()
	out := make([]Level, 0, len(chain))
	for _, s := range chain {
		i := s.activeIndex()
		depth := 1
		if s.node.Kind == KindStack {
			depth = len(s.stack)
		}
		out = append(out, Level{
			Node:   s.node,
			Active: i,
			Route:  s.node.Routes[i],
			Params: s.activeParams(),
			Depth:  depth,
		})
	}
	return out
}

// ActivePath returns the names of the active routes from the root down.
func (nv *Navigator) ActivePath() []string {
	levels := nv.Levels()
	out := make([]string, len(levels))
	for i, l := range levels {
		out[i] = l.Route.Name
	}
	return out
}

// Focused returns the leaf route that currently has focus.
func (nv *Navigator) Focused() Frame {
	levels := nv.Levels()
	last := levels[len(levels)-1]
	return Frame{Route: last.Route, Params: last.Params}
}

// Headers returns the headers visible on the active path, outermost first.
func (nv *Navigator) Headers() []Header {
	var out []Header
	for _, l := range nv.Levels() {
		if l.Route.Options.HeaderShown {
			out = append(out, Header{Title: l.Route.Title(), Options: l.Route.Options})
		}
	}
	return out
}

// Navigate focuses the named route. The active path is searched deepest
// first, then every nested navigator below it, activating the containing
// chain. A successful navigation closes the drawer.
func (nv *Navigator) Navigate(name string, params Params) error {
	chain := nv.chain()
	for i := len(chain) - 1; i >= 0; i-- {
		if idx := chain[i].node.Index(name); idx >= 0 {
			chain[i].focus(idx, params)
			nv.drawerOpen = false
			return nil
		}
	}
	for i := len(chain) - 1; i >= 0; i-- {
		if path := findPath(chain[i].node, name); path != nil {
			s := chain[i]
			for j, idx := range path {
				if j == len(path)-1 {
					s.focus(idx, params)
					break
				}
				s.focus(idx, nil)
				s = s.child(idx)
			}
			nv.drawerOpen = false
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownRoute, name)
}

// findPath returns the route indices leading from n to a nested route
// named name, or nil. Routes of n itself are not considered.
func findPath(n *Node, name string) []int {
	for i, r := range n.Routes {
		if r.Child == nil {
			continue
		}
		if j := r.Child.Index(name); j >= 0 {
			return []int{i, j}
		}
		if sub := findPath(r.Child, name); sub != nil {
			return append([]int{i}, sub...)
		}
	}
	return nil
}

// Back closes an open drawer or undoes the deepest navigation step.
func (nv *Navigator) Back() bool {
	if nv.drawerOpen {
		nv.drawerOpen = false
		return true
	}
	chain := nv.chain()
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].back() {
			return true
		}
	}
	return false
}

// CanGoBack reports whether Back would change anything.
func (nv *Navigator) CanGoBack() bool {
	if nv.drawerOpen {
		return true
	}
	for _, s := range nv.chain() {
		if s.node.Kind == KindStack && len(s.stack) > 1 {
			return true
		}
		if s.node.Kind != KindStack && s.active != s.node.InitialIndex() {
			return true
		}
	}
	return false
}

// Drawer returns the drawer node on the active path, if any.
func (nv *Navigator) Drawer() (*Node, bool) {
	for _, s := range nv.chain() {
		if s.node.Kind == KindDrawer {
			return s.node, true
		}
	}
	return nil, false
}

// OpenDrawer opens the drawer. It reports false when the tree has none.
func (nv *Navigator) OpenDrawer() bool {
	if _, ok := nv.Drawer(); !ok {
		return false
	}
	nv.drawerOpen = true
	return true
}

// CloseDrawer closes the drawer.
func (nv *Navigator) CloseDrawer() {
	nv.drawerOpen = false
}

// ToggleDrawer flips the drawer state and returns the new value.
func (nv *Navigator) ToggleDrawer() bool {
	if nv.drawerOpen {
		nv.drawerOpen = false
		return false
	}
	return nv.OpenDrawer()
}

// DrawerOpen reports whether the drawer is showing.
func (nv *Navigator) DrawerOpen() bool {
	return nv.drawerOpen
}
