package engine

// PointType tells whether a selection point addresses text or an element.
type PointType int

const (
	// PointText points at a byte offset inside a text node.
	PointText PointType = iota
	// PointElement points at a child index inside an element.
	PointElement
)

// Point is one end of a selection.
type Point struct {
	Key    NodeKey
	Offset int
	Type   PointType
}

// TextPoint returns a point inside a text node.
func TextPoint(key NodeKey, offset int) Point {
	return Point{Key: key, Offset: offset, Type: PointText}
}

// ElementPoint returns a point at a child index of an element.
func ElementPoint(key NodeKey, offset int) Point {
	return Point{Key: key, Offset: offset, Type: PointElement}
}

// Selection is a range selection between an anchor and a focus point.
type Selection struct {
	Anchor Point
	Focus  Point
}

// Collapsed returns a collapsed selection at p.
func Collapsed(p Point) *Selection {
	return &Selection{Anchor: p, Focus: p}
}

// IsCollapsed reports whether anchor and focus coincide.
func (s *Selection) IsCollapsed() bool {
	return s.Anchor == s.Focus
}

func (s *Selection) clone() *Selection {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// View is read access to a document tree. Both a committed State and an
// in-flight Tx implement it, so queries can be shared between reads and
// writes.
type View interface {
	// Node returns the node for key, or nil. The node must not be modified.
	Node(key NodeKey) *Node
	// Root returns the root element.
	Root() *Node
	// Selection returns a copy of the current selection, or nil.
	Selection() *Selection
	// Registry returns the node-type registry the tree was built against.
	Registry() *Registry
}

// State is an immutable snapshot of the document and selection.
type State struct {
	nodes     map[NodeKey]*Node
	selection *Selection
	empty     bool
	reg       *Registry
}

// newEmptyState returns the state an engine starts with: a root without
// children, no selection, flagged as empty.
func newEmptyState(reg *Registry) *State {
	return &State{
		nodes: map[NodeKey]*Node{
			RootKey: {Key: RootKey, Type: NodeRoot, Kind: KindElement},
		},
		empty: true,
		reg:   reg,
	}
}

// Node implements View.
func (s *State) Node(key NodeKey) *Node { return s.nodes[key] }

// Root implements View.
func (s *State) Root() *Node { return s.nodes[RootKey] }

// Selection implements View.
func (s *State) Selection() *Selection { return s.selection.clone() }

// Registry implements View.
func (s *State) Registry() *Registry { return s.reg }

// IsEmpty reports whether this is the initial state of an engine that has
// not committed any transaction yet.
func (s *State) IsEmpty() bool { return s.empty }

// Len returns the number of nodes, the root included.
func (s *State) Len() int { return len(s.nodes) }

// Read runs a side-effect-free query against the snapshot.
func (s *State) Read(fn func(v View)) {
	fn(s)
}

// Query runs fn against s and returns its result.
func Query[T any](s *State, fn func(v View) T) T {
	var out T
	s.Read(func(v View) { out = fn(v) })
	return out
}
