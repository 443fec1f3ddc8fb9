package cursor

import (
	"fmt"

	"github.com/dshills/lexbridge/internal/engine"
)

// Caret is a selection point resolved onto a leaf. Caret is an immutable
// value type.
type Caret struct {
	leaf   engine.NodeKey
	offset int
	index  int
}

// Leaf returns the key of the leaf the caret sits in.
func (c Caret) Leaf() engine.NodeKey { return c.leaf }

// Offset returns the caret offset within its leaf.
func (c Caret) Offset() int { return c.offset }

// Compare returns -1 if c < other, 0 if c == other, 1 if c > other.
func (c Caret) Compare(other Caret) int {
	switch {
	case c.index < other.index:
		return -1
	case c.index > other.index:
		return 1
	case c.offset < other.offset:
		return -1
	case c.offset > other.offset:
		return 1
	}
	return 0
}

// Before returns true if c is before other.
func (c Caret) Before(other Caret) bool { return c.Compare(other) < 0 }

// String returns a string representation of the caret.
func (c Caret) String() string {
	return fmt.Sprintf("Caret(%s:%d)", c.leaf, c.offset)
}

// Point converts the caret back into a selection point.
func (c Caret) Point(v engine.View) engine.Point {
	n := v.Node(c.leaf)
	if n != nil && n.Kind == engine.KindText {
		return engine.TextPoint(c.leaf, c.offset)
	}
	if c.offset == 0 {
		return pointBefore(v, c.leaf)
	}
	return pointAfter(v, c.leaf)
}

// Resolve maps a selection point onto a leaf.
func Resolve(v engine.View, p engine.Point) (Caret, bool) {
	n := v.Node(p.Key)
	if n == nil {
		return Caret{}, false
	}
	leaf, off := n, p.Offset
	if n.Kind == engine.KindElement && len(n.Children) > 0 {
		if p.Offset < len(n.Children) {
			leaf, off = edgeLeaf(v, n.Children[max(p.Offset, 0)], false), 0
		} else {
			leaf = edgeLeaf(v, n.Children[len(n.Children)-1], true)
			off = leafLen(leaf)
		}
	}
	if leaf == nil || leaf.Key == engine.RootKey {
		return Caret{}, false
	}
	off = min(max(off, 0), leafLen(leaf))
	if leaf.Kind != engine.KindText && leaf.Kind != engine.KindLineBreak {
		off = 0
	}

	for i, l := range engine.Leaves(v, engine.RootKey) {
		if l.Key == leaf.Key {
			return Caret{leaf: leaf.Key, offset: off, index: i}, true
		}
	}
	return Caret{}, false
}

// Range resolves the selection into an ordered pair of carets.
func Range(v engine.View) (start, end Caret, ok bool) {
	sel := v.Selection()
	if sel == nil {
		return Caret{}, Caret{}, false
	}
	a, okA := Resolve(v, sel.Anchor)
	f, okF := Resolve(v, sel.Focus)
	if !okA || !okF {
		return Caret{}, Caret{}, false
	}
	if f.Before(a) {
		a, f = f, a
	}
	return a, f, true
}

// edgeLeaf returns the first or last leaf under key, treating an empty
// element as its own leaf.
func edgeLeaf(v engine.View, key engine.NodeKey, last bool) *engine.Node {
	n := v.Node(key)
	if n == nil || n.Kind != engine.KindElement || len(n.Children) == 0 {
		return n
	}
	if last {
		return engine.LastLeaf(v, key)
	}
	return engine.FirstLeaf(v, key)
}

func leafLen(n *engine.Node) int {
	if n == nil {
		return 0
	}
	switch n.Kind {
	case engine.KindText:
		return len(n.Text)
	case engine.KindLineBreak:
		return 1
	}
	return 0
}

func pointBefore(v engine.View, key engine.NodeKey) engine.Point {
	n := v.Node(key)
	switch n.Kind {
	case engine.KindText:
		return engine.TextPoint(key, 0)
	case engine.KindLineBreak:
		return engine.ElementPoint(n.Parent, engine.IndexOf(v, key))
	}
	return engine.ElementPoint(key, 0)
}

func pointAfter(v engine.View, key engine.NodeKey) engine.Point {
	n := v.Node(key)
	switch n.Kind {
	case engine.KindText:
		return engine.TextPoint(key, len(n.Text))
	case engine.KindLineBreak:
		return engine.ElementPoint(n.Parent, engine.IndexOf(v, key)+1)
	}
	return engine.ElementPoint(key, len(n.Children))
}

// blockOf returns the block holding leaf; an empty block is its own.
func blockOf(v engine.View, leaf engine.NodeKey) *engine.Node {
	n := v.Node(leaf)
	if engine.IsBlock(v, n) {
		return n
	}
	return engine.NearestBlock(v, leaf)
}
