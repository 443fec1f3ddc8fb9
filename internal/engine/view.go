package engine

import "strings"

// DoubleLineBreak separates the text content of sibling blocks.
const DoubleLineBreak = "\n\n"

// Children returns the child nodes of key in order.
func Children(v View, key NodeKey) []*Node {
	n := v.Node(key)
	if n == nil {
		return nil
	}
	out := make([]*Node, 0, len(n.Children))
	for _, k := range n.Children {
		if c := v.Node(k); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// IsBlock reports whether n is a non-inline element other than the root.
func IsBlock(v View, n *Node) bool {
	if n == nil || n.Kind != KindElement || n.Key == RootKey {
		return false
	}
	spec, ok := v.Registry().Lookup(n.Type)
	return !ok || !spec.Inline
}

// IsIndentable reports whether n takes part in generic indentation.
func IsIndentable(v View, n *Node) bool {
	if n == nil {
		return false
	}
	spec, ok := v.Registry().Lookup(n.Type)
	return ok && spec.Indentable
}

// TextContent returns the text of key and its descendants. Sibling blocks are
// separated by DoubleLineBreak.
func TextContent(v View, key NodeKey) string {
	var b strings.Builder
	writeText(v, v.Node(key), &b)
	return b.String()
}

func writeText(v View, n *Node, b *strings.Builder) {
	if n == nil {
		return
	}
	switch n.Kind {
	case KindText:
		b.WriteString(n.Text)
	case KindLineBreak:
		b.WriteString("\n")
	default:
		children := Children(v, n.Key)
		for i, c := range children {
			writeText(v, c, b)
			if i < len(children)-1 && IsBlock(v, c) {
				b.WriteString(DoubleLineBreak)
			}
		}
	}
}

// IndexOf returns the position of key within its parent, or -1.
func IndexOf(v View, key NodeKey) int {
	n := v.Node(key)
	if n == nil || n.Parent == "" {
		return -1
	}
	parent := v.Node(n.Parent)
	if parent == nil {
		return -1
	}
	for i, k := range parent.Children {
		if k == key {
			return i
		}
	}
	return -1
}

// PrevSibling returns the sibling before key, or nil.
func PrevSibling(v View, key NodeKey) *Node {
	i := IndexOf(v, key)
	if i <= 0 {
		return nil
	}
	return v.Node(v.Node(v.Node(key).Parent).Children[i-1])
}

// NextSibling returns the sibling after key, or nil.
func NextSibling(v View, key NodeKey) *Node {
	i := IndexOf(v, key)
	if i < 0 {
		return nil
	}
	siblings := v.Node(v.Node(key).Parent).Children
	if i+1 >= len(siblings) {
		return nil
	}
	return v.Node(siblings[i+1])
}

// NextSiblings returns every sibling after key.
func NextSiblings(v View, key NodeKey) []*Node {
	i := IndexOf(v, key)
	if i < 0 {
		return nil
	}
	var out []*Node
	for _, k := range v.Node(v.Node(key).Parent).Children[i+1:] {
		out = append(out, v.Node(k))
	}
	return out
}

// Parent returns the parent of key, or nil.
func Parent(v View, key NodeKey) *Node {
	n := v.Node(key)
	if n == nil || n.Parent == "" {
		return nil
	}
	return v.Node(n.Parent)
}

// NearestBlock returns key itself when it is a block, otherwise its closest
// block ancestor.
func NearestBlock(v View, key NodeKey) *Node {
	for n := v.Node(key); n != nil; n = v.Node(n.Parent) {
		if IsBlock(v, n) {
			return n
		}
		if n.Parent == "" {
			return nil
		}
	}
	return nil
}

// IsAttached reports whether key is reachable from the root.
func IsAttached(v View, key NodeKey) bool {
	for n := v.Node(key); n != nil; n = v.Node(n.Parent) {
		if n.Key == RootKey {
			return true
		}
		if n.Parent == "" {
			return false
		}
	}
	return false
}

// Walk visits the subtree under key in document order. Returning false from
// fn skips the node's children.
func Walk(v View, key NodeKey, fn func(n *Node) bool) {
	n := v.Node(key)
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, k := range n.Children {
		Walk(v, k, fn)
	}
}

// Leaves returns every leaf under key in document order. Empty elements
// count as leaves so that a selection can sit in them.
func Leaves(v View, key NodeKey) []*Node {
	var out []*Node
	Walk(v, key, func(n *Node) bool {
		if n.Kind != KindElement || (len(n.Children) == 0 && n.Key != key) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// FirstLeaf returns the first leaf under key, or nil.
func FirstLeaf(v View, key NodeKey) *Node {
	leaves := Leaves(v, key)
	if len(leaves) == 0 {
		return nil
	}
	return leaves[0]
}

// LastLeaf returns the last leaf under key, or nil.
func LastLeaf(v View, key NodeKey) *Node {
	leaves := Leaves(v, key)
	if len(leaves) == 0 {
		return nil
	}
	return leaves[len(leaves)-1]
}

// SelectedNodes returns the leaves covered by the selection in document
// order. A point addressing an element resolves to that element.
func SelectedNodes(v View) []*Node {
	sel := v.Selection()
	if sel == nil {
		return nil
	}
	order := Leaves(v, RootKey)
	pos := func(p Point) int {
		for i, n := range order {
			if n.Key == p.Key {
				return i
			}
		}
		// Element point on a non-empty element: use its first or
		// offset-th leaf.
		n := v.Node(p.Key)
		if n == nil || n.Kind != KindElement || len(n.Children) == 0 {
			return -1
		}
		idx := p.Offset
		if idx >= len(n.Children) {
			idx = len(n.Children) - 1
		}
		target := FirstLeaf(v, n.Children[idx])
		for i, l := range order {
			if target != nil && l.Key == target.Key {
				return i
			}
		}
		return -1
	}
	a, f := pos(sel.Anchor), pos(sel.Focus)
	if a < 0 || f < 0 {
		if n := v.Node(sel.Anchor.Key); n != nil {
			return []*Node{n}
		}
		return nil
	}
	if a > f {
		a, f = f, a
	}
	return append([]*Node(nil), order[a:f+1]...)
}

// SelectedBlocks returns the distinct blocks touched by the selection in
// document order.
func SelectedBlocks(v View) []*Node {
	seen := make(map[NodeKey]bool)
	var out []*Node
	for _, n := range SelectedNodes(v) {
		b := NearestBlock(v, n.Key)
		if b == nil || seen[b.Key] {
			continue
		}
		seen[b.Key] = true
		out = append(out, b)
	}
	return out
}
