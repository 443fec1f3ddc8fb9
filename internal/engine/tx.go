package engine

import (
	"fmt"
	"sort"
)

// Tx is an in-flight transaction. It implements View over the pending tree.
//
// Structural helpers do not return errors. The first failure is recorded on
// the transaction and surfaces from Engine.Update, which then discards the
// pending tree.
type Tx struct {
	ed  *Engine
	reg *Registry

	nodes     map[NodeKey]*Node
	owned     map[NodeKey]bool
	selection *Selection

	// dirtyElements maps an element to whether it was written directly
	// (true) or only marked because a descendant changed (false).
	dirtyElements map[NodeKey]bool
	dirtyLeaves   map[NodeKey]bool
	writes        map[NodeKey]int

	tags map[string]bool
	err  error
}

func newTx(ed *Engine, base *State) *Tx {
	nodes := make(map[NodeKey]*Node, len(base.nodes))
	for k, n := range base.nodes {
		nodes[k] = n
	}
	return &Tx{
		ed:            ed,
		reg:           ed.reg,
		nodes:         nodes,
		owned:         make(map[NodeKey]bool),
		selection:     base.selection.clone(),
		dirtyElements: make(map[NodeKey]bool),
		dirtyLeaves:   make(map[NodeKey]bool),
		writes:        make(map[NodeKey]int),
		tags:          make(map[string]bool),
	}
}

// Node implements View.
func (tx *Tx) Node(key NodeKey) *Node { return tx.nodes[key] }

// Root implements View.
func (tx *Tx) Root() *Node { return tx.nodes[RootKey] }

// Selection implements View.
func (tx *Tx) Selection() *Selection { return tx.selection.clone() }

// Registry implements View.
func (tx *Tx) Registry() *Registry { return tx.reg }

// Engine returns the engine running the transaction.
func (tx *Tx) Engine() *Engine { return tx.ed }

// Fail records err as the transaction's failure. Only the first failure is
// kept.
func (tx *Tx) Fail(err error) {
	if tx.err == nil && err != nil {
		tx.err = err
	}
}

// Err returns the recorded failure, if any.
func (tx *Tx) Err() error { return tx.err }

// AddTag attaches an update tag that listeners will see.
func (tx *Tx) AddTag(tag string) { tx.tags[tag] = true }

// HasTag reports whether tag is attached to the transaction.
func (tx *Tx) HasTag(tag string) bool { return tx.tags[tag] }

// IsDirty reports whether key has been written in this transaction.
func (tx *Tx) IsDirty(key NodeKey) bool {
	return tx.dirtyLeaves[key] || tx.dirtyElements[key]
}

// Writable returns a transaction-owned copy of the node and marks it dirty.
func (tx *Tx) Writable(key NodeKey) *Node {
	n := tx.nodes[key]
	if n == nil {
		tx.Fail(fmt.Errorf("write %q: %w", key, ErrNodeNotFound))
		return &Node{}
	}
	if !tx.owned[key] {
		n = n.clone()
		tx.nodes[key] = n
		tx.owned[key] = true
	}
	tx.markDirty(n)
	return n
}

func (tx *Tx) markDirty(n *Node) {
	tx.writes[n.Key]++
	if n.Kind == KindElement {
		tx.dirtyElements[n.Key] = true
	} else {
		tx.dirtyLeaves[n.Key] = true
	}
	tx.markAncestors(n.Parent)
}

func (tx *Tx) markAncestors(key NodeKey) {
	for key != "" {
		if _, ok := tx.dirtyElements[key]; !ok {
			tx.dirtyElements[key] = false
		}
		p := tx.nodes[key]
		if p == nil {
			return
		}
		key = p.Parent
	}
}

// Create makes a new detached node of the given variant.
func (tx *Tx) Create(t NodeType) *Node {
	spec, ok := tx.reg.Lookup(t)
	if !ok {
		tx.Fail(fmt.Errorf("create %q: %w", t, ErrNodeNotRegistered))
		return &Node{Type: t}
	}
	n := &Node{Key: tx.ed.newKey(), Type: t, Kind: spec.Kind}
	tx.nodes[n.Key] = n
	tx.owned[n.Key] = true
	tx.markDirty(n)
	return n
}

// CreateText makes a new detached text node of a text variant.
func (tx *Tx) CreateText(t NodeType, text string) *Node {
	n := tx.Create(t)
	if n.Key != "" && n.Kind != KindText {
		tx.Fail(fmt.Errorf("create %q: %w", t, ErrNotText))
	}
	n.Text = text
	return n
}

// CreateParagraph makes a new detached paragraph.
func (tx *Tx) CreateParagraph() *Node {
	return tx.Create(NodeParagraph)
}

func (tx *Tx) element(key NodeKey) *Node {
	n := tx.nodes[key]
	if n == nil {
		tx.Fail(fmt.Errorf("element %q: %w", key, ErrNodeNotFound))
		return nil
	}
	if n.Kind != KindElement {
		tx.Fail(fmt.Errorf("element %q: %w", key, ErrNotElement))
		return nil
	}
	return n
}

// detach unlinks key from its parent without deleting it.
func (tx *Tx) detach(key NodeKey) {
	n := tx.nodes[key]
	if n == nil || n.Parent == "" {
		return
	}
	if parent := tx.nodes[n.Parent]; parent != nil {
		p := tx.Writable(parent.Key)
		for i, k := range p.Children {
			if k == key {
				p.Children = append(p.Children[:i:i], p.Children[i+1:]...)
				break
			}
		}
	}
	tx.Writable(key).Parent = ""
}

// Append moves the given nodes to the end of parent's children.
func (tx *Tx) Append(parent NodeKey, keys ...NodeKey) {
	if tx.element(parent) == nil {
		return
	}
	for _, key := range keys {
		if tx.nodes[key] == nil {
			tx.Fail(fmt.Errorf("append %q: %w", key, ErrNodeNotFound))
			return
		}
		tx.detach(key)
		p := tx.Writable(parent)
		p.Children = append(p.Children, key)
		tx.Writable(key).Parent = parent
	}
}

// Prepend moves key to the front of parent's children.
func (tx *Tx) Prepend(parent, key NodeKey) {
	if tx.element(parent) == nil {
		return
	}
	first := tx.nodes[parent].Children
	if len(first) == 0 {
		tx.Append(parent, key)
		return
	}
	tx.InsertBefore(first[0], key)
}

// InsertBefore moves key directly before ref.
func (tx *Tx) InsertBefore(ref, key NodeKey) {
	tx.insertAt(ref, key, 0)
}

// InsertAfter moves key directly after ref.
func (tx *Tx) InsertAfter(ref, key NodeKey) {
	tx.insertAt(ref, key, 1)
}

func (tx *Tx) insertAt(ref, key NodeKey, delta int) {
	r := tx.nodes[ref]
	if r == nil || r.Parent == "" || tx.nodes[key] == nil {
		tx.Fail(fmt.Errorf("insert %q next to %q: %w", key, ref, ErrNodeNotFound))
		return
	}
	parentKey := r.Parent
	tx.detach(key)
	p := tx.Writable(parentKey)
	idx := -1
	for i, k := range p.Children {
		if k == ref {
			idx = i + delta
			break
		}
	}
	if idx < 0 {
		tx.Fail(fmt.Errorf("insert next to %q: %w", ref, ErrNodeNotFound))
		return
	}
	p.Children = append(p.Children, "")
	copy(p.Children[idx+1:], p.Children[idx:])
	p.Children[idx] = key
	tx.Writable(key).Parent = parentKey
}

// Remove detaches key and deletes it together with its subtree.
func (tx *Tx) Remove(key NodeKey) {
	if key == RootKey {
		tx.Fail(fmt.Errorf("remove root: %w", ErrNotElement))
		return
	}
	if tx.nodes[key] == nil {
		return
	}
	tx.detach(key)
	var doomed []NodeKey
	Walk(tx, key, func(n *Node) bool {
		doomed = append(doomed, n.Key)
		return true
	})
	for _, k := range doomed {
		delete(tx.nodes, k)
		delete(tx.owned, k)
		delete(tx.writes, k)
	}
}

// Replace puts replacement where old is and removes old. With moveChildren
// the children of old are moved to replacement first.
func (tx *Tx) Replace(old, replacement NodeKey, moveChildren bool) {
	o := tx.nodes[old]
	if o == nil {
		tx.Fail(fmt.Errorf("replace %q: %w", old, ErrNodeNotFound))
		return
	}
	tx.InsertAfter(old, replacement)
	if moveChildren {
		children := append([]NodeKey(nil), o.Children...)
		tx.Append(replacement, children...)
	}
	if tx.selection != nil {
		for _, p := range []*Point{&tx.selection.Anchor, &tx.selection.Focus} {
			if p.Key == old {
				p.Key = replacement
			}
		}
	}
	tx.Remove(old)
}

// SetText replaces the text of a text node.
func (tx *Tx) SetText(key NodeKey, text string) {
	n := tx.nodes[key]
	if n == nil || n.Kind != KindText {
		tx.Fail(fmt.Errorf("set text %q: %w", key, ErrNotText))
		return
	}
	tx.Writable(key).Text = text
}

// SplitText cuts a text node at the given byte offsets. The first segment
// keeps key; later segments are new nodes of the same variant and format,
// inserted after it. Offsets at the node's edges are ignored. The selection
// follows the text it pointed into.
func (tx *Tx) SplitText(key NodeKey, offsets ...int) []NodeKey {
	n := tx.nodes[key]
	if n == nil || n.Kind != KindText {
		tx.Fail(fmt.Errorf("split %q: %w", key, ErrNotText))
		return nil
	}
	text := n.Text
	cuts := make([]int, 0, len(offsets))
	seen := make(map[int]bool)
	for _, off := range offsets {
		if off < 0 || off > len(text) {
			tx.Fail(fmt.Errorf("split %q at %d: %w", key, off, ErrInvalidOffset))
			return nil
		}
		if off == 0 || off == len(text) || seen[off] {
			continue
		}
		seen[off] = true
		cuts = append(cuts, off)
	}
	sort.Ints(cuts)
	if len(cuts) == 0 {
		return []NodeKey{key}
	}

	bounds := append([]int{0}, cuts...)
	bounds = append(bounds, len(text))
	keys := []NodeKey{key}
	tx.SetText(key, text[:bounds[1]])
	prev := key
	for i := 1; i < len(bounds)-1; i++ {
		seg := tx.CreateText(n.Type, text[bounds[i]:bounds[i+1]])
		seg.Format = n.Format
		tx.InsertAfter(prev, seg.Key)
		keys = append(keys, seg.Key)
		prev = seg.Key
	}

	if tx.selection != nil {
		for _, p := range []*Point{&tx.selection.Anchor, &tx.selection.Focus} {
			if p.Key != key || p.Type != PointText {
				continue
			}
			for i := len(bounds) - 2; i >= 1; i-- {
				if p.Offset > bounds[i] {
					p.Key = keys[i]
					p.Offset -= bounds[i]
					break
				}
			}
		}
	}
	return keys
}

// SetSelection replaces the selection. Passing nil clears it.
func (tx *Tx) SetSelection(sel *Selection) {
	tx.selection = sel.clone()
}

// RetargetSelection moves selection points that address from onto to.
// Text offsets are kept; element offsets reset to the start of to.
func (tx *Tx) RetargetSelection(from, to NodeKey) {
	if tx.selection == nil {
		return
	}
	n := tx.nodes[to]
	if n == nil {
		return
	}
	for _, p := range []*Point{&tx.selection.Anchor, &tx.selection.Focus} {
		if p.Key != from {
			continue
		}
		p.Key = to
		if n.Kind != KindText {
			*p = ElementPoint(to, 0)
		}
	}
}

// SelectStart collapses the selection at the start of key.
func (tx *Tx) SelectStart(key NodeKey) {
	tx.selectEdge(key, false)
}

// SelectEnd collapses the selection at the end of key.
func (tx *Tx) SelectEnd(key NodeKey) {
	tx.selectEdge(key, true)
}

func (tx *Tx) selectEdge(key NodeKey, end bool) {
	n := tx.nodes[key]
	if n == nil {
		tx.Fail(fmt.Errorf("select %q: %w", key, ErrNodeNotFound))
		return
	}
	switch n.Kind {
	case KindText:
		off := 0
		if end {
			off = len(n.Text)
		}
		tx.selection = Collapsed(TextPoint(key, off))
	case KindLineBreak:
		parent := tx.nodes[n.Parent]
		idx := IndexOf(tx, key)
		if end {
			idx++
		}
		if parent != nil {
			tx.selection = Collapsed(ElementPoint(parent.Key, idx))
		}
	default:
		leaf := FirstLeaf(tx, key)
		if end {
			leaf = LastLeaf(tx, key)
		}
		if leaf == nil || leaf.Key == key {
			off := 0
			if end {
				off = len(n.Children)
			}
			tx.selection = Collapsed(ElementPoint(key, off))
			return
		}
		tx.selectEdge(leaf.Key, end)
	}
}

// normalizeSelection repairs points that refer to removed or detached nodes
// and clamps offsets.
func (tx *Tx) normalizeSelection() {
	if tx.selection == nil {
		return
	}
	for _, p := range []*Point{&tx.selection.Anchor, &tx.selection.Focus} {
		n := tx.nodes[p.Key]
		if n == nil || !IsAttached(tx, p.Key) {
			last := LastLeaf(tx, RootKey)
			if last == nil {
				tx.selection = nil
				return
			}
			saved := tx.selection
			tx.selectEdge(last.Key, true)
			repaired := tx.selection.Anchor
			tx.selection = saved
			*p = repaired
			continue
		}
		switch n.Kind {
		case KindText:
			p.Type = PointText
			if p.Offset > len(n.Text) {
				p.Offset = len(n.Text)
			}
		case KindLineBreak:
			p.Offset = IndexOf(tx, n.Key)
			p.Key = n.Parent
			p.Type = PointElement
		default:
			p.Type = PointElement
			if p.Offset > len(n.Children) {
				p.Offset = len(n.Children)
			}
		}
		if p.Offset < 0 {
			p.Offset = 0
		}
	}
}
