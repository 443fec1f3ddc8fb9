package cursor

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/dshills/lexbridge/internal/engine"
)

// collapse moves the selection to p.
func collapse(tx *engine.Tx, p engine.Point) {
	tx.SetSelection(engine.Collapsed(p))
}

// insertChildAt moves key to position idx among parent's children.
func insertChildAt(tx *engine.Tx, parent engine.NodeKey, idx int, key engine.NodeKey) {
	children := tx.Node(parent).Children
	if idx >= len(children) {
		tx.Append(parent, key)
		return
	}
	tx.InsertBefore(children[max(idx, 0)], key)
}

// containerAt returns the element and child index an element point inserts
// into. A point on the root gets a fresh paragraph.
func containerAt(tx *engine.Tx, p engine.Point) (engine.NodeKey, int) {
	if p.Key != engine.RootKey {
		return p.Key, p.Offset
	}
	para := tx.CreateParagraph()
	insertChildAt(tx, engine.RootKey, p.Offset, para.Key)
	return para.Key, 0
}

// pruneEmpty removes key and then every ancestor left without children,
// stopping below the root.
func pruneEmpty(tx *engine.Tx, key engine.NodeKey) {
	for {
		n := tx.Node(key)
		if n == nil || n.Key == engine.RootKey || n.Kind != engine.KindElement || len(n.Children) > 0 {
			return
		}
		parent := n.Parent
		tx.Remove(key)
		key = parent
	}
}

// mergeBlocks moves the children of src to the end of dst and drops src.
func mergeBlocks(tx *engine.Tx, dst, src engine.NodeKey) {
	children := append([]engine.NodeKey(nil), tx.Node(src).Children...)
	tx.Append(dst, children...)
	pruneEmpty(tx, src)
}

func sameKey(a, b *engine.Node) bool {
	return a != nil && b != nil && a.Key == b.Key
}

// DeleteSelection removes the selected content and collapses the
// selection at its start. It reports whether anything was selected.
func DeleteSelection(tx *engine.Tx) bool {
	start, end, ok := Range(tx)
	if !ok || start.Compare(end) == 0 {
		return false
	}
	startBlock := blockOf(tx, start.leaf)
	endBlock := blockOf(tx, end.leaf)

	var middle []*engine.Node
	if start.index+1 < end.index {
		middle = engine.Leaves(tx, engine.RootKey)[start.index+1 : end.index]
	}
	var middleBlocks []engine.NodeKey
	for _, l := range middle {
		if b := blockOf(tx, l.Key); b != nil && !sameKey(b, startBlock) && !sameKey(b, endBlock) {
			middleBlocks = append(middleBlocks, b.Key)
		}
		tx.Remove(l.Key)
	}
	for _, b := range middleBlocks {
		pruneEmpty(tx, b)
	}

	first := tx.Node(start.leaf)
	if start.leaf == end.leaf {
		if first.Kind == engine.KindText {
			tx.SetText(first.Key, first.Text[:start.offset]+first.Text[end.offset:])
			collapse(tx, engine.TextPoint(first.Key, start.offset))
			return true
		}
		caret := pointBefore(tx, first.Key)
		tx.Remove(first.Key)
		collapse(tx, caret)
		return true
	}

	var caret engine.Point
	switch first.Kind {
	case engine.KindText:
		tx.SetText(first.Key, first.Text[:start.offset])
		caret = engine.TextPoint(first.Key, start.offset)
	case engine.KindLineBreak:
		caret = start.Point(tx)
		if start.offset == 0 {
			tx.Remove(first.Key)
		}
	default:
		caret = engine.ElementPoint(first.Key, 0)
	}

	last := tx.Node(end.leaf)
	switch last.Kind {
	case engine.KindText:
		tx.SetText(last.Key, last.Text[end.offset:])
	case engine.KindLineBreak:
		if end.offset == 1 {
			tx.Remove(last.Key)
		}
	}

	if startBlock != nil && endBlock != nil && !sameKey(startBlock, endBlock) {
		mergeBlocks(tx, startBlock.Key, endBlock.Key)
	}
	collapse(tx, caret)
	return true
}

// InsertText inserts s at the selection, replacing selected content. It
// reports whether there was a selection to insert at.
func InsertText(tx *engine.Tx, s string) bool {
	sel := tx.Selection()
	if sel == nil {
		return false
	}
	if !sel.IsCollapsed() {
		DeleteSelection(tx)
		sel = tx.Selection()
	}
	if s == "" {
		return true
	}

	p := sel.Anchor
	n := tx.Node(p.Key)
	if n == nil {
		return false
	}
	if n.Kind == engine.KindText {
		off := min(p.Offset, len(n.Text))
		tx.SetText(n.Key, n.Text[:off]+s+n.Text[off:])
		collapse(tx, engine.TextPoint(n.Key, off+len(s)))
		return true
	}

	parent, idx := containerAt(tx, p)
	children := tx.Node(parent).Children
	if idx > 0 && idx <= len(children) {
		if prev := tx.Node(children[idx-1]); prev.Kind == engine.KindText {
			off := len(prev.Text) + len(s)
			tx.SetText(prev.Key, prev.Text+s)
			collapse(tx, engine.TextPoint(prev.Key, off))
			return true
		}
	}
	if idx < len(children) {
		if next := tx.Node(children[idx]); next.Kind == engine.KindText {
			tx.SetText(next.Key, s+next.Text)
			collapse(tx, engine.TextPoint(next.Key, len(s)))
			return true
		}
	}
	t := tx.CreateText(engine.NodeText, s)
	insertChildAt(tx, parent, idx, t.Key)
	collapse(tx, engine.TextPoint(t.Key, len(s)))
	return true
}

// InsertRawText inserts s, turning every newline into a line break.
func InsertRawText(tx *engine.Tx, s string) bool {
	for i, line := range strings.Split(s, "\n") {
		if i > 0 && !InsertLineBreak(tx) {
			return false
		}
		if !InsertText(tx, line) {
			return false
		}
	}
	return true
}

// InsertLineBreak inserts a line break at the selection.
func InsertLineBreak(tx *engine.Tx) bool {
	sel := tx.Selection()
	if sel == nil {
		return false
	}
	if !sel.IsCollapsed() {
		DeleteSelection(tx)
		sel = tx.Selection()
	}
	p := sel.Anchor
	n := tx.Node(p.Key)
	if n == nil {
		return false
	}

	br := tx.Create(engine.NodeLineBreak)
	if n.Kind != engine.KindText {
		parent, idx := containerAt(tx, p)
		insertChildAt(tx, parent, idx, br.Key)
		collapse(tx, engine.ElementPoint(parent, idx+1))
		return true
	}

	switch off := p.Offset; {
	case off <= 0:
		tx.InsertBefore(n.Key, br.Key)
		collapse(tx, engine.TextPoint(n.Key, 0))
	case off >= len(n.Text):
		tx.InsertAfter(n.Key, br.Key)
		collapse(tx, pointAfter(tx, br.Key))
	default:
		parts := tx.SplitText(n.Key, off)
		tx.InsertAfter(parts[0], br.Key)
		collapse(tx, engine.TextPoint(parts[1], 0))
	}
	return true
}

// SplitBlock splits the block at the selection into two blocks of the same
// variant and places the selection at the start of the second.
func SplitBlock(tx *engine.Tx) bool {
	sel := tx.Selection()
	if sel == nil {
		return false
	}
	if !sel.IsCollapsed() {
		DeleteSelection(tx)
		sel = tx.Selection()
	}
	p := sel.Anchor
	n := tx.Node(p.Key)
	if n == nil {
		return false
	}
	if p.Key == engine.RootKey {
		para := tx.CreateParagraph()
		insertChildAt(tx, engine.RootKey, p.Offset, para.Key)
		tx.SelectStart(para.Key)
		return true
	}

	var block *engine.Node
	var idx int
	if n.Kind == engine.KindText {
		block = engine.NearestBlock(tx, n.Key)
		switch {
		case p.Offset <= 0:
			idx = engine.IndexOf(tx, n.Key)
		case p.Offset >= len(n.Text):
			idx = engine.IndexOf(tx, n.Key) + 1
		default:
			parts := tx.SplitText(n.Key, p.Offset)
			idx = engine.IndexOf(tx, parts[1])
		}
	} else {
		block, idx = n, p.Offset
	}
	if block == nil {
		return false
	}

	next := tx.Create(block.Type)
	next.Indent = block.Indent
	tx.InsertAfter(block.Key, next.Key)
	children := tx.Node(block.Key).Children
	if idx < len(children) {
		tx.Append(next.Key, append([]engine.NodeKey(nil), children[idx:]...)...)
	}
	tx.SelectStart(next.Key)
	return true
}

// DeleteCharacter deletes one grapheme cluster before (backward) or after
// the caret, or the selected content. At a block edge it joins the block
// with its neighbour.
func DeleteCharacter(tx *engine.Tx, backward bool) bool {
	sel := tx.Selection()
	if sel == nil {
		return false
	}
	if !sel.IsCollapsed() {
		return DeleteSelection(tx)
	}
	c, ok := Resolve(tx, sel.Anchor)
	if !ok {
		return false
	}
	n := tx.Node(c.leaf)
	if n.Kind == engine.KindText {
		if backward && c.offset > 0 {
			start := prevBoundary(n.Text, c.offset)
			tx.SetText(n.Key, n.Text[:start]+n.Text[c.offset:])
			collapse(tx, engine.TextPoint(n.Key, start))
			return true
		}
		if !backward && c.offset < len(n.Text) {
			end := nextBoundary(n.Text, c.offset)
			tx.SetText(n.Key, n.Text[:c.offset]+n.Text[end:])
			collapse(tx, engine.TextPoint(n.Key, c.offset))
			return true
		}
	}

	// A line break the caret sits right next to is the unit to delete.
	if n.Kind == engine.KindLineBreak && (c.offset == 1) == backward {
		caret := pointBefore(tx, n.Key)
		tx.Remove(n.Key)
		collapse(tx, caret)
		return true
	}

	order := engine.Leaves(tx, engine.RootKey)
	block := blockOf(tx, n.Key)
	if block == nil {
		return false
	}
	for i := c.index; ; {
		if backward {
			i--
		} else {
			i++
		}
		if i < 0 || i >= len(order) {
			return false
		}
		target := tx.Node(order[i].Key)
		targetBlock := blockOf(tx, target.Key)
		if targetBlock == nil {
			return false
		}

		if targetBlock.Key != block.Key {
			if backward {
				caret := pointAfter(tx, target.Key)
				if target.Kind == engine.KindElement {
					caret = engine.ElementPoint(target.Key, 0)
				}
				mergeBlocks(tx, targetBlock.Key, block.Key)
				collapse(tx, caret)
			} else {
				caret := c.Point(tx)
				mergeBlocks(tx, block.Key, targetBlock.Key)
				collapse(tx, caret)
			}
			return true
		}

		switch target.Kind {
		case engine.KindText:
			if target.Text == "" {
				continue
			}
			if backward {
				start := prevBoundary(target.Text, len(target.Text))
				tx.SetText(target.Key, target.Text[:start])
				collapse(tx, engine.TextPoint(target.Key, start))
			} else {
				end := nextBoundary(target.Text, 0)
				tx.SetText(target.Key, target.Text[end:])
			}
			return true
		case engine.KindLineBreak:
			tx.Remove(target.Key)
			if n.Kind != engine.KindText {
				if backward {
					collapse(tx, pointBefore(tx, n.Key))
				} else {
					collapse(tx, pointAfter(tx, n.Key))
				}
			}
			return true
		}
		return false
	}
}

// prevBoundary returns the start of the grapheme cluster ending at off.
func prevBoundary(s string, off int) int {
	start := 0
	g := uniseg.NewGraphemes(s[:off])
	for g.Next() {
		start, _ = g.Positions()
	}
	return start
}

// nextBoundary returns the end of the grapheme cluster starting at off.
func nextBoundary(s string, off int) int {
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(s[off:], -1)
	return off + len(cluster)
}

// FormatText toggles format on the selected text. When every selected text
// node already carries it, it is cleared; otherwise it is set on all.
func FormatText(tx *engine.Tx, format engine.TextFormat) bool {
	start, end, ok := Range(tx)
	if !ok || start.Compare(end) == 0 {
		return false
	}
	// Split the end first so the start offset stays valid within one node.
	if last := tx.Node(end.leaf); last.Kind == engine.KindText && end.offset > 0 && end.offset < len(last.Text) {
		tx.SplitText(last.Key, end.offset)
	}
	firstKey, skipFirst := start.leaf, false
	lastKey, includeLast := end.leaf, true
	if last := tx.Node(end.leaf); last.Kind == engine.KindText && end.offset == 0 {
		includeLast = false
	}
	if first := tx.Node(start.leaf); first.Kind == engine.KindText && start.offset > 0 {
		if start.offset >= len(first.Text) {
			skipFirst = true
		} else {
			parts := tx.SplitText(first.Key, start.offset)
			firstKey = parts[1]
			if start.leaf == end.leaf {
				lastKey = parts[1]
			}
		}
	}

	var targets []*engine.Node
	inRange := false
	for _, l := range engine.Leaves(tx, engine.RootKey) {
		if l.Key == firstKey {
			inRange = true
			if skipFirst {
				continue
			}
		}
		if !inRange {
			continue
		}
		if l.Key == lastKey && !includeLast {
			break
		}
		if l.Kind == engine.KindText && l.Text != "" {
			targets = append(targets, l)
		}
		if l.Key == lastKey {
			break
		}
	}
	if len(targets) == 0 {
		return false
	}

	all := true
	for _, t := range targets {
		if !t.Format.Has(format) {
			all = false
			break
		}
	}
	for _, t := range targets {
		w := tx.Writable(t.Key)
		if all {
			w.Format &^= format
		} else {
			w.Format |= format
		}
	}
	last := targets[len(targets)-1]
	tx.SetSelection(&engine.Selection{
		Anchor: engine.TextPoint(targets[0].Key, 0),
		Focus:  engine.TextPoint(last.Key, len(last.Text)),
	})
	return true
}

// IndentBlocks changes the indent of the selected indentable blocks by
// delta, never below zero.
func IndentBlocks(tx *engine.Tx, delta int) bool {
	if tx.Selection() == nil {
		return false
	}
	for _, b := range engine.SelectedBlocks(tx) {
		if !engine.IsIndentable(tx, b) {
			continue
		}
		indent := max(b.Indent+delta, 0)
		if indent != b.Indent {
			tx.Writable(b.Key).Indent = indent
		}
	}
	return true
}

// Clear replaces the document with one empty paragraph and selects it.
func Clear(tx *engine.Tx) {
	for _, c := range append([]engine.NodeKey(nil), tx.Root().Children...) {
		tx.Remove(c)
	}
	p := tx.CreateParagraph()
	tx.Append(engine.RootKey, p.Key)
	tx.SelectStart(p.Key)
}

// Edit runs fn in an update of an editable engine and reports fn's result.
// A read-only engine, or a failed update, reports false.
func Edit(ed *engine.Engine, fn func(tx *engine.Tx) bool) bool {
	if !ed.IsEditable() {
		return false
	}
	handled := false
	err := ed.Update(func(tx *engine.Tx) error {
		handled = fn(tx)
		return nil
	})
	return err == nil && handled
}
