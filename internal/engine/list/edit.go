package list

import (
	"github.com/dshills/lexbridge/internal/engine"
)

// InsertList converts the selected blocks into a list of type lt.
func InsertList(ed *engine.Engine, lt engine.ListType) error {
	return ed.Update(func(tx *engine.Tx) error {
		insertList(tx, lt)
		return nil
	})
}

func insertList(tx *engine.Tx, lt engine.ListType) {
	sel := tx.Selection()
	if sel == nil {
		return
	}
	if sel.Anchor.Key == engine.RootKey {
		// Empty document: start a fresh list at the end.
		item := CreateListItem(tx)
		l := CreateList(tx, lt)
		tx.Append(l.Key, item.Key)
		tx.Append(engine.RootKey, l.Key)
		tx.SelectStart(item.Key)
		updateValues(tx, l.Key)
		return
	}

	handled := make(map[engine.NodeKey]bool)
	for _, block := range engine.SelectedBlocks(tx) {
		if IsListItem(block) {
			parent := tx.Node(block.Parent)
			if IsList(parent) && !handled[parent.Key] && parent.ListType != lt {
				tx.Writable(parent.Key).ListType = lt
			}
			if parent != nil {
				handled[parent.Key] = true
			}
			continue
		}
		if IsList(block) || tx.Node(block.Key) == nil {
			continue
		}
		createListOrMerge(tx, block.Key, lt)
	}
}

// createListOrMerge wraps the children of block into a new list item and
// joins it with an adjacent list of the same type, or replaces block with a
// new list.
func createListOrMerge(tx *engine.Tx, block engine.NodeKey, lt engine.ListType) engine.NodeKey {
	prev := engine.PrevSibling(tx, block)
	next := engine.NextSibling(tx, block)

	item := CreateListItem(tx)
	b := tx.Node(block)
	item.Indent = b.Indent
	tx.Append(item.Key, append([]engine.NodeKey(nil), b.Children...)...)
	tx.RetargetSelection(block, item.Key)

	switch {
	case IsList(prev) && prev.ListType == lt:
		tx.Append(prev.Key, item.Key)
		tx.Remove(block)
		if IsList(next) && next.ListType == lt {
			tx.Append(prev.Key, append([]engine.NodeKey(nil), next.Children...)...)
			tx.Remove(next.Key)
		}
		updateValues(tx, prev.Key)
		return prev.Key
	case IsList(next) && next.ListType == lt:
		tx.Prepend(next.Key, item.Key)
		tx.Remove(block)
		updateValues(tx, next.Key)
		return next.Key
	default:
		l := CreateList(tx, lt)
		tx.Append(l.Key, item.Key)
		tx.Replace(block, l.Key, false)
		updateValues(tx, l.Key)
		return l.Key
	}
}

// RemoveList turns every list touched by the selection back into
// paragraphs, one per item.
func RemoveList(ed *engine.Engine) error {
	return ed.Update(func(tx *engine.Tx) error {
		removeList(tx)
		return nil
	})
}

func removeList(tx *engine.Tx) {
	var lists []engine.NodeKey
	seen := make(map[engine.NodeKey]bool)
	for _, n := range engine.SelectedNodes(tx) {
		top := TopList(tx, n.Key)
		if top == nil || seen[top.Key] {
			continue
		}
		seen[top.Key] = true
		lists = append(lists, top.Key)
	}

	for _, l := range lists {
		insertion := l
		for _, item := range AllListItems(tx, l) {
			p := tx.CreateParagraph()
			tx.Append(p.Key, append([]engine.NodeKey(nil), item.Children...)...)
			tx.InsertAfter(insertion, p.Key)
			tx.RetargetSelection(item.Key, p.Key)
			insertion = p.Key
		}
		tx.Remove(l)
	}
}

// IndentList nests the selected list items one level deeper.
func IndentList(ed *engine.Engine) error {
	return ed.Update(func(tx *engine.Tx) error {
		handleIndent(tx, selectedListItems(tx))
		return nil
	})
}

// OutdentList moves the selected list items one level up.
func OutdentList(ed *engine.Engine) error {
	return ed.Update(func(tx *engine.Tx) error {
		handleOutdent(tx, selectedListItems(tx))
		return nil
	})
}

func handleIndent(tx *engine.Tx, items []*engine.Node) {
	removed := make(map[engine.NodeKey]bool)
	for _, it := range items {
		item := tx.Node(it.Key)
		if item == nil || IsNestedHolder(tx, item) || removed[item.Key] {
			continue
		}
		parent := tx.Node(item.Parent)
		prev := engine.PrevSibling(tx, item.Key)
		next := engine.NextSibling(tx, item.Key)

		switch {
		case IsNestedHolder(tx, prev) && IsNestedHolder(tx, next):
			inner := prev.Children[0]
			tx.Append(inner, item.Key)
			nextInner := next.Children[0]
			tx.Append(inner, append([]engine.NodeKey(nil), tx.Node(nextInner).Children...)...)
			tx.Remove(next.Key)
			removed[next.Key] = true
			updateValues(tx, inner)
		case IsNestedHolder(tx, next):
			inner := next.Children[0]
			tx.Prepend(inner, item.Key)
			updateValues(tx, inner)
		case IsNestedHolder(tx, prev):
			inner := prev.Children[0]
			tx.Append(inner, item.Key)
			updateValues(tx, inner)
		case IsList(parent):
			holder := CreateListItem(tx)
			nested := CreateList(tx, parent.ListType)
			tx.Append(holder.Key, nested.Key)
			switch {
			case prev != nil:
				tx.InsertAfter(prev.Key, holder.Key)
			case next != nil:
				tx.InsertBefore(next.Key, holder.Key)
			default:
				tx.Append(parent.Key, holder.Key)
			}
			tx.Append(nested.Key, item.Key)
			updateValues(tx, nested.Key)
		}
		if IsList(parent) {
			updateValues(tx, parent.Key)
		}
	}
}

func handleOutdent(tx *engine.Tx, items []*engine.Node) {
	for _, it := range items {
		item := tx.Node(it.Key)
		if item == nil || IsNestedHolder(tx, item) {
			continue
		}
		parentList := tx.Node(item.Parent)
		if !IsList(parentList) {
			continue
		}
		holder := tx.Node(parentList.Parent)
		if !IsListItem(holder) {
			continue
		}
		outer := tx.Node(holder.Parent)
		if !IsList(outer) {
			continue
		}

		siblings := parentList.Children
		switch item.Key {
		case siblings[0]:
			tx.InsertBefore(holder.Key, item.Key)
			if len(tx.Node(parentList.Key).Children) == 0 {
				tx.Remove(holder.Key)
			}
		case siblings[len(siblings)-1]:
			tx.InsertAfter(holder.Key, item.Key)
			if len(tx.Node(parentList.Key).Children) == 0 {
				tx.Remove(holder.Key)
			}
		default:
			before := append([]engine.NodeKey(nil), siblings[:engine.IndexOf(tx, item.Key)]...)
			after := append([]engine.NodeKey(nil), siblings[engine.IndexOf(tx, item.Key)+1:]...)

			beforeHolder := CreateListItem(tx)
			beforeList := CreateList(tx, parentList.ListType)
			tx.Append(beforeHolder.Key, beforeList.Key)
			tx.Append(beforeList.Key, before...)

			afterHolder := CreateListItem(tx)
			afterList := CreateList(tx, parentList.ListType)
			tx.Append(afterHolder.Key, afterList.Key)
			tx.Append(afterList.Key, after...)

			tx.InsertBefore(holder.Key, beforeHolder.Key)
			tx.InsertAfter(holder.Key, afterHolder.Key)
			tx.Replace(holder.Key, item.Key, false)
			updateValues(tx, beforeList.Key)
			updateValues(tx, afterList.Key)
		}
		if tx.Node(parentList.Key) != nil {
			updateValues(tx, parentList.Key)
		}
		updateValues(tx, outer.Key)
	}
}

// HandleListInsertParagraph exits the list when a paragraph break is typed
// in an empty list item. It reports whether it applied; otherwise the
// caller should fall back to a regular paragraph break.
func HandleListInsertParagraph(tx *engine.Tx) bool {
	sel := tx.Selection()
	if sel == nil || !sel.IsCollapsed() {
		return false
	}
	anchor := NearestListItem(tx, sel.Anchor.Key)
	if anchor == nil || IsNestedHolder(tx, anchor) || engine.TextContent(tx, anchor.Key) != "" {
		return false
	}
	parent := tx.Node(anchor.Parent)
	if !IsList(parent) {
		return false
	}
	grandparent := tx.Node(parent.Parent)
	top := TopList(tx, anchor.Key)

	var replacement *engine.Node
	switch {
	case grandparent != nil && grandparent.Key == engine.RootKey:
		replacement = tx.CreateParagraph()
		tx.InsertAfter(top.Key, replacement.Key)
	case IsListItem(grandparent):
		replacement = CreateListItem(tx)
		tx.InsertAfter(grandparent.Key, replacement.Key)
	default:
		return false
	}

	if rest := engine.NextSiblings(tx, anchor.Key); len(rest) > 0 {
		l := CreateList(tx, parent.ListType)
		if replacement.Type == engine.NodeParagraph {
			tx.InsertAfter(replacement.Key, l.Key)
		} else {
			holder := CreateListItem(tx)
			tx.Append(holder.Key, l.Key)
			tx.InsertAfter(replacement.Key, holder.Key)
		}
		for _, sibling := range rest {
			tx.Append(l.Key, sibling.Key)
		}
		updateValues(tx, l.Key)
	}

	removeHighestEmptyListParent(tx, anchor.Key)
	tx.SelectStart(replacement.Key)
	if p := tx.Node(replacement.Key); p != nil && IsList(tx.Node(p.Parent)) {
		updateValues(tx, p.Parent)
	}
	return true
}

// removeHighestEmptyListParent removes key together with every list or list
// item ancestor that would be left empty.
func removeHighestEmptyListParent(tx *engine.Tx, key engine.NodeKey) {
	ptr := tx.Node(key)
	for ptr != nil && engine.NextSibling(tx, ptr.Key) == nil && engine.PrevSibling(tx, ptr.Key) == nil {
		parent := tx.Node(ptr.Parent)
		if parent == nil || !(IsListItem(ptr) || IsList(ptr)) || parent.Key == engine.RootKey {
			break
		}
		ptr = parent
	}
	if ptr != nil {
		tx.Remove(ptr.Key)
	}
}
