// Package list implements ordered and unordered list nodes and the
// structural edits that create, nest and dissolve them.
//
// A list holds list items. Nesting is expressed the usual way for this
// document model: an item whose first child is a list carries the nested
// level and holds no text of its own.
package list

import (
	"github.com/dshills/lexbridge/internal/engine"
)

// Node variants.
const (
	NodeList     engine.NodeType = "list"
	NodeListItem engine.NodeType = "listitem"
)

// List commands.
const (
	InsertOrderedListCommand   engine.Command = "INSERT_ORDERED_LIST"
	InsertUnorderedListCommand engine.Command = "INSERT_UNORDERED_LIST"
	RemoveListCommand          engine.Command = "REMOVE_LIST"
)

// Nodes returns the specs to register before list edits can run.
func Nodes() []engine.NodeSpec {
	return []engine.NodeSpec{
		{Type: NodeList, Kind: engine.KindElement},
		{Type: NodeListItem, Kind: engine.KindElement},
	}
}

// IsList reports whether n is a list.
func IsList(n *engine.Node) bool { return n != nil && n.Type == NodeList }

// IsListItem reports whether n is a list item.
func IsListItem(n *engine.Node) bool { return n != nil && n.Type == NodeListItem }

// IsNestedHolder reports whether n is a list item carrying a nested list.
func IsNestedHolder(v engine.View, n *engine.Node) bool {
	if !IsListItem(n) || len(n.Children) == 0 {
		return false
	}
	return IsList(v.Node(n.Children[0]))
}

// CreateList makes a detached list of the given type.
func CreateList(tx *engine.Tx, lt engine.ListType) *engine.Node {
	n := tx.Create(NodeList)
	n.ListType = lt
	n.Start = 1
	return n
}

// CreateListItem makes a detached list item.
func CreateListItem(tx *engine.Tx) *engine.Node {
	return tx.Create(NodeListItem)
}

// TopList returns the outermost list containing key, or nil.
func TopList(v engine.View, key engine.NodeKey) *engine.Node {
	var top *engine.Node
	for n := v.Node(key); n != nil; n = v.Node(n.Parent) {
		if IsList(n) {
			top = n
		}
		if n.Parent == "" {
			break
		}
	}
	return top
}

// NearestListItem returns key itself when it is a list item, otherwise its
// closest list item ancestor.
func NearestListItem(v engine.View, key engine.NodeKey) *engine.Node {
	for n := v.Node(key); n != nil; n = v.Node(n.Parent) {
		if IsListItem(n) {
			return n
		}
		if n.Parent == "" {
			break
		}
	}
	return nil
}

// AllListItems returns the text-bearing items of list at every depth, in
// document order.
func AllListItems(v engine.View, list engine.NodeKey) []*engine.Node {
	var out []*engine.Node
	for _, c := range engine.Children(v, list) {
		if !IsListItem(c) {
			continue
		}
		if IsNestedHolder(v, c) {
			out = append(out, AllListItems(v, c.Children[0])...)
			continue
		}
		out = append(out, c)
	}
	return out
}

// selectedListItems returns the distinct non-holder list items touched by
// the selection.
func selectedListItems(v engine.View) []*engine.Node {
	seen := make(map[engine.NodeKey]bool)
	var out []*engine.Node
	nodes := engine.SelectedNodes(v)
	if len(nodes) == 0 {
		if sel := v.Selection(); sel != nil {
			if n := v.Node(sel.Anchor.Key); n != nil {
				nodes = append(nodes, n)
			}
		}
	}
	for _, n := range nodes {
		item := NearestListItem(v, n.Key)
		if item == nil || seen[item.Key] {
			continue
		}
		seen[item.Key] = true
		out = append(out, item)
	}
	return out
}

// updateValues renumbers the items of a list.
func updateValues(tx *engine.Tx, list engine.NodeKey) {
	l := tx.Node(list)
	if !IsList(l) {
		return
	}
	value := l.Start
	if value == 0 {
		value = 1
	}
	for _, c := range engine.Children(tx, list) {
		if !IsListItem(c) {
			continue
		}
		if c.Value != value {
			tx.Writable(c.Key).Value = value
		}
		if !IsNestedHolder(tx, c) {
			value++
		}
	}
}

// Register installs the transform that keeps the item values of every
// changed list numbered.
func Register(ed *engine.Engine) (func(), error) {
	return ed.RegisterNodeTransform(NodeList, func(tx *engine.Tx, n *engine.Node) {
		updateValues(tx, n.Key)
	})
}
