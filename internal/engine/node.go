package engine

import (
	"fmt"
	"sort"
	"sync"
)

// NodeKey identifies a node within one engine.
type NodeKey string

// RootKey is the key of the document root.
const RootKey NodeKey = "root"

// NodeType is the variant tag of a node.
type NodeType string

// Built-in node variants.
const (
	NodeRoot      NodeType = "root"
	NodeParagraph NodeType = "paragraph"
	NodeText      NodeType = "text"
	NodeLineBreak NodeType = "linebreak"
)

// NodeKind describes how the engine treats a node variant.
type NodeKind int

const (
	// KindElement nodes hold children.
	KindElement NodeKind = iota
	// KindText nodes hold text and are leaves.
	KindText
	// KindLineBreak nodes are leaves rendering a line break.
	KindLineBreak
)

// String returns the kind name.
func (k NodeKind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindLineBreak:
		return "linebreak"
	default:
		return "unknown"
	}
}

// TextFormat is a bit set of inline formats.
type TextFormat uint8

// Inline formats.
const (
	FormatBold TextFormat = 1 << iota
	FormatItalic
	FormatUnderline
	FormatStrikethrough
	FormatCode
)

// Has reports whether all bits of f2 are set.
func (f TextFormat) Has(f2 TextFormat) bool { return f&f2 == f2 }

// ListType is the marker style of a list node.
type ListType string

// List marker styles.
const (
	ListNumber ListType = "number"
	ListBullet ListType = "bullet"
)

// Node is one node of the document tree.
//
// Nodes reachable from a State are shared between snapshots and must be
// treated as read-only. Writes go through Tx.Writable, which copies the node
// into the transaction first.
type Node struct {
	Key      NodeKey
	Type     NodeType
	Kind     NodeKind
	Parent   NodeKey
	Children []NodeKey

	// Text and Format apply to text nodes.
	Text   string
	Format TextFormat

	// Indent applies to block elements.
	Indent int

	// ListType and Start apply to list nodes; Value to list items.
	ListType ListType
	Start    int
	Value    int
}

// clone returns a copy of n that does not share the children slice.
func (n *Node) clone() *Node {
	c := *n
	if n.Children != nil {
		c.Children = append([]NodeKey(nil), n.Children...)
	}
	return &c
}

// NodeSpec describes a registered node variant.
type NodeSpec struct {
	Type NodeType
	Kind NodeKind

	// Inline elements live inside blocks; non-inline elements are blocks.
	Inline bool

	// Indentable blocks take part in generic indent/outdent.
	Indentable bool
}

// DefaultNodes returns the variants every engine registers.
func DefaultNodes() []NodeSpec {
	return []NodeSpec{
		{Type: NodeRoot, Kind: KindElement},
		{Type: NodeParagraph, Kind: KindElement, Indentable: true},
		{Type: NodeText, Kind: KindText, Inline: true},
		{Type: NodeLineBreak, Kind: KindLineBreak, Inline: true},
	}
}

// Registry holds the node variants known to an engine.
type Registry struct {
	mu    sync.RWMutex
	specs map[NodeType]NodeSpec
}

// NewRegistry creates a registry pre-populated with DefaultNodes.
func NewRegistry() *Registry {
	r := &Registry{specs: make(map[NodeType]NodeSpec)}
	for _, spec := range DefaultNodes() {
		r.specs[spec.Type] = spec
	}
	return r
}

// Register adds or replaces a node variant.
func (r *Registry) Register(spec NodeSpec) error {
	if spec.Type == "" {
		return fmt.Errorf("register node: empty type")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs[spec.Type] = spec
	return nil
}

// Lookup returns the spec for a variant.
func (r *Registry) Lookup(t NodeType) (NodeSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[t]
	return spec, ok
}

// Has reports whether every given variant is registered.
func (r *Registry) Has(types ...NodeType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range types {
		if _, ok := r.specs[t]; !ok {
			return false
		}
	}
	return true
}

// Types returns the registered variants in name order.
func (r *Registry) Types() []NodeType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]NodeType, 0, len(r.specs))
	for t := range r.specs {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
