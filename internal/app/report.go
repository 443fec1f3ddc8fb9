package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/lexbridge/internal/engine"
)

// Report is the outcome of a script.
type Report struct {
	Text        string
	Tree        string
	Placeholder bool
	// PlaceholderText is the configured placeholder, set only while
	// Placeholder is true.
	PlaceholderText string
	CanUndo         bool
	CanRedo         bool
	// Changes counts the reported document updates.
	Changes int
}

func (s *session) report() *Report {
	st := s.ed.EditorState()
	var shown string
	if s.placeholder {
		shown = s.placeholderText
	}
	return &Report{
		PlaceholderText: shown,
		Text:            engine.TextContent(st, engine.RootKey),
		Tree:            Dump(st),
		Placeholder:     s.placeholder,
		CanUndo:         s.canUndo,
		CanRedo:         s.canRedo,
		Changes:         s.changes,
	}
}

// WriteTo writes the report in a human readable form.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "text:\n%s\n\n", indent(r.Text))
	fmt.Fprintf(&b, "tree:\n%s\n", indent(strings.TrimRight(r.Tree, "\n")))
	if r.PlaceholderText != "" {
		fmt.Fprintf(&b, "placeholder: %t %q\n", r.Placeholder, r.PlaceholderText)
	} else {
		fmt.Fprintf(&b, "placeholder: %t\n", r.Placeholder)
	}
	fmt.Fprintf(&b, "can undo: %t\n", r.CanUndo)
	fmt.Fprintf(&b, "can redo: %t\n", r.CanRedo)
	fmt.Fprintf(&b, "changes: %d\n", r.Changes)
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}

// Dump renders the node tree of st, one node per line.
func Dump(st *engine.State) string {
	var b strings.Builder
	var walk func(key engine.NodeKey, depth int)
	walk = func(key engine.NodeKey, depth int) {
		n := st.Node(key)
		if n == nil {
			return
		}
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(describe(n))
		b.WriteByte('\n')
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(engine.RootKey, 0)
	return b.String()
}

func describe(n *engine.Node) string {
	var b strings.Builder
	b.WriteString(string(n.Type))
	switch n.Kind {
	case engine.KindText:
		fmt.Fprintf(&b, " %q", n.Text)
		if f := formatNames(n.Format); f != "" {
			fmt.Fprintf(&b, " [%s]", f)
		}
	case engine.KindElement:
		if n.ListType != "" {
			fmt.Fprintf(&b, " %s", n.ListType)
		}
		if n.Value != 0 {
			fmt.Fprintf(&b, " %d", n.Value)
		}
		if n.Indent != 0 {
			fmt.Fprintf(&b, " indent=%d", n.Indent)
		}
	}
	return b.String()
}

func formatNames(f engine.TextFormat) string {
	var names []string
	for _, name := range []string{"bold", "italic", "underline", "strikethrough", "code"} {
		if f.Has(formats[name]) {
			names = append(names, name)
		}
	}
	return strings.Join(names, ",")
}
