// Package text provides text-level behaviors: entity recognition and the
// root text queries used to decide whether a placeholder may show.
package text

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dshills/lexbridge/internal/engine"
)

// EntityMatch is the byte span of a recognized entity within a text run.
type EntityMatch struct {
	Start int
	End   int
	// Text is the matched substring.
	Text string
}

// MatchFunc finds the first entity in text.
type MatchFunc func(text string) (EntityMatch, bool)

// CreateFunc builds the entity node that replaces src. src holds exactly the
// matched text.
type CreateFunc func(tx *engine.Tx, src *engine.Node) *engine.Node

// RegexpMatcher returns a MatchFunc for the first match of re.
func RegexpMatcher(re *regexp.Regexp) MatchFunc {
	return func(text string) (EntityMatch, bool) {
		loc := re.FindStringIndex(text)
		if loc == nil || loc[0] == loc[1] {
			return EntityMatch{}, false
		}
		return EntityMatch{Start: loc[0], End: loc[1], Text: text[loc[0]:loc[1]]}, true
	}
}

// CreateAs returns a CreateFunc producing a text node of variant t with the
// source text.
func CreateAs(t engine.NodeType) CreateFunc {
	return func(tx *engine.Tx, src *engine.Node) *engine.Node {
		return tx.CreateText(t, src.Text)
	}
}

func valid(m EntityMatch, text string) bool {
	return m.Start >= 0 && m.Start < m.End && m.End <= len(text)
}

// RegisterTextEntity installs the transforms that turn matching runs of
// plain text into target nodes and turn target nodes that stopped matching
// back into plain text. target must be a registered text variant.
func RegisterTextEntity(ed *engine.Engine, match MatchFunc, target engine.NodeType, create CreateFunc) ([]func(), error) {
	spec, ok := ed.Registry().Lookup(target)
	if !ok {
		return nil, fmt.Errorf("text entity %q: %w", target, engine.ErrNodeNotRegistered)
	}
	if spec.Kind != engine.KindText {
		return nil, fmt.Errorf("text entity %q: %w", target, engine.ErrNotText)
	}

	textTransform := func(tx *engine.Tx, n *engine.Node) {
		key := n.Key
		for {
			cur := tx.Node(key)
			if cur == nil || cur.Type != engine.NodeText {
				return
			}
			m, ok := match(cur.Text)
			if !ok || !valid(m, cur.Text) {
				return
			}
			parts := tx.SplitText(key, m.Start, m.End)
			idx := 0
			if m.Start > 0 {
				idx = 1
			}
			if idx >= len(parts) {
				return
			}
			matched := tx.Node(parts[idx])
			repl := create(tx, matched)
			if repl == nil || repl.Key == "" {
				return
			}
			tx.Writable(repl.Key).Format = matched.Format
			tx.Replace(matched.Key, repl.Key, false)
			if idx+1 >= len(parts) {
				return
			}
			key = parts[idx+1]
		}
	}

	reverseTransform := func(tx *engine.Tx, n *engine.Node) {
		m, ok := match(n.Text)
		if !ok || !valid(m, n.Text) || m.Start != 0 {
			toPlainText(tx, n)
			return
		}
		if m.End < len(n.Text) {
			parts := tx.SplitText(n.Key, m.End)
			if len(parts) == 2 {
				toPlainText(tx, tx.Node(parts[1]))
			}
		}
	}

	unregisterText, err := ed.RegisterNodeTransform(engine.NodeText, textTransform)
	if err != nil {
		return nil, err
	}
	unregisterReverse, err := ed.RegisterNodeTransform(target, reverseTransform)
	if err != nil {
		unregisterText()
		return nil, err
	}
	return []func(){unregisterText, unregisterReverse}, nil
}

func toPlainText(tx *engine.Tx, n *engine.Node) {
	t := tx.CreateText(engine.NodeText, n.Text)
	t.Format = n.Format
	tx.Replace(n.Key, t.Key, false)
}

// RootTextContent returns the text of the whole document.
func RootTextContent(v engine.View) string {
	return engine.TextContent(v, engine.RootKey)
}

// IsRootTextContentEmpty reports whether the document has no text. It is
// never empty while composing.
func IsRootTextContentEmpty(v engine.View, isComposing, trim bool) bool {
	if isComposing {
		return false
	}
	text := RootTextContent(v)
	if trim {
		text = strings.TrimSpace(text)
	}
	return text == ""
}

// CanShowPlaceholder reports whether the document is a single, unindented,
// empty paragraph holding only text.
func CanShowPlaceholder(v engine.View, isComposing, isEditable bool) bool {
	if !isEditable {
		return false
	}
	if !IsRootTextContentEmpty(v, isComposing, false) {
		return false
	}
	blocks := engine.Children(v, engine.RootKey)
	if len(blocks) > 1 {
		return false
	}
	for _, b := range blocks {
		if b.Kind != engine.KindElement || b.Type != engine.NodeParagraph || b.Indent != 0 {
			return false
		}
		for _, c := range engine.Children(v, b.Key) {
			if c.Kind != engine.KindText {
				return false
			}
		}
	}
	return true
}

// CanShowPlaceholderCurry binds the composing flag for use with
// engine.Query, assuming an editable document.
func CanShowPlaceholderCurry(isComposing bool) func(v engine.View) bool {
	return func(v engine.View) bool {
		return CanShowPlaceholder(v, isComposing, true)
	}
}
