// Package richtext registers the baseline input behavior of a rich text
// editor: block splitting, indentation and inline formats.
package richtext

import (
	"strings"

	"github.com/dshills/lexbridge/internal/engine"
	"github.com/dshills/lexbridge/internal/engine/cursor"
)

// Register installs the rich text command handlers on ed and seeds the
// document from initial (see engine.Initialize). The returned function
// removes the handlers.
func Register(ed *engine.Engine, initial any) (func(), error) {
	unregister := engine.MergeRegister(
		ed.RegisterCommand(engine.SelectionChange, func(payload any) bool {
			sel, ok := payload.(*engine.Selection)
			if !ok {
				return false
			}
			return ed.Update(func(tx *engine.Tx) error {
				tx.SetSelection(sel)
				return nil
			}) == nil
		}, engine.PriorityEditor),
		ed.RegisterCommand(engine.InsertText, func(payload any) bool {
			s, ok := payload.(string)
			if !ok {
				return false
			}
			return cursor.Edit(ed, func(tx *engine.Tx) bool {
				return cursor.InsertRawText(tx, s)
			})
		}, engine.PriorityEditor),
		ed.RegisterCommand(engine.DeleteCharacter, func(payload any) bool {
			backward, _ := payload.(bool)
			return cursor.Edit(ed, func(tx *engine.Tx) bool {
				return cursor.DeleteCharacter(tx, backward)
			})
		}, engine.PriorityEditor),
		ed.RegisterCommand(engine.InsertParagraph, func(any) bool {
			return cursor.Edit(ed, cursor.SplitBlock)
		}, engine.PriorityEditor),
		ed.RegisterCommand(engine.InsertLineBreak, func(any) bool {
			return cursor.Edit(ed, cursor.InsertLineBreak)
		}, engine.PriorityEditor),
		ed.RegisterCommand(engine.IndentContent, func(any) bool {
			return cursor.Edit(ed, func(tx *engine.Tx) bool {
				return cursor.IndentBlocks(tx, 1)
			})
		}, engine.PriorityEditor),
		ed.RegisterCommand(engine.OutdentContent, func(any) bool {
			return cursor.Edit(ed, func(tx *engine.Tx) bool {
				return cursor.IndentBlocks(tx, -1)
			})
		}, engine.PriorityEditor),
		ed.RegisterCommand(engine.FormatText, func(payload any) bool {
			format, ok := payload.(engine.TextFormat)
			if !ok {
				return false
			}
			return cursor.Edit(ed, func(tx *engine.Tx) bool {
				return cursor.FormatText(tx, format)
			})
		}, engine.PriorityEditor),
		ed.RegisterCommand(engine.ClearEditor, func(any) bool {
			return cursor.Edit(ed, func(tx *engine.Tx) bool {
				cursor.Clear(tx)
				return true
			})
		}, engine.PriorityEditor),
	)

	if err := engine.Initialize(ed, initial, FromText); err != nil {
		unregister()
		return nil, err
	}
	return unregister, nil
}

// FromText replaces the document with one paragraph per line of text.
func FromText(tx *engine.Tx, text string) {
	for _, c := range append([]engine.NodeKey(nil), tx.Root().Children...) {
		tx.Remove(c)
	}
	for _, line := range strings.Split(text, "\n") {
		p := tx.CreateParagraph()
		tx.Append(engine.RootKey, p.Key)
		if line != "" {
			tx.Append(p.Key, tx.CreateText(engine.NodeText, line).Key)
		}
	}
}
