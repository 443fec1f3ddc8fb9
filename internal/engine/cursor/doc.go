// Package cursor provides caret-level editing over the engine's node tree.
//
// A caret is a selection point resolved onto a leaf: a text node with a
// byte offset, or a line break or empty element with an offset of 0
// (before) or 1 (after). Carets order by leaf position, then offset.
//
// The edit functions run inside an engine transaction and act on the
// transaction's selection:
//
//	err := ed.Update(func(tx *engine.Tx) error {
//		cursor.InsertText(tx, "hello")
//		cursor.InsertLineBreak(tx)
//		return nil
//	})
//
// Deletion is grapheme aware: a backspace removes one user-perceived
// character, not one byte or rune.
package cursor
