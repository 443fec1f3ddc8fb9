package engine

import "fmt"

// Initialize seeds a freshly created engine with its first document. initial
// may be:
//
//   - nil: an empty paragraph, added only while the state is still empty
//   - string: plain text, laid out by fromText
//   - *State: a snapshot previously committed by this engine
//   - func(*Tx) error: a builder run inside an update
//
// The initial content is tagged TagHistoryMerge so that it never becomes an
// undo step of its own.
func Initialize(e *Engine, initial any, fromText func(tx *Tx, text string)) error {
	merge := WithTag(TagHistoryMerge)
	switch v := initial.(type) {
	case nil:
		if !e.EditorState().IsEmpty() {
			return nil
		}
		return e.Update(func(tx *Tx) error {
			if len(tx.Root().Children) == 0 {
				tx.Append(RootKey, tx.CreateParagraph().Key)
			}
			return nil
		}, merge)
	case string:
		return e.Update(func(tx *Tx) error {
			fromText(tx, v)
			return nil
		}, merge)
	case *State:
		return e.SetEditorState(v, merge)
	case func(*Tx) error:
		return e.Update(v, merge)
	default:
		return fmt.Errorf("initialize %T: %w", initial, ErrInvalidInitialState)
	}
}
