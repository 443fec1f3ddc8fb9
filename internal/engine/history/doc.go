// Package history provides undo/redo for the editing engine.
//
// A State holds the snapshot that is currently live plus the undo and redo
// stacks of earlier and reverted snapshots. Register attaches a State to an
// engine: every committed update either starts a new history step, merges
// into the current step, or is discarded.
//
// # Coalescing
//
// Edits committed within the delay window of the previous edit merge into
// the same step, so a burst of typing undoes as one unit:
//
//	unregister := history.Register(ed, history.NewState(), time.Second)
//	defer unregister()
//
// Updates tagged engine.TagHistoryMerge always merge, engine.TagHistoryPush
// always start a new step, and selection-only updates refresh the current
// step without starting a new one.
//
// # Undo and Redo
//
// Undo and redo are themselves engine updates. They are tagged
// engine.TagHistoric and never recorded, so undoing an undo cannot grow
// the stacks. Stack transitions are announced through the engine.CanUndo
// and engine.CanRedo commands.
package history
