// Package bind connects an editing engine to a reactive component layer.
//
// It has two halves. Stores turn the engine's push-based update listeners
// into subscribable values:
//
//   - EditorState publishes the latest committed snapshot, optionally
//     skipping the initial transition and selection-only updates.
//   - CanShowPlaceholder derives a boolean capability from EditorState,
//     sampling the engine's live composing flag on every recomputation.
//   - CanUndo and CanRedo follow the history announcements.
//
// Binders attach engine behaviors to a Component's lifecycle. Each one
// registers at mount and releases everything it registered, as one
// composite teardown, when the component is destroyed:
//
//   - SetupHistory keeps exactly one history state bound to the engine and
//     swaps it when the caller supplies a different one.
//   - SetupTextEntity installs an entity recognizer.
//   - SetupList routes the list commands at low priority.
//   - SetupPlainText and SetupRichText install a text mode together with
//     dictation support.
//
// Setup failures, such as a missing node registration or a binder used
// without a composer above it, are returned as *PreconditionError from
// Setup or Mount and abort the mount.
//
// All callbacks run synchronously on the caller's goroutine.
package bind
