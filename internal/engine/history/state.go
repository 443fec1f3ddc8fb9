package history

import (
	"errors"
	"sync"
	"time"

	"github.com/dshills/lexbridge/internal/engine"
)

// DefaultMaxEntries caps the undo stack when no limit is configured.
const DefaultMaxEntries = 1000

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Entry is one history step: a committed snapshot and the engine it
// belongs to.
type Entry struct {
	Editor      *engine.Engine
	EditorState *engine.State
	Timestamp   time.Time
}

// State holds the undo and redo stacks of one editing session.
type State struct {
	mu sync.Mutex

	current   *Entry
	undoStack []*Entry
	redoStack []*Entry

	maxEntries int
}

// NewState creates an empty history.
func NewState() *State {
	return &State{maxEntries: DefaultMaxEntries}
}

// Current returns the live entry, or nil before the first update.
func (s *State) Current() *Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// CanUndo returns true if undo is available.
func (s *State) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (s *State) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redoStack) > 0
}

// UndoCount returns the number of undo steps available.
func (s *State) UndoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undoStack)
}

// RedoCount returns the number of redo steps available.
func (s *State) RedoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redoStack)
}

// PeekUndo returns the entry the next undo would restore.
func (s *State) PeekUndo() (*Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.undoStack) == 0 {
		return nil, false
	}
	return s.undoStack[len(s.undoStack)-1], true
}

// PeekRedo returns the entry the next redo would restore.
func (s *State) PeekRedo() (*Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.redoStack) == 0 {
		return nil, false
	}
	return s.redoStack[len(s.redoStack)-1], true
}

// Clear removes all undo/redo history and forgets the current entry.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.undoStack = nil
	s.redoStack = nil
}

// SetMaxEntries changes the maximum number of undo entries.
// If the current stack is larger, oldest entries are removed.
func (s *State) SetMaxEntries(max int) {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxEntries = max
	s.trimLocked()
}

// MaxEntries returns the maximum number of undo entries.
func (s *State) MaxEntries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxEntries
}

// pushUndoLocked appends e to the undo stack, dropping the oldest entries
// beyond the limit.
func (s *State) pushUndoLocked(e *Entry) {
	s.undoStack = append(s.undoStack, e)
	s.trimLocked()
}

func (s *State) trimLocked() {
	if len(s.undoStack) > s.maxEntries {
		excess := len(s.undoStack) - s.maxEntries
		s.undoStack = s.undoStack[excess:]
	}
}
