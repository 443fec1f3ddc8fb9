package history

import (
	"fmt"
	"time"

	"github.com/dshills/lexbridge/internal/engine"
)

// DefaultDelay is the coalescing window used when none is given.
const DefaultDelay = 1000 * time.Millisecond

// mergeAction is the decision taken for one committed update.
type mergeAction int

const (
	actionPush mergeAction = iota
	actionMerge
	actionDiscard
)

func (a mergeAction) String() string {
	switch a {
	case actionPush:
		return "push"
	case actionMerge:
		return "merge"
	case actionDiscard:
		return "discard"
	default:
		return "unknown"
	}
}

// recorder tracks the time of the previous coalescable edit.
type recorder struct {
	ed    *engine.Engine
	state *State
	delay time.Duration

	lastEdit time.Time
	hasLast  bool
}

func (r *recorder) action(ev engine.UpdateEvent, current *Entry) mergeAction {
	now := r.ed.Now()

	if ev.HasTag(engine.TagHistoric) {
		r.hasLast = false
		return actionDiscard
	}

	forcePush := ev.HasTag(engine.TagHistoryPush)
	sameEditor := current == nil || current.Editor == r.ed
	if !forcePush && sameEditor && ev.HasTag(engine.TagHistoryMerge) {
		r.hasLast = false
		return actionMerge
	}

	if ev.SelectionOnly() {
		if ev.State.Selection() != nil {
			return actionMerge
		}
		return actionDiscard
	}

	if !forcePush && sameEditor && r.hasLast && now.Sub(r.lastEdit) < r.delay {
		r.lastEdit = now
		return actionMerge
	}
	r.lastEdit = now
	r.hasLast = true
	return actionPush
}

func (r *recorder) onUpdate(ev engine.UpdateEvent) {
	if ev.HasTag(engine.TagHistoric) {
		r.hasLast = false
	}
	s := r.state
	s.mu.Lock()
	current := s.current
	if current != nil && current.EditorState == ev.State {
		s.mu.Unlock()
		return
	}

	action := r.action(ev, current)
	var canUndo, canRedo *bool
	switch action {
	case actionDiscard:
		s.mu.Unlock()
		r.ed.Logger().Debug("history discard", "tags", len(ev.Tags))
		return
	case actionPush:
		if len(s.redoStack) != 0 {
			s.redoStack = nil
			canRedo = boolPtr(false)
		}
		if current != nil {
			s.pushUndoLocked(current)
			canUndo = boolPtr(true)
		}
	}
	s.current = &Entry{Editor: r.ed, EditorState: ev.State, Timestamp: r.ed.Now()}
	s.mu.Unlock()

	r.ed.Logger().Debug("history record", "action", action)
	announce(r.ed, canUndo, canRedo)
}

// Register attaches state to ed and returns the function that detaches it.
// A non-positive delay selects DefaultDelay.
func Register(ed *engine.Engine, state *State, delay time.Duration) func() {
	if delay <= 0 {
		delay = DefaultDelay
	}
	r := &recorder{ed: ed, state: state, delay: delay}

	// A document committed before registration is the baseline the first
	// undo returns to.
	if cur := ed.EditorState(); !cur.IsEmpty() {
		state.mu.Lock()
		if state.current == nil {
			state.current = &Entry{Editor: ed, EditorState: cur, Timestamp: ed.Now()}
		}
		state.mu.Unlock()
	}

	return engine.MergeRegister(
		ed.RegisterCommand(engine.Undo, func(any) bool {
			if err := Undo(ed, state); err != nil && err != ErrNothingToUndo {
				ed.Logger().Warn("undo failed", "error", err)
			}
			return true
		}, engine.PriorityEditor),
		ed.RegisterCommand(engine.Redo, func(any) bool {
			if err := Redo(ed, state); err != nil && err != ErrNothingToRedo {
				ed.Logger().Warn("redo failed", "error", err)
			}
			return true
		}, engine.PriorityEditor),
		// Runs ahead of the text modes, which handle the clear itself.
		ed.RegisterCommand(engine.ClearEditor, func(any) bool {
			state.Clear()
			return false
		}, engine.PriorityLow),
		ed.RegisterCommand(engine.ClearHistory, func(any) bool {
			state.Clear()
			announce(ed, boolPtr(false), boolPtr(false))
			return true
		}, engine.PriorityEditor),
		ed.RegisterUpdateListener(r.onUpdate),
	)
}

// Undo restores the previous history step.
func Undo(ed *engine.Engine, s *State) error {
	s.mu.Lock()
	if len(s.undoStack) == 0 {
		s.mu.Unlock()
		return ErrNothingToUndo
	}
	current := s.current
	entry := s.undoStack[len(s.undoStack)-1]
	s.undoStack = s.undoStack[:len(s.undoStack)-1]
	if current != nil {
		s.redoStack = append(s.redoStack, current)
	}
	s.current = entry
	canUndo := len(s.undoStack) != 0
	s.mu.Unlock()

	if err := setState(entry); err != nil {
		// Restore the stacks on failure.
		s.mu.Lock()
		if current != nil {
			s.redoStack = s.redoStack[:len(s.redoStack)-1]
		}
		s.undoStack = append(s.undoStack, entry)
		s.current = current
		s.mu.Unlock()
		return fmt.Errorf("undo: %w", err)
	}

	var redo *bool
	if current != nil {
		redo = boolPtr(true)
	}
	var undo *bool
	if !canUndo {
		undo = boolPtr(false)
	}
	announce(ed, undo, redo)
	return nil
}

// Redo re-applies the last undone history step.
func Redo(ed *engine.Engine, s *State) error {
	s.mu.Lock()
	if len(s.redoStack) == 0 {
		s.mu.Unlock()
		return ErrNothingToRedo
	}
	current := s.current
	entry := s.redoStack[len(s.redoStack)-1]
	s.redoStack = s.redoStack[:len(s.redoStack)-1]
	if current != nil {
		s.pushUndoLocked(current)
	}
	s.current = entry
	canRedo := len(s.redoStack) != 0
	s.mu.Unlock()

	if err := setState(entry); err != nil {
		s.mu.Lock()
		if current != nil {
			s.undoStack = s.undoStack[:len(s.undoStack)-1]
		}
		s.redoStack = append(s.redoStack, entry)
		s.current = current
		s.mu.Unlock()
		return fmt.Errorf("redo: %w", err)
	}

	var undo *bool
	if current != nil {
		undo = boolPtr(true)
	}
	var redo *bool
	if !canRedo {
		redo = boolPtr(false)
	}
	announce(ed, undo, redo)
	return nil
}

func setState(e *Entry) error {
	return e.Editor.SetEditorState(e.EditorState, engine.WithTag(engine.TagHistoric))
}

func announce(ed *engine.Engine, canUndo, canRedo *bool) {
	if canUndo != nil {
		ed.DispatchCommand(engine.CanUndo, *canUndo)
	}
	if canRedo != nil {
		ed.DispatchCommand(engine.CanRedo, *canRedo)
	}
}

func boolPtr(b bool) *bool { return &b }
