package engine

import (
	"sort"
	"sync"
)

// Command names a dispatchable action.
type Command string

// Command priorities. Higher values run first.
const (
	PriorityEditor   = 0
	PriorityLow      = 1
	PriorityNormal   = 2
	PriorityHigh     = 3
	PriorityCritical = 4
)

// CommandHandler handles a dispatched command. Returning true marks the
// command handled and stops propagation to lower-priority handlers.
type CommandHandler func(payload any) bool

// handlerEntry is one (priority, sequence, handler) link of a command chain.
type handlerEntry struct {
	id       uint64
	priority int
	fn       CommandHandler
}

// handlerChain keeps handlers ordered by priority, highest first. Handlers
// with equal priority stay in registration order.
type handlerChain []handlerEntry

func (c handlerChain) insert(e handlerEntry) handlerChain {
	// First index whose priority is strictly lower than the new entry:
	// equal priorities registered earlier stay in front.
	i := sort.Search(len(c), func(i int) bool { return c[i].priority < e.priority })
	c = append(c, handlerEntry{})
	copy(c[i+1:], c[i:])
	c[i] = e
	return c
}

func (c handlerChain) remove(id uint64) handlerChain {
	for i, e := range c {
		if e.id == id {
			return append(c[:i:i], c[i+1:]...)
		}
	}
	return c
}

// RegisterCommand adds a handler for cmd at the given priority and returns
// a function that removes it. The returned function is safe to call more
// than once.
func (e *Engine) RegisterCommand(cmd Command, fn CommandHandler, priority int) func() {
	e.mu.Lock()
	e.seq++
	id := e.seq
	e.commands[cmd] = e.commands[cmd].insert(handlerEntry{id: id, priority: priority, fn: fn})
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			chain := e.commands[cmd].remove(id)
			if len(chain) == 0 {
				delete(e.commands, cmd)
				return
			}
			e.commands[cmd] = chain
		})
	}
}

// DispatchCommand runs the handlers of cmd from highest to lowest priority
// until one reports the command handled. It returns whether any did.
func (e *Engine) DispatchCommand(cmd Command, payload any) bool {
	e.mu.Lock()
	chain := append(handlerChain(nil), e.commands[cmd]...)
	e.mu.Unlock()

	for _, h := range chain {
		if h.fn(payload) {
			e.logger.Debug("command handled", "command", cmd, "priority", h.priority)
			return true
		}
	}
	e.logger.Debug("command not handled", "command", cmd, "handlers", len(chain))
	return false
}

// HandlerCount returns the number of handlers registered for cmd.
func (e *Engine) HandlerCount(cmd Command) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.commands[cmd])
}

// Core commands.
const (
	// SelectionChange is dispatched after the selection moves.
	SelectionChange Command = "SELECTION_CHANGE"
	// InsertText inserts the string payload at the selection.
	InsertText Command = "INSERT_TEXT"
	// DeleteCharacter deletes one grapheme; the bool payload selects
	// backward deletion.
	DeleteCharacter Command = "DELETE_CHARACTER"
	// InsertParagraph breaks the current block at the selection.
	InsertParagraph Command = "INSERT_PARAGRAPH"
	// InsertLineBreak inserts a line break at the selection.
	InsertLineBreak Command = "INSERT_LINE_BREAK"
	// IndentContent increases the indent of the selected blocks.
	IndentContent Command = "INDENT_CONTENT"
	// OutdentContent decreases the indent of the selected blocks.
	OutdentContent Command = "OUTDENT_CONTENT"
	// FormatText toggles the TextFormat payload on the selected text.
	FormatText Command = "FORMAT_TEXT"
	// ClearEditor resets the document to one empty paragraph.
	ClearEditor Command = "CLEAR_EDITOR"

	// Undo reverts the last history step.
	Undo Command = "UNDO"
	// Redo re-applies the last reverted history step.
	Redo Command = "REDO"
	// ClearHistory empties the undo and redo stacks.
	ClearHistory Command = "CLEAR_HISTORY"
	// CanUndo announces, with a bool payload, whether undo is available.
	CanUndo Command = "CAN_UNDO"
	// CanRedo announces, with a bool payload, whether redo is available.
	CanRedo Command = "CAN_REDO"
)

// Update tags understood by the history subsystem.
const (
	// TagHistoryMerge folds the update into the current history entry.
	TagHistoryMerge = "history-merge"
	// TagHistoryPush forces the update into a new history entry.
	TagHistoryPush = "history-push"
	// TagHistoric marks updates produced by undo or redo.
	TagHistoric = "historic"
)
