package bind

import (
	"time"

	"github.com/dshills/lexbridge/internal/engine"
	"github.com/dshills/lexbridge/internal/engine/history"
)

type slotState int

const (
	slotUnbound slotState = iota
	slotBound
)

func (s slotState) String() string {
	if s == slotBound {
		return "bound"
	}
	return "unbound"
}

// HistoryBinding holds the history state bound to an engine. At most one
// state is registered at a time; a swap unregisters the old state before
// registering the new one.
type HistoryBinding struct {
	ed       *engine.Engine
	delay    time.Duration
	external func() *history.State

	state      slotState
	bound      *history.State
	unregister func()
	fallback   *history.State
}

// SetupHistory binds a history state to ed for the lifetime of c. After
// mount and after every update, the state returned by external is compared
// by identity with the bound one and swapped in if it differs. When
// external is nil or returns nil, a state owned by the binding is used; it
// is created on first use and dropped on destroy. A non-positive delay
// selects history.DefaultDelay.
func SetupHistory(c *Component, ed *engine.Engine, external func() *history.State, delay time.Duration) *HistoryBinding {
	h := &HistoryBinding{ed: ed, delay: delay, external: external}
	c.AfterUpdate(h.sync)
	c.OnDestroy(func() {
		h.release()
		h.fallback = nil
	})
	return h
}

// Bound returns the registered history state, or nil.
func (h *HistoryBinding) Bound() *history.State {
	return h.bound
}

func (h *HistoryBinding) resolve() *history.State {
	if h.external != nil {
		if st := h.external(); st != nil {
			return st
		}
	}
	if h.fallback == nil {
		h.fallback = history.NewState()
	}
	return h.fallback
}

func (h *HistoryBinding) sync() {
	h.swap(h.resolve())
}

func (h *HistoryBinding) swap(st *history.State) {
	if h.state == slotBound && h.bound == st {
		return
	}
	h.release()
	h.unregister = history.Register(h.ed, st, h.delay)
	h.bound = st
	h.state = slotBound
	h.ed.Logger().Debug("history bound", "delay", h.delay)
}

// release unregisters the bound state. Without one it does nothing.
func (h *HistoryBinding) release() {
	if h.state == slotUnbound {
		return
	}
	h.unregister()
	h.unregister = nil
	h.bound = nil
	h.state = slotUnbound
	h.ed.Logger().Debug("history released")
}

// CanUndo returns a store following the CAN_UNDO announcements. It holds
// false until the first announcement seen while subscribed.
func CanUndo(ed *engine.Engine) *Readable[bool] {
	return commandFlag(ed, engine.CanUndo)
}

// CanRedo returns a store following the CAN_REDO announcements.
func CanRedo(ed *engine.Engine) *Readable[bool] {
	return commandFlag(ed, engine.CanRedo)
}

func commandFlag(ed *engine.Engine, cmd engine.Command) *Readable[bool] {
	return NewReadable(false, func(set func(bool)) func() {
		return ed.RegisterCommand(cmd, func(payload any) bool {
			if v, ok := payload.(bool); ok {
				set(v)
			}
			return false
		}, engine.PriorityLow)
	}, WithEqual(Comparable[bool]))
}
