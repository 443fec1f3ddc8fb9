package bind

import (
	"github.com/dshills/lexbridge/internal/engine"
	"github.com/dshills/lexbridge/internal/engine/text"
)

// EditorStateValue is the value published by EditorState.
type EditorStateValue struct {
	State  *engine.State
	Editor *engine.Engine
}

// StateOption configures EditorState.
type StateOption func(*stateConfig)

type stateConfig struct {
	ignoreInitialChange   bool
	ignoreSelectionChange bool
}

// IgnoreInitialChange sets whether the update committed on top of the empty
// initial state is skipped. The default is true.
func IgnoreInitialChange(ignore bool) StateOption {
	return func(c *stateConfig) {
		c.ignoreInitialChange = ignore
	}
}

// IgnoreSelectionChange sets whether updates that changed nothing but the
// selection are skipped. The default is false.
func IgnoreSelectionChange(ignore bool) StateOption {
	return func(c *stateConfig) {
		c.ignoreSelectionChange = ignore
	}
}

// EditorState returns a store of the engine's latest committed state.
//
// The update listener is registered when the store gains its first
// subscriber and removed when it loses its last one. A new subscriber
// always starts from the engine's present state.
func EditorState(ed *engine.Engine, opts ...StateOption) *Readable[EditorStateValue] {
	cfg := stateConfig{ignoreInitialChange: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	current := func() EditorStateValue {
		return EditorStateValue{State: ed.EditorState(), Editor: ed}
	}
	return NewReadable(current(), func(set func(EditorStateValue)) func() {
		set(current())
		return ed.RegisterUpdateListener(func(ev engine.UpdateEvent) {
			if cfg.ignoreSelectionChange && ev.SelectionOnly() {
				return
			}
			if cfg.ignoreInitialChange && ev.PrevState.IsEmpty() {
				return
			}
			set(EditorStateValue{State: ev.State, Editor: ed})
		})
	})
}

// CanShowPlaceholder returns a store reporting whether the document is
// empty enough for a placeholder. The composing flag is read from the
// engine on every recomputation.
func CanShowPlaceholder(ed *engine.Engine) *Readable[bool] {
	src := EditorState(ed, IgnoreInitialChange(false), IgnoreSelectionChange(true))
	return Derived(src, func(v EditorStateValue) bool {
		return engine.Query(v.State, text.CanShowPlaceholderCurry(v.Editor.IsComposing()))
	}, false, WithEqual(Comparable[bool]))
}
