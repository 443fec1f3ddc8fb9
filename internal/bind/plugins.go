package bind

import (
	"github.com/dshills/lexbridge/internal/engine"
)

// ChangeOption configures OnChange.
type ChangeOption func(*changeConfig)

type changeConfig struct {
	ignoreSelectionChange       bool
	ignoreHistoryMergeTagChange bool
}

// IgnoreSelectionOnly sets whether updates that only move the selection
// are skipped. The default is false.
func IgnoreSelectionOnly(ignore bool) ChangeOption {
	return func(c *changeConfig) {
		c.ignoreSelectionChange = ignore
	}
}

// IgnoreHistoryMerge sets whether updates tagged history-merge are
// skipped. The default is true.
func IgnoreHistoryMerge(ignore bool) ChangeOption {
	return func(c *changeConfig) {
		c.ignoreHistoryMergeTagChange = ignore
	}
}

// OnChange calls fn with every committed update while c is mounted. The
// update that replaced the empty initial state is never reported.
func OnChange(c *Component, ed *engine.Engine, fn func(ev engine.UpdateEvent), opts ...ChangeOption) {
	cfg := changeConfig{ignoreHistoryMergeTagChange: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	c.OnMount(func() (func(), error) {
		return ed.RegisterUpdateListener(func(ev engine.UpdateEvent) {
			if cfg.ignoreSelectionChange && ev.SelectionOnly() {
				return
			}
			if cfg.ignoreHistoryMergeTagChange && ev.HasTag(engine.TagHistoryMerge) {
				return
			}
			if ev.PrevState.IsEmpty() {
				return
			}
			fn(ev)
		}), nil
	})
}

// AutoFocus places the caret at the end of the document when c mounts,
// unless a selection already exists.
func AutoFocus(c *Component, ed *engine.Engine) {
	c.OnMount(func() (func(), error) {
		err := ed.Update(func(tx *engine.Tx) error {
			if tx.Selection() == nil {
				tx.SelectEnd(engine.RootKey)
			}
			return nil
		})
		return nil, err
	})
}
