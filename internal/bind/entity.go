package bind

import (
	"fmt"

	"github.com/dshills/lexbridge/internal/engine"
	"github.com/dshills/lexbridge/internal/engine/text"
)

// SetupTextEntity installs an entity recognizer on the composer's engine
// for the lifetime of c. target must already be registered with the
// engine.
func SetupTextEntity(c *Component, match text.MatchFunc, target engine.NodeType, create text.CreateFunc) error {
	ed, err := GetEditor(c)
	if err != nil {
		return err
	}
	if !ed.HasNodes(target) {
		return &PreconditionError{
			Binder: "SetupTextEntity",
			Err:    fmt.Errorf("%s: %w", target, engine.ErrNodeNotRegistered),
		}
	}
	c.OnMount(func() (func(), error) {
		fns, err := text.RegisterTextEntity(ed, match, target, create)
		if err != nil {
			return nil, &PreconditionError{Binder: "SetupTextEntity", Err: err}
		}
		return engine.MergeRegister(fns...), nil
	})
	return nil
}
