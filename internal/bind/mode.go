package bind

import (
	"github.com/dshills/lexbridge/internal/engine"
	"github.com/dshills/lexbridge/internal/engine/dragon"
	"github.com/dshills/lexbridge/internal/engine/plaintext"
	"github.com/dshills/lexbridge/internal/engine/richtext"
)

// SetupPlainText installs plain text input and dictation support for the
// lifetime of c. initial is passed to plaintext.Register unchanged.
func SetupPlainText(c *Component, ed *engine.Engine, initial any) {
	c.OnMount(func() (func(), error) {
		unregister, err := plaintext.Register(ed, initial)
		if err != nil {
			return nil, err
		}
		return engine.MergeRegister(unregister, dragon.Register(ed)), nil
	})
}

// SetupRichText installs rich text input and dictation support for the
// lifetime of c. initial is passed to richtext.Register unchanged.
func SetupRichText(c *Component, ed *engine.Engine, initial any) {
	c.OnMount(func() (func(), error) {
		unregister, err := richtext.Register(ed, initial)
		if err != nil {
			return nil, err
		}
		return engine.MergeRegister(unregister, dragon.Register(ed)), nil
	})
}
