package bind

import (
	"github.com/dshills/lexbridge/internal/config"
	"github.com/dshills/lexbridge/internal/engine"
	"github.com/dshills/lexbridge/internal/engine/list"
	"github.com/dshills/lexbridge/internal/logging"
)

type editorKey struct{}

// GetEditor returns the engine published by the nearest composer above c.
func GetEditor(c *Component) (*engine.Engine, error) {
	v, ok := c.Context(editorKey{})
	if !ok {
		return nil, &PreconditionError{Binder: "GetEditor", Err: ErrNoComposer}
	}
	return v.(*engine.Engine), nil
}

// NewComposer creates an engine from cfg and a root component publishing
// it to its descendants. opts are applied after the options derived from
// cfg. A nil logger discards output.
func NewComposer(cfg config.Config, logger *logging.Logger, opts ...engine.Option) (*Component, *engine.Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	base := []engine.Option{
		engine.WithLogger(logger.WithComponent("engine")),
		engine.WithNamespace(cfg.Namespace),
		engine.WithEditable(!cfg.ReadOnly),
		engine.WithNodes(NodeSpecs(cfg)...),
	}
	ed := engine.New(append(base, opts...)...)

	c := NewComponent("composer", nil)
	c.SetLogger(logger.WithComponent("bind"))
	c.SetContext(editorKey{}, ed)
	c.OnMount(func() (func(), error) {
		c.Logger().Debug("composer mounted", "namespace", cfg.Namespace, "mode", cfg.Mode)
		return func() {
			c.Logger().Debug("composer destroyed", "namespace", cfg.Namespace)
		}, nil
	})
	return c, ed, nil
}

// NodeSpecs returns the node variants enabled by cfg beyond the defaults:
// the list nodes when requested and one inline text variant per entity.
func NodeSpecs(cfg config.Config) []engine.NodeSpec {
	var specs []engine.NodeSpec
	if cfg.HasNode(config.NodeList) {
		specs = append(specs, list.Nodes()...)
	}
	for _, e := range cfg.Entities {
		specs = append(specs, engine.NodeSpec{
			Type:   engine.NodeType(e.Name),
			Kind:   engine.KindText,
			Inline: true,
		})
	}
	return specs
}
