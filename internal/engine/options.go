package engine

import (
	"time"

	"github.com/dshills/lexbridge/internal/logging"
)

// maxTransformPasses bounds how often node transforms may re-dirty nodes
// within one commit.
const maxTransformPasses = 100

// Option configures an Engine during creation.
type Option func(*Engine)

// WithNodes registers additional node variants.
func WithNodes(specs ...NodeSpec) Option {
	return func(e *Engine) {
		for _, spec := range specs {
			if err := e.reg.Register(spec); err != nil {
				e.logger.Warn("skipping node spec", "error", err)
			}
		}
	}
}

// WithNamespace sets a free-form name for the editing session.
func WithNamespace(ns string) Option {
	return func(e *Engine) {
		e.namespace = ns
	}
}

// WithClock sets the time source used by time-based behavior such as
// history coalescing.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithOnError sets the sink that receives failed update errors.
func WithOnError(fn func(error)) Option {
	return func(e *Engine) {
		e.onError = fn
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithEditable sets whether user input commands may change the document.
func WithEditable(editable bool) Option {
	return func(e *Engine) {
		e.editable = editable
	}
}

// UpdateOption configures a single update.
type UpdateOption func(*updateConfig)

type updateConfig struct {
	tags []string
}

// WithTag attaches an update tag.
func WithTag(tag string) UpdateOption {
	return func(c *updateConfig) {
		c.tags = append(c.tags, tag)
	}
}

func applyUpdateOptions(opts []UpdateOption) updateConfig {
	var c updateConfig
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
