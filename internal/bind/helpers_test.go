package bind

import (
	"testing"
	"time"

	"github.com/dshills/lexbridge/internal/config"
	"github.com/dshills/lexbridge/internal/engine"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) set(ms int) {
	c.t = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(ms) * time.Millisecond)
}

// testConfig enables lists and a hashtag entity.
func testConfig() config.Config {
	cfg := config.Default()
	cfg.Entities = []config.Entity{{Name: "hashtag", Pattern: `#\d+`}}
	return cfg
}

// newComposer builds a composer on a fake clock. It is destroyed when the
// test ends.
func newComposer(t *testing.T, cfg config.Config) (*Component, *engine.Engine, *fakeClock) {
	t.Helper()
	clock := &fakeClock{}
	clock.set(0)
	c, ed, err := NewComposer(cfg, nil, engine.WithClock(clock.now))
	if err != nil {
		t.Fatalf("NewComposer() error = %v", err)
	}
	t.Cleanup(c.Destroy)
	return c, ed, clock
}

func mount(t *testing.T, c *Component) {
	t.Helper()
	if err := c.Mount(); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
}

func docText(ed *engine.Engine) string {
	return engine.TextContent(ed.EditorState(), engine.RootKey)
}

func typeText(t *testing.T, ed *engine.Engine, s string) {
	t.Helper()
	if !ed.DispatchCommand(engine.InsertText, s) {
		t.Fatalf("INSERT_TEXT %q not handled", s)
	}
}

// blockTypes lists the types of the root's children.
func blockTypes(ed *engine.Engine) []engine.NodeType {
	var out []engine.NodeType
	for _, n := range engine.Children(ed.EditorState(), engine.RootKey) {
		out = append(out, n.Type)
	}
	return out
}
