package bind

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/lexbridge/internal/config"
	"github.com/dshills/lexbridge/internal/engine"
	"github.com/dshills/lexbridge/internal/engine/dragon"
)

func TestSetupPlainText(t *testing.T) {
	c, ed, _ := newComposer(t, config.Default())
	SetupPlainText(c, ed, "one\ntwo")
	AutoFocus(c, ed)
	mount(t, c)

	if diff := cmp.Diff([]engine.NodeType{engine.NodeParagraph}, blockTypes(ed)); diff != "" {
		t.Errorf("blocks (-want +got):\n%s", diff)
	}
	ed.DispatchCommand(engine.InsertParagraph, nil)
	typeText(t, ed, "three")
	if got := docText(ed); got != "one\ntwo\nthree" {
		t.Errorf("text = %q, want %q", got, "one\ntwo\nthree")
	}
	if len(blockTypes(ed)) != 1 {
		t.Errorf("plain text grew to %d blocks", len(blockTypes(ed)))
	}
}

func TestSetupRichText(t *testing.T) {
	c, ed, _ := newComposer(t, config.Default())
	SetupRichText(c, ed, "one\ntwo")
	AutoFocus(c, ed)
	mount(t, c)

	ed.DispatchCommand(engine.InsertParagraph, nil)
	typeText(t, ed, "three")

	want := []engine.NodeType{engine.NodeParagraph, engine.NodeParagraph, engine.NodeParagraph}
	if diff := cmp.Diff(want, blockTypes(ed)); diff != "" {
		t.Errorf("blocks (-want +got):\n%s", diff)
	}
	if got := docText(ed); got != "one\n\ntwo\n\nthree" {
		t.Errorf("text = %q", got)
	}
}

func TestSetupRichText_Dictation(t *testing.T) {
	c, ed, _ := newComposer(t, config.Default())
	SetupRichText(c, ed, "hello world")
	AutoFocus(c, ed)
	mount(t, c)

	raw := `{"protocol":"nuanria_messaging","type":"request","payload":{"functionId":"makeChanges","args":[6,5,"there",11,0,""]}}`
	if !ed.DispatchCommand(dragon.Input, raw) {
		t.Fatal("DRAGON_INPUT not handled")
	}
	if got := docText(ed); got != "hello there" {
		t.Errorf("text = %q, want %q", got, "hello there")
	}

	c.Destroy()
	if n := ed.HandlerCount(dragon.Input); n != 0 {
		t.Errorf("HandlerCount(DRAGON_INPUT) = %d after destroy, want 0", n)
	}
	if n := ed.HandlerCount(engine.InsertText); n != 0 {
		t.Errorf("HandlerCount(INSERT_TEXT) = %d after destroy, want 0", n)
	}
}

func TestSetupRichText_InvalidInitial(t *testing.T) {
	c, ed, _ := newComposer(t, config.Default())
	SetupRichText(c, ed, 42)

	if err := c.Mount(); !errors.Is(err, engine.ErrInvalidInitialState) {
		t.Fatalf("Mount() error = %v, want ErrInvalidInitialState", err)
	}
	if n := ed.HandlerCount(engine.InsertText); n != 0 {
		t.Errorf("HandlerCount(INSERT_TEXT) = %d after failed mount, want 0", n)
	}
}
