package plaintext

import (
	"testing"

	"github.com/dshills/lexbridge/internal/engine"
)

func TestRegister_InitialText(t *testing.T) {
	ed := engine.New()
	unregister, err := Register(ed, "one\ntwo")
	if err != nil {
		t.Fatal(err)
	}
	defer unregister()

	st := ed.EditorState()
	if n := len(st.Root().Children); n != 1 {
		t.Errorf("root has %d blocks, want 1", n)
	}
	if got := engine.TextContent(st, engine.RootKey); got != "one\ntwo" {
		t.Errorf("content = %q, want %q", got, "one\ntwo")
	}
}

func TestRegister_KeepsExistingState(t *testing.T) {
	ed := engine.New()
	if err := ed.Update(func(tx *engine.Tx) error {
		tx.Append(engine.RootKey, tx.CreateParagraph().Key)
		tx.Append(engine.RootKey, tx.CreateParagraph().Key)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	before := ed.EditorState()
	unregister, err := Register(ed, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer unregister()
	if ed.EditorState() != before {
		t.Error("a nil initial state must not touch a non-empty document")
	}
}

func TestParagraphBecomesLineBreak(t *testing.T) {
	ed := engine.New()
	unregister, err := Register(ed, "abcd")
	if err != nil {
		t.Fatal(err)
	}
	defer unregister()

	leaf := engine.FirstLeaf(ed.EditorState(), engine.RootKey)
	ed.DispatchCommand(engine.SelectionChange, engine.Collapsed(engine.TextPoint(leaf.Key, 2)))
	if !ed.DispatchCommand(engine.InsertParagraph, nil) {
		t.Fatal("INSERT_PARAGRAPH not handled")
	}

	st := ed.EditorState()
	if n := len(st.Root().Children); n != 1 {
		t.Errorf("root has %d blocks, want 1", n)
	}
	if got := engine.TextContent(st, engine.RootKey); got != "ab\ncd" {
		t.Errorf("content = %q, want %q", got, "ab\ncd")
	}

	ed.DispatchCommand(engine.DeleteCharacter, true)
	if got := engine.TextContent(ed.EditorState(), engine.RootKey); got != "abcd" {
		t.Errorf("after backspace = %q, want %q", got, "abcd")
	}
}

func TestUnregister(t *testing.T) {
	ed := engine.New()
	unregister, err := Register(ed, nil)
	if err != nil {
		t.Fatal(err)
	}
	unregister()
	unregister()
	for _, cmd := range []engine.Command{engine.InsertText, engine.DeleteCharacter, engine.InsertParagraph} {
		if n := ed.HandlerCount(cmd); n != 0 {
			t.Errorf("%s has %d handlers after unregister", cmd, n)
		}
	}
}
