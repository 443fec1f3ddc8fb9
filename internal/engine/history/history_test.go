package history

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/lexbridge/internal/engine"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) set(ms int) {
	c.t = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(ms) * time.Millisecond)
}

// newSession returns an engine with one empty text leaf, initialized the way
// the text modes do it, with history attached.
func newSession(t *testing.T, delay time.Duration) (*engine.Engine, *State, *fakeClock, engine.NodeKey) {
	t.Helper()
	clock := &fakeClock{}
	clock.set(0)
	ed := engine.New(engine.WithClock(clock.now))
	st := NewState()
	t.Cleanup(Register(ed, st, delay))

	var leaf engine.NodeKey
	err := ed.Update(func(tx *engine.Tx) error {
		p := tx.CreateParagraph()
		tn := tx.CreateText(engine.NodeText, "")
		tx.Append(p.Key, tn.Key)
		tx.Append(engine.RootKey, p.Key)
		tx.SelectEnd(tn.Key)
		leaf = tn.Key
		return nil
	}, engine.WithTag(engine.TagHistoryMerge))
	if err != nil {
		t.Fatal(err)
	}
	return ed, st, clock, leaf
}

func setText(t *testing.T, ed *engine.Engine, key engine.NodeKey, text string) {
	t.Helper()
	err := ed.Update(func(tx *engine.Tx) error {
		tx.SetText(key, text)
		tx.SelectEnd(key)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func text(ed *engine.Engine) string {
	return engine.TextContent(ed.EditorState(), engine.RootKey)
}

func TestCoalescing(t *testing.T) {
	ed, st, clock, leaf := newSession(t, time.Second)

	clock.set(0)
	setText(t, ed, leaf, "a")
	clock.set(500)
	setText(t, ed, leaf, "ab")
	clock.set(1600)
	setText(t, ed, leaf, "abc")

	if got := st.UndoCount(); got != 2 {
		t.Fatalf("UndoCount = %d, want 2", got)
	}

	ed.DispatchCommand(engine.Undo, nil)
	if got := text(ed); got != "ab" {
		t.Errorf("after first undo text = %q, want %q", got, "ab")
	}
	ed.DispatchCommand(engine.Undo, nil)
	if got := text(ed); got != "" {
		t.Errorf("after second undo text = %q, want empty", got)
	}
	if st.CanUndo() {
		t.Error("history should be exhausted")
	}
}

func TestCoalescing_WindowSlides(t *testing.T) {
	ed, st, clock, leaf := newSession(t, time.Second)

	for i, ms := range []int{0, 900, 1800, 2700} {
		clock.set(ms)
		setText(t, ed, leaf, string(rune('a'+i)))
	}
	if got := st.UndoCount(); got != 1 {
		t.Errorf("UndoCount = %d, want 1", got)
	}
}

func TestUndoRedo_Announcements(t *testing.T) {
	ed, st, clock, leaf := newSession(t, time.Second)

	var log []string
	ed.RegisterCommand(engine.CanUndo, func(p any) bool {
		log = append(log, "undo="+boolString(p.(bool)))
		return false
	}, engine.PriorityLow)
	ed.RegisterCommand(engine.CanRedo, func(p any) bool {
		log = append(log, "redo="+boolString(p.(bool)))
		return false
	}, engine.PriorityLow)

	setText(t, ed, leaf, "one")
	clock.set(5000)
	setText(t, ed, leaf, "two")

	ed.DispatchCommand(engine.Undo, nil)
	ed.DispatchCommand(engine.Redo, nil)
	if got := text(ed); got != "two" {
		t.Errorf("text after redo = %q, want %q", got, "two")
	}
	if st.CanRedo() {
		t.Error("redo stack should be empty")
	}

	want := []string{
		"undo=true",               // first edit pushes the initial entry
		"undo=true",               // second edit
		"redo=true",               // undo
		"undo=true", "redo=false", // redo
	}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("announcements (-want +got):\n%s", diff)
	}
}

func TestUndo_NotRecorded(t *testing.T) {
	ed, st, clock, leaf := newSession(t, time.Second)
	setText(t, ed, leaf, "one")
	clock.set(5000)
	setText(t, ed, leaf, "two")

	ed.DispatchCommand(engine.Undo, nil)
	ed.DispatchCommand(engine.Undo, nil)
	ed.DispatchCommand(engine.Undo, nil)

	if st.UndoCount() != 0 || st.RedoCount() != 2 {
		t.Errorf("undo = %d, redo = %d, want 0 and 2", st.UndoCount(), st.RedoCount())
	}
	if err := Undo(ed, st); err != ErrNothingToUndo {
		t.Errorf("Undo() = %v, want ErrNothingToUndo", err)
	}
}

func TestNewEditClearsRedo(t *testing.T) {
	ed, st, clock, leaf := newSession(t, time.Second)
	setText(t, ed, leaf, "one")
	ed.DispatchCommand(engine.Undo, nil)
	if !st.CanRedo() {
		t.Fatal("expected redo")
	}
	clock.set(3000)
	setText(t, ed, leaf, "other")
	if st.CanRedo() {
		t.Error("a new edit must drop the redo stack")
	}
	if err := Redo(ed, st); err != ErrNothingToRedo {
		t.Errorf("Redo() = %v, want ErrNothingToRedo", err)
	}
}

func TestSelectionOnlyMerges(t *testing.T) {
	ed, st, clock, leaf := newSession(t, time.Second)
	setText(t, ed, leaf, "hello")

	clock.set(5000)
	err := ed.Update(func(tx *engine.Tx) error {
		tx.SetSelection(engine.Collapsed(engine.TextPoint(leaf, 1)))
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := st.UndoCount(); got != 1 {
		t.Errorf("UndoCount = %d, want 1", got)
	}
	if st.Current().EditorState != ed.EditorState() {
		t.Error("selection change should refresh the current entry")
	}
}

func TestHistoryPushTag(t *testing.T) {
	ed, st, _, leaf := newSession(t, time.Second)
	setText(t, ed, leaf, "a")
	err := ed.Update(func(tx *engine.Tx) error {
		tx.SetText(leaf, "ab")
		return nil
	}, engine.WithTag(engine.TagHistoryPush))
	if err != nil {
		t.Fatal(err)
	}
	if got := st.UndoCount(); got != 2 {
		t.Errorf("UndoCount = %d, want 2", got)
	}
}

func TestClearHistory(t *testing.T) {
	ed, st, _, leaf := newSession(t, time.Second)
	setText(t, ed, leaf, "a")

	var canUndo []bool
	ed.RegisterCommand(engine.CanUndo, func(p any) bool {
		canUndo = append(canUndo, p.(bool))
		return false
	}, engine.PriorityLow)

	if !ed.DispatchCommand(engine.ClearHistory, nil) {
		t.Error("clear history should be handled")
	}
	if st.CanUndo() || st.Current() != nil {
		t.Error("history not cleared")
	}
	if diff := cmp.Diff([]bool{false}, canUndo); diff != "" {
		t.Errorf("announcements (-want +got):\n%s", diff)
	}
}

func TestUnregister(t *testing.T) {
	clock := &fakeClock{}
	ed := engine.New(engine.WithClock(clock.now))
	st := NewState()
	unregister := Register(ed, st, 0)
	unregister()
	unregister()

	if ed.HandlerCount(engine.Undo) != 0 || ed.ListenerCount() != 0 {
		t.Error("registrations left behind")
	}
	if ed.DispatchCommand(engine.Undo, nil) {
		t.Error("undo should be unhandled after unregister")
	}
}

func TestRegister_ExistingDocument(t *testing.T) {
	clock := &fakeClock{}
	clock.set(0)
	ed := engine.New(engine.WithClock(clock.now))
	var leaf engine.NodeKey
	if err := ed.Update(func(tx *engine.Tx) error {
		p := tx.CreateParagraph()
		tn := tx.CreateText(engine.NodeText, "draft")
		tx.Append(p.Key, tn.Key)
		tx.Append(engine.RootKey, p.Key)
		tx.SelectEnd(tn.Key)
		leaf = tn.Key
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	before := ed.EditorState()

	st := NewState()
	t.Cleanup(Register(ed, st, time.Second))
	if cur := st.Current(); cur == nil || cur.EditorState != before {
		t.Fatal("Register should record the committed document as the current entry")
	}

	setText(t, ed, leaf, "draft 2")
	ed.DispatchCommand(engine.Undo, nil)
	if got := text(ed); got != "draft" {
		t.Errorf("after undo text = %q, want %q", got, "draft")
	}
}

func TestRegister_EmptyDocument(t *testing.T) {
	ed := engine.New()
	st := NewState()
	t.Cleanup(Register(ed, st, 0))
	if st.Current() != nil {
		t.Error("Register should not record the empty initial state")
	}
}

func TestMaxEntries(t *testing.T) {
	ed, st, clock, leaf := newSession(t, time.Second)
	st.SetMaxEntries(2)
	for i := 0; i < 5; i++ {
		clock.set(2000 * (i + 1))
		setText(t, ed, leaf, string(rune('a'+i)))
	}
	if got := st.UndoCount(); got != 2 {
		t.Errorf("UndoCount = %d, want 2", got)
	}
	if e, ok := st.PeekUndo(); !ok || engine.TextContent(e.EditorState, engine.RootKey) != "d" {
		t.Error("oldest entries should be dropped first")
	}
	st.SetMaxEntries(0)
	if st.MaxEntries() != DefaultMaxEntries {
		t.Errorf("MaxEntries = %d, want %d", st.MaxEntries(), DefaultMaxEntries)
	}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
