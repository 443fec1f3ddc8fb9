package bind

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/lexbridge/internal/config"
	"github.com/dshills/lexbridge/internal/engine"
	"github.com/dshills/lexbridge/internal/engine/history"
)

// typingSession mounts a rich text composer with the caret at the end and
// history bound through external.
func typingSession(t *testing.T, external func() *history.State, delay time.Duration) (*Component, *engine.Engine, *fakeClock, *HistoryBinding) {
	t.Helper()
	c, ed, clock := newComposer(t, config.Default())
	SetupRichText(c, ed, nil)
	AutoFocus(c, ed)
	h := SetupHistory(c, ed, external, delay)
	mount(t, c)
	return c, ed, clock, h
}

func TestSetupHistory_Coalescing(t *testing.T) {
	_, ed, clock, _ := typingSession(t, nil, 1000*time.Millisecond)

	clock.set(0)
	typeText(t, ed, "a")
	clock.set(500)
	typeText(t, ed, "b")
	clock.set(1600)
	typeText(t, ed, "c")

	ed.DispatchCommand(engine.Undo, nil)
	if got := docText(ed); got != "ab" {
		t.Errorf("after first undo text = %q, want %q", got, "ab")
	}
	ed.DispatchCommand(engine.Undo, nil)
	if got := docText(ed); got != "" {
		t.Errorf("after second undo text = %q, want empty", got)
	}
	ed.DispatchCommand(engine.Redo, nil)
	if got := docText(ed); got != "ab" {
		t.Errorf("after redo text = %q, want %q", got, "ab")
	}
}

func TestSetupHistory_Swap(t *testing.T) {
	a, b := history.NewState(), history.NewState()
	current := a
	c, ed, clock, h := typingSession(t, func() *history.State { return current }, time.Second)

	if h.Bound() != a {
		t.Fatal("Bound() is not the external state after mount")
	}
	clock.set(0)
	typeText(t, ed, "a")
	clock.set(2000)
	typeText(t, ed, "b")
	aCount, aCurrent := a.UndoCount(), a.Current()

	current = b
	c.Update()
	if h.Bound() != b {
		t.Fatal("Bound() not swapped after update")
	}
	if n := ed.HandlerCount(engine.Undo); n != 1 {
		t.Fatalf("HandlerCount(UNDO) = %d after swap, want 1", n)
	}

	clock.set(4000)
	typeText(t, ed, "c")

	if a.UndoCount() != aCount || a.Current() != aCurrent {
		t.Error("detached history state reacted to an edit")
	}
	if cur := b.Current(); cur == nil || cur.EditorState != ed.EditorState() {
		t.Error("bound history state did not record the edit")
	}
	if b.UndoCount() != 1 {
		t.Errorf("bound UndoCount() = %d, want 1", b.UndoCount())
	}

	c.Update()
	if n := ed.HandlerCount(engine.Undo); n != 1 {
		t.Errorf("HandlerCount(UNDO) = %d after a no-op update, want 1", n)
	}
}

func TestSetupHistory_Fallback(t *testing.T) {
	external := history.NewState()
	var current *history.State
	c, _, _, h := typingSession(t, func() *history.State { return current }, 0)

	fallback := h.Bound()
	if fallback == nil {
		t.Fatal("no history bound without an external state")
	}

	current = external
	c.Update()
	if h.Bound() != external {
		t.Fatal("external state not bound")
	}

	current = nil
	c.Update()
	if h.Bound() != fallback {
		t.Error("fallback state was not reused")
	}
}

func TestSetupHistory_Destroy(t *testing.T) {
	c, ed, _, h := typingSession(t, nil, 0)
	if ed.HandlerCount(engine.Undo) != 1 {
		t.Fatalf("HandlerCount(UNDO) = %d, want 1", ed.HandlerCount(engine.Undo))
	}

	c.Destroy()
	if h.Bound() != nil {
		t.Error("Bound() != nil after destroy")
	}
	if n := ed.HandlerCount(engine.Undo); n != 0 {
		t.Errorf("HandlerCount(UNDO) = %d after destroy, want 0", n)
	}
	if n := ed.ListenerCount(); n != 0 {
		t.Errorf("ListenerCount() = %d after destroy, want 0", n)
	}
}

func TestCanUndoCanRedo(t *testing.T) {
	_, ed, clock, _ := typingSession(t, nil, time.Second)
	canUndo, canRedo := CanUndo(ed), CanRedo(ed)

	type flags struct{ Undo, Redo bool }
	var got []flags
	var u, r bool
	subU := canUndo.Subscribe(func(v bool) { u = v })
	subR := canRedo.Subscribe(func(v bool) { r = v })
	defer subU.Unsubscribe()
	defer subR.Unsubscribe()
	snap := func() { got = append(got, flags{u, r}) }

	snap()
	clock.set(0)
	typeText(t, ed, "x")
	snap()
	ed.DispatchCommand(engine.Undo, nil)
	snap()
	ed.DispatchCommand(engine.Redo, nil)
	snap()

	want := []flags{
		{false, false},
		{true, false},
		{false, true},
		{true, false},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("flags (-want +got):\n%s", diff)
	}
}
