package bind

import (
	"testing"

	"github.com/dshills/lexbridge/internal/engine"
)

// seed commits one paragraph holding text and returns the text key.
func seed(t *testing.T, ed *engine.Engine, s string) engine.NodeKey {
	t.Helper()
	var key engine.NodeKey
	err := ed.Update(func(tx *engine.Tx) error {
		p := tx.CreateParagraph()
		tn := tx.CreateText(engine.NodeText, s)
		tx.Append(p.Key, tn.Key)
		tx.Append(engine.RootKey, p.Key)
		key = tn.Key
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return key
}

func setText(t *testing.T, ed *engine.Engine, key engine.NodeKey, s string) {
	t.Helper()
	if err := ed.Update(func(tx *engine.Tx) error {
		tx.SetText(key, s)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

func selectAt(t *testing.T, ed *engine.Engine, key engine.NodeKey, offset int) {
	t.Helper()
	if err := ed.Update(func(tx *engine.Tx) error {
		tx.SetSelection(engine.Collapsed(engine.TextPoint(key, offset)))
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

func collect(r *Readable[EditorStateValue]) (*[]*engine.State, *Subscription) {
	var got []*engine.State
	sub := r.Subscribe(func(v EditorStateValue) { got = append(got, v.State) })
	return &got, sub
}

func TestEditorState_SkipsInitialChange(t *testing.T) {
	ed := engine.New()
	got, sub := collect(EditorState(ed))
	defer sub.Unsubscribe()

	initial := ed.EditorState()
	key := seed(t, ed, "first")
	if len(*got) != 1 {
		t.Fatalf("published %d values after the first update, want only the subscription value", len(*got))
	}
	if (*got)[0] != initial {
		t.Error("subscription value is not the current snapshot")
	}

	setText(t, ed, key, "second")
	if len(*got) != 2 || (*got)[1] != ed.EditorState() {
		t.Fatalf("second update not published: %d values", len(*got))
	}
}

func TestEditorState_KeepsInitialChange(t *testing.T) {
	ed := engine.New()
	got, sub := collect(EditorState(ed, IgnoreInitialChange(false)))
	defer sub.Unsubscribe()

	seed(t, ed, "first")
	if len(*got) != 2 || (*got)[1] != ed.EditorState() {
		t.Errorf("first update not published: %d values", len(*got))
	}
}

func TestEditorState_SelectionOnly(t *testing.T) {
	tests := []struct {
		name   string
		ignore bool
		want   int
	}{
		{"suppressed", true, 1},
		{"published", false, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed := engine.New()
			key := seed(t, ed, "hello")
			got, sub := collect(EditorState(ed, IgnoreSelectionChange(tt.ignore)))
			defer sub.Unsubscribe()

			for i := 0; i < 3; i++ {
				selectAt(t, ed, key, i)
			}
			if len(*got) != tt.want {
				t.Errorf("published %d values, want %d", len(*got), tt.want)
			}
		})
	}
}

func TestEditorState_ListenerLifecycle(t *testing.T) {
	ed := engine.New()
	store := EditorState(ed)
	if ed.ListenerCount() != 0 {
		t.Fatal("listener registered before any subscriber")
	}

	sub1 := store.Subscribe(func(EditorStateValue) {})
	sub2 := store.Subscribe(func(EditorStateValue) {})
	if ed.ListenerCount() != 1 {
		t.Errorf("ListenerCount() = %d, want 1", ed.ListenerCount())
	}
	sub1.Unsubscribe()
	sub2.Unsubscribe()
	if ed.ListenerCount() != 0 {
		t.Errorf("ListenerCount() = %d after last unsubscribe, want 0", ed.ListenerCount())
	}

	seed(t, ed, "while stopped")
	if got := store.Get(); got.State != ed.EditorState() || got.Editor != ed {
		t.Error("resubscribing did not start from the present snapshot")
	}
}

func TestCanShowPlaceholder(t *testing.T) {
	ed := engine.New()
	store := CanShowPlaceholder(ed)
	var got []bool
	sub := store.Subscribe(func(v bool) { got = append(got, v) })
	defer sub.Unsubscribe()

	key := seed(t, ed, "")
	setText(t, ed, key, "typed")
	selectAt(t, ed, key, 1)
	setText(t, ed, key, "")

	want := []bool{true, false, true}
	if len(got) != len(want) {
		t.Fatalf("values = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("values = %v, want %v", got, want)
			break
		}
	}
}

func TestCanShowPlaceholder_SamplesComposing(t *testing.T) {
	ed := engine.New()
	var para engine.NodeKey
	if err := ed.Update(func(tx *engine.Tx) error {
		p := tx.CreateParagraph()
		tx.Append(engine.RootKey, p.Key)
		para = p.Key
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	store := CanShowPlaceholder(ed)
	var last bool
	sub := store.Subscribe(func(v bool) { last = v })
	defer sub.Unsubscribe()

	// Rewrites the paragraph without changing it, so consecutive snapshots
	// hold identical content.
	touch := func() {
		t.Helper()
		if err := ed.Update(func(tx *engine.Tx) error {
			tx.Writable(para)
			return nil
		}); err != nil {
			t.Fatal(err)
		}
	}

	touch()
	if !last {
		t.Fatal("empty document should allow the placeholder")
	}
	ed.SetComposing(true)
	touch()
	if last {
		t.Error("placeholder allowed while composing")
	}
	ed.SetComposing(false)
	touch()
	if !last {
		t.Error("placeholder not restored after composition ended")
	}
}
