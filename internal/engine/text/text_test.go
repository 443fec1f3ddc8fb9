package text

import (
	"errors"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/lexbridge/internal/engine"
)

const nodeHashtag engine.NodeType = "hashtag"

var hashtag = regexp.MustCompile(`#\d+`)

type run struct {
	Type engine.NodeType
	Text string
}

func runs(ed *engine.Engine) []run {
	var out []run
	st := ed.EditorState()
	for _, p := range engine.Children(st, engine.RootKey) {
		for _, c := range engine.Children(st, p.Key) {
			out = append(out, run{Type: c.Type, Text: c.Text})
		}
	}
	return out
}

func newEntityEditor(t *testing.T) (*engine.Engine, engine.NodeKey) {
	t.Helper()
	ed := engine.New(engine.WithNodes(engine.NodeSpec{Type: nodeHashtag, Kind: engine.KindText, Inline: true}))
	unregister, err := RegisterTextEntity(ed, RegexpMatcher(hashtag), nodeHashtag, CreateAs(nodeHashtag))
	if err != nil {
		t.Fatalf("RegisterTextEntity: %v", err)
	}
	t.Cleanup(func() {
		for _, fn := range unregister {
			fn()
		}
	})

	var leaf engine.NodeKey
	err = ed.Update(func(tx *engine.Tx) error {
		p := tx.CreateParagraph()
		tn := tx.CreateText(engine.NodeText, "")
		tx.Append(p.Key, tn.Key)
		tx.Append(engine.RootKey, p.Key)
		leaf = tn.Key
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return ed, leaf
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

func TestRegisterTextEntity_Splits(t *testing.T) {
	ed, leaf := newEntityEditor(t)
	setText(t, ed, leaf, "see #123 now")

	want := []run{
		{Type: engine.NodeText, Text: "see "},
		{Type: nodeHashtag, Text: "#123"},
		{Type: engine.NodeText, Text: " now"},
	}
	if diff := cmp.Diff(want, runs(ed)); diff != "" {
		t.Errorf("runs mismatch (-want +got):\n%s", diff)
	}
}

func TestRegisterTextEntity_MultipleMatches(t *testing.T) {
	ed, leaf := newEntityEditor(t)
	setText(t, ed, leaf, "#1 and #22")

	want := []run{
		{Type: nodeHashtag, Text: "#1"},
		{Type: engine.NodeText, Text: " and "},
		{Type: nodeHashtag, Text: "#22"},
	}
	if diff := cmp.Diff(want, runs(ed)); diff != "" {
		t.Errorf("runs mismatch (-want +got):\n%s", diff)
	}
}

func TestRegisterTextEntity_Reverse(t *testing.T) {
	ed, leaf := newEntityEditor(t)
	setText(t, ed, leaf, "#7")

	var entity engine.NodeKey
	st := ed.EditorState()
	for _, p := range engine.Children(st, engine.RootKey) {
		for _, c := range engine.Children(st, p.Key) {
			if c.Type == nodeHashtag {
				entity = c.Key
			}
		}
	}
	if entity == "" {
		t.Fatalf("no entity in %v", runs(ed))
	}

	setText(t, ed, entity, "#7x")
	want := []run{
		{Type: nodeHashtag, Text: "#7"},
		{Type: engine.NodeText, Text: "x"},
	}
	if diff := cmp.Diff(want, runs(ed)); diff != "" {
		t.Errorf("partial match (-want +got):\n%s", diff)
	}

	setText(t, ed, entity, "plain")
	got := runs(ed)
	for _, r := range got {
		if r.Type == nodeHashtag {
			t.Errorf("entity survived losing its match: %v", got)
		}
	}
}

func TestRegisterTextEntity_Errors(t *testing.T) {
	ed := engine.New()
	if _, err := RegisterTextEntity(ed, RegexpMatcher(hashtag), nodeHashtag, CreateAs(nodeHashtag)); !errors.Is(err, engine.ErrNodeNotRegistered) {
		t.Errorf("unregistered target: err = %v, want ErrNodeNotRegistered", err)
	}
	if _, err := RegisterTextEntity(ed, RegexpMatcher(hashtag), engine.NodeParagraph, CreateAs(engine.NodeParagraph)); !errors.Is(err, engine.ErrNotText) {
		t.Errorf("element target: err = %v, want ErrNotText", err)
	}
}

func TestCanShowPlaceholder(t *testing.T) {
	tests := []struct {
		name      string
		build     func(tx *engine.Tx)
		composing bool
		editable  bool
		want      bool
	}{
		{
			name:     "empty document",
			build:    func(tx *engine.Tx) {},
			editable: true,
			want:     true,
		},
		{
			name: "empty paragraph",
			build: func(tx *engine.Tx) {
				p := tx.CreateParagraph()
				tx.Append(engine.RootKey, p.Key)
			},
			editable: true,
			want:     true,
		},
		{
			name: "text present",
			build: func(tx *engine.Tx) {
				p := tx.CreateParagraph()
				tx.Append(p.Key, tx.CreateText(engine.NodeText, "hi").Key)
				tx.Append(engine.RootKey, p.Key)
			},
			editable: true,
		},
		{
			name: "composing",
			build: func(tx *engine.Tx) {
				p := tx.CreateParagraph()
				tx.Append(engine.RootKey, p.Key)
			},
			composing: true,
			editable:  true,
		},
		{
			name: "read only",
			build: func(tx *engine.Tx) {
				p := tx.CreateParagraph()
				tx.Append(engine.RootKey, p.Key)
			},
		},
		{
			name: "two paragraphs",
			build: func(tx *engine.Tx) {
				tx.Append(engine.RootKey, tx.CreateParagraph().Key)
				tx.Append(engine.RootKey, tx.CreateParagraph().Key)
			},
			editable: true,
		},
		{
			name: "indented",
			build: func(tx *engine.Tx) {
				p := tx.CreateParagraph()
				p.Indent = 1
				tx.Append(engine.RootKey, p.Key)
			},
			editable: true,
		},
		{
			name: "line break only",
			build: func(tx *engine.Tx) {
				p := tx.CreateParagraph()
				tx.Append(p.Key, tx.Create(engine.NodeLineBreak).Key)
				tx.Append(engine.RootKey, p.Key)
			},
			editable: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed := engine.New()
			if err := ed.Update(func(tx *engine.Tx) error {
				tt.build(tx)
				tx.SetSelection(engine.Collapsed(engine.ElementPoint(engine.RootKey, 0)))
				return nil
			}); err != nil {
				t.Fatal(err)
			}
			var got bool
			ed.EditorState().Read(func(v engine.View) {
				got = CanShowPlaceholder(v, tt.composing, tt.editable)
			})
			if got != tt.want {
				t.Errorf("CanShowPlaceholder = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRootTextContentEmpty(t *testing.T) {
	ed := engine.New()
	if err := ed.Update(func(tx *engine.Tx) error {
		p := tx.CreateParagraph()
		tx.Append(p.Key, tx.CreateText(engine.NodeText, "  ").Key)
		tx.Append(engine.RootKey, p.Key)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	st := ed.EditorState()
	if engine.Query(st, func(v engine.View) bool { return IsRootTextContentEmpty(v, false, false) }) {
		t.Error("whitespace should count as content without trim")
	}
	if !engine.Query(st, func(v engine.View) bool { return IsRootTextContentEmpty(v, false, true) }) {
		t.Error("whitespace should be empty with trim")
	}
	if engine.Query(st, CanShowPlaceholderCurry(false)) {
		t.Error("whitespace paragraph should not show a placeholder")
	}
}
