package lua

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/lexbridge/internal/engine/text"
	"github.com/dshills/lexbridge/internal/logging"
)

const mentionScript = `
function match(text)
    return string.find(text, "@%w+")
end
`

func TestMatcher_Match(t *testing.T) {
	m, err := NewMatcher("mention", mentionScript)
	if err != nil {
		t.Fatalf("NewMatcher() error = %v", err)
	}
	defer m.Close()

	tests := []struct {
		input string
		want  text.EntityMatch
		ok    bool
	}{
		{"hi @bob!", text.EntityMatch{Start: 3, End: 7, Text: "@bob"}, true},
		{"@a", text.EntityMatch{Start: 0, End: 2, Text: "@a"}, true},
		{"nobody", text.EntityMatch{}, false},
		{"", text.EntityMatch{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok, err := m.Match(tt.input)
			if err != nil {
				t.Fatalf("Match() error = %v", err)
			}
			if ok != tt.ok {
				t.Errorf("Match() ok = %v, want %v", ok, tt.ok)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Match() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMatcher_BadResults(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"single value", `function match(t) return 1 end`},
		{"strings", `function match(t) return "a", "b" end`},
		{"out of range", `function match(t) return 1, 100 end`},
		{"empty", `function match(t) return 2, 1 end`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMatcher(tt.name, tt.source)
			if err != nil {
				t.Fatalf("NewMatcher() error = %v", err)
			}
			defer m.Close()

			if _, _, err := m.Match("hello"); !errors.Is(err, ErrBadResult) {
				t.Errorf("Match() error = %v, want ErrBadResult", err)
			}
		})
	}
}

func TestMatcher_SplitCharacter(t *testing.T) {
	tests := []struct {
		name   string
		source string
		ok     bool
	}{
		{"whole rune", `function match(t) return 2, 3 end`, true},
		{"cuts end", `function match(t) return 2, 2 end`, false},
		{"cuts start", `function match(t) return 3, 4 end`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMatcher(tt.name, tt.source)
			if err != nil {
				t.Fatalf("NewMatcher() error = %v", err)
			}
			defer m.Close()

			_, ok, err := m.Match("h\u00e9llo")
			if tt.ok {
				if err != nil || !ok {
					t.Errorf("Match() = %v, %v, want a match", ok, err)
				}
				return
			}
			if !errors.Is(err, ErrBadResult) {
				t.Errorf("Match() error = %v, want ErrBadResult", err)
			}
		})
	}
}

func TestNewMatcher_Errors(t *testing.T) {
	if _, err := NewMatcher("none", `x = 1`); !errors.Is(err, ErrNoMatchFunc) {
		t.Errorf("NewMatcher(no match) error = %v, want ErrNoMatchFunc", err)
	}
	if _, err := NewMatcher("syntax", `function match(`); err == nil {
		t.Error("NewMatcher(syntax error) error = nil, want error")
	}
}

func TestLoadMatcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mention.lua")
	if err := os.WriteFile(path, []byte(mentionScript), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadMatcher(path)
	if err != nil {
		t.Fatalf("LoadMatcher() error = %v", err)
	}
	defer m.Close()

	if m.Name() != path {
		t.Errorf("Name() = %q, want %q", m.Name(), path)
	}
	if _, ok, _ := m.Match("ping @ann"); !ok {
		t.Error("Match() ok = false, want true")
	}
}

func TestMatcher_Timeout(t *testing.T) {
	m, err := NewMatcher("spin", `function match(t) while true do end end`,
		WithExecutionTimeout(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewMatcher() error = %v", err)
	}
	defer m.Close()

	if _, _, err := m.Match("x"); !errors.Is(err, ErrExecutionTimeout) {
		t.Errorf("Match() error = %v, want ErrExecutionTimeout", err)
	}
}

func TestMatcher_MatchFunc(t *testing.T) {
	m, err := NewMatcher("failing", `function match(t) error("boom") end`)
	if err != nil {
		t.Fatalf("NewMatcher() error = %v", err)
	}
	defer m.Close()

	fn := m.MatchFunc(logging.NewNop())
	if _, ok := fn("anything"); ok {
		t.Error("MatchFunc() ok = true for a failing script, want false")
	}
}

func TestMatcher_Close(t *testing.T) {
	m, err := NewMatcher("mention", mentionScript)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, _, err := m.Match("@x"); !errors.Is(err, ErrStateClosed) {
		t.Errorf("Match() after Close error = %v, want ErrStateClosed", err)
	}
}

func TestSandbox(t *testing.T) {
	s := NewState()
	defer s.Close()

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		if s.HasFunc(name) {
			t.Errorf("%s is available in the sandbox", name)
		}
	}
	if err := s.DoString(`os.exit(1)`); err == nil {
		t.Error("DoString(os.exit) error = nil, want error")
	}
	if err := s.DoString(`x = string.upper("ok") .. math.floor(1.5)`); err != nil {
		t.Errorf("DoString(safe libs) error = %v", err)
	}
}
