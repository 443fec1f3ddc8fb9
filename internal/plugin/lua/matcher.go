package lua

import (
	"fmt"
	"unicode/utf8"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/lexbridge/internal/engine/text"
	"github.com/dshills/lexbridge/internal/logging"
)

const matchFunc = "match"

// Matcher finds entities by calling a script's match function.
type Matcher struct {
	name  string
	state *State
}

// LoadMatcher runs the script at path and returns a matcher for its match
// function.
func LoadMatcher(path string, opts ...StateOption) (*Matcher, error) {
	return newMatcher(path, func(s *State) error { return s.DoFile(path) }, opts)
}

// NewMatcher runs source and returns a matcher for its match function. name
// identifies the matcher in errors.
func NewMatcher(name, source string, opts ...StateOption) (*Matcher, error) {
	return newMatcher(name, func(s *State) error { return s.DoString(source) }, opts)
}

func newMatcher(name string, load func(*State) error, opts []StateOption) (*Matcher, error) {
	s := NewState(opts...)
	if err := load(s); err != nil {
		s.Close()
		return nil, fmt.Errorf("loading matcher %s: %w", name, err)
	}
	if !s.HasFunc(matchFunc) {
		s.Close()
		return nil, fmt.Errorf("loading matcher %s: %w", name, ErrNoMatchFunc)
	}
	return &Matcher{name: name, state: s}, nil
}

// Name returns the script path or name.
func (m *Matcher) Name() string { return m.name }

// Match calls match(s). The returned bounds are byte offsets into s.
func (m *Matcher) Match(s string) (text.EntityMatch, bool, error) {
	results, err := m.state.Call(matchFunc, lua.LString(s))
	if err != nil {
		return text.EntityMatch{}, false, fmt.Errorf("matcher %s: %w", m.name, err)
	}
	if len(results) == 0 || results[0] == lua.LNil {
		return text.EntityMatch{}, false, nil
	}
	if len(results) < 2 {
		return text.EntityMatch{}, false, fmt.Errorf("matcher %s: %w: want start and end", m.name, ErrBadResult)
	}

	start, ok1 := results[0].(lua.LNumber)
	end, ok2 := results[1].(lua.LNumber)
	if !ok1 || !ok2 {
		return text.EntityMatch{}, false, fmt.Errorf("matcher %s: %w: got %s, %s",
			m.name, ErrBadResult, results[0].Type(), results[1].Type())
	}
	lo, hi := int(start)-1, int(end)
	if lo < 0 || hi <= lo || hi > len(s) {
		return text.EntityMatch{}, false, fmt.Errorf("matcher %s: %w: [%d, %d] in %d bytes",
			m.name, ErrBadResult, int(start), int(end), len(s))
	}
	if !utf8.RuneStart(s[lo]) || (hi < len(s) && !utf8.RuneStart(s[hi])) {
		return text.EntityMatch{}, false, fmt.Errorf("matcher %s: %w: [%d, %d] splits a character",
			m.name, ErrBadResult, int(start), int(end))
	}
	return text.EntityMatch{Start: lo, End: hi, Text: s[lo:hi]}, true, nil
}

// MatchFunc adapts m for text.RegisterTextEntity. Script errors are logged
// and treated as no match.
func (m *Matcher) MatchFunc(log *logging.Logger) text.MatchFunc {
	return func(s string) (text.EntityMatch, bool) {
		match, ok, err := m.Match(s)
		if err != nil {
			log.Warn("entity matcher failed", "matcher", m.name, "error", err)
			return text.EntityMatch{}, false
		}
		return match, ok
	}
}

// Close releases the script state.
func (m *Matcher) Close() error {
	return m.state.Close()
}
