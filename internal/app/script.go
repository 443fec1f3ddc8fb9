package app

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/lexbridge/internal/engine"
)

// Script is a recorded editing session.
//
//	initial: "Shopping"
//	steps:
//	  - type: " list"
//	  - command: INSERT_PARAGRAPH
//	  - advance: 2s
//	  - command: INSERT_UNORDERED_LIST
//	  - type: "milk #42"
//	  - undo: true
//
// Time only moves on advance steps, so edits between two advance steps
// coalesce into one history entry.
type Script struct {
	// Initial is the plain text the document starts with.
	Initial *string `yaml:"initial,omitempty"`
	Steps   []Step  `yaml:"steps"`
}

// Step is one action of a script. Exactly one action field is set.
type Step struct {
	Type    string        `yaml:"type,omitempty"`
	Command string        `yaml:"command,omitempty"`
	Delete  string        `yaml:"delete,omitempty"`
	Select  *Select       `yaml:"select,omitempty"`
	Undo    bool          `yaml:"undo,omitempty"`
	Redo    bool          `yaml:"redo,omitempty"`
	Compose *bool         `yaml:"compose,omitempty"`
	Advance time.Duration `yaml:"advance,omitempty"`
	Dictate string        `yaml:"dictate,omitempty"`

	// Text is the INSERT_TEXT payload of a command step.
	Text string `yaml:"text,omitempty"`
	// Format is the FORMAT_TEXT payload of a command step: bold, italic,
	// underline, strikethrough or code.
	Format string `yaml:"format,omitempty"`
}

// Select places the selection inside a top-level block. Offsets count bytes
// of the block's text, with line breaks counting as one.
type Select struct {
	Block  int `yaml:"block"`
	Offset int `yaml:"offset"`
	Length int `yaml:"length,omitempty"`
}

// Op returns the name of the step's action.
func (s Step) Op() (string, error) {
	var ops []string
	if s.Type != "" {
		ops = append(ops, "type")
	}
	if s.Command != "" {
		ops = append(ops, "command")
	}
	if s.Delete != "" {
		ops = append(ops, "delete")
	}
	if s.Select != nil {
		ops = append(ops, "select")
	}
	if s.Undo {
		ops = append(ops, "undo")
	}
	if s.Redo {
		ops = append(ops, "redo")
	}
	if s.Compose != nil {
		ops = append(ops, "compose")
	}
	if s.Advance != 0 {
		ops = append(ops, "advance")
	}
	if s.Dictate != "" {
		ops = append(ops, "dictate")
	}
	switch len(ops) {
	case 0:
		return "", ErrEmptyStep
	case 1:
		return ops[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousStep, strings.Join(ops, ", "))
	}
}

// ParseScript decodes a YAML script and checks every step.
func ParseScript(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parsing script: %w", err)
	}
	for i, step := range s.Steps {
		op, err := step.Op()
		if err != nil {
			return nil, NewOperationError(op, stepName(i), err)
		}
		if step.Format != "" {
			if _, err := parseFormat(step.Format); err != nil {
				return nil, NewOperationError(op, stepName(i), err)
			}
		}
		if step.Delete != "" && step.Delete != "backward" && step.Delete != "forward" {
			return nil, NewOperationError(op, stepName(i), fmt.Errorf("delete must be backward or forward, got %q", step.Delete))
		}
	}
	return &s, nil
}

// LoadScript reads and parses the script at path.
func LoadScript(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseScript(f)
}

func stepName(i int) string {
	return fmt.Sprintf("step %d", i+1)
}

var formats = map[string]engine.TextFormat{
	"bold":          engine.FormatBold,
	"italic":        engine.FormatItalic,
	"underline":     engine.FormatUnderline,
	"strikethrough": engine.FormatStrikethrough,
	"code":          engine.FormatCode,
}

func parseFormat(name string) (engine.TextFormat, error) {
	f, ok := formats[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return f, nil
}
