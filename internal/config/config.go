package config

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Editing modes.
const (
	ModeRich  = "rich"
	ModePlain = "plain"
)

// NodeList enables the list and listitem nodes.
const NodeList = "list"

// DefaultHistoryDelay is the coalescing window used when none is configured.
const DefaultHistoryDelay = time.Second

var builtinNodes = map[string]bool{
	"root":      true,
	"paragraph": true,
	"text":      true,
	"linebreak": true,
	"list":      true,
	"listitem":  true,
}

// Config holds the settings a composer is built from.
type Config struct {
	Namespace   string   `toml:"namespace"`
	ReadOnly    bool     `toml:"readOnly"`
	Mode        string   `toml:"mode"`
	Placeholder string   `toml:"placeholder"`
	Nodes       []string `toml:"nodes"`
	Entities    []Entity `toml:"entities"`
	History     History  `toml:"history"`
	Logging     Logging  `toml:"logging"`
}

// Entity declares a text entity variant and how to recognize it. Exactly
// one of Pattern and Script is set.
type Entity struct {
	Name string `toml:"name"`
	// Pattern is a regular expression; the first match becomes the entity.
	Pattern string `toml:"pattern"`
	// Script is a Lua file defining match(text).
	Script string `toml:"script"`
}

// History configures undo coalescing.
type History struct {
	Delay      Duration `toml:"delay"`
	MaxEntries int      `toml:"maxEntries"`
}

// Logging configures the composer logger.
type Logging struct {
	Level string `toml:"level"`
}

// Duration is a time.Duration written as a string such as "750ms".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the default configuration: a rich text composer with
// lists enabled.
func Default() Config {
	return Config{
		Namespace: "lexbridge",
		Mode:      ModeRich,
		Nodes:     []string{NodeList},
		History:   History{Delay: Duration{DefaultHistoryDelay}},
		Logging:   Logging{Level: "info"},
	}
}

// HasNode reports whether the optional node set name is enabled.
func (c Config) HasNode(name string) bool {
	for _, n := range c.Nodes {
		if n == name {
			return true
		}
	}
	return false
}

// Validate checks every setting and reports all problems at once. Each
// problem is a *ValidationError.
func (c Config) Validate() error {
	var errs []error
	fail := func(path, format string, args ...any) {
		errs = append(errs, &ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if c.Namespace == "" {
		fail("namespace", "must not be empty")
	}
	if c.Mode != ModeRich && c.Mode != ModePlain {
		fail("mode", "unknown mode %q", c.Mode)
	}
	for i, n := range c.Nodes {
		if n != NodeList {
			fail(fmt.Sprintf("nodes[%d]", i), "unknown node set %q", n)
		}
	}
	if c.History.Delay.Duration <= 0 {
		fail("history.delay", "must be positive")
	}
	if c.History.MaxEntries < 0 {
		fail("history.maxEntries", "must not be negative")
	}

	seen := make(map[string]bool)
	for i, e := range c.Entities {
		path := fmt.Sprintf("entities[%d]", i)
		switch {
		case e.Name == "":
			fail(path+".name", "must not be empty")
		case builtinNodes[e.Name]:
			fail(path+".name", "%q is a built-in node", e.Name)
		case seen[e.Name]:
			fail(path+".name", "duplicate entity %q", e.Name)
		}
		seen[e.Name] = true

		if (e.Pattern == "") == (e.Script == "") {
			fail(path, "exactly one of pattern and script must be set")
			continue
		}
		if e.Pattern != "" {
			if _, err := regexp.Compile(e.Pattern); err != nil {
				fail(path+".pattern", "%v", err)
			}
		}
	}

	return errors.Join(errs...)
}
