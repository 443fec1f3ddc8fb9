package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LEXBRIDGE_"

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return Config{}, fmt.Errorf("%s: %w", path, ErrFileNotFound)
			}
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := decode(path, bytes.NewReader(data), &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse reads TOML from r over the defaults. It neither applies
// environment overrides nor validates.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	if err := decode("<reader>", r, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(source string, r io.Reader, cfg *Config) error {
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return perr
	}
	return nil
}

// envSetters maps each override, without EnvPrefix, to the setting it
// replaces.
var envSetters = map[string]func(c *Config, v string) error{
	"NAMESPACE": func(c *Config, v string) error {
		c.Namespace = v
		return nil
	},
	"READ_ONLY": func(c *Config, v string) error {
		b, err := parseBool(v)
		c.ReadOnly = b
		return err
	},
	"MODE": func(c *Config, v string) error {
		c.Mode = strings.ToLower(v)
		return nil
	},
	"PLACEHOLDER": func(c *Config, v string) error {
		c.Placeholder = v
		return nil
	},
	"NODES": func(c *Config, v string) error {
		c.Nodes = nil
		for _, n := range strings.Split(v, ",") {
			if n = strings.TrimSpace(n); n != "" {
				c.Nodes = append(c.Nodes, n)
			}
		}
		return nil
	},
	"HISTORY_DELAY": func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		c.History.Delay = Duration{d}
		return err
	},
	"HISTORY_MAX_ENTRIES": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		c.History.MaxEntries = n
		return err
	},
	"LOG_LEVEL": func(c *Config, v string) error {
		c.Logging.Level = v
		return nil
	},
}

// ApplyEnv overrides cfg from the variables lookup reports. Pass
// os.LookupEnv for the process environment.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for name, set := range envSetters {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		if err := set(cfg, v); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
	}
	return nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0", "":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}
