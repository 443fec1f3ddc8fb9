package app

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/dshills/lexbridge/internal/bind"
	"github.com/dshills/lexbridge/internal/config"
	"github.com/dshills/lexbridge/internal/engine"
	"github.com/dshills/lexbridge/internal/engine/history"
	"github.com/dshills/lexbridge/internal/engine/text"
	"github.com/dshills/lexbridge/internal/logging"
	"github.com/dshills/lexbridge/internal/plugin/lua"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file. Empty uses the
	// defaults.
	ConfigPath string

	// LogLevel overrides the configured log level when set.
	LogLevel string

	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer
}

// Application runs scripts against composers built from one configuration.
type Application struct {
	cfg     config.Config
	logger  *logging.Logger
	baseDir string
}

// New loads the configuration and prepares the logger.
func New(opts Options) (*Application, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, NewComponentError("config", err)
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	out := opts.LogOutput
	if out == nil {
		out = os.Stderr
	}
	logger := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Logging.Level),
		Output: out,
		Prefix: "lexbridge",
	})

	baseDir := "."
	if opts.ConfigPath != "" {
		baseDir = filepath.Dir(opts.ConfigPath)
	}
	return &Application{cfg: cfg, logger: logger, baseDir: baseDir}, nil
}

// Config returns the loaded configuration.
func (a *Application) Config() config.Config { return a.cfg }

// clock is the session time source. It only moves when advanced.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// session is one mounted composer with every binder the configuration
// enables.
type session struct {
	logger   *logging.Logger
	clock    *clock
	composer *bind.Component
	ed       *engine.Engine
	history  *history.State
	matchers []*lua.Matcher
	subs     []*bind.Subscription

	canUndo     bool
	canRedo     bool
	placeholder bool
	changes     int

	// placeholderText is shown while placeholder is true.
	placeholderText string
}

func (a *Application) newSession(initial any) (*session, error) {
	s := &session{
		logger:          a.logger,
		clock:           &clock{now: time.Unix(0, 0).UTC()},
		placeholderText: a.cfg.Placeholder,
	}

	c, ed, err := bind.NewComposer(a.cfg, a.logger, engine.WithClock(s.clock.Now))
	if err != nil {
		return nil, NewComponentError("composer", err)
	}
	s.composer, s.ed = c, ed

	if a.cfg.Mode == config.ModePlain {
		bind.SetupPlainText(c, ed, initial)
	} else {
		bind.SetupRichText(c, ed, initial)
	}

	s.history = history.NewState()
	s.history.SetMaxEntries(a.cfg.History.MaxEntries)
	bind.SetupHistory(c, ed, func() *history.State { return s.history }, a.cfg.History.Delay.Duration)

	if a.cfg.HasNode(config.NodeList) {
		bind.SetupList(c, ed)
	}

	for _, e := range a.cfg.Entities {
		match, err := a.matcher(s, e)
		if err != nil {
			s.close()
			return nil, NewComponentError("entity "+e.Name, err)
		}
		child := bind.NewComponent("entity:"+e.Name, c)
		target := engine.NodeType(e.Name)
		if err := bind.SetupTextEntity(child, match, target, text.CreateAs(target)); err != nil {
			s.close()
			return nil, NewComponentError("entity "+e.Name, err)
		}
	}

	bind.AutoFocus(c, ed)
	bind.OnChange(c, ed, func(engine.UpdateEvent) { s.changes++ })

	if err := c.Mount(); err != nil {
		s.close()
		return nil, NewComponentError("mount", err)
	}

	s.subs = append(s.subs,
		bind.CanShowPlaceholder(ed).Subscribe(func(v bool) { s.placeholder = v }),
		bind.CanUndo(ed).Subscribe(func(v bool) { s.canUndo = v }),
		bind.CanRedo(ed).Subscribe(func(v bool) { s.canRedo = v }),
	)
	return s, nil
}

// matcher returns the recognizer for e: a regular expression, or a Lua
// script resolved against the configuration directory.
func (a *Application) matcher(s *session, e config.Entity) (text.MatchFunc, error) {
	if e.Pattern != "" {
		re, err := regexp.Compile(e.Pattern)
		if err != nil {
			return nil, err
		}
		return text.RegexpMatcher(re), nil
	}
	path := e.Script
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.baseDir, path)
	}
	m, err := lua.LoadMatcher(path)
	if err != nil {
		return nil, err
	}
	s.matchers = append(s.matchers, m)
	return m.MatchFunc(s.logger.WithField("entity", e.Name)), nil
}

func (s *session) close() error {
	for _, sub := range s.subs {
		sub.Unsubscribe()
	}
	if s.composer != nil {
		s.composer.Destroy()
	}
	var errs []error
	for _, m := range s.matchers {
		errs = append(errs, m.Close())
	}
	return errors.Join(errs...)
}
