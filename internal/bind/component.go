package bind

import (
	"errors"

	"github.com/dshills/lexbridge/internal/logging"
)

// ErrDestroyed is returned when mounting a destroyed component.
var ErrDestroyed = errors.New("component destroyed")

// MountFunc runs when a component mounts. The returned cleanup, which may
// be nil, runs when the component is destroyed.
type MountFunc func() (cleanup func(), err error)

// Component is a lifecycle scope for binders. Binders queue their work with
// OnMount, AfterUpdate and OnDestroy; the owner drives the lifecycle with
// Mount, Update and Destroy.
//
// Children mount and update before their parent and are destroyed with it.
// Context values set on a component are visible to its descendants.
type Component struct {
	name     string
	parent   *Component
	children []*Component
	logger   *logging.Logger

	context      map[any]any
	mounts       []MountFunc
	afterUpdates []func()
	destroys     []func()
	cleanups     []func()

	mounted   bool
	destroyed bool
}

// NewComponent creates a component below parent, which may be nil.
func NewComponent(name string, parent *Component) *Component {
	c := &Component{
		name:    name,
		parent:  parent,
		context: make(map[any]any),
		logger:  logging.NewNop(),
	}
	if parent != nil {
		parent.children = append(parent.children, c)
		c.logger = parent.logger
	}
	return c
}

// Name returns the component name.
func (c *Component) Name() string { return c.name }

// Parent returns the enclosing component, or nil.
func (c *Component) Parent() *Component { return c.parent }

// SetLogger sets the logger used for lifecycle messages.
func (c *Component) SetLogger(l *logging.Logger) {
	if l != nil {
		c.logger = l
	}
}

// Logger returns the component logger.
func (c *Component) Logger() *logging.Logger { return c.logger }

// SetContext stores a value visible to c and its descendants.
func (c *Component) SetContext(key, value any) {
	c.context[key] = value
}

// Context looks key up on c and then on its ancestors.
func (c *Component) Context(key any) (any, bool) {
	for cur := c; cur != nil; cur = cur.parent {
		if v, ok := cur.context[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// OnMount queues fn to run at mount.
func (c *Component) OnMount(fn MountFunc) {
	c.mounts = append(c.mounts, fn)
}

// AfterUpdate queues fn to run after mount and after every update.
func (c *Component) AfterUpdate(fn func()) {
	c.afterUpdates = append(c.afterUpdates, fn)
}

// OnDestroy queues fn to run at destroy.
func (c *Component) OnDestroy(fn func()) {
	c.destroys = append(c.destroys, fn)
}

// Mounted reports whether the component is mounted.
func (c *Component) Mounted() bool { return c.mounted }

// Mount mounts the children, runs the mount functions in order and then the
// after-update functions. If anything fails, everything acquired so far is
// released and the error is returned.
func (c *Component) Mount() error {
	if c.destroyed {
		return ErrDestroyed
	}
	if c.mounted {
		return nil
	}
	for i, child := range c.children {
		if err := child.Mount(); err != nil {
			c.destroyChildren(i)
			return err
		}
	}
	for _, fn := range c.mounts {
		cleanup, err := fn()
		if err != nil {
			c.release()
			c.destroyChildren(len(c.children))
			c.logger.Debug("mount failed", "component", c.name, "error", err)
			return err
		}
		if cleanup != nil {
			c.cleanups = append(c.cleanups, cleanup)
		}
	}
	c.mounted = true
	c.logger.Debug("mounted", "component", c.name)
	c.runAfterUpdate()
	return nil
}

// destroyChildren destroys the first n children, last first.
func (c *Component) destroyChildren(n int) {
	for i := n - 1; i >= 0; i-- {
		c.children[i].Destroy()
	}
}

// Update runs the after-update functions of the children and then of c,
// as after a render tick.
func (c *Component) Update() {
	if !c.mounted {
		return
	}
	for _, child := range c.children {
		child.Update()
	}
	c.runAfterUpdate()
}

func (c *Component) runAfterUpdate() {
	for _, fn := range c.afterUpdates {
		fn()
	}
}

// Destroy destroys the children in reverse mount order, runs the mount
// cleanups in reverse and then the destroy functions. Calling it more than
// once is safe.
func (c *Component) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyChildren(len(c.children))
	wasMounted := c.mounted
	c.release()
	c.destroyed = true
	c.mounted = false
	if wasMounted {
		for _, fn := range c.destroys {
			fn()
		}
	}
	c.logger.Debug("destroyed", "component", c.name)
}

func (c *Component) release() {
	for i := len(c.cleanups) - 1; i >= 0; i-- {
		c.cleanups[i]()
	}
	c.cleanups = nil
}
