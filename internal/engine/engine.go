package engine

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/lexbridge/internal/logging"
)

// UpdateEvent describes one committed transaction.
type UpdateEvent struct {
	State     *State
	PrevState *State

	// DirtyElements maps each touched element to whether it was written
	// directly (true) or only contains a written descendant (false).
	DirtyElements map[NodeKey]bool
	DirtyLeaves   map[NodeKey]bool

	Tags map[string]bool
}

// HasTag reports whether the update carried tag.
func (ev UpdateEvent) HasTag(tag string) bool { return ev.Tags[tag] }

// SelectionOnly reports whether nothing but the selection changed.
func (ev UpdateEvent) SelectionOnly() bool {
	return len(ev.DirtyElements) == 0 && len(ev.DirtyLeaves) == 0
}

// UpdateListener observes committed transactions.
type UpdateListener func(ev UpdateEvent)

// Transform rewrites a dirty node before its transaction commits.
type Transform func(tx *Tx, n *Node)

type listenerEntry struct {
	id uint64
	fn UpdateListener
}

type transformEntry struct {
	id uint64
	fn Transform
}

// Engine is a mutable editing session.
type Engine struct {
	key       string
	namespace string
	reg       *Registry
	logger    *logging.Logger
	now       func() time.Time
	onError   func(error)
	nextKey   atomic.Uint64

	mu         sync.Mutex
	state      *State
	pending    *Tx
	composing  bool
	editable   bool
	seq        uint64
	listeners  []listenerEntry
	commands   map[Command]handlerChain
	transforms map[NodeType][]transformEntry
}

// New creates an engine holding the empty initial state.
func New(opts ...Option) *Engine {
	e := &Engine{
		key:        uuid.NewString(),
		reg:        NewRegistry(),
		logger:     logging.NewNop(),
		now:        time.Now,
		editable:   true,
		commands:   make(map[Command]handlerChain),
		transforms: make(map[NodeType][]transformEntry),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithField("editor", e.key)
	e.state = newEmptyState(e.reg)
	return e
}

func (e *Engine) newKey() NodeKey {
	return NodeKey(strconv.FormatUint(e.nextKey.Add(1), 10))
}

// Key returns the unique key of this session.
func (e *Engine) Key() string { return e.key }

// Namespace returns the configured session name.
func (e *Engine) Namespace() string { return e.namespace }

// Registry returns the node-type registry.
func (e *Engine) Registry() *Registry { return e.reg }

// Logger returns the engine logger.
func (e *Engine) Logger() *logging.Logger { return e.logger }

// Now returns the current time from the engine clock.
func (e *Engine) Now() time.Time { return e.now() }

// HasNodes reports whether every variant is registered.
func (e *Engine) HasNodes(types ...NodeType) bool { return e.reg.Has(types...) }

// EditorState returns the latest committed snapshot.
func (e *Engine) EditorState() *State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// IsComposing reports whether an input-method composition is in progress.
func (e *Engine) IsComposing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.composing
}

// SetComposing sets the composition flag. The flag is not part of any
// snapshot and does not produce an update.
func (e *Engine) SetComposing(composing bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.composing = composing
}

// IsEditable reports whether user input commands may change the document.
func (e *Engine) IsEditable() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.editable
}

// SetEditable toggles editability.
func (e *Engine) SetEditable(editable bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.editable = editable
}

// RegisterUpdateListener adds a listener called after every commit, in
// registration order. The returned function removes it and is safe to call
// more than once.
func (e *Engine) RegisterUpdateListener(fn UpdateListener) func() {
	e.mu.Lock()
	e.seq++
	id := e.seq
	e.listeners = append(e.listeners, listenerEntry{id: id, fn: fn})
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			for i, l := range e.listeners {
				if l.id == id {
					e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// ListenerCount returns the number of registered update listeners.
func (e *Engine) ListenerCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners)
}

// RegisterNodeTransform adds a transform run on every dirty node of type t
// before commit. It fails if t is not registered.
func (e *Engine) RegisterNodeTransform(t NodeType, fn Transform) (func(), error) {
	if !e.reg.Has(t) {
		return nil, fmt.Errorf("register transform for %q: %w", t, ErrNodeNotRegistered)
	}
	e.mu.Lock()
	e.seq++
	id := e.seq
	e.transforms[t] = append(e.transforms[t], transformEntry{id: id, fn: fn})
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			list := e.transforms[t]
			for i, tr := range list {
				if tr.id == id {
					e.transforms[t] = append(list[:i:i], list[i+1:]...)
					break
				}
			}
			if len(e.transforms[t]) == 0 {
				delete(e.transforms, t)
			}
		})
	}, nil
}

// Update runs fn inside a transaction and commits the result.
//
// Called from inside another update function, Update joins the active
// transaction instead. A failing fn, or a failure recorded on the
// transaction, discards all pending changes; the error is reported to the
// error sink and returned.
func (e *Engine) Update(fn func(tx *Tx) error, opts ...UpdateOption) error {
	cfg := applyUpdateOptions(opts)

	e.mu.Lock()
	if tx := e.pending; tx != nil {
		e.mu.Unlock()
		for _, tag := range cfg.tags {
			tx.AddTag(tag)
		}
		if err := fn(tx); err != nil {
			tx.Fail(err)
			return err
		}
		return nil
	}
	tx := newTx(e, e.state)
	e.pending = tx
	e.mu.Unlock()

	for _, tag := range cfg.tags {
		tx.AddTag(tag)
	}
	if err := e.run(tx, fn); err != nil {
		return e.reportError(fmt.Errorf("update: %w", err))
	}
	e.commit(tx)
	return nil
}

// run executes fn and the node transforms, always clearing the pending
// transaction on the way out.
func (e *Engine) run(tx *Tx, fn func(tx *Tx) error) error {
	defer func() {
		e.mu.Lock()
		e.pending = nil
		e.mu.Unlock()
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if tx.err != nil {
		return tx.err
	}
	if err := e.runTransforms(tx); err != nil {
		return err
	}
	return tx.err
}

func (e *Engine) runTransforms(tx *Tx) error {
	done := make(map[NodeKey]int)
	for pass := 0; ; pass++ {
		var pending []*Node
		Walk(tx, RootKey, func(n *Node) bool {
			if tx.writes[n.Key] > done[n.Key] {
				pending = append(pending, n)
			}
			return true
		})
		if len(pending) == 0 {
			return nil
		}
		if pass >= maxTransformPasses {
			return ErrTransformLoop
		}
		for _, n := range pending {
			done[n.Key] = tx.writes[n.Key]
		}
		for _, n := range pending {
			e.mu.Lock()
			fns := append([]transformEntry(nil), e.transforms[n.Type]...)
			e.mu.Unlock()
			for _, tr := range fns {
				cur := tx.nodes[n.Key]
				if cur == nil || cur.Type != n.Type || !IsAttached(tx, n.Key) {
					break
				}
				tr.fn(tx, cur)
				if tx.err != nil {
					return tx.err
				}
			}
		}
	}
}

// commit publishes the transaction as the new state and notifies
// listeners. A transaction that changed neither nodes nor selection is
// dropped silently.
func (e *Engine) commit(tx *Tx) {
	tx.normalizeSelection()

	e.mu.Lock()
	prev := e.state
	if len(tx.dirtyElements) == 0 && len(tx.dirtyLeaves) == 0 && selectionEqual(prev.selection, tx.selection) {
		e.mu.Unlock()
		return
	}
	next := &State{nodes: tx.nodes, selection: tx.selection, reg: e.reg}
	e.state = next
	listeners := append([]listenerEntry(nil), e.listeners...)
	e.mu.Unlock()

	e.notify(UpdateEvent{
		State:         next,
		PrevState:     prev,
		DirtyElements: tx.dirtyElements,
		DirtyLeaves:   tx.dirtyLeaves,
		Tags:          tx.tags,
	}, listeners)
}

func (e *Engine) notify(ev UpdateEvent, listeners []listenerEntry) {
	for _, l := range listeners {
		l.fn(ev)
	}
}

// SetEditorState replaces the current state with a previously committed
// snapshot of this engine. Nodes that differ between the two states are
// reported dirty.
func (e *Engine) SetEditorState(next *State, opts ...UpdateOption) error {
	if next == nil {
		return fmt.Errorf("set editor state: nil state")
	}
	if next.reg != e.reg {
		return fmt.Errorf("set editor state: state belongs to another engine")
	}
	cfg := applyUpdateOptions(opts)

	e.mu.Lock()
	if e.pending != nil {
		e.mu.Unlock()
		return ErrUpdateInProgress
	}
	prev := e.state
	if prev == next {
		e.mu.Unlock()
		return nil
	}
	e.state = next
	listeners := append([]listenerEntry(nil), e.listeners...)
	e.mu.Unlock()

	ev := UpdateEvent{
		State:         next,
		PrevState:     prev,
		DirtyElements: make(map[NodeKey]bool),
		DirtyLeaves:   make(map[NodeKey]bool),
		Tags:          make(map[string]bool),
	}
	for _, tag := range cfg.tags {
		ev.Tags[tag] = true
	}
	mark := func(n *Node) {
		if n.Kind == KindElement {
			ev.DirtyElements[n.Key] = true
		} else {
			ev.DirtyLeaves[n.Key] = true
		}
	}
	for k, n := range next.nodes {
		if prev.nodes[k] != n {
			mark(n)
		}
	}
	for k, n := range prev.nodes {
		if _, ok := next.nodes[k]; !ok {
			mark(n)
		}
	}
	e.notify(ev, listeners)
	return nil
}

func (e *Engine) reportError(err error) error {
	e.logger.Error("update failed", "error", err)
	if e.onError != nil {
		e.onError(err)
	}
	return err
}

func selectionEqual(a, b *Selection) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// DirtyKeys returns the keys of a dirty set in sorted order.
func DirtyKeys[V any](set map[NodeKey]V) []NodeKey {
	keys := make([]NodeKey, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// MergeRegister combines unregister functions into one that calls each of
// them once, last registered first.
func MergeRegister(fns ...func()) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			for i := len(fns) - 1; i >= 0; i-- {
				if fns[i] != nil {
					fns[i]()
				}
			}
		})
	}
}
