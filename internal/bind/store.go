package bind

import (
	"sync"
)

// Subscriber receives store values.
type Subscriber[T any] func(value T)

// StartFunc runs when a store gains its first subscriber. It may publish
// through set and returns the function run when the last subscriber leaves.
type StartFunc[T any] func(set func(T)) (stop func())

// Subscription is an active store subscription.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Unsubscribe ends the subscription. Calling it more than once is safe.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(s.cancel)
}

type subscriber[T any] struct {
	id uint64
	fn Subscriber[T]
}

// Readable is a subscribable value. A subscriber is called with the current
// value when it subscribes and with every published value after that.
//
// The start function runs on the first subscription and its stop function
// on the last unsubscription, so resources behind a store are held only
// while someone is listening.
type Readable[T any] struct {
	mu      sync.Mutex
	value   T
	equal   func(a, b T) bool
	start   StartFunc[T]
	stop    func()
	started bool
	subs    []subscriber[T]
	nextID  uint64
	pending []T
	sending bool
}

// StoreOption configures a store.
type StoreOption[T any] func(*Readable[T])

// WithEqual makes the store drop published values equal to the current one.
func WithEqual[T any](equal func(a, b T) bool) StoreOption[T] {
	return func(r *Readable[T]) {
		r.equal = equal
	}
}

// Comparable reports equality with ==, for use with WithEqual.
func Comparable[T comparable](a, b T) bool {
	return a == b
}

// NewReadable creates a store holding initial. start may be nil.
func NewReadable[T any](initial T, start StartFunc[T], opts ...StoreOption[T]) *Readable[T] {
	r := &Readable[T]{value: initial, start: start}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Subscribe registers fn and calls it with the current value.
func (r *Readable[T]) Subscribe(fn Subscriber[T]) *Subscription {
	r.mu.Lock()
	startNow := !r.started && r.start != nil
	r.started = true
	r.mu.Unlock()

	if startNow {
		stop := r.start(r.set)
		r.mu.Lock()
		r.stop = stop
		r.mu.Unlock()
	}

	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.subs = append(r.subs, subscriber[T]{id: id, fn: fn})
	value := r.value
	r.mu.Unlock()
	fn(value)

	return &Subscription{cancel: func() { r.unsubscribe(id) }}
}

func (r *Readable[T]) unsubscribe(id uint64) {
	r.mu.Lock()
	for i, s := range r.subs {
		if s.id == id {
			r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
			break
		}
	}
	var stop func()
	if len(r.subs) == 0 {
		stop, r.stop = r.stop, nil
		r.started = false
	}
	r.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// Get returns the current value. A store without subscribers is started
// and stopped around the read so the value is fresh.
func (r *Readable[T]) Get() T {
	var value T
	r.Subscribe(func(v T) { value = v }).Unsubscribe()
	return value
}

// Subscribers returns the number of active subscriptions.
func (r *Readable[T]) Subscribers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// set publishes value. Values published while subscribers are being
// notified are queued so every subscriber sees them in order.
func (r *Readable[T]) set(value T) {
	r.mu.Lock()
	if r.sending {
		r.pending = append(r.pending, value)
		r.mu.Unlock()
		return
	}
	r.sending = true
	for {
		if r.equal == nil || !r.equal(r.value, value) {
			r.value = value
			subs := append([]subscriber[T](nil), r.subs...)
			r.mu.Unlock()
			for _, s := range subs {
				s.fn(value)
			}
			r.mu.Lock()
		}
		next, ok := r.next()
		if !ok {
			r.mu.Unlock()
			return
		}
		value = next
	}
}

// next pops the next queued value, or clears the sending flag.
// r.mu must be held.
func (r *Readable[T]) next() (T, bool) {
	if len(r.pending) == 0 {
		r.sending = false
		var zero T
		return zero, false
	}
	v := r.pending[0]
	r.pending = r.pending[1:]
	return v, true
}

// Writable is a store whose value can be set from outside.
type Writable[T any] struct {
	*Readable[T]
}

// NewWritable creates a writable store holding initial.
func NewWritable[T any](initial T, start StartFunc[T], opts ...StoreOption[T]) *Writable[T] {
	return &Writable[T]{Readable: NewReadable(initial, start, opts...)}
}

// Set publishes value.
func (w *Writable[T]) Set(value T) {
	w.set(value)
}

// Update publishes fn applied to the current value.
func (w *Writable[T]) Update(fn func(T) T) {
	w.mu.Lock()
	value := w.value
	w.mu.Unlock()
	w.set(fn(value))
}

// Derived returns a store computing fn over every value of src. The source
// is subscribed only while the derived store has subscribers; until then it
// holds initial.
func Derived[S, T any](src *Readable[S], fn func(S) T, initial T, opts ...StoreOption[T]) *Readable[T] {
	return NewReadable(initial, func(set func(T)) func() {
		sub := src.Subscribe(func(v S) {
			set(fn(v))
		})
		return sub.Unsubscribe
	}, opts...)
}
