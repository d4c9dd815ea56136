package condsync

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// CondSync guards a value of type T with a mutex and pairs it with a condition
// variable, so that goroutines can wait until the value satisfies a predicate
// and be woken when other goroutines change it.
//
// Notifications carry a kind of type K, chosen by the caller, which lets one
// CondSync serve several logically distinct "something changed" events. See
// WaitForKind.
//
// A *CondSync is the handle that goroutines share: all copies of the pointer
// observe the same value. Clone exists for readability where a handle is
// handed to another goroutine.
//
// The zero CondSync is ready to use and holds the zero value of T. A CondSync
// must not be copied after first use.
type CondSync[K comparable, T any] struct {
	// Makes the zero-value CondSync ready to use.
	initOnce sync.Once

	mu    sync.Mutex
	cond  sync.Cond
	value T

	// The fields below are guarded by mu.
	closed bool
	poison *PoisonError
	// tail is the pending notice that the next notification stamps. Kind
	// waiters hold on to the tail they saw when they started waiting, and walk
	// the chain from there after each wake-up.
	tail    *notice[K]
	waiters int

	logger *slog.Logger
}

// A notice is one link in the chain of notifications. Its kind is valid only
// once next is set.
type notice[K comparable] struct {
	kind K
	next *notice[K]
}

// New returns a CondSync that guards the given initial value.
func New[K comparable, T any](value T, opts ...Option) *CondSync[K, T] {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	c := &CondSync[K, T]{value: value}
	if cfg.logger != nil {
		name := cfg.name
		if name == "" {
			name = uuid.NewString()
		}
		c.logger = cfg.logger.With(slog.String("condsync", name))
	}
	c.init()
	return c
}

// init ensures that the CondSync is ready to use. It is safe to call init
// multiple times.
func (c *CondSync[K, T]) init() {
	c.initOnce.Do(func() {
		c.cond.L = &c.mu
		c.tail = new(notice[K])
		if c.logger == nil {
			c.logger = slog.New(slog.DiscardHandler)
		}
	})
}

// Clone returns a handle to the same shared value. It does not copy the value.
func (c *CondSync[K, T]) Clone() *CondSync[K, T] {
	return c
}

// Read calls f with the current value while holding the lock. It does not
// notify waiters.
//
// The value is passed by copy, but a T that holds pointers, slices or maps
// still shares their contents; f must not modify them.
func (c *CondSync[K, T]) Read(f func(v T)) error {
	return c.locked(func() error {
		if c.poison != nil {
			return c.poison
		}
		f(c.value)
		return nil
	})
}

// Get calls f with the current value of c while holding the lock, and returns
// the result of f.
func Get[R any, K comparable, T any](c *CondSync[K, T], f func(v T) R) (R, error) {
	var r R
	err := c.Read(func(v T) {
		r = f(v)
	})
	return r, err
}

// Load returns a copy of the current value.
func (c *CondSync[K, T]) Load() (T, error) {
	return Get(c, func(v T) T { return v })
}

// Write replaces the value without notifying waiters.
func (c *CondSync[K, T]) Write(v T) error {
	return c.Modify(func(p *T) { *p = v })
}

// Modify calls f with a pointer to the value while holding the lock. It does
// not notify waiters; use ModifyAndNotify for changes that others wait on.
//
// The pointer must not be retained after f returns.
func (c *CondSync[K, T]) Modify(f func(p *T)) error {
	return c.locked(func() error {
		if c.poison != nil {
			return c.poison
		}
		f(&c.value)
		return nil
	})
}

// ModifyAndNotify calls f with a pointer to the value while holding the lock,
// and then wakes all goroutines blocked in any wait operation, tagging the
// notification with kind. A nil f only notifies.
//
// The only error is a *PoisonError, in which case f is not called and nobody
// is notified.
func (c *CondSync[K, T]) ModifyAndNotify(f func(p *T), kind K) error {
	return c.locked(func() error {
		if c.poison != nil {
			return c.poison
		}
		if f != nil {
			f(&c.value)
		}
		c.notifyLocked(kind)
		return nil
	})
}

// Notify wakes all waiting goroutines with a notification of the given kind,
// without changing the value.
func (c *CondSync[K, T]) Notify(kind K) error {
	return c.ModifyAndNotify(nil, kind)
}

// WaitUntil blocks until cond, called with the current value, returns true.
// The condition is evaluated while holding the lock: once when WaitUntil is
// called and again after every notification.
//
// WaitUntil returns ErrClosed if c is closed before the condition holds. A
// waiter woken by Close evaluates its condition one last time first, so a
// change that was notified right before closing is not missed.
func (c *CondSync[K, T]) WaitUntil(cond func(v T) bool) error {
	return c.locked(func() error {
		return c.awaitLocked(cond)
	})
}

// UpdateWhen blocks like WaitUntil until cond holds, and then, without
// releasing the lock in between, calls f and notifies waiters with kind.
//
// Use it wherever a decision depends on the value observed by the wait, such
// as taking a token when one is available. A nil f only notifies.
func (c *CondSync[K, T]) UpdateWhen(cond func(v T) bool, f func(p *T), kind K) error {
	return c.locked(func() error {
		if err := c.awaitLocked(cond); err != nil {
			return err
		}
		if f != nil {
			f(&c.value)
		}
		c.notifyLocked(kind)
		return nil
	})
}

// WaitForKind blocks until a notification of the given kind is sent after
// WaitForKind was called. Notifications of other kinds wake the caller, which
// then blocks again.
//
// Every notification is delivered to every kind waiter, even when several
// notifications are sent before the waiter gets to run again.
func (c *CondSync[K, T]) WaitForKind(kind K) error {
	return c.locked(func() error {
		if err := c.interruptedLocked(); err != nil {
			return err
		}
		cursor := c.tail
		for {
			c.waitLocked()
			for ; cursor.next != nil; cursor = cursor.next {
				if cursor.kind == kind {
					return nil
				}
			}
			if err := c.interruptedLocked(); err != nil {
				return err
			}
		}
	})
}

// WaitNotify blocks until the next notification of any kind and returns its
// kind.
func (c *CondSync[K, T]) WaitNotify() (K, error) {
	var kind K
	err := c.locked(func() error {
		if err := c.interruptedLocked(); err != nil {
			return err
		}
		cursor := c.tail
		for {
			c.waitLocked()
			if cursor.next != nil {
				kind = cursor.kind
				return nil
			}
			if err := c.interruptedLocked(); err != nil {
				return err
			}
		}
	})
	return kind, err
}

// Close wakes every blocked waiter with ErrClosed and makes all later waits
// return ErrClosed immediately. Reads and modifications keep working.
//
// Close is idempotent and never fails, not even on a poisoned CondSync.
func (c *CondSync[K, T]) Close() {
	c.init()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.logger.Debug("closed", slog.Int("waiters", c.waiters))
	c.cond.Broadcast()
}

// Closed reports whether Close has been called.
func (c *CondSync[K, T]) Closed() bool {
	c.init()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Poisoned reports whether a closure has panicked while holding the lock.
func (c *CondSync[K, T]) Poisoned() bool {
	c.init()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.poison != nil
}

// Waiters returns the number of goroutines currently blocked in a wait
// operation. The number is stale as soon as it is returned; it is meant for
// tests and diagnostics.
func (c *CondSync[K, T]) Waiters() int {
	c.init()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.waiters
}

// locked runs f while holding the lock. If f does not return normally, c is
// poisoned before the lock is released, and a panic is propagated to the
// caller.
func (c *CondSync[K, T]) locked(f func() error) error {
	c.init()
	c.mu.Lock()
	returned := false
	defer func() {
		if returned {
			return
		}
		r := recover()
		c.poisonLocked(r)
		c.mu.Unlock()
		if r != nil {
			panic(r)
		}
	}()
	err := f()
	returned = true
	c.mu.Unlock()
	return err
}

// awaitLocked blocks until cond holds, c is closed or c is poisoned.
func (c *CondSync[K, T]) awaitLocked(cond func(v T) bool) error {
	if err := c.interruptedLocked(); err != nil {
		return err
	}
	for !cond(c.value) {
		if c.closed {
			return ErrClosed
		}
		c.waitLocked()
		if c.poison != nil {
			return c.interruptedLocked()
		}
	}
	return nil
}

// interruptedLocked returns the error that ends any wait, if there is one.
// Waiters see ErrClosed even if c is poisoned as well.
func (c *CondSync[K, T]) interruptedLocked() error {
	switch {
	case c.closed:
		return ErrClosed
	case c.poison != nil:
		return c.poison
	}
	return nil
}

func (c *CondSync[K, T]) waitLocked() {
	c.waiters++
	c.cond.Wait()
	c.waiters--
}

func (c *CondSync[K, T]) notifyLocked(kind K) {
	n := c.tail
	n.kind = kind
	n.next = new(notice[K])
	c.tail = n.next
	c.cond.Broadcast()
}

func (c *CondSync[K, T]) poisonLocked(r any) {
	if c.poison == nil {
		c.poison = &PoisonError{Value: r}
		c.logger.Warn("poisoned", slog.Any("panic", r))
	}
	c.cond.Broadcast()
}
