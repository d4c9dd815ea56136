package semaphore

import (
	"fmt"

	"github.com/notorious-go/condsync"
)

type event int

const (
	acquired event = iota
	released
)

// Semaphore is a counting semaphore that can be closed. The limit determines
// the maximum number of tokens that can be held at once.
//
// The nil *Semaphore represents unlimited capacity. It never blocks and
// cannot be closed.
type Semaphore struct {
	limit int
	held  *condsync.CondSync[event, int]
}

// New creates semaphores with the specified limit. A negative limit
// indicates an unlimited semaphore that never blocks on acquisition, and New
// returns nil for it. A zero limit blocks every Acquire until Close.
func New(limit int) *Semaphore {
	if limit < 0 {
		// The nil Semaphore has no limit, which is the meaning of setting the limit
		// parameter to negative values.
		return nil
	}
	return &Semaphore{
		limit: limit,
		held:  condsync.New[event](0),
	}
}

// String returns a human-readable representation of the semaphore's state.
// For bounded semaphores, it shows "Semaphore(acquired/capacity)" format.
// For nil (unlimited) semaphores, it returns "Semaphore(unlimited)".
func (s *Semaphore) String() string {
	if s == nil {
		return "Semaphore(unlimited)"
	}
	return fmt.Sprintf("Semaphore(%v/%v)", s.Len(), s.Cap())
}

// Len returns the number of tokens currently acquired but not yet released.
func (s *Semaphore) Len() int {
	if s == nil {
		return 0
	}
	n, _ := s.held.Load()
	return n
}

// Cap returns the maximum number of tokens that can be acquired at once.
func (s *Semaphore) Cap() int {
	if s == nil {
		return 0
	}
	return s.limit
}

// Acquire blocks until a token becomes available, then acquires it. It returns
// condsync.ErrClosed without acquiring a token if the semaphore is closed
// before a token becomes available.
//
// For nil semaphores (unlimited capacity), this never blocks and returns
// immediately.
//
// Typical usage pattern:
//
//	if err := s.Acquire(); err != nil {
//	    return err
//	}
//	defer s.Release()
//	// ... do work ...
func (s *Semaphore) Acquire() error {
	if s == nil {
		return nil
	}
	return s.held.UpdateWhen(
		func(n int) bool { return n < s.limit },
		func(n *int) { *n++ },
		acquired,
	)
}

// TryAcquire attempts to acquire a token without blocking. Returns true if a
// token was acquired, false if the semaphore is at capacity or closed.
//
// For nil semaphores, it always returns true since capacity is unlimited.
//
// Note: TryAcquire may succeed even when other goroutines are blocked on
// Acquire, because blocked acquirers only compete for a token after they have
// been woken up.
func (s *Semaphore) TryAcquire() bool {
	if s == nil {
		return true
	}
	if s.held.Closed() {
		return false
	}
	ok := false
	_ = s.held.Modify(func(n *int) {
		if *n < s.limit {
			*n++
			ok = true
		}
	})
	return ok
}

// Release returns a token to the semaphore, waking the goroutines blocked in
// Acquire. Release must be called exactly once for each successful Acquire or
// TryAcquire, also after the semaphore was closed.
//
// For nil semaphores, this is a no-op since tokens were never actually limited.
//
// Calling Release more times than Acquire panics.
func (s *Semaphore) Release() {
	if s == nil {
		return
	}
	underflow := false
	_ = s.held.ModifyAndNotify(func(n *int) {
		if *n == 0 {
			underflow = true
			return
		}
		*n--
	}, released)
	if underflow {
		panic(fmt.Errorf("semaphore: release of %v without a matching acquire", s))
	}
}

// Close wakes every goroutine blocked in Acquire with condsync.ErrClosed, and
// makes later calls to Acquire and TryAcquire fail. Tokens that are already
// held stay valid and must still be released.
//
// Closing a nil semaphore is a no-op.
func (s *Semaphore) Close() {
	if s == nil {
		return
	}
	s.held.Close()
}

// Waiters returns the number of goroutines blocked in Acquire.
func (s *Semaphore) Waiters() int {
	if s == nil {
		return 0
	}
	return s.held.Waiters()
}
