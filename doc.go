// Package condsync provides CondSync, a value guarded by a mutex and paired
// with a condition variable, for goroutines that coordinate by waiting on the
// state of that value.
//
// # Why This Package Exists
//
// Waiting on shared state with the standard library takes three pieces that
// must always be used together: a sync.Mutex, a sync.Cond bound to it, and a
// predicate loop around Cond.Wait. Every call site repeats the same pattern,
// and every call site can get it subtly wrong - checking the predicate without
// the lock, forgetting the loop, or forgetting to Broadcast after a change.
//
// CondSync folds the three pieces into one value and exposes the intent
// directly:
//
//	state := condsync.New[Event](0)
//	go func() {
//	    _ = state.ModifyAndNotify(func(v *int) { *v++ }, Started)
//	}()
//	err := state.WaitUntil(func(v int) bool { return v == 1 })
//
// # Notification Kinds
//
// Every notification carries a kind of the caller's choosing. The type
// parameter K is usually a small enum-like type:
//
//	type Event int
//
//	const (
//	    Started Event = iota
//	    Stopped
//	)
//
// Waiters either wait for a predicate over the value (WaitUntil), which any
// notification re-evaluates, or for a notification of one specific kind
// (WaitForKind), which lets logically unrelated changes share one CondSync
// without the wrong waiters returning. Each notification wakes all waiters;
// each waiter decides on its own whether to block again.
//
// # Closing
//
// Close is the only way to cancel a wait. Once closed, every blocked waiter
// returns ErrClosed and every later wait returns ErrClosed without blocking.
// Closing ends waiting, not access: Read, Write and Modify keep working on a
// closed CondSync.
//
// # Poisoning
//
// A closure passed to CondSync runs while the lock is held. If it panics, the
// CondSync is poisoned: the lock is released, blocked waiters wake up, and the
// panic continues unwinding the calling goroutine. Every later operation
// returns a *PoisonError, which matches ErrPoisoned. The content of a poisoned
// value is undefined and should be discarded; there is no way to recover it.
//
// # When NOT to Use This Package
//
//   - Waiting with a deadline or a context: use channels with select.
//   - Many independent values: a single CondSync guards a single value.
//   - Read-mostly data: CondSync uses a plain mutex, so readers exclude each
//     other.
//
// The semaphore and latch sub-packages show how small primitives are built on
// top of CondSync, and condtest offers helpers for testing code that uses it.
package condsync
