// Package semaphore provides a closable counting semaphore built on
// condsync.CondSync, where nil represents unlimited capacity.
//
// # Why This Package Exists
//
// This semaphore is designed for optional concurrency limits: the absence of
// a limit (nil) means unlimited capacity rather than blocking forever. A nil
// *Semaphore never blocks, so callers need no `if sem != nil` checks before
// every acquire and release.
//
// Unlike a buffered channel used as a semaphore, a Semaphore can be closed.
// Closing wakes every goroutine blocked in Acquire with condsync.ErrClosed,
// which makes shutting down a pool of limited workers a single call rather
// than a select on a separate done channel in every worker.
//
// # When NOT to Use This Package
//
//   - Weighted semaphores (acquiring multiple tokens at once): Use golang.org/x/sync/semaphore
//   - Context cancellation or timeouts: Use raw buffered channels with select statements
//   - Strict FIFO ordering guarantees: Use raw buffered channels without TryAcquire
//
// # Implementation
//
// The number of acquired tokens is the value guarded by a CondSync. Acquire
// waits until the count is below the limit and increments it in the same
// critical section; Release decrements it and notifies the waiters, which then
// re-check the count. Every Release wakes all blocked acquirers, of which one
// wins the token; this trades some wake-up efficiency for the simplicity of a
// single condition.
package semaphore
