// Package condtest provides utilities for testing code that coordinates
// goroutines through a condsync.CondSync, or through the primitives built on
// it.
//
// # Overview
//
// Concurrency tests need three things over and over: run the same function in
// many goroutines and collect every failure, check that a call is (still)
// blocked, and check that a blocked call returns promptly once it should. The
// helpers in this package do exactly that:
//
//   - [Go] fans a function out to n goroutines and reports all their errors.
//   - [Start] runs a blocking call in the background and returns a [Call].
//   - [Call.RequireBlocked] and [Call.Wait] assert on the state of that call.
//   - [AwaitWaiters] blocks until a CondSync has the expected number of
//     blocked waiters, so that notifications sent afterwards are known to
//     reach them.
//
// # Example Usage
//
//	state := condsync.New[Event](0)
//	call := condtest.Start(func() error {
//		return state.WaitUntil(func(v int) bool { return v == 3 })
//	})
//	condtest.AwaitWaiters(t, state, 1)
//	call.RequireBlocked(t)
//	condtest.Go(t, 3, func(int) error {
//		return state.ModifyAndNotify(func(v *int) { *v++ }, Incremented)
//	})
//	require.NoError(t, call.Wait(t, condtest.Prompt))
package condtest

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// Prompt is the default time within which a call that has been unblocked is
// expected to return. It is deliberately generous to keep tests stable on
// loaded machines; tests only pay for it when they are about to fail.
const Prompt = 5 * time.Second

// Go calls f from n goroutines, passing each its index, and waits for all of
// them to return. Every error returned by f is reported; the test fails if
// there is at least one.
//
// f runs outside the test goroutine, so it must report failures by returning
// errors rather than by calling t.
func Go(t testing.TB, n int, f func(i int) error) {
	t.Helper()

	var (
		g    errgroup.Group
		mu   sync.Mutex
		merr *multierror.Error
	)
	for i := range n {
		g.Go(func() error {
			err := f(i)
			if err != nil {
				mu.Lock()
				merr = multierror.Append(merr, fmt.Errorf("goroutine %d: %w", i, err))
				mu.Unlock()
			}
			return err
		})
	}
	_ = g.Wait()
	require.NoError(t, merr.ErrorOrNil())
}

// A Call is a blocking function call running in its own goroutine.
type Call struct {
	done chan struct{}
	err  error
}

// Start calls f in a new goroutine and returns immediately.
func Start(f func() error) *Call {
	c := &Call{done: make(chan struct{})}
	go func() {
		defer close(c.done)
		c.err = f()
	}()
	return c
}

// Done returns a channel that is closed when the call has returned.
func (c *Call) Done() <-chan struct{} {
	return c.done
}

// Returned reports whether the call has returned.
func (c *Call) Returned() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// RequireBlocked fails the test immediately if the call has already returned.
func (c *Call) RequireBlocked(t testing.TB) {
	t.Helper()
	if c.Returned() {
		require.FailNow(t, "call returned while it was expected to block", "returned error: %v", c.err)
	}
}

// Wait waits up to timeout for the call to return and returns its error. It
// fails the test immediately if the call is still blocked after timeout.
func (c *Call) Wait(t testing.TB, timeout time.Duration) error {
	t.Helper()
	select {
	case <-c.done:
		return c.err
	case <-time.After(timeout):
		require.FailNow(t, "call did not return in time", "still blocked after %v", timeout)
		return nil
	}
}

// Waiting is implemented by condsync.CondSync for any type parameters.
type Waiting interface {
	Waiters() int
}

// AwaitWaiters blocks until w reports at least n blocked waiters, and fails
// the test if that does not happen within Prompt.
//
// Once AwaitWaiters returns, the waiters are parked on the condition variable,
// so any notification sent afterwards is guaranteed to reach them.
func AwaitWaiters(t testing.TB, w Waiting, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return w.Waiters() >= n
	}, Prompt, time.Millisecond, "expected %d blocked waiters", n)
}
