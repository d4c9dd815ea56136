// Package latch provides a countdown latch: a one-shot gate that opens once a
// fixed number of events have happened.
//
// The typical use is a coordinating goroutine that must not proceed before a
// set of workers have finished initializing:
//
//	l := latch.New(len(workers))
//	for _, w := range workers {
//	    go func() {
//	        w.Init()
//	        l.CountDown()
//	        w.Run()
//	    }()
//	}
//	if err := l.Wait(); err != nil {
//	    return err // the latch was closed during shutdown
//	}
//
// Unlike a sync.WaitGroup, the workers keep running after counting down, the
// count can be inspected, and waiting can be aborted with Close.
package latch

import (
	"fmt"

	"github.com/notorious-go/condsync"
)

type event int

const countedDown event = 0

// A Latch opens when its count reaches zero. Once open, it stays open.
type Latch struct {
	count *condsync.CondSync[event, int]
}

// New returns a latch that opens after count calls to CountDown. A latch with
// a zero count is open from the start. New panics if count is negative.
func New(count int) *Latch {
	if count < 0 {
		panic(fmt.Errorf("latch: negative count %d", count))
	}
	return &Latch{count: condsync.New[event](count)}
}

// CountDown decrements the count and wakes the waiters if it reaches zero.
// Calling CountDown on an open latch does nothing.
func (l *Latch) CountDown() {
	_ = l.count.ModifyAndNotify(func(n *int) {
		if *n > 0 {
			*n--
		}
	}, countedDown)
}

// Count returns the number of CountDown calls still needed to open the latch.
func (l *Latch) Count() int {
	n, _ := l.count.Load()
	return n
}

// Wait blocks until the latch is open. It returns condsync.ErrClosed if the
// latch is closed first; a latch that opened before being closed still
// reports ErrClosed to later calls.
func (l *Latch) Wait() error {
	return l.count.WaitUntil(func(n int) bool { return n == 0 })
}

// Close aborts all current and future calls to Wait.
func (l *Latch) Close() {
	l.count.Close()
}

// Waiters returns the number of goroutines blocked in Wait.
func (l *Latch) Waiters() int {
	return l.count.Waiters()
}
