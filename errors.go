package condsync

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by wait operations once the CondSync has been closed.
var ErrClosed = errors.New("condsync: closed")

// ErrPoisoned matches every *PoisonError via errors.Is.
var ErrPoisoned = errors.New("condsync: poisoned")

// A PoisonError reports that a closure terminated abnormally while holding the
// lock of a CondSync. The guarded value may have been left half-modified.
type PoisonError struct {
	// Value is the value recovered from the panic. It is nil when the closure
	// called runtime.Goexit instead of panicking.
	Value any
}

func (e *PoisonError) Error() string {
	if e.Value == nil {
		return "condsync: poisoned by goroutine exit inside critical section"
	}
	return fmt.Sprintf("condsync: poisoned by panic inside critical section: %v", e.Value)
}

// Is reports whether target is ErrPoisoned.
func (e *PoisonError) Is(target error) bool {
	return target == ErrPoisoned
}
