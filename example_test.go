package condsync_test

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/notorious-go/condsync"
)

// Phase is the kind of notification used by the examples. Any comparable type
// works; small enum-like types read best.
type Phase int

const (
	Initialized Phase = iota
	Configured
	Stopped
)

// This example blocks the main goroutine until five workers have initialized.
// A plain int is all the state needed to express the condition.
func Example() {
	ready := condsync.New[Phase](0)

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		// Each worker gets its own handle. They all share the same value.
		worker := ready.Clone()
		go func() {
			defer wg.Done()
			// -- initialize --
			_ = worker.ModifyAndNotify(func(n *int) { *n++ }, Initialized)
			// -- work on phase 1 --
		}()
	}

	// The condition is evaluated under the lock whenever a worker notifies.
	if err := ready.WaitUntil(func(n int) bool { return n == 5 }); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Main: all workers initialized")
	wg.Wait()

	// Output:
	// Main: all workers initialized
}

// This example shows how notification kinds let unrelated changes share one
// CondSync. The config watcher only returns for Configured notifications, no
// matter how many Initialized notifications arrive first.
func ExampleCondSync_WaitForKind() {
	type service struct {
		workers int
		config  string
	}
	state := condsync.New[Phase](service{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := state.WaitForKind(Configured); err != nil {
			fmt.Println("Error:", err)
			return
		}
		config, _ := condsync.Get(state, func(s service) string { return s.config })
		fmt.Println("Watcher: configured with", config)
	}()

	// Wait for the watcher to block before notifying, so the example output is
	// deterministic.
	for state.Waiters() == 0 {
		runtime.Gosched()
	}
	_ = state.ModifyAndNotify(func(s *service) { s.workers++ }, Initialized)
	_ = state.ModifyAndNotify(func(s *service) { s.workers++ }, Initialized)
	_ = state.ModifyAndNotify(func(s *service) { s.config = "prod.yaml" }, Configured)
	<-done

	// Output:
	// Watcher: configured with prod.yaml
}

// This example shows Close aborting a wait whose condition will never hold.
func ExampleCondSync_Close() {
	state := condsync.New[Phase](false)

	done := make(chan struct{})
	go func() {
		defer close(done)
		err := state.WaitUntil(func(started bool) bool { return started })
		fmt.Println("Waiter:", err, errors.Is(err, condsync.ErrClosed))
	}()

	for state.Waiters() == 0 {
		runtime.Gosched()
	}
	state.Close()
	<-done

	// Closing again is harmless, and later waits return at once.
	state.Close()
	fmt.Println("Later:", state.WaitForKind(Stopped))

	// Output:
	// Waiter: condsync: closed true
	// Later: condsync: closed
}

// ExampleGet shows how to compute a result from the guarded value without
// copying it out.
func ExampleGet() {
	inventory := condsync.New[Phase](map[string]int{"apples": 3, "pears": 0})

	inStock, err := condsync.Get(inventory, func(m map[string]int) []string {
		var names []string
		for _, name := range []string{"apples", "pears"} {
			if m[name] > 0 {
				names = append(names, name)
			}
		}
		return names
	})
	fmt.Println(inStock, err)

	// Output:
	// [apples] <nil>
}
