// Package mainthread hands functions that must run on the main thread to
// the controller blocked waiting for a worker. GLFW window creation and
// destruction go through it when a context is configured on an async
// worker.
package mainthread

import "sync"

type call struct {
	fn   func()
	done chan struct{}
}

var (
	mu      sync.Mutex
	serving bool
	pending []call
	wake    = make(chan struct{}, 1)
)

// Call runs fn on the thread blocked in Wait and returns once it ran. With
// no thread waiting, fn runs in place.
func Call(fn func()) {
	mu.Lock()
	if !serving {
		mu.Unlock()
		fn()
		return
	}
	c := call{fn: fn, done: make(chan struct{})}
	pending = append(pending, c)
	mu.Unlock()

	select {
	case wake <- struct{}{}:
	default:
	}
	<-c.done
}

// Wait blocks until done delivers a value and returns it. The outermost
// Wait runs the functions posted with Call in the meantime; nested waits,
// made from a worker, only block.
func Wait[T any](done <-chan T) T {
	mu.Lock()
	if serving {
		mu.Unlock()
		return <-done
	}
	serving = true
	mu.Unlock()

	for {
		select {
		case v := <-done:
			mu.Lock()
			serving = false
			mu.Unlock()
			run()
			return v
		case <-wake:
			run()
		}
	}
}

func run() {
	mu.Lock()
	calls := pending
	pending = nil
	mu.Unlock()
	for _, c := range calls {
		c.fn()
		close(c.done)
	}
}
