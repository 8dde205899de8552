// Package async runs commands on a dedicated worker goroutine locked to its
// OS thread, one at a time. A controller posts a command and blocks until
// the worker has executed it.
package async

import (
	"errors"
	"runtime"
	"sync"

	"nodegl/platform/mainthread"
)

// ErrStopped is returned by Dispatch once the bridge has been stopped.
var ErrStopped = errors.New("async bridge stopped")

type command struct {
	fn   func() error
	stop bool
}

// Bridge is a single-outstanding-command rendezvous between a controller
// and a worker. At most one command is pending at any time.
type Bridge struct {
	// mu serializes controllers so a second command is never posted before
	// the previous one completed.
	mu      sync.Mutex
	cmd     chan command
	done    chan error
	exited  chan struct{}
	started bool
	stopped bool
}

func New() *Bridge {
	return &Bridge{
		cmd:    make(chan command, 1),
		done:   make(chan error, 1),
		exited: make(chan struct{}),
	}
}

// Start spawns the worker. It is a no-op on a started bridge.
func (b *Bridge) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started || b.stopped {
		return
	}
	b.started = true
	go b.loop()
}

func (b *Bridge) loop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(b.exited)

	for c := range b.cmd {
		var err error
		if c.fn != nil {
			err = c.fn()
		}
		b.done <- err
		if c.stop {
			return
		}
	}
}

// Dispatch runs fn on the worker and returns its result. While waiting, the
// controller runs the main-thread calls fn makes.
func (b *Bridge) Dispatch(fn func() error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started || b.stopped {
		return ErrStopped
	}
	b.cmd <- command{fn: fn}
	return mainthread.Wait(b.done)
}

// Stop posts the stop command, running final first when non-nil, and waits
// for the worker to exit. Later calls return nil.
func (b *Bridge) Stop(final func() error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return nil
	}
	b.stopped = true
	if !b.started {
		return nil
	}
	b.cmd <- command{fn: final, stop: true}
	err := mainthread.Wait(b.done)
	<-b.exited
	return err
}
