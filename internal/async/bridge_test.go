package async

import (
	"errors"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodegl/platform/mainthread"
)

func TestDispatchReturnsResult(t *testing.T) {
	b := New()
	b.Start()
	defer b.Stop(nil)

	ran := false
	require.NoError(t, b.Dispatch(func() error {
		ran = true
		return nil
	}))
	assert.True(t, ran, "dispatch blocks until the command completed")

	boom := errors.New("boom")
	assert.Equal(t, boom, b.Dispatch(func() error { return boom }))
}

func TestDispatchIsSerialized(t *testing.T) {
	b := New()
	b.Start()
	defer b.Stop(nil)

	var (
		inFlight int32
		overlap  int32
		order    []int
		wg       sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := b.Dispatch(func() error {
				if atomic.AddInt32(&inFlight, 1) > 1 {
					atomic.StoreInt32(&overlap, 1)
				}
				time.Sleep(time.Millisecond)
				order = append(order, i)
				atomic.AddInt32(&inFlight, -1)
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	assert.Zero(t, atomic.LoadInt32(&overlap))
	assert.Len(t, order, 8)
}

func TestBackToBackCommandsWaitForCompletion(t *testing.T) {
	b := New()
	b.Start()
	defer b.Stop(nil)

	var first atomic.Bool
	require.NoError(t, b.Dispatch(func() error {
		time.Sleep(5 * time.Millisecond)
		first.Store(true)
		return nil
	}))
	require.NoError(t, b.Dispatch(func() error {
		if !first.Load() {
			return errors.New("second command started before the first completed")
		}
		return nil
	}))
}

func TestStopRunsFinalCommand(t *testing.T) {
	b := New()
	b.Start()
	require.NoError(t, b.Dispatch(func() error { return nil }))

	cleaned := false
	require.NoError(t, b.Stop(func() error {
		cleaned = true
		return nil
	}))
	assert.True(t, cleaned)

	select {
	case <-b.exited:
	default:
		t.Fatal("worker still running after stop")
	}

	assert.ErrorIs(t, b.Dispatch(func() error { return nil }), ErrStopped)
	assert.NoError(t, b.Stop(nil), "stop is idempotent")
}

func TestStopWaitsForAcceptedCommand(t *testing.T) {
	b := New()
	b.Start()

	started := make(chan struct{})
	var finished atomic.Bool
	go func() {
		_ = b.Dispatch(func() error {
			close(started)
			time.Sleep(10 * time.Millisecond)
			finished.Store(true)
			return nil
		})
	}()
	<-started
	require.NoError(t, b.Stop(nil))
	assert.True(t, finished.Load())
}

func TestNotStarted(t *testing.T) {
	b := New()
	assert.ErrorIs(t, b.Dispatch(func() error { return nil }), ErrStopped)
	assert.NoError(t, b.Stop(nil))
}

// controllerCall reports whether a mainthread call made from the worker ran
// on the goroutine blocked in Dispatch or Stop.
func controllerCall(served *bool) func() error {
	return func() error {
		mainthread.Call(func() {
			buf := make([]byte, 8192)
			*served = strings.Contains(string(buf[:runtime.Stack(buf, false)]), "testing.tRunner")
		})
		return nil
	}
}

func TestWorkerCallsRunOnController(t *testing.T) {
	b := New()
	b.Start()

	var dispatched, stopped bool
	require.NoError(t, b.Dispatch(controllerCall(&dispatched)))
	require.NoError(t, b.Stop(controllerCall(&stopped)))
	assert.True(t, dispatched)
	assert.True(t, stopped)
}
