package mainthread

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// inWait reports whether the calling goroutine is inside Wait.
func inWait() bool {
	buf := make([]byte, 8192)
	return strings.Contains(string(buf[:runtime.Stack(buf, false)]), "mainthread.Wait")
}

func TestCallInPlaceWithoutWaiter(t *testing.T) {
	ran := false
	Call(func() {
		ran = true
		assert.False(t, inWait())
	})
	assert.True(t, ran)
}

func TestCallRunsOnWaiter(t *testing.T) {
	done := make(chan int)
	var onWaiter bool
	go func() {
		Call(func() { onWaiter = inWait() })
		done <- 42
	}()

	assert.Equal(t, 42, Wait(done))
	assert.True(t, onWaiter)
}

func TestCallsRunInOrder(t *testing.T) {
	done := make(chan struct{})
	var order []int
	go func() {
		for i := 0; i < 3; i++ {
			Call(func() { order = append(order, i) })
		}
		close(done)
	}()

	Wait(done)
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestNestedWaitDoesNotServe(t *testing.T) {
	outer := make(chan struct{})
	var servedBy string
	go func() {
		inner := make(chan struct{})
		go func() {
			Call(func() {
				buf := make([]byte, 8192)
				servedBy = string(buf[:runtime.Stack(buf, false)])
			})
			close(inner)
		}()
		Wait(inner)
		close(outer)
	}()

	Wait(outer)
	assert.Contains(t, servedBy, "testing.tRunner", "served by the outermost waiter")
}
