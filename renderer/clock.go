package renderer

import "time"

// Clock maps wall-clock time to scene time. It starts running at zero
// and can be paused and seeked.
type Clock struct {
	now    func() time.Time
	start  time.Time
	base   float64
	paused bool
}

func NewClock() *Clock {
	return newClock(time.Now)
}

func newClock(now func() time.Time) *Clock {
	return &Clock{now: now, start: now()}
}

// Time returns the current scene time in seconds.
func (c *Clock) Time() float64 {
	if c.paused {
		return c.base
	}
	return c.base + c.now().Sub(c.start).Seconds()
}

func (c *Clock) Paused() bool { return c.paused }

func (c *Clock) Pause() {
	if c.paused {
		return
	}
	c.base = c.Time()
	c.paused = true
}

func (c *Clock) Resume() {
	if !c.paused {
		return
	}
	c.start = c.now()
	c.paused = false
}

func (c *Clock) TogglePause() {
	if c.paused {
		c.Resume()
	} else {
		c.Pause()
	}
}

// Seek moves to t, clamped at zero. A paused clock stays paused.
func (c *Clock) Seek(t float64) {
	if t < 0 {
		t = 0
	}
	c.base = t
	c.start = c.now()
}
