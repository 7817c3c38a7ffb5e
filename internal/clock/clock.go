// Package clock abstracts wall-clock time, timer scheduling and randomness so
// the session engine's timed transitions (ring-up completion, progress ticks,
// minigame deadlines) and chance draws (jams, instant blocks) run
// deterministically under test.
package clock

import (
	"math/rand"
	"sync"
	"time"
)

// Timer mirrors the subset of time.Timer the engine needs.
type Timer interface {
	Stop() bool
}

// Clock supplies time and one-shot scheduling.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Rand supplies the uniform draws behind jam and instant-block chances.
type Rand interface {
	Float64() float64
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// New returns the wall-clock implementation.
func New() Clock { return realClock{} }

// NewRand returns a seeded random source. Production callers seed with the
// current time; tests pass a fixed seed.
func NewRand(seed int64) Rand {
	return rand.New(rand.NewSource(seed))
}

// FixedRand always returns the same draw. Useful for forcing the jam or
// success branch in tests.
type FixedRand struct{ Value float64 }

func (r FixedRand) Float64() float64 { return r.Value }

// Fake is a manually advanced clock for tests. Timers fire synchronously, in
// deadline order, while Advance moves time forward.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *Fake
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// NewFake starts a fake clock at the given instant.
func NewFake(now time.Time) *Fake {
	return &Fake{now: now}
}

func (c *Fake) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Fake) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward and fires every timer whose deadline has
// been reached, in deadline order. Callbacks run without the clock lock held
// so they may schedule new timers.
func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *fakeTimer
		for _, t := range c.timers {
			if t.fired || t.stopped || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		if next.at.After(c.now) {
			c.now = next.at
		}
		next.fired = true
		f := next.f
		c.mu.Unlock()
		f()
	}
}

// Pending reports how many timers are armed but not yet fired.
func (c *Fake) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}
