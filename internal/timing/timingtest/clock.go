// Package timingtest provides a manually advanced clock for scheduler tests.
package timingtest

import (
	"sync"
	"time"

	"github.com/bnema/coffeeviz-cli/internal/timing"
)

type Clock struct {
	mu     sync.Mutex
	now    time.Time
	nextID int
	timers []*timer
}

var _ timing.Clock = (*Clock)(nil)

type timer struct {
	clock *Clock
	id    int
	at    time.Time
	fn    func()
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *Clock) AfterFunc(d time.Duration, f func()) timing.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	t := &timer{clock: c, id: c.nextID, at: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward by d, running due timers in deadline
// order. Each callback observes Now() equal to its own deadline.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.nextDue(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.remove(next)
		c.now = next.at
		c.mu.Unlock()

		next.fn()
	}
}

// Set jumps the clock to t without running timers. Moving backwards
// simulates clock skew.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = t
}

// Pending reports how many timers are armed.
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.timers)
}

func (c *Clock) nextDue(target time.Time) *timer {
	var next *timer
	for _, t := range c.timers {
		if t.at.After(target) {
			continue
		}
		if next == nil || t.at.Before(next.at) || (t.at.Equal(next.at) && t.id < next.id) {
			next = t
		}
	}
	return next
}

func (c *Clock) remove(target *timer) bool {
	for i, t := range c.timers {
		if t == target {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return true
		}
	}
	return false
}

func (t *timer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	return t.clock.remove(t)
}
