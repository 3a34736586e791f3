package timing

import (
	"fmt"
	"sync"
	"time"
)

// Throttler runs fn at most once per wait window. A Call inside the window
// arms a single trailing fire that carries the most recent arguments.
type Throttler[T any] struct {
	fn    func(T)
	wait  time.Duration
	clock Clock

	mu       sync.Mutex
	previous time.Time
	timer    Timer
	seq      uint64
	args     T
}

func NewThrottle[T any](fn func(T), wait time.Duration, opts ...Option) *Throttler[T] {
	if fn == nil {
		panic("timing: throttle func is nil")
	}
	if wait < 0 {
		panic(fmt.Sprintf("timing: negative throttle wait %s", wait))
	}

	o := applyOptions(opts)
	return &Throttler[T]{
		fn:    fn,
		wait:  wait,
		clock: o.clock,
	}
}

func (t *Throttler[T]) Call(arg T) {
	t.mu.Lock()
	now := t.clock.Now()
	remaining := t.wait - now.Sub(t.previous)

	// remaining > wait means the clock went backwards.
	if t.previous.IsZero() || remaining <= 0 || remaining > t.wait {
		if t.timer != nil {
			t.timer.Stop()
			t.timer = nil
			t.seq++
		}
		t.previous = now
		var zero T
		t.args = zero
		t.mu.Unlock()

		t.fn(arg)
		return
	}

	t.args = arg
	if t.timer == nil {
		t.seq++
		seq := t.seq
		t.timer = t.clock.AfterFunc(remaining, func() { t.fire(seq) })
	}
	t.mu.Unlock()
}

// Cancel drops the armed trailing fire without touching the window.
func (t *Throttler[T]) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer == nil {
		return
	}
	t.timer.Stop()
	t.timer = nil
	t.seq++
	var zero T
	t.args = zero
}

func (t *Throttler[T]) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.timer != nil
}

func (t *Throttler[T]) fire(seq uint64) {
	t.mu.Lock()
	if seq != t.seq || t.timer == nil {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	t.previous = t.clock.Now()
	args := t.args
	var zero T
	t.args = zero
	t.mu.Unlock()

	t.fn(args)
}
