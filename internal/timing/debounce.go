package timing

import (
	"fmt"
	"sync"
	"time"
)

// Debouncer delays fn until wait has elapsed without another Call. With
// immediate set, the first Call of an idle burst runs fn synchronously and
// the trailing edge only closes the burst.
type Debouncer[T any] struct {
	fn        func(T)
	wait      time.Duration
	immediate bool
	clock     Clock

	mu     sync.Mutex
	timer  Timer
	seq    uint64
	args   T
	active int
	idle   chan struct{}
}

var closedIdle = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

func NewDebounce[T any](fn func(T), wait time.Duration, immediate bool, opts ...Option) *Debouncer[T] {
	if fn == nil {
		panic("timing: debounce func is nil")
	}
	if wait < 0 {
		panic(fmt.Sprintf("timing: negative debounce wait %s", wait))
	}

	o := applyOptions(opts)
	return &Debouncer[T]{
		fn:        fn,
		wait:      wait,
		immediate: immediate,
		clock:     o.clock,
	}
}

func (d *Debouncer[T]) Call(arg T) {
	d.mu.Lock()
	callNow := d.immediate && d.timer == nil
	if d.timer != nil {
		d.timer.Stop()
	} else {
		d.begin()
	}
	d.seq++
	seq := d.seq
	d.args = arg
	d.timer = d.clock.AfterFunc(d.wait, func() { d.fire(seq) })
	d.mu.Unlock()

	if callNow {
		d.fn(arg)
	}
}

// Flush runs the pending trailing call now instead of waiting for the timer.
func (d *Debouncer[T]) Flush() {
	args, ok := d.take()
	if !ok {
		return
	}
	defer d.end()

	if !d.immediate {
		d.fn(args)
	}
}

// Cancel drops the pending call, if any.
func (d *Debouncer[T]) Cancel() {
	if _, ok := d.take(); ok {
		d.end()
	}
}

// Idle returns a channel that is closed once no call is pending and no
// trailing fn is running. A Call made afterwards does not reopen it.
func (d *Debouncer[T]) Idle() <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active == 0 {
		return closedIdle
	}
	return d.idle
}

func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.timer != nil
}

func (d *Debouncer[T]) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	args := d.args
	var zero T
	d.args = zero
	d.mu.Unlock()
	defer d.end()

	if !d.immediate {
		d.fn(args)
	}
}

// begin marks the start of a burst; the caller holds d.mu.
func (d *Debouncer[T]) begin() {
	if d.active == 0 {
		d.idle = make(chan struct{})
	}
	d.active++
}

// end closes a burst once its trailing edge has finished.
func (d *Debouncer[T]) end() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.active--
	if d.active == 0 {
		close(d.idle)
	}
}

func (d *Debouncer[T]) take() (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var zero T
	if d.timer == nil {
		return zero, false
	}

	d.timer.Stop()
	d.timer = nil
	d.seq++
	args := d.args
	d.args = zero
	return args, true
}
