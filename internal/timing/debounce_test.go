package timing_test

import (
	"sync"
	"testing"
	"time"

	"github.com/bnema/coffeeviz-cli/internal/timing"
	"github.com/bnema/coffeeviz-cli/internal/timing/timingtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

type fire struct {
	at  time.Duration
	arg int
}

type recorder struct {
	mu    sync.Mutex
	clock *timingtest.Clock
	fires []fire
}

func newRecorder(clock *timingtest.Clock) *recorder {
	return &recorder{clock: clock}
}

func (r *recorder) record(arg int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.fires = append(r.fires, fire{at: r.clock.Now().Sub(epoch), arg: arg})
}

func (r *recorder) snapshot() []fire {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]fire(nil), r.fires...)
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func TestDebounceCollapsesBurstIntoTrailingCall(t *testing.T) {
	clock := timingtest.NewClock(epoch)
	rec := newRecorder(clock)
	d := timing.NewDebounce(rec.record, ms(100), false, timing.WithClock(clock))

	d.Call(0)
	clock.Advance(ms(30))
	d.Call(30)
	clock.Advance(ms(30))
	d.Call(60)

	clock.Advance(ms(99))
	assert.Empty(t, rec.snapshot())
	assert.True(t, d.Pending())

	clock.Advance(ms(1))
	assert.Equal(t, []fire{{at: ms(160), arg: 60}}, rec.snapshot())
	assert.False(t, d.Pending())

	clock.Advance(ms(500))
	assert.Len(t, rec.snapshot(), 1)
}

func TestDebounceImmediateFiresLeadingEdgeOnly(t *testing.T) {
	clock := timingtest.NewClock(epoch)
	rec := newRecorder(clock)
	d := timing.NewDebounce(rec.record, ms(100), true, timing.WithClock(clock))

	d.Call(1)
	assert.Equal(t, []fire{{at: 0, arg: 1}}, rec.snapshot())

	clock.Advance(ms(50))
	d.Call(2)
	clock.Advance(ms(100))
	assert.Len(t, rec.snapshot(), 1, "trailing edge is suppressed after an immediate fire")
	assert.False(t, d.Pending())

	d.Call(3)
	assert.Equal(t, []fire{{at: 0, arg: 1}, {at: ms(150), arg: 3}}, rec.snapshot())
}

func TestDebounceFlushRunsPendingCallOnce(t *testing.T) {
	clock := timingtest.NewClock(epoch)
	rec := newRecorder(clock)
	d := timing.NewDebounce(rec.record, ms(100), false, timing.WithClock(clock))

	d.Flush()
	assert.Empty(t, rec.snapshot())

	d.Call(7)
	clock.Advance(ms(10))
	d.Flush()
	assert.Equal(t, []fire{{at: ms(10), arg: 7}}, rec.snapshot())
	assert.False(t, d.Pending())

	clock.Advance(ms(200))
	assert.Len(t, rec.snapshot(), 1)
	assert.Zero(t, clock.Pending())
}

func TestDebounceCancelDropsPendingCall(t *testing.T) {
	clock := timingtest.NewClock(epoch)
	rec := newRecorder(clock)
	d := timing.NewDebounce(rec.record, ms(100), false, timing.WithClock(clock))

	d.Call(1)
	d.Cancel()
	clock.Advance(ms(200))

	assert.Empty(t, rec.snapshot())
}

func TestDebounceRejectsInvalidConfiguration(t *testing.T) {
	assert.Panics(t, func() { timing.NewDebounce(func(int) {}, -time.Millisecond, false) })
	assert.Panics(t, func() { timing.NewDebounce[int](nil, time.Millisecond, false) })
}

func TestDebounceWithSystemClock(t *testing.T) {
	done := make(chan int, 1)
	d := timing.NewDebounce(func(v int) { done <- v }, 5*time.Millisecond, false)

	d.Call(1)
	d.Call(2)

	select {
	case v := <-done:
		assert.Equal(t, 2, v)
	case <-time.After(time.Second):
		require.FailNow(t, "debounced call never fired")
	}
}

func TestDebounceGroupKeepsKeysIndependent(t *testing.T) {
	clock := timingtest.NewClock(epoch)

	var mu sync.Mutex
	got := map[string][]int{}
	g := timing.NewDebounceGroup(func(key string, v int) {
		mu.Lock()
		defer mu.Unlock()
		got[key] = append(got[key], v)
	}, ms(100), false, timing.WithClock(clock))

	g.Call("a", 1)
	g.Call("b", 10)
	clock.Advance(ms(50))
	g.Call("a", 2)
	assert.True(t, g.Pending("a"))
	assert.False(t, g.Pending("missing"))

	clock.Advance(ms(60))
	mu.Lock()
	assert.Equal(t, map[string][]int{"b": {10}}, got)
	mu.Unlock()

	g.Flush()
	mu.Lock()
	assert.Equal(t, map[string][]int{"a": {2}, "b": {10}}, got)
	mu.Unlock()
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestDebounceIdleTracksPendingAndRunningCalls(t *testing.T) {
	clock := timingtest.NewClock(epoch)
	release := make(chan struct{})
	running := make(chan struct{}, 2)
	d := timing.NewDebounce(func(int) {
		running <- struct{}{}
		<-release
	}, ms(100), false, timing.WithClock(clock))

	assert.True(t, isClosed(d.Idle()))

	d.Call(1)
	idle := d.Idle()
	assert.False(t, isClosed(idle))

	advanced := make(chan struct{})
	go func() {
		clock.Advance(ms(100))
		close(advanced)
	}()
	<-running

	// A call landing while the trailing fn runs extends the same idle period.
	d.Call(2)
	assert.False(t, isClosed(idle))

	close(release)
	<-advanced
	assert.False(t, isClosed(idle))

	d.Flush()
	<-running
	assert.True(t, isClosed(idle))
	assert.True(t, isClosed(d.Idle()))
}

func TestDebounceIdleClosesOnCancel(t *testing.T) {
	clock := timingtest.NewClock(epoch)
	d := timing.NewDebounce(func(int) {}, ms(100), false, timing.WithClock(clock))

	d.Call(1)
	idle := d.Idle()
	require.False(t, isClosed(idle))

	d.Cancel()
	assert.True(t, isClosed(idle))

	g := timing.NewDebounceGroup(func(string, int) {}, ms(100), false, timing.WithClock(clock))
	assert.True(t, isClosed(g.Idle("unknown")))
	g.Call("k", 1)
	assert.False(t, isClosed(g.Idle("k")))
	clock.Advance(ms(100))
	assert.True(t, isClosed(g.Idle("k")))
}
