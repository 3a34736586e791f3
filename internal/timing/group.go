package timing

import (
	"sort"
	"sync"
	"time"
)

// DebounceGroup keeps one Debouncer per key so that bursts on different keys
// never collapse into each other.
type DebounceGroup[T any] struct {
	fn        func(key string, arg T)
	wait      time.Duration
	immediate bool
	opts      []Option

	mu    sync.Mutex
	byKey map[string]*Debouncer[T]
}

func NewDebounceGroup[T any](fn func(key string, arg T), wait time.Duration, immediate bool, opts ...Option) *DebounceGroup[T] {
	if fn == nil {
		panic("timing: debounce group func is nil")
	}
	// Validate wait eagerly instead of on the first Call.
	NewDebounce(func(T) {}, wait, immediate, opts...)

	return &DebounceGroup[T]{
		fn:        fn,
		wait:      wait,
		immediate: immediate,
		opts:      opts,
		byKey:     make(map[string]*Debouncer[T]),
	}
}

func (g *DebounceGroup[T]) Call(key string, arg T) {
	g.debouncer(key).Call(arg)
}

// Flush runs every pending call now, in key order.
func (g *DebounceGroup[T]) Flush() {
	for _, d := range g.snapshot() {
		d.Flush()
	}
}

func (g *DebounceGroup[T]) Cancel() {
	for _, d := range g.snapshot() {
		d.Cancel()
	}
}

func (g *DebounceGroup[T]) Pending(key string) bool {
	g.mu.Lock()
	d, ok := g.byKey[key]
	g.mu.Unlock()

	return ok && d.Pending()
}

// Idle returns a channel closed once key has nothing pending or running.
func (g *DebounceGroup[T]) Idle(key string) <-chan struct{} {
	g.mu.Lock()
	d, ok := g.byKey[key]
	g.mu.Unlock()

	if !ok {
		return closedIdle
	}
	return d.Idle()
}

func (g *DebounceGroup[T]) debouncer(key string) *Debouncer[T] {
	g.mu.Lock()
	defer g.mu.Unlock()

	if d, ok := g.byKey[key]; ok {
		return d
	}

	d := NewDebounce(func(arg T) { g.fn(key, arg) }, g.wait, g.immediate, g.opts...)
	g.byKey[key] = d
	return d
}

func (g *DebounceGroup[T]) snapshot() []*Debouncer[T] {
	g.mu.Lock()
	defer g.mu.Unlock()

	keys := make([]string, 0, len(g.byKey))
	for key := range g.byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	debouncers := make([]*Debouncer[T], 0, len(keys))
	for _, key := range keys {
		debouncers = append(debouncers, g.byKey[key])
	}
	return debouncers
}
