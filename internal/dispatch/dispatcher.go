// Package dispatch turns successful mutating calls into a debounced quota
// refresh. Refresh outcomes never reach the caller that triggered them.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/bnema/coffeeviz-cli/internal/domain"
	"github.com/bnema/coffeeviz-cli/internal/pipeline"
	"github.com/bnema/coffeeviz-cli/internal/ports"
	"github.com/bnema/coffeeviz-cli/internal/timing"
)

const (
	RefreshKey    = "refresh-quotas"
	DefaultDelay  = 100 * time.Millisecond
	QuotaListPath = "/api/quota/list"
)

// Refresh outcomes passed to a RefreshRecorder.
const (
	OutcomeApplied   = "applied"
	OutcomeFailed    = "failed"
	OutcomeSinkError = "sink_error"
)

// Executor runs one request. *pipeline.Pipeline satisfies it.
type Executor interface {
	Execute(ctx context.Context, req domain.Request) domain.Result
}

type RefreshRecorder interface {
	ObserveRefresh(outcome string)
}

type Dispatcher struct {
	exec     Executor
	sink     ports.RefreshSink
	rules    []domain.RefreshRule
	delay    time.Duration
	clock    timing.Clock
	logger   *slog.Logger
	recorder RefreshRecorder

	group *timing.DebounceGroup[struct{}]

	// ctx bounds every refresh; Drain cancels it when its deadline passes.
	ctx    context.Context
	cancel context.CancelFunc
}

type Option func(*Dispatcher)

// WithRules replaces the default refresh rules. An empty slice disables
// refreshes entirely.
func WithRules(rules []domain.RefreshRule) Option {
	return func(d *Dispatcher) {
		d.rules = append([]domain.RefreshRule(nil), rules...)
	}
}

func WithDelay(delay time.Duration) Option {
	return func(d *Dispatcher) {
		if delay >= 0 {
			d.delay = delay
		}
	}
}

func WithClock(clock timing.Clock) Option {
	return func(d *Dispatcher) {
		if clock != nil {
			d.clock = clock
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithRecorder(recorder RefreshRecorder) Option {
	return func(d *Dispatcher) {
		d.recorder = recorder
	}
}

func New(exec Executor, sink ports.RefreshSink, opts ...Option) (*Dispatcher, error) {
	if exec == nil {
		return nil, errors.New("dispatcher executor is nil")
	}
	if sink == nil {
		return nil, errors.New("dispatcher refresh sink is nil")
	}

	d := &Dispatcher{
		exec:   exec,
		sink:   sink,
		rules:  domain.DefaultRefreshRules(),
		delay:  DefaultDelay,
		clock:  timing.SystemClock{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.ctx, d.cancel = context.WithCancel(context.Background())
	d.group = timing.NewDebounceGroup(d.fire, d.delay, false, timing.WithClock(d.clock))
	return d, nil
}

// Observe lets the dispatcher subscribe to pipeline completions.
func (d *Dispatcher) Observe(event pipeline.Event) {
	if event.Kind != pipeline.EventCompleted {
		return
	}
	d.Report(event.Path, event.Result.OK())
}

// Report schedules a refresh when a successful call matches a rule. It only
// arms a timer and returns immediately.
func (d *Dispatcher) Report(path string, ok bool) {
	if !ok || !domain.MatchesAny(d.rules, path) {
		return
	}

	d.logger.Debug("quota refresh scheduled", "trigger", path, "delay", d.delay)
	d.group.Call(RefreshKey, struct{}{})
}

// Drain runs any pending refresh now and waits for it and any running one
// to finish. When ctx ends first, in-flight refreshes are cancelled and no
// later refresh can succeed, so Drain belongs at shutdown.
func (d *Dispatcher) Drain(ctx context.Context) error {
	go d.group.Flush()

	select {
	case <-d.group.Idle(RefreshKey):
		return nil
	case <-ctx.Done():
		d.cancel()
		return fmt.Errorf("drain refreshes: %w", ctx.Err())
	}
}

func (d *Dispatcher) fire(key string, _ struct{}) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("quota refresh panicked", "key", key, "panic", r)
			d.record(OutcomeFailed)
		}
	}()

	d.refresh(key)
}

func (d *Dispatcher) refresh(key string) {
	ctx := d.ctx

	result := d.exec.Execute(ctx, domain.Get(QuotaListPath))
	if !result.OK() {
		d.logger.Warn("quota refresh failed", "key", key, "kind", result.Kind(), "error", result.Err())
		d.record(OutcomeFailed)
		return
	}

	if err := d.sink.ApplyRefresh(ctx, result.Data()); err != nil {
		d.logger.Warn("apply quota refresh", "key", key, "error", err)
		d.record(OutcomeSinkError)
		return
	}

	d.logger.Debug("quota refresh applied", "key", key)
	d.record(OutcomeApplied)
}

func (d *Dispatcher) record(outcome string) {
	if d.recorder != nil {
		d.recorder.ObserveRefresh(outcome)
	}
}
