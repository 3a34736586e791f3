// Package metrics counts pipeline calls and quota refreshes in a private
// Prometheus registry. A CLI process is short lived, so the registry is
// exported to a node_exporter textfile instead of being scraped.
package metrics

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bnema/coffeeviz-cli/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cvz"

type Recorder struct {
	registry      *prometheus.Registry
	requests      *prometheus.CounterVec
	duration      prometheus.Histogram
	invalidations prometheus.Counter
	refreshes     *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "API calls by classified outcome.",
		}, []string{"kind"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Wall time of API calls including classification.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_invalidations_total",
			Help:      "Sessions ended because the backend rejected the credential.",
		}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_refresh_total",
			Help:      "Background quota refreshes by outcome.",
		}, []string{"outcome"}),
	}

	r.registry.MustRegister(r.requests, r.duration, r.invalidations, r.refreshes)
	return r
}

func (r *Recorder) Observe(event pipeline.Event) {
	switch event.Kind {
	case pipeline.EventCompleted:
		kind := string(event.Result.Kind())
		if kind == "" {
			kind = "success"
		}
		r.requests.WithLabelValues(kind).Inc()
		r.duration.Observe(event.Duration.Seconds())
	case pipeline.EventAuthRejected:
		r.invalidations.Inc()
	}
}

func (r *Recorder) ObserveRefresh(outcome string) {
	r.refreshes.WithLabelValues(outcome).Inc()
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes the registry in text exposition format. The write is
// atomic so a collector never reads a half written file.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return errors.New("metrics textfile path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
