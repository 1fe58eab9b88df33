// Package metrics exports command runs as Prometheus metrics.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	mutations "github.com/reoring/mutations"
)

// Collector is a mutations.Observer recording, per command:
//
//	mutations_runs_total{command,state}         runs by terminal state
//	mutations_run_errors_total{command}         errors reported by failed runs
//	mutations_run_duration_seconds{command}     run latency
type Collector struct {
	runs     *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ mutations.Observer = (*Collector)(nil)

// NewCollector creates the metrics and registers them with reg. A nil reg
// skips registration.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mutations_runs_total",
				Help: "Command runs by terminal state",
			},
			[]string{"command", "state"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mutations_run_errors_total",
				Help: "Validation and injected errors reported by failed runs",
			},
			[]string{"command"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mutations_run_duration_seconds",
				Help:    "Duration of command runs",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"command"},
		),
	}
	if reg != nil {
		for _, m := range []prometheus.Collector{c.runs, c.errors, c.duration} {
			if err := reg.Register(m); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// ObserveRun implements mutations.Observer.
func (c *Collector) ObserveRun(_ context.Context, r mutations.RunReport) {
	c.runs.WithLabelValues(r.Command, r.State.String()).Inc()
	if r.Errors > 0 {
		c.errors.WithLabelValues(r.Command).Add(float64(r.Errors))
	}
	c.duration.WithLabelValues(r.Command).Observe(r.Duration.Seconds())
}
