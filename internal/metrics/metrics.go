// Package metrics exposes scoring counters on a dedicated Prometheus registry.
package metrics

import (
	"fmt"
	"time"

	"github.com/huangsam/lakerisk/schema"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lakerisk"

// Recorder owns the registry and every lakerisk collector.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry    *prometheus.Registry
	predictions *prometheus.CounterVec
	failures    *prometheus.CounterVec
	scoring     prometheus.Histogram
	farWarnings prometheus.Counter
	riskLevels  *prometheus.CounterVec
}

// New builds a recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Completed scoring runs by species status.",
		}, []string{"species_status"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_failures_total",
			Help:      "Failed scoring runs by error kind.",
		}, []string{"kind"}),
		scoring: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lake_scoring_seconds",
			Help:      "Wall time spent scoring every lake for one species.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		farWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "far_input_warnings_total",
			Help:      "Runs whose inputs were far from every lake baseline.",
		}),
		riskLevels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_level_total",
			Help:      "Scored lakes by risk level.",
		}, []string{"level"}),
	}
	r.registry.MustRegister(r.predictions, r.failures, r.scoring, r.farWarnings, r.riskLevels)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveRun records a successful run.
func (r *Recorder) ObserveRun(status string, elapsed time.Duration, records []schema.PredictionRecord, warned bool) {
	if r == nil {
		return
	}
	if status == "" {
		status = "unknown"
	}
	r.predictions.WithLabelValues(status).Inc()
	r.scoring.Observe(elapsed.Seconds())
	if warned {
		r.farWarnings.Inc()
	}
	for _, rec := range records {
		r.riskLevels.WithLabelValues(string(rec.RiskLevel)).Inc()
	}
}

// ObserveFailure records a failed run by error kind.
func (r *Recorder) ObserveFailure(kind string) {
	if r == nil {
		return
	}
	r.failures.WithLabelValues(kind).Inc()
}

// WriteTextfile writes the registry in the node-exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
