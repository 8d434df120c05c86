// Package metrics exposes view computation and dataset metrics to Prometheus.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wagedash/internal/engine"
	"wagedash/internal/views"
)

const namespace = "wagedash"

// Recorder implements views.Observer on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	viewDuration  *prometheus.HistogramVec
	viewTotal     *prometheus.CounterVec
	mergeDropped  *prometheus.CounterVec
	datasetRows   *prometheus.GaugeVec
	datasetFailed *prometheus.GaugeVec
}

// New creates a Recorder with its collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		viewDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "view_duration_seconds",
			Help:      "Time to assemble a view.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5},
		}, []string{"view"}),
		viewTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_computations_total",
			Help:      "View computations by outcome; failures are labeled with the failing stage.",
		}, []string{"view", "outcome"}),
		mergeDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merge_unmatched_rows_total",
			Help:      "Rows dropped by inner joins because their key had no partner.",
		}, []string{"view", "side"}),
		datasetRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Rows in each loaded dataset.",
		}, []string{"dataset"}),
		datasetFailed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_load_failed",
			Help:      "1 when the dataset failed to load.",
		}, []string{"dataset"}),
	}
	r.registry.MustRegister(
		r.viewDuration,
		r.viewTotal,
		r.mergeDropped,
		r.datasetRows,
		r.datasetFailed,
		collectors.NewGoCollector(),
	)
	return r
}

// ObserveView records one Compute call.
func (r *Recorder) ObserveView(view views.Kind, took time.Duration, err error) {
	r.viewDuration.WithLabelValues(string(view)).Observe(took.Seconds())
	r.viewTotal.WithLabelValues(string(view), outcome(err)).Inc()
}

// ObserveMerge records unmatched rows of a view's join.
func (r *Recorder) ObserveMerge(view views.Kind, stats engine.MergeStats) {
	r.mergeDropped.WithLabelValues(string(view), "left").Add(float64(stats.LeftUnmatched))
	r.mergeDropped.WithLabelValues(string(view), "right").Add(float64(stats.RightUnmatched))
}

// ObserveDatasets publishes row counts and load failures.
func (r *Recorder) ObserveDatasets(data *views.Datasets) {
	for name, rows := range data.Rows() {
		r.datasetRows.WithLabelValues(string(name)).Set(float64(rows))
		r.datasetFailed.WithLabelValues(string(name)).Set(0)
	}
	for name := range data.Errors() {
		r.datasetFailed.WithLabelValues(string(name)).Set(1)
	}
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var stageErr *views.StageError
	if errors.As(err, &stageErr) {
		return string(stageErr.Stage)
	}
	return "error"
}
