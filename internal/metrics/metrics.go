// Package metrics provides Prometheus run metrics for GO annotation generation.
// A batch run has no scrape endpoint, so metrics are written to a node-exporter
// textfile when the run finishes.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "goa"

// Run holds the metrics of one generation run on its own registry.
type Run struct {
	Registry *prometheus.Registry

	EventsTotal       *prometheus.CounterVec
	AnnotationsTotal  *prometheus.CounterVec
	DisqualifiedTotal *prometheus.CounterVec
	Lines             prometheus.Gauge
	DurationSeconds   prometheus.Gauge
}

// NewRun registers a fresh set of run metrics.
func NewRun() *Run {
	r := &Run{
		Registry: prometheus.NewRegistry(),
		EventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Reaction-like events processed, by status.",
		}, []string{"status"}),
		AnnotationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "annotations_total",
			Help:      "Distinct annotation lines produced, by GO aspect.",
		}, []string{"aspect"}),
		DisqualifiedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disqualified_proteins_total",
			Help:      "Proteins skipped by a disqualification rule, by reason.",
		}, []string{"reason"}),
		Lines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lines_written",
			Help:      "Annotation records in the last written file.",
		}),
		DurationSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Wall time of the last generation run.",
		}),
	}
	r.Registry.MustRegister(r.EventsTotal, r.AnnotationsTotal, r.DisqualifiedTotal, r.Lines, r.DurationSeconds)
	return r
}

// EventProcessed counts one event with the given status.
func (r *Run) EventProcessed(status string) { r.EventsTotal.WithLabelValues(status).Inc() }

// Disqualified counts one skipped protein.
func (r *Run) Disqualified(reason string) { r.DisqualifiedTotal.WithLabelValues(reason).Inc() }

// Annotated adds n lines of aspect.
func (r *Run) Annotated(aspect string, n int) {
	r.AnnotationsTotal.WithLabelValues(aspect).Add(float64(n))
}

// LinesWritten sets the written record count.
func (r *Run) LinesWritten(n int) { r.Lines.Set(float64(n)) }

// RunDuration sets the run wall time.
func (r *Run) RunDuration(d time.Duration) { r.DurationSeconds.Set(d.Seconds()) }

// WriteTextfile writes the registry in the text exposition format for the node exporter.
func (r *Run) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.Registry); err != nil {
		return fmt.Errorf("writing metrics textfile %s: %w", path, err)
	}
	return nil
}
