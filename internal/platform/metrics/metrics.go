package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for pipeline passes.
type Metrics struct {
	RecordsProcessed *prometheus.CounterVec
	FlagTransitions  *prometheus.CounterVec
	StageDuration    *prometheus.HistogramVec
	RunDuration      prometheus.Histogram
}

// New creates and registers all pipeline metrics.
func New() *Metrics {
	return &Metrics{
		RecordsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dataguard_records_processed_total",
			Help: "Records that completed a validate and correct pass, by domain",
		}, []string{"domain"}),

		FlagTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dataguard_flag_transitions_total",
			Help: "Violation flag entries appended, by dimension and status",
		}, []string{"dimension", "status"}),

		StageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dataguard_stage_duration_seconds",
			Help:    "Duration of pipeline stages",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"stage"}), // stage: "validate_correct", "integrity", "enrich", "aggregate"

		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "dataguard_run_duration_seconds",
			Help:    "Duration of full pipeline runs",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}),
	}
}

// ObserveStage records one stage's duration.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m != nil {
		m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// ObserveRun records a full run's duration.
func (m *Metrics) ObserveRun(d time.Duration) {
	if m != nil {
		m.RunDuration.Observe(d.Seconds())
	}
}

// AddRecords counts processed records for a domain.
func (m *Metrics) AddRecords(domain string, n int) {
	if m != nil {
		m.RecordsProcessed.WithLabelValues(domain).Add(float64(n))
	}
}

// CountFlag counts one appended flag entry.
func (m *Metrics) CountFlag(dimension, status string) {
	if m != nil {
		m.FlagTransitions.WithLabelValues(dimension, status).Inc()
	}
}
