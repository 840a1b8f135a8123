package quality

import (
	"math"
	"sort"
	"time"

	"dataguard/internal/domain"
	"dataguard/internal/rules"
)

// Aggregator consolidates a dataset's live flag state into per-dimension
// quality metrics. It only ever reads finalized datasets; every call
// recomputes from the current flags so a report always reflects a specific
// dataset version, never a cached one.
type Aggregator struct {
	registry *rules.Registry
	clock    func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock injects the report timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(a *Aggregator) {
		if clock != nil {
			a.clock = clock
		}
	}
}

func New(registry *rules.Registry, opts ...Option) *Aggregator {
	a := &Aggregator{registry: registry, clock: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate computes one metric per dimension that has at least one rule
// registered for the dataset's domain. Percentage = records without
// unresolved flags for the dimension / total applicable records x 100.
// Cross-dataset flags raised by the integrity resolver land in the child
// dataset's log, so they count here too.
func (a *Aggregator) Aggregate(ds *domain.Dataset) map[domain.Dimension]domain.QualityMetric {
	thresholds := make(map[domain.Dimension]float64)
	for _, rule := range a.registry.RulesFor(ds.Domain) {
		if t, ok := thresholds[rule.Dimension]; !ok || rule.Threshold < t {
			thresholds[rule.Dimension] = rule.Threshold
		}
	}

	failingRows := make(map[domain.Dimension]map[int]struct{})
	for _, f := range ds.CurrentFlags() {
		if f.Status != domain.FlagOpen && f.Status != domain.FlagUnresolved {
			continue
		}
		if failingRows[f.Dimension] == nil {
			failingRows[f.Dimension] = make(map[int]struct{})
		}
		failingRows[f.Dimension][f.Row] = struct{}{}
		// Integrity flags have no registered rule; still report the dimension.
		if _, ok := thresholds[f.Dimension]; !ok {
			thresholds[f.Dimension] = 100
		}
	}

	now := a.clock()
	total := len(ds.Records)
	metrics := make(map[domain.Dimension]domain.QualityMetric, len(thresholds))
	for dim, threshold := range thresholds {
		failing := len(failingRows[dim])
		percent := 100.0
		if total > 0 {
			percent = float64(total-failing) / float64(total) * 100
		}
		metrics[dim] = domain.QualityMetric{
			Domain:         ds.Domain,
			Dimension:      dim,
			Percent:        round2(percent),
			Threshold:      threshold,
			Applicable:     total,
			Failing:        failing,
			DatasetVersion: ds.Version(),
			TakenAt:        now,
		}
	}
	return metrics
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Violation is one metric that breached its acceptance threshold, as it
// appears in the executive report.
type Violation struct {
	Metric          domain.QualityMetric `json:"metric"`
	AffectedRecords int                  `json:"affected_records"`
}

// Report is the consolidated quality view over one pipeline run.
type Report struct {
	GeneratedAt time.Time                                            `json:"generated_at"`
	Datasets    map[domain.Domain]map[domain.Dimension]domain.QualityMetric `json:"datasets"`
	Violations  []Violation                                          `json:"violations"`
}

// Compile aggregates every dataset and collects threshold breaches. The
// violation list is ordered by domain then dimension so reports diff cleanly
// between runs.
func (a *Aggregator) Compile(datasets map[domain.Domain]*domain.Dataset) Report {
	report := Report{
		GeneratedAt: a.clock(),
		Datasets:    make(map[domain.Domain]map[domain.Dimension]domain.QualityMetric, len(datasets)),
	}
	for d, ds := range datasets {
		metrics := a.Aggregate(ds)
		report.Datasets[d] = metrics
		for _, m := range metrics {
			if m.BelowThreshold() {
				report.Violations = append(report.Violations, Violation{
					Metric:          m,
					AffectedRecords: m.Failing,
				})
			}
		}
	}
	sort.Slice(report.Violations, func(i, j int) bool {
		a, b := report.Violations[i].Metric, report.Violations[j].Metric
		if a.Domain != b.Domain {
			return a.Domain < b.Domain
		}
		return a.Dimension < b.Dimension
	})
	return report
}
