package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"dataguard/internal/audit"
	"dataguard/internal/correct"
	"dataguard/internal/domain"
	"dataguard/internal/enrich"
	"dataguard/internal/integrity"
	"dataguard/internal/platform/metrics"
	"dataguard/internal/quality"
	"dataguard/internal/validate"
)

const defaultWorkers = 8

// Pipeline runs the dataset-wide batch passes in order: validate and correct
// per domain, cross-domain referential resolution, enrichment, aggregation.
// Per-record work within a domain runs in parallel; the integrity stage only
// starts once every domain finished its local pass (the cross-domain
// barrier).
type Pipeline struct {
	validator  *validate.Validator
	engine     *correct.Engine
	resolver   *integrity.Resolver
	aggregator *quality.Aggregator
	enricher   enrich.Enricher
	trail      *audit.Trail
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	workers    int
	clock      func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithEnricher attaches the enrichment hook. Without one the enrichment
// stage is skipped.
func WithEnricher(e enrich.Enricher) Option {
	return func(p *Pipeline) { p.enricher = e }
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithWorkers bounds per-record parallelism within a domain pass.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithClock injects the timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(p *Pipeline) {
		if clock != nil {
			p.clock = clock
		}
	}
}

func New(
	validator *validate.Validator,
	engine *correct.Engine,
	resolver *integrity.Resolver,
	aggregator *quality.Aggregator,
	trail *audit.Trail,
	logger *slog.Logger,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		validator:  validator,
		engine:     engine,
		resolver:   resolver,
		aggregator: aggregator,
		trail:      trail,
		logger:     logger,
		tracer:     otel.Tracer("dataguard/pipeline"),
		workers:    defaultWorkers,
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RunResult is the outcome of one full pipeline run.
type RunResult struct {
	RunID     uuid.UUID                         `json:"run_id"`
	StartedAt time.Time                         `json:"started_at"`
	Duration  time.Duration                     `json:"duration"`
	Report    quality.Report                    `json:"report"`
	Datasets  map[domain.Domain]*domain.Dataset `json:"-"`
}

// Run executes a full pass over the given datasets. On context cancellation
// the error is returned and the datasets keep every correction completed up
// to the abort point; per-record corrections are atomic so no record is left
// half-mutated.
func (p *Pipeline) Run(ctx context.Context, datasets map[domain.Domain]*domain.Dataset) (*RunResult, error) {
	runID := uuid.New()
	started := p.clock()
	ctx, span := p.tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(attribute.String("run_id", runID.String())))
	defer span.End()

	p.logger.InfoContext(ctx, "pipeline run started",
		"run_id", runID, "datasets", len(datasets))

	// Stage 1: domain-local validation and correction.
	for _, d := range orderedDomains(datasets) {
		if err := p.validateAndCorrect(ctx, runID, datasets[d]); err != nil {
			return nil, fmt.Errorf("validate/correct %s: %w", d, err)
		}
	}

	// Barrier: every domain finished its local pass; cross-domain checks may
	// now trust the parents' valid subsets.
	if err := p.resolveIntegrity(ctx, runID, datasets); err != nil {
		return nil, fmt.Errorf("referential integrity: %w", err)
	}

	if p.enricher != nil {
		if err := p.enrichDatasets(ctx, runID, datasets); err != nil {
			return nil, fmt.Errorf("enrichment: %w", err)
		}
	}

	report := p.aggregate(ctx, datasets)

	duration := time.Since(started)
	p.metrics.ObserveRun(duration)
	p.logger.InfoContext(ctx, "pipeline run finished",
		"run_id", runID,
		"duration_ms", duration.Milliseconds(),
		"violations", len(report.Violations),
	)

	return &RunResult{
		RunID:     runID,
		StartedAt: started,
		Duration:  duration,
		Report:    report,
		Datasets:  datasets,
	}, nil
}

// validateAndCorrect runs the local pass for one dataset. Records are
// processed in parallel; flag appends happen after the wait so the log order
// is deterministic (record order, then rule order).
func (p *Pipeline) validateAndCorrect(ctx context.Context, runID uuid.UUID, ds *domain.Dataset) error {
	start := p.clock()
	ctx, span := p.tracer.Start(ctx, "pipeline.validate_correct",
		trace.WithAttributes(attribute.String("domain", string(ds.Domain))))
	defer span.End()

	// Key index built once per pass, single writer; read-only afterward.
	dc := p.validator.Context(ds)

	perRecord := make([][]domain.ViolationFlag, len(ds.Records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, r := range ds.Records {
		i, r := i, r
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			open := p.validator.Validate(r, dc)
			res := p.engine.Correct(r, open, dc)
			// The correction is atomic per record: the clone swaps in whole.
			ds.Records[i] = res.Record
			flags := make([]domain.ViolationFlag, 0, len(open)+len(res.Resolved)+len(res.Unresolved)+len(res.Opened))
			flags = append(flags, open...)
			flags = append(flags, res.Resolved...)
			flags = append(flags, res.Unresolved...)
			flags = append(flags, res.Opened...)
			perRecord[i] = flags
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var appended []domain.ViolationFlag
	for _, flags := range perRecord {
		appended = append(appended, flags...)
	}
	ds.Append(appended...)
	p.countFlags(appended)
	p.metrics.AddRecords(string(ds.Domain), len(ds.Records))
	p.metrics.ObserveStage("validate_correct", time.Since(start))

	return p.trail.Record(ctx, runID, appended...)
}

// resolveIntegrity walks the foreign-key graph in dependency order.
func (p *Pipeline) resolveIntegrity(ctx context.Context, runID uuid.UUID, datasets map[domain.Domain]*domain.Dataset) error {
	start := p.clock()
	ctx, span := p.tracer.Start(ctx, "pipeline.integrity")
	defer span.End()

	for _, rel := range integrity.Relationships() {
		if err := ctx.Err(); err != nil {
			return err
		}
		child, okChild := datasets[rel.Child]
		parent, okParent := datasets[rel.Parent]
		if !okChild || !okParent {
			continue
		}
		flags := p.resolver.Resolve(child, parent, rel.FKField)
		if len(flags) == 0 {
			continue
		}
		child.Append(flags...)
		p.countFlags(flags)
		p.logger.WarnContext(ctx, "orphan references detected",
			"run_id", runID,
			"child", rel.Child,
			"parent", rel.Parent,
			"fk", rel.FKField,
			"count", len(flags),
		)
		if err := p.trail.Record(ctx, runID, flags...); err != nil {
			return err
		}
	}
	p.metrics.ObserveStage("integrity", time.Since(start))
	return nil
}

// enrichDatasets merges supplemental fields. A failing hook degrades the
// record's quality flags only; the pass continues.
func (p *Pipeline) enrichDatasets(ctx context.Context, runID uuid.UUID, datasets map[domain.Domain]*domain.Dataset) error {
	start := p.clock()
	ctx, span := p.tracer.Start(ctx, "pipeline.enrich")
	defer span.End()

	for _, d := range orderedDomains(datasets) {
		ds := datasets[d]
		var flags []domain.ViolationFlag
		for _, r := range ds.Records {
			if err := ctx.Err(); err != nil {
				return err
			}
			fields, err := p.enricher.Enrich(ctx, r)
			if err != nil {
				p.logger.WarnContext(ctx, "enrichment unavailable",
					"run_id", runID, "domain", d, "record", r.Key(), "error", err)
				flags = append(flags, enrichmentFlag(r, p.clock()))
				continue
			}
			for field, value := range fields {
				r.Set(field, value)
			}
		}
		if len(flags) > 0 {
			ds.Append(flags...)
			p.countFlags(flags)
			if err := p.trail.Record(ctx, runID, flags...); err != nil {
				return err
			}
		}
	}
	p.metrics.ObserveStage("enrich", time.Since(start))
	return nil
}

func (p *Pipeline) aggregate(ctx context.Context, datasets map[domain.Domain]*domain.Dataset) quality.Report {
	start := p.clock()
	_, span := p.tracer.Start(ctx, "pipeline.aggregate")
	defer span.End()
	report := p.aggregator.Compile(datasets)
	p.metrics.ObserveStage("aggregate", time.Since(start))
	return report
}

func (p *Pipeline) countFlags(flags []domain.ViolationFlag) {
	for _, f := range flags {
		p.metrics.CountFlag(string(f.Dimension), string(f.Status))
	}
}

func enrichmentFlag(r *domain.Record, at time.Time) domain.ViolationFlag {
	return domain.ViolationFlag{
		ID:        uuid.New(),
		RuleName:  string(r.Domain) + "_enrichment",
		Domain:    r.Domain,
		Dimension: domain.DimAccuracy,
		RecordKey: r.Key(),
		Row:       r.Row,
		Severity:  domain.SeverityLow,
		Status:    domain.FlagUnresolved,
		Reason:    domain.ReasonEnrichUnavailable,
		CreatedAt: at,
	}
}

func orderedDomains(datasets map[domain.Domain]*domain.Dataset) []domain.Domain {
	out := make([]domain.Domain, 0, len(datasets))
	for d := range datasets {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
