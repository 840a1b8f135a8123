package correct

import (
	"time"

	"dataguard/internal/domain"
	"dataguard/internal/rules"
	"dataguard/internal/validate"
)

// Engine applies deterministic corrective actions to records carrying
// violation flags, then re-validates once. It exclusively owns in-flight
// mutation of a record; every correction works on a clone so a pass aborted
// mid-dataset leaves no partially corrected record behind.
type Engine struct {
	validator *validate.Validator
	registry  *rules.Registry
	defaults  Defaults
	clock     func() time.Time
}

// Result is the outcome of correcting one record. Resolved and Unresolved
// are superseding entries for the input flags; Opened are violations a
// corrective action exposed (e.g. clearing an inconsistent date raises a
// completeness flag on the now-null field).
type Result struct {
	Record     *domain.Record
	Resolved   []domain.ViolationFlag
	Unresolved []domain.ViolationFlag
	Opened     []domain.ViolationFlag
}

// Changed reports whether the correction produced any flag transitions.
func (res Result) Changed() bool {
	return len(res.Resolved) > 0 || len(res.Unresolved) > 0 || len(res.Opened) > 0
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock injects the timestamp source for superseding flag entries.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithDefaults replaces the built-in completeness fill rules.
func WithDefaults(d Defaults) Option {
	return func(e *Engine) { e.defaults = d }
}

func New(validator *validate.Validator, registry *rules.Registry, opts ...Option) *Engine {
	e := &Engine{
		validator: validator,
		registry:  registry,
		defaults:  BuiltinDefaults(),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Correct applies one corrective action per violation kind, re-validates the
// mutated record exactly once, and reports which flags resolved. Correcting a
// record with no flags is a no-op: the record comes back unchanged with empty
// sets, which is what makes reprocessing idempotent.
func (e *Engine) Correct(r *domain.Record, flags []domain.ViolationFlag, dc *domain.DatasetContext) Result {
	open := actionable(flags)
	if len(open) == 0 {
		return Result{Record: r}
	}

	corrected := r.Clone()
	actions := make(map[string]string, len(open))
	for _, f := range open {
		if action := e.apply(corrected, f, dc); action != "" {
			actions[f.RuleName] = action
		}
	}

	// Single bounded re-validation pass; no correction loops.
	now := e.clock()
	revalidated := e.validator.Validate(corrected, dc)
	failing := make(map[string]bool, len(revalidated))
	for _, f := range revalidated {
		failing[f.RuleName] = true
	}

	res := Result{Record: corrected}
	known := make(map[string]bool, len(open))
	for _, f := range open {
		known[f.RuleName] = true
		// The uniqueness index holds raw values, so the tie-break consults
		// the uncorrected record.
		res.addOutcome(f, r, dc, failing, actions, now)
	}

	// Violations exposed by a corrective action open fresh flags.
	for _, nf := range revalidated {
		if !known[nf.RuleName] {
			res.Opened = append(res.Opened, nf)
		}
	}
	return res
}

// addOutcome supersedes one input flag with its post-correction state. For
// uniqueness, r must be the uncorrected record: the first-seen index is built
// from raw values, and a normalization applied in the same pass would make
// the lookup miss.
func (res *Result) addOutcome(f domain.ViolationFlag, r *domain.Record, dc *domain.DatasetContext, failing map[string]bool, actions map[string]string, now time.Time) {
	// Uniqueness never changes the key value, so the re-validation pass still
	// sees the duplicate. The outcome is decided by the first-seen tie-break:
	// the canonical record keeps its place, every other copy is removed from
	// the valid subset.
	if f.Dimension == domain.DimUniqueness {
		field := flagField(f)
		first, ok := dc.FirstSeenRow(field, r.String(field))
		if ok && first == r.Row {
			res.Resolved = append(res.Resolved, f.Supersede(domain.FlagResolved, domain.ReasonDuplicateKept, now))
		} else {
			res.Unresolved = append(res.Unresolved, f.Supersede(domain.FlagUnresolved, domain.ReasonDuplicateRemoved, now))
		}
		return
	}

	if !failing[f.RuleName] {
		reason := actions[f.RuleName]
		if reason == "" {
			reason = domain.ReasonNormalized
		}
		res.Resolved = append(res.Resolved, f.Supersede(domain.FlagResolved, reason, now))
		return
	}

	res.Unresolved = append(res.Unresolved, f.Supersede(domain.FlagUnresolved, unresolvedReason(f.Dimension), now))
}

// apply mutates the record for one flag and names the action taken, or ""
// when no corrective action exists for the violation kind.
func (e *Engine) apply(r *domain.Record, f domain.ViolationFlag, dc *domain.DatasetContext) string {
	field := flagField(f)
	switch f.Dimension {
	case domain.DimCompleteness:
		if !r.IsNull(field) {
			return ""
		}
		if value, ok := e.defaults.For(r.Domain, field); ok {
			r.Set(field, value)
			return domain.ReasonDefaultFilled
		}
		return ""
	case domain.DimValidity:
		if normalize(r, field) {
			return domain.ReasonNormalized
		}
		return ""
	case domain.DimConsistency:
		// A delivery stamped before its shipment is a recording error; clear
		// the impossible date rather than invent one. The resulting null is
		// the same state as a pending delivery, so no further flag is raised.
		if _, ok := r.Time(field); ok {
			r.Set(field, nil)
			return domain.ReasonDateCleared
		}
		return ""
	}
	return ""
}

// actionable filters to flags a correction can still act on. Resolved entries
// and terminal exclusions are audit history, not work.
func actionable(flags []domain.ViolationFlag) []domain.ViolationFlag {
	var open []domain.ViolationFlag
	for _, f := range flags {
		if f.Status == domain.FlagOpen {
			open = append(open, f)
		}
	}
	return open
}

func unresolvedReason(d domain.Dimension) string {
	switch d {
	case domain.DimCompleteness:
		return domain.ReasonExclusionRequired
	case domain.DimValidity:
		return domain.ReasonNormalizeFailed
	}
	return domain.ReasonNormalizeFailed
}

func flagField(f domain.ViolationFlag) string {
	if len(f.Fields) == 0 {
		return ""
	}
	return f.Fields[0]
}
