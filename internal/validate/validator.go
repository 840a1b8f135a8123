package validate

import (
	"time"

	"dataguard/internal/domain"
	"dataguard/internal/rules"
)

// Validator evaluates records against the registry's expectation suites.
// Validation is a pure function of (record, context): no mutation, repeatable,
// and each rule is evaluated independently so flags accumulate rather than
// short-circuit.
type Validator struct {
	registry *rules.Registry
	clock    func() time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock injects the timestamp source for raised flags.
func WithClock(clock func() time.Time) Option {
	return func(v *Validator) {
		if clock != nil {
			v.clock = clock
		}
	}
}

func New(registry *rules.Registry, opts ...Option) *Validator {
	v := &Validator{registry: registry, clock: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Context builds the per-pass key index for a dataset. Build it once per
// pass; concurrent readers are safe after construction.
func (v *Validator) Context(ds *domain.Dataset) *domain.DatasetContext {
	return domain.NewDatasetContext(ds, v.registry.UniqueFields(ds.Domain))
}

// Validate evaluates every applicable rule against one record and returns the
// raised flags. A null field skips validity and consistency rules for that
// field but still triggers completeness.
func (v *Validator) Validate(r *domain.Record, dc *domain.DatasetContext) []domain.ViolationFlag {
	var flags []domain.ViolationFlag
	now := v.clock()
	for _, rule := range v.registry.RulesFor(r.Domain) {
		if skipsNull(rule.Dimension) && r.IsNull(rule.Field) {
			continue
		}
		if !rule.Check(r, dc) {
			flags = append(flags, domain.NewFlag(rule, r, now))
		}
	}
	return flags
}

// ValidateDataset builds the key index once and validates each record,
// appending raised flags to the dataset's audit log.
func (v *Validator) ValidateDataset(ds *domain.Dataset) []domain.ViolationFlag {
	dc := v.Context(ds)
	var flags []domain.ViolationFlag
	for _, r := range ds.Records {
		flags = append(flags, v.Validate(r, dc)...)
	}
	return flags
}

// skipsNull reports whether a null field exempts the record from the rule.
// Completeness owns null detection; uniqueness ignores null keys because the
// index never stores them.
func skipsNull(d domain.Dimension) bool {
	switch d {
	case domain.DimValidity, domain.DimConsistency, domain.DimAccuracy, domain.DimTimeliness:
		return true
	}
	return false
}
