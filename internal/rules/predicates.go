package rules

import (
	"regexp"

	"dataguard/internal/domain"
)

// Predicates are pure: no I/O, no mutation, repeatable for the same inputs.
// Null handling lives in the validator, which skips validity and consistency
// rules for null fields; predicates may assume the field carries a value
// unless they are completeness checks.

var (
	emailPattern = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)
	phonePattern = regexp.MustCompile(`^\d{10,11}$`)
	statePattern = regexp.MustCompile(`^[A-Z]{2}$`)
)

// NotNull is the completeness predicate: field present and non-null/non-empty.
func NotNull(field string) domain.Predicate {
	return func(r *domain.Record, _ *domain.DatasetContext) bool {
		return !r.IsNull(field)
	}
}

// Unique passes when the field's value occurs exactly once in the dataset.
// Requires the per-pass context; without one the check cannot run and passes.
func Unique(field string) domain.Predicate {
	return func(r *domain.Record, dc *domain.DatasetContext) bool {
		if dc == nil || r.IsNull(field) {
			return true
		}
		return dc.Occurrences(field, r.String(field)) <= 1
	}
}

// Matches checks the field against a compiled pattern.
func Matches(field string, re *regexp.Regexp) domain.Predicate {
	return func(r *domain.Record, _ *domain.DatasetContext) bool {
		return re.MatchString(r.String(field))
	}
}

// ValidEmail, ValidPhone, and ValidState are the format checks from the
// customer expectation suite.
func ValidEmail(field string) domain.Predicate { return Matches(field, emailPattern) }
func ValidPhone(field string) domain.Predicate { return Matches(field, phonePattern) }
func ValidState(field string) domain.Predicate { return Matches(field, statePattern) }

// NonNegative passes for numeric fields >= 0.
func NonNegative(field string) domain.Predicate {
	return func(r *domain.Record, _ *domain.DatasetContext) bool {
		v, err := r.Float(field)
		return err == nil && v >= 0
	}
}

// Positive passes for numeric fields > 0.
func Positive(field string) domain.Predicate {
	return func(r *domain.Record, _ *domain.DatasetContext) bool {
		v, err := r.Float(field)
		return err == nil && v > 0
	}
}

// IntBetween passes for integer fields in [min, max).
func IntBetween(field string, min, max int64) domain.Predicate {
	return func(r *domain.Record, _ *domain.DatasetContext) bool {
		v, err := r.Int(field)
		return err == nil && v >= min && v < max
	}
}

// ParseableDate passes when the field holds a date or a parseable date string.
func ParseableDate(field string) domain.Predicate {
	return func(r *domain.Record, _ *domain.DatasetContext) bool {
		_, ok := r.Time(field)
		return ok
	}
}

// DateNotBefore is the locally detectable consistency check: the field must
// not precede the reference field. Either side being null passes; the
// completeness rules own null detection.
func DateNotBefore(field, reference string) domain.Predicate {
	return func(r *domain.Record, _ *domain.DatasetContext) bool {
		a, ok := r.Time(field)
		if !ok {
			return true
		}
		b, ok := r.Time(reference)
		if !ok {
			return true
		}
		return !a.Before(b)
	}
}
