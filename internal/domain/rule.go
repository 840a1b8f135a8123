package domain

// Dimension classifies a rule by the quality property it protects.
type Dimension string

const (
	DimCompleteness Dimension = "completeness"
	DimUniqueness   Dimension = "uniqueness"
	DimValidity     Dimension = "validity"
	DimConsistency  Dimension = "consistency"
	DimAccuracy     Dimension = "accuracy"
	DimTimeliness   Dimension = "timeliness"
	DimTraceability Dimension = "traceability"
)

// Severity ranks how much a violation degrades the dataset.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Predicate evaluates one expectation against a record. It must be pure:
// no mutation of the record or the context, repeatable for the same inputs.
// It returns true when the record satisfies the expectation.
type Predicate func(r *Record, dc *DatasetContext) bool

// Rule is a named expectation over one field (or the whole record) of one
// domain. Rules are configuration: created at registry load time, never
// mutated at runtime.
type Rule struct {
	Name      string
	Domain    Domain
	Dimension Dimension
	Field     string
	// Threshold is the acceptable percentage of passing records, e.g. 98.
	Threshold float64
	Severity  Severity
	Check     Predicate
}
