package domain

import (
	"time"

	"github.com/google/uuid"
)

// FlagStatus is the lifecycle state of a violation flag. Flags are never
// deleted: a correction supersedes an open flag with a resolved or unresolved
// entry, preserving the audit trail.
type FlagStatus string

const (
	FlagOpen       FlagStatus = "open"
	FlagResolved   FlagStatus = "resolved"
	FlagUnresolved FlagStatus = "unresolved"
)

// Reasons carried by superseding flag entries. Resolved reasons describe the
// corrective action that fixed the record; unresolved reasons describe why it
// could not be fixed and what the pipeline did instead.
const (
	ReasonNormalized        = "normalized"
	ReasonDefaultFilled     = "default-filled"
	ReasonDuplicateKept     = "duplicate-kept-first"
	ReasonDateCleared       = "inconsistent-date-cleared"
	ReasonDuplicateRemoved  = "duplicate-removed"
	ReasonExclusionRequired = "exclusion-required"
	ReasonNormalizeFailed   = "normalization-failed"
	ReasonOrphanReference   = "orphan-reference"
	ReasonEnrichUnavailable = "enrichment-unavailable"
)

// ViolationFlag records one rule failure for one record. Entries are
// immutable; state transitions append superseding entries keyed by
// (record key, rule name) with a later timestamp.
type ViolationFlag struct {
	ID        uuid.UUID
	RuleName  string
	Domain    Domain
	Dimension Dimension
	RecordKey string
	Row       int
	Fields    []string
	Severity  Severity
	Status    FlagStatus
	Reason    string
	CreatedAt time.Time
}

// NewFlag opens a flag for a failed rule.
func NewFlag(rule Rule, r *Record, at time.Time) ViolationFlag {
	return ViolationFlag{
		ID:        uuid.New(),
		RuleName:  rule.Name,
		Domain:    rule.Domain,
		Dimension: rule.Dimension,
		RecordKey: r.Key(),
		Row:       r.Row,
		Fields:    []string{rule.Field},
		Severity:  rule.Severity,
		Status:    FlagOpen,
		CreatedAt: at,
	}
}

// Supersede returns a new entry for the same (record, rule) with the outcome
// of a corrective action. The original entry stays in the log untouched.
func (f ViolationFlag) Supersede(status FlagStatus, reason string, at time.Time) ViolationFlag {
	next := f
	next.ID = uuid.New()
	next.Status = status
	next.Reason = reason
	next.CreatedAt = at
	return next
}

// Excluding reports whether this flag removes the record from the valid
// subset of its dataset. Excluded records are retained in raw form for audit.
func (f ViolationFlag) Excluding() bool {
	switch f.Reason {
	case ReasonDuplicateRemoved, ReasonExclusionRequired, ReasonOrphanReference:
		return true
	}
	return false
}
