package domain

import (
	"time"
)

// Dataset is an ordered collection of records of one domain plus the
// append-only flag log and lineage. Records are mutable while the correction
// pass owns them and frozen afterward.
type Dataset struct {
	Domain Domain
	// Lineage.
	Source     string
	IngestedAt time.Time

	Records []*Record
	// Flags is append-only. State transitions add superseding entries;
	// CurrentFlags resolves the latest entry per (record key, rule).
	Flags []ViolationFlag
}

// NewDataset builds a dataset and stamps each record with the lineage
// ingestion timestamp when the record does not carry its own.
func NewDataset(d Domain, source string, ingestedAt time.Time, records []*Record) *Dataset {
	for _, r := range records {
		if r.Ingested.IsZero() {
			r.Ingested = ingestedAt
		}
	}
	return &Dataset{Domain: d, Source: source, IngestedAt: ingestedAt, Records: records}
}

// Version identifies this dataset snapshot for reporting.
func (ds *Dataset) Version() string {
	return string(ds.Domain) + "@" + ds.IngestedAt.UTC().Format(time.RFC3339)
}

// Append adds flag entries to the log. Entries are never removed.
func (ds *Dataset) Append(flags ...ViolationFlag) {
	ds.Flags = append(ds.Flags, flags...)
}

type flagKey struct {
	record string
	row    int
	rule   string
}

// CurrentFlags returns the latest entry per (record, rule), i.e. the live
// state of the audit trail. Log order breaks timestamp ties so a correction
// appended in the same clock tick still supersedes the open entry.
func (ds *Dataset) CurrentFlags() []ViolationFlag {
	latest := make(map[flagKey]ViolationFlag, len(ds.Flags))
	order := make([]flagKey, 0, len(ds.Flags))
	for _, f := range ds.Flags {
		k := flagKey{record: f.RecordKey, row: f.Row, rule: f.RuleName}
		prev, seen := latest[k]
		if !seen {
			order = append(order, k)
			latest[k] = f
			continue
		}
		if !f.CreatedAt.Before(prev.CreatedAt) {
			latest[k] = f
		}
	}
	out := make([]ViolationFlag, 0, len(order))
	for _, k := range order {
		out = append(out, latest[k])
	}
	return out
}

// FlagsForRecord returns the live flags attached to one record.
func (ds *Dataset) FlagsForRecord(r *Record) []ViolationFlag {
	var out []ViolationFlag
	for _, f := range ds.CurrentFlags() {
		if f.Row == r.Row && f.RecordKey == r.Key() {
			out = append(out, f)
		}
	}
	return out
}

// ValidRecords returns the subset not excluded by duplicate removal,
// controlled exclusion, or orphan references. Excluded records stay in
// Records in raw form; they only leave the valid view.
func (ds *Dataset) ValidRecords() []*Record {
	excluded := make(map[int]bool)
	for _, f := range ds.CurrentFlags() {
		if f.Status == FlagUnresolved && f.Excluding() {
			excluded[f.Row] = true
		}
	}
	out := make([]*Record, 0, len(ds.Records))
	for _, r := range ds.Records {
		if !excluded[r.Row] {
			out = append(out, r)
		}
	}
	return out
}

// QualityMetric is a computed (dimension, domain, percentage) triple derived
// from a dataset's live flags at a point in time. Regenerated per call, never
// persisted as mutable state.
type QualityMetric struct {
	Domain         Domain    `json:"domain"`
	Dimension      Dimension `json:"dimension"`
	Percent        float64   `json:"percent"`
	Threshold      float64   `json:"threshold"`
	Applicable     int       `json:"applicable"`
	Failing        int       `json:"failing"`
	DatasetVersion string    `json:"dataset_version"`
	TakenAt        time.Time `json:"taken_at"`
}

// BelowThreshold reports whether this metric breaches its acceptance level.
func (m QualityMetric) BelowThreshold() bool {
	return m.Percent < m.Threshold
}
