package domain

import (
	"time"

	"github.com/spf13/cast"
)

// Domain tags a record with the dataset family it belongs to.
type Domain string

const (
	DomainCustomer  Domain = "customer"
	DomainProduct   Domain = "product"
	DomainSale      Domain = "sale"
	DomainLogistics Domain = "logistics"
)

// KeyField returns the primary-key field for the domain.
func (d Domain) KeyField() string {
	switch d {
	case DomainCustomer:
		return "customer_id"
	case DomainProduct:
		return "product_id"
	case DomainSale:
		return "sale_id"
	case DomainLogistics:
		return "delivery_id"
	}
	return ""
}

// Valid reports whether the domain is one of the known dataset families.
func (d Domain) Valid() bool {
	switch d {
	case DomainCustomer, DomainProduct, DomainSale, DomainLogistics:
		return true
	}
	return false
}

// Record is a single row of a dataset: a mapping from field name to a typed
// value. Values are restricted to string, int64, float64, bool, time.Time, or
// nil (null). The Correction Engine is the only component that mutates a
// record in flight; everything else treats records as read-only.
type Record struct {
	Domain Domain
	// Row is the source row index, used as the last-resort tie-break when
	// deduplicating.
	Row int
	// Ingested is the ingestion timestamp from dataset lineage. First
	// tie-break for duplicate primary keys.
	Ingested time.Time
	Fields   map[string]any
}

// NewRecord builds a record with its own field map.
func NewRecord(d Domain, row int, ingested time.Time, fields map[string]any) *Record {
	if fields == nil {
		fields = make(map[string]any)
	}
	return &Record{Domain: d, Row: row, Ingested: ingested, Fields: fields}
}

// Key returns the record's primary-key value as a string, or "" when absent.
func (r *Record) Key() string {
	v, ok := r.Fields[r.Domain.KeyField()]
	if !ok || v == nil {
		return ""
	}
	return cast.ToString(v)
}

// IsNull reports whether the field is missing, nil, or an empty string.
func (r *Record) IsNull(field string) bool {
	v, ok := r.Fields[field]
	if !ok || v == nil {
		return true
	}
	if s, isStr := v.(string); isStr && s == "" {
		return true
	}
	return false
}

// String returns the field coerced to a string. Null fields yield "".
func (r *Record) String(field string) string {
	if r.IsNull(field) {
		return ""
	}
	return cast.ToString(r.Fields[field])
}

// Float returns the field coerced to a float64.
func (r *Record) Float(field string) (float64, error) {
	return cast.ToFloat64E(r.Fields[field])
}

// Int returns the field coerced to an int64.
func (r *Record) Int(field string) (int64, error) {
	return cast.ToInt64E(r.Fields[field])
}

// Bool returns the field coerced to a bool.
func (r *Record) Bool(field string) (bool, error) {
	return cast.ToBoolE(r.Fields[field])
}

// Time returns the field coerced to a time.Time. String values are parsed
// with the usual layouts so records decoded from JSON keep working.
func (r *Record) Time(field string) (time.Time, bool) {
	if r.IsNull(field) {
		return time.Time{}, false
	}
	t, err := cast.ToTimeE(r.Fields[field])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Set writes a field value. Setting nil marks the field null.
func (r *Record) Set(field string, v any) {
	r.Fields[field] = v
}

// Clone returns a deep copy so corrections never alias the original map.
func (r *Record) Clone() *Record {
	fields := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	return &Record{Domain: r.Domain, Row: r.Row, Ingested: r.Ingested, Fields: fields}
}
