package domain

// DatasetContext carries the per-pass indexes uniqueness predicates consult.
// It is built once per validation pass (single writer) and read concurrently
// afterward; it is never mutated after Freeze-by-convention, so no locking is
// needed on the read path.
type DatasetContext struct {
	Total int
	// occurrences[field][value] = number of records carrying value in field.
	occurrences map[string]map[string]int
	// firstSeen[field][value] = row of the canonical record for value, chosen
	// by lowest ingestion timestamp, then lowest row index.
	firstSeen map[string]map[string]int
}

// NewDatasetContext indexes the dataset for the given unique fields.
// Null values are not indexed: a missing key is a completeness problem, not a
// uniqueness one.
func NewDatasetContext(ds *Dataset, uniqueFields []string) *DatasetContext {
	dc := &DatasetContext{
		Total:       len(ds.Records),
		occurrences: make(map[string]map[string]int, len(uniqueFields)),
		firstSeen:   make(map[string]map[string]int, len(uniqueFields)),
	}
	for _, field := range uniqueFields {
		dc.occurrences[field] = make(map[string]int)
		dc.firstSeen[field] = make(map[string]int)
	}
	canonical := make(map[string]map[string]*Record, len(uniqueFields))
	for _, field := range uniqueFields {
		canonical[field] = make(map[string]*Record)
	}
	for _, r := range ds.Records {
		for _, field := range uniqueFields {
			if r.IsNull(field) {
				continue
			}
			value := r.String(field)
			dc.occurrences[field][value]++
			if earlier(r, canonical[field][value]) {
				canonical[field][value] = r
				dc.firstSeen[field][value] = r.Row
			}
		}
	}
	return dc
}

// earlier implements the deduplication tie-break: lowest ingestion timestamp
// wins, lowest row index breaks remaining ties. Input order never matters.
func earlier(a, b *Record) bool {
	if b == nil {
		return true
	}
	if !a.Ingested.Equal(b.Ingested) {
		return a.Ingested.Before(b.Ingested)
	}
	return a.Row < b.Row
}

// Occurrences returns how many records carry value in field.
func (dc *DatasetContext) Occurrences(field, value string) int {
	if dc == nil {
		return 0
	}
	return dc.occurrences[field][value]
}

// FirstSeenRow returns the canonical row for a duplicated value and whether
// the value was indexed at all.
func (dc *DatasetContext) FirstSeenRow(field, value string) (int, bool) {
	if dc == nil {
		return 0, false
	}
	row, ok := dc.firstSeen[field][value]
	return row, ok
}
