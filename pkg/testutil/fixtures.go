package testutil

import (
	"fmt"
	"time"

	"dataguard/internal/domain"
)

// BaseTime anchors test fixtures so tie-breaks are deterministic.
var BaseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// Record builds a test record ingested at BaseTime.
func Record(d domain.Domain, row int, fields map[string]any) *domain.Record {
	return domain.NewRecord(d, row, BaseTime, fields)
}

// Dataset builds a single-version test dataset from records.
func Dataset(d domain.Domain, records ...*domain.Record) *domain.Dataset {
	return domain.NewDataset(d, "test", BaseTime, records)
}

// Customer builds a fully valid customer record; override fields as needed.
func Customer(row int, overrides map[string]any) *domain.Record {
	fields := map[string]any{
		"customer_id": fmt.Sprintf("C%03d", row),
		"name":        "Maria Silva",
		"email":       fmt.Sprintf("maria%03d@example.com", row),
		"phone":       "11987654321",
		"city":        "Sao Paulo",
		"state":       "SP",
		"birth_date":  "1990-03-15",
	}
	for k, v := range overrides {
		fields[k] = v
	}
	return Record(domain.DomainCustomer, row, fields)
}
