package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasetContext_Occurrences(t *testing.T) {
	ds := NewDataset(DomainCustomer, "test", baseTime, []*Record{
		customer(0, "C001"),
		customer(1, "C001"),
		customer(2, "C002"),
	})
	dc := NewDatasetContext(ds, []string{"customer_id"})

	assert.Equal(t, 2, dc.Occurrences("customer_id", "C001"))
	assert.Equal(t, 1, dc.Occurrences("customer_id", "C002"))
	assert.Zero(t, dc.Occurrences("customer_id", "C999"))
	assert.Equal(t, 3, dc.Total)
}

func TestDatasetContext_NullValuesNotIndexed(t *testing.T) {
	missing := NewRecord(DomainCustomer, 0, baseTime, map[string]any{"customer_id": nil})
	ds := NewDataset(DomainCustomer, "test", baseTime, []*Record{missing, customer(1, "C001")})
	dc := NewDatasetContext(ds, []string{"customer_id"})

	assert.Zero(t, dc.Occurrences("customer_id", ""))
	_, ok := dc.FirstSeenRow("customer_id", "")
	assert.False(t, ok)
}

func TestDatasetContext_FirstSeenTieBreak(t *testing.T) {
	t.Run("earlier ingestion wins regardless of row", func(t *testing.T) {
		early := customer(5, "C001")
		late := customer(0, "C001")
		late.Ingested = baseTime.Add(time.Hour)

		for name, records := range map[string][]*Record{
			"early first": {early, late},
			"late first":  {late, early},
		} {
			t.Run(name, func(t *testing.T) {
				ds := NewDataset(DomainCustomer, "test", baseTime, records)
				dc := NewDatasetContext(ds, []string{"customer_id"})

				row, ok := dc.FirstSeenRow("customer_id", "C001")
				require.True(t, ok)
				assert.Equal(t, 5, row)
			})
		}
	})

	t.Run("equal ingestion falls back to lowest row", func(t *testing.T) {
		a, b := customer(3, "C001"), customer(1, "C001")
		ds := NewDataset(DomainCustomer, "test", baseTime, []*Record{a, b})
		dc := NewDatasetContext(ds, []string{"customer_id"})

		row, ok := dc.FirstSeenRow("customer_id", "C001")
		require.True(t, ok)
		assert.Equal(t, 1, row)
	})
}

func TestDatasetContext_NilReceiverIsSafe(t *testing.T) {
	var dc *DatasetContext
	assert.Zero(t, dc.Occurrences("customer_id", "C001"))
	_, ok := dc.FirstSeenRow("customer_id", "C001")
	assert.False(t, ok)
}
