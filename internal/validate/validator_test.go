package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataguard/internal/domain"
	"dataguard/internal/rules"
	"dataguard/pkg/testutil"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	rg, err := rules.Default()
	require.NoError(t, err)
	return New(rg, WithClock(func() time.Time { return testutil.BaseTime }))
}

func dimensions(flags []domain.ViolationFlag) map[domain.Dimension]int {
	out := make(map[domain.Dimension]int)
	for _, f := range flags {
		out[f.Dimension]++
	}
	return out
}

func TestValidate_Completeness(t *testing.T) {
	v := newValidator(t)

	t.Run("null required field raises a completeness flag", func(t *testing.T) {
		r := testutil.Customer(0, map[string]any{"email": nil})
		ds := testutil.Dataset(domain.DomainCustomer, r)

		flags := v.Validate(r, v.Context(ds))

		require.NotEmpty(t, flags)
		assert.Equal(t, 1, dimensions(flags)[domain.DimCompleteness])
		assert.Equal(t, domain.FlagOpen, flags[0].Status)
	})

	t.Run("empty string counts as null", func(t *testing.T) {
		r := testutil.Customer(0, map[string]any{"name": ""})
		ds := testutil.Dataset(domain.DomainCustomer, r)

		flags := v.Validate(r, v.Context(ds))
		assert.Equal(t, 1, dimensions(flags)[domain.DimCompleteness])
	})

	t.Run("null field skips validity but still triggers completeness", func(t *testing.T) {
		r := testutil.Customer(0, map[string]any{"email": nil})
		ds := testutil.Dataset(domain.DomainCustomer, r)

		flags := v.Validate(r, v.Context(ds))
		dims := dimensions(flags)
		assert.Equal(t, 1, dims[domain.DimCompleteness])
		assert.Zero(t, dims[domain.DimValidity])
	})
}

func TestValidate_Validity(t *testing.T) {
	v := newValidator(t)

	cases := []struct {
		name   string
		field  string
		value  any
		expect int
	}{
		{"well-formed email passes", "email", "cliente@email.com", 0},
		{"untrimmed uppercase email fails", "email", "Cliente@EMAIL.com ", 1},
		{"eleven digit phone passes", "phone", "11987654321", 0},
		{"formatted phone fails", "phone", "(11) 98765-4321", 1},
		{"uppercase two letter state passes", "state", "RJ", 0},
		{"lowercase state fails", "state", "rj", 1},
		{"three letter state fails", "state", "RIO", 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := testutil.Customer(0, map[string]any{tc.field: tc.value})
			ds := testutil.Dataset(domain.DomainCustomer, r)

			flags := v.Validate(r, v.Context(ds))
			count := 0
			for _, f := range flags {
				if f.Dimension == domain.DimValidity && f.Fields[0] == tc.field {
					count++
				}
			}
			assert.Equal(t, tc.expect, count)
		})
	}
}

func TestValidate_Uniqueness(t *testing.T) {
	v := newValidator(t)

	t.Run("duplicate primary keys flag every copy", func(t *testing.T) {
		a := testutil.Customer(0, map[string]any{"customer_id": "C001"})
		b := testutil.Customer(1, map[string]any{"customer_id": "C001"})
		ds := testutil.Dataset(domain.DomainCustomer, a, b)
		dc := v.Context(ds)

		for _, r := range []*domain.Record{a, b} {
			flags := v.Validate(r, dc)
			assert.Equal(t, 1, dimensions(flags)[domain.DimUniqueness], "record row %d", r.Row)
		}
	})

	t.Run("unique keys raise nothing", func(t *testing.T) {
		a := testutil.Customer(0, nil)
		b := testutil.Customer(1, nil)
		ds := testutil.Dataset(domain.DomainCustomer, a, b)
		dc := v.Context(ds)

		assert.Empty(t, v.Validate(a, dc))
		assert.Empty(t, v.Validate(b, dc))
	})
}

func TestValidate_Consistency(t *testing.T) {
	v := newValidator(t)

	t.Run("delivery before shipment is flagged", func(t *testing.T) {
		r := testutil.Record(domain.DomainLogistics, 0, map[string]any{
			"delivery_id":          "D001",
			"sale_id":              "S001",
			"delivery_status":      "Entregue",
			"ship_date":            "2024-05-10",
			"actual_delivery_date": "2024-05-08",
		})
		ds := testutil.Dataset(domain.DomainLogistics, r)

		flags := v.Validate(r, v.Context(ds))
		assert.Equal(t, 1, dimensions(flags)[domain.DimConsistency])
	})

	t.Run("null delivery date skips the consistency rule", func(t *testing.T) {
		r := testutil.Record(domain.DomainLogistics, 0, map[string]any{
			"delivery_id":     "D001",
			"sale_id":         "S001",
			"delivery_status": "Em transito",
			"ship_date":       "2024-05-10",
		})
		ds := testutil.Dataset(domain.DomainLogistics, r)

		flags := v.Validate(r, v.Context(ds))
		assert.Zero(t, dimensions(flags)[domain.DimConsistency])
	})
}

func TestValidate_IsPure(t *testing.T) {
	v := newValidator(t)

	r := testutil.Customer(0, map[string]any{"email": "Cliente@EMAIL.com "})
	ds := testutil.Dataset(domain.DomainCustomer, r)
	dc := v.Context(ds)

	first := v.Validate(r, dc)
	second := v.Validate(r, dc)

	// Same failures both times, record untouched.
	require.Equal(t, len(first), len(second))
	assert.Equal(t, "Cliente@EMAIL.com ", r.Fields["email"])
	for i := range first {
		assert.Equal(t, first[i].RuleName, second[i].RuleName)
	}
}
