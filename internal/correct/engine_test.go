package correct

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataguard/internal/domain"
	"dataguard/internal/rules"
	"dataguard/internal/validate"
	"dataguard/pkg/testutil"
)

func newEngine(t *testing.T) (*Engine, *validate.Validator) {
	t.Helper()
	rg, err := rules.Default()
	require.NoError(t, err)
	clock := func() time.Time { return testutil.BaseTime.Add(time.Minute) }
	v := validate.New(rg, validate.WithClock(clock))
	return New(v, rg, WithClock(clock)), v
}

func reasons(flags []domain.ViolationFlag) []string {
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		out = append(out, f.Reason)
	}
	return out
}

func TestCorrect_NormalizesValues(t *testing.T) {
	cases := []struct {
		name  string
		field string
		dirty string
		clean string
	}{
		{"email lowercased and trimmed", "email", "Cliente@EMAIL.com ", "cliente@email.com"},
		{"phone stripped to digits", "phone", "(11) 98765-4321", "11987654321"},
		{"short phone padded to eleven digits", "phone", "1187654321", "01187654321"},
		{"state uppercased", "state", "sp", "SP"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine, v := newEngine(t)
			r := testutil.Customer(0, map[string]any{tc.field: tc.dirty})
			ds := testutil.Dataset(domain.DomainCustomer, r)
			dc := v.Context(ds)
			flags := v.Validate(r, dc)
			require.NotEmpty(t, flags)

			res := engine.Correct(r, flags, dc)

			assert.Equal(t, tc.clean, res.Record.String(tc.field))
			assert.Contains(t, reasons(res.Resolved), domain.ReasonNormalized)
			assert.Empty(t, res.Unresolved)
			// The input record is never mutated in place.
			assert.Equal(t, tc.dirty, r.Fields[tc.field])
		})
	}
}

func TestCorrect_FillsDefaults(t *testing.T) {
	engine, v := newEngine(t)

	r := testutil.Customer(0, map[string]any{"state": nil, "city": nil, "name": nil})
	ds := testutil.Dataset(domain.DomainCustomer, r)
	dc := v.Context(ds)
	flags := v.Validate(r, dc)
	require.Len(t, flags, 3)

	res := engine.Correct(r, flags, dc)

	assert.Equal(t, "SP", res.Record.String("state"))
	assert.Equal(t, "Sao Paulo", res.Record.String("city"))
	assert.Equal(t, "Desconhecido", res.Record.String("name"))
	assert.Len(t, res.Resolved, 3)
	for _, f := range res.Resolved {
		assert.Equal(t, domain.ReasonDefaultFilled, f.Reason)
	}
}

func TestCorrect_MissingKeyRequiresExclusion(t *testing.T) {
	engine, v := newEngine(t)

	// No default exists for the primary key, so the record cannot be saved.
	r := testutil.Customer(0, map[string]any{"customer_id": nil})
	ds := testutil.Dataset(domain.DomainCustomer, r)
	dc := v.Context(ds)
	flags := v.Validate(r, dc)
	require.NotEmpty(t, flags)

	res := engine.Correct(r, flags, dc)

	require.Len(t, res.Unresolved, 1)
	assert.Equal(t, domain.ReasonExclusionRequired, res.Unresolved[0].Reason)
	assert.True(t, res.Unresolved[0].Excluding())
}

func TestCorrect_UnfixablePhoneStaysUnresolved(t *testing.T) {
	engine, v := newEngine(t)

	// Twelve digits cannot be coerced into the national format.
	r := testutil.Customer(0, map[string]any{"phone": "119876543210"})
	ds := testutil.Dataset(domain.DomainCustomer, r)
	dc := v.Context(ds)
	flags := v.Validate(r, dc)
	require.NotEmpty(t, flags)

	res := engine.Correct(r, flags, dc)

	require.Len(t, res.Unresolved, 1)
	assert.Equal(t, domain.ReasonNormalizeFailed, res.Unresolved[0].Reason)
	assert.False(t, res.Unresolved[0].Excluding())
}

func TestCorrect_DeduplicationKeepsFirstSeen(t *testing.T) {
	engine, v := newEngine(t)

	older := testutil.Record(domain.DomainCustomer, 3, map[string]any{
		"customer_id": "C001", "name": "Maria Silva", "email": "maria@example.com",
		"phone": "11987654321", "city": "Sao Paulo", "state": "SP", "birth_date": "1990-03-15",
	})
	newer := testutil.Record(domain.DomainCustomer, 0, map[string]any{
		"customer_id": "C001", "name": "Maria S.", "email": "maria2@example.com",
		"phone": "11987654322", "city": "Campinas", "state": "SP", "birth_date": "1990-03-15",
	})
	newer.Ingested = testutil.BaseTime.Add(time.Hour)

	// Input order must not decide the keeper; only ingestion time and row do.
	for name, records := range map[string][]*domain.Record{
		"older first": {older, newer},
		"newer first": {newer, older},
	} {
		t.Run(name, func(t *testing.T) {
			ds := testutil.Dataset(domain.DomainCustomer, records...)
			dc := v.Context(ds)

			keeper := engine.Correct(older, v.Validate(older, dc), dc)
			loser := engine.Correct(newer, v.Validate(newer, dc), dc)

			assert.Contains(t, reasons(keeper.Resolved), domain.ReasonDuplicateKept)
			assert.Contains(t, reasons(loser.Unresolved), domain.ReasonDuplicateRemoved)
		})
	}
}

func TestCorrect_DeduplicationSurvivesNormalization(t *testing.T) {
	engine, v := newEngine(t)

	// Both records share a duplicated email that also fails the format check.
	// Normalizing it must not confuse the tie-break: the index holds the raw
	// value, and the first-seen copy stays the keeper.
	keeper := testutil.Customer(0, map[string]any{"email": "Dup@Example.com "})
	loser := testutil.Customer(1, map[string]any{"email": "Dup@Example.com "})
	ds := testutil.Dataset(domain.DomainCustomer, keeper, loser)
	dc := v.Context(ds)

	resKeeper := engine.Correct(keeper, v.Validate(keeper, dc), dc)
	resLoser := engine.Correct(loser, v.Validate(loser, dc), dc)

	assert.Equal(t, "dup@example.com", resKeeper.Record.String("email"))
	assert.Contains(t, reasons(resKeeper.Resolved), domain.ReasonDuplicateKept)
	assert.NotContains(t, reasons(resKeeper.Unresolved), domain.ReasonDuplicateRemoved)
	assert.Contains(t, reasons(resLoser.Unresolved), domain.ReasonDuplicateRemoved)
}

func TestCorrect_InconsistentDateCleared(t *testing.T) {
	engine, v := newEngine(t)

	r := testutil.Record(domain.DomainLogistics, 0, map[string]any{
		"delivery_id":          "D001",
		"sale_id":              "S001",
		"delivery_status":      "Entregue",
		"ship_date":            "2024-05-10",
		"actual_delivery_date": "2024-05-08",
	})
	ds := testutil.Dataset(domain.DomainLogistics, r)
	dc := v.Context(ds)
	flags := v.Validate(r, dc)
	require.NotEmpty(t, flags)

	res := engine.Correct(r, flags, dc)

	assert.True(t, res.Record.IsNull("actual_delivery_date"))
	assert.Contains(t, reasons(res.Resolved), domain.ReasonDateCleared)
	// A null delivery date is the pending-delivery state; nothing new opens.
	assert.Empty(t, res.Opened)
}

func TestCorrect_IsIdempotent(t *testing.T) {
	engine, v := newEngine(t)

	r := testutil.Customer(0, map[string]any{"email": "Cliente@EMAIL.com "})
	ds := testutil.Dataset(domain.DomainCustomer, r)
	dc := v.Context(ds)

	first := engine.Correct(r, v.Validate(r, dc), dc)
	require.True(t, first.Changed())

	// The corrected record carries no open flags, so a second pass is a no-op.
	second := engine.Correct(first.Record, first.Resolved, dc)
	assert.False(t, second.Changed())
	assert.Same(t, first.Record, second.Record)
}

func TestCorrect_NoFlagsIsNoOp(t *testing.T) {
	engine, v := newEngine(t)

	r := testutil.Customer(0, nil)
	ds := testutil.Dataset(domain.DomainCustomer, r)

	res := engine.Correct(r, nil, v.Context(ds))
	assert.False(t, res.Changed())
	assert.Same(t, r, res.Record)
}
