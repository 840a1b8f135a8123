package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"dataguard/internal/domain"
	"dataguard/internal/enrich/mock"
	"dataguard/pkg/testutil"
)

func newSimulated() *Simulated {
	return NewSimulated(NewStaticGeocoder(), WithClock(func() time.Time { return testutil.BaseTime }))
}

func TestEnrich_CustomerAgeAndCoordinates(t *testing.T) {
	s := newSimulated()

	r := testutil.Customer(0, map[string]any{"state": "RJ", "birth_date": "1990-03-15"})
	fields, err := s.Enrich(context.Background(), r)
	require.NoError(t, err)

	assert.Equal(t, 34, fields["age"])
	assert.InDelta(t, -22.90, fields["latitude"].(float64), 0.001)
	assert.InDelta(t, -43.20, fields["longitude"].(float64), 0.001)
}

func TestEnrich_GeocoderFailurePropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	geo := mock.NewMockGeocoder(ctrl)
	geo.EXPECT().
		Locate(gomock.Any(), "SP").
		Return(0.0, 0.0, errors.New("upstream timeout"))

	s := NewSimulated(geo, WithClock(func() time.Time { return testutil.BaseTime }))

	_, err := s.Enrich(context.Background(), testutil.Customer(0, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "geocode state SP")
}

func TestEnrich_ProductAutoCategory(t *testing.T) {
	s := newSimulated()

	cases := []struct {
		name     string
		product  string
		category string
	}{
		{"tv keyword", "Smart TV 50 polegadas", "Eletronicos"},
		{"notebook keyword", "Notebook Gamer", "Informatica"},
		{"clothing keyword", "Camisa Polo", "Vestuario"},
		{"no keyword", "Cafeteira Eletrica", "Outros"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := testutil.Record(domain.DomainProduct, 0, map[string]any{
				"product_id": "P001", "product_name": tc.product,
			})
			fields, err := s.Enrich(context.Background(), r)
			require.NoError(t, err)
			assert.Equal(t, tc.category, fields["auto_category"])
		})
	}
}

func TestEnrich_LogisticsDeliveryDays(t *testing.T) {
	s := newSimulated()

	r := testutil.Record(domain.DomainLogistics, 0, map[string]any{
		"delivery_id":          "D001",
		"sale_id":              "S001",
		"ship_date":            "2024-05-10",
		"actual_delivery_date": "2024-05-14",
	})
	fields, err := s.Enrich(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, 4, fields["delivery_days"])
}

func TestEnrich_LogisticsWithoutDeliveryDateIsSkipped(t *testing.T) {
	s := newSimulated()

	r := testutil.Record(domain.DomainLogistics, 0, map[string]any{
		"delivery_id": "D001",
		"sale_id":     "S001",
		"ship_date":   "2024-05-10",
	})
	fields, err := s.Enrich(context.Background(), r)
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestEnrich_SalesHaveNoSupplementalFields(t *testing.T) {
	s := newSimulated()

	r := testutil.Record(domain.DomainSale, 0, map[string]any{"sale_id": "S001"})
	fields, err := s.Enrich(context.Background(), r)
	require.NoError(t, err)
	assert.Empty(t, fields)
}
