package enrich

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dataguard/internal/domain"
)

// Simulated derives supplemental fields the way the analytics team's
// enrichment jobs do: geocoded coordinates from the customer state, automatic
// product categories from the product name, customer age, and delivery lead
// time in days.
type Simulated struct {
	geocoder Geocoder
	clock    func() time.Time
}

// Option configures a Simulated enricher.
type Option func(*Simulated)

// WithClock injects the reference time for age calculations.
func WithClock(clock func() time.Time) Option {
	return func(s *Simulated) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewSimulated builds the enricher around a geocoder.
func NewSimulated(geocoder Geocoder, opts ...Option) *Simulated {
	s := &Simulated{geocoder: geocoder, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enrich returns the supplemental fields for one record. It never mutates the
// record; the pipeline merges the returned fields.
func (s *Simulated) Enrich(ctx context.Context, r *domain.Record) (map[string]any, error) {
	switch r.Domain {
	case domain.DomainCustomer:
		return s.enrichCustomer(ctx, r)
	case domain.DomainProduct:
		return s.enrichProduct(r), nil
	case domain.DomainLogistics:
		return s.enrichLogistics(r), nil
	}
	return nil, nil
}

func (s *Simulated) enrichCustomer(ctx context.Context, r *domain.Record) (map[string]any, error) {
	fields := make(map[string]any)
	if birth, ok := r.Time("birth_date"); ok {
		fields["age"] = ageAt(birth, s.clock())
	}
	if state := r.String("state"); state != "" {
		lat, lng, err := s.geocoder.Locate(ctx, state)
		if err != nil {
			return nil, fmt.Errorf("geocode state %s: %w", state, err)
		}
		fields["latitude"] = lat
		fields["longitude"] = lng
	}
	return fields, nil
}

func (s *Simulated) enrichProduct(r *domain.Record) map[string]any {
	name := strings.ToLower(r.String("product_name"))
	if name == "" {
		return nil
	}
	return map[string]any{"auto_category": categorize(name)}
}

func (s *Simulated) enrichLogistics(r *domain.Record) map[string]any {
	shipped, ok := r.Time("ship_date")
	if !ok {
		return nil
	}
	delivered, ok := r.Time("actual_delivery_date")
	if !ok {
		return nil
	}
	days := int(delivered.Sub(shipped).Hours() / 24)
	return map[string]any{"delivery_days": days}
}

// categorize assigns a category from product-name keywords.
func categorize(name string) string {
	switch {
	case strings.Contains(name, "tv") || strings.Contains(name, "smart"):
		return "Eletronicos"
	case strings.Contains(name, "notebook") || strings.Contains(name, "computador"):
		return "Informatica"
	case strings.Contains(name, "camisa") || strings.Contains(name, "calca"):
		return "Vestuario"
	}
	return "Outros"
}

func ageAt(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.YearDay() < birth.YearDay() {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
