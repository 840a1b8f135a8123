package enrich

import (
	"context"

	"dataguard/internal/domain"
)

//go:generate mockgen -source=enricher.go -destination=mock/enricher.go -package=mock

// Enricher is the hook the pipeline calls to derive supplemental fields for a
// record. Implementations live outside the core; failures are non-fatal and
// only degrade the record's quality flags.
type Enricher interface {
	Enrich(ctx context.Context, r *domain.Record) (map[string]any, error)
}

// Geocoder resolves a two-letter state code to coordinates.
type Geocoder interface {
	Locate(ctx context.Context, state string) (lat, lng float64, err error)
}
