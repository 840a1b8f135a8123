package storage

import (
	"context"
	"errors"
	"time"

	"dataguard/internal/domain"
)

// ErrNotFound keeps storage 404s consistent across the in-memory and
// Postgres implementations.
var ErrNotFound = errors.New("dataset not found")

// DatasetStore persists dataset versions, addressable by
// (domain, ingestion timestamp). Stores are interface-driven so the pipeline
// and the HTTP surface stay testable against the in-memory implementation.
type DatasetStore interface {
	Put(ctx context.Context, ds *domain.Dataset) error
	Get(ctx context.Context, d domain.Domain, ingestedAt time.Time) (*domain.Dataset, error)
	Latest(ctx context.Context, d domain.Domain) (*domain.Dataset, error)
	Versions(ctx context.Context, d domain.Domain) ([]time.Time, error)
}
