package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"dataguard/internal/domain"
)

// PostgresDatasetStore persists dataset versions as JSONB snapshots. A
// version row is written once per (domain, ingested_at) and replaced
// wholesale when the pipeline finalizes a pass; the flag trail itself lives
// in the audit store.
//
//	CREATE TABLE dataset_versions (
//	    domain       TEXT        NOT NULL,
//	    ingested_at  TIMESTAMPTZ NOT NULL,
//	    source       TEXT        NOT NULL,
//	    records      JSONB       NOT NULL,
//	    flags        JSONB       NOT NULL,
//	    PRIMARY KEY (domain, ingested_at)
//	);
type PostgresDatasetStore struct {
	db *sqlx.DB
}

func NewPostgresDatasetStore(db *sqlx.DB) *PostgresDatasetStore {
	return &PostgresDatasetStore{db: db}
}

type datasetRow struct {
	Domain     string          `db:"domain"`
	IngestedAt time.Time       `db:"ingested_at"`
	Source     string          `db:"source"`
	Records    json.RawMessage `db:"records"`
	Flags      json.RawMessage `db:"flags"`
}

type recordSnapshot struct {
	Row      int            `json:"row"`
	Ingested time.Time      `json:"ingested"`
	Fields   map[string]any `json:"fields"`
}

func (s *PostgresDatasetStore) Put(ctx context.Context, ds *domain.Dataset) error {
	snapshots := make([]recordSnapshot, 0, len(ds.Records))
	for _, r := range ds.Records {
		snapshots = append(snapshots, recordSnapshot{Row: r.Row, Ingested: r.Ingested, Fields: r.Fields})
	}
	records, err := json.Marshal(snapshots)
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	flags, err := json.Marshal(ds.Flags)
	if err != nil {
		return fmt.Errorf("marshal flags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO dataset_versions (domain, ingested_at, source, records, flags)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (domain, ingested_at) DO UPDATE SET
			source  = EXCLUDED.source,
			records = EXCLUDED.records,
			flags   = EXCLUDED.flags
	`, ds.Domain, ds.IngestedAt, ds.Source, records, flags)
	if err != nil {
		return fmt.Errorf("put dataset %s: %w", ds.Version(), err)
	}
	return nil
}

func (s *PostgresDatasetStore) Get(ctx context.Context, d domain.Domain, ingestedAt time.Time) (*domain.Dataset, error) {
	var row datasetRow
	err := s.db.GetContext(ctx, &row, `
		SELECT domain, ingested_at, source, records, flags
		FROM dataset_versions
		WHERE domain = $1 AND ingested_at = $2
	`, d, ingestedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get dataset %s@%s: %w", d, ingestedAt, err)
	}
	return row.toDataset()
}

func (s *PostgresDatasetStore) Latest(ctx context.Context, d domain.Domain) (*domain.Dataset, error) {
	var row datasetRow
	err := s.db.GetContext(ctx, &row, `
		SELECT domain, ingested_at, source, records, flags
		FROM dataset_versions
		WHERE domain = $1
		ORDER BY ingested_at DESC
		LIMIT 1
	`, d)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest dataset %s: %w", d, err)
	}
	return row.toDataset()
}

func (s *PostgresDatasetStore) Versions(ctx context.Context, d domain.Domain) ([]time.Time, error) {
	var out []time.Time
	err := s.db.SelectContext(ctx, &out, `
		SELECT ingested_at FROM dataset_versions
		WHERE domain = $1
		ORDER BY ingested_at
	`, d)
	if err != nil {
		return nil, fmt.Errorf("versions for %s: %w", d, err)
	}
	return out, nil
}

func (row datasetRow) toDataset() (*domain.Dataset, error) {
	var snapshots []recordSnapshot
	if err := json.Unmarshal(row.Records, &snapshots); err != nil {
		return nil, fmt.Errorf("unmarshal records: %w", err)
	}
	d := domain.Domain(row.Domain)
	records := make([]*domain.Record, 0, len(snapshots))
	for _, snap := range snapshots {
		records = append(records, domain.NewRecord(d, snap.Row, snap.Ingested, snap.Fields))
	}
	ds := domain.NewDataset(d, row.Source, row.IngestedAt, records)
	if err := json.Unmarshal(row.Flags, &ds.Flags); err != nil {
		return nil, fmt.Errorf("unmarshal flags: %w", err)
	}
	return ds, nil
}
