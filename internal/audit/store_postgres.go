package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"dataguard/internal/domain"
)

// PostgresStore persists the audit trail in the flag_audit table. The table
// carries no UPDATE path; uniqueness on (record_key, rule_name, created_at)
// plus insert-only access is what enforces the append-only contract.
type PostgresStore struct {
	db *sqlx.DB
}

// Schema for the audit trail. Applied by migrations, kept here for reference:
//
//	CREATE TABLE flag_audit (
//	    id          UUID PRIMARY KEY,
//	    run_id      UUID        NOT NULL,
//	    domain      TEXT        NOT NULL,
//	    record_key  TEXT        NOT NULL,
//	    row_index   INT         NOT NULL,
//	    rule_name   TEXT        NOT NULL,
//	    dimension   TEXT        NOT NULL,
//	    severity    TEXT        NOT NULL,
//	    status      TEXT        NOT NULL,
//	    reason      TEXT        NOT NULL DEFAULT '',
//	    created_at  TIMESTAMPTZ NOT NULL,
//	    UNIQUE (record_key, rule_name, created_at)
//	);
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO flag_audit (id, run_id, domain, record_key, row_index, rule_name, dimension, severity, status, reason, created_at)
		VALUES (:id, :run_id, :domain, :record_key, :row_index, :rule_name, :dimension, :severity, :status, :reason, :created_at)
	`, entries)
	if err != nil {
		return fmt.Errorf("append audit entries: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByDomain(ctx context.Context, d domain.Domain) ([]Entry, error) {
	var out []Entry
	err := s.db.SelectContext(ctx, &out, `
		SELECT id, run_id, domain, record_key, row_index, rule_name, dimension, severity, status, reason, created_at
		FROM flag_audit
		WHERE domain = $1
		ORDER BY created_at, id
	`, d)
	if err != nil {
		return nil, fmt.Errorf("list audit entries for %s: %w", d, err)
	}
	return out, nil
}

func (s *PostgresStore) ListByRun(ctx context.Context, runID uuid.UUID) ([]Entry, error) {
	var out []Entry
	err := s.db.SelectContext(ctx, &out, `
		SELECT id, run_id, domain, record_key, row_index, rule_name, dimension, severity, status, reason, created_at
		FROM flag_audit
		WHERE run_id = $1
		ORDER BY created_at, id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list audit entries for run %s: %w", runID, err)
	}
	return out, nil
}
