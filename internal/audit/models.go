package audit

import (
	"time"

	"github.com/google/uuid"

	"dataguard/internal/domain"
)

// Entry is one appended flag transition in the audit trail, keyed by
// (record key, rule name, timestamp). Entries are immutable; a correction
// appends a superseding entry rather than editing an earlier one, which is
// what gives reports their traceability.
type Entry struct {
	ID        uuid.UUID         `json:"id" db:"id"`
	RunID     uuid.UUID         `json:"run_id" db:"run_id"`
	Domain    domain.Domain     `json:"domain" db:"domain"`
	RecordKey string            `json:"record_key" db:"record_key"`
	Row       int               `json:"row" db:"row_index"`
	RuleName  string            `json:"rule" db:"rule_name"`
	Dimension domain.Dimension  `json:"dimension" db:"dimension"`
	Severity  domain.Severity   `json:"severity" db:"severity"`
	Status    domain.FlagStatus `json:"status" db:"status"`
	Reason    string            `json:"reason,omitempty" db:"reason"`
	Timestamp time.Time         `json:"timestamp" db:"created_at"`
}

// FromFlag converts a violation flag into its audit entry for a run.
func FromFlag(runID uuid.UUID, f domain.ViolationFlag) Entry {
	return Entry{
		ID:        f.ID,
		RunID:     runID,
		Domain:    f.Domain,
		RecordKey: f.RecordKey,
		Row:       f.Row,
		RuleName:  f.RuleName,
		Dimension: f.Dimension,
		Severity:  f.Severity,
		Status:    f.Status,
		Reason:    f.Reason,
		Timestamp: f.CreatedAt,
	}
}

