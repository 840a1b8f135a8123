package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"dataguard/internal/domain"
)

// Store persists the append-only audit trail. Stores are interface-driven so
// tests can swap the in-memory implementation for Postgres without rewiring
// pipeline code. There is no update or delete: a state transition is a new
// entry.
type Store interface {
	Append(ctx context.Context, entries ...Entry) error
	ListByDomain(ctx context.Context, d domain.Domain) ([]Entry, error)
	ListByRun(ctx context.Context, runID uuid.UUID) ([]Entry, error)
}

// Publisher fans appended entries out to an external sink (e.g. Kafka) for
// downstream reporting. Emission failures must not fail the pipeline pass.
type Publisher interface {
	Publish(ctx context.Context, entries ...Entry) error
}

// Trail couples a store with an optional publisher and stamps entries.
type Trail struct {
	store     Store
	publisher Publisher
	logger    *slog.Logger
	clock     func() time.Time
}

// TrailOption configures a Trail.
type TrailOption func(*Trail)

// WithLogger replaces the default logger used for publish failures.
func WithLogger(logger *slog.Logger) TrailOption {
	return func(t *Trail) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTrail builds the audit trail facade. publisher may be nil.
func NewTrail(store Store, publisher Publisher, opts ...TrailOption) *Trail {
	t := &Trail{store: store, publisher: publisher, logger: slog.Default(), clock: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Record appends flag transitions for a run and forwards them to the
// publisher. The store write is authoritative: once the append succeeded the
// entries are recorded, and a publish failure is logged rather than
// returned so an external sink outage never aborts a pass.
func (t *Trail) Record(ctx context.Context, runID uuid.UUID, flags ...domain.ViolationFlag) error {
	if len(flags) == 0 {
		return nil
	}
	entries := make([]Entry, 0, len(flags))
	for _, f := range flags {
		e := FromFlag(runID, f)
		if e.Timestamp.IsZero() {
			e.Timestamp = t.clock()
		}
		entries = append(entries, e)
	}
	if err := t.store.Append(ctx, entries...); err != nil {
		return err
	}
	if t.publisher != nil {
		if err := t.publisher.Publish(ctx, entries...); err != nil {
			t.logger.WarnContext(ctx, "audit publish failed",
				"run_id", runID, "entries", len(entries), "error", err)
		}
	}
	return nil
}

// List exposes the trail for one domain, oldest first.
func (t *Trail) List(ctx context.Context, d domain.Domain) ([]Entry, error) {
	return t.store.ListByDomain(ctx, d)
}
