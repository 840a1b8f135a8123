package integrity

import (
	"time"

	"dataguard/internal/domain"

	"github.com/google/uuid"
)

// Relationship declares one foreign-key edge between dataset domains.
type Relationship struct {
	Child   domain.Domain
	Parent  domain.Domain
	FKField string
}

// Relationships returns the foreign-key graph of the dataset families.
// Resolution order matters: logistics references sales, which reference
// customers and products, so sales must resolve first.
func Relationships() []Relationship {
	return []Relationship{
		{Child: domain.DomainSale, Parent: domain.DomainCustomer, FKField: "customer_id"},
		{Child: domain.DomainSale, Parent: domain.DomainProduct, FKField: "product_id"},
		{Child: domain.DomainLogistics, Parent: domain.DomainSale, FKField: "sale_id"},
	}
}

// Resolver performs cross-dataset foreign-key checks. It must only run after
// both parent and child datasets finished their own validation and correction
// pass; the pipeline enforces that barrier. An orphan reference is always
// surfaced and never auto-fixed: the resolver cannot invent a valid parent.
type Resolver struct {
	clock func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock injects the timestamp source for raised flags.
func WithClock(clock func() time.Time) Option {
	return func(rv *Resolver) {
		if clock != nil {
			rv.clock = clock
		}
	}
}

func New(opts ...Option) *Resolver {
	rv := &Resolver{clock: time.Now}
	for _, opt := range opts {
		opt(rv)
	}
	return rv
}

// Resolve checks every child record's foreign key against the parent's
// primary-key index and flags unresolved references as orphan-reference,
// unresolved. Orphaned records leave the valid subset but are retained in raw
// form for audit. Only the parent's valid records anchor a reference: a sale
// pointing at a duplicate-removed customer is still an orphan.
func (rv *Resolver) Resolve(child, parent *domain.Dataset, fkField string) []domain.ViolationFlag {
	parents := make(map[string]struct{}, len(parent.Records))
	for _, p := range parent.ValidRecords() {
		if key := p.Key(); key != "" {
			parents[key] = struct{}{}
		}
	}

	now := rv.clock()
	var flags []domain.ViolationFlag
	for _, r := range child.Records {
		// Null FKs are a completeness concern, not an orphan.
		if r.IsNull(fkField) {
			continue
		}
		if _, ok := parents[r.String(fkField)]; ok {
			continue
		}
		flags = append(flags, domain.ViolationFlag{
			ID:        uuid.New(),
			RuleName:  string(child.Domain) + "_" + fkField + "_references_" + string(parent.Domain),
			Domain:    child.Domain,
			Dimension: domain.DimConsistency,
			RecordKey: r.Key(),
			Row:       r.Row,
			Fields:    []string{fkField},
			Severity:  domain.SeverityHigh,
			Status:    domain.FlagUnresolved,
			Reason:    domain.ReasonOrphanReference,
			CreatedAt: now,
		})
	}
	return flags
}
