package rules

import (
	"dataguard/internal/domain"
)

// Default thresholds per dimension, overridable per rule via the suite file.
const (
	thresholdCompleteness = 98.0
	thresholdUniqueness   = 100.0
	thresholdValidity     = 95.0
	thresholdConsistency  = 100.0
)

// Default builds the built-in expectation suites for the four dataset
// domains. Registration order is evaluation order.
func Default() (*Registry, error) {
	rg := NewRegistry()
	for _, rule := range builtin() {
		if err := rg.Register(rule); err != nil {
			return nil, err
		}
	}
	return rg, nil
}

func builtin() []domain.Rule {
	completeness := func(d domain.Domain, field string, sev domain.Severity) domain.Rule {
		return domain.Rule{
			Name:      string(d) + "_" + field + "_not_null",
			Domain:    d,
			Dimension: domain.DimCompleteness,
			Field:     field,
			Threshold: thresholdCompleteness,
			Severity:  sev,
			Check:     NotNull(field),
		}
	}
	unique := func(d domain.Domain, field string) domain.Rule {
		return domain.Rule{
			Name:      string(d) + "_" + field + "_unique",
			Domain:    d,
			Dimension: domain.DimUniqueness,
			Field:     field,
			Threshold: thresholdUniqueness,
			Severity:  domain.SeverityHigh,
			Check:     Unique(field),
		}
	}
	validity := func(d domain.Domain, field, suffix string, check domain.Predicate) domain.Rule {
		return domain.Rule{
			Name:      string(d) + "_" + field + "_" + suffix,
			Domain:    d,
			Dimension: domain.DimValidity,
			Field:     field,
			Threshold: thresholdValidity,
			Severity:  domain.SeverityMedium,
			Check:     check,
		}
	}

	return []domain.Rule{
		// Customer suite.
		completeness(domain.DomainCustomer, "customer_id", domain.SeverityHigh),
		completeness(domain.DomainCustomer, "name", domain.SeverityMedium),
		completeness(domain.DomainCustomer, "email", domain.SeverityMedium),
		completeness(domain.DomainCustomer, "city", domain.SeverityLow),
		completeness(domain.DomainCustomer, "state", domain.SeverityLow),
		unique(domain.DomainCustomer, "customer_id"),
		unique(domain.DomainCustomer, "email"),
		validity(domain.DomainCustomer, "email", "format", ValidEmail("email")),
		validity(domain.DomainCustomer, "phone", "format", ValidPhone("phone")),
		validity(domain.DomainCustomer, "state", "format", ValidState("state")),
		validity(domain.DomainCustomer, "birth_date", "parseable", ParseableDate("birth_date")),
		// age only exists after enrichment; absent values skip the check.
		validity(domain.DomainCustomer, "age", "range", IntBetween("age", 0, 120)),

		// Product suite.
		completeness(domain.DomainProduct, "product_id", domain.SeverityHigh),
		completeness(domain.DomainProduct, "product_name", domain.SeverityMedium),
		completeness(domain.DomainProduct, "category", domain.SeverityLow),
		completeness(domain.DomainProduct, "created_at", domain.SeverityLow),
		unique(domain.DomainProduct, "product_id"),
		validity(domain.DomainProduct, "price", "non_negative", NonNegative("price")),
		validity(domain.DomainProduct, "stock", "non_negative", NonNegative("stock")),

		// Sale suite.
		completeness(domain.DomainSale, "sale_id", domain.SeverityHigh),
		completeness(domain.DomainSale, "customer_id", domain.SeverityHigh),
		completeness(domain.DomainSale, "product_id", domain.SeverityHigh),
		completeness(domain.DomainSale, "status", domain.SeverityLow),
		unique(domain.DomainSale, "sale_id"),
		validity(domain.DomainSale, "quantity", "positive", Positive("quantity")),
		validity(domain.DomainSale, "unit_price", "non_negative", NonNegative("unit_price")),
		validity(domain.DomainSale, "total", "non_negative", NonNegative("total")),

		// Logistics suite.
		completeness(domain.DomainLogistics, "delivery_id", domain.SeverityHigh),
		completeness(domain.DomainLogistics, "sale_id", domain.SeverityHigh),
		completeness(domain.DomainLogistics, "delivery_status", domain.SeverityLow),
		unique(domain.DomainLogistics, "delivery_id"),
		validity(domain.DomainLogistics, "ship_date", "parseable", ParseableDate("ship_date")),
		{
			Name:      "logistics_delivery_after_shipment",
			Domain:    domain.DomainLogistics,
			Dimension: domain.DimConsistency,
			Field:     "actual_delivery_date",
			Threshold: thresholdConsistency,
			Severity:  domain.SeverityMedium,
			Check:     DateNotBefore("actual_delivery_date", "ship_date"),
		},
	}
}
