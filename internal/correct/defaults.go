package correct

import "dataguard/internal/domain"

// Defaults maps (domain, field) to the business-rule fill applied when a
// completeness violation has a defined default. Fields without an entry have
// no safe fill; such records are flagged exclusion-required instead of being
// silently dropped.
type Defaults map[domain.Domain]map[string]any

// For returns the fill value for a field, if one is defined.
func (d Defaults) For(dom domain.Domain, field string) (any, bool) {
	fields, ok := d[dom]
	if !ok {
		return nil, false
	}
	v, ok := fields[field]
	return v, ok
}

// BuiltinDefaults returns the data-owner approved fill rules.
func BuiltinDefaults() Defaults {
	return Defaults{
		domain.DomainCustomer: {
			"state": "SP",
			"city":  "Sao Paulo",
			"name":  "Desconhecido",
		},
		domain.DomainProduct: {
			"category": "Outros",
			"active":   true,
		},
		domain.DomainSale: {
			"status": "Pendente",
		},
		domain.DomainLogistics: {
			"delivery_status": "Em transito",
		},
	}
}
