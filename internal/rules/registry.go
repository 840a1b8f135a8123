package rules

import (
	"fmt"

	"dataguard/internal/domain"
)

// DuplicateRuleError signals registry misconfiguration: the same
// (domain, dimension, field) triple registered twice. Fatal at load time.
type DuplicateRuleError struct {
	Domain    domain.Domain
	Dimension domain.Dimension
	Field     string
}

func (e *DuplicateRuleError) Error() string {
	return fmt.Sprintf("rule already registered for (%s, %s, %s)", e.Domain, e.Dimension, e.Field)
}

type ruleKey struct {
	domain    domain.Domain
	dimension domain.Dimension
	field     string
}

// Registry holds per-domain expectation suites. It is populated at load time
// and read-only thereafter; rules for a domain are evaluated in registration
// order so passes are deterministic.
type Registry struct {
	byDomain map[domain.Domain][]domain.Rule
	seen     map[ruleKey]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		byDomain: make(map[domain.Domain][]domain.Rule),
		seen:     make(map[ruleKey]struct{}),
	}
}

// Register adds a rule to its domain's suite.
func (rg *Registry) Register(rule domain.Rule) error {
	if rule.Name == "" || !rule.Domain.Valid() {
		return fmt.Errorf("rule %q: missing name or unknown domain %q", rule.Name, rule.Domain)
	}
	if rule.Check == nil {
		return fmt.Errorf("rule %q: nil predicate", rule.Name)
	}
	key := ruleKey{domain: rule.Domain, dimension: rule.Dimension, field: rule.Field}
	if _, dup := rg.seen[key]; dup {
		return &DuplicateRuleError{Domain: rule.Domain, Dimension: rule.Dimension, Field: rule.Field}
	}
	rg.seen[key] = struct{}{}
	rg.byDomain[rule.Domain] = append(rg.byDomain[rule.Domain], rule)
	return nil
}

// RulesFor returns the domain's suite in registration order. Callers must not
// mutate the returned slice.
func (rg *Registry) RulesFor(d domain.Domain) []domain.Rule {
	return rg.byDomain[d]
}

// UniqueFields returns the fields covered by uniqueness rules for a domain,
// in registration order. The validator builds its per-pass key index from
// this set.
func (rg *Registry) UniqueFields(d domain.Domain) []string {
	var fields []string
	for _, rule := range rg.byDomain[d] {
		if rule.Dimension == domain.DimUniqueness {
			fields = append(fields, rule.Field)
		}
	}
	return fields
}

// Find returns a registered rule by name.
func (rg *Registry) Find(d domain.Domain, name string) (domain.Rule, bool) {
	for _, rule := range rg.byDomain[d] {
		if rule.Name == name {
			return rule, true
		}
	}
	return domain.Rule{}, false
}
