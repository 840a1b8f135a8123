package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"dataguard/internal/domain"
)

// SuiteFile tunes the built-in expectation suites without code changes:
// per-rule thresholds, severities, and disabling. Shape:
//
//	suites:
//	  customer:
//	    - rule: customer_email_not_null
//	      threshold: 99.5
//	    - rule: customer_phone_format
//	      enabled: false
type SuiteFile struct {
	Suites map[string][]RuleOverride `yaml:"suites"`
}

// RuleOverride adjusts one built-in rule.
type RuleOverride struct {
	Rule      string   `yaml:"rule"`
	Threshold *float64 `yaml:"threshold,omitempty"`
	Severity  string   `yaml:"severity,omitempty"`
	Enabled   *bool    `yaml:"enabled,omitempty"`
}

// Load builds the default registry and applies overrides from path. An empty
// path returns the defaults untouched.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suite file: %w", err)
	}
	var file SuiteFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse suite file: %w", err)
	}
	return withOverrides(file)
}

func withOverrides(file SuiteFile) (*Registry, error) {
	overrides := make(map[string]RuleOverride)
	for domainName, entries := range file.Suites {
		if !domain.Domain(domainName).Valid() {
			return nil, fmt.Errorf("suite file: unknown domain %q", domainName)
		}
		for _, o := range entries {
			overrides[domainName+"/"+o.Rule] = o
		}
	}

	rg := NewRegistry()
	for _, rule := range builtin() {
		o, found := overrides[string(rule.Domain)+"/"+rule.Name]
		if found {
			delete(overrides, string(rule.Domain)+"/"+rule.Name)
			if o.Enabled != nil && !*o.Enabled {
				continue
			}
			if o.Threshold != nil {
				rule.Threshold = *o.Threshold
			}
			if o.Severity != "" {
				rule.Severity = domain.Severity(o.Severity)
			}
		}
		if err := rg.Register(rule); err != nil {
			return nil, err
		}
	}
	for key := range overrides {
		return nil, fmt.Errorf("suite file: override for unknown rule %q", key)
	}
	return rg, nil
}
