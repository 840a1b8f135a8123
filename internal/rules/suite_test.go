package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataguard/internal/domain"
)

func writeSuite(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suites.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		rg, err := Load("")
		require.NoError(t, err)
		assert.NotEmpty(t, rg.RulesFor(domain.DomainCustomer))
	})

	t.Run("threshold override applies", func(t *testing.T) {
		path := writeSuite(t, `
suites:
  customer:
    - rule: customer_email_not_null
      threshold: 99.5
`)
		rg, err := Load(path)
		require.NoError(t, err)

		rule, ok := rg.Find(domain.DomainCustomer, "customer_email_not_null")
		require.True(t, ok)
		assert.InDelta(t, 99.5, rule.Threshold, 0.001)
	})

	t.Run("disabled rule is dropped from the suite", func(t *testing.T) {
		path := writeSuite(t, `
suites:
  customer:
    - rule: customer_phone_format
      enabled: false
`)
		rg, err := Load(path)
		require.NoError(t, err)

		_, ok := rg.Find(domain.DomainCustomer, "customer_phone_format")
		assert.False(t, ok)
	})

	t.Run("unknown rule override fails load", func(t *testing.T) {
		path := writeSuite(t, `
suites:
  customer:
    - rule: no_such_rule
      threshold: 50
`)
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("unknown domain fails load", func(t *testing.T) {
		path := writeSuite(t, `
suites:
  warehouse:
    - rule: anything
`)
		_, err := Load(path)
		assert.Error(t, err)
	})
}
