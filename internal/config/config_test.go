package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	rules, err := Default()
	require.NoError(t, err)

	assert.Len(t, rules.Amount.Patterns, 8)
	assert.Equal(t, "INR", rules.Amount.DefaultCurrency)
	assert.Len(t, rules.Merchant.Patterns, 5)
	assert.Equal(t, "Miscellaneous", rules.FallbackCategory)
	require.Len(t, rules.Categories, 9)
	assert.Equal(t, "Food & Dining", rules.Categories[0].Name)
	assert.Equal(t, "Travel", rules.Categories[8].Name)
	assert.Equal(t, "HDFC", rules.Institutions[0].Name)
	assert.Contains(t, rules.Gatekeeper.ActionKeywords, "خصم")
	assert.Contains(t, rules.Direction.DebitKeywords, "حجزت")
	assert.Equal(t, []string{"credit card"}, rules.Instrument.Kinds.CreditBody)
}

func TestLoad_UserFileReplacesLists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
fallback_category: Other
categories:
  - name: Coffee
    keywords: [espresso, latte]
`), 0600))

	v := viper.New()
	require.NoError(t, ReadDefaults(v))
	v.SetConfigFile(path)
	require.NoError(t, v.MergeInConfig())

	rules, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "Other", rules.FallbackCategory)
	require.Len(t, rules.Categories, 1)
	assert.Equal(t, []string{"espresso", "latte"}, rules.Categories[0].Keywords)
	assert.Len(t, rules.Amount.Patterns, 8, "untouched tables keep their defaults")
}

func TestLoad_InvalidUserFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
merchant:
  patterns:
    - '(unclosed'
`), 0600))

	v := viper.New()
	require.NoError(t, ReadDefaults(v))
	v.SetConfigFile(path)
	require.NoError(t, v.MergeInConfig())

	_, err := Load(v)
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "merchant.patterns[0]")
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	err := (&Rules{}).Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)

	msg := err.Error()
	assert.Contains(t, msg, "gatekeeper.sender_tokens is empty")
	assert.Contains(t, msg, "amount.default_currency is empty")
	assert.Contains(t, msg, "fallback_category is empty")
	assert.Contains(t, msg, "categories is empty")
	assert.Contains(t, msg, "institutions is empty")
}

func TestValidate_FallbackMustNotVote(t *testing.T) {
	rules, err := Default()
	require.NoError(t, err)

	rules.Categories[0].Name = rules.FallbackCategory
	err = rules.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "must not have keywords")
}
