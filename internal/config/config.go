// Package config loads the pattern and keyword tables that drive message
// classification. The tables ship as an embedded YAML document and can be
// overridden from a user config file.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"sms-classifier/internal/models"
)

//go:embed default.yaml
var defaultYAML []byte

// ErrInvalidConfig is returned when the classification tables are unusable.
var ErrInvalidConfig = errors.New("invalid configuration")

// GatekeeperRules decide whether a message is worth classifying at all
type GatekeeperRules struct {
	SenderTokens   []string `mapstructure:"sender_tokens"`
	ActionKeywords []string `mapstructure:"action_keywords"`
}

// AmountRules hold the ordered amount patterns
type AmountRules struct {
	Patterns        []string `mapstructure:"patterns"`
	DefaultCurrency string   `mapstructure:"default_currency"`
}

// DirectionRules hold the debit and credit keyword lists
type DirectionRules struct {
	DebitKeywords  []string `mapstructure:"debit_keywords"`
	CreditKeywords []string `mapstructure:"credit_keywords"`
}

// MerchantRules hold the ordered prepositional merchant patterns
type MerchantRules struct {
	Patterns []string `mapstructure:"patterns"`
}

// KindRules hold the keywords used to pick an instrument kind
type KindRules struct {
	CreditBody   []string `mapstructure:"credit_body"`
	CreditSender []string `mapstructure:"credit_sender"`
	DebitBody    []string `mapstructure:"debit_body"`
	WalletBody   []string `mapstructure:"wallet_body"`
	WalletSender []string `mapstructure:"wallet_sender"`
	AccountBody  []string `mapstructure:"account_body"`
}

// InstrumentRules hold the instrument id pattern groups and kind keywords
type InstrumentRules struct {
	CardPatterns    []string  `mapstructure:"card_patterns"`
	UPIPatterns     []string  `mapstructure:"upi_patterns"`
	AccountPatterns []string  `mapstructure:"account_patterns"`
	Kinds           KindRules `mapstructure:"kinds"`
}

// Rules is the complete, read-only classification configuration
type Rules struct {
	Gatekeeper       GatekeeperRules          `mapstructure:"gatekeeper"`
	Amount           AmountRules              `mapstructure:"amount"`
	Direction        DirectionRules           `mapstructure:"direction"`
	Merchant         MerchantRules            `mapstructure:"merchant"`
	Categories       []models.CategoryRule    `mapstructure:"categories"`
	FallbackCategory string                   `mapstructure:"fallback_category"`
	Instrument       InstrumentRules          `mapstructure:"instrument"`
	Institutions     []models.InstitutionRule `mapstructure:"institutions"`
}

// ReadDefaults loads the embedded defaults into v
func ReadDefaults(v *viper.Viper) error {
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultYAML)); err != nil {
		return fmt.Errorf("error reading embedded configuration: %w", err)
	}
	return nil
}

// Default returns the validated embedded tables
func Default() (*Rules, error) {
	v := viper.New()
	if err := ReadDefaults(v); err != nil {
		return nil, err
	}
	return Load(v)
}

// Load unmarshals and validates the tables held by v
func Load(v *viper.Viper) (*Rules, error) {
	var rules Rules
	if err := v.Unmarshal(&rules); err != nil {
		return nil, fmt.Errorf("error decoding configuration: %w", err)
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &rules, nil
}

// Validate reports every problem in the tables at once
func (r *Rules) Validate() error {
	var problems []error

	problems = append(problems, checkList("gatekeeper.sender_tokens", r.Gatekeeper.SenderTokens)...)
	problems = append(problems, checkList("gatekeeper.action_keywords", r.Gatekeeper.ActionKeywords)...)
	problems = append(problems, checkList("direction.debit_keywords", r.Direction.DebitKeywords)...)
	problems = append(problems, checkList("direction.credit_keywords", r.Direction.CreditKeywords)...)

	problems = append(problems, checkPatterns("amount.patterns", r.Amount.Patterns, "amount")...)
	if r.Amount.DefaultCurrency == "" {
		problems = append(problems, errors.New("amount.default_currency is empty"))
	}
	problems = append(problems, checkPatterns("merchant.patterns", r.Merchant.Patterns, "")...)
	problems = append(problems, checkPatterns("instrument.card_patterns", r.Instrument.CardPatterns, "")...)
	problems = append(problems, checkPatterns("instrument.upi_patterns", r.Instrument.UPIPatterns, "")...)
	problems = append(problems, checkPatterns("instrument.account_patterns", r.Instrument.AccountPatterns, "")...)

	kinds := r.Instrument.Kinds
	problems = append(problems, checkList("instrument.kinds.credit_body", kinds.CreditBody)...)
	problems = append(problems, checkList("instrument.kinds.credit_sender", kinds.CreditSender)...)
	problems = append(problems, checkList("instrument.kinds.debit_body", kinds.DebitBody)...)
	problems = append(problems, checkList("instrument.kinds.wallet_body", kinds.WalletBody)...)
	problems = append(problems, checkList("instrument.kinds.wallet_sender", kinds.WalletSender)...)
	problems = append(problems, checkList("instrument.kinds.account_body", kinds.AccountBody)...)

	problems = append(problems, r.checkCategories()...)
	problems = append(problems, r.checkInstitutions()...)

	if len(problems) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(problems...))
	}
	return nil
}

func (r *Rules) checkCategories() []error {
	var problems []error
	if r.FallbackCategory == "" {
		problems = append(problems, errors.New("fallback_category is empty"))
	}
	if len(r.Categories) == 0 {
		return append(problems, errors.New("categories is empty"))
	}

	seen := make(map[string]bool, len(r.Categories))
	for i, cat := range r.Categories {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			problems = append(problems, fmt.Errorf("categories[%d] has no name", i))
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			problems = append(problems, fmt.Errorf("category %q is defined twice", name))
		}
		seen[key] = true

		if name == r.FallbackCategory {
			// The fallback may be listed, but never votes.
			if len(cat.Keywords) > 0 {
				problems = append(problems, fmt.Errorf("fallback category %q must not have keywords", name))
			}
			continue
		}
		problems = append(problems, checkList("category "+name, cat.Keywords)...)
	}
	return problems
}

func (r *Rules) checkInstitutions() []error {
	if len(r.Institutions) == 0 {
		return []error{errors.New("institutions is empty")}
	}

	var problems []error
	seen := make(map[string]bool, len(r.Institutions))
	for i, inst := range r.Institutions {
		if strings.TrimSpace(inst.Name) == "" {
			problems = append(problems, fmt.Errorf("institutions[%d] has no name", i))
			continue
		}
		if seen[inst.Name] {
			problems = append(problems, fmt.Errorf("institution %q is defined twice", inst.Name))
		}
		seen[inst.Name] = true
		problems = append(problems, checkList("institution "+inst.Name, inst.SenderTokens)...)
	}
	return problems
}

// checkList rejects empty lists, blank entries and case-insensitive duplicates.
func checkList(field string, values []string) []error {
	if len(values) == 0 {
		return []error{fmt.Errorf("%s is empty", field)}
	}

	var problems []error
	seen := make(map[string]bool, len(values))
	for i, v := range values {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			problems = append(problems, fmt.Errorf("%s[%d] is blank", field, i))
			continue
		}
		if seen[key] {
			problems = append(problems, fmt.Errorf("%s has duplicate entry %q", field, v))
		}
		seen[key] = true
	}
	return problems
}

// checkPatterns compiles every pattern and checks that it captures something.
// A non-empty group name must exist as a named group in each pattern.
func checkPatterns(field string, patterns []string, group string) []error {
	problems := checkList(field, patterns)
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			problems = append(problems, fmt.Errorf("%s[%d]: %w", field, i, err))
			continue
		}
		if re.NumSubexp() == 0 {
			problems = append(problems, fmt.Errorf("%s[%d] has no capture group", field, i))
		}
		if group != "" && re.SubexpIndex(group) < 0 {
			problems = append(problems, fmt.Errorf("%s[%d] has no %q group", field, i, group))
		}
	}
	return problems
}
