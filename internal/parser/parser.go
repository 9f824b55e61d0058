// Package parser extracts transaction facts from bank and payment
// notification messages. A Parser is built once from validated tables and is
// safe for concurrent use: it holds only compiled, read-only state.
package parser

import (
	"fmt"
	"regexp"
	"strings"

	"sms-classifier/internal/categorizer"
	"sms-classifier/internal/config"
	"sms-classifier/internal/models"
)

// Parser runs the classification pipeline over single messages
type Parser struct {
	senderTokens   []string
	actionKeywords []string

	amountPatterns  []*regexp.Regexp
	defaultCurrency string

	debitKeywords  []string
	creditKeywords []string

	merchantPatterns []*regexp.Regexp

	cardPatterns    []*regexp.Regexp
	upiPatterns     []*regexp.Regexp
	accountPatterns []*regexp.Regexp
	kinds           config.KindRules

	institutions []models.InstitutionRule

	categorizer *categorizer.Categorizer
}

// New creates a Parser from rules. Invalid rules are reported up front so a
// misconfigured table fails at start-up instead of per message.
func New(rules *config.Rules) (*Parser, error) {
	if rules == nil {
		return nil, fmt.Errorf("%w: no rules", config.ErrInvalidConfig)
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	cat, err := categorizer.New(rules.Categories, rules.FallbackCategory)
	if err != nil {
		return nil, err
	}

	p := &Parser{
		senderTokens:    lowerAll(rules.Gatekeeper.SenderTokens),
		actionKeywords:  lowerAll(rules.Gatekeeper.ActionKeywords),
		defaultCurrency: rules.Amount.DefaultCurrency,
		debitKeywords:   lowerAll(rules.Direction.DebitKeywords),
		creditKeywords:  lowerAll(rules.Direction.CreditKeywords),
		kinds: config.KindRules{
			CreditBody:   lowerAll(rules.Instrument.Kinds.CreditBody),
			CreditSender: lowerAll(rules.Instrument.Kinds.CreditSender),
			DebitBody:    lowerAll(rules.Instrument.Kinds.DebitBody),
			WalletBody:   lowerAll(rules.Instrument.Kinds.WalletBody),
			WalletSender: lowerAll(rules.Instrument.Kinds.WalletSender),
			AccountBody:  lowerAll(rules.Instrument.Kinds.AccountBody),
		},
		institutions: upperInstitutions(rules.Institutions),
		categorizer:  cat,
	}

	groups := []struct {
		field    string
		patterns []string
		dst      *[]*regexp.Regexp
	}{
		{"amount.patterns", rules.Amount.Patterns, &p.amountPatterns},
		{"merchant.patterns", rules.Merchant.Patterns, &p.merchantPatterns},
		{"instrument.card_patterns", rules.Instrument.CardPatterns, &p.cardPatterns},
		{"instrument.upi_patterns", rules.Instrument.UPIPatterns, &p.upiPatterns},
		{"instrument.account_patterns", rules.Instrument.AccountPatterns, &p.accountPatterns},
	}
	for _, g := range groups {
		compiled, err := compileAll(g.field, g.patterns)
		if err != nil {
			return nil, err
		}
		*g.dst = compiled
	}

	return p, nil
}

// Categories returns the configured category names
func (p *Parser) Categories() []string {
	return p.categorizer.Categories()
}

func compileAll(field string, patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for i, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %w", config.ErrInvalidConfig, field, i, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}

func upperInstitutions(rules []models.InstitutionRule) []models.InstitutionRule {
	out := make([]models.InstitutionRule, len(rules))
	for i, rule := range rules {
		tokens := make([]string, len(rule.SenderTokens))
		for j, tok := range rule.SenderTokens {
			tokens[j] = strings.ToUpper(tok)
		}
		out[i] = models.InstitutionRule{Name: rule.Name, SenderTokens: tokens}
	}
	return out
}
