package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"sms-classifier/internal/models"
	"sms-classifier/internal/utils"
)

const (
	maxHandleLength = 20
	phoneLength     = 10
)

// DetectInstrumentID finds the paying instrument referenced in body.
// Card suffixes win over UPI handles, and UPI handles over the bare account
// fallback; inside a group the first listed pattern that matches wins.
func (p *Parser) DetectInstrumentID(body, sender string) (string, bool) {
	if id, ok := firstCapture(p.cardPatterns, body); ok {
		return id, true
	}

	for _, re := range p.upiPatterns {
		match := re.FindStringSubmatch(body)
		if len(match) < 2 {
			continue
		}
		handle := match[1]
		if strings.Contains(handle, "@") {
			return models.UPIPrefix + utils.Truncate(handle, maxHandleLength), true
		}
		if utf8.RuneCountInString(handle) == phoneLength {
			return models.UPIPrefix + utils.LastN(handle, 4), true
		}
	}

	return firstCapture(p.accountPatterns, body)
}

// DetectInstrumentKind infers the instrument kind. The checks run in a fixed
// order and the first one that holds decides.
func (p *Parser) DetectInstrumentKind(id, body, sender string) models.InstrumentKind {
	lowerBody := strings.ToLower(body)
	lowerSender := strings.ToLower(sender)
	k := p.kinds

	switch {
	case strings.HasPrefix(id, models.UPIPrefix):
		return models.KindUPI
	case utils.Contains(lowerBody, k.CreditBody...) || utils.Contains(lowerSender, k.CreditSender...):
		return models.KindCreditCard
	case utils.Contains(lowerBody, k.DebitBody...):
		return models.KindDebitCard
	case utils.Contains(lowerBody, k.WalletBody...) || utils.Contains(lowerSender, k.WalletSender...):
		return models.KindWallet
	case utils.Contains(lowerBody, k.AccountBody...):
		return models.KindBankAccount
	default:
		return models.KindUnknown
	}
}

// ResolveInstitution maps a sender id to the first institution in table
// order with an alias contained in it. Matching ignores case.
func (p *Parser) ResolveInstitution(sender string) (string, bool) {
	upperSender := strings.ToUpper(sender)
	for _, inst := range p.institutions {
		if utils.Contains(upperSender, inst.SenderTokens...) {
			return inst.Name, true
		}
	}
	return "", false
}

// BuildLabel renders the human-readable instrument name
func (p *Parser) BuildLabel(id, sender string) string {
	inst, ok := p.ResolveInstitution(sender)

	if handle, isUPI := strings.CutPrefix(id, models.UPIPrefix); isUPI {
		if ok {
			return inst + " UPI - " + handle
		}
		return "UPI - " + handle
	}
	if ok {
		return inst + " - XX" + id
	}
	return "Card XX" + id
}

func firstCapture(patterns []*regexp.Regexp, body string) (string, bool) {
	for _, re := range patterns {
		match := re.FindStringSubmatch(body)
		if len(match) > 1 && match[1] != "" {
			return match[1], true
		}
	}
	return "", false
}
