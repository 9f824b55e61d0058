package parser

import (
	"strings"

	"sms-classifier/internal/models"
	"sms-classifier/internal/utils"
)

// IsTransactionMessage is the cheap pre-filter run before Classify. The
// sender or the body must look financial, and an amount must be present.
func (p *Parser) IsTransactionMessage(sender, body string) bool {
	looksFinancial := utils.Contains(strings.ToLower(sender), p.senderTokens...) ||
		utils.Contains(strings.ToLower(body), p.actionKeywords...)
	if !looksFinancial {
		return false
	}

	_, ok := p.ExtractAmount(body)
	return ok
}

// Classify runs the full pipeline over one message. It reports false only
// when no amount can be extracted; every later stage falls back to a default.
func (p *Parser) Classify(body, sender string) (models.ClassificationResult, bool) {
	amount, ok := p.ExtractAmount(body)
	if !ok {
		return models.ClassificationResult{}, false
	}

	merchant := p.ExtractMerchant(body)

	id, found := p.DetectInstrumentID(body, sender)
	if !found {
		id = models.UnknownInstrument
	}
	institution, _ := p.ResolveInstitution(sender)

	return models.ClassificationResult{
		Amount:          amount.Value,
		Currency:        amount.Currency,
		Merchant:        merchant,
		Category:        p.categorizer.Categorize(merchant, body),
		InstrumentID:    id,
		InstrumentKind:  p.DetectInstrumentKind(id, body, sender),
		Direction:       p.DetectDirection(body),
		InstrumentLabel: p.BuildLabel(id, sender),
		Institution:     institution,
	}, true
}

// ClassifyMessage is Classify for a Message value
func (p *Parser) ClassifyMessage(msg models.Message) (models.ClassificationResult, bool) {
	return p.Classify(msg.Body, msg.Sender)
}
