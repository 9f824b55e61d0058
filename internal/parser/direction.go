package parser

import (
	"strings"

	"sms-classifier/internal/models"
	"sms-classifier/internal/utils"
)

// DetectDirection classifies a message as a debit or a credit.
// Debit keywords are checked first, so a message carrying both kinds of
// keyword is a debit; with no keyword at all the message is a debit too.
func (p *Parser) DetectDirection(body string) models.Direction {
	lowerBody := strings.ToLower(body)

	if utils.Contains(lowerBody, p.debitKeywords...) {
		return models.DirectionDebit
	}
	if utils.Contains(lowerBody, p.creditKeywords...) {
		return models.DirectionCredit
	}
	return models.DirectionDebit
}
