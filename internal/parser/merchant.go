package parser

import (
	"unicode/utf8"

	"sms-classifier/internal/utils"
)

// UnknownMerchant is returned when no merchant pattern yields a name
const UnknownMerchant = "Unknown"

const minMerchantLength = 3

// ExtractMerchant returns the counterparty named after the first matching
// preposition pattern, with case preserved.
func (p *Parser) ExtractMerchant(body string) string {
	for _, re := range p.merchantPatterns {
		match := re.FindStringSubmatch(body)
		if len(match) < 2 {
			continue
		}

		merchant := utils.CollapseSpaces(match[1])
		if utf8.RuneCountInString(merchant) >= minMerchantLength {
			return merchant
		}
	}
	return UnknownMerchant
}
