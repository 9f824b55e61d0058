package parser

import (
	"strings"

	"github.com/shopspring/decimal"

	"sms-classifier/internal/utils"
)

// maxAmount is the largest amount accepted from a message
var maxAmount = decimal.NewFromInt(1_000_000)

// Amount is a money value together with its normalised currency code
type Amount struct {
	Value    decimal.Decimal
	Currency string
}

// ExtractAmount returns the first valid amount found by the ordered patterns.
// Each pattern is tried once, on its leftmost match; an unparsable or
// out-of-range value moves on to the next pattern.
func (p *Parser) ExtractAmount(body string) (Amount, bool) {
	for _, re := range p.amountPatterns {
		match := re.FindStringSubmatch(body)
		if match == nil {
			continue
		}

		raw := match[re.SubexpIndex("amount")]
		value, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
		if err != nil {
			continue
		}
		if !value.IsPositive() || value.GreaterThan(maxAmount) {
			continue
		}

		currency := ""
		if idx := re.SubexpIndex("currency"); idx >= 0 {
			currency = match[idx]
		}
		return Amount{
			Value:    value,
			Currency: utils.NormalizeCurrency(currency, p.defaultCurrency),
		}, true
	}
	return Amount{}, false
}
