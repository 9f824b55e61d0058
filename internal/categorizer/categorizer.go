package categorizer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"sms-classifier/internal/config"
	"sms-classifier/internal/models"
)

// exactMatchBonus is added when the merchant equals a keyword
const exactMatchBonus = 50

// Categorizer scores message text against an ordered category table
type Categorizer struct {
	rules    []models.CategoryRule
	fallback string
}

// New creates a Categorizer from an ordered table and a fallback category.
// Keywords are lower-cased once here; the table is never modified afterwards.
func New(rules []models.CategoryRule, fallback string) (*Categorizer, error) {
	if fallback == "" {
		return nil, fmt.Errorf("%w: fallback category is empty", config.ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(rules))
	cleaned := make([]models.CategoryRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Name == "" {
			return nil, fmt.Errorf("%w: category without a name", config.ErrInvalidConfig)
		}
		if seen[rule.Name] {
			return nil, fmt.Errorf("%w: category %q is defined twice", config.ErrInvalidConfig, rule.Name)
		}
		seen[rule.Name] = true

		keywords := make([]string, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				return nil, fmt.Errorf("%w: blank keyword in category %q", config.ErrInvalidConfig, rule.Name)
			}
			keywords = append(keywords, kw)
		}
		cleaned = append(cleaned, models.CategoryRule{Name: rule.Name, Keywords: keywords})
	}

	return &Categorizer{rules: cleaned, fallback: fallback}, nil
}

// Categorize assigns a category to a transaction based on merchant and body
func (c *Categorizer) Categorize(merchant, body string) string {
	lowerMerchant := strings.ToLower(merchant)
	text := lowerMerchant + " " + strings.ToLower(body)

	best := c.fallback
	maxScore := 0
	for _, rule := range c.rules {
		if rule.Name == c.fallback {
			continue
		}

		score := score(rule.Keywords, lowerMerchant, text)
		// Strictly greater: on a tie the earlier category keeps the lead.
		if score > maxScore {
			maxScore = score
			best = rule.Name
		}
	}

	return best
}

// Categories returns every category name in table order, fallback last
// unless the table already lists it.
func (c *Categorizer) Categories() []string {
	names := make([]string, 0, len(c.rules)+1)
	hasFallback := false
	for _, rule := range c.rules {
		names = append(names, rule.Name)
		if rule.Name == c.fallback {
			hasFallback = true
		}
	}
	if !hasFallback {
		names = append(names, c.fallback)
	}
	return names
}

// Fallback returns the category used when nothing scores
func (c *Categorizer) Fallback() string {
	return c.fallback
}

func score(keywords []string, merchant, text string) int {
	total := 0
	for _, kw := range keywords {
		if !strings.Contains(text, kw) {
			continue
		}
		total += utf8.RuneCountInString(kw) * 2
		if merchant == kw {
			total += exactMatchBonus
		}
	}
	return total
}
