package utils

import (
	"regexp"
	"strings"
)

var whitespacePattern = regexp.MustCompile(`\s+`)

// NormalizeCurrency converts the currency tokens found in messages to standard codes
func NormalizeCurrency(currStr, fallback string) string {
	cleanCurr := strings.ToUpper(strings.TrimSpace(currStr))
	if cleanCurr == "" {
		return fallback
	}

	mapping := map[string]string{
		"RS":  "INR",
		"RS.": "INR",
		"INR": "INR",
		"₹":   "INR",
		"AED": "AED",
		"د.إ": "AED",
	}

	if normalized, ok := mapping[cleanCurr]; ok {
		return normalized
	}
	return cleanCurr
}

// CollapseSpaces trims text and folds every whitespace run into one space
func CollapseSpaces(text string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}

// Contains checks if text contains any of the given keywords
func Contains(text string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// Truncate returns at most n runes of s
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// LastN returns the final n bytes of s, or s itself when shorter
func LastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
