package util

import (
	"regexp"
)

var currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// IsValidCurrencyCode accepts ISO 4217 style three-letter codes.
func IsValidCurrencyCode(s string) bool {
	return currencyRegex.MatchString(s)
}
