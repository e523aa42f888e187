// Package ground verifies extractor output against the original message
// bodies. Only values that can be independently re-derived from source text
// survive grounding.
package ground

import (
	"regexp"
	"strconv"
	"strings"
)

// currencyTokenRe matches currency-marked numeric tokens: a symbol or code
// prefix, optional thousands separators, optional decimal. "Rs.12,550",
// "₹1,000.50", "INR 630", "$45.00".
var currencyTokenRe = regexp.MustCompile(`(?i)(?:₹|rs\.?|inr|\$|usd)\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)

// ScanAmounts returns every currency-marked amount in the body, in order of
// appearance.
func ScanAmounts(body string) []float64 {
	matches := currencyTokenRe.FindAllStringSubmatch(body, -1)
	amounts := make([]float64, 0, len(matches))
	for _, m := range matches {
		if v, err := ParseAmount(m[1]); err == nil {
			amounts = append(amounts, v)
		}
	}
	return amounts
}

// ParseAmount parses a numeric token with optional thousands separators.
func ParseAmount(token string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(token), ",", "")
	return strconv.ParseFloat(cleaned, 64)
}

// maxAmount returns the largest scanned amount, or 0 for an empty slice.
// The total due is conventionally the largest figure on a statement.
func maxAmount(amounts []float64) float64 {
	var m float64
	for _, a := range amounts {
		if a > m {
			m = a
		}
	}
	return m
}

// withinTolerance reports whether got is within the relative tolerance of
// any scanned amount.
func withinTolerance(got float64, amounts []float64, tolerance float64) bool {
	for _, a := range amounts {
		if a == 0 {
			if got == 0 {
				return true
			}
			continue
		}
		drift := got - a
		if drift < 0 {
			drift = -drift
		}
		if drift/a <= tolerance {
			return true
		}
	}
	return false
}
