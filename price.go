package main

import (
	"regexp"
	"strconv"
	"strings"
)

// priceRegex finds the first number-like token in a scraped price string.
// Handles integers with thousands separators (1,079) and decimals (119.00).
var priceRegex = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)

// parsePrice extracts a price amount from display text like "$499.99" or
// "+ $12.49 shipping". The ok result is false when no number is present,
// which callers must distinguish from a parsed zero.
func parsePrice(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}

	found := priceRegex.FindString(s)
	if found == "" {
		return 0, false
	}

	cleaned := strings.ReplaceAll(found, ",", "")
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}
