package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// Price sanity bounds. Values outside this range are treated as selector
// noise rather than real prices.
const (
	minValidPrice = 0
	maxValidPrice = 1_000_000
)

// pricePatterns are tried in order. European format first so that
// "1.234,56" is not mistaken for a US-format thousands group.
var pricePatterns = []*regexp.Regexp{
	// European format: 1.234,56 or 1234,56
	regexp.MustCompile(`\d{1,3}(?:\.\d{3})*,\d{2}`),
	// US format: 1,234.56 or 1234.56
	regexp.MustCompile(`\d{1,3}(?:,\d{3})*\.\d{2}`),
	// Simple decimal: 1234.56 or 1234,56
	regexp.MustCompile(`\d+[.,]\d{2}`),
	// Integer price: 1234
	regexp.MustCompile(`\d+`),
}

// spaceThousands matches a space used as a thousands separator
// (e.g. "1 234,56"), including the non-breaking spaces French sites emit.
var spaceThousands = regexp.MustCompile(`(\d)[\s\x{00a0}\x{202f}](\d{3})`)

// currencyTokens are stripped from price text before numeric matching.
var currencyTokens = []string{"€", "$", "£", "EUR", "USD", "GBP"}

// ParsePrice extracts a price value from a text fragment, handling
// European ("29,99 €") and US ("$19.99") formats. Returns false when no
// plausible price is present.
func ParsePrice(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}

	text = CleanPriceText(text)
	text = spaceThousands.ReplaceAllString(text, "$1$2")

	for _, pattern := range pricePatterns {
		match := findStandalone(pattern, text)
		if match == "" {
			continue
		}

		numeric := match
		if strings.Contains(numeric, ",") && isEuropeanFormat(numeric) {
			// 1.234,56 -> 1234.56
			numeric = strings.ReplaceAll(numeric, ".", "")
			numeric = strings.ReplaceAll(numeric, ",", ".")
		} else {
			// 1,234.56 -> 1234.56
			numeric = strings.ReplaceAll(numeric, ",", "")
		}

		price, err := strconv.ParseFloat(numeric, 64)
		if err != nil {
			continue
		}
		if !IsValidPrice(price) {
			continue
		}
		return price, true
	}

	return 0, false
}

// findStandalone returns the first pattern match not adjacent to another
// digit. Without the boundary check, "1234,56" would half-match the
// grouped European pattern as "234,56" and yield a price off by the
// thousands.
func findStandalone(pattern *regexp.Regexp, text string) string {
	for _, loc := range pattern.FindAllStringIndex(text, -1) {
		if loc[0] > 0 && isDigit(text[loc[0]-1]) {
			continue
		}
		if loc[1] < len(text) && isDigit(text[loc[1]]) {
			continue
		}
		return text[loc[0]:loc[1]]
	}
	return ""
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// isEuropeanFormat reports whether the comma in a matched number is a
// decimal separator (European) rather than a thousands separator (US).
func isEuropeanFormat(s string) bool {
	comma := strings.LastIndex(s, ",")
	// Decimal commas are followed by exactly two digits at the end.
	return comma >= 0 && len(s)-comma-1 == 2
}

// CleanPriceText removes currency tokens and collapses whitespace.
func CleanPriceText(text string) string {
	for _, token := range currencyTokens {
		text = strings.ReplaceAll(text, token, "")
	}
	return strings.Join(strings.Fields(text), " ")
}

// DetectCurrency infers the currency code from page or price text,
// defaulting to EUR for the French/Belgian sites this tracker targets.
func DetectCurrency(text string) string {
	upper := strings.ToUpper(text)

	switch {
	case strings.Contains(text, "€") || strings.Contains(upper, "EUR"):
		return "EUR"
	case strings.Contains(text, "$") || strings.Contains(upper, "USD"):
		return "USD"
	case strings.Contains(text, "£") || strings.Contains(upper, "GBP"):
		return "GBP"
	default:
		return "EUR"
	}
}

// IsValidPrice reports whether a parsed value is plausible as a price.
func IsValidPrice(price float64) bool {
	return price > minValidPrice && price < maxValidPrice
}

// PromoPercentage computes the discount percentage between an original
// and a discounted price. Returns nil when there is no discount.
func PromoPercentage(originalPrice, currentPrice float64) *float64 {
	if originalPrice <= 0 || currentPrice <= 0 || currentPrice >= originalPrice {
		return nil
	}

	discount := (originalPrice - currentPrice) / originalPrice * 100
	rounded := float64(int(discount*100+0.5)) / 100
	return &rounded
}
