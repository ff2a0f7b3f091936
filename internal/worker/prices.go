package worker

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cargodesk/cargodesk/internal/quotes/model"
)

// priceRe matches a currency marker followed by an amount, e.g. "USD 1,234.56",
// "R 12500" or "$990.00". Comma-decimal amounts like "€1.200,50" are out of
// scope.
var priceRe = regexp.MustCompile(`(?i)\b(USD|EUR|ZAR|R|\$|€)\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)

// maxContextLen bounds the snippet stored with each detected price.
const maxContextLen = 120

// DetectPrices scans extracted quote text for currency amounts. Each match
// carries the surrounding line as context so a reviewer can judge what the
// amount refers to.
func DetectPrices(text string) []model.DetectedPrice {
	var prices []model.DetectedPrice
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		for _, match := range priceRe.FindAllStringSubmatch(trimmed, -1) {
			amount, err := strconv.ParseFloat(strings.ReplaceAll(match[2], ",", ""), 64)
			if err != nil || amount <= 0 {
				continue
			}
			prices = append(prices, model.DetectedPrice{
				Amount:   amount,
				Currency: normalizeCurrency(match[1]),
				Context:  truncate(trimmed, maxContextLen),
			})
		}
	}
	return prices
}

func normalizeCurrency(marker string) string {
	switch strings.ToUpper(marker) {
	case "$", "USD":
		return "USD"
	case "€", "EUR":
		return "EUR"
	case "R", "ZAR":
		return "ZAR"
	}
	return strings.ToUpper(marker)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Back off to a rune boundary so the cut never leaves a partial rune.
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
