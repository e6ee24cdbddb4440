// Package textutil holds the pure text-normalization helpers shared by all
// providers: page flattening, locale-aware number parsing, text cleaning
// and line splitting. No state.
package textutil

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rezonia/invoice-extractor/internal/model"
)

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	specialRe     = regexp.MustCompile(`[^\w\s.,€$À-ÿ]`)
	numberRe      = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	nonNumericRe  = regexp.MustCompile(`[^0-9.\-]`)
	productCodeRe = regexp.MustCompile(`^[A-Z0-9\-_]{3,20}$`)
	priceShapeRe  = regexp.MustCompile(`^\d+(?:[.,]\d{2})?\s*[€$]?$`)
	qtyShapeRe    = regexp.MustCompile(`^\d+(?:[.,]\d+)?\s*(?:ud|pcs|un|kg|g|l|ml|m|cm)?$`)
	digitRe       = regexp.MustCompile(`\d`)
)

// PagesToText flattens native-extraction pages to plain text: runs joined
// by spaces within a page, pages joined by newlines.
func PagesToText(pages []model.Page) string {
	if len(pages) == 0 {
		return ""
	}
	parts := make([]string, 0, len(pages))
	for _, page := range pages {
		runs := make([]string, 0, len(page.Runs))
		for _, r := range page.Runs {
			runs = append(runs, r.Text)
		}
		parts = append(parts, strings.Join(runs, " "))
	}
	return strings.Join(parts, "\n")
}

// NormalizeNumber parses a numeric string in Spanish invoice notation:
// the decimal comma becomes a point and currency markers are dropped.
func NormalizeNumber(value string) (decimal.Decimal, error) {
	s := strings.Replace(value, ",", ".", 1)
	s = nonNumericRe.ReplaceAllString(s, "")
	return decimal.NewFromString(s)
}

// FirstNumber extracts the first number from a string, if any.
func FirstNumber(text string) (decimal.Decimal, bool) {
	match := numberRe.FindString(text)
	if match == "" {
		return decimal.Zero, false
	}
	d, err := NormalizeNumber(match)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// CleanText collapses whitespace and strips characters that carry no
// meaning in invoice lines.
func CleanText(text string) string {
	s := whitespaceRe.ReplaceAllString(text, " ")
	s = specialRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// SplitLines splits text into non-empty lines.
func SplitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// ContainsNumbers reports whether the string contains any digit.
func ContainsNumbers(text string) bool {
	return digitRe.MatchString(text)
}

// LooksLikeProductCode reports whether the string has product-code shape.
func LooksLikeProductCode(text string) bool {
	return productCodeRe.MatchString(strings.TrimSpace(text))
}

// LooksLikePrice reports whether the string has price shape.
func LooksLikePrice(text string) bool {
	return priceShapeRe.MatchString(strings.TrimSpace(text))
}

// LooksLikeQuantity reports whether the string has quantity shape.
func LooksLikeQuantity(text string) bool {
	return qtyShapeRe.MatchString(strings.TrimSpace(text))
}
