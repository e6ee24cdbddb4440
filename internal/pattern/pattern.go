// Package pattern is the declarative, versioned library of field-detection
// patterns shared read-only by all providers. Each field has an ordered
// pattern set: earlier patterns are stricter, later ones are progressively
// looser fallbacks. First match wins; a looser pattern never overrides a
// field that an earlier pattern already captured.
package pattern

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// Set is an ordered list of alternatives evaluated in sequence with
// early exit.
type Set []*regexp.Regexp

// FirstMatch returns the capture of the first pattern in the set that
// matches the line. The first submatch is preferred; when a pattern has
// no capture group the full match is returned.
func (s Set) FirstMatch(line string) (string, bool) {
	for _, re := range s {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if len(m) > 1 && m[1] != "" {
			return m[1], true
		}
		return m[0], true
	}
	return "", false
}

// Library groups the pattern sets for every extracted field.
type Library struct {
	ItemCode      Set
	Quantity      Set
	Price         Set
	ItemName      Set
	Total         Set
	Supplier      Set
	Date          Set
	InvoiceNumber Set
}

// Signals are the line-shape detectors behind product-line classification.
// A line qualifies as a product line iff at least two signals fire.
type Signals struct {
	Code        *regexp.Regexp
	Quantity    *regexp.Regexp
	Price       *regexp.Regexp
	Description *regexp.Regexp
}

// Keywords identify document sections and rows to exclude from product
// parsing.
type Keywords struct {
	Items           []string
	Header          []string
	Footer          []string
	TableExclusions []string
}

// Thresholds are the numeric tuning knobs shared by the parsers.
type Thresholds struct {
	MinTextLength     int
	MinItemNameLength int
	MaxItemNameLength int
	MinPrice          decimal.Decimal
	MaxPrice          decimal.Decimal
	// TotalNoiseFloor filters out small single-cell decimal rows that
	// would otherwise be misread as a grand total.
	TotalNoiseFloor decimal.Decimal
}

var defaultLibrary = &Library{
	ItemCode: Set{
		regexp.MustCompile(`(?i)(?:código|code|cod|ref|referencia|sku|art|artículo)[:\s]*([A-Z0-9\-_]{3,20})`),
		regexp.MustCompile(`\b([A-Z]{2,4}[-_]?\d{3,8})\b`),
		regexp.MustCompile(`\b(\d{6,13})\b`),
		regexp.MustCompile(`\b([A-Z0-9]{4,12})\b`),
	},
	Quantity: Set{
		regexp.MustCompile(`(?i)(?:cantidad|cant|qty|unidades|ud|pcs|un)[:\s]*(\d+(?:[.,]\d+)?)`),
		regexp.MustCompile(`(?m)^(\d+(?:[.,]\d+)?)\s*(?:ud|pcs|un|kg|g|l|ml|m|cm)?$`),
		regexp.MustCompile(`(?i)\b(\d+(?:[.,]\d+)?)\s*(?:ud|pcs|un|kg|g|l|ml|m|cm)\b`),
	},
	Price: Set{
		regexp.MustCompile(`(\d+(?:[.,]\d{2}))\s*[€$]`),
		regexp.MustCompile(`[€$]\s*(\d+(?:[.,]\d{2}))`),
		regexp.MustCompile(`(?i)precio[:\s]*(\d+(?:[.,]\d{2}))`),
		regexp.MustCompile(`(?i)importe[:\s]*(\d+(?:[.,]\d{2}))`),
		regexp.MustCompile(`\b(\d+(?:[.,]\d{2}))\s*€`),
	},
	ItemName: Set{
		regexp.MustCompile(`(?i)(?:descripción|description|producto|article|item)[:\s]*([^0-9\n]{3,50})`),
		regexp.MustCompile(`(?m)^([A-Za-zÀ-ÿ\s]{10,50})(?:\s+\d)`),
	},
	Total: Set{
		regexp.MustCompile(`(?i)(?:total|subtotal|importe|suma)[:\s]*(\d+(?:[.,]\d{2}))`),
		regexp.MustCompile(`(?i)total[:\s]*(\d+(?:[.,]\d{2}))\s*€`),
		regexp.MustCompile(`(?i)(?:total|subtotal|importe)[:\s]*(\d+(?:[.,]\d{2}))\s*€`),
		regexp.MustCompile(`(?i)\b(\d+(?:[.,]\d{2}))\s*€\s*(?:total|subtotal|importe)`),
	},
	Supplier: Set{
		regexp.MustCompile(`(?i)(?:proveedor|supplier|empresa|company)[:\s]*([^0-9\n]{3,50})`),
		regexp.MustCompile(`(?m)^([A-Za-zÀ-ÿ\s.]{5,50})(?:\s+[A-Z]{2}\d{8})?`),
	},
	Date: Set{
		regexp.MustCompile(`(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
		regexp.MustCompile(`(\d{4}[/\-]\d{1,2}[/\-]\d{1,2})`),
		regexp.MustCompile(`(?i)(?:fecha|date)[:\s]*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
	},
	InvoiceNumber: Set{
		regexp.MustCompile(`(?i)(?:factura|invoice|número|number)[:\s]*([A-Z0-9\-_]{3,20})`),
		regexp.MustCompile(`\b([A-Z]{2,4}\d{6,10})\b`),
	},
}

var defaultSignals = &Signals{
	Code:        regexp.MustCompile(`\b[A-Z0-9\-_]{3,15}\b`),
	Quantity:    regexp.MustCompile(`\b[0-9]+(?:[.,][0-9]+)?\s*(?:ud|pcs|un|kg|g|l|ml|m|cm)?\b`),
	Price:       regexp.MustCompile(`[0-9]+(?:[.,][0-9]{2})\s*[€$]`),
	Description: regexp.MustCompile(`[A-Za-zÀ-ÿ\s]{5,}`),
}

var defaultKeywords = &Keywords{
	Items:  []string{"descripción", "producto", "artículo", "código", "cantidad", "precio", "importe"},
	Header: []string{"factura", "albarán", "fecha", "número", "cliente", "proveedor"},
	Footer: []string{"total", "subtotal", "iva", "base"},
	TableExclusions: []string{
		"código", "concepto", "cantida", "precio",
		"observaciones", "base imponible", "total",
	},
}

// Default returns the shared pattern library. Callers must treat it as
// read-only.
func Default() *Library { return defaultLibrary }

// DefaultSignals returns the shared line-shape signals.
func DefaultSignals() *Signals { return defaultSignals }

// DefaultKeywords returns the shared section keywords.
func DefaultKeywords() *Keywords { return defaultKeywords }

// DefaultThresholds returns the tuning values observed to work across
// the supported supplier layouts.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinTextLength:     100,
		MinItemNameLength: 3,
		MaxItemNameLength: 100,
		MinPrice:          decimal.NewFromFloat(0.01),
		MaxPrice:          decimal.NewFromInt(1000000),
		TotalNoiseFloor:   decimal.NewFromInt(50),
	}
}
