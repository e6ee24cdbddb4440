// Package parser implements the generic heuristic line and table-row
// parser shared by every provider. The heuristics are tuned to the
// supplier layouts observed in production and may need adjustment for
// new layouts; see the table helpers for the row-classification rules.
package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/pattern"
	"github.com/rezonia/invoice-extractor/internal/textutil"
)

var (
	codeShapeRe     = regexp.MustCompile(`\b[A-Z0-9\-_]{3,20}\b`)
	qtyShapeRe      = regexp.MustCompile(`\b[0-9]+(?:[.,][0-9]+)?\s*(?:ud|pcs|un|kg|g|l|ml|m|cm)?\b`)
	priceShapeRe    = regexp.MustCompile(`[0-9]+(?:[.,]\d{2})\s*[€$]`)
	currencyRe      = regexp.MustCompile(`[€$]`)
	leadingMarkRe   = regexp.MustCompile(`^\s*[-_*]\s*`)
	nonAmountRe     = regexp.MustCompile(`[^0-9.,]`)
	integerCellRe   = regexp.MustCompile(`^\d+$`)
	decimalCellRe   = regexp.MustCompile(`^\d+[.,]\d+$`)
	totalCellRe     = regexp.MustCompile(`^\d{2,3}[.,]\d{2}$`)
	letterRe        = regexp.MustCompile(`[a-zA-Z]`)
	spaceOrStarRe   = regexp.MustCompile(`[\s*]`)
	lettersOnlyRe   = regexp.MustCompile(`[A-Za-zÀ-ÿ]`)
)

// Parser extracts typed line items and totals from free text or table rows.
// The zero value is not usable; construct with New.
type Parser struct {
	lib      *pattern.Library
	signals  *pattern.Signals
	keywords *pattern.Keywords
	th       pattern.Thresholds
}

// New creates a parser backed by the default pattern library.
func New() *Parser {
	return &Parser{
		lib:      pattern.Default(),
		signals:  pattern.DefaultSignals(),
		keywords: pattern.DefaultKeywords(),
		th:       pattern.DefaultThresholds(),
	}
}

// Thresholds returns the parser's tuning values.
func (p *Parser) Thresholds() pattern.Thresholds { return p.th }

// LooksLikeItemLine computes the four line-shape signals and qualifies the
// line as a product line iff at least two fire. Exact-field lines rarely
// carry all four signals at once, so 2-of-4 is the noise tolerance.
func (p *Parser) LooksLikeItemLine(line string) bool {
	count := 0
	if p.signals.Code.MatchString(line) {
		count++
	}
	if p.signals.Quantity.MatchString(line) {
		count++
	}
	if p.signals.Price.MatchString(line) {
		count++
	}
	if p.signals.Description.MatchString(line) {
		count++
	}
	return count >= 2
}

// ParseItemLine extracts code, quantity, price and name from one line.
// For each field the ordered pattern set is walked and the first match
// wins; later patterns never override an assigned field. The returned
// item has an empty name (and should be dropped) when the residual text
// after subtracting matched tokens is shorter than the minimum length.
func (p *Parser) ParseItemLine(line string, lineIndex int) model.LineItem {
	item := model.LineItem{LineNumber: lineIndex + 1}

	var rawCode, rawQty, rawPrice string

	if capture, full, ok := firstMatch(p.lib.ItemCode, line); ok {
		item.Code = textutil.CleanText(capture)
		rawCode = full
	}
	if capture, full, ok := firstMatch(p.lib.Quantity, line); ok {
		if qty, err := textutil.NormalizeNumber(capture); err == nil {
			item.Quantity = decimal.NullDecimal{Decimal: qty, Valid: true}
			rawQty = full
		}
	}
	if _, full, ok := firstMatch(p.lib.Price, line); ok {
		priceStr := strings.TrimSpace(currencyRe.ReplaceAllString(full, ""))
		if price, err := textutil.NormalizeNumber(priceStr); err == nil {
			item.Price = decimal.NullDecimal{Decimal: price, Valid: true}
			rawPrice = full
		}
	}

	item.Name = p.extractItemName(line, item, rawCode, rawQty, rawPrice)
	return item
}

// extractItemName subtracts matched tokens and generic code/quantity/price
// shapes from the line; the residual is the name if long enough.
func (p *Parser) extractItemName(line string, item model.LineItem, rawCode, rawQty, rawPrice string) string {
	desc := line

	if item.Code != "" {
		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(item.Code))
		if err == nil {
			desc = re.ReplaceAllString(desc, "")
		}
	}
	for _, raw := range []string{rawCode, rawQty, rawPrice} {
		if raw != "" {
			desc = strings.ReplaceAll(desc, raw, "")
		}
	}

	desc = codeShapeRe.ReplaceAllString(desc, "")
	desc = qtyShapeRe.ReplaceAllString(desc, "")
	desc = priceShapeRe.ReplaceAllString(desc, "")
	desc = currencyRe.ReplaceAllString(desc, "")
	desc = leadingMarkRe.ReplaceAllString(desc, "")
	desc = textutil.CleanText(desc)

	if len([]rune(desc)) < p.th.MinItemNameLength {
		return ""
	}
	if max := p.th.MaxItemNameLength; len([]rune(desc)) > max {
		desc = string([]rune(desc)[:max])
	}
	return desc
}

// ExtractItems scans every line of the text and returns the retained
// product items.
func (p *Parser) ExtractItems(text string) []model.LineItem {
	lines := textutil.SplitLines(text)
	var items []model.LineItem
	for i, line := range lines {
		if !p.LooksLikeItemLine(line) {
			continue
		}
		item := p.ParseItemLine(line, i)
		if item.Name != "" {
			items = append(items, item)
		}
	}
	return items
}

// ExtractTotals scans the text for labeled totals. Labeled slots win over
// unlabeled amounts; among matches for the same slot the last one wins.
func (p *Parser) ExtractTotals(text string) model.Totals {
	totals := model.Totals{}
	for _, re := range p.lib.Total {
		for _, match := range re.FindAllString(text, -1) {
			value, err := textutil.NormalizeNumber(nonAmountRe.ReplaceAllString(match, ""))
			if err != nil || value.LessThan(p.th.MinPrice) {
				continue
			}
			lower := strings.ToLower(match)
			switch {
			case strings.Contains(lower, "subtotal"):
				totals[model.TotalLabelSubtotal] = value
			case strings.Contains(lower, "total"):
				totals[model.TotalLabelTotal] = value
			case strings.Contains(lower, "importe"):
				totals[model.TotalLabelImporte] = value
			}
		}
	}
	return totals
}

// ExtractSupplierInfo returns the supplier self-description found in the
// text, or the empty string.
func (p *Parser) ExtractSupplierInfo(text string) string {
	for _, re := range p.lib.Supplier {
		if match := re.FindString(text); match != "" {
			return textutil.CleanText(match)
		}
	}
	return ""
}

// ProcessText runs the full generic text pipeline: supplier info, items
// and totals, stamped with processing metadata.
func (p *Parser) ProcessText(text, providerName string) model.ProcessedData {
	lines := textutil.SplitLines(text)
	return model.ProcessedData{
		Supplier: p.ExtractSupplierInfo(text),
		Items:    p.ExtractItems(text),
		Totals:   p.ExtractTotals(text),
		Metadata: model.Metadata{
			TotalLines:     len(lines),
			ProcessingDate: time.Now(),
			Provider:       providerName,
		},
	}
}

func firstMatch(set pattern.Set, line string) (capture, full string, ok bool) {
	for _, re := range set {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if len(m) > 1 && m[1] != "" {
			return m[1], m[0], true
		}
		return m[0], m[0], true
	}
	return "", "", false
}
