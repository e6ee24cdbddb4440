package parser

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/textutil"
)

// Table-row classification. These rules are tuned to the observed supplier
// layouts (two-line quantity rows, unlabeled single-cell total rows) and
// are a known source of false positives on unseen layouts.

// IsProductRow reports whether a table row carries product data: a long
// enough first cell with letters that is not header vocabulary, an integer
// quantity cell and a currency-marked price cell.
func (p *Parser) IsProductRow(row model.TableRow) bool {
	if len(row) < 3 {
		return false
	}
	title := strings.TrimSpace(row[0])
	if len([]rune(title)) <= 5 || !lettersOnlyRe.MatchString(title) {
		return false
	}
	lower := strings.ToLower(title)
	for _, word := range []string{"observaciones", "base imponible", "total"} {
		if strings.Contains(lower, word) {
			return false
		}
	}
	if !integerCellRe.MatchString(strings.TrimSpace(row[1])) {
		return false
	}
	return strings.Contains(row[2], "€")
}

// IsExcludedHeading reports whether a cell belongs to the fixed header
// exclusion vocabulary.
func (p *Parser) IsExcludedHeading(cell string) bool {
	lower := strings.ToLower(cell)
	for _, word := range p.keywords.TableExclusions {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// FindProductSectionStart returns the index of the first product row of a
// table, or -1. A product row here has a long textual first column that is
// not header vocabulary, an integer second column and a euro-marked third
// column.
func (p *Parser) FindProductSectionStart(rows []model.TableRow) int {
	for i, row := range rows {
		if len(row) < 3 {
			continue
		}
		first := strings.ToLower(strings.TrimSpace(row[0]))
		if len([]rune(first)) <= 10 || p.IsExcludedHeading(first) {
			continue
		}
		if !integerCellRe.MatchString(strings.TrimSpace(row[1])) {
			continue
		}
		if strings.Contains(strings.ToLower(row[2]), "€") {
			return i
		}
	}
	return -1
}

// BorrowQuantity recovers a quantity from the row above the product row.
// Some layouts split quantity/weight/price over two physical lines; the
// previous row then holds at least two integer cells and one decimal cell,
// and the first purely-integer cell is the quantity.
func (p *Parser) BorrowQuantity(prev model.TableRow) (decimal.Decimal, bool) {
	if len(prev) < 2 {
		return decimal.Zero, false
	}
	intCount := 0
	hasDecimal := false
	for _, cell := range prev {
		v := spaceOrStarRe.ReplaceAllString(cell, "")
		if integerCellRe.MatchString(v) {
			intCount++
		}
		if decimalCellRe.MatchString(v) {
			hasDecimal = true
		}
	}
	if intCount < 2 || !hasDecimal {
		return decimal.Zero, false
	}
	for _, cell := range prev {
		v := spaceOrStarRe.ReplaceAllString(cell, "")
		if integerCellRe.MatchString(v) {
			qty, err := decimal.NewFromString(v)
			if err != nil {
				return decimal.Zero, false
			}
			return qty, true
		}
	}
	return decimal.Zero, false
}

// SingleCellTotal detects an unlabeled grand-total row: a single cell whose
// value has a 2-3 digit integer part with decimals and exceeds the noise
// floor.
func (p *Parser) SingleCellTotal(row model.TableRow) (decimal.Decimal, bool) {
	if len(row) != 1 {
		return decimal.Zero, false
	}
	v := spaceOrStarRe.ReplaceAllString(row[0], "")
	if !totalCellRe.MatchString(v) {
		return decimal.Zero, false
	}
	num, err := textutil.NormalizeNumber(v)
	if err != nil || !num.GreaterThan(p.th.TotalNoiseFloor) {
		return decimal.Zero, false
	}
	return num, true
}

// HasLetters reports whether the cell contains at least one ASCII letter.
func HasLetters(cell string) bool {
	return letterRe.MatchString(cell)
}
