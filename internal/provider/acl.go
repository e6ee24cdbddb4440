package provider

import (
	"context"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/parser"
	"github.com/rezonia/invoice-extractor/internal/textutil"
)

var aclCodeCellRe = regexp.MustCompile(`\d{9,13}`)

// ACL handles Arco Logística invoices. The layout splits one logical
// product over several physical rows: the quantity sits on the row above
// the title row and the numeric code up to three rows below it.
type ACL struct {
	parser   *parser.Parser
	keywords []string
}

// NewACL creates the ACL provider.
func NewACL(p *parser.Parser) *ACL {
	return &ACL{
		parser:   p,
		keywords: []string{"ACL", "Arco Logística", "ArcoLogística"},
	}
}

// Name returns the provider key.
func (a *ACL) Name() model.SupplierKey { return model.SupplierACL }

// CanHandle identifies ACL documents by keyword containment.
func (a *ACL) CanHandle(text string) bool {
	return matchesKeyword(text, a.keywords)
}

// ExtractData prefers table extraction and falls back to the text chain.
func (a *ACL) ExtractData(ctx context.Context, doc model.DocumentRef, backends Backends) (*model.ExtractionResult, error) {
	return extractCommon(ctx, doc, backends, a, a.parser)
}

// ParseTableData maps ACL table rows to line items. A title row has at
// least three cells and a textual first cell; the quantity may be
// borrowed from the previous row and the code is searched in the
// following rows. Items without a code are dropped.
func (a *ACL) ParseTableData(_ context.Context, _ model.DocumentRef, rows []model.TableRow) (*TableResult, error) {
	result := &TableResult{}

	for _, row := range rows {
		if total, ok := a.parser.SingleCellTotal(row); ok {
			result.TotalExclVAT = decimal.NullDecimal{Decimal: total, Valid: true}
			break
		}
	}

	for i := 0; i < len(rows)-1; i++ {
		row := rows[i]
		if len(row) < 3 || !parser.HasLetters(row[0]) {
			continue
		}
		title := strings.TrimSpace(row[0])

		var quantity decimal.NullDecimal
		if i > 0 {
			if qty, ok := a.parser.BorrowQuantity(rows[i-1]); ok {
				quantity = decimal.NullDecimal{Decimal: qty, Valid: true}
			}
		}

		var price decimal.NullDecimal
		if v, err := textutil.NormalizeNumber(row[2]); err == nil {
			price = decimal.NullDecimal{Decimal: v, Valid: true}
		}

		code := ""
		for k := 1; k <= 3 && i+k < len(rows); k++ {
			next := rows[i+k]
			if len(next) >= 2 && aclCodeCellRe.MatchString(next[1]) {
				code = strings.TrimSpace(next[1])
				break
			}
		}
		if code == "" {
			continue
		}

		result.Items = append(result.Items, model.LineItem{
			Name:       title,
			Code:       code,
			Quantity:   quantity,
			Price:      price,
			LineNumber: i + 1,
		})
	}

	return result, nil
}
