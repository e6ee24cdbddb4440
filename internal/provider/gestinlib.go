package provider

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rezonia/invoice-extractor/internal/ean"
	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/parser"
	"github.com/rezonia/invoice-extractor/internal/textutil"
)

// Gestinlib handles Gestinlib invoices, whose product identifiers (EAN
// barcodes) exist only as raster images inside the first table column.
// Table extraction is mandatory for this layout; each product row gets
// one image-OCR attempt, run strictly in sequence.
type Gestinlib struct {
	parser   *parser.Parser
	keywords []string
	ean      EANReader
	logger   *slog.Logger
}

// NewGestinlib creates the Gestinlib provider with the given EAN reader.
func NewGestinlib(p *parser.Parser, reader EANReader, logger *slog.Logger) *Gestinlib {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gestinlib{
		parser:   p,
		keywords: []string{"Gestinlib", "GESTINLIB", "gestinlib"},
		ean:      reader,
		logger:   logger,
	}
}

// Name returns the provider key.
func (g *Gestinlib) Name() model.SupplierKey { return model.SupplierGestinlib }

// CanHandle identifies Gestinlib documents by keyword containment.
func (g *Gestinlib) CanHandle(text string) bool {
	return matchesKeyword(text, g.keywords)
}

// ExtractData extracts the product table and resolves each row's EAN from
// the embedded cell image. Native text is collected best-effort for the
// raw-text field only.
func (g *Gestinlib) ExtractData(ctx context.Context, doc model.DocumentRef, backends Backends) (*model.ExtractionResult, error) {
	rows, err := backends.ExtractTable(ctx, doc)
	if err != nil {
		return nil, model.NewBackendError("table", "gestinlib layout requires table extraction", err)
	}

	rawText := ""
	if pages, err := backends.ExtractNativeText(ctx, doc); err == nil {
		rawText = textutil.PagesToText(pages)
	} else {
		g.logger.Warn("native text unavailable", "document", doc, "error", err)
	}

	tr, err := g.ParseTableData(ctx, doc, rows)
	if err != nil {
		return nil, err
	}

	return tableEnvelope(g.Name(), model.MethodTableWithEANOCR, rawText, rows, tr), nil
}

// ParseTableData classifies product rows and attaches an identifier to
// each: a checksum-valid EAN from the row's cell image when one can be
// read, else the deterministic placeholder. Row-level rasterization and
// OCR failures are recovered here and never abort the document.
func (g *Gestinlib) ParseTableData(ctx context.Context, doc model.DocumentRef, rows []model.TableRow) (*TableResult, error) {
	result := &TableResult{}

	if total, ok := g.taxableBase(rows); ok {
		result.TotalExclVAT = decimal.NullDecimal{Decimal: total, Valid: true}
	}

	start := g.parser.FindProductSectionStart(rows)
	if start == -1 {
		g.logger.Warn("no product section found", "document", doc)
		return result, nil
	}

	for i := start; i < len(rows); i++ {
		row := rows[i]
		if !g.parser.IsProductRow(row) {
			continue
		}

		title := strings.TrimSpace(row[0])
		quantity := decimal.NewFromInt(1)
		if q, err := decimal.NewFromString(strings.TrimSpace(row[1])); err == nil {
			quantity = q
		}
		price := decimal.Zero
		if v, err := textutil.NormalizeNumber(row[2]); err == nil {
			price = v
		}

		code, err := g.ean.ExtractEAN(ctx, doc, i)
		if err != nil {
			g.logger.Warn("ean extraction failed", "document", doc, "row", i, "error", err)
			code = ""
		}
		if code != "" {
			result.EANCodesFound++
		} else {
			code = ean.Placeholder(string(model.SupplierGestinlib), i)
		}

		if title == "" || !price.IsPositive() {
			continue
		}
		result.Items = append(result.Items, model.LineItem{
			Name:       title,
			Code:       code,
			Quantity:   decimal.NullDecimal{Decimal: quantity, Valid: true},
			Price:      decimal.NullDecimal{Decimal: price, Valid: true},
			LineNumber: i + 1,
		})
	}

	return result, nil
}

// taxableBase locates the "base imponible" row; the row below carries the
// amounts and its first cell is the total excluding VAT.
func (g *Gestinlib) taxableBase(rows []model.TableRow) (decimal.Decimal, bool) {
	for i, row := range rows {
		found := false
		for _, cell := range row {
			if strings.ToLower(strings.TrimSpace(cell)) == "base imponible" {
				found = true
				break
			}
		}
		if !found {
			continue
		}
		if i+1 < len(rows) && len(rows[i+1]) > 0 {
			if num, err := textutil.NormalizeNumber(rows[i+1][0]); err == nil {
				return num, true
			}
		}
		return decimal.Zero, false
	}
	return decimal.Zero, false
}
