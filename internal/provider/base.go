package provider

import (
	"context"
	"strings"
	"time"

	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/parser"
	"github.com/rezonia/invoice-extractor/internal/textutil"
)

// matchesKeyword reports case-insensitive substring containment of any of
// the keywords in the text.
func matchesKeyword(text string, keywords []string) bool {
	upper := strings.ToUpper(text)
	for _, kw := range keywords {
		if strings.Contains(upper, strings.ToUpper(kw)) {
			return true
		}
	}
	return false
}

// nativeText extracts and flattens native text. Text below minLen returns
// ErrInsufficientText, the routing signal for the OCR fallback.
func nativeText(ctx context.Context, doc model.DocumentRef, b Backends, minLen int) (string, error) {
	pages, err := b.ExtractNativeText(ctx, doc)
	if err != nil {
		return "", err
	}
	text := textutil.PagesToText(pages)
	if len(text) < minLen {
		return text, model.ErrInsufficientText
	}
	return text, nil
}

// fetchText runs the native-text → OCR fallback chain shared by all
// providers. Insufficient native text and native backend failures both
// route to OCR; an empty OCR result exhausts the chain.
func fetchText(ctx context.Context, doc model.DocumentRef, b Backends, minLen int) (string, model.ExtractionMethod, error) {
	text, err := nativeText(ctx, doc, b, minLen)
	if err == nil {
		return text, model.MethodNative, nil
	}

	// Both ErrInsufficientText and a native backend failure route here:
	// the provider owns the fallback decision, and the decision is OCR.
	ocrText, ocrErr := b.ExtractWithOCR(ctx, doc)
	if ocrErr != nil {
		return "", "", ocrErr
	}
	if strings.TrimSpace(ocrText) == "" {
		return "", "", model.ErrNoUsableData
	}
	return ocrText, model.MethodOCR, nil
}

// extractCommon is the extraction shape shared by the generic and
// table-style providers: table attempt first, then the text fallback
// chain. A table result with at least one usable item short-circuits the
// text path entirely.
func extractCommon(ctx context.Context, doc model.DocumentRef, b Backends, p Provider, ps *parser.Parser) (*model.ExtractionResult, error) {
	rows, err := b.ExtractTable(ctx, doc)
	if err != nil {
		// Table extraction is the preferred path but never a blocker.
		rows = nil
	}

	if len(rows) > 0 {
		tr, err := p.ParseTableData(ctx, doc, rows)
		if err != nil {
			return nil, err
		}
		if tr != nil && len(tr.Items) > 0 {
			return tableEnvelope(p.Name(), model.MethodTable, "", rows, tr), nil
		}
	}

	text, method, err := fetchText(ctx, doc, b, ps.Thresholds().MinTextLength)
	if err != nil {
		return nil, err
	}

	return &model.ExtractionResult{
		RawText:          text,
		ProcessedData:    ps.ProcessText(text, string(p.Name())),
		TableData:        rows,
		ExtractionMethod: method,
		Timestamp:        time.Now(),
	}, nil
}

// tableEnvelope assembles the result envelope for a table-sourced
// extraction.
func tableEnvelope(name model.SupplierKey, method model.ExtractionMethod, rawText string, rows []model.TableRow, tr *TableResult) *model.ExtractionResult {
	totals := model.Totals{}
	if tr.TotalExclVAT.Valid {
		totals[model.TotalLabelTotal] = tr.TotalExclVAT.Decimal
	}
	return &model.ExtractionResult{
		RawText: rawText,
		ProcessedData: model.ProcessedData{
			Supplier: string(name),
			Items:    tr.Items,
			Totals:   totals,
			Metadata: model.Metadata{
				TotalLines:     len(rows),
				ProcessingDate: time.Now(),
				Provider:       string(name),
				EANCodesFound:  tr.EANCodesFound,
			},
		},
		TableData:        rows,
		ExtractionMethod: method,
		Timestamp:        time.Now(),
	}
}
