// Package backend implements the concrete extraction backends the
// providers consume: native PDF text, positional table reconstruction,
// Tesseract OCR, page rasterization and an optional LLM vision fallback.
package backend

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tsawler/tabula"

	"github.com/rezonia/invoice-extractor/internal/model"
)

// TabulaText extracts positioned native text from PDF content streams.
type TabulaText struct {
	logger *slog.Logger
}

// NewTabulaText creates the native text backend.
func NewTabulaText(logger *slog.Logger) *TabulaText {
	if logger == nil {
		logger = slog.Default()
	}
	return &TabulaText{logger: logger}
}

// ExtractNativeText returns one Page per document page, each holding the
// page's text runs with their positions. Whitespace-only runs are dropped.
func (t *TabulaText) ExtractNativeText(ctx context.Context, doc model.DocumentRef) ([]model.Page, error) {
	ext := tabula.Open(string(doc))
	count, err := ext.PageCount()
	if err != nil {
		ext.Close()
		return nil, err
	}
	ext.Close()

	pages := make([]model.Page, 0, count)
	for p := 1; p <= count; p++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frags, warnings, err := tabula.Open(string(doc)).Pages(p).Fragments()
		if err != nil {
			return nil, err
		}
		if len(warnings) > 0 {
			t.logger.Debug("native text warnings",
				"document", doc, "page", p, "warnings", tabula.FormatWarnings(warnings))
		}

		runs := make([]model.TextRun, 0, len(frags))
		for _, f := range frags {
			if strings.TrimSpace(f.Text) == "" {
				continue
			}
			runs = append(runs, model.TextRun{X: f.X, Y: f.Y, Text: f.Text})
		}
		pages = append(pages, model.Page{Number: p, Runs: runs})
	}
	return pages, nil
}
