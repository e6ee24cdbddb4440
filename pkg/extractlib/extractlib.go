// Package extractlib provides a public API for extracting structured data
// from supplier invoice documents.
//
// Example usage:
//
//	ext := extractlib.New()
//	result, err := ext.Extract(ctx, "factura.pdf", "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(len(result.ProcessedData.Items))
package extractlib

import (
	"context"
	"log/slog"

	"github.com/rezonia/invoice-extractor/internal/backend"
	"github.com/rezonia/invoice-extractor/internal/extractor"
	"github.com/rezonia/invoice-extractor/internal/model"
)

// Re-export core types for the public API
type (
	DocumentRef      = model.DocumentRef
	SupplierKey      = model.SupplierKey
	ExtractionMethod = model.ExtractionMethod
	LineItem         = model.LineItem
	Totals           = model.Totals
	ProcessedData    = model.ProcessedData
	ExtractionResult = model.ExtractionResult
	ComparisonResult = model.ComparisonResult
	ItemDiff         = model.ItemDiff
	TotalDiff        = model.TotalDiff
)

// Re-export supplier constants
const (
	SupplierACL       = model.SupplierACL
	SupplierGestinlib = model.SupplierGestinlib
	SupplierGeneric   = model.SupplierGeneric
)

// Re-export extraction methods
const (
	MethodNative          = model.MethodNative
	MethodOCR             = model.MethodOCR
	MethodTable           = model.MethodTable
	MethodTableWithEANOCR = model.MethodTableWithEANOCR
)

// Re-export error types and sentinels
type (
	BackendError    = model.BackendError
	ExtractionError = model.ExtractionError
)

var (
	ErrInsufficientText = model.ErrInsufficientText
	ErrNoUsableData     = model.ErrNoUsableData
)

// Options configure an Extractor.
type Options struct {
	// Logger for pipeline events. Defaults to slog.Default().
	Logger *slog.Logger

	// OCRLanguage is the Tesseract language (default "spa").
	OCRLanguage string

	// LLMAPIKey enables the LLM vision OCR backend instead of Tesseract.
	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string
}

// Extractor wraps the internal extraction pipeline.
type Extractor struct {
	inner *extractor.Extractor
}

// New creates an extractor with the default stack.
func New() *Extractor {
	return NewWithOptions(Options{})
}

// NewWithOptions creates an extractor configured by opts.
func NewWithOptions(opts Options) *Extractor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	extOpts := []extractor.Option{extractor.WithLogger(logger)}
	if opts.LLMAPIKey != "" {
		var llmOpts []backend.LLMOption
		if opts.LLMBaseURL != "" {
			llmOpts = append(llmOpts, backend.WithLLMBaseURL(opts.LLMBaseURL))
		}
		if opts.LLMModel != "" {
			llmOpts = append(llmOpts, backend.WithLLMModel(opts.LLMModel))
		}
		extOpts = append(extOpts, extractor.WithOCR(
			backend.NewLLMOCR(opts.LLMAPIKey, backend.NewFitzRasterizer(), llmOpts...)))
	} else if opts.OCRLanguage != "" {
		extOpts = append(extOpts, extractor.WithOCR(
			backend.NewTesseractOCR(opts.OCRLanguage, logger)))
	}

	return &Extractor{inner: extractor.New(extOpts...)}
}

// Extract runs the full extraction for one document. An empty supplier
// triggers detection.
func (e *Extractor) Extract(ctx context.Context, path string, supplier string) (*ExtractionResult, error) {
	return e.inner.ExtractInvoiceData(ctx, DocumentRef(path), supplier)
}

// Detect identifies the supplier provider for a document.
func (e *Extractor) Detect(ctx context.Context, path string) SupplierKey {
	return e.inner.DetectProvider(ctx, DocumentRef(path))
}

// Compare diffs two processed documents.
func (e *Extractor) Compare(doc1, doc2 ProcessedData) ComparisonResult {
	return e.inner.Compare(doc1, doc2)
}

// Providers returns the registered supplier keys in registration order.
func (e *Extractor) Providers() []SupplierKey {
	return e.inner.Providers()
}

// Cleanup releases cached page rasters; with force set, temp image files
// are removed as well.
func (e *Extractor) Cleanup(force bool) error {
	return e.inner.Cleanup(force)
}
