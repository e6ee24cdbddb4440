// Package extractor wires the extraction backends and the provider
// registry into the document-level API used by the CLI and the server.
package extractor

import (
	"context"
	"log/slog"
	"time"

	"github.com/rezonia/invoice-extractor/internal/backend"
	"github.com/rezonia/invoice-extractor/internal/compare"
	"github.com/rezonia/invoice-extractor/internal/ean"
	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/parser"
	"github.com/rezonia/invoice-extractor/internal/provider"
	"github.com/rezonia/invoice-extractor/internal/textutil"
)

// NativeTextBackend extracts positioned native text.
type NativeTextBackend interface {
	ExtractNativeText(ctx context.Context, doc model.DocumentRef) ([]model.Page, error)
}

// TableBackend reconstructs positional table rows.
type TableBackend interface {
	ExtractTable(ctx context.Context, doc model.DocumentRef) ([]model.TableRow, error)
}

// Extractor is the document-level orchestrator. It owns the provider
// registry and presents the backend facade that providers extract
// through, so every provider sees the same fallback-capable backends.
type Extractor struct {
	registry *provider.Registry
	native   NativeTextBackend
	table    TableBackend
	ocr      backend.OCR
	ean      provider.EANReader
	logger   *slog.Logger
}

// Option configures the extractor.
type Option func(*Extractor)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) { e.logger = logger }
}

// WithNativeBackend replaces the native text backend.
func WithNativeBackend(b NativeTextBackend) Option {
	return func(e *Extractor) { e.native = b }
}

// WithTableBackend replaces the table backend.
func WithTableBackend(b TableBackend) Option {
	return func(e *Extractor) { e.table = b }
}

// WithOCR replaces the OCR backend.
func WithOCR(o backend.OCR) Option {
	return func(e *Extractor) { e.ocr = o }
}

// WithEANReader replaces the image-region EAN reader.
func WithEANReader(r provider.EANReader) Option {
	return func(e *Extractor) { e.ean = r }
}

// New creates an extractor with the default backends and the built-in
// providers registered. The generic provider registers last so detection
// reaches it only when no supplier-specific provider claims the document.
func New(opts ...Option) *Extractor {
	e := &Extractor{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}

	if e.native == nil {
		e.native = backend.NewTabulaText(e.logger)
	}
	if e.table == nil {
		e.table = backend.NewTabulaTable(e.logger)
	}
	if e.ocr == nil {
		e.ocr = backend.NewTesseractOCR(backend.DefaultOCRLanguage, e.logger)
	}
	if e.ean == nil {
		e.ean = ean.New(backend.NewFitzRasterizer(), e.ocr, ean.WithLogger(e.logger))
	}

	e.registry = provider.NewRegistry(e.logger)
	p := parser.New()
	e.registry.Register(string(model.SupplierACL), provider.NewACL(p))
	e.registry.Register(string(model.SupplierGestinlib), provider.NewGestinlib(p, e.ean, e.logger))
	e.registry.Register(string(model.SupplierGeneric), provider.NewGeneric(p))
	return e
}

// ExtractNativeText is the provider-facing native text backend.
func (e *Extractor) ExtractNativeText(ctx context.Context, doc model.DocumentRef) ([]model.Page, error) {
	pages, err := e.native.ExtractNativeText(ctx, doc)
	if err != nil {
		return nil, model.NewBackendError("native", "extracting text content", err)
	}
	return pages, nil
}

// ExtractWithOCR is the provider-facing OCR backend.
func (e *Extractor) ExtractWithOCR(ctx context.Context, doc model.DocumentRef) (string, error) {
	text, err := e.ocr.Recognize(ctx, doc)
	if err != nil {
		return "", model.NewBackendError("ocr", "recognizing document text", err)
	}
	return text, nil
}

// ExtractTable is the provider-facing table backend.
func (e *Extractor) ExtractTable(ctx context.Context, doc model.DocumentRef) ([]model.TableRow, error) {
	rows, err := e.table.ExtractTable(ctx, doc)
	if err != nil {
		return nil, model.NewBackendError("table", "reconstructing table rows", err)
	}
	return rows, nil
}

// DetectProvider identifies the supplier from the document's native text.
// Detection never fails: an unreadable document falls back to the generic
// provider with a warning.
func (e *Extractor) DetectProvider(ctx context.Context, doc model.DocumentRef) model.SupplierKey {
	pages, err := e.native.ExtractNativeText(ctx, doc)
	if err != nil {
		e.logger.Warn("provider detection failed, using fallback",
			"document", doc, "fallback", e.registry.Fallback(), "error", err)
		return e.registry.Fallback()
	}
	key := e.registry.Detect(textutil.PagesToText(pages))
	e.logger.Info("provider detected", "document", doc, "provider", key)
	return key
}

// ExtractInvoiceData runs the full extraction for one document. An empty
// supplier triggers detection; an unknown supplier resolves to the
// generic provider.
func (e *Extractor) ExtractInvoiceData(ctx context.Context, doc model.DocumentRef, supplier string) (*model.ExtractionResult, error) {
	if supplier == "" {
		supplier = string(e.DetectProvider(ctx, doc))
	}
	p := e.registry.Get(supplier)

	result, err := p.ExtractData(ctx, doc, e)
	if err != nil {
		return nil, model.NewExtractionError(supplier, doc, "extraction failed", err)
	}

	result.Document = doc
	result.Supplier = p.Name()
	if result.Timestamp.IsZero() {
		result.Timestamp = time.Now()
	}
	e.logger.Info("document extracted",
		"document", doc,
		"provider", result.Supplier,
		"method", result.ExtractionMethod,
		"items", len(result.ProcessedData.Items))
	return result, nil
}

// RegisterProvider registers or replaces a provider at runtime.
func (e *Extractor) RegisterProvider(key string, p provider.Provider) {
	e.registry.Register(key, p)
}

// GetProvider resolves a provider by key, falling back to generic.
func (e *Extractor) GetProvider(key string) provider.Provider {
	return e.registry.Get(key)
}

// Providers returns the registered supplier keys in registration order.
func (e *Extractor) Providers() []model.SupplierKey {
	return e.registry.Keys()
}

// Fallback returns the fallback supplier key.
func (e *Extractor) Fallback() model.SupplierKey {
	return e.registry.Fallback()
}

// Compare diffs two processed documents.
func (e *Extractor) Compare(doc1, doc2 model.ProcessedData) model.ComparisonResult {
	return compare.Documents(doc1, doc2)
}

// Cleanup releases cached page rasters held by the EAN reader. With force
// set, the temp image files are removed as well.
func (e *Extractor) Cleanup(force bool) error {
	if c, ok := e.ean.(interface{ Cleanup(bool) error }); ok {
		return c.Cleanup(force)
	}
	return nil
}
