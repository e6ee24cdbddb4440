// Package provider implements the per-supplier extraction strategies and
// the registry that dispatches to them. Each provider decides whether it
// can handle a document and how to turn raw backend output into a
// structured result for its supplier's layout conventions.
package provider

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rezonia/invoice-extractor/internal/model"
)

// Backends is the facade the orchestrator exposes to providers. Each call
// is a thin pass-through to an external collaborator; failures surface as
// *model.BackendError and the provider decides whether to fall back.
type Backends interface {
	// ExtractNativeText returns positioned text runs grouped by page.
	ExtractNativeText(ctx context.Context, doc model.DocumentRef) ([]model.Page, error)

	// ExtractWithOCR runs optical character recognition over the document.
	ExtractWithOCR(ctx context.Context, doc model.DocumentRef) (string, error)

	// ExtractTable returns table rows ordered by vertical position.
	ExtractTable(ctx context.Context, doc model.DocumentRef) ([]model.TableRow, error)
}

// Provider is a supplier-specific extraction strategy.
type Provider interface {
	// Name returns the provider key.
	Name() model.SupplierKey

	// CanHandle identifies the supplier by keyword containment in the
	// document text. The generic provider always answers true and must
	// therefore be registered last.
	CanHandle(text string) bool

	// ExtractData runs the extraction algorithm for this supplier's
	// layout: table attempt first, then the native-text/OCR fallback
	// chain, assembling the result envelope.
	ExtractData(ctx context.Context, doc model.DocumentRef, backends Backends) (*model.ExtractionResult, error)

	// ParseTableData classifies table rows and maps them to line items.
	ParseTableData(ctx context.Context, doc model.DocumentRef, rows []model.TableRow) (*TableResult, error)
}

// TableResult is the outcome of provider-specific table parsing.
type TableResult struct {
	Items         []model.LineItem
	TotalExclVAT  decimal.NullDecimal
	EANCodesFound int
}

// EANReader produces a candidate identifier for a table row from the
// image embedded in its first cell.
type EANReader interface {
	ExtractEAN(ctx context.Context, doc model.DocumentRef, rowIndex int) (string, error)
}
