package provider

import (
	"context"

	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/parser"
)

// Generic is the fallback provider for documents no supplier-specific
// provider claims. It relies entirely on the generic heuristic parser.
type Generic struct {
	parser *parser.Parser
}

// NewGeneric creates the generic provider.
func NewGeneric(p *parser.Parser) *Generic {
	return &Generic{parser: p}
}

// Name returns the provider key.
func (g *Generic) Name() model.SupplierKey { return model.SupplierGeneric }

// CanHandle always answers true; the generic provider accepts any
// document, which is why it must be registered last.
func (g *Generic) CanHandle(string) bool { return true }

// ExtractData runs the common extraction shape. The generic table parser
// never yields items, so in practice the text fallback chain decides.
func (g *Generic) ExtractData(ctx context.Context, doc model.DocumentRef, backends Backends) (*model.ExtractionResult, error) {
	return extractCommon(ctx, doc, backends, g, g.parser)
}

// ParseTableData has no layout knowledge for unknown suppliers and
// returns no items.
func (g *Generic) ParseTableData(context.Context, model.DocumentRef, []model.TableRow) (*TableResult, error) {
	return &TableResult{}, nil
}
