package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentRef is an opaque locator for a source document, typically a file
// path. It is never mutated after creation.
type DocumentRef string

// SupplierKey identifies a registered provider. Keys are stored uppercase.
type SupplierKey string

// Known suppliers.
const (
	SupplierACL       SupplierKey = "ACL"
	SupplierGestinlib SupplierKey = "GESTINLIB"
	SupplierGeneric   SupplierKey = "GENERIC"
)

// ExtractionMethod records which backend ultimately produced usable data.
type ExtractionMethod string

const (
	MethodNative          ExtractionMethod = "native"
	MethodOCR             ExtractionMethod = "ocr"
	MethodTable           ExtractionMethod = "table"
	MethodTableWithEANOCR ExtractionMethod = "table_with_ean_ocr"
)

// TextRun is one positioned run of text produced by native extraction.
type TextRun struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Text string  `json:"text"`
}

// Page is the native-extraction view of a single document page.
type Page struct {
	Number int       `json:"number"`
	Runs   []TextRun `json:"runs"`
}

// TableRow is one ordered group of cell strings sharing a vertical position,
// cells ordered left to right.
type TableRow []string

// LineItem is a single parsed invoice line. Numeric fields use NullDecimal:
// an invalid value means the field was not found, which is distinct from zero.
type LineItem struct {
	Name       string              `json:"name,omitempty"`
	Code       string              `json:"code,omitempty"`
	Quantity   decimal.NullDecimal `json:"quantity"`
	Price      decimal.NullDecimal `json:"price"`
	Total      decimal.NullDecimal `json:"total"`
	LineNumber int                 `json:"lineNumber"`
}

// Identifier returns the item's display identity: the name when present,
// otherwise the code.
func (li LineItem) Identifier() string {
	if li.Name != "" {
		return li.Name
	}
	return li.Code
}

// Totals is a sparse mapping from a fixed label set to amounts. A missing
// key means the total was not found, never that it is zero.
type Totals map[string]decimal.Decimal

// Totals labels.
const (
	TotalLabelTotal    = "total"
	TotalLabelSubtotal = "subtotal"
	TotalLabelImporte  = "importe"
)

// Metadata describes one extraction run.
type Metadata struct {
	TotalLines     int       `json:"totalLines"`
	ProcessingDate time.Time `json:"processingDate"`
	Provider       string    `json:"provider"`
	EANCodesFound  int       `json:"eanCodesFound,omitempty"`
}

// ProcessedData is the structured payload of an extraction.
type ProcessedData struct {
	Supplier string     `json:"supplier,omitempty"`
	Items    []LineItem `json:"items"`
	Totals   Totals     `json:"totals"`
	Metadata Metadata   `json:"metadata"`
}

// ExtractionResult is the envelope returned by every extraction call.
// It is owned exclusively by the caller that produced it and is not
// mutated afterwards.
type ExtractionResult struct {
	Document         DocumentRef      `json:"document"`
	Supplier         SupplierKey      `json:"supplier"`
	RawText          string           `json:"rawText"`
	ProcessedData    ProcessedData    `json:"processedData"`
	TableData        []TableRow       `json:"tableData,omitempty"`
	ExtractionMethod ExtractionMethod `json:"extractionMethod"`
	Timestamp        time.Time        `json:"timestamp"`
}
