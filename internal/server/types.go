package server

import (
	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/storage"
)

// ExtractResponse is the response for the extract endpoint.
type ExtractResponse struct {
	ID     string                  `json:"id"`
	Result *model.ExtractionResult `json:"result"`
}

// ListResponse is the response for the document listing endpoint.
type ListResponse struct {
	Documents []*storage.Record `json:"documents"`
	Count     int               `json:"count"`
}

// CompareRequest names the two stored extractions to diff.
type CompareRequest struct {
	Doc1 string `json:"doc1" binding:"required"`
	Doc2 string `json:"doc2" binding:"required"`
}

// CompareResponse is the response for the compare endpoint.
type CompareResponse struct {
	Doc1       string                 `json:"doc1"`
	Doc2       string                 `json:"doc2"`
	Comparison model.ComparisonResult `json:"comparison"`
}

// ProvidersResponse lists the registered supplier keys.
type ProvidersResponse struct {
	Providers []model.SupplierKey `json:"providers"`
	Fallback  model.SupplierKey   `json:"fallback"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
