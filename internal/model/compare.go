package model

import "github.com/shopspring/decimal"

// DiffTag marks one detected difference for an item pair.
type DiffTag string

const (
	DiffPrice     DiffTag = "price"
	DiffQuantity  DiffTag = "quantity"
	DiffNotInDoc2 DiffTag = "not_in_doc2"
	DiffNotInDoc1 DiffTag = "not_in_doc1"
)

// ItemDiff records the comparison of one item across two documents.
// Doc1 or Doc2 is nil when the item appears in only one document.
type ItemDiff struct {
	Item        string    `json:"item"`
	Doc1        *LineItem `json:"doc1"`
	Doc2        *LineItem `json:"doc2"`
	Differences []DiffTag `json:"differences"`
}

// TotalDiff compares one totals slot across two documents. Absent totals
// default to zero here, and only here.
type TotalDiff struct {
	Doc1       decimal.Decimal `json:"doc1"`
	Doc2       decimal.Decimal `json:"doc2"`
	Difference decimal.Decimal `json:"difference"`
}

// PriceDifference is one entry of the comparison summary. Difference is
// always doc2 minus doc1, signed.
type PriceDifference struct {
	Item       string          `json:"item"`
	Doc1Price  decimal.Decimal `json:"doc1Price"`
	Doc2Price  decimal.Decimal `json:"doc2Price"`
	Difference decimal.Decimal `json:"difference"`
}

// ComparisonSummary aggregates counts over a comparison.
type ComparisonSummary struct {
	CommonItems      int               `json:"commonItems"`
	UniqueToDoc1     int               `json:"uniqueToDoc1"`
	UniqueToDoc2     int               `json:"uniqueToDoc2"`
	PriceDifferences []PriceDifference `json:"priceDifferences"`
}

// ComparisonResult is the output of comparing two extraction results.
// It is derived data, recomputed on every call and never persisted.
type ComparisonResult struct {
	ItemsComparison  []ItemDiff           `json:"itemsComparison"`
	TotalsComparison map[string]TotalDiff `json:"totalsComparison"`
	Summary          ComparisonSummary    `json:"summary"`
}
