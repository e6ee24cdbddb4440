// Package compare diffs two extraction results item by item and total by
// total. Matching is order-dependent: each doc1 item pairs with the first
// doc2 item it matches, scanning doc2 in item order.
package compare

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rezonia/invoice-extractor/internal/model"
)

// Documents compares two processed documents. Every matched pair gets an
// ItemsComparison record; the difference list is empty when the items
// agree.
func Documents(doc1, doc2 model.ProcessedData) model.ComparisonResult {
	result := model.ComparisonResult{
		TotalsComparison: make(map[string]model.TotalDiff),
		Summary: model.ComparisonSummary{
			PriceDifferences: []model.PriceDifference{},
		},
	}

	for i := range doc1.Items {
		item1 := &doc1.Items[i]
		item2 := findMatch(item1, doc2.Items)
		if item2 == nil {
			result.Summary.UniqueToDoc1++
			result.ItemsComparison = append(result.ItemsComparison, model.ItemDiff{
				Item:        item1.Identifier(),
				Doc1:        item1,
				Differences: []model.DiffTag{model.DiffNotInDoc2},
			})
			continue
		}

		result.Summary.CommonItems++
		diffs := []model.DiffTag{}
		if !nullDecimalEqual(item1.Price, item2.Price) {
			diffs = append(diffs, model.DiffPrice)
			p1, p2 := valueOrZero(item1.Price), valueOrZero(item2.Price)
			result.Summary.PriceDifferences = append(result.Summary.PriceDifferences, model.PriceDifference{
				Item:       item1.Identifier(),
				Doc1Price:  p1,
				Doc2Price:  p2,
				Difference: p2.Sub(p1),
			})
		}
		if !nullDecimalEqual(item1.Quantity, item2.Quantity) {
			diffs = append(diffs, model.DiffQuantity)
		}
		result.ItemsComparison = append(result.ItemsComparison, model.ItemDiff{
			Item:        item1.Identifier(),
			Doc1:        item1,
			Doc2:        item2,
			Differences: diffs,
		})
	}

	for i := range doc2.Items {
		item2 := &doc2.Items[i]
		if findMatch(item2, doc1.Items) != nil {
			continue
		}
		result.Summary.UniqueToDoc2++
		result.ItemsComparison = append(result.ItemsComparison, model.ItemDiff{
			Item:        item2.Identifier(),
			Doc2:        item2,
			Differences: []model.DiffTag{model.DiffNotInDoc1},
		})
	}

	for _, label := range []string{model.TotalLabelTotal, model.TotalLabelSubtotal} {
		v1 := doc1.Totals[label]
		v2 := doc2.Totals[label]
		result.TotalsComparison[label] = model.TotalDiff{
			Doc1:       v1,
			Doc2:       v2,
			Difference: v2.Sub(v1),
		}
	}

	return result
}

// findMatch returns the first item matching by code equality or by name
// containment in either direction, case-insensitively.
func findMatch(item *model.LineItem, items []model.LineItem) *model.LineItem {
	for i := range items {
		if itemsMatch(item, &items[i]) {
			return &items[i]
		}
	}
	return nil
}

func itemsMatch(a, b *model.LineItem) bool {
	if a.Code != "" && a.Code == b.Code {
		return true
	}
	if a.Name == "" || b.Name == "" {
		return false
	}
	n1 := strings.ToLower(a.Name)
	n2 := strings.ToLower(b.Name)
	return strings.Contains(n1, n2) || strings.Contains(n2, n1)
}

func nullDecimalEqual(a, b decimal.NullDecimal) bool {
	if a.Valid != b.Valid {
		return false
	}
	if !a.Valid {
		return true
	}
	return a.Decimal.Equal(b.Decimal)
}

func valueOrZero(d decimal.NullDecimal) decimal.Decimal {
	if d.Valid {
		return d.Decimal
	}
	return decimal.Zero
}
