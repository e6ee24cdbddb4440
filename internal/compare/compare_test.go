package compare_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-extractor/internal/compare"
	"github.com/rezonia/invoice-extractor/internal/model"
)

func item(name, code string, qty, price string) model.LineItem {
	it := model.LineItem{Name: name, Code: code}
	if qty != "" {
		it.Quantity = decimal.NullDecimal{Decimal: decimal.RequireFromString(qty), Valid: true}
	}
	if price != "" {
		it.Price = decimal.NullDecimal{Decimal: decimal.RequireFromString(price), Valid: true}
	}
	return it
}

func TestDocuments_PriceDifference(t *testing.T) {
	doc1 := model.ProcessedData{
		Items:  []model.LineItem{item("Camiseta algodón", "", "2", "10.00")},
		Totals: model.Totals{model.TotalLabelTotal: decimal.NewFromInt(100)},
	}
	doc2 := model.ProcessedData{
		Items:  []model.LineItem{item("Camiseta algodón", "", "2", "12.50")},
		Totals: model.Totals{model.TotalLabelTotal: decimal.NewFromInt(110)},
	}

	result := compare.Documents(doc1, doc2)

	assert.Equal(t, 1, result.Summary.CommonItems)
	assert.Equal(t, 0, result.Summary.UniqueToDoc1)
	assert.Equal(t, 0, result.Summary.UniqueToDoc2)

	require.Len(t, result.ItemsComparison, 1)
	diff := result.ItemsComparison[0]
	assert.Equal(t, "Camiseta algodón", diff.Item)
	assert.Equal(t, []model.DiffTag{model.DiffPrice}, diff.Differences)

	require.Len(t, result.Summary.PriceDifferences, 1)
	pd := result.Summary.PriceDifferences[0]
	assert.True(t, pd.Doc1Price.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, pd.Doc2Price.Equal(decimal.RequireFromString("12.50")))
	assert.True(t, pd.Difference.Equal(decimal.RequireFromString("2.50")))

	total := result.TotalsComparison[model.TotalLabelTotal]
	assert.True(t, total.Difference.Equal(decimal.NewFromInt(10)))
}

func TestDocuments_MatchedPairRecordedWithoutTags(t *testing.T) {
	doc := model.ProcessedData{
		Items: []model.LineItem{item("Libro de recetas", "9788412345678", "2", "10.00")},
	}

	result := compare.Documents(doc, doc)

	assert.Equal(t, 1, result.Summary.CommonItems)
	assert.Empty(t, result.Summary.PriceDifferences)

	// Identical pairs still get a record, with an empty difference list.
	require.Len(t, result.ItemsComparison, 1)
	diff := result.ItemsComparison[0]
	assert.Equal(t, "Libro de recetas", diff.Item)
	assert.NotNil(t, diff.Doc1)
	assert.NotNil(t, diff.Doc2)
	assert.Empty(t, diff.Differences)
	assert.NotNil(t, diff.Differences)
}

func TestDocuments_UniqueItems(t *testing.T) {
	doc1 := model.ProcessedData{
		Items: []model.LineItem{
			item("Camiseta algodón", "", "2", "10.00"),
			item("Pantalón vaquero", "", "1", "25.00"),
		},
	}
	doc2 := model.ProcessedData{
		Items: []model.LineItem{
			item("Camiseta algodón", "", "2", "10.00"),
			item("Chaqueta de invierno", "", "1", "60.00"),
		},
	}

	result := compare.Documents(doc1, doc2)

	assert.Equal(t, 1, result.Summary.CommonItems)
	assert.Equal(t, 1, result.Summary.UniqueToDoc1)
	assert.Equal(t, 1, result.Summary.UniqueToDoc2)

	require.Len(t, result.ItemsComparison, 3)
	assert.Equal(t, "Camiseta algodón", result.ItemsComparison[0].Item)
	assert.Empty(t, result.ItemsComparison[0].Differences)

	assert.Equal(t, "Pantalón vaquero", result.ItemsComparison[1].Item)
	assert.Equal(t, []model.DiffTag{model.DiffNotInDoc2}, result.ItemsComparison[1].Differences)
	assert.Nil(t, result.ItemsComparison[1].Doc2)

	assert.Equal(t, "Chaqueta de invierno", result.ItemsComparison[2].Item)
	assert.Equal(t, []model.DiffTag{model.DiffNotInDoc1}, result.ItemsComparison[2].Differences)
	assert.Nil(t, result.ItemsComparison[2].Doc1)
}

func TestDocuments_MatchByCode(t *testing.T) {
	doc1 := model.ProcessedData{
		Items: []model.LineItem{item("Nombre en albarán", "9788412345678", "1", "12.00")},
	}
	doc2 := model.ProcessedData{
		Items: []model.LineItem{item("Nombre en factura", "9788412345678", "1", "12.00")},
	}

	result := compare.Documents(doc1, doc2)
	assert.Equal(t, 1, result.Summary.CommonItems)
	require.Len(t, result.ItemsComparison, 1)
	assert.Empty(t, result.ItemsComparison[0].Differences)
}

func TestDocuments_MatchByNameContainment(t *testing.T) {
	doc1 := model.ProcessedData{
		Items: []model.LineItem{item("Camiseta algodón manga larga", "", "1", "10.00")},
	}
	doc2 := model.ProcessedData{
		Items: []model.LineItem{item("camiseta algodón", "", "1", "10.00")},
	}

	// Containment works in both directions, case-insensitively.
	result := compare.Documents(doc1, doc2)
	assert.Equal(t, 1, result.Summary.CommonItems)

	result = compare.Documents(doc2, doc1)
	assert.Equal(t, 1, result.Summary.CommonItems)
}

func TestDocuments_QuantityDifference(t *testing.T) {
	doc1 := model.ProcessedData{
		Items: []model.LineItem{item("Camiseta algodón", "", "2", "10.00")},
	}
	doc2 := model.ProcessedData{
		Items: []model.LineItem{item("Camiseta algodón", "", "3", "10.00")},
	}

	result := compare.Documents(doc1, doc2)
	require.Len(t, result.ItemsComparison, 1)
	assert.Equal(t, []model.DiffTag{model.DiffQuantity}, result.ItemsComparison[0].Differences)
	assert.Empty(t, result.Summary.PriceDifferences)
}

func TestDocuments_AbsentFieldDiffersFromZero(t *testing.T) {
	doc1 := model.ProcessedData{
		Items: []model.LineItem{item("Camiseta algodón", "", "", "0")},
	}
	doc2 := model.ProcessedData{
		Items: []model.LineItem{item("Camiseta algodón", "", "0", "0")},
	}

	// A missing quantity is not the same as quantity zero.
	result := compare.Documents(doc1, doc2)
	require.Len(t, result.ItemsComparison, 1)
	assert.Equal(t, []model.DiffTag{model.DiffQuantity}, result.ItemsComparison[0].Differences)
}

func TestDocuments_AbsentTotalsDefaultToZero(t *testing.T) {
	result := compare.Documents(model.ProcessedData{}, model.ProcessedData{})

	total, ok := result.TotalsComparison[model.TotalLabelTotal]
	require.True(t, ok)
	assert.True(t, total.Doc1.IsZero())
	assert.True(t, total.Doc2.IsZero())
	assert.True(t, total.Difference.IsZero())

	subtotal, ok := result.TotalsComparison[model.TotalLabelSubtotal]
	require.True(t, ok)
	assert.True(t, subtotal.Difference.IsZero())
}
