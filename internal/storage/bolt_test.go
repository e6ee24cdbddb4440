package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/storage"
)

func newTestStore(t *testing.T) *storage.BoltStore {
	t.Helper()
	store, err := storage.NewBoltStore(filepath.Join(t.TempDir(), "extractions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleResult(doc string) *model.ExtractionResult {
	return &model.ExtractionResult{
		Document: model.DocumentRef(doc),
		Supplier: model.SupplierGeneric,
		ProcessedData: model.ProcessedData{
			Items: []model.LineItem{{
				Name:  "Camiseta algodón",
				Price: decimal.NullDecimal{Decimal: decimal.RequireFromString("12.50"), Valid: true},
			}},
			Totals: model.Totals{model.TotalLabelTotal: decimal.NewFromInt(100)},
		},
		ExtractionMethod: model.MethodNative,
	}
}

func TestSaveAndGet(t *testing.T) {
	store := newTestStore(t)

	saved, err := store.Save(sampleResult("factura.pdf"))
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	got, err := store.Get(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, model.DocumentRef("factura.pdf"), got.Result.Document)
	assert.Equal(t, model.MethodNative, got.Result.ExtractionMethod)

	require.Len(t, got.Result.ProcessedData.Items, 1)
	item := got.Result.ProcessedData.Items[0]
	assert.Equal(t, "Camiseta algodón", item.Name)
	require.True(t, item.Price.Valid)
	assert.True(t, item.Price.Decimal.Equal(decimal.RequireFromString("12.50")))
	assert.True(t, got.Result.ProcessedData.Totals[model.TotalLabelTotal].Equal(decimal.NewFromInt(100)))
}

func TestGetUnknownID(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get("missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestList(t *testing.T) {
	store := newTestStore(t)

	list, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = store.Save(sampleResult("a.pdf"))
	require.NoError(t, err)
	_, err = store.Save(sampleResult("b.pdf"))
	require.NoError(t, err)

	list, err = store.List()
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)

	saved, err := store.Save(sampleResult("factura.pdf"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(saved.ID))
	_, err = store.Get(saved.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)

	// Deleting an unknown ID is a no-op.
	require.NoError(t, store.Delete("missing"))
}

func TestReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extractions.db")

	store, err := storage.NewBoltStore(path)
	require.NoError(t, err)
	saved, err := store.Save(sampleResult("factura.pdf"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := storage.NewBoltStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
}
