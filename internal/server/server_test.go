package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-extractor/internal/extractor"
	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/server"
	"github.com/rezonia/invoice-extractor/internal/storage"
)

type fakeNative struct {
	text string
}

func (f *fakeNative) ExtractNativeText(context.Context, model.DocumentRef) ([]model.Page, error) {
	return []model.Page{{Number: 1, Runs: []model.TextRun{{Text: f.text}}}}, nil
}

type fakeTable struct{}

func (fakeTable) ExtractTable(context.Context, model.DocumentRef) ([]model.TableRow, error) {
	return nil, errors.New("no table")
}

type fakeOCR struct{}

func (fakeOCR) Recognize(context.Context, model.DocumentRef) (string, error) {
	return "", errors.New("unavailable")
}

func (fakeOCR) RecognizeDigits(context.Context, []byte) (string, error) {
	return "", errors.New("unavailable")
}

type fakeEAN struct{}

func (fakeEAN) ExtractEAN(context.Context, model.DocumentRef, int) (string, error) {
	return "", nil
}

func newTestServer(t *testing.T) (*server.Server, storage.Store) {
	t.Helper()

	store, err := storage.NewBoltStore(filepath.Join(t.TempDir(), "extractions.db"))
	require.NoError(t, err)

	ext := extractor.New(
		extractor.WithNativeBackend(&fakeNative{
			text: "Factura de proveedor con condiciones generales de venta " +
				"y observaciones adicionales ABC123 Camiseta algodón Cantidad: 2 12,50 €",
		}),
		extractor.WithTableBackend(fakeTable{}),
		extractor.WithOCR(fakeOCR{}),
		extractor.WithEANReader(fakeEAN{}),
	)

	s := server.NewServerWith(&server.Config{UploadDir: t.TempDir()}, ext, store, nil)
	t.Cleanup(func() { s.Close() })
	return s, store
}

func seedRecord(t *testing.T, store storage.Store, doc, name, price string) *storage.Record {
	t.Helper()
	record, err := store.Save(&model.ExtractionResult{
		Document: model.DocumentRef(doc),
		Supplier: model.SupplierGeneric,
		ProcessedData: model.ProcessedData{
			Items: []model.LineItem{{
				Name:     name,
				Quantity: decimal.NullDecimal{Decimal: decimal.NewFromInt(2), Valid: true},
				Price:    decimal.NullDecimal{Decimal: decimal.RequireFromString(price), Valid: true},
			}},
			Totals: model.Totals{model.TotalLabelTotal: decimal.NewFromInt(100)},
		},
		ExtractionMethod: model.MethodNative,
	})
	require.NoError(t, err)
	return record
}

func doJSON(t *testing.T, s *server.Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestProviders(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/v1/providers", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp server.ProvidersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []model.SupplierKey{
		model.SupplierACL,
		model.SupplierGestinlib,
		model.SupplierGeneric,
	}, resp.Providers)
	assert.Equal(t, model.SupplierGeneric, resp.Fallback)
}

func TestExtractUpload(t *testing.T) {
	s, _ := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "factura.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("contenido de prueba"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("supplier", "GENERIC"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp server.ExtractResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	require.NotNil(t, resp.Result)
	assert.Equal(t, model.DocumentRef("factura.txt"), resp.Result.Document)
	assert.Equal(t, model.MethodNative, resp.Result.ExtractionMethod)

	// The stored record is retrievable by the returned ID.
	w = doJSON(t, s, http.MethodGet, "/api/v1/documents/"+resp.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExtractMissingFile(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/extract", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListDocuments(t *testing.T) {
	s, store := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/v1/documents", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp server.ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)

	seedRecord(t, store, "a.pdf", "Camiseta algodón", "10.00")
	seedRecord(t, store, "b.pdf", "Pantalón vaquero", "25.00")

	w = doJSON(t, s, http.MethodGet, "/api/v1/documents", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Len(t, resp.Documents, 2)
}

func TestGetDocumentNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/v1/documents/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteDocument(t *testing.T) {
	s, store := newTestServer(t)

	record := seedRecord(t, store, "a.pdf", "Camiseta algodón", "10.00")

	w := doJSON(t, s, http.MethodDelete, "/api/v1/documents/"+record.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/v1/documents/"+record.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompare(t *testing.T) {
	s, store := newTestServer(t)

	r1 := seedRecord(t, store, "albaran.pdf", "Camiseta algodón", "10.00")
	r2 := seedRecord(t, store, "factura.pdf", "Camiseta algodón", "12.50")

	w := doJSON(t, s, http.MethodPost, "/api/v1/compare", server.CompareRequest{Doc1: r1.ID, Doc2: r2.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp server.CompareResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, r1.ID, resp.Doc1)
	assert.Equal(t, 1, resp.Comparison.Summary.CommonItems)

	require.Len(t, resp.Comparison.Summary.PriceDifferences, 1)
	pd := resp.Comparison.Summary.PriceDifferences[0]
	assert.True(t, pd.Difference.Equal(decimal.RequireFromString("2.50")))
}

func TestCompareMissingBody(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/compare", map[string]string{"doc1": "only"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCompareUnknownDocument(t *testing.T) {
	s, store := newTestServer(t)

	r1 := seedRecord(t, store, "albaran.pdf", "Camiseta algodón", "10.00")

	w := doJSON(t, s, http.MethodPost, "/api/v1/compare", server.CompareRequest{Doc1: r1.ID, Doc2: "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
