package provider_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/parser"
	"github.com/rezonia/invoice-extractor/internal/provider"
)

// fakeBackends scripts the three extraction backends and counts calls.
type fakeBackends struct {
	pages     []model.Page
	pagesErr  error
	ocrText   string
	ocrErr    error
	rows      []model.TableRow
	tableErr  error
	nativeCnt int
	ocrCnt    int
	tableCnt  int
}

func (f *fakeBackends) ExtractNativeText(context.Context, model.DocumentRef) ([]model.Page, error) {
	f.nativeCnt++
	return f.pages, f.pagesErr
}

func (f *fakeBackends) ExtractWithOCR(context.Context, model.DocumentRef) (string, error) {
	f.ocrCnt++
	return f.ocrText, f.ocrErr
}

func (f *fakeBackends) ExtractTable(context.Context, model.DocumentRef) ([]model.TableRow, error) {
	f.tableCnt++
	return f.rows, f.tableErr
}

// fakeEANReader returns scripted codes keyed by row index.
type fakeEANReader struct {
	codes map[int]string
	errs  map[int]error
	calls []int
}

func (f *fakeEANReader) ExtractEAN(_ context.Context, _ model.DocumentRef, rowIndex int) (string, error) {
	f.calls = append(f.calls, rowIndex)
	if err, ok := f.errs[rowIndex]; ok {
		return "", err
	}
	return f.codes[rowIndex], nil
}

func pageWithText(lines ...string) []model.Page {
	pages := make([]model.Page, len(lines))
	for i, line := range lines {
		pages[i] = model.Page{Number: i + 1, Runs: []model.TextRun{{Text: line}}}
	}
	return pages
}

var aclRows = []model.TableRow{
	{"12", "2", "34,50"},
	{"Libro de recetas", "", "12,50"},
	{"x", "9788412345678", "y"},
	{"84,70"},
}

func TestACL_ParseTableData(t *testing.T) {
	acl := provider.NewACL(parser.New())

	tr, err := acl.ParseTableData(context.Background(), "albaran.pdf", aclRows)
	require.NoError(t, err)

	require.Len(t, tr.Items, 1)
	item := tr.Items[0]
	assert.Equal(t, "Libro de recetas", item.Name)
	assert.Equal(t, "9788412345678", item.Code)
	assert.Equal(t, 2, item.LineNumber)

	require.True(t, item.Quantity.Valid)
	assert.True(t, item.Quantity.Decimal.Equal(decimal.NewFromInt(12)))
	require.True(t, item.Price.Valid)
	assert.True(t, item.Price.Decimal.Equal(decimal.RequireFromString("12.50")))

	require.True(t, tr.TotalExclVAT.Valid)
	assert.True(t, tr.TotalExclVAT.Decimal.Equal(decimal.RequireFromString("84.70")))
}

func TestACL_ParseTableData_DropsRowsWithoutCode(t *testing.T) {
	acl := provider.NewACL(parser.New())

	rows := []model.TableRow{
		{"Libro sin código", "2", "12,50"},
		{"sin", "código", "aquí"},
	}
	tr, err := acl.ParseTableData(context.Background(), "albaran.pdf", rows)
	require.NoError(t, err)
	assert.Empty(t, tr.Items)
}

func TestACL_TableShortCircuitsTextChain(t *testing.T) {
	b := &fakeBackends{rows: aclRows}
	acl := provider.NewACL(parser.New())

	result, err := acl.ExtractData(context.Background(), "albaran.pdf", b)
	require.NoError(t, err)

	assert.Equal(t, model.MethodTable, result.ExtractionMethod)
	assert.Equal(t, 0, b.nativeCnt)
	assert.Equal(t, 0, b.ocrCnt)
	assert.Len(t, result.ProcessedData.Items, 1)
	assert.Equal(t, len(aclRows), result.ProcessedData.Metadata.TotalLines)
	assert.True(t, result.ProcessedData.Totals[model.TotalLabelTotal].Equal(decimal.RequireFromString("84.70")))
}

var gestinlibRows = []model.TableRow{
	{"Código", "Cantidad", "Precio"},
	{"Libro de cocina tradicional", "2", "12,50 €"},
	{"Otro libro interesante", "1", "8,00 €"},
	{"base imponible", ""},
	{"20,50"},
}

func TestGestinlib_ParseTableData(t *testing.T) {
	reader := &fakeEANReader{
		codes: map[int]string{1: "4006381333931"},
		errs:  map[int]error{2: errors.New("ocr unavailable")},
	}
	g := provider.NewGestinlib(parser.New(), reader, slog.Default())

	tr, err := g.ParseTableData(context.Background(), "factura.pdf", gestinlibRows)
	require.NoError(t, err)

	require.Len(t, tr.Items, 2)
	assert.Equal(t, "Libro de cocina tradicional", tr.Items[0].Name)
	assert.Equal(t, "4006381333931", tr.Items[0].Code)
	assert.Equal(t, 2, tr.Items[0].LineNumber)

	// The failed row falls back to the deterministic placeholder.
	assert.Equal(t, "Otro libro interesante", tr.Items[1].Name)
	assert.Equal(t, "GESTINLIB_2", tr.Items[1].Code)

	assert.Equal(t, 1, tr.EANCodesFound)
	assert.Equal(t, []int{1, 2}, reader.calls, "one sequential OCR attempt per product row")

	require.True(t, tr.TotalExclVAT.Valid)
	assert.True(t, tr.TotalExclVAT.Decimal.Equal(decimal.RequireFromString("20.50")))
}

func TestGestinlib_NoProductSection(t *testing.T) {
	g := provider.NewGestinlib(parser.New(), &fakeEANReader{}, slog.Default())

	tr, err := g.ParseTableData(context.Background(), "factura.pdf", []model.TableRow{
		{"Observaciones", "generales", "varias"},
	})
	require.NoError(t, err)
	assert.Empty(t, tr.Items)
}

func TestGestinlib_TableFailureIsFatal(t *testing.T) {
	b := &fakeBackends{tableErr: errors.New("no fragments")}
	g := provider.NewGestinlib(parser.New(), &fakeEANReader{}, slog.Default())

	_, err := g.ExtractData(context.Background(), "factura.pdf", b)
	require.Error(t, err)

	var be *model.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "table", be.Backend)
	assert.Equal(t, 0, b.ocrCnt, "no OCR fallback for a table-only layout")
}

func TestGestinlib_NativeTextFailureLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	b := &fakeBackends{
		rows:     gestinlibRows,
		pagesErr: errors.New("encrypted stream"),
	}
	reader := &fakeEANReader{codes: map[int]string{1: "4006381333931", 2: "96385074"}}
	g := provider.NewGestinlib(parser.New(), reader, logger)

	// Raw text is best-effort only, but its failure must be observable.
	result, err := g.ExtractData(context.Background(), "factura.pdf", b)
	require.NoError(t, err)
	assert.Empty(t, result.RawText)
	assert.Len(t, result.ProcessedData.Items, 2)
	assert.Contains(t, buf.String(), "native text unavailable")
	assert.Contains(t, buf.String(), "encrypted stream")
}

func TestGestinlib_ExtractDataMethod(t *testing.T) {
	b := &fakeBackends{
		rows:  gestinlibRows,
		pages: pageWithText("Factura Gestinlib"),
	}
	reader := &fakeEANReader{codes: map[int]string{1: "4006381333931", 2: "96385074"}}
	g := provider.NewGestinlib(parser.New(), reader, slog.Default())

	result, err := g.ExtractData(context.Background(), "factura.pdf", b)
	require.NoError(t, err)

	assert.Equal(t, model.MethodTableWithEANOCR, result.ExtractionMethod)
	assert.Equal(t, "Factura Gestinlib", result.RawText)
	assert.Equal(t, 2, result.ProcessedData.Metadata.EANCodesFound)
	assert.Len(t, result.ProcessedData.Items, 2)
}

func TestGeneric_NativeTextPath(t *testing.T) {
	b := &fakeBackends{
		tableErr: errors.New("no table"),
		pages: pageWithText(
			"Factura de proveedor con condiciones generales de venta y observaciones adicionales del pedido",
			"ABC123 Camiseta algodón Cantidad: 2 12,50 €",
		),
	}
	g := provider.NewGeneric(parser.New())

	result, err := g.ExtractData(context.Background(), "factura.pdf", b)
	require.NoError(t, err)

	assert.Equal(t, model.MethodNative, result.ExtractionMethod)
	assert.Equal(t, 1, b.nativeCnt)
	assert.Equal(t, 0, b.ocrCnt)
	require.Len(t, result.ProcessedData.Items, 1)
	assert.Equal(t, "Camiseta algodón", result.ProcessedData.Items[0].Name)
}

func TestGeneric_ShortNativeTextFallsBackToOCR(t *testing.T) {
	b := &fakeBackends{
		pages:   pageWithText("corto"),
		ocrText: "ABC123 Camiseta algodón Cantidad: 2 12,50 €",
	}
	g := provider.NewGeneric(parser.New())

	result, err := g.ExtractData(context.Background(), "factura.pdf", b)
	require.NoError(t, err)

	assert.Equal(t, model.MethodOCR, result.ExtractionMethod)
	assert.Equal(t, 1, b.ocrCnt)
	require.Len(t, result.ProcessedData.Items, 1)
}

func TestGeneric_NativeFailureFallsBackToOCR(t *testing.T) {
	b := &fakeBackends{
		pagesErr: errors.New("encrypted stream"),
		ocrText:  "ABC123 Camiseta algodón Cantidad: 2 12,50 €",
	}
	g := provider.NewGeneric(parser.New())

	result, err := g.ExtractData(context.Background(), "factura.pdf", b)
	require.NoError(t, err)
	assert.Equal(t, model.MethodOCR, result.ExtractionMethod)
}

func TestGeneric_EmptyOCRExhaustsChain(t *testing.T) {
	b := &fakeBackends{
		pages:   pageWithText("corto"),
		ocrText: "   ",
	}
	g := provider.NewGeneric(parser.New())

	_, err := g.ExtractData(context.Background(), "factura.pdf", b)
	require.ErrorIs(t, err, model.ErrNoUsableData)
}

func TestGeneric_OCRFailurePropagates(t *testing.T) {
	b := &fakeBackends{
		pages:  pageWithText("corto"),
		ocrErr: errors.New("tesseract not installed"),
	}
	g := provider.NewGeneric(parser.New())

	_, err := g.ExtractData(context.Background(), "factura.pdf", b)
	require.Error(t, err)
	assert.Equal(t, 1, b.ocrCnt)
}

func TestCanHandle(t *testing.T) {
	p := parser.New()
	acl := provider.NewACL(p)
	gest := provider.NewGestinlib(p, &fakeEANReader{}, slog.Default())
	gen := provider.NewGeneric(p)

	assert.True(t, acl.CanHandle("Albarán ARCO LOGÍSTICA 2024"))
	assert.False(t, acl.CanHandle("Factura Gestinlib"))

	assert.True(t, gest.CanHandle("factura gestinlib s.l."))
	assert.False(t, gest.CanHandle("otro proveedor"))

	assert.True(t, gen.CanHandle(""))
	assert.True(t, gen.CanHandle("cualquier cosa"))
}
