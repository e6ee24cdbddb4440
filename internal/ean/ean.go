// Package ean extracts candidate EAN identifiers from product images
// embedded in invoice table cells. A document moves through rasterization,
// cell cropping, digit-only OCR and checksum validation; the page raster
// is cached per document reference for the lifetime of the extractor.
package ean

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rezonia/invoice-extractor/internal/model"
)

// Rasterizer renders document pages to raster bytes at a fixed resolution.
type Rasterizer interface {
	ToImage(ctx context.Context, doc model.DocumentRef, pages []int, width, height int) ([]byte, error)
}

// DigitOCR recognizes text on an image region with a digit-only whitelist.
type DigitOCR interface {
	RecognizeDigits(ctx context.Context, image []byte) (string, error)
}

// Extractor crops table cells out of rasterized pages and OCRs them for
// EAN candidates. Not safe for concurrent use on the same document; the
// pipeline runs rows strictly in sequence.
type Extractor struct {
	raster Rasterizer
	ocr    DigitOCR
	tmpDir string
	bounds Bounds
	logger *slog.Logger

	mu    sync.Mutex
	cache map[model.DocumentRef]string
}

// Option configures the extractor.
type Option func(*Extractor)

// WithTempDir sets the directory for page and region images.
func WithTempDir(dir string) Option {
	return func(e *Extractor) { e.tmpDir = dir }
}

// WithTableBounds overrides the approximate table bounding box.
func WithTableBounds(b Bounds) Option {
	return func(e *Extractor) { e.bounds = b }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) { e.logger = logger }
}

// New creates an EAN extractor using the given rasterization and OCR
// backends.
func New(raster Rasterizer, ocr DigitOCR, opts ...Option) *Extractor {
	e := &Extractor{
		raster: raster,
		ocr:    ocr,
		tmpDir: filepath.Join(os.TempDir(), "invoice-extractor-images"),
		bounds: DefaultTableBounds(),
		logger: slog.Default(),
		cache:  make(map[model.DocumentRef]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractEAN produces a validated EAN candidate for one table row, or the
// empty string when no digit run validates. Rasterization and OCR failures
// are returned typed so the caller can recover with a placeholder.
func (e *Extractor) ExtractEAN(ctx context.Context, doc model.DocumentRef, rowIndex int) (string, error) {
	pagePath, err := e.rasterize(ctx, doc)
	if err != nil {
		return "", err
	}

	region := CellRegion(rowIndex, 0, e.bounds)
	cell, err := e.cropRegion(pagePath, region)
	if err != nil {
		return "", model.NewRasterizationError(doc, fmt.Sprintf("cropping cell for row %d", rowIndex), err)
	}

	text, err := e.ocr.RecognizeDigits(ctx, cell)
	if err != nil {
		return "", model.NewOCRError(fmt.Sprintf("row %d", rowIndex), "digit recognition failed", err)
	}

	return ExtractCandidate(text), nil
}

// rasterize converts page 1 of the document to a PNG file. Repeat calls
// for the same document return the cached path.
func (e *Extractor) rasterize(ctx context.Context, doc model.DocumentRef) (string, error) {
	e.mu.Lock()
	if path, ok := e.cache[doc]; ok {
		e.mu.Unlock()
		return path, nil
	}
	e.mu.Unlock()

	data, err := e.raster.ToImage(ctx, doc, []int{1}, RasterWidth, RasterHeight)
	if err != nil {
		return "", model.NewRasterizationError(doc, "converting page to image", err)
	}
	if len(data) == 0 {
		return "", model.NewRasterizationError(doc, "backend produced no image", nil)
	}

	if err := os.MkdirAll(e.tmpDir, 0o755); err != nil {
		return "", model.NewRasterizationError(doc, "creating temp dir", err)
	}
	path := filepath.Join(e.tmpDir, fmt.Sprintf("pdf_page_%d.png", time.Now().UnixNano()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", model.NewRasterizationError(doc, "writing page image", err)
	}

	e.mu.Lock()
	e.cache[doc] = path
	e.mu.Unlock()

	e.logger.Debug("page rasterized", "document", doc, "path", path)
	return path, nil
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// cropRegion cuts a pixel rectangle out of the page image and persists it
// next to the page raster for inspection.
func (e *Extractor) cropRegion(pagePath string, region image.Rectangle) ([]byte, error) {
	f, err := os.Open(pagePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}

	clipped := region.Intersect(img.Bounds())
	if clipped.Empty() {
		return nil, fmt.Errorf("region %v outside page bounds %v", region, img.Bounds())
	}

	si, ok := img.(subImager)
	if !ok {
		return nil, fmt.Errorf("image type %T does not support cropping", img)
	}
	sub := si.SubImage(clipped)

	var buf bytes.Buffer
	if err := png.Encode(&buf, sub); err != nil {
		return nil, err
	}

	regionPath := filepath.Join(e.tmpDir, fmt.Sprintf("region_%d.png", time.Now().UnixNano()))
	if err := os.WriteFile(regionPath, buf.Bytes(), 0o644); err != nil {
		e.logger.Warn("keeping region in memory only", "error", err)
	}

	return buf.Bytes(), nil
}

// ClearCache drops all cached page rasters.
func (e *Extractor) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[model.DocumentRef]string)
}

// Cleanup clears the cache and, when force is set, removes the temp image
// files. Without force the files are kept for inspection.
func (e *Extractor) Cleanup(force bool) error {
	e.ClearCache()
	if !force {
		return nil
	}
	entries, err := os.ReadDir(e.tmpDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if err := os.Remove(filepath.Join(e.tmpDir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}
