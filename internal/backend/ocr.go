package backend

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/otiai10/gosseract/v2"

	"github.com/rezonia/invoice-extractor/internal/model"
)

// OCR recognizes text on whole documents and digit runs on image regions.
type OCR interface {
	Recognize(ctx context.Context, doc model.DocumentRef) (string, error)
	RecognizeDigits(ctx context.Context, image []byte) (string, error)
}

// DefaultOCRLanguage is the Tesseract language used when none is configured.
const DefaultOCRLanguage = "spa"

// TesseractOCR runs Tesseract over rasterized document pages. A fresh
// gosseract client is created per call; the clients are cheap relative to
// recognition and sharing one is not safe across goroutines.
type TesseractOCR struct {
	language string
	logger   *slog.Logger
}

// NewTesseractOCR creates the Tesseract backend for the given language.
func NewTesseractOCR(language string, logger *slog.Logger) *TesseractOCR {
	if language == "" {
		language = DefaultOCRLanguage
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TesseractOCR{language: language, logger: logger}
}

// Recognize OCRs the whole document. PDFs are rasterized page by page;
// anything else is treated as an image file.
func (t *TesseractOCR) Recognize(ctx context.Context, doc model.DocumentRef) (string, error) {
	if strings.EqualFold(filepath.Ext(string(doc)), ".pdf") {
		return t.recognizePDF(ctx, doc)
	}
	data, err := os.ReadFile(string(doc))
	if err != nil {
		return "", err
	}
	return t.recognizeImage(data, false)
}

// RecognizeDigits OCRs an image region with a digit-only whitelist and
// single-block segmentation, tuned for the numbers printed under barcodes.
func (t *TesseractOCR) RecognizeDigits(_ context.Context, image []byte) (string, error) {
	return t.recognizeImage(image, true)
}

func (t *TesseractOCR) recognizePDF(ctx context.Context, doc model.DocumentRef) (string, error) {
	fdoc, err := fitz.New(string(doc))
	if err != nil {
		return "", fmt.Errorf("opening document: %w", err)
	}
	defer fdoc.Close()

	var parts []string
	for n := 0; n < fdoc.NumPage(); n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		img, err := fdoc.Image(n)
		if err != nil {
			return "", fmt.Errorf("rendering page %d: %w", n+1, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return "", fmt.Errorf("encoding page %d: %w", n+1, err)
		}
		text, err := t.recognizeImage(buf.Bytes(), false)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", n+1, err)
		}
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}
	t.logger.Debug("document recognized", "document", doc, "pages", fdoc.NumPage())
	return strings.Join(parts, "\n"), nil
}

func (t *TesseractOCR) recognizeImage(data []byte, digitsOnly bool) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.language); err != nil {
		return "", fmt.Errorf("setting language: %w", err)
	}
	if digitsOnly {
		if err := client.SetWhitelist("0123456789"); err != nil {
			return "", fmt.Errorf("setting whitelist: %w", err)
		}
		if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
			return "", fmt.Errorf("setting segmentation mode: %w", err)
		}
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("setting image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognition failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}
