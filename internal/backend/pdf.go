package backend

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ValidatePDF checks that the file at path is a structurally sound PDF.
// Non-PDF files pass through untouched; the image backends handle them.
func ValidatePDF(path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return nil
	}
	if err := api.ValidateFile(path, nil); err != nil {
		return fmt.Errorf("invalid pdf: %w", err)
	}
	return nil
}

// PDFPageCount returns the page count of the PDF at path.
func PDFPageCount(path string) (int, error) {
	return api.PageCountFile(path)
}
