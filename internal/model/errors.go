package model

import (
	"errors"
	"fmt"
)

// ErrInsufficientText signals that a backend produced text below the
// configured minimum length. It is a routing signal for the fallback
// chain, not a terminal failure.
var ErrInsufficientText = errors.New("insufficient text content")

// ErrNoUsableData is returned when every backend has been exhausted
// without producing text or table rows.
var ErrNoUsableData = errors.New("no usable data in document")

// BackendError wraps the failure of one extraction backend call.
// It is propagated to the provider, which decides whether to fall back.
type BackendError struct {
	Backend string
	Message string
	Cause   error
}

func (e *BackendError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("backend %s: %s (%v)", e.Backend, e.Message, e.Cause)
	}
	return fmt.Sprintf("backend %s: %s", e.Backend, e.Message)
}

func (e *BackendError) Unwrap() error {
	return e.Cause
}

// NewBackendError creates a new backend error
func NewBackendError(backend, message string, cause error) *BackendError {
	return &BackendError{
		Backend: backend,
		Message: message,
		Cause:   cause,
	}
}

// ExtractionError is the terminal failure surfaced to callers of the
// orchestrator when a provider fails.
type ExtractionError struct {
	Supplier SupplierKey
	Document DocumentRef
	Message  string
	Cause    error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Supplier, e.Document, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Supplier, e.Document, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// NewExtractionError creates a new extraction error
func NewExtractionError(supplier SupplierKey, doc DocumentRef, message string, cause error) *ExtractionError {
	return &ExtractionError{
		Supplier: supplier,
		Document: doc,
		Message:  message,
		Cause:    cause,
	}
}

// RasterizationError reports a failed page rasterization. It is scoped to
// one EAN attempt and recovered locally by the caller.
type RasterizationError struct {
	Document DocumentRef
	Message  string
	Cause    error
}

func (e *RasterizationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rasterization of %s failed: %s (%v)", e.Document, e.Message, e.Cause)
	}
	return fmt.Sprintf("rasterization of %s failed: %s", e.Document, e.Message)
}

func (e *RasterizationError) Unwrap() error {
	return e.Cause
}

// NewRasterizationError creates a new rasterization error
func NewRasterizationError(doc DocumentRef, message string, cause error) *RasterizationError {
	return &RasterizationError{
		Document: doc,
		Message:  message,
		Cause:    cause,
	}
}

// OCRError reports a failed OCR call on one image region. Like
// RasterizationError it never aborts a whole document.
type OCRError struct {
	Region  string
	Message string
	Cause   error
}

func (e *OCRError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("ocr failed [%s]: %s (%v)", e.Region, e.Message, e.Cause)
	}
	return fmt.Sprintf("ocr failed [%s]: %s", e.Region, e.Message)
}

func (e *OCRError) Unwrap() error {
	return e.Cause
}

// NewOCRError creates a new OCR error
func NewOCRError(region, message string, cause error) *OCRError {
	return &OCRError{
		Region:  region,
		Message: message,
		Cause:   cause,
	}
}
