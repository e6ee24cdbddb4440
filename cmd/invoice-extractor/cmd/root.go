package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-extractor/internal/backend"
	"github.com/rezonia/invoice-extractor/internal/extractor"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string
	ocrLanguage  string
	apiKey       string
	llmBaseURL   string
	llmModel     string
)

var rootCmd = &cobra.Command{
	Use:   "invoice-extractor",
	Short: "Extract structured data from supplier invoices",
	Long: `Invoice Extractor pulls line items, product codes and totals out of
supplier invoice PDFs.

Extraction flow per document:
  1. Positional table reconstruction (supplier-specific layouts)
  2. Native PDF text with heuristic line parsing
  3. OCR fallback (Tesseract, or an LLM vision model with --api-key)

Examples:
  # Extract a single invoice, auto-detecting the supplier
  invoice-extractor extract factura.pdf

  # Force a supplier provider
  invoice-extractor extract factura.pdf --supplier ACL

  # Compare two invoices
  invoice-extractor compare pedido.pdf albaran.pdf

  # Start the HTTP API
  invoice-extractor serve --address :8080`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, table)")
	rootCmd.PersistentFlags().StringVar(&ocrLanguage, "ocr-lang", "", "Tesseract language (env: OCR_LANGUAGE, default: spa)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key for LLM vision OCR (env: LLM_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&llmBaseURL, "llm-base-url", "", "LLM API base URL (env: LLM_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&llmModel, "llm-model", "", "LLM vision model (env: LLM_MODEL)")

	// Load from environment variables if not set via flags
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if ocrLanguage == "" {
		ocrLanguage = os.Getenv("OCR_LANGUAGE")
	}
	if apiKey == "" {
		apiKey = os.Getenv("LLM_API_KEY")
	}
	if llmBaseURL == "" {
		llmBaseURL = os.Getenv("LLM_BASE_URL")
	}
	if llmModel == "" {
		llmModel = os.Getenv("LLM_MODEL")
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// buildExtractor assembles the extraction stack from the global flags.
// An API key swaps Tesseract for the LLM vision backend.
func buildExtractor(logger *slog.Logger) *extractor.Extractor {
	opts := []extractor.Option{extractor.WithLogger(logger)}
	if apiKey != "" {
		var llmOpts []backend.LLMOption
		if llmBaseURL != "" {
			llmOpts = append(llmOpts, backend.WithLLMBaseURL(llmBaseURL))
		}
		if llmModel != "" {
			llmOpts = append(llmOpts, backend.WithLLMModel(llmModel))
		}
		opts = append(opts, extractor.WithOCR(
			backend.NewLLMOCR(apiKey, backend.NewFitzRasterizer(), llmOpts...)))
	} else if ocrLanguage != "" {
		opts = append(opts, extractor.WithOCR(
			backend.NewTesseractOCR(ocrLanguage, logger)))
	}
	return extractor.New(opts...)
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
