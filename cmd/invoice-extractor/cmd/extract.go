package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-extractor/internal/model"
)

var (
	extractSupplier string
	outputFile      string
	extractTimeout  time.Duration
)

var extractCmd = &cobra.Command{
	Use:   "extract [files...]",
	Short: "Extract invoice data from documents",
	Long: `Extract line items, product codes and totals from one or more
invoice documents.

The supplier provider is detected from the document text unless --supplier
is given. Unknown suppliers fall back to the generic heuristic parser.

Examples:
  invoice-extractor extract factura.pdf
  invoice-extractor extract factura.pdf --supplier GESTINLIB
  invoice-extractor extract facturas/ -o results.json
  invoice-extractor extract *.pdf -f table`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractSupplier, "supplier", "s", "", "Supplier provider key (default: auto-detect)")
	extractCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	extractCmd.Flags().DurationVar(&extractTimeout, "timeout", 2*time.Minute, "Extraction timeout per file")
}

// ExtractResult holds the outcome for a single file.
type ExtractResult struct {
	File   string                  `json:"file"`
	Result *model.ExtractionResult `json:"result,omitempty"`
	Error  string                  `json:"error,omitempty"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found to extract")
	}
	printVerbose("Found %d files to extract\n", len(files))

	ext := buildExtractor(newLogger())
	defer ext.Cleanup(true)

	results := make([]*ExtractResult, 0, len(files))
	for _, file := range files {
		printVerbose("Extracting: %s\n", file)
		results = append(results, extractFile(ext, file))
	}

	return outputResults(results)
}

func extractFile(ext extractorAPI, file string) *ExtractResult {
	ctx, cancel := context.WithTimeout(context.Background(), extractTimeout)
	defer cancel()

	result, err := ext.ExtractInvoiceData(ctx, model.DocumentRef(file), extractSupplier)
	if err != nil {
		return &ExtractResult{File: file, Error: err.Error()}
	}
	return &ExtractResult{File: file, Result: result}
}

// extractorAPI is the slice of the orchestrator the extract command uses.
type extractorAPI interface {
	ExtractInvoiceData(ctx context.Context, doc model.DocumentRef, supplier string) (*model.ExtractionResult, error)
}

func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", arg, err)
		}

		if len(matches) == 0 {
			info, err := os.Stat(arg)
			if err != nil {
				return nil, fmt.Errorf("file not found: %s", arg)
			}
			if info.IsDir() {
				err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
					if err != nil {
						return err
					}
					if !info.IsDir() && isSupportedFile(path) {
						files = append(files, path)
					}
					return nil
				})
				if err != nil {
					return nil, err
				}
			} else {
				files = append(files, arg)
			}
			continue
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				continue
			}
			if !info.IsDir() && isSupportedFile(match) {
				files = append(files, match)
			}
		}
	}

	return files, nil
}

func isSupportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".png", ".jpg", ".jpeg", ".tiff", ".tif":
		return true
	default:
		return false
	}
}

func outputResults(results []*ExtractResult) error {
	var writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		writer = f
	}

	switch outputFormat {
	case "json":
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	case "table":
		return outputTable(writer, results)
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

func outputTable(w *os.File, results []*ExtractResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tSUPPLIER\tMETHOD\tITEMS\tTOTAL")
	fmt.Fprintln(tw, "----\t--------\t------\t-----\t-----")

	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(tw, "%s\tERROR: %s\t\t\t\n", r.File, r.Error)
			continue
		}
		total := ""
		if v, ok := r.Result.ProcessedData.Totals[model.TotalLabelTotal]; ok {
			total = v.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			r.File,
			r.Result.Supplier,
			r.Result.ExtractionMethod,
			len(r.Result.ProcessedData.Items),
			total,
		)
	}

	return tw.Flush()
}
